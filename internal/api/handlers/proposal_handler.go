package handlers

import (
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/presenters"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/proposal"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ProposalHandler interface {
		CreateProposal(c *fiber.Ctx) error
		GetSentProposals(c *fiber.Ctx) error
		GetReceivedProposals(c *fiber.Ctx) error
		GetUnreadCounts(c *fiber.Ctx) error
		MarkViewed(c *fiber.Ctx) error
		DeleteProposal(c *fiber.Ctx) error
	}

	proposalHandler struct {
		proposalService proposal.ProposalService
		validator       *validator.Validate
	}
)

func NewProposalHandler(proposalService proposal.ProposalService, validator *validator.Validate) ProposalHandler {
	return &proposalHandler{
		proposalService: proposalService,
		validator:       validator,
	}
}

func (h *proposalHandler) CreateProposal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateProposalRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateProposal, err)
	}

	res, err := h.proposalService.Create(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCreateProposal, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateProposal)
}

func (h *proposalHandler) GetSentProposals(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.proposalService.SentByRepresentative(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetProposals, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProposals)
}

func (h *proposalHandler) GetReceivedProposals(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var (
		res []domain.ReceivedProposal
		err error
	)
	switch c.Query("origin", domain.OriginAll) {
	case domain.OriginAll:
		res, err = h.proposalService.ReceivedByProducer(c.Context(), userID)
	case domain.OriginDirect:
		res, err = h.proposalService.DirectByProducer(c.Context(), userID)
	case domain.OriginGroup:
		res, err = h.proposalService.GroupRoutedByProducer(c.Context(), userID)
	default:
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetProposals, domain.ErrInvalidOrigin)
	}
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetProposals, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProposals)
}

func (h *proposalHandler) GetUnreadCounts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.proposalService.UnreadCounts(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetProposals, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProposals)
}

func (h *proposalHandler) MarkViewed(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.proposalService.MarkViewed(c.Context(), c.Params("id"), userID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedMarkViewed, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessMarkViewed)
}

func (h *proposalHandler) DeleteProposal(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.proposalService.Delete(c.Context(), c.Params("id"), userID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteProposal, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteProposal)
}
