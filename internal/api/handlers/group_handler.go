package handlers

import (
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/presenters"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/group"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	GroupHandler interface {
		CreateGroup(c *fiber.Ctx) error
		GetGroups(c *fiber.Ctx) error
		GetOwnedGroups(c *fiber.Ctx) error
		GetParticipatingGroups(c *fiber.Ctx) error
		GetMembership(c *fiber.Ctx) error
		GetGroupDetails(c *fiber.Ctx) error
		UpdateGroup(c *fiber.Ctx) error
		AdjustStock(c *fiber.Ctx) error
		DeleteGroup(c *fiber.Ctx) error
		AddParticipant(c *fiber.Ctx) error
		RemoveParticipant(c *fiber.Ctx) error
	}

	groupHandler struct {
		groupService group.GroupService
		validator    *validator.Validate
	}
)

func NewGroupHandler(groupService group.GroupService, validator *validator.Validate) GroupHandler {
	return &groupHandler{
		groupService: groupService,
		validator:    validator,
	}
}

func (h *groupHandler) CreateGroup(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateGroupRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateGroup, err)
	}

	res, err := h.groupService.Create(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCreateGroup, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateGroup)
}

func (h *groupHandler) GetGroups(c *fiber.Ctx) error {
	res, err := h.groupService.ListWithParticipants(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetGroups, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetGroups)
}

func (h *groupHandler) GetOwnedGroups(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.groupService.OwnedBy(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetGroups, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetGroups)
}

func (h *groupHandler) GetParticipatingGroups(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.groupService.ParticipatingIn(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetGroups, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetGroups)
}

func (h *groupHandler) GetMembership(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.groupService.MembershipOf(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetGroups, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetGroups)
}

func (h *groupHandler) GetGroupDetails(c *fiber.Ctx) error {
	res, err := h.groupService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetGroups, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetGroups)
}

func (h *groupHandler) UpdateGroup(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateGroupRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateGroup, err)
	}

	res, err := h.groupService.Update(c.Context(), userID, c.Params("id"), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateGroup, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateGroup)
}

func (h *groupHandler) AdjustStock(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.AdjustStockRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAdjustStock, err)
	}

	res, err := h.groupService.AdjustStock(c.Context(), userID, c.Params("id"), req.Delta)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedAdjustStock, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAdjustStock)
}

func (h *groupHandler) DeleteGroup(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.groupService.Remove(c.Context(), userID, c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteGroup, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteGroup)
}

func (h *groupHandler) AddParticipant(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.AddParticipantRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddParticipant, err)
	}

	res, err := h.groupService.AddParticipant(c.Context(), userID, c.Params("id"), req.UserID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedAddParticipant, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAddParticipant)
}

func (h *groupHandler) RemoveParticipant(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.groupService.RemoveParticipant(c.Context(), userID, c.Params("id"), c.Params("userId")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedRemoveParticipant, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveParticipant)
}
