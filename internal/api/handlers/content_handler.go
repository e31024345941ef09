package handlers

import (
	"strconv"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/presenters"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/content"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ContentHandler interface {
		GetArticles(c *fiber.Ctx) error
		GetComments(c *fiber.Ctx) error
		AddComment(c *fiber.Ctx) error
		EditComment(c *fiber.Ctx) error
		DeleteComment(c *fiber.Ctx) error
		ToggleLike(c *fiber.Ctx) error
		GetLikes(c *fiber.Ctx) error
	}

	contentHandler struct {
		contentService content.ContentService
		validator      *validator.Validate
	}
)

func NewContentHandler(contentService content.ContentService, validator *validator.Validate) ContentHandler {
	return &contentHandler{
		contentService: contentService,
		validator:      validator,
	}
}

func (h *contentHandler) GetArticles(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetArticles, domain.ErrInvalidArticlesPage)
	}
	pageSize, err := strconv.Atoi(c.Query("pageSize", "10"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetArticles, domain.ErrInvalidArticlesPage)
	}

	res, err := h.contentService.ListArticles(c.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetArticles, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetArticles)
}

func (h *contentHandler) GetComments(c *fiber.Ctx) error {
	res, err := h.contentService.ListComments(c.Context(), c.Params("postId"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetComments, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetComments)
}

func (h *contentHandler) AddComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CommentRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddComment, err)
	}

	res, err := h.contentService.AddComment(c.Context(), c.Params("postId"), userID, req.Content)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedAddComment, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddComment)
}

func (h *contentHandler) EditComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CommentRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedEditComment, err)
	}

	res, err := h.contentService.EditComment(c.Context(), c.Params("id"), userID, req.Content)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedEditComment, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessEditComment)
}

func (h *contentHandler) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.contentService.DeleteComment(c.Context(), c.Params("id"), userID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteComment, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteComment)
}

func (h *contentHandler) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.contentService.ToggleLike(c.Context(), c.Params("postId"), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedToggleLike, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessToggleLike)
}

func (h *contentHandler) GetLikes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.contentService.LikeSummary(c.Context(), c.Params("postId"), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetLikes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetLikes)
}
