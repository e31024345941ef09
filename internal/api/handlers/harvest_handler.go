package handlers

import (
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/presenters"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/harvest"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	HarvestHandler interface {
		CreateHarvest(c *fiber.Ctx) error
		GetHarvests(c *fiber.Ctx) error
		GetAllHarvests(c *fiber.Ctx) error
		UpdateHarvest(c *fiber.Ctx) error
		DeleteHarvest(c *fiber.Ctx) error
	}

	harvestHandler struct {
		harvestService harvest.HarvestService
		validator      *validator.Validate
	}
)

func NewHarvestHandler(harvestService harvest.HarvestService, validator *validator.Validate) HarvestHandler {
	return &harvestHandler{
		harvestService: harvestService,
		validator:      validator,
	}
}

func (h *harvestHandler) CreateHarvest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.CreateHarvestRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateHarvest, err)
	}

	res, err := h.harvestService.Create(c.Context(), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCreateHarvest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateHarvest)
}

func (h *harvestHandler) GetHarvests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.harvestService.ListByUser(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetHarvests, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHarvests)
}

func (h *harvestHandler) GetAllHarvests(c *fiber.Ctx) error {
	res, err := h.harvestService.ListAllWithDetails(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetHarvests, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetHarvests)
}

func (h *harvestHandler) UpdateHarvest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UpdateHarvestRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateHarvest, err)
	}

	res, err := h.harvestService.Update(c.Context(), c.Params("id"), userID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateHarvest, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateHarvest)
}

func (h *harvestHandler) DeleteHarvest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	id, err := h.harvestService.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteHarvest, err)
	}
	if id == "" {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedDeleteHarvest, domain.ErrHarvestNotFound)
	}
	return presenters.SuccessResponse(c, fiber.Map{"id": id}, fiber.StatusOK, domain.MessageSuccessDeleteHarvest)
}
