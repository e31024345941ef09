package handlers

import (
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/presenters"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/analysis"
	"github.com/gofiber/fiber/v2"
)

type (
	AnalysisHandler interface {
		Classify(c *fiber.Ctx) error
		GetAnalyses(c *fiber.Ctx) error
		GetAnalysisDetails(c *fiber.Ctx) error
	}

	analysisHandler struct {
		analysisService analysis.AnalysisService
	}
)

func NewAnalysisHandler(analysisService analysis.AnalysisService) AnalysisHandler {
	return &analysisHandler{
		analysisService: analysisService,
	}
}

func (h *analysisHandler) Classify(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedClassify, domain.ErrImageRequired)
	}

	res, err := h.analysisService.Classify(c.Context(), userID, domain.ClassifyRequest{Image: file})
	if err != nil {
		if domain.IsKind(err, domain.KindRejectedContent) {
			return presenters.ErrorResponse(c, fiber.StatusUnprocessableEntity, domain.MessageNotABeanSample, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedClassify, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessClassify)
}

func (h *analysisHandler) GetAnalyses(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.analysisService.ListByUser(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalyses, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalyses)
}

func (h *analysisHandler) GetAnalysisDetails(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)

	res, err := h.analysisService.GetByID(c.Context(), c.Params("id"), userID, role)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetAnalyses, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetAnalyses)
}
