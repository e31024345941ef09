package presenters

import (
	"errors"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data interface{}, status int, message string) error {
	return c.Status(status).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// statusOf maps a classified error to its HTTP status. Unclassified errors
// keep the status chosen by the handler, and so does 401.
func statusOf(err error, fallback int) int {
	if fallback == fiber.StatusUnauthorized {
		return fallback
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindAuthorization:
		return fiber.StatusForbidden
	case domain.KindExternalService:
		return fiber.StatusBadGateway
	case domain.KindRejectedContent:
		return fiber.StatusUnprocessableEntity
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest
	}
	return fallback
}

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	status = statusOf(err, status)

	detail := ""
	if err != nil {
		detail = utils.FormatValidationErrors(err).Error()
	}
	switch {
	case domain.IsKind(err, domain.KindExternalService):
		logging.LogError("external_service", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		detail = domain.MessageExternalServiceError
	case status >= fiber.StatusInternalServerError:
		logging.LogError("internal", err, map[string]interface{}{
			"path":   c.Path(),
			"method": c.Method(),
		})
		detail = domain.MessageFailedProcessRequest
	}

	return c.Status(status).JSON(Response{
		Status:  false,
		Message: message,
		Error:   detail,
	})
}
