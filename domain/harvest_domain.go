package domain

import (
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
)

var (
	MessageSuccessCreateHarvest = "harvest created successfully"
	MessageSuccessGetHarvests   = "harvests retrieved successfully"
	MessageSuccessUpdateHarvest = "harvest updated successfully"
	MessageSuccessDeleteHarvest = "harvest deleted successfully"

	MessageFailedCreateHarvest = "failed to create harvest"
	MessageFailedGetHarvests   = "failed to retrieve harvests"
	MessageFailedUpdateHarvest = "failed to update harvest"
	MessageFailedDeleteHarvest = "failed to delete harvest"

	ErrHarvestNotFound     = newError(KindNotFound, "harvest not found")
	ErrInvalidQuantity     = newError(KindValidation, "quantity must be a positive integer")
	ErrInvalidHarvestDate  = newError(KindValidation, "invalid harvest date")
	ErrUnauthorizedHarvest = newError(KindAuthorization, "unauthorized access to harvest")
)

type (
	CreateHarvestRequest struct {
		Date         string `json:"date" validate:"required"` // YYYY-MM-DD
		Quantity     int    `json:"quantity" validate:"required,min=1"`
		Observations string `json:"observations"`
		AnalysisID   string `json:"analysis_id" validate:"omitempty,uuid"`
	}

	UpdateHarvestRequest struct {
		Date         *string `json:"date"`
		Quantity     *int    `json:"quantity" validate:"omitempty,min=1"`
		Observations *string `json:"observations"`
		AnalysisID   *string `json:"analysis_id" validate:"omitempty,uuid"`
	}

	Harvest struct {
		ID           string    `json:"id"`
		UserID       string    `json:"user_id"`
		Date         time.Time `json:"date"`
		Quantity     int       `json:"quantity"`
		Observations string    `json:"observations,omitempty"`
		AnalysisID   string    `json:"analysis_id,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
	}

	HarvestDetails struct {
		Harvest
		User     *PublicUser        `json:"user"`
		Analysis *entities.Analysis `json:"analysis"`
	}
)

func ToHarvest(h *entities.Harvest) Harvest {
	out := Harvest{
		ID:           h.ID.String(),
		UserID:       h.UserID.String(),
		Date:         h.Date,
		Quantity:     h.Quantity,
		Observations: h.Observations,
		CreatedAt:    h.CreatedAt,
	}
	if h.AnalysisID != nil {
		out.AnalysisID = h.AnalysisID.String()
	}
	return out
}
