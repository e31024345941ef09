package domain

import (
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
)

var (
	MessageSuccessCreateGroup       = "group created successfully"
	MessageSuccessGetGroups         = "groups retrieved successfully"
	MessageSuccessUpdateGroup       = "group updated successfully"
	MessageSuccessDeleteGroup       = "group deleted successfully"
	MessageSuccessAddParticipant    = "participant added successfully"
	MessageSuccessRemoveParticipant = "participant removed successfully"
	MessageSuccessAdjustStock       = "group stock updated successfully"

	MessageFailedCreateGroup       = "failed to create group"
	MessageFailedGetGroups         = "failed to retrieve groups"
	MessageFailedUpdateGroup       = "failed to update group"
	MessageFailedDeleteGroup       = "failed to delete group"
	MessageFailedAddParticipant    = "failed to add participant"
	MessageFailedRemoveParticipant = "failed to remove participant"
	MessageFailedAdjustStock       = "failed to update group stock"

	ErrGroupNotFound     = newError(KindNotFound, "group not found")
	ErrGroupNameRequired = newError(KindValidation, "group name is required")
	ErrNegativeStock     = newError(KindValidation, "group stock cannot be negative")
	ErrNotGroupOwner     = newError(KindAuthorization, "only the group owner can do this")
)

type (
	CreateGroupRequest struct {
		Name         string   `json:"name" validate:"required"`
		Description  string   `json:"description"`
		Stock        int      `json:"stock" validate:"min=0"`
		Participants []string `json:"participants" validate:"omitempty,dive,uuid"`
	}

	UpdateGroupRequest struct {
		Name         *string   `json:"name"`
		Description  *string   `json:"description"`
		Stock        *int      `json:"stock" validate:"omitempty,min=0"`
		Participants *[]string `json:"participants" validate:"omitempty,dive,uuid"`
	}

	AddParticipantRequest struct {
		UserID string `json:"user_id" validate:"required,uuid"`
	}

	AdjustStockRequest struct {
		Delta int `json:"delta" validate:"required"`
	}

	Group struct {
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Description  string       `json:"description,omitempty"`
		Stock        int          `json:"stock"`
		CreatedBy    string       `json:"created_by"`
		Participants []PublicUser `json:"participants"`
		CreatedAt    time.Time    `json:"created_at"`
	}

	// GroupSummary is the group as embedded in proposal views.
	GroupSummary struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Stock     int    `json:"stock"`
		CreatedBy string `json:"created_by"`
	}
)

func ToGroupSummary(g *entities.Group) *GroupSummary {
	if g == nil {
		return nil
	}
	return &GroupSummary{
		ID:        g.ID.String(),
		Name:      g.Name,
		Stock:     g.Stock,
		CreatedBy: g.CreatedBy.String(),
	}
}
