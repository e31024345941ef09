package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Harvest struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Date         time.Time  `gorm:"not null" json:"date"`
	Quantity     int        `gorm:"not null" json:"quantity"` // sacks
	Observations string     `gorm:"type:text" json:"observations,omitempty"`
	AnalysisID   *uuid.UUID `gorm:"type:uuid;index" json:"analysis_id,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Analysis *Analysis `gorm:"foreignKey:AnalysisID" json:"-"`
	Timestamp
}

func (h *Harvest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}
