package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Proposal struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"buyer_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`  // direct target
	GroupID      *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"` // group target
	HarvestID    *uuid.UUID `gorm:"type:uuid" json:"harvest_id,omitempty"`
	PricePerSack float64    `gorm:"not null" json:"price_per_sack"`
	Quantity     int        `gorm:"not null" json:"quantity"`
	NameBuyer    string     `json:"name_buyer"`
	PhoneBuyer   string     `json:"phone_buyer"`
	EmailBuyer   string     `json:"email_buyer"`
	Viewed       bool       `gorm:"not null;default:false" json:"viewed"`
	Observations string     `gorm:"type:text" json:"observations,omitempty"`

	Timestamp
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
