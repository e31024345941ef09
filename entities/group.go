package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`

	Participants []*GroupParticipant `gorm:"foreignKey:GroupID" json:"-"`
	Timestamp
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// ParticipantIDs returns member ids in join order.
func (g *Group) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Participants))
	for _, p := range g.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasMember reports whether userID owns or belongs to the group.
func (g *Group) HasMember(userID uuid.UUID) bool {
	if g.CreatedBy == userID {
		return true
	}
	for _, p := range g.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// GroupParticipant is one membership row; (group_id, user_id) is unique.
type GroupParticipant struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_participant" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_participant;index" json:"user_id"`
	Position int64     `gorm:"not null" json:"position"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (p *GroupParticipant) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
