package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment and Like are keyed by the CMS post id, which is not a local foreign key.
type Comment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID   string     `gorm:"not null;index" json:"post_id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Like struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID string    `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_post" json:"user_id"`

	Timestamp
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
