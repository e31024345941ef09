package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OutboxPending = "Pending"
	OutboxSent    = "Sent"
	OutboxFailed  = "Failed"
)

type Notification struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title    string         `gorm:"not null" json:"title"`
	Body     string         `gorm:"type:text" json:"body"`
	URL      string         `json:"url,omitempty"`
	Data     datatypes.JSON `json:"data,omitempty"`
	SenderID *uuid.UUID     `gorm:"type:uuid" json:"sender_id,omitempty"`
	Read     bool           `gorm:"not null;default:false;index" json:"read"`

	Timestamp
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

// NotificationOutbox tracks push delivery of a notification.
type NotificationOutbox struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	NotificationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"notification_id"`
	Status         string     `gorm:"not null;index" json:"status"` // Pending, Sent, Failed
	Attempts       int        `gorm:"not null;default:0" json:"attempts"`
	LastError      string     `gorm:"type:text" json:"last_error,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`

	Notification *Notification `gorm:"foreignKey:NotificationID" json:"-"`
	Timestamp
}

func (o *NotificationOutbox) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

type PushSubscription struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint      string     `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dh        string     `gorm:"not null" json:"p256dh"`
	Auth          string     `gorm:"not null" json:"auth"`
	LastError     string     `gorm:"type:text" json:"last_error,omitempty"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`

	Timestamp
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
