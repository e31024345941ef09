package notification

import (
	"context"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	NotificationRepository interface {
		CreateWithOutbox(ctx context.Context, n *entities.Notification) error
		GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

		UpsertSubscription(ctx context.Context, sub *entities.PushSubscription) error
		DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) (int64, error)
		DeleteSubscriptionByID(ctx context.Context, id uuid.UUID) error
		RecordSubscriptionFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
		SubscriptionsOf(ctx context.Context, userID uuid.UUID) ([]*entities.PushSubscription, error)

		PendingOutbox(ctx context.Context, limit int) ([]*entities.NotificationOutbox, error)
		UpdateOutbox(ctx context.Context, row *entities.NotificationOutbox) error
	}

	notificationRepository struct {
		db *gorm.DB
	}
)

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Enqueue writes a notification and its pending outbox row using tx.
// Callers pass their open transaction so the notification commits with
// the change that caused it.
func Enqueue(tx *gorm.DB, n *entities.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return err
	}
	return tx.Create(&entities.NotificationOutbox{
		NotificationID: n.ID,
		Status:         entities.OutboxPending,
	}).Error
}

func (r *notificationRepository) CreateWithOutbox(ctx context.Context, n *entities.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return Enqueue(tx, n)
	})
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Notification, error) {
	var n entities.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Notification, error) {
	var list []*entities.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&list).Error
	return list, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) UpsertSubscription(ctx context.Context, sub *entities.PushSubscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":         sub.UserID,
			"p256dh":          sub.P256dh,
			"auth":            sub.Auth,
			"last_error":      "",
			"last_failure_at": nil,
			"updated_at":      time.Now(),
		}),
	}).Create(sub).Error
}

func (r *notificationRepository) DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&entities.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteSubscriptionByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.PushSubscription{}).Error
}

func (r *notificationRepository) RecordSubscriptionFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.PushSubscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_error":      reason,
			"last_failure_at": at,
		}).Error
}

func (r *notificationRepository) SubscriptionsOf(ctx context.Context, userID uuid.UUID) ([]*entities.PushSubscription, error) {
	var subs []*entities.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&subs).Error
	return subs, err
}

func (r *notificationRepository) PendingOutbox(ctx context.Context, limit int) ([]*entities.NotificationOutbox, error) {
	var rows []*entities.NotificationOutbox
	err := r.db.WithContext(ctx).
		Preload("Notification").
		Where("status = ?", entities.OutboxPending).
		Order("created_at asc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *notificationRepository) UpdateOutbox(ctx context.Context, row *entities.NotificationOutbox) error {
	return r.db.WithContext(ctx).
		Model(&entities.NotificationOutbox{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"status":       row.Status,
			"attempts":     row.Attempts,
			"last_error":   row.LastError,
			"processed_at": row.ProcessedAt,
		}).Error
}
