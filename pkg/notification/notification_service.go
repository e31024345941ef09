package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	NotificationService interface {
		Notify(ctx context.Context, req domain.NotifyRequest) (*entities.Notification, error)
		ListByUser(ctx context.Context, userID string) ([]*entities.Notification, error)
		MarkRead(ctx context.Context, id string, userID string) error
		UnreadCount(ctx context.Context, userID string) (int64, error)
		Subscribe(ctx context.Context, userID string, req domain.SubscriptionRequest) error
		Unsubscribe(ctx context.Context, userID string, endpoint string) error
	}

	notificationService struct {
		notificationRepository NotificationRepository
	}
)

func NewNotificationService(notificationRepository NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepository: notificationRepository,
	}
}

// Build turns a request into an unsaved notification row.
func Build(req domain.NotifyRequest) (*entities.Notification, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrNotificationTitle
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, domain.NewValidationError("invalid recipient id")
	}

	n := &entities.Notification{
		UserID: userID,
		Title:  title,
		Body:   req.Body,
		URL:    req.URL,
	}
	if len(req.Data) > 0 {
		n.Data = datatypes.JSON(req.Data)
	}
	if req.SenderID != "" {
		senderID, err := uuid.Parse(req.SenderID)
		if err != nil {
			return nil, domain.NewValidationError("invalid sender id")
		}
		n.SenderID = &senderID
	}
	return n, nil
}

func (s *notificationService) Notify(ctx context.Context, req domain.NotifyRequest) (*entities.Notification, error) {
	n, err := Build(req)
	if err != nil {
		return nil, err
	}
	if err := s.notificationRepository.CreateWithOutbox(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID string) ([]*entities.Notification, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	return s.notificationRepository.ListByUser(ctx, uid)
}

func (s *notificationService) MarkRead(ctx context.Context, id string, userID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotificationNotFound
	}
	n, err := s.notificationRepository.GetByID(ctx, nid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotificationNotFound
		}
		return err
	}
	if n.UserID.String() != userID {
		return domain.ErrNotificationNotFound
	}
	if n.Read {
		return nil
	}
	return s.notificationRepository.MarkRead(ctx, nid)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, domain.ErrParseUUID
	}
	return s.notificationRepository.CountUnread(ctx, uid)
}

func (s *notificationService) Subscribe(ctx context.Context, userID string, req domain.SubscriptionRequest) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	return s.notificationRepository.UpsertSubscription(ctx, &entities.PushSubscription{
		UserID:   uid,
		Endpoint: strings.TrimSpace(req.Endpoint),
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
}

func (s *notificationService) Unsubscribe(ctx context.Context, userID string, endpoint string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	_, err = s.notificationRepository.DeleteSubscription(ctx, uid, strings.TrimSpace(endpoint))
	return err
}
