package domain

import (
	"encoding/json"
)

var (
	MessageSuccessGetNotifications = "notifications retrieved successfully"
	MessageSuccessSendNotification = "notification sent successfully"
	MessageSuccessMarkRead         = "notification marked as read"
	MessageSuccessSubscribe        = "push subscription saved"
	MessageSuccessUnsubscribe      = "push subscription removed"

	MessageFailedGetNotifications = "failed to retrieve notifications"
	MessageFailedSendNotification = "failed to send notification"
	MessageFailedMarkRead         = "failed to mark notification as read"
	MessageFailedSubscribe        = "failed to save push subscription"
	MessageFailedUnsubscribe      = "failed to remove push subscription"

	ErrNotificationNotFound = newError(KindNotFound, "notification not found")
	ErrNotificationTitle    = newError(KindValidation, "notification title is required")
)

type (
	NotifyRequest struct {
		UserID   string          `json:"user_id" validate:"required,uuid"`
		Title    string          `json:"title" validate:"required,max=120"`
		Body     string          `json:"body" validate:"max=1000"`
		URL      string          `json:"url" validate:"omitempty"`
		Data     json.RawMessage `json:"data"`
		SenderID string          `json:"-"`
	}

	SubscriptionKeys struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	}

	SubscriptionRequest struct {
		Endpoint string           `json:"endpoint" validate:"required,url"`
		Keys     SubscriptionKeys `json:"keys" validate:"required"`
	}

	UnsubscribeRequest struct {
		Endpoint string `json:"endpoint" validate:"required"`
	}

	// PushPayload is what the service worker receives.
	PushPayload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		URL   string `json:"url,omitempty"`
	}
)
