package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/SherClockHolmes/webpush-go"
)

// ErrSubscriptionGone means the push service no longer knows the endpoint.
var ErrSubscriptionGone = errors.New("push subscription expired")

type (
	PushSender interface {
		Send(ctx context.Context, sub *entities.PushSubscription, payload []byte) error
	}

	VAPIDConfig struct {
		PublicKey  string
		PrivateKey string
		Subject    string
		TTL        int
	}

	webPushSender struct {
		cfg VAPIDConfig
	}
)

func LoadVAPIDConfig() VAPIDConfig {
	return VAPIDConfig{
		PublicKey:  utils.GetConfig("VAPID_PUBLIC_KEY"),
		PrivateKey: utils.GetConfig("VAPID_PRIVATE_KEY"),
		Subject:    utils.GetConfig("VAPID_SUBJECT"),
		TTL:        3600,
	}
}

func (c VAPIDConfig) Enabled() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

func NewWebPushSender(cfg VAPIDConfig) PushSender {
	return &webPushSender{cfg: cfg}
}

func (s *webPushSender) Send(ctx context.Context, sub *entities.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
