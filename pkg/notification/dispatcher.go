package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
)

const (
	defaultDispatchInterval = 5 * time.Second
	defaultDispatchBatch    = 50
)

// Dispatcher drains pending outbox rows and delivers them as web pushes.
type Dispatcher struct {
	repo     NotificationRepository
	sender   PushSender
	interval time.Duration
	batch    int
	now      func() time.Time
}

func NewDispatcher(repo NotificationRepository, sender PushSender) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		sender:   sender,
		interval: defaultDispatchInterval,
		batch:    defaultDispatchBatch,
		now:      time.Now,
	}
}

func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

func (d *Dispatcher) Start(ctx context.Context) {
	logging.LogEvent("notification_dispatcher_started", map[string]interface{}{
		"interval": d.interval.String(),
	})
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := d.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				logging.LogError("notification_dispatch", err, nil)
			}
		case <-ctx.Done():
			logging.LogEvent("notification_dispatcher_stopped", nil)
			return
		}
	}
}

// ProcessBatch handles one batch of pending rows and returns how many
// rows left the Pending state.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (int, error) {
	rows, err := d.repo.PendingOutbox(ctx, d.batch)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if err := d.deliver(ctx, row); err != nil {
			// the row stays Pending and is retried on the next tick
			logging.LogError("notification_outbox", err, map[string]interface{}{
				"outbox_id": row.ID.String(),
			})
			continue
		}
		done++
	}
	return done, nil
}

func (d *Dispatcher) deliver(ctx context.Context, row *entities.NotificationOutbox) error {
	now := d.now()
	row.Attempts++
	row.ProcessedAt = &now

	if row.Notification == nil {
		row.Status = entities.OutboxFailed
		row.LastError = "notification no longer exists"
		return d.repo.UpdateOutbox(ctx, row)
	}

	subs, err := d.repo.SubscriptionsOf(ctx, row.Notification.UserID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(domain.PushPayload{
		Title: row.Notification.Title,
		Body:  row.Notification.Body,
		URL:   row.Notification.URL,
	})
	if err != nil {
		return err
	}

	for _, sub := range subs {
		sendErr := d.sender.Send(ctx, sub, payload)
		switch {
		case sendErr == nil:
		case errors.Is(sendErr, ErrSubscriptionGone):
			if err := d.repo.DeleteSubscriptionByID(ctx, sub.ID); err != nil {
				return err
			}
		default:
			row.LastError = sendErr.Error()
			if err := d.repo.RecordSubscriptionFailure(ctx, sub.ID, sendErr.Error(), now); err != nil {
				return err
			}
		}
	}

	row.Status = entities.OutboxSent
	return d.repo.UpdateOutbox(ctx, row)
}
