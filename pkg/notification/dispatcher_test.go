package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]error
}

func (f *fakeSender) Send(_ context.Context, sub *entities.PushSubscription, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fails[sub.Endpoint]; ok {
		return err
	}
	f.sent = append(f.sent, sub.Endpoint)
	return nil
}

func TestDispatcherDeliversAndPrunesSubscriptions(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	repo := NewNotificationRepository(db)
	svc := NewNotificationService(repo)

	for _, endpoint := range []string{"https://push/ok", "https://push/gone", "https://push/down"} {
		require.NoError(t, svc.Subscribe(ctx, ana.ID.String(), domain.SubscriptionRequest{
			Endpoint: endpoint,
			Keys:     domain.SubscriptionKeys{P256dh: "p", Auth: "a"},
		}))
	}
	_, err := svc.Notify(ctx, domain.NotifyRequest{UserID: ana.ID.String(), Title: "Nova proposta"})
	require.NoError(t, err)

	sender := &fakeSender{fails: map[string]error{
		"https://push/gone": ErrSubscriptionGone,
		"https://push/down": errors.New("push service returned 500"),
	}}
	processed, err := NewDispatcher(repo, sender).ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, []string{"https://push/ok"}, sender.sent)

	var subs []entities.PushSubscription
	require.NoError(t, db.Order("endpoint").Find(&subs).Error)
	require.Len(t, subs, 2)
	assert.Equal(t, "https://push/down", subs[0].Endpoint)
	assert.NotEmpty(t, subs[0].LastError)
	assert.NotNil(t, subs[0].LastFailureAt)

	var row entities.NotificationOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, entities.OutboxSent, row.Status)
	assert.Equal(t, 1, row.Attempts)

	processed, err = NewDispatcher(repo, sender).ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestDispatcherFailsRowsWithoutNotification(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, db, "ana", domain.RoleProducer)
	repo := NewNotificationRepository(db)

	n, err := NewNotificationService(repo).Notify(ctx, domain.NotifyRequest{UserID: ana.ID.String(), Title: "x"})
	require.NoError(t, err)
	require.NoError(t, db.Delete(&entities.Notification{}, "id = ?", n.ID).Error)

	processed, err := NewDispatcher(repo, &fakeSender{}).ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	var row entities.NotificationOutbox
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, entities.OutboxFailed, row.Status)
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		NewDispatcher(NewNotificationRepository(db), &fakeSender{}).WithInterval(10 * time.Millisecond).Start(ctx)
		close(done)
	}()
	cancel()
	<-done
}
