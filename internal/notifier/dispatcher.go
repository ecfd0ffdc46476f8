package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

const pendingBatchSize = 100

// Dispatcher creates notification records and broadcasts due ones to its
// channels. It is an explicitly constructed dependency, passed to whoever
// needs to notify; there is no global instance. Delivery is best effort:
// channel failures are logged and swallowed, so a flaky SMTP server or
// broker can never fail a booking or a payment.
type Dispatcher struct {
	notifications domain.NotificationRepository
	customers     domain.CustomerRepository
	channels      []Channel
	logger        *slog.Logger

	wg sync.WaitGroup
}

func New(
	notifications domain.NotificationRepository,
	customers domain.CustomerRepository,
	logger *slog.Logger,
	channels ...Channel) *Dispatcher {

	return &Dispatcher{
		notifications: notifications,
		customers:     customers,
		channels:      channels,
		logger:        logger,
	}
}

// CreateAndNotify inserts the notification record and, when it is already
// due, broadcasts it asynchronously. A future send_at leaves the record for
// the pending worker.
func (d *Dispatcher) CreateAndNotify(
	ctx context.Context,
	customerID int,
	typ domain.NotificationType,
	message string,
	sendAt time.Time) (*domain.Notification, error) {

	now := time.Now()
	if sendAt.IsZero() {
		sendAt = now
	}

	notification := &domain.Notification{
		CustomerID: customerID,
		Type:       typ,
		Message:    message,
		SendAt:     sendAt,
	}

	err := d.notifications.Create(ctx, notification)
	if err != nil {
		return nil, err
	}

	if notification.Due(now) {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(*notification)
		}()
	}

	return notification, nil
}

// RunPending sweeps unsent due notifications on the given interval until the
// context is cancelled. One sweep runs immediately on start.
func (d *Dispatcher) RunPending(ctx context.Context, interval time.Duration) {
	d.logger.Info("starting notification worker", "interval", interval)

	d.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.sweep(ctx)
		case <-ctx.Done():
			d.logger.Info("notification worker stopped")
			return
		}
	}
}

// Wait blocks until all in-flight broadcasts finish. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) sweep(ctx context.Context) {
	pending, err := d.notifications.DuePending(ctx, time.Now(), pendingBatchSize)
	if err != nil {
		d.logger.Error("failed to load pending notifications", "error", err)
		return
	}

	for _, n := range pending {
		d.deliver(n)
	}
}

// deliver broadcasts to every channel and marks the record sent. Runs
// detached from the triggering request, so it uses its own context.
func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customer, err := d.customers.GetById(ctx, n.CustomerID)
	if err != nil {
		d.logger.Error("failed to load notification recipient",
			"notification_id", n.ID, "customer_id", n.CustomerID, "error", err)
		return
	}

	for _, channel := range d.channels {
		if err := channel.Send(ctx, &n, customer); err != nil {
			d.logger.Error("notification channel failed",
				"channel", channel.Name(), "notification_id", n.ID, "error", err)
		}
	}

	if err := d.notifications.MarkSent(ctx, n.ID, time.Now()); err != nil {
		d.logger.Error("failed to mark notification sent", "notification_id", n.ID, "error", err)
	}
}
