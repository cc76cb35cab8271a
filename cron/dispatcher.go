package cron

import (
	"context"
	"fmt"
	"time"

	reminderRepo "emireminder/database/repository/reminder"
	userRepo "emireminder/database/repository/user"
	"emireminder/models"
	"emireminder/services/message"
	"emireminder/services/notification"
	"emireminder/utils"

	"go.uber.org/zap"
)

const defaultDeliveryTimeout = 15 * time.Second

// SweepResult summarizes one sweep.
type SweepResult struct {
	Due       int  `json:"due"`
	Sent      int  `json:"sent"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Persisted bool `json:"persisted"`
	// Busy is set when another sweep held the lease.
	Busy bool `json:"busy"`
}

// Dispatcher delivers due reminders. Sweep never fails: problems are
// logged and the affected reminders stay pending for the next run.
type Dispatcher struct {
	Reminders  reminderRepo.ReminderRepository
	Users      userRepo.UserRepository
	Transports notification.Transports
	Guard      notification.DeliveryGuard
	Lease      Locker
	Metrics    *Metrics
	Clock      utils.Clock
	Timeout    time.Duration
	Logger     *zap.Logger
}

func (d *Dispatcher) logger() *zap.Logger {
	return utils.LoggerOr(d.Logger)
}

// Sweep sends every pending reminder whose fire time has passed and
// stores all outcomes in one batch.
func (d *Dispatcher) Sweep(ctx context.Context) SweepResult {
	var res SweepResult
	log := d.logger()

	if d.Lease != nil {
		release, ok, err := d.Lease.Acquire(ctx)
		if err != nil {
			log.Error("Could not acquire sweep lease", zap.Error(err))
			res.Busy = true
			return res
		}
		if !ok {
			log.Info("Sweep already running, skipping")
			res.Busy = true
			return res
		}
		defer release()
	}

	start := time.Now()
	defer d.Metrics.observeSweep(start)

	due, err := d.Reminders.ListDue(ctx, d.Clock.Now())
	if err != nil {
		log.Error("Failed to load due reminders", zap.Error(err))
		return res
	}
	res.Due = len(due)
	if len(due) == 0 {
		res.Persisted = true
		return res
	}

	contacts := make(map[string]*models.User)
	outcomes := make([]models.Reminder, 0, len(due))
	for _, r := range due {
		user, cached := contacts[r.UserID]
		if !cached {
			user = d.contact(ctx, r.UserID)
			contacts[r.UserID] = user
		}

		status, skipped := d.deliver(ctx, r, user)
		r.Status = status
		if status == models.ReminderSent {
			sentAt := d.Clock.Now().Truncate(time.Millisecond)
			r.SentAt = &sentAt
			res.Sent++
		} else {
			res.Failed++
		}
		if skipped {
			res.Skipped++
		}
		d.Metrics.dispatchedOne(r.Channel, status)
		log.Debug("Reminder dispatched",
			zap.String("reminderId", r.ID),
			zap.String("channel", string(r.Channel)),
			zap.String("status", string(status)))
		outcomes = append(outcomes, r)
	}

	if err := d.Reminders.SaveOutcomes(ctx, outcomes); err != nil {
		d.Metrics.persistFailed()
		log.Error("Failed to persist sweep outcomes, reminders stay pending",
			zap.Int("count", len(outcomes)), zap.Error(utils.PersistenceFailure("save outcomes", err)))
	} else {
		res.Persisted = true
	}

	log.Info("Sweep finished",
		zap.Int("due", res.Due),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Bool("persisted", res.Persisted))
	return res
}

func (d *Dispatcher) contact(ctx context.Context, userID string) *models.User {
	if d.Users == nil {
		return &models.User{ID: userID}
	}
	user, err := d.Users.GetByID(ctx, userID)
	if err != nil {
		if !utils.IsNotFound(err) {
			d.logger().Warn("Contact lookup failed", zap.String("userId", userID), zap.Error(err))
		}
		return &models.User{ID: userID}
	}
	return user
}

// deliver runs one send. skipped reports a delivery key that was already
// claimed by an earlier sweep, which counts as sent.
func (d *Dispatcher) deliver(ctx context.Context, r models.Reminder, user *models.User) (models.ReminderStatus, bool) {
	key := r.DeliveryKey
	if key == "" {
		key = r.ID
	}
	if d.Guard != nil {
		claimed, err := d.Guard.Claim(ctx, key)
		switch {
		case err != nil:
			d.logger().Warn("Delivery guard unavailable", zap.String("reminderId", r.ID), zap.Error(err))
		case !claimed:
			return models.ReminderSent, true
		}
	}

	delivery := notification.Delivery{
		Key:        key,
		ReminderID: r.ID,
		UserID:     r.UserID,
		Phone:      user.Phone,
		FCMToken:   user.FCMToken,
		Title:      message.PushTitle,
		Text:       r.Message,
	}
	if err := d.send(ctx, d.Transports.For(r.Channel), delivery); err != nil {
		d.logger().Warn("Reminder delivery failed",
			zap.String("reminderId", r.ID),
			zap.String("channel", string(r.Channel)),
			zap.Error(err))
		if d.Guard != nil {
			if relErr := d.Guard.Release(ctx, key); relErr != nil {
				d.logger().Warn("Failed to release delivery key", zap.String("reminderId", r.ID), zap.Error(relErr))
			}
		}
		return models.ReminderFailed, false
	}
	return models.ReminderSent, false
}

// send bounds a transport call by the delivery timeout and turns panics
// into errors.
func (d *Dispatcher) send(ctx context.Context, tr notification.Transport, delivery notification.Delivery) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- utils.TransportFailure(fmt.Sprintf("transport panic: %v", p), nil)
			}
		}()
		done <- tr.Send(ctx, delivery)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return utils.TransportFailure("delivery timed out", ctx.Err())
	}
}
