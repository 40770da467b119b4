package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"notesbot/internal/model"
)

// ReminderStore is the slice of persistence the dispatcher works against.
// The store, not the dispatcher, decides what is due: the filter is
// is_active AND reminder_time <= now, applied server-side.
type ReminderStore interface {
	Due(ctx context.Context, now time.Time) ([]model.Reminder, error)
	MarkCompleted(ctx context.Context, id, userID uint) (bool, error)
	Rearm(ctx context.Context, id, userID uint, next time.Time) (bool, error)
}

// NotificationSink delivers a rendered reminder to a chat. A single attempt;
// any retry discipline belongs to the implementation, not the dispatcher.
type NotificationSink interface {
	Deliver(ctx context.Context, chatID int64, text string) error
}

// ReminderDispatcher polls the store for due reminders and fires each one:
// one-shot reminders are deactivated after a confirmed send, repeating ones
// are re-armed to their next occurrence. A failed send leaves the reminder
// untouched so the next tick retries it (at-least-once delivery). One
// dispatcher instance per process; running two would duplicate sends.
type ReminderDispatcher struct {
	store    ReminderStore
	sink     NotificationSink
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewReminderDispatcher(store ReminderStore, sink NotificationSink, interval time.Duration, log *zap.Logger) *ReminderDispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderDispatcher{
		store:    store,
		sink:     sink,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run polls for due reminders every interval until ctx is cancelled. A store
// failure is logged and followed by one extra interval of backoff; the loop
// itself never stops on errors.
func (d *ReminderDispatcher) Run(ctx context.Context) error {
	d.log.Info("reminder dispatcher started", zap.Duration("interval", d.interval))
	for {
		if err := sleep(ctx, d.interval); err != nil {
			return err
		}
		if err := d.tick(ctx); err != nil {
			d.log.Error("reminder poll failed, backing off", zap.Error(err))
			if err := sleep(ctx, d.interval); err != nil {
				return err
			}
		}
	}
}

// tick runs a single poll iteration. Dispatch failures are per-reminder and
// never abort the batch; only a store read error is returned.
func (d *ReminderDispatcher) tick(ctx context.Context) error {
	now := d.now()
	due, err := d.store.Due(ctx, now)
	if err != nil {
		return fmt.Errorf("due reminders: %w", err)
	}

	for _, reminder := range due {
		d.fire(ctx, reminder)
	}
	return nil
}

func (d *ReminderDispatcher) fire(ctx context.Context, r model.Reminder) {
	if err := d.sink.Deliver(ctx, r.ChatID, RenderReminder(r)); err != nil {
		// Leave the row as is: still active, still due, retried next tick.
		d.log.Warn("reminder delivery failed",
			zap.Uint("reminder_id", r.ID),
			zap.Uint("user_id", r.UserID),
			zap.Error(err))
		return
	}

	if !r.RepeatKind.Repeats() {
		if _, err := d.store.MarkCompleted(ctx, r.ID, r.UserID); err != nil {
			d.log.Error("deactivate reminder",
				zap.Uint("reminder_id", r.ID), zap.Error(err))
		}
		return
	}

	next, err := NextOccurrence(r.ReminderTime, r.RepeatKind, r.RepeatInterval)
	if err != nil {
		// Repeat fields are validated at creation; a stored row failing
		// here is a bug, not something to hide behind a default.
		d.log.Error("compute next occurrence",
			zap.Uint("reminder_id", r.ID),
			zap.String("repeat_kind", string(r.RepeatKind)),
			zap.Int("repeat_interval", r.RepeatInterval),
			zap.Error(err))
		return
	}

	if _, err := d.store.Rearm(ctx, r.ID, r.UserID, next); err != nil {
		d.log.Error("rearm reminder",
			zap.Uint("reminder_id", r.ID), zap.Error(err))
		return
	}
	d.log.Info("reminder dispatched",
		zap.Uint("reminder_id", r.ID),
		zap.Time("next", next))
}

// RenderReminder builds the HTML message body sent to the chat.
func RenderReminder(r model.Reminder) string {
	var sb strings.Builder
	sb.WriteString("⏰ <b>Напоминание:</b>\n\n")
	sb.WriteString(html.EscapeString(strings.TrimSpace(r.Title)))
	if content := strings.TrimSpace(r.Content); content != "" && content != strings.TrimSpace(r.Title) {
		sb.WriteByte('\n')
		sb.WriteString(html.EscapeString(content))
	}
	return sb.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
