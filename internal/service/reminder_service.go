package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"notesbot/internal/model"
	"notesbot/internal/repository"
	"notesbot/internal/timeparse"
)

// ErrEmptyReminder means the user supplied no usable reminder text.
var ErrEmptyReminder = errors.New("reminder text is empty")

const maxTitleLen = 100

// ReminderInput carries validated reminder fields collected from a dialog.
type ReminderInput struct {
	Title    string
	Content  string
	Time     time.Time
	Repeat   model.RepeatKind
	Interval int
}

// ReminderService creates and manages reminders on behalf of the bot.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	log          *zap.Logger
}

func NewReminderService(reminderRepo *repository.ReminderRepository, log *zap.Logger) *ReminderService {
	return &ReminderService{reminderRepo: reminderRepo, log: log}
}

// CreateFromText builds a reminder out of free-form text like
// "купить хлеб завтра в 9:00". The time expression is cut out of the text and
// the remainder becomes the title; without a recognizable expression the
// reminder defaults to one hour from now.
func (s *ReminderService) CreateFromText(ctx context.Context, user *model.User, chatID int64, text string, now time.Time) (*model.Reminder, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReminder
	}

	title := text
	when := now.Add(time.Hour)

	res, err := timeparse.Parse(text, now)
	switch {
	case errors.Is(err, timeparse.ErrInvalidExpression):
		// A pattern matched but its numbers are nonsense. Same fallback
		// as no match, but worth its own log line.
		s.log.Warn("time expression rejected",
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("parse reminder time: %w", err)
	case res.Matched:
		when = res.Time
		if res.Remainder != "" {
			title = res.Remainder
		}
	default:
		s.log.Debug("no time expression found, using default offset",
			zap.Int64("telegram_id", user.TelegramID))
	}

	reminder := &model.Reminder{
		UserID:         user.ID,
		ChatID:         chatID,
		Title:          truncate(title, maxTitleLen),
		Content:        text,
		ReminderTime:   when,
		IsActive:       true,
		RepeatKind:     model.RepeatNone,
		RepeatInterval: 1,
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Create stores a reminder assembled by the guided dialog.
func (s *ReminderService) Create(ctx context.Context, user *model.User, chatID int64, input ReminderInput) (*model.Reminder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyReminder
	}
	if !input.Repeat.Valid() {
		return nil, fmt.Errorf("%w: kind %q", ErrInvalidRecurrence, input.Repeat)
	}
	interval := input.Interval
	if interval < 1 {
		interval = 1
	}

	reminder := &model.Reminder{
		UserID:         user.ID,
		ChatID:         chatID,
		Title:          truncate(title, maxTitleLen),
		Content:        strings.TrimSpace(input.Content),
		ReminderTime:   input.Time,
		IsActive:       true,
		RepeatKind:     input.Repeat,
		RepeatInterval: interval,
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// ListActive returns the user's pending reminders, soonest first.
func (s *ReminderService) ListActive(ctx context.Context, user *model.User) ([]model.Reminder, error) {
	return s.reminderRepo.ListActive(ctx, user.ID)
}

// Complete deactivates a reminder by user request.
func (s *ReminderService) Complete(ctx context.Context, user *model.User, reminderID uint) (bool, error) {
	return s.reminderRepo.MarkCompleted(ctx, reminderID, user.ID)
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, user *model.User, reminderID uint) error {
	return s.reminderRepo.Delete(ctx, user.ID, reminderID)
}

// SkipOccurrence advances a repeating reminder to its next occurrence without
// firing it. Non-repeating reminders cannot be skipped.
func (s *ReminderService) SkipOccurrence(ctx context.Context, user *model.User, reminderID uint) (*model.Reminder, error) {
	reminder, err := s.reminderRepo.FindByID(ctx, user.ID, reminderID)
	if err != nil {
		return nil, err
	}
	if !reminder.RepeatKind.Repeats() {
		return nil, fmt.Errorf("%w: reminder %d does not repeat", ErrInvalidRecurrence, reminderID)
	}

	next, err := NextOccurrence(reminder.ReminderTime, reminder.RepeatKind, reminder.RepeatInterval)
	if err != nil {
		return nil, err
	}
	if _, err := s.reminderRepo.Rearm(ctx, reminder.ID, user.ID, next); err != nil {
		return nil, err
	}
	reminder.ReminderTime = next
	return reminder, nil
}

// Snooze pushes an active reminder forward by d from now.
func (s *ReminderService) Snooze(ctx context.Context, user *model.User, reminderID uint, d time.Duration, now time.Time) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, fmt.Errorf("snooze duration must be positive, got %v", d)
	}
	next := now.Add(d)
	ok, err := s.reminderRepo.Rearm(ctx, reminderID, user.ID, next)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, fmt.Errorf("reminder %d not found", reminderID)
	}
	return next, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
