package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"notesbot/internal/model"
	"notesbot/internal/repository"
	"notesbot/internal/timeparse"
)

// DigestService builds human-readable daily summaries of a user's reminders
// and pinned notes.
type DigestService struct {
	reminderRepo *repository.ReminderRepository
	noteRepo     *repository.NoteRepository
}

func NewDigestService(reminderRepo *repository.ReminderRepository, noteRepo *repository.NoteRepository) *DigestService {
	return &DigestService{reminderRepo: reminderRepo, noteRepo: noteRepo}
}

// DailyDigest renders the digest for one user: today's remaining reminders
// plus pinned notes. The second return value is false when there is nothing
// worth sending.
func (s *DigestService) DailyDigest(ctx context.Context, user model.User, now time.Time) (string, bool, error) {
	year, month, day := now.Date()
	endOfDay := time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())

	reminders, err := s.reminderRepo.ListActiveBetween(ctx, user.ID, now, endOfDay)
	if err != nil {
		return "", false, err
	}

	pinned, err := s.noteRepo.ListPinned(ctx, user.ID)
	if err != nil {
		return "", false, err
	}

	if len(reminders) == 0 && len(pinned) == 0 {
		return "", false, nil
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>План на сегодня</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", timeparse.FormatDate(now)))

	builder.WriteString("⏰ <b>Напоминания</b>\n")
	if len(reminders) == 0 {
		builder.WriteString("— на сегодня напоминаний нет\n")
	} else {
		for _, reminder := range reminders {
			builder.WriteString(formatDigestReminder(reminder, now))
		}
	}

	if len(pinned) > 0 {
		builder.WriteString("\n📌 <b>Закреплённые заметки</b>\n")
		for _, note := range pinned {
			builder.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(strings.TrimSpace(note.Title))))
		}
	}

	return strings.TrimSpace(builder.String()), true, nil
}

func formatDigestReminder(reminder model.Reminder, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("• <b>%s</b> — %s",
		timeparse.FormatClock(reminder.ReminderTime.In(now.Location())),
		html.EscapeString(strings.TrimSpace(reminder.Title))))

	if reminder.RepeatKind.Repeats() {
		sb.WriteString(fmt.Sprintf(" %s", repeatBadge(reminder.RepeatKind, reminder.RepeatInterval)))
	}
	sb.WriteString(fmt.Sprintf("\n   ⏳ %s\n", timeparse.Until(now, reminder.ReminderTime)))
	return sb.String()
}

func repeatBadge(kind model.RepeatKind, interval int) string {
	var each, unit string
	switch kind {
	case model.RepeatDaily:
		each, unit = "ежедневно", "дн."
	case model.RepeatWeekly:
		each, unit = "еженедельно", "нед."
	case model.RepeatMonthly:
		each, unit = "ежемесячно", "мес."
	case model.RepeatYearly:
		each, unit = "ежегодно", "г."
	default:
		return ""
	}
	if interval <= 1 {
		return fmt.Sprintf("<i>(%s)</i>", each)
	}
	return fmt.Sprintf("<i>(каждые %d %s)</i>", interval, unit)
}
