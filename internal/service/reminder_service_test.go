package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notesbot/internal/model"
	"notesbot/internal/repository"
)

func newReminderService(t *testing.T) (*ReminderService, *repository.ReminderRepository) {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	repo := repository.NewReminderRepository(db)
	return NewReminderService(repo, zap.NewNop()), repo
}

var testUser = &model.User{ID: 1, TelegramID: 42, ChatID: 42}

func TestCreateFromTextExtractsTime(t *testing.T) {
	svc, _ := newReminderService(t)
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)

	reminder, err := svc.CreateFromText(context.Background(), testUser, 42, "купить хлеб завтра", now)
	require.NoError(t, err)

	want := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	assert.True(t, reminder.ReminderTime.Equal(want), "got %v want %v", reminder.ReminderTime, want)
	assert.Equal(t, "купить хлеб", reminder.Title)
	assert.Equal(t, "купить хлеб завтра", reminder.Content)
	assert.Equal(t, model.RepeatNone, reminder.RepeatKind)
	assert.True(t, reminder.IsActive)
	assert.EqualValues(t, 42, reminder.ChatID)
}

func TestCreateFromTextDefaultsToOneHour(t *testing.T) {
	svc, _ := newReminderService(t)
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)

	reminder, err := svc.CreateFromText(context.Background(), testUser, 42, "помыть машину", now)
	require.NoError(t, err)
	assert.True(t, reminder.ReminderTime.Equal(now.Add(time.Hour)))
	assert.Equal(t, "помыть машину", reminder.Title)
}

func TestCreateFromTextInvalidExpressionFallsBack(t *testing.T) {
	svc, _ := newReminderService(t)
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)

	// April has 30 days: the pattern matches but is rejected, and the
	// reminder falls back to the one-hour default.
	reminder, err := svc.CreateFromText(context.Background(), testUser, 42, "встреча 31.04", now)
	require.NoError(t, err)
	assert.True(t, reminder.ReminderTime.Equal(now.Add(time.Hour)))
	assert.Equal(t, "встреча 31.04", reminder.Title)
}

func TestCreateFromTextRejectsEmpty(t *testing.T) {
	svc, _ := newReminderService(t)

	_, err := svc.CreateFromText(context.Background(), testUser, 42, "   ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyReminder)
}

func TestCreateValidatesRepeatKind(t *testing.T) {
	svc, _ := newReminderService(t)

	_, err := svc.Create(context.Background(), testUser, 42, ReminderInput{
		Title:  "зарядка",
		Time:   time.Now().Add(time.Hour),
		Repeat: model.RepeatKind("hourly"),
	})
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestSkipOccurrence(t *testing.T) {
	svc, repo := newReminderService(t)
	ctx := context.Background()
	start := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)

	reminder, err := svc.Create(ctx, testUser, 42, ReminderInput{
		Title:    "отчёт",
		Time:     start,
		Repeat:   model.RepeatWeekly,
		Interval: 2,
	})
	require.NoError(t, err)

	skipped, err := svc.SkipOccurrence(ctx, testUser, reminder.ID)
	require.NoError(t, err)
	want := start.AddDate(0, 0, 14)
	assert.True(t, skipped.ReminderTime.Equal(want), "got %v want %v", skipped.ReminderTime, want)

	stored, err := repo.FindByID(ctx, testUser.ID, reminder.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderTime.Equal(want))
	assert.True(t, stored.IsActive)
}

func TestSkipOccurrenceRejectsOneShot(t *testing.T) {
	svc, _ := newReminderService(t)
	ctx := context.Background()

	reminder, err := svc.Create(ctx, testUser, 42, ReminderInput{
		Title:  "разовое",
		Time:   time.Now().Add(time.Hour),
		Repeat: model.RepeatNone,
	})
	require.NoError(t, err)

	_, err = svc.SkipOccurrence(ctx, testUser, reminder.ID)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestSnooze(t *testing.T) {
	svc, repo := newReminderService(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)

	reminder, err := svc.Create(ctx, testUser, 42, ReminderInput{
		Title:  "позвонить",
		Time:   now,
		Repeat: model.RepeatNone,
	})
	require.NoError(t, err)

	next, err := svc.Snooze(ctx, testUser, reminder.ID, 15*time.Minute, now)
	require.NoError(t, err)
	assert.True(t, next.Equal(now.Add(15*time.Minute)))

	stored, err := repo.FindByID(ctx, testUser.ID, reminder.ID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderTime.Equal(next))

	_, err = svc.Snooze(ctx, testUser, 9999, 15*time.Minute, now)
	assert.Error(t, err)

	_, err = svc.Snooze(ctx, testUser, reminder.ID, -time.Minute, now)
	assert.Error(t, err)
}
