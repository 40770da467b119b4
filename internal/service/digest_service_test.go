package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesbot/internal/model"
	"notesbot/internal/repository"
)

func newDigestService(t *testing.T) (*DigestService, *repository.ReminderRepository, *repository.NoteRepository) {
	t.Helper()
	db, err := repository.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	reminderRepo := repository.NewReminderRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	return NewDigestService(reminderRepo, noteRepo), reminderRepo, noteRepo
}

func TestDailyDigest(t *testing.T) {
	svc, reminderRepo, noteRepo := newDigestService(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)
	user := model.User{ID: 1, ChatID: 42}

	require.NoError(t, reminderRepo.Create(ctx, &model.Reminder{
		UserID: 1, ChatID: 42, Title: "созвон",
		ReminderTime: time.Date(2024, time.June, 11, 15, 30, 0, 0, time.UTC),
		IsActive:     true, RepeatKind: model.RepeatDaily, RepeatInterval: 1,
	}))
	// Tomorrow's reminder stays out of today's digest.
	require.NoError(t, reminderRepo.Create(ctx, &model.Reminder{
		UserID: 1, ChatID: 42, Title: "завтрашнее",
		ReminderTime: time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC),
		IsActive:     true, RepeatKind: model.RepeatNone,
	}))
	require.NoError(t, noteRepo.Create(ctx, &model.Note{
		UserID: 1, Title: "важная заметка", IsPinned: true,
	}))
	require.NoError(t, noteRepo.Create(ctx, &model.Note{
		UserID: 1, Title: "обычная заметка",
	}))

	text, ok, err := svc.DailyDigest(ctx, user, now)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, text, "План на сегодня")
	assert.Contains(t, text, "15:30")
	assert.Contains(t, text, "созвон")
	assert.Contains(t, text, "ежедневно")
	assert.Contains(t, text, "важная заметка")
	assert.NotContains(t, text, "завтрашнее")
	assert.NotContains(t, text, "обычная заметка")
}

func TestDailyDigestEmpty(t *testing.T) {
	svc, _, _ := newDigestService(t)
	now := time.Date(2024, time.June, 11, 10, 0, 0, 0, time.UTC)

	_, ok, err := svc.DailyDigest(context.Background(), model.User{ID: 1}, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepeatBadge(t *testing.T) {
	assert.Equal(t, "<i>(ежедневно)</i>", repeatBadge(model.RepeatDaily, 1))
	assert.Equal(t, "<i>(каждые 2 нед.)</i>", repeatBadge(model.RepeatWeekly, 2))
	assert.Equal(t, "<i>(ежегодно)</i>", repeatBadge(model.RepeatYearly, 0))
	assert.Equal(t, "", repeatBadge(model.RepeatNone, 1))
}
