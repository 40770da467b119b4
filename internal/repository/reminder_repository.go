package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"notesbot/internal/model"
)

// ReminderRepository handles CRUD for reminders. It is the ReminderStore the
// dispatcher runs against.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Due returns active reminders whose time has arrived, filtered in SQL so a
// single query defines the due set for the whole tick.
func (r *ReminderRepository) Due(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND reminder_time <= ?", true, now).
		Order("reminder_time ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	return reminders, nil
}

// ListActive returns the user's pending reminders, soonest first.
func (r *ReminderRepository) ListActive(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("reminder_time ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListActiveBetween returns the user's active reminders within [from, to).
func (r *ReminderRepository) ListActiveBetween(ctx context.Context, userID uint, from, to time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND reminder_time >= ? AND reminder_time < ?", userID, true, from, to).
		Order("reminder_time ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, userID, reminderID uint) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, reminderID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// MarkCompleted sets is_active = false and reports whether a row was affected.
func (r *ReminderRepository) MarkCompleted(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false)
	if res.Error != nil {
		return false, fmt.Errorf("complete reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Rearm advances reminder_time to next, leaving is_active true.
func (r *ReminderRepository) Rearm(ctx context.Context, id, userID uint, next time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("reminder_time", next)
	if res.Error != nil {
		return false, fmt.Errorf("rearm reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a reminder. Only users delete reminders, the dispatcher
// never does.
func (r *ReminderRepository) Delete(ctx context.Context, userID, reminderID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, reminderID).
		Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}
