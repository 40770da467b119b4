package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"notesbot/internal/model"
)

// NoteRepository handles CRUD for notes.
type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// ListByUser returns the user's notes, pinned first, newest next.
func (r *NoteRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.Note, error) {
	var notes []model.Note
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_pinned DESC, updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// ListPinned returns the user's pinned notes, newest first.
func (r *NoteRepository) ListPinned(ctx context.Context, userID uint) ([]model.Note, error) {
	var notes []model.Note
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_pinned = ?", userID, true).
		Order("updated_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepository) FindByID(ctx context.Context, userID, noteID uint) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, noteID).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// SetPinned toggles pinning and reports whether a row was affected.
func (r *NoteRepository) SetPinned(ctx context.Context, userID, noteID uint, pinned bool) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND user_id = ?", noteID, userID).
		Update("is_pinned", pinned)
	if res.Error != nil {
		return false, fmt.Errorf("pin note: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID, noteID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, noteID).
		Delete(&model.Note{}).Error; err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
