package service

import (
	"context"
	"errors"
	"strings"

	"notesbot/internal/model"
	"notesbot/internal/repository"
)

// ErrEmptyNote means the note has no title to save.
var ErrEmptyNote = errors.New("note title is empty")

// NoteInput collects note fields from a dialog.
type NoteInput struct {
	Title        string
	Content      string
	CategoryName string
	Pinned       bool
}

// NoteService handles note creation and maintenance.
type NoteService struct {
	noteRepo     *repository.NoteRepository
	categoryRepo *repository.CategoryRepository
}

func NewNoteService(noteRepo *repository.NoteRepository, categoryRepo *repository.CategoryRepository) *NoteService {
	return &NoteService{noteRepo: noteRepo, categoryRepo: categoryRepo}
}

// Create stores a note, resolving the category by name when one is given.
func (s *NoteService) Create(ctx context.Context, user *model.User, input NoteInput) (*model.Note, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEmptyNote
	}

	note := &model.Note{
		UserID:   user.ID,
		Title:    truncate(title, maxTitleLen),
		Content:  strings.TrimSpace(input.Content),
		IsPinned: input.Pinned,
	}

	if name := strings.TrimSpace(input.CategoryName); name != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, name)
		if err != nil {
			return nil, err
		}
		if category != nil {
			note.CategoryID = &category.ID
		}
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// List returns up to limit notes, pinned first.
func (s *NoteService) List(ctx context.Context, user *model.User, limit int) ([]model.Note, error) {
	return s.noteRepo.ListByUser(ctx, user.ID, limit)
}

// TogglePin flips the pinned flag and returns the new state.
func (s *NoteService) TogglePin(ctx context.Context, user *model.User, noteID uint) (bool, error) {
	note, err := s.noteRepo.FindByID(ctx, user.ID, noteID)
	if err != nil {
		return false, err
	}
	if _, err := s.noteRepo.SetPinned(ctx, user.ID, noteID, !note.IsPinned); err != nil {
		return false, err
	}
	return !note.IsPinned, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, user *model.User, noteID uint) error {
	return s.noteRepo.Delete(ctx, user.ID, noteID)
}

// CategoryNames maps category ids to names for rendering note lists.
func (s *NoteService) CategoryNames(ctx context.Context, user *model.User) (map[uint]string, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names, nil
}
