package service

import (
	"context"

	"notesbot/internal/model"
	"notesbot/internal/repository"
)

// CategoryService provides helpers around note categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

func (s *CategoryService) GetOrCreate(ctx context.Context, user *model.User, name string) (*model.Category, error) {
	return s.repo.GetOrCreate(ctx, user.ID, name)
}

func (s *CategoryService) Delete(ctx context.Context, user *model.User, categoryID uint) error {
	return s.repo.Delete(ctx, user.ID, categoryID)
}
