package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type CategoryService struct{ r repo.Categories }

func NewCategoryService(r repo.Categories) *CategoryService { return &CategoryService{r: r} }

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cs, err := s.r.List(ctx)
	return cs, storeErr("list categories", err)
}

func (s *CategoryService) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if err := validate.Collect(validate.Required("name", name)); err != nil {
		return models.Category{}, invalid(err)
	}
	c, err := s.r.Create(ctx, name)
	return c, storeErr("create category", err)
}
