package repository

import (
	"context"

	"github.com/baharkarakas/blog-backend/internal/models"
)

// Lookups return apperr.ErrNotFound for missing rows and unique violations
// surface as apperr.ErrConflict.

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error)
	Update(ctx context.Context, p models.Post) (models.Post, error)
	Delete(ctx context.Context, id string) error
	// IncrementViews adds one to the view count and returns the new value.
	IncrementViews(ctx context.Context, id string) (int64, error)
	AppendComment(ctx context.Context, postID string, c models.Comment) error
}

type Categories interface {
	Create(ctx context.Context, name string) (models.Category, error)
	GetByID(ctx context.Context, id string) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}
