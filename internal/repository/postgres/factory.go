package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type Repositories struct {
	Users      repo.Users
	Posts      repo.Posts
	Categories repo.Categories
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:      &usersRepo{pool},
		Posts:      &postsRepo{pool},
		Categories: &categoriesRepo{pool},
	}
}
