package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/blog-backend/internal/models"
)

type categoriesRepo struct{ pool *pgxpool.Pool }

func (r *categoriesRepo) Create(ctx context.Context, name string) (models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories(id, name) VALUES($1,$2) RETURNING id::text, name, created_at`,
		uuid.NewString(), name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, wrap("create category", err)
}

func (r *categoriesRepo) GetByID(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, name, created_at FROM categories WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, wrap("get category", err)
}

func (r *categoriesRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, wrap("scan category", err)
		}
		out = append(out, c)
	}
	return out, wrap("list categories", rows.Err())
}
