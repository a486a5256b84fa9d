package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baharkarakas/blog-backend/internal/apperr"
	"github.com/baharkarakas/blog-backend/internal/models"
)

type postsRepo struct{ pool *pgxpool.Pool }

const postSelect = `
SELECT p.id::text, p.title, p.content, COALESCE(p.excerpt, ''),
       p.author_id::text, u.username,
       p.category_id::text, COALESCE(c.name, ''),
       COALESCE(p.tags, '{}'::text[]), p.is_published, p.view_count,
       p.created_at, p.updated_at
  FROM posts p
  JOIN users u ON u.id = p.author_id
  LEFT JOIN categories c ON c.id = p.category_id`

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Excerpt,
		&p.AuthorID, &p.AuthorName,
		&p.CategoryID, &p.CategoryName,
		&p.Tags, &p.Published, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO posts (id, title, content, excerpt, author_id, category_id, tags, is_published)
VALUES ($1, $2, $3, $4, $5, $6::uuid, $7, $8)`,
		p.ID, p.Title, p.Content, p.Excerpt, p.AuthorID, p.CategoryID, p.Tags, p.Published,
	)
	if err != nil {
		return models.Post{}, wrap("create post", err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return models.Post{}, wrap("get post", err)
	}
	p.Comments, err = r.comments(ctx, p.ID)
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (r *postsRepo) comments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT cm.id::text, cm.author_id::text, u.username, cm.content, cm.created_at
  FROM comments cm
  JOIN users u ON u.id = cm.author_id
 WHERE cm.post_id = $1
 ORDER BY cm.seq`, postID)
	if err != nil {
		return nil, wrap("list comments", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, wrap("scan comment", err)
		}
		out = append(out, c)
	}
	return out, wrap("list comments", rows.Err())
}

func (r *postsRepo) List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	const where = ` WHERE ($1 = '' OR p.category_id::text = $1)`

	rows, err := r.pool.Query(ctx,
		postSelect+where+` ORDER BY p.created_at DESC, p.id LIMIT $2 OFFSET $3`,
		f.CategoryID, f.Limit, f.Offset(),
	)
	if err != nil {
		return nil, 0, wrap("list posts", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, f.Limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, wrap("scan post", err)
		}
		p.Comments = []models.Comment{}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list posts", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts p`+where, f.CategoryID).Scan(&total); err != nil {
		return nil, 0, wrap("count posts", err)
	}
	return posts, total, nil
}

// Update writes the mutable columns. author_id is never part of the statement.
func (r *postsRepo) Update(ctx context.Context, p models.Post) (models.Post, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE posts
   SET title = $2, content = $3, excerpt = $4, category_id = $5::uuid,
       tags = $6, is_published = $7, updated_at = now()
 WHERE id = $1`,
		p.ID, p.Title, p.Content, p.Excerpt, p.CategoryID, p.Tags, p.Published,
	)
	if err != nil {
		return models.Post{}, wrap("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Post{}, fmt.Errorf("update post: %w", apperr.ErrNotFound)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return wrap("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete post: %w", apperr.ErrNotFound)
	}
	return nil
}

func (r *postsRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count`, id,
	).Scan(&n)
	return n, wrap("increment views", err)
}

func (r *postsRepo) AppendComment(ctx context.Context, postID string, c models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, post_id, author_id, content) VALUES ($1, $2, $3, $4)`,
		c.ID, postID, c.AuthorID, c.Content,
	)
	return wrap("append comment", err)
}
