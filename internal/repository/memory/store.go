// Package memory implements the repositories over process memory. It backs
// STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/blog-backend/internal/apperr"
	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

type Repositories struct {
	Users      repo.Users
	Posts      repo.Posts
	Categories repo.Categories
}

type store struct {
	mu         sync.RWMutex
	seq        int64
	users      map[string]models.User
	posts      map[string]*postRow
	categories map[string]models.Category
	now        func() time.Time
}

type postRow struct {
	seq  int64
	post models.Post
}

func NewRepositories() Repositories {
	s := &store{
		users:      map[string]models.User{},
		posts:      map[string]*postRow{},
		categories: map[string]models.Category{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	return Repositories{
		Users:      &usersRepo{s},
		Posts:      &postsRepo{s},
		Categories: &categoriesRepo{s},
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, apperr.ErrNotFound)
}

// ---------- users ----------

type usersRepo struct{ s *store }

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, fmt.Errorf("create user: %w: email", apperr.ErrConflict)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if !u.Role.Valid() {
		u.Role = models.RoleUser
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, notFound("user", id)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, notFound("user", email)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---------- categories ----------

type categoriesRepo struct{ s *store }

func (r *categoriesRepo) Create(ctx context.Context, name string) (models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			return models.Category{}, fmt.Errorf("create category: %w: name", apperr.ErrConflict)
		}
	}
	c := models.Category{ID: uuid.NewString(), Name: name, CreatedAt: r.s.now()}
	r.s.categories[c.ID] = c
	return c, nil
}

func (r *categoriesRepo) GetByID(ctx context.Context, id string) (models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return models.Category{}, notFound("category", id)
	}
	return c, nil
}

func (r *categoriesRepo) List(ctx context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------- posts ----------

type postsRepo struct{ s *store }

// populate fills the joined names; callers hold at least the read lock.
func (s *store) populate(p models.Post) models.Post {
	p.AuthorName = s.users[p.AuthorID].Username
	p.CategoryName = ""
	if p.CategoryID != nil {
		p.CategoryName = s.categories[*p.CategoryID].Name
	}
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	comments := make([]models.Comment, len(p.Comments))
	for i, c := range p.Comments {
		c.AuthorName = s.users[c.AuthorID].Username
		comments[i] = c
	}
	p.Comments = comments
	return p
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.AuthorID]; !ok {
		return models.Post{}, notFound("user", p.AuthorID)
	}
	if p.CategoryID != nil {
		if _, ok := r.s.categories[*p.CategoryID]; !ok {
			return models.Post{}, notFound("category", *p.CategoryID)
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Tags = slices.Clone(p.Tags)
	p.Comments = nil
	p.ViewCount = 0
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.seq++
	r.s.posts[p.ID] = &postRow{seq: r.s.seq, post: p}
	return r.s.populate(p), nil
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.posts[id]
	if !ok {
		return models.Post{}, notFound("post", id)
	}
	return r.s.populate(row.post), nil
}

func (r *postsRepo) List(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]*postRow, 0, len(r.s.posts))
	for _, row := range r.s.posts {
		if f.CategoryID != "" && (row.post.CategoryID == nil || *row.post.CategoryID != f.CategoryID) {
			continue
		}
		rows = append(rows, row)
	}
	// newest first
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	total := len(rows)
	start := min(f.Offset(), total)
	end := min(start+f.Limit, total)
	out := make([]models.Post, 0, end-start)
	for _, row := range rows[start:end] {
		p := r.s.populate(row.post)
		p.Comments = []models.Comment{}
		out = append(out, p)
	}
	return out, total, nil
}

func (r *postsRepo) Update(ctx context.Context, p models.Post) (models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.posts[p.ID]
	if !ok {
		return models.Post{}, notFound("post", p.ID)
	}
	cur := &row.post
	cur.Title = p.Title
	cur.Content = p.Content
	cur.Excerpt = p.Excerpt
	cur.CategoryID = p.CategoryID
	cur.Tags = slices.Clone(p.Tags)
	cur.Published = p.Published
	cur.UpdatedAt = r.s.now()
	return r.s.populate(*cur), nil
}

func (r *postsRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return notFound("post", id)
	}
	delete(r.s.posts, id)
	return nil
}

func (r *postsRepo) IncrementViews(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.posts[id]
	if !ok {
		return 0, notFound("post", id)
	}
	row.post.ViewCount++
	return row.post.ViewCount, nil
}

func (r *postsRepo) AppendComment(ctx context.Context, postID string, c models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.posts[postID]
	if !ok {
		return notFound("post", postID)
	}
	if _, ok := r.s.users[c.AuthorID]; !ok {
		return notFound("user", c.AuthorID)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.s.now()
	row.post.Comments = append(row.post.Comments, c)
	return nil
}
