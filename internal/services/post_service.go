package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/apperr"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/policy"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	asyncViewTimeout = 5 * time.Second
)

// Submitter runs a job in the background; worker.Pool satisfies it.
type Submitter interface {
	Submit(func()) bool
}

// PostService applies the ownership policy to post mutations. Every mutating
// call takes the acting identity explicitly; nil means anonymous.
type PostService struct {
	posts      repo.Posts
	categories repo.Categories
	policy     policy.Ownership
	views      Submitter
}

type PostOption func(*PostService)

func WithPolicy(p policy.Ownership) PostOption {
	return func(s *PostService) { s.policy = p }
}

// WithAsyncViews moves the view-count increment off the read path. Increments
// are best effort: they are lost when the queue is full.
func WithAsyncViews(w Submitter) PostOption {
	return func(s *PostService) { s.views = w }
}

func NewPostService(posts repo.Posts, categories repo.Categories, opts ...PostOption) *PostService {
	s := &PostService{posts: posts, categories: categories}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Policy exposes the ownership rules the service enforces.
func (s *PostService) Policy() policy.Ownership { return s.policy }

type PostInput struct {
	Title      string
	Content    string
	Excerpt    string
	CategoryID string
	Tags       []string
	Published  bool
}

func (s *PostService) Create(ctx context.Context, actor *models.User, in PostInput) (models.Post, error) {
	if actor == nil {
		return models.Post{}, fmt.Errorf("create post: %w", apperr.ErrUnauthorized)
	}
	if err := validate.Collect(
		validate.Required("title", in.Title),
		validate.Required("content", in.Content),
	); err != nil {
		return models.Post{}, invalid(err)
	}

	p := models.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Excerpt:   strings.TrimSpace(in.Excerpt),
		AuthorID:  actor.ID,
		Tags:      models.NormalizeTags(in.Tags),
		Published: in.Published,
	}
	if p.Excerpt == "" {
		p.Excerpt = models.DeriveExcerpt(p.Content)
	}
	if id := strings.TrimSpace(in.CategoryID); id != "" {
		if err := s.checkCategory(ctx, id); err != nil {
			return models.Post{}, err
		}
		p.CategoryID = &id
	}

	created, err := s.posts.Create(ctx, p)
	if err != nil {
		return models.Post{}, storeErr("create post", err)
	}
	metrics.PostMutations.WithLabelValues("create").Inc()
	return created, nil
}

func (s *PostService) checkCategory(ctx context.Context, id string) error {
	_, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return invalid(validate.Errs{{Field: "category", Msg: "unknown category"}})
	}
	return storeErr("get category", err)
}

// List returns one page of posts, newest first. Out of range page and limit
// values fall back to the defaults.
func (s *PostService) List(ctx context.Context, f models.PostFilter) ([]models.Post, models.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	f.CategoryID = strings.TrimSpace(f.CategoryID)

	posts, total, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, storeErr("list posts", err)
	}
	return posts, models.NewPagination(total, f.Page, f.Limit), nil
}

// Get returns a post and counts the fetch as a view, whoever the caller is.
func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, storeErr("get post", err)
	}
	metrics.PostViews.Inc()

	if s.views != nil {
		s.views.Submit(func() {
			ctx, cancel := context.WithTimeout(context.Background(), asyncViewTimeout)
			defer cancel()
			if _, err := s.posts.IncrementViews(ctx, id); err != nil {
				slog.Warn("async view increment", "post_id", id, "err", err)
			}
		})
		p.ViewCount++
		return p, nil
	}

	n, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		return models.Post{}, storeErr("increment views", err)
	}
	p.ViewCount = n
	return p, nil
}

// Update merges patch into the post when the policy allows actor to modify it.
// The author is never changed.
func (s *PostService) Update(ctx context.Context, actor *models.User, id string, patch models.PostPatch) (models.Post, error) {
	p, err := s.authorize(ctx, actor, id, "update")
	if err != nil {
		return models.Post{}, err
	}
	if patch.CategoryID != nil {
		if cid := strings.TrimSpace(*patch.CategoryID); cid != "" {
			if err := s.checkCategory(ctx, cid); err != nil {
				return models.Post{}, err
			}
		}
	}

	author := p.AuthorID
	patch.Apply(&p)
	p.AuthorID = author
	if p.Excerpt == "" {
		p.Excerpt = models.DeriveExcerpt(p.Content)
	}

	updated, err := s.posts.Update(ctx, p)
	if err != nil {
		return models.Post{}, storeErr("update post", err)
	}
	metrics.PostMutations.WithLabelValues("update").Inc()
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, actor *models.User, id string) error {
	if _, err := s.authorize(ctx, actor, id, "delete"); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeErr("delete post", err)
	}
	metrics.PostMutations.WithLabelValues("delete").Inc()
	return nil
}

// authorize loads the post fresh and checks the policy against it.
func (s *PostService) authorize(ctx context.Context, actor *models.User, id, op string) (models.Post, error) {
	if actor == nil {
		return models.Post{}, fmt.Errorf("%s post: %w", op, apperr.ErrUnauthorized)
	}
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, storeErr(op+" post", err)
	}
	if !s.policy.CanModify(actor, p.AuthorID) {
		metrics.PolicyDenials.WithLabelValues(op).Inc()
		return models.Post{}, fmt.Errorf("%s post: %w: only the author may %s this post", op, apperr.ErrForbidden, op)
	}
	return p, nil
}

// AddComment appends a comment by actor to any existing post. Comments cannot
// be edited or removed.
func (s *PostService) AddComment(ctx context.Context, actor *models.User, postID, content string) (models.Post, error) {
	if actor == nil {
		return models.Post{}, fmt.Errorf("add comment: %w", apperr.ErrUnauthorized)
	}
	content = strings.TrimSpace(content)
	if err := validate.Collect(validate.Required("content", content)); err != nil {
		return models.Post{}, invalid(err)
	}
	if err := s.posts.AppendComment(ctx, postID, models.Comment{AuthorID: actor.ID, Content: content}); err != nil {
		return models.Post{}, storeErr("add comment", err)
	}
	metrics.PostMutations.WithLabelValues("comment").Inc()

	p, err := s.posts.GetByID(ctx, postID)
	return p, storeErr("get post", err)
}
