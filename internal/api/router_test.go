package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/config"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/repository/memory"
	"github.com/baharkarakas/blog-backend/internal/services"
)

type testServer struct {
	h     http.Handler
	repos memory.Repositories
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.FromEnv(func(string) string { return "" })
	cfg.RateRPS, cfg.RateBurst = 10_000, 10_000
	cfg.LoginPerMin = 1_000
	if mutate != nil {
		mutate(&cfg)
	}
	repos := memory.NewRepositories()
	tokens := auth.NewTokenManager("router-test-secret", "blog-test")
	users := services.NewUserService(repos.Users, tokens)
	return &testServer{
		repos: repos,
		h: NewRouter(RouterDeps{
			Cfg:        cfg,
			Tokens:     tokens,
			Users:      users,
			Posts:      services.NewPostService(repos.Posts, repos.Categories),
			Categories: services.NewCategoryService(repos.Categories),
		}),
	}
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type authBody struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type errBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *testServer) register(t *testing.T, name string) authBody {
	t.Helper()
	rec := s.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", name, rec.Code, rec.Body.String())
	}
	return decode[authBody](t, rec)
}

func (s *testServer) createPost(t *testing.T, token, title string) models.Post {
	t.Helper()
	rec := s.call(t, http.MethodPost, "/api/posts", token, map[string]any{
		"title": title, "content": "body of " + title, "tags": []string{"go"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: %d %s", rec.Code, rec.Body.String())
	}
	return decode[models.Post](t, rec)
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, nil)
	reg := s.register(t, "alice")
	if reg.Token == "" || reg.User.Role != models.RoleUser {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	rec := s.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2", "email": "ALICE@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusBadRequest || decode[errBody](t, rec).Code != "conflict" {
		t.Fatalf("duplicate email: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "x@example.com"})
	if rec.Code != http.StatusBadRequest || decode[errBody](t, rec).Code != "validation_failed" {
		t.Fatalf("missing fields: %d %s", rec.Code, rec.Body.String())
	}

	rec = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong-pass"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", rec.Code)
	}
	rec = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	login := decode[authBody](t, rec)

	rec = s.call(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	if rec.Code != http.StatusOK || decode[models.User](t, rec).ID != reg.User.ID {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.call(t, http.MethodGet, "/api/auth/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me anonymous: %d", rec.Code)
	}
}

func TestPostOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	p := s.createPost(t, alice.Token, "Hello")
	if p.AuthorID != alice.User.ID || p.AuthorName != "alice" {
		t.Fatalf("author not set: %+v", p)
	}

	if rec := s.call(t, http.MethodPost, "/api/posts", "", map[string]string{"title": "x", "content": "y"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", rec.Code)
	}

	rec := s.call(t, http.MethodPut, "/api/posts/"+p.ID, bob.Token, map[string]string{"title": "Hijacked"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-author update: %d", rec.Code)
	}
	if rec := s.call(t, http.MethodDelete, "/api/posts/"+p.ID, bob.Token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-author delete: %d", rec.Code)
	}

	rec = s.call(t, http.MethodPut, "/api/posts/"+p.ID, alice.Token, map[string]string{"title": "Hello again"})
	if rec.Code != http.StatusOK {
		t.Fatalf("author update: %d %s", rec.Code, rec.Body.String())
	}
	up := decode[models.Post](t, rec)
	if up.Title != "Hello again" || up.Content != p.Content || len(up.Tags) != 1 {
		t.Fatalf("partial update lost fields: %+v", up)
	}

	if rec := s.call(t, http.MethodPut, "/api/posts/missing", alice.Token, map[string]string{"title": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing: %d", rec.Code)
	}

	rec = s.call(t, http.MethodDelete, "/api/posts/"+p.ID, alice.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("author delete: %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["id"] != p.ID || got["message"] == "" {
		t.Fatalf("delete body: %v", got)
	}
	if rec := s.call(t, http.MethodGet, "/api/posts/"+p.ID, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", rec.Code)
	}
}

func TestListPaginationAndViews(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice")
	var last models.Post
	for i := 0; i < 25; i++ {
		last = s.createPost(t, alice.Token, "post")
	}

	rec := s.call(t, http.MethodGet, "/api/posts?page=2&limit=10", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	body := decode[struct {
		Posts      []models.Post     `json:"posts"`
		Pagination models.Pagination `json:"pagination"`
	}](t, rec)
	if len(body.Posts) != 10 {
		t.Fatalf("page size = %d", len(body.Posts))
	}
	if body.Pagination != (models.Pagination{Total: 25, Page: 2, Pages: 3}) {
		t.Fatalf("pagination = %+v", body.Pagination)
	}

	for want := int64(1); want <= 3; want++ {
		rec := s.call(t, http.MethodGet, "/api/posts/"+last.ID, "", nil)
		if got := decode[models.Post](t, rec).ViewCount; got != want {
			t.Fatalf("view count = %d, want %d", got, want)
		}
	}
}

func TestCommentsAndCategories(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	if rec := s.call(t, http.MethodPost, "/api/categories", "", map[string]string{"name": "Go"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous category create: %d", rec.Code)
	}
	rec := s.call(t, http.MethodPost, "/api/categories", alice.Token, map[string]string{"name": "Go"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("category create: %d %s", rec.Code, rec.Body.String())
	}
	cat := decode[models.Category](t, rec)
	if rec := s.call(t, http.MethodPost, "/api/categories", alice.Token, map[string]string{"name": "Go"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate category: %d", rec.Code)
	}
	if rec := s.call(t, http.MethodGet, "/api/categories", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("category list: %d", rec.Code)
	}

	rec = s.call(t, http.MethodPost, "/api/posts", alice.Token, map[string]any{
		"title": "Typed", "content": "c", "category_id": cat.ID,
	})
	p := decode[models.Post](t, rec)
	if p.CategoryName != "Go" {
		t.Fatalf("category not populated: %+v", p)
	}

	rec = s.call(t, http.MethodGet, "/api/posts?category="+cat.ID, "", nil)
	if n := len(decode[struct {
		Posts []models.Post `json:"posts"`
	}](t, rec).Posts); n != 1 {
		t.Fatalf("filtered list = %d posts", n)
	}

	rec = s.call(t, http.MethodPost, "/api/posts/"+p.ID+"/comments", bob.Token, map[string]string{"content": "nice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", rec.Code, rec.Body.String())
	}
	withComment := decode[models.Post](t, rec)
	if len(withComment.Comments) != 1 || withComment.Comments[0].AuthorName != "bob" {
		t.Fatalf("comments = %+v", withComment.Comments)
	}
	if rec := s.call(t, http.MethodPost, "/api/posts/missing/comments", bob.Token, map[string]string{"content": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("comment on missing post: %d", rec.Code)
	}
}

func TestCreatePostMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "From a form")
	_ = mw.WriteField("content", "form body")
	_ = mw.WriteField("tags", "go, web")
	_ = mw.WriteField("is_published", "true")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("multipart create: %d %s", rec.Code, rec.Body.String())
	}
	p := decode[models.Post](t, rec)
	if p.Title != "From a form" || !p.Published || len(p.Tags) != 2 || p.Tags[1] != "web" {
		t.Fatalf("unexpected post: %+v", p)
	}
}

func TestUsersAdminOnly(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register(t, "alice")

	hash, err := auth.HashPassword("rootpass")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.repos.Users.Create(context.Background(), models.User{
		Username: "root", Email: "root@example.com", PasswordHash: hash, Role: models.RoleAdmin,
	}); err != nil {
		t.Fatal(err)
	}
	rec := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "root@example.com", "password": "rootpass"})
	admin := decode[authBody](t, rec)

	if rec := s.call(t, http.MethodGet, "/api/users", alice.Token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("user listing users: %d", rec.Code)
	}
	rec = s.call(t, http.MethodGet, "/api/users", admin.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin listing users: %d", rec.Code)
	}
	if n := len(decode[struct {
		Users []models.User `json:"users"`
	}](t, rec).Users); n != 2 {
		t.Fatalf("users = %d", n)
	}
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.LoginPerMin = 2 })
	body := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < 2; i++ {
		if rec := s.call(t, http.MethodPost, "/api/auth/login", "", body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: %d", i+1, rec.Code)
		}
	}
	if rec := s.call(t, http.MethodPost, "/api/auth/login", "", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: %d, want 429", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.call(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}
