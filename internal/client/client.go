// Package client talks to the blog API on behalf of the session carried in
// the request context.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baharkarakas/blog-backend/internal/models"
)

// ErrNotAuthenticated is returned before any request is sent when a protected
// call is made without a live session.
var ErrNotAuthenticated = errors.New("client: not authenticated")

// APIError is the error body the server answers with.
type APIError struct {
	Status  int             `json:"-"`
	Message string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	base string
	http *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type AuthResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type PostList struct {
	Posts      []models.Post     `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

type NewPost struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt,omitempty"`
	CategoryID string   `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Published  bool     `json:"is_published"`
}

// Register creates an account and, when ctx carries a session, signs it in.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", false,
		map[string]string{"username": username, "email": email, "password": password}, &out)
	if err != nil {
		return AuthResult{}, err
	}
	c.signIn(ctx, out)
	return out, nil
}

// Login authenticates and, when ctx carries a session, signs it in.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false,
		map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return AuthResult{}, err
	}
	c.signIn(ctx, out)
	return out, nil
}

func (c *Client) signIn(ctx context.Context, res AuthResult) {
	if s := SessionFrom(ctx); s != nil {
		s.Authenticate(res.User, res.Token, res.ExpiresAt)
	}
}

// Me reloads the current identity into the session.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &u); err != nil {
		return models.User{}, err
	}
	SessionFrom(ctx).setUser(u)
	return u, nil
}

// ListPosts fetches one page; zero values leave the server defaults.
func (c *Client) ListPosts(ctx context.Context, f models.PostFilter) (PostList, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.CategoryID != "" {
		q.Set("category", f.CategoryID)
	}
	path := "/api/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out PostList
	err := c.do(ctx, http.MethodGet, path, false, nil, &out)
	return out, err
}

func (c *Client) GetPost(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), false, nil, &p)
	return p, err
}

func (c *Client) CreatePost(ctx context.Context, in NewPost) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", true, in, &p)
	return p, err
}

func (c *Client) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), true, patch, &p)
	return p, err
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) AddComment(ctx context.Context, postID, content string) (models.Post, error) {
	var p models.Post
	err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", true,
		map[string]string{"content": content}, &p)
	return p, err
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	err := c.do(ctx, http.MethodGet, "/api/categories", false, nil, &out)
	return out.Categories, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	var cat models.Category
	err := c.do(ctx, http.MethodPost, "/api/categories", true, map[string]string{"name": name}, &cat)
	return cat, err
}

// do sends a JSON request. Public calls still carry the token when there is
// one. A 401 on a protected call signs the session out.
func (c *Client) do(ctx context.Context, method, path string, protected bool, in, out any) error {
	sess := SessionFrom(ctx)
	var token string
	if sess != nil {
		token, _ = sess.Token()
	}
	if protected && token == "" {
		return ErrNotAuthenticated
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" && sess != nil {
			sess.Logout()
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
