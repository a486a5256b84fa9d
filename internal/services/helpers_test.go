package services

import (
	"context"
	"testing"

	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/repository/memory"
)

type fixture struct {
	repos memory.Repositories
	users *UserService
	posts *PostService
	cats  *CategoryService
}

func newFixture(t *testing.T, opts ...PostOption) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	return &fixture{
		repos: repos,
		users: NewUserService(repos.Users, auth.NewTokenManager("test-secret", "blog-test")),
		posts: NewPostService(repos.Posts, repos.Categories, opts...),
		cats:  NewCategoryService(repos.Categories),
	}
}

func (f *fixture) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	u, err := f.repos.Users.Create(context.Background(), models.User{
		Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &u
}

func (f *fixture) post(t *testing.T, author *models.User, title string) models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), author, PostInput{Title: title, Content: "content of " + title})
	if err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }
