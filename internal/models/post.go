package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const excerptRunes = 200

type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt,omitempty"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	Tags         []string  `json:"tags"`
	Published    bool      `json:"is_published"`
	ViewCount    int64     `json:"view_count"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostPatch carries a partial update. Nil fields keep their stored value.
type PostPatch struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Excerpt    *string   `json:"excerpt,omitempty"`
	CategoryID *string   `json:"category_id,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Published  *bool     `json:"is_published,omitempty"`
}

// Apply merges the patch into p. Empty strings count as absent for the text
// fields; Tags and Published are applied whenever they are set, so an explicit
// empty tag list or false flag sticks.
func (pp PostPatch) Apply(p *Post) {
	if v := pp.Title; v != nil && strings.TrimSpace(*v) != "" {
		p.Title = strings.TrimSpace(*v)
	}
	if v := pp.Content; v != nil && strings.TrimSpace(*v) != "" {
		p.Content = *v
	}
	if v := pp.Excerpt; v != nil && strings.TrimSpace(*v) != "" {
		p.Excerpt = strings.TrimSpace(*v)
	}
	if v := pp.CategoryID; v != nil && strings.TrimSpace(*v) != "" {
		id := strings.TrimSpace(*v)
		p.CategoryID = &id
	}
	if pp.Tags != nil {
		p.Tags = NormalizeTags(*pp.Tags)
	}
	if pp.Published != nil {
		p.Published = *pp.Published
	}
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DeriveExcerpt returns the first runes of content, cut on a word boundary
// when one is close enough.
func DeriveExcerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= excerptRunes {
		return content
	}
	r := []rune(content)[:excerptRunes]
	cut := string(r)
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

type PostFilter struct {
	CategoryID string
	Page       int
	Limit      int
}

func (f PostFilter) Offset() int { return (f.Page - 1) * f.Limit }

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Pages: pages}
}
