package handlers

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/middleware"
	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/services"
)

const maxFormMemory = 8 << 20

type PostHandler struct {
	Posts *services.PostService
}

func NewPostHandler(ps *services.PostService) *PostHandler { return &PostHandler{Posts: ps} }

type createPostReq struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CategoryID string   `json:"category_id"`
	Tags       []string `json:"tags"`
	Published  bool     `json:"is_published"`
}

type listResp struct {
	Posts      []models.Post     `json:"posts"`
	Pagination models.Pagination `json:"pagination"`
}

// List serves ?page=&limit=&category=. Unparsable numbers fall back to the
// defaults.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PostFilter{CategoryID: q.Get("category")}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = n
	}
	posts, pg, err := h.Posts.List(r.Context(), f)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, listResp{Posts: posts, Pagination: pg})
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// Create accepts a JSON body or form fields, multipart included.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostReq
	if isForm(r) {
		var ok bool
		if req, ok = readPostForm(w, r); !ok {
			return
		}
	} else if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Posts.Create(r.Context(), middleware.IdentityFrom(r.Context()), services.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		Published:  req.Published,
	})
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.PostPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.Posts.Update(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Posts.Delete(r.Context(), middleware.IdentityFrom(r.Context()), id); err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "post deleted", "id": id})
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Posts.AddComment(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		httpx.WriteErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "multipart/form-data" || mt == "application/x-www-form-urlencoded"
}

// readPostForm maps form fields onto a create request. Tags may be repeated or
// comma separated.
func readPostForm(w http.ResponseWriter, r *http.Request) (createPostReq, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid form body", nil)
		return createPostReq{}, false
	}
	req := createPostReq{
		Title:      r.PostFormValue("title"),
		Content:    r.PostFormValue("content"),
		Excerpt:    r.PostFormValue("excerpt"),
		CategoryID: r.PostFormValue("category_id"),
	}
	for _, v := range r.PostForm["tags"] {
		req.Tags = append(req.Tags, strings.Split(v, ",")...)
	}
	if v := r.PostFormValue("is_published"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "is_published must be a boolean", nil)
			return createPostReq{}, false
		}
		req.Published = b
	}
	return req, true
}
