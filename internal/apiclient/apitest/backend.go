// Package apitest provides an in-memory implementation of the blog API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
)

const SessionCookie = "session_user_id"

type account struct {
	user     apiclient.User
	password string
}

// Backend is a fake blog API. The zero value is not usable; call NewServer.
type Backend struct {
	mu         sync.Mutex
	now        time.Time
	nextID     int
	accounts   map[string]*account
	posts      map[int]*apiclient.Post
	categories []apiclient.Category
	comments   map[int][]apiclient.Comment
	reactions  map[int]map[int]apiclient.ReactionType
	requests   []string

	// Hook runs before routing. Returning true means the request was handled.
	Hook func(w http.ResponseWriter, r *http.Request) bool
}

// NewServer starts a fake API and returns it with its base URL.
func NewServer(t testing.TB) (*Backend, string) {
	t.Helper()

	b := &Backend{
		now:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		nextID:    1,
		accounts:  make(map[string]*account),
		posts:     make(map[int]*apiclient.Post),
		comments:  make(map[int][]apiclient.Comment),
		reactions: make(map[int]map[int]apiclient.ReactionType),
	}

	ts := httptest.NewServer(b.handler())
	t.Cleanup(ts.Close)

	return b, ts.URL + "/api"
}

func (b *Backend) id() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) tick() time.Time {
	b.now = b.now.Add(time.Minute)
	return b.now
}

// AddUser registers an account and returns its id.
func (b *Backend) AddUser(username, password string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := apiclient.User{ID: b.id(), Username: username, Email: username + "@example.com", CreatedAt: b.tick()}
	b.accounts[username] = &account{user: u, password: password}
	return u.ID
}

func (b *Backend) AddCategory(name, slug, description string) apiclient.Category {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := apiclient.Category{ID: b.id(), Name: name, Slug: slug, Description: description, CreatedAt: b.tick()}
	b.categories = append(b.categories, c)
	return c
}

// AddPost stores p as given, filling in id and timestamps.
func (b *Backend) AddPost(p apiclient.Post) apiclient.Post {
	b.mu.Lock()
	defer b.mu.Unlock()

	p.ID = b.id()
	p.CreatedAt = b.tick()
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = apiclient.StatusPublished
	}
	if p.Status == apiclient.StatusPublished && p.PublishedAt == nil {
		at := p.CreatedAt
		p.PublishedAt = &at
	}
	if p.ContentHTML == "" {
		p.ContentHTML = render(p.ContentMarkdown)
	}
	b.posts[p.ID] = &p
	return p
}

func (b *Backend) Post(id int) (apiclient.Post, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.posts[id]
	if !ok {
		return apiclient.Post{}, false
	}
	return *p, true
}

func (b *Backend) Comments(postID int) []apiclient.Comment {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]apiclient.Comment(nil), b.comments[postID]...)
}

// Requests returns "METHOD /path?query" for every request seen so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.requests...)
}

// Count returns how many requests used method and a path starting with prefix.
func (b *Backend) Count(method, prefix string) int {
	n := 0
	for _, r := range b.Requests() {
		if strings.HasPrefix(r, method+" "+prefix) {
			n++
		}
	}
	return n
}

func (b *Backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/register", b.register)
	mux.HandleFunc("POST /api/auth/logout", b.logout)
	mux.HandleFunc("GET /api/auth/me", b.me)

	mux.HandleFunc("GET /api/posts", b.listPosts)
	mux.HandleFunc("POST /api/posts", b.createPost)
	mux.HandleFunc("GET /api/posts/{slug}", b.getPostBySlug)
	mux.HandleFunc("GET /api/posts/id/{id}", b.getPostByID)
	mux.HandleFunc("PUT /api/posts/{id}", b.updatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", b.deletePost)
	mux.HandleFunc("POST /api/posts/{id}/publish", b.publishPost)

	mux.HandleFunc("GET /api/categories", b.listCategories)
	mux.HandleFunc("GET /api/categories/{slug}", b.getCategory)

	mux.HandleFunc("GET /api/comments/post/{id}", b.listComments)
	mux.HandleFunc("POST /api/comments", b.createComment)

	mux.HandleFunc("GET /api/reactions/post/{id}/summary", b.reactionSummary)
	mux.HandleFunc("POST /api/reactions", b.react)

	mux.HandleFunc("GET /api/search", b.search)
	mux.HandleFunc("GET /api/about", b.about)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+strings.TrimPrefix(r.URL.RequestURI(), "/api"))
		hook := b.Hook
		b.mu.Unlock()

		if hook != nil && hook(w, r) {
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// currentUser must be called with b.mu held.
func (b *Backend) currentUser(r *http.Request) *apiclient.User {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	id, err := strconv.Atoi(c.Value)
	if err != nil {
		return nil
	}
	for _, a := range b.accounts {
		if a.user.ID == id {
			u := a.user
			return &u
		}
	}
	return nil
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in apiclient.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	a, ok := b.accounts[in.Username]
	b.mu.Unlock()

	if !ok || a.password != in.Password {
		fail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: strconv.Itoa(a.user.ID), Path: "/", HttpOnly: true, MaxAge: 86400})
	writeJSON(w, http.StatusOK, apiclient.LoginResult{User: a.user, Message: "Login successful"})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in apiclient.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if len(in.Password) < 8 {
		fail(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	b.mu.Lock()
	_, exists := b.accounts[in.Username]
	b.mu.Unlock()
	if exists {
		fail(w, http.StatusBadRequest, "Username already registered")
		return
	}

	id := b.AddUser(in.Username, in.Password)

	b.mu.Lock()
	a := b.accounts[in.Username]
	a.user.Email = in.Email
	a.user.FullName = in.FullName
	u := a.user
	b.mu.Unlock()

	if u.ID != id {
		fail(w, http.StatusInternalServerError, "inconsistent state")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u := b.currentUser(r)
	b.mu.Unlock()

	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) sortedPosts() []*apiclient.Post {
	posts := make([]*apiclient.Post, 0, len(b.posts))
	for _, p := range b.posts {
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts
}

func (b *Backend) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 10
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	categoryID, _ := strconv.Atoi(q.Get("category_id"))
	status := apiclient.PostStatus(q.Get("status"))

	b.mu.Lock()
	defer b.mu.Unlock()

	// Like the real API, drafts of every author are listed.
	out := []apiclient.Post{}
	for _, p := range b.sortedPosts() {
		if status != "" && p.Status != status {
			continue
		}
		if categoryID > 0 && !inCategory(p, categoryID) {
			continue
		}
		out = append(out, *p)
	}

	if offset >= len(out) {
		out = []apiclient.Post{}
	} else {
		out = out[offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}

	writeJSON(w, http.StatusOK, out)
}

func inCategory(p *apiclient.Post, id int) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

var (
	nonSlugRX  = regexp.MustCompile(`[^a-z0-9-]+`)
	spaceRX    = regexp.MustCompile(`\s+`)
	hyphenRX   = regexp.MustCompile(`-+`)
	paragraphs = regexp.MustCompile(`\n{2,}`)
)

func slugify(title string) string {
	s := spaceRX.ReplaceAllString(strings.ToLower(title), "-")
	s = nonSlugRX.ReplaceAllString(s, "")
	s = hyphenRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func render(markdown string) string {
	var sb strings.Builder
	for _, para := range paragraphs.Split(strings.TrimSpace(markdown), -1) {
		if para == "" {
			continue
		}
		sb.WriteString("<p>" + html.EscapeString(para) + "</p>")
	}
	return sb.String()
}

// categoriesFor must be called with b.mu held.
func (b *Backend) categoriesFor(ids []int) []apiclient.Category {
	out := []apiclient.Category{}
	for _, c := range b.categories {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out
}

func (b *Backend) createPost(w http.ResponseWriter, r *http.Request) {
	var in apiclient.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.currentUser(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ContentMarkdown) == "" {
		fail(w, http.StatusUnprocessableEntity, "title and content_markdown are required")
		return
	}

	slug := in.Slug
	if slug == "" {
		slug = slugify(in.Title)
	}
	for _, p := range b.posts {
		if p.Slug == slug {
			fail(w, http.StatusBadRequest, fmt.Sprintf("Post with slug '%s' already exists", slug))
			return
		}
	}

	now := b.tick()
	p := &apiclient.Post{
		ID:              b.id(),
		Title:           in.Title,
		Slug:            slug,
		ContentMarkdown: in.ContentMarkdown,
		ContentHTML:     render(in.ContentMarkdown),
		Excerpt:         in.Excerpt,
		Status:          apiclient.StatusDraft,
		AuthorID:        u.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Categories:      b.categoriesFor(in.CategoryIDs),
	}
	if in.Status == apiclient.StatusPublished {
		p.Status = apiclient.StatusPublished
		p.PublishedAt = &now
	}
	b.posts[p.ID] = p

	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) getPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.posts {
		if p.Slug == slug {
			p.ViewCount++
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	fail(w, http.StatusNotFound, "Post not found")
}

// ownedPost must be called with b.mu held. It writes the failure itself.
func (b *Backend) ownedPost(w http.ResponseWriter, r *http.Request) *apiclient.Post {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid id")
		return nil
	}
	u := b.currentUser(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return nil
	}
	p, ok := b.posts[id]
	if !ok {
		fail(w, http.StatusNotFound, "Post not found")
		return nil
	}
	if p.AuthorID != u.ID {
		fail(w, http.StatusForbidden, "Not authorized")
		return nil
	}
	return p
}

func (b *Backend) getPostByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid id")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.posts[id]
	if !ok {
		fail(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) updatePost(w http.ResponseWriter, r *http.Request) {
	var in apiclient.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.ownedPost(w, r)
	if p == nil {
		return
	}

	if in.Title != "" {
		p.Title = in.Title
	}
	if in.ContentMarkdown != "" {
		p.ContentMarkdown = in.ContentMarkdown
		p.ContentHTML = render(in.ContentMarkdown)
	}
	if in.Slug != "" && p.Status == apiclient.StatusDraft {
		p.Slug = in.Slug
	}
	p.Excerpt = in.Excerpt
	if in.CategoryIDs != nil {
		p.Categories = b.categoriesFor(in.CategoryIDs)
	}
	p.UpdatedAt = b.tick()

	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deletePost(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.ownedPost(w, r)
	if p == nil {
		return
	}
	delete(b.posts, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) publishPost(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.ownedPost(w, r)
	if p == nil {
		return
	}
	if p.Status == apiclient.StatusPublished {
		fail(w, http.StatusBadRequest, "Post is already published")
		return
	}

	now := b.tick()
	p.Status = apiclient.StatusPublished
	p.PublishedAt = &now
	p.UpdatedAt = now

	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	writeJSON(w, http.StatusOK, append([]apiclient.Category{}, b.categories...))
}

func (b *Backend) getCategory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.categories {
		if c.Slug == r.PathValue("slug") {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	fail(w, http.StatusNotFound, "Category not found")
}

func (b *Backend) listComments(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	writeJSON(w, http.StatusOK, append([]apiclient.Comment{}, b.comments[id]...))
}

func (b *Backend) createComment(w http.ResponseWriter, r *http.Request) {
	var in apiclient.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if in.AuthorName == "" || in.AuthorEmail == "" || in.Content == "" {
		fail(w, http.StatusUnprocessableEntity, "author_name, author_email and content are required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.posts[in.PostID]; !ok {
		fail(w, http.StatusNotFound, "Post not found")
		return
	}

	c := apiclient.Comment{
		ID:          b.id(),
		PostID:      in.PostID,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Content:     in.Content,
		CreatedAt:   b.tick(),
	}
	b.comments[in.PostID] = append(b.comments[in.PostID], c)
	b.posts[in.PostID].CommentCount++

	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) reactionSummary(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	b.mu.Lock()
	defer b.mu.Unlock()

	var s apiclient.ReactionSummary
	for _, t := range b.reactions[id] {
		switch t {
		case apiclient.ReactionLike:
			s.Like++
		case apiclient.ReactionLove:
			s.Love++
		case apiclient.ReactionHaha:
			s.Haha++
		case apiclient.ReactionWow:
			s.Wow++
		case apiclient.ReactionSad:
			s.Sad++
		case apiclient.ReactionAngry:
			s.Angry++
		}
		s.Total++
	}
	if u := b.currentUser(r); u != nil {
		s.UserReaction = b.reactions[id][u.ID]
	}

	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) react(w http.ResponseWriter, r *http.Request) {
	var in apiclient.ReactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.Type.Valid() {
		fail(w, http.StatusUnprocessableEntity, "invalid reaction")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := b.currentUser(r)
	if u == nil {
		fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if b.reactions[in.PostID] == nil {
		b.reactions[in.PostID] = make(map[int]apiclient.ReactionType)
	}
	if b.reactions[in.PostID][u.ID] == in.Type {
		delete(b.reactions[in.PostID], u.ID)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	b.reactions[in.PostID][u.ID] = in.Type

	writeJSON(w, http.StatusCreated, apiclient.Reaction{ID: b.id(), Type: in.Type, UserID: u.ID, PostID: in.PostID, CreatedAt: b.tick()})
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		fail(w, http.StatusUnprocessableEntity, "q is required")
		return
	}
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	needle := strings.ToLower(q)
	out := []apiclient.Post{}
	for _, p := range b.sortedPosts() {
		if p.Status != apiclient.StatusPublished {
			continue
		}
		if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.ContentMarkdown), needle) {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}

	writeJSON(w, http.StatusOK, apiclient.SearchResult{Posts: out, Query: q, Total: len(out)})
}

func (b *Backend) about(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiclient.About{
		Title:       "About This Blog",
		ContentHTML: `<h1>About This Blog</h1><p>Welcome to my personal microblog!</p><script>alert(1)</script>`,
		Author:      apiclient.User{ID: 1, Username: "admin", Email: "admin@example.com"},
	})
}
