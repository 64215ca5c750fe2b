package apiclient

import "time"

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// ReactionTypes lists every reaction kind in display order.
var ReactionTypes = []ReactionType{ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry}

func (t ReactionType) Valid() bool {
	for _, r := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	// ContentMarkdown is the source the author edits; ContentHTML is rendered by the API.
	ContentMarkdown string     `json:"content_markdown"`
	ContentHTML     string     `json:"content_html"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Status          PostStatus `json:"status"`
	AuthorID        int        `json:"author_id"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Categories      []Category `json:"categories"`
	CommentCount    int        `json:"comment_count,omitempty"`
	ViewCount       int        `json:"view_count,omitempty"`
	ReactionCount   int        `json:"reaction_count,omitempty"`
}

// Date is the publication time, or the creation time for unpublished posts.
func (p Post) Date() time.Time {
	if p.PublishedAt != nil && !p.PublishedAt.IsZero() {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

type PostFilter struct {
	Status     PostStatus
	CategoryID int
	Limit      int
	Offset     int
}

type PostInput struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug,omitempty"`
	ContentMarkdown string     `json:"content_markdown"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Status          PostStatus `json:"status,omitempty"`
	CategoryIDs     []int      `json:"category_ids"`
}

type Comment struct {
	ID          int       `json:"id"`
	PostID      int       `json:"post_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type CommentInput struct {
	PostID      int    `json:"post_id"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
}

type ReactionSummary struct {
	Like  int `json:"like"`
	Love  int `json:"love"`
	Haha  int `json:"haha"`
	Wow   int `json:"wow"`
	Sad   int `json:"sad"`
	Angry int `json:"angry"`
	Total int `json:"total"`
	// UserReaction is only present for an authenticated caller who has reacted.
	UserReaction ReactionType `json:"user_reaction,omitempty"`
}

func (s ReactionSummary) Counts() map[ReactionType]int {
	return map[ReactionType]int{
		ReactionLike:  s.Like,
		ReactionLove:  s.Love,
		ReactionHaha:  s.Haha,
		ReactionWow:   s.Wow,
		ReactionSad:   s.Sad,
		ReactionAngry: s.Angry,
	}
}

type ReactionInput struct {
	Type   ReactionType `json:"type"`
	PostID int          `json:"post_id"`
}

type Reaction struct {
	ID        int          `json:"id"`
	Type      ReactionType `json:"type"`
	UserID    int          `json:"user_id"`
	PostID    int          `json:"post_id"`
	CreatedAt time.Time    `json:"created_at"`
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	User    User   `json:"user"`
	Message string `json:"message"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type SearchResult struct {
	Posts []Post `json:"posts"`
	Query string `json:"query"`
	Total int    `json:"total"`
}

type About struct {
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
	Author      User   `json:"author"`
}
