package view

import (
	"context"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
)

// Each controller depends only on the calls it makes; *apiclient.Client
// satisfies all of them.

type ListingAPI interface {
	ListPosts(ctx context.Context, f apiclient.PostFilter) ([]apiclient.Post, error)
	ListCategories(ctx context.Context) ([]apiclient.Category, error)
	GetCategory(ctx context.Context, slug string) (*apiclient.Category, error)
	Search(ctx context.Context, query string, limit int) (*apiclient.SearchResult, error)
	DeletePost(ctx context.Context, id int) error
	PublishPost(ctx context.Context, id int) (*apiclient.Post, error)
}

type DetailAPI interface {
	GetPostBySlug(ctx context.Context, slug string) (*apiclient.Post, error)
	ListComments(ctx context.Context, postID int) ([]apiclient.Comment, error)
	CreateComment(ctx context.Context, in apiclient.CommentInput) (*apiclient.Comment, error)
	GetReactionSummary(ctx context.Context, postID int) (*apiclient.ReactionSummary, error)
	React(ctx context.Context, in apiclient.ReactionInput) error
}

type EditorAPI interface {
	ListCategories(ctx context.Context) ([]apiclient.Category, error)
	GetPostByID(ctx context.Context, id int) (*apiclient.Post, error)
	CreatePost(ctx context.Context, in apiclient.PostInput) (*apiclient.Post, error)
	UpdatePost(ctx context.Context, id int, in apiclient.PostInput) (*apiclient.Post, error)
	PublishPost(ctx context.Context, id int) (*apiclient.Post, error)
}

type AuthAPI interface {
	Login(ctx context.Context, in apiclient.LoginInput) (*apiclient.LoginResult, error)
	Register(ctx context.Context, in apiclient.RegisterInput) (*apiclient.User, error)
	Logout(ctx context.Context) error
}

// SessionFunc resolves the caller's session. It may block on the API.
type SessionFunc func(ctx context.Context) session.Session

// StaticSession returns a SessionFunc that always yields s.
func StaticSession(s session.Session) SessionFunc {
	return func(context.Context) session.Session {
		return s
	}
}

type Branch string

const (
	BranchLoading Branch = "loading"
	BranchError   Branch = "error"
	BranchReady   Branch = "ready"
)
