package view

import (
	"context"
	"slices"
	"strings"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
)

type Mode int

const (
	ModeHome Mode = iota
	ModeCategory
	ModeSearch
	ModeDrafts
)

const (
	DefaultPageLimit = 10
	categoryLimit    = 20
	searchLimit      = 20
)

var listingFailure = map[Mode]string{
	ModeHome:     "Failed to load data",
	ModeCategory: "Failed to load category",
	ModeSearch:   "Search failed",
	ModeDrafts:   "Failed to load drafts",
}

type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

const (
	msgDraftsLogin = "Please log in to see your drafts"
	msgSessionDown = "Your session could not be checked, please try again shortly"
)

type ListingParams struct {
	CategorySlug string
	Query        string
	Page         int
	Sort         Sort
}

type ListingState struct {
	Mode       Mode
	Posts      []apiclient.Post
	Categories []apiclient.Category
	Category   *apiclient.Category
	Query      string
	Page       int
	Limit      int
	Sort       Sort
	HasMore    bool
	Loading    bool
	Err        bool
	NotFound   bool
	Message    string
	// Searched is false until a non-empty query has been sent.
	Searched bool
	// LoginRequired is set when drafts were asked for without a session.
	LoginRequired bool
	// SessionUnavailable is set when the session probe could not reach the API.
	SessionUnavailable bool
	// Notice reports the outcome of the last draft action.
	Notice string
}

func (s ListingState) Branch() Branch {
	switch {
	case s.Loading:
		return BranchLoading
	case s.Err:
		return BranchError
	default:
		return BranchReady
	}
}

func (s ListingState) Empty() bool {
	return len(s.Posts) == 0
}

func (s ListingState) PrevDisabled() bool {
	return s.Page <= 1
}

func (s ListingState) NextDisabled() bool {
	return !s.HasMore
}

func (s ListingState) params(page int) ListingParams {
	p := ListingParams{Query: s.Query, Page: page, Sort: s.Sort}
	if s.Category != nil {
		p.CategorySlug = s.Category.Slug
	}
	return p
}

// Listing drives the home, category, search and drafts pages.
type Listing struct {
	api     ListingAPI
	session session.Session
	mode    Mode
	limit   int

	gen   generation
	state ListingState
}

// NewListing returns a listing controller. limit only applies to the home
// page; a non-positive value means DefaultPageLimit.
func NewListing(api ListingAPI, sess session.Session, mode Mode, limit int) *Listing {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	l := &Listing{api: api, session: sess, mode: mode, limit: limit}
	l.state = ListingState{Mode: mode, Page: 1, Limit: l.limitFor(mode)}
	return l
}

func (l *Listing) limitFor(mode Mode) int {
	switch mode {
	case ModeCategory:
		return categoryLimit
	case ModeSearch:
		return searchLimit
	default:
		return l.limit
	}
}

func (l *Listing) State() ListingState {
	var s ListingState
	l.gen.read(func() { s = l.state })
	return s
}

// Close abandons any load in flight.
func (l *Listing) Close() {
	l.gen.Close()
}

type listingResult struct {
	posts      []apiclient.Post
	categories []apiclient.Category
	category   *apiclient.Category
	searched   bool
}

// Load fetches the page described by p. A load that is overtaken by a newer one
// leaves the state alone and returns ErrSuperseded.
func (l *Listing) Load(ctx context.Context, p ListingParams) (ListingState, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Sort != SortOldest {
		p.Sort = SortNewest
	}
	p.Query = strings.TrimSpace(p.Query)

	ctx, gen := l.gen.begin(ctx)
	l.gen.commit(gen, func() {
		l.state.Loading = true
		l.state.Err = false
		l.state.NotFound = false
		l.state.LoginRequired = false
		l.state.SessionUnavailable = false
		l.state.Message = ""
		l.state.Page = p.Page
		l.state.Query = p.Query
		l.state.Sort = p.Sort
	})

	if l.mode == ModeDrafts && !l.session.IsAuthenticated() {
		unreachable := l.session.State == session.Unreachable
		l.gen.commit(gen, func() {
			l.state.Loading = false
			l.state.Err = true
			l.state.Posts = nil
			if unreachable {
				l.state.SessionUnavailable = true
				l.state.Message = msgSessionDown
				return
			}
			l.state.LoginRequired = true
			l.state.Message = msgDraftsLogin
		})
		return l.State(), nil
	}

	res, err := l.fetch(ctx, p)

	ok := l.gen.commit(gen, func() {
		l.state.Loading = false
		if err != nil {
			l.state.Err = true
			l.state.Message = listingFailure[l.mode]
			if l.mode == ModeCategory && apiclient.IsNotFound(err) {
				l.state.NotFound = true
				l.state.Message = "Category not found"
			}
			return
		}
		if p.Sort == SortOldest {
			// The API only serves newest first; oldest reorders the page in hand.
			slices.SortStableFunc(res.posts, func(a, b apiclient.Post) int {
				return a.Date().Compare(b.Date())
			})
		}
		l.state.Posts = res.posts
		l.state.Categories = res.categories
		l.state.Category = res.category
		l.state.Searched = res.searched
		l.state.HasMore = l.mode == ModeHome && len(res.posts) == l.state.Limit
	})
	if !ok {
		return l.State(), ErrSuperseded
	}

	return l.State(), nil
}

func (l *Listing) fetch(ctx context.Context, p ListingParams) (listingResult, error) {
	var res listingResult
	var err error

	switch l.mode {
	case ModeHome:
		res.posts, err = l.api.ListPosts(ctx, apiclient.PostFilter{
			Status: apiclient.StatusPublished,
			Limit:  l.limit,
			Offset: (p.Page - 1) * l.limit,
		})
		if err != nil {
			return res, err
		}
		res.categories, err = l.api.ListCategories(ctx)

	case ModeCategory:
		res.category, err = l.api.GetCategory(ctx, p.CategorySlug)
		if err != nil {
			return res, err
		}
		res.posts, err = l.api.ListPosts(ctx, apiclient.PostFilter{
			Status:     apiclient.StatusPublished,
			CategoryID: res.category.ID,
			Limit:      categoryLimit,
		})
		if err != nil {
			return res, err
		}
		res.categories, err = l.api.ListCategories(ctx)

	case ModeSearch:
		if p.Query == "" {
			return res, nil
		}
		var sr *apiclient.SearchResult
		sr, err = l.api.Search(ctx, p.Query, searchLimit)
		if err != nil {
			return res, err
		}
		res.posts, res.searched = sr.Posts, true

	case ModeDrafts:
		var posts []apiclient.Post
		posts, err = l.api.ListPosts(ctx, apiclient.PostFilter{Status: apiclient.StatusDraft, Limit: 100})
		// the API does not filter drafts by author
		uid := l.session.UserID()
		for _, p := range posts {
			if p.AuthorID == uid && p.Status == apiclient.StatusDraft {
				res.posts = append(res.posts, p)
			}
		}
	}

	return res, err
}

// NextPage loads the following page, if there is one.
func (l *Listing) NextPage(ctx context.Context) (ListingState, error) {
	s := l.State()
	if !s.HasMore {
		return s, nil
	}
	return l.Load(ctx, s.params(s.Page+1))
}

// PrevPage loads the preceding page unless already on the first one.
func (l *Listing) PrevPage(ctx context.Context) (ListingState, error) {
	s := l.State()
	if s.PrevDisabled() {
		return s, nil
	}
	return l.Load(ctx, s.params(s.Page-1))
}

// SetSort changes the order and starts over from the first page.
func (l *Listing) SetSort(ctx context.Context, sort Sort) (ListingState, error) {
	p := l.State().params(1)
	p.Sort = sort
	return l.Load(ctx, p)
}

// DeleteDraft deletes a draft and drops it from the listing.
func (l *Listing) DeleteDraft(ctx context.Context, id int) error {
	if err := l.requireSession(); err != nil {
		return err
	}

	gen := l.gen.now()
	if err := l.api.DeletePost(ctx, id); err != nil {
		l.notice(apiclient.MessageOf(err, "Failed to delete draft"))
		return err
	}

	l.gen.commit(gen, func() {
		posts := l.state.Posts[:0:0]
		for _, p := range l.state.Posts {
			if p.ID != id {
				posts = append(posts, p)
			}
		}
		l.state.Posts = posts
		l.state.Notice = "Draft deleted"
	})
	return nil
}

// PublishDraft publishes a draft and returns it so the caller can show it.
func (l *Listing) PublishDraft(ctx context.Context, id int) (*apiclient.Post, error) {
	if err := l.requireSession(); err != nil {
		return nil, err
	}

	post, err := l.api.PublishPost(ctx, id)
	if err != nil {
		l.notice(apiclient.MessageOf(err, "Failed to publish draft"))
		return nil, err
	}
	return post, nil
}

// requireSession sets the notice for a draft action that cannot be sent.
func (l *Listing) requireSession() error {
	switch {
	case l.session.IsAuthenticated():
		return nil
	case l.session.State == session.Unreachable:
		l.notice(msgSessionDown)
		return ErrSessionUnavailable
	default:
		l.notice(msgDraftsLogin)
		return ErrNotAuthenticated
	}
}

func (l *Listing) notice(msg string) {
	l.gen.read(func() { l.state.Notice = msg })
}
