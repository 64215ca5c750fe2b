package view_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/view"
)

func seedPosts(f *fixture, n int, authorID int, status apiclient.PostStatus, categories ...apiclient.Category) {
	for i := 0; i < n; i++ {
		f.backend.AddPost(apiclient.Post{
			Title:           fmt.Sprintf("Post %d", i),
			Slug:            fmt.Sprintf("post-%d-%s", i, status),
			ContentMarkdown: "body",
			Status:          status,
			AuthorID:        authorID,
			Categories:      categories,
		})
	}
}

func TestListingHomePagination(t *testing.T) {
	f := newFixture(t)
	f.backend.AddCategory("Go", "go", "")
	seedPosts(f, 12, 1, apiclient.StatusPublished)

	testCases := []struct {
		name             string
		page             int
		wantPage         int
		wantPosts        int
		wantHasMore      bool
		wantPrevDisabled bool
		wantRequest      string
	}{
		{name: "first page", page: 1, wantPage: 1, wantPosts: 10, wantHasMore: true, wantPrevDisabled: true, wantRequest: "GET /posts?limit=10&status=published"},
		{name: "second page", page: 2, wantPage: 2, wantPosts: 2, wantHasMore: false, wantPrevDisabled: false, wantRequest: "GET /posts?limit=10&offset=10&status=published"},
		{name: "page below one is clamped", page: 0, wantPage: 1, wantPosts: 10, wantHasMore: true, wantPrevDisabled: true, wantRequest: "GET /posts?limit=10&status=published"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := view.NewListing(f.client, session.AnonymousSession, view.ModeHome, 10)

			s, err := l.Load(f.anonymous(), view.ListingParams{Page: tc.page})
			require.NoError(t, err)

			assert.Equal(t, view.BranchReady, s.Branch())
			assert.Equal(t, tc.wantPage, s.Page)
			assert.Len(t, s.Posts, tc.wantPosts)
			assert.Equal(t, tc.wantHasMore, s.HasMore)
			assert.Equal(t, tc.wantPrevDisabled, s.PrevDisabled())
			assert.Len(t, s.Categories, 1)

			reqs := f.backend.Requests()
			assert.Contains(t, reqs[len(reqs)-2:], tc.wantRequest)
		})
	}
}

func TestListingNextAndPrevPage(t *testing.T) {
	f := newFixture(t)
	seedPosts(f, 4, 1, apiclient.StatusPublished)
	ctx := f.anonymous()

	l := view.NewListing(f.client, session.AnonymousSession, view.ModeHome, 2)
	_, err := l.Load(ctx, view.ListingParams{})
	require.NoError(t, err)

	s, err := l.PrevPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Page)

	s, err = l.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Page)
	assert.True(t, s.HasMore)

	s, err = l.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Page)
	assert.True(t, s.Empty())
	assert.False(t, s.HasMore)

	before := len(f.backend.Requests())
	s, err = l.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Page)
	assert.Len(t, f.backend.Requests(), before)
}

func TestListingCategory(t *testing.T) {
	f := newFixture(t)
	goCat := f.backend.AddCategory("Go", "go", "Gophers")
	f.backend.AddCategory("Rust", "rust", "")
	seedPosts(f, 2, 1, apiclient.StatusPublished, goCat)
	seedPosts(f, 1, 1, apiclient.StatusDraft, goCat)

	t.Run("found", func(t *testing.T) {
		l := view.NewListing(f.client, session.AnonymousSession, view.ModeCategory, 0)
		s, err := l.Load(f.anonymous(), view.ListingParams{CategorySlug: "go"})
		require.NoError(t, err)

		require.NotNil(t, s.Category)
		assert.Equal(t, "Go", s.Category.Name)
		assert.Len(t, s.Posts, 2)
		assert.Len(t, s.Categories, 2)
		assert.Contains(t, f.backend.Requests(), fmt.Sprintf("GET /posts?category_id=%d&limit=20&status=published", goCat.ID))
	})

	t.Run("unknown slug", func(t *testing.T) {
		l := view.NewListing(f.client, session.AnonymousSession, view.ModeCategory, 0)
		s, err := l.Load(f.anonymous(), view.ListingParams{CategorySlug: "nope"})
		require.NoError(t, err)

		assert.Equal(t, view.BranchError, s.Branch())
		assert.Equal(t, "Category not found", s.Message)
		assert.True(t, s.NotFound)
	})
}

func TestListingSearch(t *testing.T) {
	f := newFixture(t)
	f.backend.AddPost(apiclient.Post{Title: "Learning Go", Slug: "learning-go", ContentMarkdown: "x"})
	f.backend.AddPost(apiclient.Post{Title: "Cooking", Slug: "cooking", ContentMarkdown: "pasta"})

	testCases := []struct {
		name         string
		query        string
		wantSearched bool
		wantPosts    int
		wantRequests int
	}{
		{name: "empty query sends nothing", query: "", wantSearched: false, wantPosts: 0, wantRequests: 0},
		{name: "whitespace query sends nothing", query: "   ", wantSearched: false, wantPosts: 0, wantRequests: 0},
		{name: "match", query: "go", wantSearched: true, wantPosts: 1, wantRequests: 1},
		{name: "no match", query: "haskell", wantSearched: true, wantPosts: 0, wantRequests: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.backend.Count(http.MethodGet, "/search")

			l := view.NewListing(f.client, session.AnonymousSession, view.ModeSearch, 0)
			s, err := l.Load(f.anonymous(), view.ListingParams{Query: tc.query})
			require.NoError(t, err)

			assert.Equal(t, view.BranchReady, s.Branch())
			assert.Equal(t, tc.wantSearched, s.Searched)
			assert.Len(t, s.Posts, tc.wantPosts)
			assert.Equal(t, tc.wantRequests, f.backend.Count(http.MethodGet, "/search")-before)
		})
	}
}

func TestListingDrafts(t *testing.T) {
	f := newFixture(t)
	aliceID := f.backend.AddUser("alice", "Secret_123")
	bobID := f.backend.AddUser("bob", "Secret_123")
	seedPosts(f, 2, aliceID, apiclient.StatusDraft)
	f.backend.AddPost(apiclient.Post{Title: "Bob draft", Slug: "bob-draft", ContentMarkdown: "x", Status: apiclient.StatusDraft, AuthorID: bobID})

	t.Run("requires a session", func(t *testing.T) {
		before := len(f.backend.Requests())

		l := view.NewListing(f.client, session.AnonymousSession, view.ModeDrafts, 0)
		s, err := l.Load(f.anonymous(), view.ListingParams{})
		require.NoError(t, err)

		assert.Equal(t, view.BranchError, s.Branch())
		assert.True(t, s.LoginRequired)
		assert.Equal(t, "Please log in to see your drafts", s.Message)
		assert.Len(t, f.backend.Requests(), before)
	})

	t.Run("unreachable session", func(t *testing.T) {
		before := len(f.backend.Requests())
		down := session.Session{State: session.Unreachable}

		l := view.NewListing(f.client, down, view.ModeDrafts, 0)
		s, err := l.Load(f.anonymous(), view.ListingParams{})
		require.NoError(t, err)

		assert.Equal(t, view.BranchError, s.Branch())
		assert.True(t, s.SessionUnavailable)
		assert.False(t, s.LoginRequired)
		assert.Equal(t, "Your session could not be checked, please try again shortly", s.Message)

		err = l.DeleteDraft(f.anonymous(), 1)
		assert.ErrorIs(t, err, view.ErrSessionUnavailable)
		_, err = l.PublishDraft(f.anonymous(), 1)
		assert.ErrorIs(t, err, view.ErrSessionUnavailable)
		assert.Equal(t, "Your session could not be checked, please try again shortly", l.State().Notice)
		assert.Len(t, f.backend.Requests(), before)
	})

	t.Run("own drafts only", func(t *testing.T) {
		ctx, sess := f.login(t, "alice", "Secret_123")

		l := view.NewListing(f.client, sess, view.ModeDrafts, 0)
		s, err := l.Load(ctx, view.ListingParams{})
		require.NoError(t, err)

		require.Len(t, s.Posts, 2)
		for _, p := range s.Posts {
			assert.Equal(t, aliceID, p.AuthorID)
			assert.Equal(t, apiclient.StatusDraft, p.Status)
		}
	})

	t.Run("other authors and published posts are dropped", func(t *testing.T) {
		ctx, sess := f.login(t, "alice", "Secret_123")

		api := new(MockListingAPI)
		api.On("ListPosts", mock.Anything, mock.Anything).Return([]apiclient.Post{
			{ID: 1, Title: "Mine", Status: apiclient.StatusDraft, AuthorID: aliceID},
			{ID: 2, Title: "Bob's", Status: apiclient.StatusDraft, AuthorID: bobID},
			{ID: 3, Title: "Live", Status: apiclient.StatusPublished, AuthorID: aliceID},
		}, nil)

		l := view.NewListing(api, sess, view.ModeDrafts, 0)
		s, err := l.Load(ctx, view.ListingParams{})
		require.NoError(t, err)

		require.Len(t, s.Posts, 1)
		assert.Equal(t, "Mine", s.Posts[0].Title)
	})

	t.Run("delete and publish", func(t *testing.T) {
		ctx, sess := f.login(t, "alice", "Secret_123")

		l := view.NewListing(f.client, sess, view.ModeDrafts, 0)
		s, err := l.Load(ctx, view.ListingParams{})
		require.NoError(t, err)
		require.Len(t, s.Posts, 2)

		require.NoError(t, l.DeleteDraft(ctx, s.Posts[0].ID))
		assert.Len(t, l.State().Posts, 1)
		assert.Equal(t, "Draft deleted", l.State().Notice)

		post, err := l.PublishDraft(ctx, s.Posts[1].ID)
		require.NoError(t, err)
		assert.Equal(t, apiclient.StatusPublished, post.Status)
	})

	t.Run("cannot delete someone else's draft", func(t *testing.T) {
		ctx, sess := f.login(t, "alice", "Secret_123")

		l := view.NewListing(f.client, sess, view.ModeDrafts, 0)
		var bobDraft int
		for id := 1; id < 20; id++ {
			if p, ok := f.backend.Post(id); ok && p.AuthorID == bobID {
				bobDraft = p.ID
			}
		}
		require.NotZero(t, bobDraft)

		err := l.DeleteDraft(ctx, bobDraft)
		require.Error(t, err)
		assert.NotEmpty(t, l.State().Notice)
	})
}

func TestListingServerError(t *testing.T) {
	f := newFixture(t)
	f.backend.Hook = failWith(http.StatusInternalServerError, http.MethodGet, "/posts")

	l := view.NewListing(f.client, session.AnonymousSession, view.ModeHome, 0)
	s, err := l.Load(f.anonymous(), view.ListingParams{})
	require.NoError(t, err)

	assert.Equal(t, view.BranchError, s.Branch())
	assert.True(t, s.Err)
	assert.False(t, s.Loading)
	assert.Equal(t, "Failed to load data", s.Message)
}

type MockListingAPI struct {
	mock.Mock
}

func (m *MockListingAPI) ListPosts(ctx context.Context, f apiclient.PostFilter) ([]apiclient.Post, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]apiclient.Post), args.Error(1)
}

func (m *MockListingAPI) ListCategories(ctx context.Context) ([]apiclient.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]apiclient.Category), args.Error(1)
}

func (m *MockListingAPI) GetCategory(ctx context.Context, slug string) (*apiclient.Category, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(*apiclient.Category), args.Error(1)
}

func (m *MockListingAPI) Search(ctx context.Context, query string, limit int) (*apiclient.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).(*apiclient.SearchResult), args.Error(1)
}

func (m *MockListingAPI) DeletePost(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListingAPI) PublishPost(ctx context.Context, id int) (*apiclient.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*apiclient.Post), args.Error(1)
}

func TestListingDiscardsSupersededLoad(t *testing.T) {
	api := new(MockListingAPI)
	started := make(chan struct{})
	release := make(chan struct{})

	slow := []apiclient.Post{{ID: 1, Title: "stale"}}
	fast := []apiclient.Post{{ID: 2, Title: "fresh"}}

	// The first page ignores cancellation so its result does arrive late.
	api.On("ListPosts", mock.Anything, apiclient.PostFilter{Status: apiclient.StatusPublished, Limit: 10}).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(slow, nil).Once()
	api.On("ListPosts", mock.Anything, apiclient.PostFilter{Status: apiclient.StatusPublished, Limit: 10, Offset: 10}).
		Return(fast, nil).Once()
	api.On("ListCategories", mock.Anything).Return([]apiclient.Category{}, nil)

	l := view.NewListing(api, session.AnonymousSession, view.ModeHome, 10)

	errc := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), view.ListingParams{Page: 1})
		errc <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first load never started")
	}

	s, err := l.Load(context.Background(), view.ListingParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, fast, s.Posts)

	close(release)
	assert.ErrorIs(t, <-errc, view.ErrSuperseded)

	s = l.State()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, fast, s.Posts)
	assert.False(t, s.Loading)
	api.AssertExpectations(t)
}

func TestListingSort(t *testing.T) {
	f := newFixture(t)
	seedPosts(f, 3, 1, apiclient.StatusPublished)
	ctx := f.anonymous()

	l := view.NewListing(f.client, session.AnonymousSession, view.ModeHome, 10)
	s, err := l.Load(ctx, view.ListingParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, view.SortNewest, s.Sort)
	assert.Equal(t, "Post 2", s.Posts[0].Title)

	s, err = l.SetSort(ctx, view.SortOldest)
	require.NoError(t, err)
	assert.Equal(t, view.SortOldest, s.Sort)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, []string{"Post 0", "Post 1", "Post 2"}, []string{s.Posts[0].Title, s.Posts[1].Title, s.Posts[2].Title})
}
