package view_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/view"
)

func TestEditorSetTitle(t *testing.T) {
	f := newFixture(t)

	e := view.NewEditor(f.client, session.AnonymousSession)
	e.SetTitle("Hello, World!")
	assert.Equal(t, "hello-world", e.State().Draft.Slug)

	e.Restore(view.Draft{Title: "Old", Slug: "old"}, 7, apiclient.StatusPublished)
	e.SetTitle("Brand New Title")
	s := e.State()
	assert.Equal(t, "Brand New Title", s.Draft.Title)
	assert.Equal(t, "old", s.Draft.Slug)
	assert.True(t, s.SlugLocked())
}

func TestEditorToggleCategory(t *testing.T) {
	f := newFixture(t)
	e := view.NewEditor(f.client, session.AnonymousSession)

	e.ToggleCategory(3)
	e.ToggleCategory(1)
	e.ToggleCategory(3)
	e.ToggleCategory(2)
	e.ToggleCategory(3)
	assert.Equal(t, []int{1, 2, 3}, e.State().Draft.CategoryIDs)

	e.ToggleCategory(2)
	e.ToggleCategory(2)
	assert.Equal(t, []int{1, 3, 2}, e.State().Draft.CategoryIDs)
	assert.True(t, e.State().Selected(2))
	assert.False(t, e.State().Selected(4))
}

func TestEditorInsert(t *testing.T) {
	f := newFixture(t)
	e := view.NewEditor(f.client, session.AnonymousSession)
	e.Restore(view.Draft{Markdown: "make this loud"}, 0, "")

	e.Insert(view.SyntaxBold, view.Selection{Start: 10, End: 14})

	s := e.State()
	assert.Equal(t, "make this **loud**", s.Draft.Markdown)
	assert.Equal(t, 18, s.Cursor)
}

func TestEditorSaveNewPost(t *testing.T) {
	testCases := []struct {
		name         string
		status       apiclient.PostStatus
		wantRedirect string
		wantStatus   apiclient.PostStatus
	}{
		{name: "draft", status: apiclient.StatusDraft, wantRedirect: "/drafts", wantStatus: apiclient.StatusDraft},
		{name: "publish", status: apiclient.StatusPublished, wantRedirect: "/post/my-post", wantStatus: apiclient.StatusPublished},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.backend.AddUser("alice", "Secret_123")
			cat := f.backend.AddCategory("Go", "go", "")
			ctx, sess := f.login(t, "alice", "Secret_123")

			e := view.NewEditor(f.client, sess)
			_, err := e.Load(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, e.State().Categories, 1)

			e.SetTitle("My Post")
			e.Restore(view.Draft{Title: "My Post", Slug: e.State().Draft.Slug, Markdown: "# Hi"}, 0, "")
			e.ToggleCategory(cat.ID)

			redirect, err := e.Save(ctx, tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.wantRedirect, redirect)

			s := e.State()
			require.NotZero(t, s.PostID)
			p, ok := f.backend.Post(s.PostID)
			require.True(t, ok)
			assert.Equal(t, "my-post", p.Slug)
			assert.Equal(t, tc.wantStatus, p.Status)
			require.Len(t, p.Categories, 1)
			assert.Equal(t, cat.ID, p.Categories[0].ID)
		})
	}
}

func TestEditorPublishExistingDraft(t *testing.T) {
	f := newFixture(t)
	authorID := f.backend.AddUser("alice", "Secret_123")
	draft := f.backend.AddPost(apiclient.Post{Title: "Draft", Slug: "draft", ContentMarkdown: "wip", Status: apiclient.StatusDraft, AuthorID: authorID})
	ctx, sess := f.login(t, "alice", "Secret_123")

	e := view.NewEditor(f.client, sess)
	s, err := e.Load(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, s.EditMode)
	assert.Equal(t, "wip", s.Draft.Markdown)
	assert.Equal(t, apiclient.StatusDraft, s.Status)

	e.SetTitle("Finished")
	e.Insert(view.SyntaxRule, view.Selection{Start: 3, End: 3})

	redirect, err := e.Save(ctx, apiclient.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, "/post/draft", redirect)

	reqs := f.backend.Requests()
	assert.Equal(t, []string{
		fmt.Sprintf("PUT /posts/%d", draft.ID),
		fmt.Sprintf("POST /posts/%d/publish", draft.ID),
	}, reqs[len(reqs)-2:])

	p, _ := f.backend.Post(draft.ID)
	assert.Equal(t, "Finished", p.Title)
	assert.Equal(t, apiclient.StatusPublished, p.Status)
}

func TestEditorSaveRequiresTitleAndBody(t *testing.T) {
	f := newFixture(t)
	e := view.NewEditor(f.client, session.AnonymousSession)
	e.SetTitle("   ")

	_, err := e.Save(f.anonymous(), apiclient.StatusDraft)
	require.Error(t, err)
	assert.True(t, view.IsValidation(err))

	s := e.State()
	assert.Contains(t, s.FormErrors, "title")
	assert.Contains(t, s.FormErrors, "content")
	assert.Empty(t, f.backend.Requests())
}

func TestEditorSaveServerError(t *testing.T) {
	f := newFixture(t)
	e := view.NewEditor(f.client, session.AnonymousSession)
	e.Restore(view.Draft{Title: "T", Slug: "t", Markdown: "x"}, 0, "")

	_, err := e.Save(f.anonymous(), apiclient.StatusDraft)
	require.Error(t, err)

	s := e.State()
	assert.True(t, s.Err)
	assert.Equal(t, "Not authenticated", s.Message)
	assert.Equal(t, "T", s.Draft.Title)
}

func TestEditorLoadFailureShowsBanner(t *testing.T) {
	f := newFixture(t)
	f.backend.AddCategory("Go", "go", "")
	f.backend.AddUser("alice", "Secret_123")
	ctx, sess := f.login(t, "alice", "Secret_123")

	e := view.NewEditor(f.client, sess)
	s, err := e.Load(ctx, 999)
	require.Error(t, err)
	assert.True(t, apiclient.IsNotFound(err))

	assert.True(t, s.Err)
	assert.Equal(t, "Post not found", s.Message)
	assert.False(t, s.Loading)
	assert.Len(t, s.Categories, 1)
	assert.Equal(t, 1, f.backend.Count(http.MethodGet, "/categories"))
}

func TestEditorLoadRejectsOtherAuthors(t *testing.T) {
	f := newFixture(t)
	aliceID := f.backend.AddUser("alice", "Secret_123")
	f.backend.AddUser("bob", "Secret_123")
	testCases := []struct {
		name   string
		status apiclient.PostStatus
	}{
		{name: "draft", status: apiclient.StatusDraft},
		{name: "published", status: apiclient.StatusPublished},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			post := f.backend.AddPost(apiclient.Post{Title: "Alice's", Slug: "alice-" + string(tc.status), ContentMarkdown: "private", Status: tc.status, AuthorID: aliceID})
			ctx, sess := f.login(t, "bob", "Secret_123")

			e := view.NewEditor(f.client, sess)
			s, err := e.Load(ctx, post.ID)
			require.Error(t, err)
			assert.True(t, apiclient.IsNotFound(err))

			assert.True(t, s.Err)
			assert.Equal(t, "Post not found", s.Message)
			assert.False(t, s.EditMode)
			assert.Zero(t, s.PostID)
			assert.Empty(t, s.Draft.Markdown)
		})
	}
}

// draftFirstAPI creates every post as a draft, so publishing takes a second
// request.
type draftFirstAPI struct {
	*apiclient.Client
}

func (a draftFirstAPI) CreatePost(ctx context.Context, in apiclient.PostInput) (*apiclient.Post, error) {
	in.Status = apiclient.StatusDraft
	return a.Client.CreatePost(ctx, in)
}

func TestEditorRetryAfterFailedPublish(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("alice", "Secret_123")
	ctx, sess := f.login(t, "alice", "Secret_123")
	f.backend.Hook = func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/publish") {
			return false
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		return true
	}

	e := view.NewEditor(draftFirstAPI{f.client}, sess)
	e.Restore(view.Draft{Title: "Launch", Slug: "launch", Markdown: "# Go"}, 0, "")

	_, err := e.Save(ctx, apiclient.StatusPublished)
	require.Error(t, err)

	s := e.State()
	assert.True(t, s.Err)
	require.NotZero(t, s.PostID)
	assert.True(t, s.EditMode)
	assert.Equal(t, apiclient.StatusDraft, s.Status)

	f.backend.Hook = nil

	redirect, err := e.Save(ctx, apiclient.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, "/post/launch", redirect)

	reqs := f.backend.Requests()
	assert.Equal(t, []string{
		fmt.Sprintf("PUT /posts/%d", s.PostID),
		fmt.Sprintf("POST /posts/%d/publish", s.PostID),
	}, reqs[len(reqs)-2:])
	assert.Equal(t, 1, countOf(reqs, "POST /posts"))

	p, ok := f.backend.Post(s.PostID)
	require.True(t, ok)
	assert.Equal(t, apiclient.StatusPublished, p.Status)
}

func countOf(reqs []string, want string) int {
	n := 0
	for _, r := range reqs {
		if r == want {
			n++
		}
	}
	return n
}

func TestParseCategoryIDs(t *testing.T) {
	assert.Equal(t, []int{3, 1}, view.ParseCategoryIDs([]string{"3", "x", "1", "-2", "3", "0"}))
	assert.Empty(t, view.ParseCategoryIDs(nil))
}
