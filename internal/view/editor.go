package view

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/common"
	"github.com/sushihentaime/blogist-web/internal/session"
)

type Draft struct {
	Title       string
	Slug        string
	Markdown    string
	Excerpt     string
	CategoryIDs []int
}

type EditorState struct {
	Draft      Draft
	Cursor     int
	PostID     int
	EditMode   bool
	Status     apiclient.PostStatus
	Categories []apiclient.Category

	Loading    bool
	Saving     bool
	Err        bool
	Message    string
	FormErrors map[string]string
}

func (s EditorState) Selected(categoryID int) bool {
	return slices.Contains(s.Draft.CategoryIDs, categoryID)
}

// SlugLocked reports whether the slug can no longer follow the title.
func (s EditorState) SlugLocked() bool {
	return s.EditMode
}

// Editor drives the create and edit pages.
type Editor struct {
	api     EditorAPI
	session session.Session

	gen   generation
	state EditorState
}

// NewEditor returns an editor for sess. Only the author of a post may load it.
func NewEditor(api EditorAPI, sess session.Session) *Editor {
	return &Editor{api: api, session: sess, state: EditorState{Status: apiclient.StatusDraft}}
}

func (e *Editor) State() EditorState {
	var s EditorState
	e.gen.read(func() { s = e.state })
	return s
}

func (e *Editor) Close() {
	e.gen.Close()
}

// Restore puts back state that was round-tripped through a form. postID of
// zero means a new post.
func (e *Editor) Restore(d Draft, postID int, status apiclient.PostStatus) {
	e.gen.read(func() {
		e.state.Draft = d
		e.state.PostID = postID
		e.state.EditMode = postID > 0
		if status != "" {
			e.state.Status = status
		}
	})
}

// SetTitle updates the title. Outside edit mode the slug follows it.
func (e *Editor) SetTitle(title string) {
	e.gen.read(func() {
		e.state.Draft.Title = title
		if !e.state.EditMode {
			e.state.Draft.Slug = Slugify(title)
		}
	})
}

// ToggleCategory adds id if it is not selected and removes it otherwise.
func (e *Editor) ToggleCategory(id int) {
	e.gen.read(func() {
		ids := e.state.Draft.CategoryIDs
		if i := slices.Index(ids, id); i >= 0 {
			e.state.Draft.CategoryIDs = slices.Delete(slices.Clone(ids), i, i+1)
			return
		}
		e.state.Draft.CategoryIDs = append(slices.Clone(ids), id)
	})
}

// Insert applies a toolbar action to the body at sel.
func (e *Editor) Insert(syntax Syntax, sel Selection) {
	e.gen.read(func() {
		e.state.Draft.Markdown, e.state.Cursor = InsertMarkdown(e.state.Draft.Markdown, syntax, sel)
	})
}

// LoadCategories fetches the category choices. A failure is shown as a banner
// and leaves the form usable.
func (e *Editor) LoadCategories(ctx context.Context) (EditorState, error) {
	ctx, gen := e.gen.begin(ctx)

	categories, err := e.api.ListCategories(ctx)
	ok := e.gen.commit(gen, func() {
		if err != nil {
			e.state.Err = true
			e.state.Message = "Failed to load categories"
			return
		}
		e.state.Categories = categories
	})
	if !ok {
		return e.State(), ErrSuperseded
	}
	return e.State(), nil
}

// Load fetches categories and, when postID is set, the post to edit. It
// returns the post lookup error, if any. A category failure only sets the banner.
func (e *Editor) Load(ctx context.Context, postID int) (EditorState, error) {
	ctx, gen := e.gen.begin(ctx)
	e.gen.commit(gen, func() {
		e.state.Loading = true
		e.state.Err = false
		e.state.Message = ""
		e.state.PostID = postID
		e.state.EditMode = postID > 0
	})

	categories, catErr := e.api.ListCategories(ctx)

	var post *apiclient.Post
	var postErr error
	if postID > 0 {
		post, postErr = e.api.GetPostByID(ctx, postID)
		// the API returns any post by id, so someone else's is treated as missing
		if postErr == nil && post.AuthorID != e.session.UserID() {
			post, postErr = nil, &apiclient.StatusError{Status: http.StatusNotFound, Message: "Post not found"}
		}
	}

	ok := e.gen.commit(gen, func() {
		e.state.Loading = false
		if catErr == nil {
			e.state.Categories = categories
		}
		if post != nil {
			ids := make([]int, 0, len(post.Categories))
			for _, c := range post.Categories {
				ids = append(ids, c.ID)
			}
			e.state.Draft = Draft{
				Title:       post.Title,
				Slug:        post.Slug,
				Markdown:    post.ContentMarkdown,
				Excerpt:     post.Excerpt,
				CategoryIDs: ids,
			}
			e.state.Status = post.Status
		}

		switch {
		case postErr != nil:
			e.state.Err = true
			e.state.Message = apiclient.MessageOf(postErr, "Failed to load post")
			// nothing was loaded, so a save must not update postID
			e.state.PostID, e.state.EditMode = 0, false
		case catErr != nil:
			e.state.Err = true
			e.state.Message = "Failed to load categories"
		}
	})
	if !ok {
		return e.State(), ErrSuperseded
	}
	// the banner is already set; the error only tells callers the post is missing
	return e.State(), postErr
}

// Save creates or updates the post with the given target status and returns
// where to go next: the post itself once published, the drafts list otherwise.
func (e *Editor) Save(ctx context.Context, status apiclient.PostStatus) (string, error) {
	s := e.State()

	v := common.NewValidator()
	v.Check(v.Required(s.Draft.Title), "title", "must be provided")
	v.Check(v.Required(s.Draft.Markdown), "content", "must be provided")
	if !v.Valid() {
		e.gen.read(func() { e.state.FormErrors = v.Errors })
		return "", v.ValidationError()
	}

	e.gen.read(func() {
		e.state.Saving = true
		e.state.FormErrors = nil
	})

	post, err := e.save(ctx, s, status)

	e.gen.read(func() {
		e.state.Saving = false
		if err != nil {
			e.state.Err = true
			e.state.Message = apiclient.MessageOf(err, "Failed to save post")
			return
		}
		e.state.Err = false
		e.state.Message = ""
		e.state.PostID = post.ID
		e.state.EditMode = true
		e.state.Status = post.Status
		e.state.Draft.Slug = post.Slug
	})
	if err != nil {
		return "", err
	}

	if post.Status == apiclient.StatusPublished {
		return "/post/" + post.Slug, nil
	}
	return "/drafts", nil
}

func (e *Editor) save(ctx context.Context, s EditorState, status apiclient.PostStatus) (*apiclient.Post, error) {
	in := apiclient.PostInput{
		Title:           s.Draft.Title,
		ContentMarkdown: s.Draft.Markdown,
		Excerpt:         s.Draft.Excerpt,
		Status:          status,
		CategoryIDs:     s.Draft.CategoryIDs,
	}
	if in.CategoryIDs == nil {
		in.CategoryIDs = []int{}
	}

	var post *apiclient.Post
	var err error
	if s.EditMode {
		// The slug of an existing post is never sent back.
		post, err = e.api.UpdatePost(ctx, s.PostID, in)
	} else {
		in.Slug = s.Draft.Slug
		post, err = e.api.CreatePost(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	if !s.EditMode {
		// from here on a retry must update this post, not create another one
		e.gen.read(func() {
			e.state.PostID = post.ID
			e.state.EditMode = true
			e.state.Status = post.Status
			e.state.Draft.Slug = post.Slug
		})
	}

	if status == apiclient.StatusPublished && post.Status != apiclient.StatusPublished {
		post, err = e.api.PublishPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
	}
	return post, nil
}

// ParseCategoryIDs converts submitted checkbox values, skipping anything that
// is not a positive integer.
func ParseCategoryIDs(values []string) []int {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 || slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// IsValidation reports whether err came from form validation.
func IsValidation(err error) bool {
	var verr common.ValidationError
	return errors.As(err, &verr)
}
