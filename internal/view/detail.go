package view

import (
	"context"
	"errors"
	"html/template"

	"golang.org/x/sync/errgroup"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/common"
	"github.com/sushihentaime/blogist-web/internal/sanitize"
	"github.com/sushihentaime/blogist-web/internal/session"
)

type CommentForm struct {
	Name    string
	Email   string
	Content string
}

type DetailState struct {
	Post      *apiclient.Post
	Comments  []apiclient.Comment
	Reactions apiclient.ReactionSummary
	Session   session.Session

	Form       CommentForm
	FormErrors map[string]string

	Loading  bool
	NotFound bool
	Message  string
	Notice   string
}

func (s DetailState) Branch() Branch {
	switch {
	case s.Loading:
		return BranchLoading
	case s.NotFound:
		return BranchError
	default:
		return BranchReady
	}
}

func (s DetailState) CanReact() bool {
	return s.Post != nil && s.Session.IsAuthenticated()
}

func (s DetailState) CanEdit() bool {
	return s.CanReact() && s.Post.AuthorID == s.Session.UserID()
}

// SafeContent is the post body cleaned for direct insertion into the page.
func (s DetailState) SafeContent() template.HTML {
	if s.Post == nil {
		return ""
	}
	return sanitize.HTML(s.Post.ContentHTML)
}

// Detail drives the post page: the post, its comments and its reactions.
type Detail struct {
	api     DetailAPI
	session SessionFunc

	gen   generation
	state DetailState
}

func NewDetail(api DetailAPI, sess SessionFunc) *Detail {
	return &Detail{api: api, session: sess}
}

func (d *Detail) State() DetailState {
	var s DetailState
	d.gen.read(func() { s = d.state })
	return s
}

func (d *Detail) Close() {
	d.gen.Close()
}

var errHiddenDraft = errors.New("draft of another author")

// visibleTo reports whether sess may see p. The API hands drafts to anyone who
// asks, so only the author's own drafts are shown.
func visibleTo(p *apiclient.Post, sess session.Session) bool {
	if p.Status != apiclient.StatusDraft {
		return true
	}
	return sess.IsAuthenticated() && p.AuthorID == sess.UserID()
}

// Load resolves the post by slug, then its comments and reaction summary in
// parallel. The session is resolved alongside. A failed post lookup is final.
func (d *Detail) Load(ctx context.Context, slug string) (DetailState, error) {
	ctx, gen := d.gen.begin(ctx)
	d.gen.commit(gen, func() {
		d.state = DetailState{Loading: true}
	})

	sessc := make(chan session.Session, 1)
	go func() {
		sessc <- d.session(ctx)
	}()

	post, err := d.api.GetPostBySlug(ctx, slug)
	sess := <-sessc
	if err == nil && !visibleTo(post, sess) {
		err = errHiddenDraft
	}
	if err != nil {
		ok := d.gen.commit(gen, func() {
			d.state = DetailState{Session: sess, NotFound: true, Message: "Post not found"}
		})
		if !ok {
			return d.State(), ErrSuperseded
		}
		return d.State(), nil
	}

	var comments []apiclient.Comment
	var summary *apiclient.ReactionSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = d.api.ListComments(gctx, post.ID)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = d.api.GetReactionSummary(gctx, post.ID)
		return err
	})
	err = g.Wait()

	ok := d.gen.commit(gen, func() {
		d.state = DetailState{Post: post, Session: sess}
		if err != nil {
			d.state.Notice = "Some details of this post could not be loaded"
			return
		}
		d.state.Comments = comments
		d.state.Reactions = *summary
	})
	if !ok {
		return d.State(), ErrSuperseded
	}
	return d.State(), nil
}

// React toggles the caller's reaction and refreshes the summary. Nothing is
// sent without an authenticated session.
func (d *Detail) React(ctx context.Context, kind apiclient.ReactionType) error {
	s := d.State()
	switch {
	case s.Post == nil:
		return ErrNoPost
	case s.Session.State == session.Unreachable:
		d.notice(msgSessionDown)
		return ErrSessionUnavailable
	case !s.Session.IsAuthenticated():
		d.notice("Please log in to react")
		return ErrNotAuthenticated
	case !kind.Valid():
		d.notice("Unknown reaction")
		return ErrUnknownReaction
	}

	gen := d.gen.now()
	if err := d.api.React(ctx, apiclient.ReactionInput{Type: kind, PostID: s.Post.ID}); err != nil {
		d.notice(apiclient.MessageOf(err, "Failed to save reaction"))
		return err
	}

	summary, err := d.api.GetReactionSummary(ctx, s.Post.ID)
	if err != nil {
		d.notice(apiclient.MessageOf(err, "Failed to refresh reactions"))
		return err
	}

	d.gen.commit(gen, func() {
		d.state.Reactions = *summary
	})
	return nil
}

// Comment posts a comment after checking every field is filled in. On success
// the comment list is refetched and the form cleared; on failure the form is
// kept as entered.
func (d *Detail) Comment(ctx context.Context, form CommentForm) error {
	s := d.State()
	if s.Post == nil {
		return ErrNoPost
	}

	v := common.NewValidator()
	v.Check(v.Required(form.Name), "name", "must be provided")
	v.Check(v.Required(form.Email), "email", "must be provided")
	v.Check(v.Required(form.Content), "content", "must be provided")

	gen := d.gen.now()
	if !v.Valid() {
		d.gen.commit(gen, func() {
			d.state.Form = form
			d.state.FormErrors = v.Errors
		})
		return v.ValidationError()
	}

	_, err := d.api.CreateComment(ctx, apiclient.CommentInput{
		PostID:      s.Post.ID,
		AuthorName:  form.Name,
		AuthorEmail: form.Email,
		Content:     form.Content,
	})
	if err != nil {
		d.gen.commit(gen, func() {
			d.state.Form = form
			d.state.FormErrors = nil
			d.state.Notice = apiclient.MessageOf(err, "Failed to post comment")
		})
		return err
	}

	comments, err := d.api.ListComments(ctx, s.Post.ID)
	d.gen.commit(gen, func() {
		d.state.Form = CommentForm{}
		d.state.FormErrors = nil
		if err != nil {
			d.state.Notice = "Comment posted, but comments could not be refreshed"
			return
		}
		d.state.Comments = comments
	})
	return nil
}

func (d *Detail) notice(msg string) {
	d.gen.read(func() { d.state.Notice = msg })
}
