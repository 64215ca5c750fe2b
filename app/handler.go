package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
	"github.com/sushihentaime/blogist-web/internal/view"
)

func (app *application) listing(r *http.Request, mode view.Mode) *view.Listing {
	return view.NewListing(app.api, session.FromContext(r.Context()), mode, app.config.PageLimit)
}

func (app *application) listingParams(r *http.Request) view.ListingParams {
	qs := r.URL.Query()

	return view.ListingParams{
		CategorySlug: app.readStringParam(r, "slug"),
		Query:        qs.Get("q"),
		Page:         app.readInt(qs, "page", 1),
		Sort:         view.Sort(qs.Get("sort")),
	}
}

// listingStatus maps a settled listing to the response status. The page is
// rendered either way.
func listingStatus(s view.ListingState) int {
	switch {
	case s.NotFound:
		return http.StatusNotFound
	case s.SessionUnavailable:
		return http.StatusServiceUnavailable
	case s.Err && !s.LoginRequired:
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (app *application) homeHandler(w http.ResponseWriter, r *http.Request) {
	l := app.listing(r, view.ModeHome)
	defer l.Close()

	state, err := l.Load(r.Context(), app.listingParams(r))
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	app.render(w, r, listingStatus(state), "home", app.page(r, "Home", state))
}

func (app *application) categoryHandler(w http.ResponseWriter, r *http.Request) {
	l := app.listing(r, view.ModeCategory)
	defer l.Close()

	state, err := l.Load(r.Context(), app.listingParams(r))
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	title := "Category"
	if state.Category != nil {
		title = state.Category.Name
	}

	app.render(w, r, listingStatus(state), "category", app.page(r, title, state))
}

func (app *application) searchHandler(w http.ResponseWriter, r *http.Request) {
	l := app.listing(r, view.ModeSearch)
	defer l.Close()

	state, err := l.Load(r.Context(), app.listingParams(r))
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	app.render(w, r, listingStatus(state), "search", app.page(r, "Search", state))
}

func (app *application) draftsHandler(w http.ResponseWriter, r *http.Request) {
	l := app.listing(r, view.ModeDrafts)
	defer l.Close()

	state, err := l.Load(r.Context(), view.ListingParams{})
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	app.render(w, r, listingStatus(state), "drafts", app.page(r, "My Drafts", state))
}

// deleteDraftHandler deletes the draft and shows what is left of the list.
func (app *application) deleteDraftHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	l := app.listing(r, view.ModeDrafts)
	defer l.Close()

	state, _ := l.Load(r.Context(), view.ListingParams{})
	if state.LoginRequired {
		app.redirect(w, r, "/login")
		return
	}

	status := http.StatusOK
	if err := l.DeleteDraft(r.Context(), id); err != nil {
		status = failureStatus(err)
	}

	app.render(w, r, status, "drafts", app.page(r, "My Drafts", l.State()))
}

// publishDraftHandler sends the author to the published post, or back to the
// drafts with the reason it failed.
func (app *application) publishDraftHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	l := app.listing(r, view.ModeDrafts)
	defer l.Close()

	post, err := l.PublishDraft(r.Context(), id)
	switch {
	case errors.Is(err, view.ErrNotAuthenticated):
		app.redirect(w, r, "/login")
		return
	case err == nil:
		app.redirect(w, r, "/post/"+post.Slug)
		return
	}

	if _, lerr := l.Load(r.Context(), view.ListingParams{}); errors.Is(lerr, view.ErrSuperseded) {
		return
	}

	app.render(w, r, failureStatus(err), "drafts", app.page(r, "My Drafts", l.State()))
}

// loadDetail loads the post named in the URL. It reports false once a response
// has been written.
func (app *application) loadDetail(w http.ResponseWriter, r *http.Request) (*view.Detail, bool) {
	d := view.NewDetail(app.api, session.FromContext)

	state, err := d.Load(r.Context(), app.readStringParam(r, "slug"))
	if errors.Is(err, view.ErrSuperseded) {
		d.Close()
		return nil, false
	}
	if state.NotFound {
		app.render(w, r, http.StatusNotFound, "post", app.page(r, "Post not found", state))
		d.Close()
		return nil, false
	}

	return d, true
}

func (app *application) renderDetail(w http.ResponseWriter, r *http.Request, status int, state view.DetailState) {
	app.render(w, r, status, "post", app.page(r, state.Post.Title, state))
}

func (app *application) postHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := app.loadDetail(w, r)
	if !ok {
		return
	}
	defer d.Close()

	app.renderDetail(w, r, http.StatusOK, d.State())
}

func (app *application) reactHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	d, ok := app.loadDetail(w, r)
	if !ok {
		return
	}
	defer d.Close()

	err := d.React(r.Context(), apiclient.ReactionType(r.PostForm.Get("type")))
	switch {
	case errors.Is(err, view.ErrNotAuthenticated):
		app.redirect(w, r, "/login")
	case err != nil:
		app.renderDetail(w, r, failureStatus(err), d.State())
	default:
		app.redirect(w, r, "/post/"+d.State().Post.Slug)
	}
}

func (app *application) commentHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	d, ok := app.loadDetail(w, r)
	if !ok {
		return
	}
	defer d.Close()

	form := view.CommentForm{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Content: r.PostForm.Get("content"),
	}

	if err := d.Comment(r.Context(), form); err != nil {
		app.renderDetail(w, r, failureStatus(err), d.State())
		return
	}

	app.redirect(w, r, "/post/"+d.State().Post.Slug+"#comments")
}

func (app *application) aboutHandler(w http.ResponseWriter, r *http.Request) {
	var data ui.AboutPage

	about, err := app.api.About(r.Context())
	status := http.StatusOK
	if err != nil {
		app.logError(r, err)
		data.Err = true
		data.Message = "Failed to load about information"
		status = failureStatus(err)
	} else {
		data.About = about
	}

	app.render(w, r, status, "about", app.page(r, "About", data))
}
