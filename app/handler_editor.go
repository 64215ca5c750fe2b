package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/view"
)

func editorTitle(s view.EditorState) string {
	if s.EditMode {
		return "Edit Post"
	}
	return "Create New Post"
}

func (app *application) renderEditor(w http.ResponseWriter, r *http.Request, status int, s view.EditorState) {
	w.Header().Set("Cache-Control", "no-store")
	app.render(w, r, status, "editor", app.page(r, editorTitle(s), s))
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	e := view.NewEditor(app.api, session.FromContext(r.Context()))
	defer e.Close()

	state, err := e.Load(r.Context(), 0)
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	app.renderEditor(w, r, http.StatusOK, state)
}

func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	e := view.NewEditor(app.api, session.FromContext(r.Context()))
	defer e.Close()

	state, err := e.Load(r.Context(), id)
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	status := http.StatusOK
	if err != nil {
		status = failureStatus(err)
	}

	app.renderEditor(w, r, status, state)
}

// editorHandler handles every submit of the editor form. The action field
// says whether to toggle a category, insert markdown or save.
func (app *application) editorHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	form := r.PostForm

	e := view.NewEditor(app.api, session.FromContext(r.Context()))
	defer e.Close()

	title := form.Get("title")
	original := form.Get("original_title")

	e.Restore(view.Draft{
		Title:       original,
		Slug:        form.Get("slug"),
		Markdown:    strings.ReplaceAll(form.Get("content"), "\r\n", "\n"),
		Excerpt:     form.Get("excerpt"),
		CategoryIDs: view.ParseCategoryIDs(form["category_ids"]),
	}, app.readInt(form, "post_id", 0), apiclient.PostStatus(form.Get("status")))

	if title != original {
		e.SetTitle(title)
	}

	action, arg, _ := strings.Cut(form.Get("action"), ":")

	switch action {
	case "toggle":
		if id, err := strconv.Atoi(arg); err == nil {
			e.ToggleCategory(id)
		}
	case "insert":
		e.Insert(view.Syntax(arg), view.Selection{
			Start: app.readInt(form, "selection_start", 0),
			End:   app.readInt(form, "selection_end", 0),
		})
	case "save":
		target := apiclient.StatusDraft
		if arg == string(apiclient.StatusPublished) {
			target = apiclient.StatusPublished
		}

		next, err := e.Save(r.Context(), target)
		if err == nil {
			app.redirect(w, r, next)
			return
		}

		state, lerr := e.LoadCategories(r.Context())
		if errors.Is(lerr, view.ErrSuperseded) {
			return
		}
		app.renderEditor(w, r, failureStatus(err), state)
		return
	}

	state, err := e.LoadCategories(r.Context())
	if errors.Is(err, view.ErrSuperseded) {
		return
	}

	app.renderEditor(w, r, http.StatusOK, state)
}
