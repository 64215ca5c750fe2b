package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
	"github.com/sushihentaime/blogist-web/internal/view"
)

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

func (app *application) readIDParam(r *http.Request, key string) (int, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.Atoi(params.ByName(key))
	if err != nil || id < 1 {
		return 0, errors.New("invalid ID parameter")
	}

	return id, nil
}

func (app *application) readStringParam(r *http.Request, key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// readInt returns the integer query value for key, or def when it is missing
// or malformed.
func (app *application) readInt(qs url.Values, key string, def int) int {
	s := qs.Get(key)
	if s == "" {
		return def
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return i
}

// parseForm limits the body to 1MB before parsing it.
func (app *application) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	return r.ParseForm()
}

func (app *application) redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (app *application) page(r *http.Request, title string, data any) ui.Page {
	return ui.Page{
		Title:   title,
		Session: session.FromContext(r.Context()),
		Query:   r.URL.Query().Get("q"),
		Data:    data,
	}
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, page ui.Page) {
	err := app.templates.Render(w, status, name, page)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// failureStatus picks the response status for a page re-rendered after a
// failed action.
func failureStatus(err error) int {
	switch {
	case view.IsValidation(err), errors.Is(err, view.ErrUnknownReaction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, view.ErrSessionUnavailable):
		return http.StatusServiceUnavailable
	case apiclient.IsTransport(err):
		return http.StatusBadGateway
	}

	if status := apiclient.StatusOf(err); status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
