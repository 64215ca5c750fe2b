package main

import (
	"net/http"

	"github.com/sushihentaime/blogist-web/internal/ui"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("url", r.URL.RequestURI()).
		Msg("request failed")
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	page := app.page(r, http.StatusText(status), ui.ErrorPage{Status: status, Message: message})

	err := app.templates.Render(w, status, "error", page)
	if err != nil {
		app.logError(r, err)
		http.Error(w, message, status)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested page could not be found")
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "too many requests, slow down and try again")
}

func (app *application) sessionUnavailableResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusServiceUnavailable, "your session could not be checked, please try again shortly")
}
