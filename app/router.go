package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthz", app.healthCheckHandler)

	// listings
	router.HandlerFunc(http.MethodGet, "/", app.homeHandler)
	router.HandlerFunc(http.MethodGet, "/category/:slug", app.categoryHandler)
	router.HandlerFunc(http.MethodGet, "/search", app.searchHandler)
	router.HandlerFunc(http.MethodGet, "/drafts", app.draftsHandler)
	router.HandlerFunc(http.MethodPost, "/drafts/:id/publish", app.publishDraftHandler)
	router.HandlerFunc(http.MethodPost, "/drafts/:id/delete", app.deleteDraftHandler)

	// post detail
	router.HandlerFunc(http.MethodGet, "/post/:slug", app.postHandler)
	router.HandlerFunc(http.MethodPost, "/post/:slug/react", app.reactHandler)
	router.HandlerFunc(http.MethodPost, "/post/:slug/comment", app.commentHandler)

	// editor
	router.HandlerFunc(http.MethodGet, "/create", app.requireAuthenticated(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/edit/:id", app.requireAuthenticated(app.editPostHandler))
	router.HandlerFunc(http.MethodPost, "/editor", app.requireAuthenticated(app.editorHandler))

	// auth
	router.HandlerFunc(http.MethodGet, "/login", app.loginFormHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.loginHandler)
	router.HandlerFunc(http.MethodGet, "/register", app.registerFormHandler)
	router.HandlerFunc(http.MethodPost, "/register", app.registerHandler)
	router.HandlerFunc(http.MethodPost, "/logout", app.logoutHandler)

	router.HandlerFunc(http.MethodGet, "/about", app.aboutHandler)

	return app.recoverPanic(app.logRequest(app.secureHeaders(app.loadSession(app.rateLimit(router)))))
}
