package main

import (
	"net/http"

	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
	"github.com/sushihentaime/blogist-web/internal/view"
)

func (app *application) auth(r *http.Request) *view.Auth {
	return view.NewAuth(app.api, app.sessions, session.KeyFromContext(r.Context()))
}

func (app *application) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAuthenticated() {
		app.redirect(w, r, "/")
		return
	}

	data := ui.AuthPage{Registered: r.URL.Query().Get("registered") != ""}
	app.render(w, r, http.StatusOK, "login", app.page(r, "Login", data))
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	form := view.LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}

	a := app.auth(r)
	next, err := a.Login(r.Context(), form)
	if err != nil {
		data := ui.AuthPage{Username: form.Username, State: a.State()}
		app.render(w, r, failureStatus(err), "login", app.page(r, "Login", data))
		return
	}

	app.redirect(w, r, next)
}

func (app *application) registerFormHandler(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "register", app.page(r, "Register", ui.AuthPage{}))
}

func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.parseForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	form := view.RegisterForm{
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		FullName: r.PostForm.Get("full_name"),
	}

	a := app.auth(r)
	next, err := a.Register(r.Context(), form)
	if err != nil {
		data := ui.AuthPage{
			Username: form.Username,
			Email:    form.Email,
			FullName: form.FullName,
			State:    a.State(),
		}
		app.render(w, r, failureStatus(err), "register", app.page(r, "Register", data))
		return
	}

	app.redirect(w, r, next)
}

// logoutHandler always lands on the home page. A failed API call is only
// logged, the cached session is gone either way.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.auth(r).Logout(r.Context()); err != nil {
		app.logError(r, err)
	}

	app.redirect(w, r, "/")
}
