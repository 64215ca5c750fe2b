package view

import (
	"context"
	"errors"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/common"
)

type LoginForm struct {
	Username string
	Password string
}

type RegisterForm struct {
	Username string
	Email    string
	Password string
	FullName string
}

type AuthState struct {
	Loading    bool
	Err        bool
	Message    string
	FormErrors map[string]string
}

// Invalidator forgets a cached session.
type Invalidator interface {
	Invalidate(key string)
}

// Auth drives the login, registration and logout actions. key identifies the
// caller's current session so it can be dropped once it changes.
type Auth struct {
	api      AuthAPI
	sessions Invalidator
	key      string

	state AuthState
}

func NewAuth(api AuthAPI, sessions Invalidator, key string) *Auth {
	return &Auth{api: api, sessions: sessions, key: key}
}

func (a *Auth) State() AuthState {
	return a.state
}

func (a *Auth) invalidate() {
	if a.sessions != nil {
		a.sessions.Invalidate(a.key)
	}
}

func (a *Auth) fail(err error, fallback string) {
	a.state.Loading = false
	a.state.Err = true
	a.state.Message = apiclient.MessageOf(err, fallback)
	var verr common.ValidationError
	if errors.As(err, &verr) {
		a.state.FormErrors = verr.Errors
	}
}

// Login signs in and returns the page to go to.
func (a *Auth) Login(ctx context.Context, form LoginForm) (string, error) {
	a.state = AuthState{Loading: true}

	v := common.NewValidator()
	v.Check(v.Required(form.Username), "username", "must be provided")
	v.Check(v.Required(form.Password), "password", "must be provided")
	if !v.Valid() {
		err := v.ValidationError()
		a.fail(err, "Login failed")
		return "", err
	}

	_, err := a.api.Login(ctx, apiclient.LoginInput{Username: form.Username, Password: form.Password})
	if err != nil {
		a.fail(err, "Login failed")
		return "", err
	}

	a.invalidate()
	a.state.Loading = false
	return "/", nil
}

// Register creates an account and returns the login page with a confirmation.
func (a *Auth) Register(ctx context.Context, form RegisterForm) (string, error) {
	a.state = AuthState{Loading: true}

	v := common.NewValidator()
	v.Check(v.Required(form.Username), "username", "must be provided")
	v.Check(v.Required(form.Email), "email", "must be provided")
	v.Check(v.Required(form.Password), "password", "must be provided")
	if !v.Valid() {
		err := v.ValidationError()
		a.fail(err, "Registration failed")
		return "", err
	}

	_, err := a.api.Register(ctx, apiclient.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		FullName: form.FullName,
	})
	if err != nil {
		a.fail(err, "Registration failed")
		return "", err
	}

	a.state.Loading = false
	return "/login?registered=1", nil
}

// Logout ends the session. The cached session is dropped even if the API call
// fails.
func (a *Auth) Logout(ctx context.Context) error {
	defer a.invalidate()
	return a.api.Logout(ctx)
}
