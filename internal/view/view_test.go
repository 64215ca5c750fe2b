package view_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/apiclient/apitest"
	"github.com/sushihentaime/blogist-web/internal/session"
)

type fixture struct {
	backend *apitest.Backend
	client  *apiclient.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b, url := apitest.NewServer(t)
	return &fixture{backend: b, client: apiclient.New(url)}
}

func (f *fixture) anonymous() context.Context {
	return apiclient.WithCredentials(context.Background(), apiclient.NewCredentials(nil))
}

// login signs in as username and returns a context carrying the session cookie
// together with the matching authenticated session.
func (f *fixture) login(t *testing.T, username, password string) (context.Context, session.Session) {
	t.Helper()

	ctx := f.anonymous()
	res, err := f.client.Login(ctx, apiclient.LoginInput{Username: username, Password: password})
	require.NoError(t, err)

	user := res.User
	return ctx, session.Session{State: session.Authenticated, User: &user}
}

func failWith(status int, method, path string) func(w http.ResponseWriter, r *http.Request) bool {
	return func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method != method || r.URL.Path != "/api"+path {
			return false
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"detail":"boom"}`))
		return true
	}
}
