package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/apiclient/apitest"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
)

type testServer struct {
	*httptest.Server
	client *http.Client
}

// newTestServer starts h behind a client that keeps cookies and does not
// follow redirects, so tests can assert on the 303 itself.
func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &testServer{Server: ts, client: client}
}

func newTestApplication(t *testing.T) (*application, *apitest.Backend) {
	backend, apiURL := apitest.NewServer(t)

	cfg, err := loadConfig(newViper(), "")
	require.NoError(t, err)
	cfg.APIURL = apiURL
	cfg.SessionCookie = apitest.SessionCookie
	cfg.RateLimitRPS = 0

	templates, err := ui.NewRenderer()
	require.NoError(t, err)

	api := apiclient.New(cfg.APIURL)

	app := &application{
		config:    cfg,
		logger:    zerolog.Nop(),
		api:       api,
		sessions:  session.NewStore(api, cfg.SessionTTL),
		templates: templates,
	}

	return app, backend
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, string) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, res.Header, string(body)
}

func (ts *testServer) get(t *testing.T, path string) (int, http.Header, string) {
	res, err := ts.client.Get(ts.URL + path)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) (int, http.Header, string) {
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := ts.client.Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) getJSON(t *testing.T, path string) (int, envelope) {
	res, err := ts.client.Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))

	return res.StatusCode, env
}

// login signs in through the login form. The relayed session cookie ends up in
// the client's jar.
func (ts *testServer) login(t *testing.T, username, password string) {
	t.Helper()

	status, header, _ := ts.postForm(t, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/", header.Get("Location"))
}
