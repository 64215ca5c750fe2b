package main

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/ui"
)

// recoverPanic keeps a failing page from taking the process down and shows the
// fallback screen instead.
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.fallbackResponse(w, r, fmt.Errorf("%v", err), debug.Stack())
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) fallbackResponse(w http.ResponseWriter, r *http.Request, err error, stack []byte) {
	app.logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("url", r.URL.RequestURI()).
		Bytes("stack", stack).
		Msg("recovered from panic")

	data := ui.FallbackPage{RetryURL: "/"}
	if r.Method == http.MethodGet {
		data.RetryURL = r.URL.RequestURI()
	}
	if app.config.isDevelopment() {
		data.Detail = err.Error()
		data.Stack = string(stack)
	}

	// the session is not resolved here, a broken API is a likely cause of the panic
	page := ui.Page{Title: "Something went wrong", Data: data}
	if rerr := app.templates.Render(w, http.StatusInternalServerError, "fallback", page); rerr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		var event *zerolog.Event
		switch {
		case rec.status >= 500:
			event = app.logger.Error()
		case rec.status >= 400:
			event = app.logger.Warn()
		default:
			event = app.logger.Info()
		}

		event.
			Str("request_id", id).
			Str("method", r.Method).
			Str("uri", r.URL.RequestURI()).
			Str("remote_addr", r.RemoteAddr).
			Str("proto", r.Proto).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (app *application) secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' https: data:")
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")

		next.ServeHTTP(w, r)
	})
}

// cookieRelay copies the cookies the API set during the request onto the
// browser response. Domain is dropped so they land on this site.
type cookieRelay struct {
	http.ResponseWriter
	creds       *apiclient.Credentials
	wroteHeader bool
}

func (c *cookieRelay) WriteHeader(status int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		for _, ck := range c.creds.Updated() {
			relayed := *ck
			relayed.Domain = ""
			http.SetCookie(c.ResponseWriter, &relayed)
		}
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *cookieRelay) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}

func (c *cookieRelay) Unwrap() http.ResponseWriter {
	return c.ResponseWriter
}

// loadSession attaches the browser's API cookies and the lazily resolved
// session to the request.
func (app *application) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Cookie")

		creds := apiclient.NewCredentials(r.Cookies())
		ctx := apiclient.WithCredentials(r.Context(), creds)

		var key string
		if c, err := r.Cookie(app.config.SessionCookie); err == nil {
			key = c.Value
		}
		ctx = app.sessions.NewContext(ctx, key)

		next.ServeHTTP(&cookieRelay{ResponseWriter: w, creds: creds}, r.WithContext(ctx))
	})
}

func (app *application) requireAuthenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())

		switch {
		case sess.State == session.Unreachable:
			app.sessionUnavailableResponse(w, r)
			return
		case !sess.IsAuthenticated():
			app.redirect(w, r, "/login")
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	}
}

// rateLimit throttles form submissions per client IP. Page views are not
// limited.
func (app *application) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.limiter == nil || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !app.limiter.allow(ip) {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type ipClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	clients   map[string]*ipClient
	lastSweep time.Time
}

// newIPLimiter returns nil when rps is not positive, which turns limiting off.
func newIPLimiter(rps float64, burst int) *ipLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	return &ipLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		clients:   make(map[string]*ipClient),
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > time.Minute {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > 3*time.Minute {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &ipClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.Allow()
}
