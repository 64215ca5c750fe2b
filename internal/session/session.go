// Package session holds the process-wide view of who is logged in. Handlers get
// it injected instead of probing the API themselves on every page.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/common"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	Anonymous State = iota
	Authenticated
	// Unreachable means the API could not answer the probe. It is not the same
	// as being logged out and is never cached.
	Unreachable
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unreachable:
		return "unreachable"
	default:
		return "anonymous"
	}
}

type Session struct {
	State State
	User  *apiclient.User
}

var AnonymousSession = Session{State: Anonymous}

func (s Session) IsAuthenticated() bool {
	return s.State == Authenticated && s.User != nil
}

func (s Session) UserID() int {
	if !s.IsAuthenticated() {
		return 0
	}
	return s.User.ID
}

// Prober answers "who am I" for the credentials attached to ctx.
type Prober interface {
	Me(ctx context.Context) (*apiclient.User, error)
}

type Store struct {
	probe Prober
	cache *common.Cache
	group singleflight.Group
}

func NewStore(probe Prober, ttl time.Duration) *Store {
	return &Store{
		probe: probe,
		cache: common.NewCache(ttl, 2*ttl),
	}
}

// Resolve returns the session for key, probing the API only when nothing is
// cached. An empty key has no session cookie behind it and is anonymous.
func (s *Store) Resolve(ctx context.Context, key string) Session {
	if key == "" {
		return AnonymousSession
	}

	if v, ok := s.cache.Get(common.CacheKeySession(key)); ok {
		return v.(Session)
	}

	// The probe is shared by every request waiting on key, so one caller going
	// away must not turn the answer into Unreachable for the others.
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.resolve(context.WithoutCancel(ctx), key), nil
	})

	return v.(Session)
}

func (s *Store) resolve(ctx context.Context, key string) Session {
	user, err := s.probe.Me(ctx)
	switch {
	case err == nil:
		sess := Session{State: Authenticated, User: user}
		s.cache.Set(common.CacheKeySession(key), sess)
		return sess
	case apiclient.IsUnauthorized(err), apiclient.IsNotFound(err):
		s.cache.Set(common.CacheKeySession(key), AnonymousSession)
		return AnonymousSession
	default:
		return Session{State: Unreachable}
	}
}

// Invalidate drops whatever is known about key. Call it on login and logout.
func (s *Store) Invalidate(key string) {
	if key == "" {
		return
	}
	s.cache.Delete(common.CacheKeySession(key))
}

type contextKey string

const sessionContextKey = contextKey("session")

type contextValue struct {
	key     string
	resolve func() Session
}

// NewContext attaches the caller's session key to ctx. The session itself is
// resolved on first use and remembered for the rest of the request.
func (s *Store) NewContext(ctx context.Context, key string) context.Context {
	v := &contextValue{key: key}
	v.resolve = sync.OnceValue(func() Session {
		return s.Resolve(ctx, key)
	})
	return context.WithValue(ctx, sessionContextKey, v)
}

// FromContext returns the session for ctx, or the anonymous session when none
// was attached.
func FromContext(ctx context.Context) Session {
	v, ok := ctx.Value(sessionContextKey).(*contextValue)
	if !ok {
		return AnonymousSession
	}
	return v.resolve()
}

// KeyFromContext returns the session key attached to ctx.
func KeyFromContext(ctx context.Context) string {
	v, ok := ctx.Value(sessionContextKey).(*contextValue)
	if !ok {
		return ""
	}
	return v.key
}
