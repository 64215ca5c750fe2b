package apiclient

import (
	"context"
	"net/http"
	"sync"
)

type credentialsKey struct{}

// Credentials carries the caller's API cookies into every request and collects
// the cookies the API sets in its responses.
type Credentials struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
	updated []*http.Cookie
}

func NewCredentials(cookies []*http.Cookie) *Credentials {
	c := &Credentials{cookies: make(map[string]*http.Cookie)}
	for _, ck := range cookies {
		c.cookies[ck.Name] = ck
	}
	return c
}

func WithCredentials(ctx context.Context, c *Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

func CredentialsFromContext(ctx context.Context) *Credentials {
	c, ok := ctx.Value(credentialsKey{}).(*Credentials)
	if !ok {
		return nil
	}
	return c
}

func (c *Credentials) attach(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
}

// store records cookies set by the API so later calls in the same request see
// them. An expired cookie removes the stored value.
func (c *Credentials) store(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ck := range cookies {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
		} else {
			c.cookies[ck.Name] = ck
		}
		c.updated = append(c.updated, ck)
	}
}

// Value returns the current value of the named cookie.
func (c *Credentials) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ck, ok := c.cookies[name]; ok {
		return ck.Value
	}
	return ""
}

// Updated returns the cookies the API set since the credentials were created.
func (c *Credentials) Updated() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*http.Cookie, len(c.updated))
	copy(out, c.updated)
	return out
}
