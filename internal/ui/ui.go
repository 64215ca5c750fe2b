// Package ui renders the HTML pages of the blog.
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/sushihentaime/blogist-web/internal/apiclient"
	"github.com/sushihentaime/blogist-web/internal/sanitize"
	"github.com/sushihentaime/blogist-web/internal/session"
	"github.com/sushihentaime/blogist-web/internal/view"
)

//go:embed templates/*
var templateFS embed.FS

var pages = []string{
	"home", "category", "search", "drafts", "post", "editor",
	"login", "register", "about", "error", "fallback",
}

const recentLimit = 5

// Page is what every template receives. Data holds the page specific state.
type Page struct {
	Title   string
	Session session.Session
	Query   string
	Notice  string
	Year    int
	Data    any
}

type AuthPage struct {
	Username   string
	Email      string
	FullName   string
	State      view.AuthState
	Registered bool
}

type AboutPage struct {
	About   *apiclient.About
	Err     bool
	Message string
}

type ErrorPage struct {
	Status  int
	Message string
}

// FallbackPage is the recovery screen. Detail and Stack stay empty outside
// development.
type FallbackPage struct {
	RetryURL string
	Detail   string
	Stack    string
}

var reactionEmoji = map[apiclient.ReactionType]string{
	apiclient.ReactionLike:  "👍",
	apiclient.ReactionLove:  "❤️",
	apiclient.ReactionHaha:  "😄",
	apiclient.ReactionWow:   "😮",
	apiclient.ReactionSad:   "😢",
	apiclient.ReactionAngry: "😠",
}

var functions = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"postDate": func(p apiclient.Post) string {
		return p.Date().Format("January 2, 2006")
	},
	"excerpt":  Excerpt,
	"recent":   Recent,
	"results":  Results,
	"safeHTML": sanitize.HTML,
	"add": func(a, b int) int {
		return a + b
	},
	"categoryNames": func(cs []apiclient.Category) string {
		names := make([]string, 0, len(cs))
		for _, c := range cs {
			names = append(names, c.Name)
		}
		return strings.Join(names, ", ")
	},
	"reactionTypes": func() []apiclient.ReactionType {
		return apiclient.ReactionTypes
	},
	"emoji": func(t apiclient.ReactionType) string {
		return reactionEmoji[t]
	},
	"reactionCount": func(s apiclient.ReactionSummary, t apiclient.ReactionType) int {
		return s.Counts()[t]
	},
	"toolbar": func() any {
		return view.Toolbar
	},
}

// Excerpt is the post's excerpt or a placeholder when it has none.
func Excerpt(p apiclient.Post) string {
	if strings.TrimSpace(p.Excerpt) == "" {
		return "No excerpt available..."
	}
	return p.Excerpt
}

// Recent returns at most the first five posts.
func Recent(posts []apiclient.Post) []apiclient.Post {
	if len(posts) > recentLimit {
		return posts[:recentLimit]
	}
	return posts
}

func Results(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}

	for _, name := range pages {
		t, err := template.New(name).Funcs(functions).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Render executes the named page into a buffer and only then writes it out,
// so a failing template never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s does not exist", name)
	}

	if page.Year == 0 {
		page.Year = time.Now().Year()
	}

	buf := new(bytes.Buffer)
	if err := t.ExecuteTemplate(buf, "layout", page); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
