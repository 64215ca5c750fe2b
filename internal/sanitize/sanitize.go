// Package sanitize is the single place server-sourced HTML passes through before
// it reaches a template as trusted markup.
package sanitize

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	// UGC keeps language-* classes on code blocks for client-side highlighting.
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	return p
}

// HTML returns untrusted markup stripped down to the user-generated-content policy.
func HTML(untrusted string) template.HTML {
	return template.HTML(policy.Sanitize(untrusted))
}
