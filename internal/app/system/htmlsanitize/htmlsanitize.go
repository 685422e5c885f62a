// Package htmlsanitize strips dangerous markup from user-supplied rich
// text before it is stored or rendered.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the formatting tags typical of user generated
	// content (paragraphs, lists, links, emphasis) and nothing else.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans rich-text input such as event descriptions and
// judging criteria. Scripts, event handlers, and unknown tags are
// removed; basic formatting survives.
func Sanitize(input string) string {
	return strings.TrimSpace(ugc.Sanitize(input))
}

// PlainText removes all markup, for fields that must never contain
// HTML (names, titles, venues).
func PlainText(input string) string {
	return strings.TrimSpace(strict.Sanitize(input))
}
