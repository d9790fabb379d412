package ui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdMu sync.Mutex
	// Renderers are cached by wrap width. A fixed style avoids the terminal
	// background query that glamour's auto style performs.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// MarkdownStyle is the glamour standard style used for task descriptions
// and comments.
var MarkdownStyle = "dark"

// SetMarkdownTheme selects the glamour style for a display theme name:
// "light", "dark", "ascii" or "notty". Anything else keeps dark.
func SetMarkdownTheme(name string) {
	style := strings.ToLower(strings.TrimSpace(name))
	switch style {
	case "light", "dark", "ascii", "notty":
	default:
		style = "dark"
	}

	mdMu.Lock()
	defer mdMu.Unlock()
	if style != MarkdownStyle {
		MarkdownStyle = style
		mdRenderers = map[int]*glamour.TermRenderer{}
	}
}

// RenderMarkdown renders md for the given width. On renderer failure the
// source text is returned unchanged.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdMu.Lock()
	defer mdMu.Unlock()

	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(MarkdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Truncate shortens s to width cells, appending an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// Plural formats a count with a singular or plural noun.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
