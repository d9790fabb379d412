// Package nav maps display names to URL path segments and builds the
// navigation model shared by the sidebar and the command palette.
package nav

import (
	"regexp"
	"strings"
)

// whitespaceRun matches what a browser treats as whitespace: ASCII
// controls, every Unicode space separator and the BOM.
var whitespaceRun = regexp.MustCompile(`[\t\n\v\f\r\p{Z}\x{FEFF}]+`)

// Slug lowercases name and replaces each whitespace run with a hyphen.
// Nothing else is normalized, so the mapping is neither reversible nor
// collision-free.
func Slug(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}
