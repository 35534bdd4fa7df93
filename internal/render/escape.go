package render

import (
	"fmt"
	"strings"
)

// htmlReplacer performs a single left-to-right pass; replaced output is
// never rescanned, so "&lt;" stays "&lt;" within one call.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape coerces value to text and escapes the five HTML-significant
// characters. A nil value yields the empty string.
func Escape(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case error:
		s = v.Error()
	default:
		s = fmt.Sprint(v)
	}
	return htmlReplacer.Replace(s)
}
