package api

import (
	"strings"
	"unicode"
)

// SnakeCase converts CamelCase to snake_case. Acronyms stay together
// (HTMLBody -> html_body); input already in snake form is returned lowered.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(strings.Join(strings.Fields(s), ""))

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					b.WriteRune('_')
				} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelCase converts snake_case to CamelCase (body_html -> BodyHtml).
func CamelCase(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(s, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
