package search

import "strings"

// BuildMatchQuery turns arbitrary user text into a safe FTS5 MATCH
// expression. Every whitespace-separated token becomes a quoted phrase
// (embedded double quotes doubled), which disarms FTS5 operators like
// NOT, NEAR, ^, * and column filters. Tokens are implicitly ANDed.
// Returns "" when the text contains no usable term.
func BuildMatchQuery(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	wrote := false
	for _, tok := range fields {
		// A token of only quote characters carries no searchable term.
		if strings.Trim(tok, `"`) == "" {
			continue
		}
		tok = strings.ReplaceAll(tok, `"`, `""`)
		if wrote {
			b.WriteByte(' ')
		}
		b.WriteByte('"')
		b.WriteString(tok)
		b.WriteByte('"')
		wrote = true
	}
	if !wrote {
		return ""
	}
	return b.String()
}
