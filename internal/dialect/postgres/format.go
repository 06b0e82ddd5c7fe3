package postgres

import "strings"

func (g *Generator) formatColumns(cols []string) string {
	var out []string
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	return "(" + strings.Join(out, ", ") + ")"
}

// QuoteString renders value as a single-quoted SQL string literal.
func (g *Generator) QuoteString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
