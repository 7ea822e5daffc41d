// Package sqlfmt pretty-prints SuiteQL queries.
//
// Formatting is lexical: the query is split into tokens and re-flowed with one
// major clause per line, keywords in upper case and select-list items and
// WHERE conditions on indented lines. Nothing is parsed, so any input is
// accepted and string literals, quoted identifiers and comments are copied
// through unchanged.
package sqlfmt

import "strings"

// Format returns query re-flowed for display. Blank input yields "".
func Format(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	p := newPrinter(Tokenize(query))
	p.run()
	return p.String()
}
