package grid

import (
	"regexp"
	"strings"
)

// selectFromRe matches a leading `SELECT... FROM <name>` whose tail
// contains no further clause keyword we can't reason about simply; the
// capture group is the raw table token (possibly schema-qualified and/or
// quoted).
var selectFromRe = regexp.MustCompile(`(?is)^\s*select\b.*?\bfrom\s+([a-zA-Z0-9_."]+)`)

// subqueryRe looks for a nested SELECT anywhere after FROM, which
// disqualifies the simple heuristic.
var subqueryRe = regexp.MustCompile(`(?is)\(\s*select\b`)

// ExtractSourceTable is the regexp fast path: a leading SELECT ... FROM
// <name> whose tail contains no " JOIN " and no subquery. Schema
// prefixes and quotes are stripped to a bare table name; complex
// queries yield "".
func ExtractSourceTable(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "select") {
		return ""
	}
	if strings.Contains(lower, " join ") {
		return ""
	}
	if subqueryRe.MatchString(trimmed) {
		return ""
	}

	m := selectFromRe.FindStringSubmatch(trimmed)
	if m == nil {
		return ""
	}
	return bareTableName(m[1])
}

// bareTableName strips schema qualification and quoting, leaving just
// the table identifier.
func bareTableName(token string) string {
	parts := strings.Split(token, ".")
	last := parts[len(parts)-1]
	last = strings.Trim(last, `"`)
	return last
}
