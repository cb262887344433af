// internal/nl2sql/extract/extract.go

// Package extract distils free-form model output down to a single candidate
// SQL statement. The heuristics are layered and deliberately forgiving: each
// step refines the candidate, and when nothing resembling SQL is found the
// first line is returned anyway so the failure surfaces at the database
// layer. No attempt is made to validate that the result parses as SQL, and
// there is no defense against hostile statements; both are documented
// limitations of this design.
package extract

import (
	"regexp"
	"strings"
)

var (
	// Text after an Alpaca-style "### Response:" marker.
	responseMarkerRe = regexp.MustCompile(`(?is)###\s*Response:\s*(.*)`)

	// Contents of a fenced code block, with an optional sql language tag.
	fencedBlockRe = regexp.MustCompile("(?is)```(?:sql)?\\s*(.*?)```")

	// A line that opens with a SQL keyword.
	leadingKeywordRe = regexp.MustCompile(`(?i)^(SELECT|INSERT|UPDATE|DELETE|WITH)\b`)

	// A SELECT ... FROM statement anywhere in the text, optionally followed
	// by trailing clauses.
	selectStatementRe = regexp.MustCompile(`(?is)(SELECT\s+.*?\s+FROM\s+\w+(?:\s+(?:WHERE|JOIN|GROUP BY|ORDER BY|LIMIT|HAVING)[^;]*)?)`)
)

// Extract returns the first SQL statement found in generated text.
//
// Applying Extract to its own output returns the same statement unchanged: a
// bare SQL line has no marker and no fence, so it short-circuits at the
// leading-keyword step.
func Extract(text string) string {
	// 1) Prefer text after a "### Response:" marker.
	if m := responseMarkerRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	// 2) Prefer the contents of a fenced code block.
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	firstLine := firstLineOf(text)

	// 3) A first line that opens with a SQL keyword is taken as-is.
	if leadingKeywordRe.MatchString(firstLine) {
		return finalize(truncateAtUnion(firstLine))
	}

	// 4) Otherwise search the whole text for a SELECT statement.
	if m := selectStatementRe.FindStringSubmatch(text); m != nil {
		return finalize(truncateAtUnion(strings.TrimSpace(m[1])))
	}

	// 5) Best-effort fallback: the first line, semicolon stripped. Execution
	// will reject it downstream if it is not SQL.
	if firstLine != "" {
		return finalize(firstLine)
	}
	return strings.TrimSpace(text)
}

func firstLineOf(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	return strings.TrimSpace(lines[0])
}

// truncateAtUnion drops everything from the first " UNION " onward. A match
// at position zero is left alone; only a UNION after some initial statement
// text truncates.
func truncateAtUnion(sql string) string {
	if pos := strings.Index(strings.ToUpper(sql), " UNION "); pos > 0 {
		return strings.TrimSpace(sql[:pos])
	}
	return sql
}

func finalize(sql string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(sql), ";"))
}
