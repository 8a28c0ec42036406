// Package sql provides the named-parameter compiler, read-only guard, and
// write statement validation/building shared by the backend adapters.
package sql

import (
	"regexp"
	"strings"

	"github.com/openbase-hq/openbase-engine/pkg/apperrors"
)

var (
	allowedReadPattern = regexp.MustCompile(`(?i)^\s*(select|with)\b`)

	// disallowedWritePattern is a deliberately blunt word-boundary scan over
	// the whole query text, including comments and string literals. It
	// over-rejects rather than under-rejects; callers depend on this exact
	// behavior, so it must not be tightened or loosened.
	disallowedWritePattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|truncate|create|replace|grant|revoke)\b`)

	positionalParamPattern = regexp.MustCompile(`\$\d+\b`)
)

// ValidateReadOnly normalizes a saved query's text and rejects anything that
// is not a single read query. It strips one trailing semicolon, requires the
// text to begin with SELECT or WITH, scans for disallowed write verbs, and
// rejects positional $N placeholders (callers must use :name parameters).
//
// The returned text is the normalized form the compiler should receive.
func ValidateReadOnly(queryText string) (string, error) {
	normalized := stripTrailingSemicolon(strings.TrimSpace(queryText))
	if normalized == "" {
		return "", apperrors.BadRequest("query text is required")
	}
	if !allowedReadPattern.MatchString(normalized) {
		return "", apperrors.BadRequest("only SELECT/CTE queries are allowed")
	}
	if disallowedWritePattern.MatchString(normalized) {
		return "", apperrors.BadRequest("write operations are not allowed in saved queries")
	}
	if positionalParamPattern.MatchString(normalized) {
		return "", apperrors.BadRequest("use named parameters like :name, not positional placeholders")
	}
	return normalized, nil
}

// stripTrailingSemicolon removes one trailing semicolon and surrounding
// whitespace. Semicolons elsewhere are left alone; a second statement will
// fail at the LIMIT wrap, which doubles as a syntax fence.
func stripTrailingSemicolon(queryText string) string {
	queryText = strings.TrimRight(queryText, " \t\n\r")
	if strings.HasSuffix(queryText, ";") {
		queryText = strings.TrimSuffix(queryText, ";")
		queryText = strings.TrimRight(queryText, " \t\n\r")
	}
	return queryText
}
