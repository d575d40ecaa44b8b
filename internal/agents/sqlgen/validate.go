package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywordRe matches any statement keyword that writes, alters, or
// escapes the sandbox database. Word-bounded so column names like
// "created_at" do not trip it.
var forbiddenKeywordRe = regexp.MustCompile(
	`(?i)\b(insert|update|delete|drop|alter|create|truncate|replace|attach|detach|pragma)\b`)

// ValidateSQL checks that a generated query is a single read-only SELECT.
func ValidateSQL(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("query is empty")
	}

	if !strings.HasPrefix(strings.ToLower(trimmed), "select") {
		return fmt.Errorf("query must start with SELECT")
	}

	// A trailing semicolon is tolerated; one anywhere else means chaining.
	body := strings.TrimSuffix(trimmed, ";")
	if strings.Contains(body, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	if match := forbiddenKeywordRe.FindString(body); match != "" {
		return fmt.Errorf("forbidden keyword found: %s", strings.ToLower(match))
	}

	return nil
}
