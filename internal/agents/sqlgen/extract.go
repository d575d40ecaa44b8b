package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

// generateResponse is the JSON shape some models return for SQL requests.
type generateResponse struct {
	SQL string `json:"sql"`
}

// ExtractSQL pulls a SQL statement out of an LLM response. It tries JSON
// first, then markdown code blocks, then the raw text.
func ExtractSQL(response string) (string, error) {
	response = strings.TrimSpace(response)

	if jsonStr := extractJSON(response); jsonStr != "" {
		var parsed generateResponse
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil && parsed.SQL != "" {
			return cleanSQL(parsed.SQL), nil
		}
	}

	if sql := extractSQLFromCodeBlocks(response); sql != "" {
		return sql, nil
	}

	if looksLikeSQL(response) {
		return cleanSQL(response), nil
	}

	return "", fmt.Errorf("could not extract SQL from response")
}

// extractJSON finds the first balanced JSON object in the text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// extractSQLFromCodeBlocks finds SQL in markdown code blocks.
func extractSQLFromCodeBlocks(response string) string {
	if start := strings.Index(response, "```sql"); start != -1 {
		start += 6
		if end := strings.Index(response[start:], "```"); end != -1 {
			return cleanSQL(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		if end := strings.Index(response[start:], "```"); end != -1 {
			content := strings.TrimSpace(response[start : start+end])
			if looksLikeSQL(content) {
				return cleanSQL(content)
			}
		}
	}

	return ""
}

// looksLikeSQL checks whether text starts like a SQL statement.
func looksLikeSQL(text string) bool {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for _, kw := range []string{"SELECT", "WITH"} {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// cleanSQL trims whitespace and a trailing semicolon.
func cleanSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	sql = strings.TrimSuffix(sql, ";")
	return strings.TrimSpace(sql)
}
