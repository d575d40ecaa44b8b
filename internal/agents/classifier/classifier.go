// Package classifier decides what kind of question a query is before any
// LLM call is made. Arithmetic and off-topic queries short-circuit the
// pipeline entirely, so the checks here are deliberately cheap regex and
// keyword heuristics.
package classifier

import (
	"regexp"
	"strings"

	"data-copilot/internal/models"
)

var (
	numberRe       = regexp.MustCompile(`\d+`)
	mathOperatorRe = regexp.MustCompile(`[+\-*/()×÷]`)

	arithmeticPatterns = []*regexp.Regexp{
		regexp.MustCompile(`what\s+is\s+[\d\s+\-*/().×÷]+`),
		regexp.MustCompile(`calculate\s+[\d\s+\-*/().×÷]+`),
		regexp.MustCompile(`compute\s+[\d\s+\-*/().×÷]+`),
		regexp.MustCompile(`solve\s+[\d\s+\-*/().×÷]+`),
		regexp.MustCompile(`^[\d\s+\-*/().×÷]+\s*[?]?$`),
		regexp.MustCompile(`equals?\s*to\s*[\d\s+\-*/().×÷]+`),
	}

	dataPatterns = []*regexp.Regexp{
		regexp.MustCompile(`how many .+ (are|were|in)`),
		regexp.MustCompile(`what (is|are) the .+ (sales|revenue|orders|customers)`),
		regexp.MustCompile(`show me .+ (data|information|records)`),
		regexp.MustCompile(`list .+ (customers|orders|products)`),
		regexp.MustCompile(`find .+ (with|having|where)`),
		regexp.MustCompile(`which .+ (has|have|had) the (most|least|highest|lowest)`),
		regexp.MustCompile(`total .+ (by|for|in)`),
		regexp.MustCompile(`average .+ (per|by|for)`),
	}
)

var arithmeticKeywords = []string{
	"add", "subtract", "multiply", "divide", "plus", "minus",
	"times", "divided by", "sum of", "difference of", "product of",
	"quotient of", "square root", "squared", "power", "exponent",
}

var dataKeywords = []string{
	"select", "from", "where", "group by", "order by", "having",
	"count", "sum", "average", "avg", "min", "max", "distinct",

	"data", "database", "table", "records", "rows", "columns",
	"sales", "orders", "customers", "products", "revenue", "profit",
	"total", "show me", "find", "get", "list", "display",
	"how many", "what are", "which", "who has", "when did",

	"analyze", "analysis", "report", "summary", "breakdown",
	"trend", "pattern", "distribution", "comparison", "correlation",
	"top", "bottom", "highest", "lowest", "best", "worst",
	"by region", "by category", "by month", "by year", "by date",

	"chart", "graph", "plot", "visualize", "show chart", "create chart",
	"generate chart", "make chart", "draw chart", "visualization",
}

// dataExclusions are keywords that mark a numeric-looking query as a data
// question rather than plain arithmetic.
var dataExclusions = []string{
	"table", "database", "data", "records", "rows", "columns",
	"sales", "orders", "customers", "products", "revenue",
	"count", "average", "total", "sum", "group by", "where",
	"select", "from", "show me", "find", "get", "list",
}

var chartKeywords = []string{
	"chart", "graph", "plot", "visualize", "visualization",
	"show chart", "create chart", "generate chart", "make chart",
	"draw chart", "bar chart", "line chart", "pie chart",
	"scatter plot", "histogram", "give me graph", "also give me graph",
}

// IsArithmetic reports whether the query is a plain arithmetic question.
func IsArithmetic(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, pattern := range arithmeticPatterns {
		if pattern.MatchString(q) {
			return true
		}
	}

	hasNumbers := numberRe.MatchString(q)
	if hasNumbers {
		for _, keyword := range arithmeticKeywords {
			if strings.Contains(q, keyword) {
				return true
			}
		}
	}

	if hasNumbers && mathOperatorRe.MatchString(q) {
		for _, keyword := range dataExclusions {
			if strings.Contains(q, keyword) {
				return false
			}
		}
		return true
	}

	return false
}

// IsDataRelated reports whether the query concerns the dataset.
func IsDataRelated(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, keyword := range dataKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	for _, pattern := range dataPatterns {
		if pattern.MatchString(q) {
			return true
		}
	}
	return false
}

// RequiresChart reports whether the query explicitly asks for a visualization.
func RequiresChart(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, keyword := range chartKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}

// Classify labels the query. Arithmetic wins over data-related so that
// "what is 2+2" never reaches the SQL stage.
func Classify(query string) models.Classification {
	if IsArithmetic(query) {
		return models.ClassificationArithmetic
	}
	if IsDataRelated(query) {
		return models.ClassificationDataQuery
	}
	return models.ClassificationOffTopic
}
