package chart

import (
	"encoding/json"
	"strings"

	apperrors "data-copilot/internal/common/errors"
	"data-copilot/internal/common/validation"
	"data-copilot/internal/models"
	"data-copilot/pkg/schema"
)

// ExtractConfig parses a chart configuration from an LLM response. JSON from
// code blocks or the raw text is tried first; key-value scraping is the last
// resort for models that answer in prose.
func ExtractConfig(response string) models.ChartConfig {
	config := models.ChartConfig{
		ChartType: "bar",
		Title:     "Data Analysis Chart",
	}

	for _, candidate := range jsonCandidates(response) {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		applyConfigMap(&config, parsed)
		return config
	}

	// Prose fallback: scrape "key: value" lines.
	for _, line := range strings.Split(response, "\n") {
		lower := strings.ToLower(line)
		value := valueAfterColon(line)
		switch {
		case strings.Contains(lower, "chart_type"):
			for _, chartType := range []string{"bar", "line", "scatter", "pie", "histogram"} {
				if strings.Contains(lower, chartType) {
					config.ChartType = chartType
					break
				}
			}
		case strings.Contains(lower, "x_column") && value != "":
			config.XColumn = value
		case strings.Contains(lower, "y_column") && value != "":
			config.YColumn = value
		case strings.Contains(lower, "title") && value != "":
			config.Title = value
		}
	}

	return config
}

func jsonCandidates(response string) []string {
	var candidates []string
	if start := strings.Index(response, "```json"); start != -1 {
		rest := response[start+7:]
		if end := strings.Index(rest, "```"); end != -1 {
			candidates = append(candidates, strings.TrimSpace(rest[:end]))
		}
	}
	if start := strings.Index(response, "```"); start != -1 {
		rest := response[start+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			candidates = append(candidates, strings.TrimSpace(rest[:end]))
		}
	}
	candidates = append(candidates, strings.TrimSpace(response))
	return candidates
}

func applyConfigMap(config *models.ChartConfig, parsed map[string]interface{}) {
	if v, ok := parsed["chart_type"].(string); ok && v != "" {
		config.ChartType = v
	}
	if v, ok := parsed["x_column"].(string); ok {
		config.XColumn = v
	}
	if v, ok := parsed["y_column"].(string); ok {
		config.YColumn = v
	}
	if v, ok := parsed["title"].(string); ok && v != "" {
		config.Title = v
	}
}

func valueAfterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx == -1 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(line[idx+1:]), `"',`)
}

// Validate checks the config against the JSON schema.
func Validate(config models.ChartConfig, rows []map[string]any) error {
	doc := map[string]interface{}{
		"chart_type": config.ChartType,
		"x_column":   config.XColumn,
		"y_column":   config.YColumn,
	}
	if config.Title != "" {
		doc["title"] = config.Title
	}
	if err := validation.ValidateChartConfig(doc); err != nil {
		return apperrors.NewChartConfigInvalidError(err.Error())
	}
	return nil
}

// InferConfig builds a chart config from the data alone, used when the LLM
// response was unusable. Column choice: first non-numeric column for x,
// first numeric column for y.
func InferConfig(columns []string, rows []map[string]any) models.ChartConfig {
	config := models.ChartConfig{Title: "Data Analysis Chart"}

	for _, column := range columns {
		if columnIsNumeric(column, rows) {
			if config.YColumn == "" {
				config.YColumn = column
			}
		} else if config.XColumn == "" {
			config.XColumn = column
		}
	}
	// All-numeric results: use the first column as x.
	if config.XColumn == "" && len(columns) > 0 {
		config.XColumn = columns[0]
		if config.YColumn == config.XColumn && len(columns) > 1 {
			config.YColumn = columns[1]
		}
	}

	config.ChartType = InferChartType(config.XColumn, config.YColumn, rows)
	return config
}

// InferChartType picks a chart type from the data's characteristics.
func InferChartType(xColumn, yColumn string, rows []map[string]any) string {
	xNumeric := columnIsNumeric(xColumn, rows)
	xTemporal := columnIsTemporal(xColumn, rows)
	yNumeric := columnIsNumeric(yColumn, rows)
	xUnique := uniqueCount(xColumn, rows)

	switch {
	case xTemporal && yNumeric:
		return "line"
	case !xNumeric && yNumeric && xUnique <= 20:
		return "bar"
	case xNumeric && yNumeric:
		return "scatter"
	case !xNumeric && xUnique <= 8:
		return "pie"
	default:
		return "bar"
	}
}

func columnIsNumeric(column string, rows []map[string]any) bool {
	for _, row := range rows {
		switch row[column].(type) {
		case int, int32, int64, float32, float64:
			return true
		case nil:
			continue
		default:
			return false
		}
	}
	return false
}

func columnIsTemporal(column string, rows []map[string]any) bool {
	if strings.Contains(strings.ToLower(column), "date") ||
		strings.Contains(strings.ToLower(column), "month") ||
		strings.Contains(strings.ToLower(column), "time") {
		return true
	}
	for _, table := range schema.Tables {
		for _, col := range table.Columns {
			if col.Name == column && col.Type == "DATE" {
				return true
			}
		}
	}
	return false
}

func uniqueCount(column string, rows []map[string]any) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		seen[stringify(row[column])] = struct{}{}
	}
	return len(seen)
}
