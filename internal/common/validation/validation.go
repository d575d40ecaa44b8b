// Package validation provides JSON schema validation for structured LLM output
// and incoming API requests.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// chartConfigSchema constrains the chart configuration a model may return.
var chartConfigSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"chart_type", "x_column", "y_column"},
	"properties": map[string]interface{}{
		"chart_type": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"bar", "line", "scatter", "pie", "histogram"},
		},
		"x_column": map[string]interface{}{"type": "string", "minLength": 1},
		"y_column": map[string]interface{}{"type": "string", "minLength": 1},
		"title":    map[string]interface{}{"type": "string"},
	},
}

// inferRequestSchema constrains the inference request body.
var inferRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"query"},
	"properties": map[string]interface{}{
		"query":      map[string]interface{}{"type": "string", "minLength": 1},
		"session_id": map[string]interface{}{"type": "string"},
	},
}

// ValidateChartConfig checks a decoded chart configuration against the schema.
func ValidateChartConfig(config map[string]interface{}) error {
	return validate(chartConfigSchema, config)
}

// ValidateInferRequest checks a decoded inference request against the schema.
func ValidateInferRequest(request map[string]interface{}) error {
	return validate(inferRequestSchema, request)
}

func validate(schemaMap, data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("data validation failed: %v", errs)
	}

	return nil
}
