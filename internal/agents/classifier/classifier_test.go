package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"data-copilot/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  models.Classification
	}{
		{"bare expression", "2+3*4", models.ClassificationArithmetic},
		{"bare expression with question mark", "2 + 3 * 4?", models.ClassificationArithmetic},
		{"what is prefix", "what is 15 / 3", models.ClassificationArithmetic},
		{"calculate prefix", "calculate (10 - 4) * 2", models.ClassificationArithmetic},
		{"word operators", "what is 12 divided by 4", models.ClassificationArithmetic},
		{"unicode operators", "7 × 6", models.ClassificationArithmetic},

		{"revenue by region", "show me total revenue by region", models.ClassificationDataQuery},
		{"top products", "what are the top 5 products?", models.ClassificationDataQuery},
		{"customer count", "how many customers are in the west region", models.ClassificationDataQuery},
		{"chart request", "create a chart of monthly revenue", models.ClassificationDataQuery},
		{"numbers but data terms", "top 10 orders over 100 dollars", models.ClassificationDataQuery},

		{"weather", "what's the weather like today", models.ClassificationOffTopic},
		{"blockchain", "explain blockchain to me", models.ClassificationOffTopic},
		{"greeting", "hello there", models.ClassificationOffTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestRequiresChart(t *testing.T) {
	assert.True(t, RequiresChart("show me sales by region as a bar chart"))
	assert.True(t, RequiresChart("plot monthly revenue"))
	assert.True(t, RequiresChart("visualize the order distribution"))
	assert.False(t, RequiresChart("show me sales by region"))
	assert.False(t, RequiresChart("how many orders were shipped"))
}

func TestIsArithmeticExcludesDataQueries(t *testing.T) {
	// Numeric queries about the dataset must not short-circuit as arithmetic.
	assert.False(t, IsArithmetic("total revenue for the top 3 regions"))
	assert.False(t, IsArithmetic("show me orders with quantity * price over 50"))
	assert.True(t, IsArithmetic("3 * 50"))
}
