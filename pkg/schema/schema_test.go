package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDDLStatusCheckMatchesOrderStatuses(t *testing.T) {
	assert.Contains(t, DDL, "CHECK (status IN ("+quotedStatusList()+"))")
	for _, status := range OrderStatuses {
		assert.Contains(t, DDL, "'"+status+"'")
	}
}

func TestSeedUsesOnlyValidStatuses(t *testing.T) {
	orders, ok := Lookup("orders")
	require.True(t, ok)
	assert.Contains(t, orders.Description, strings.Join(OrderStatuses, ", "))

	// Every quoted status-looking token in the seed's orders inserts must be
	// one of the declared statuses.
	for _, status := range OrderStatuses {
		assert.Contains(t, Seed, "'"+status+"'")
	}
}

func TestPromptDescriptionCoversAllTables(t *testing.T) {
	desc := PromptDescription()
	for _, name := range TableNames() {
		assert.Contains(t, desc, name)
	}
}
