// Package schema describes the fixed e-commerce sample dataset: the DDL used
// to create it, the seed rows, and the formatted description handed to the
// LLM when generating SQL.
package schema

import (
	"fmt"
	"strings"
)

// Column describes a single table column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ForeignKey describes a single FK relationship.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"refTable"`
	RefColumn string `json:"refColumn"`
}

// Table describes one table of the sample dataset.
type Table struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Columns     []Column     `json:"columns"`
	PrimaryKey  string       `json:"primaryKey"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
}

// OrderStatuses are the only valid values of orders.status.
var OrderStatuses = []string{"pending", "shipped", "delivered"}

// Tables is the canonical description of the sample dataset, in the order the
// tables must be created.
var Tables = []Table{
	{
		Name:        "regions",
		Description: "Geographic sales territories",
		Columns: []Column{
			{"id", "INTEGER"}, {"name", "TEXT"}, {"country", "TEXT"}, {"timezone", "TEXT"},
		},
		PrimaryKey: "id",
	},
	{
		Name:        "categories",
		Description: "Product categories with margin data",
		Columns: []Column{
			{"id", "INTEGER"}, {"name", "TEXT"}, {"description", "TEXT"}, {"margin_percentage", "REAL"},
		},
		PrimaryKey: "id",
	},
	{
		Name:        "sales_reps",
		Description: "Sales team information",
		Columns: []Column{
			{"id", "INTEGER"}, {"first_name", "TEXT"}, {"last_name", "TEXT"}, {"email", "TEXT"},
			{"phone", "TEXT"}, {"region_id", "INTEGER"}, {"hire_date", "TEXT"},
			{"commission_rate", "REAL"}, {"is_active", "INTEGER"},
		},
		PrimaryKey:  "id",
		ForeignKeys: []ForeignKey{{"region_id", "regions", "id"}},
	},
	{
		Name:        "customers",
		Description: "Customer information",
		Columns: []Column{
			{"id", "INTEGER"}, {"first_name", "TEXT"}, {"last_name", "TEXT"}, {"email", "TEXT"},
			{"phone", "TEXT"}, {"company", "TEXT"}, {"address", "TEXT"}, {"city", "TEXT"},
			{"state", "TEXT"}, {"region_id", "INTEGER"}, {"customer_since", "TEXT"},
			{"credit_limit", "REAL"}, {"is_active", "INTEGER"},
		},
		PrimaryKey:  "id",
		ForeignKeys: []ForeignKey{{"region_id", "regions", "id"}},
	},
	{
		Name:        "products",
		Description: "Product catalog",
		Columns: []Column{
			{"id", "INTEGER"}, {"name", "TEXT"}, {"sku", "TEXT"}, {"category_id", "INTEGER"},
			{"description", "TEXT"}, {"unit_price", "REAL"}, {"cost", "REAL"},
			{"weight_kg", "REAL"}, {"stock_quantity", "INTEGER"}, {"reorder_level", "INTEGER"},
			{"is_active", "INTEGER"}, {"created_date", "TEXT"},
		},
		PrimaryKey:  "id",
		ForeignKeys: []ForeignKey{{"category_id", "categories", "id"}},
	},
	{
		Name:        "orders",
		Description: "Order header information; status is one of " + strings.Join(OrderStatuses, ", "),
		Columns: []Column{
			{"id", "INTEGER"}, {"customer_id", "INTEGER"}, {"sales_rep_id", "INTEGER"},
			{"order_date", "TEXT"}, {"ship_date", "TEXT"}, {"delivery_date", "TEXT"},
			{"status", "TEXT"}, {"shipping_cost", "REAL"}, {"tax_amount", "REAL"},
			{"discount_amount", "REAL"}, {"notes", "TEXT"},
		},
		PrimaryKey: "id",
		ForeignKeys: []ForeignKey{
			{"customer_id", "customers", "id"},
			{"sales_rep_id", "sales_reps", "id"},
		},
	},
	{
		Name:        "order_items",
		Description: "Individual line items within orders",
		Columns: []Column{
			{"id", "INTEGER"}, {"order_id", "INTEGER"}, {"product_id", "INTEGER"},
			{"quantity", "INTEGER"}, {"unit_price", "REAL"}, {"discount_percentage", "REAL"},
		},
		PrimaryKey: "id",
		ForeignKeys: []ForeignKey{
			{"order_id", "orders", "id"},
			{"product_id", "products", "id"},
		},
	},
}

// TableNames returns the names of all tables in creation order.
func TableNames() []string {
	names := make([]string, len(Tables))
	for i, t := range Tables {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the table with the given name, or false if it is not part of
// the dataset.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// PromptDescription renders the schema the way the SQL generation prompt
// expects it: numbered tables, column lists, and the FK relationships.
func PromptDescription() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Available database schema (%d interconnected tables):\n\n", len(Tables)))

	for i, t := range Tables {
		cols := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cols[j] = c.Name
		}
		b.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, t.Name, t.Description))
		b.WriteString(fmt.Sprintf("   - %s\n", strings.Join(cols, ", ")))
	}

	b.WriteString("\nKey relationships:\n")
	for _, t := range Tables {
		for _, fk := range t.ForeignKeys {
			b.WriteString(fmt.Sprintf("- %s.%s -> %s.%s\n", t.Name, fk.Column, fk.RefTable, fk.RefColumn))
		}
	}

	b.WriteString("\nRevenue is calculated as: quantity * unit_price * (1 - discount_percentage/100)\n")
	return b.String()
}
