// internal/nl2sql/rules/rules.go

// Package rules maps common question phrasings straight to SQL, bypassing the
// model. The rule list is an ordered decision table: rules are tried top to
// bottom and the first match wins, so later rules are reachable only when all
// earlier ones fail. The ordering and templates are load-bearing; do not
// reorder or "clean up" individual rules in isolation.
package rules

import "strings"

const (
	// MethodRuleBased labels responses whose SQL came from this table.
	MethodRuleBased = "rule-based"
	// MethodModelGenerated labels responses whose SQL came from the model.
	MethodModelGenerated = "model-generated"
)

// productVocabulary is the fixed list of product terms recognised in price
// questions. Matching is substring containment against the lowercased
// question, in this order.
var productVocabulary = []string{
	"gaming laptop", "mechanical keyboard", "wireless mouse", "monitor",
	"headphones", "smartphone", "smartwatch", "router", "chair", "desk",
	"lamp", "bookshelf", "coffee table", "water bottle", "backpack",
	"phone case", "running shoes", "hoodie", "ssd", "docking station",
}

// rule pairs a predicate with a template producer. The producer receives the
// lowercased question so a single rule can pick between related templates.
type rule struct {
	name  string
	match func(q string) bool
	sql   func(q string) string
}

func static(sql string) func(string) string {
	return func(string) string { return sql }
}

var ruleTable = []rule{
	{
		name: "count-products",
		match: func(q string) bool {
			return strings.Contains(q, "how many products") ||
				(strings.Contains(q, "count") && strings.Contains(q, "product"))
		},
		sql: static("SELECT COUNT(*) as product_count FROM products"),
	},
	{
		name: "count-sales",
		match: func(q string) bool {
			return strings.Contains(q, "how many sales") ||
				(strings.Contains(q, "count") && strings.Contains(q, "sales"))
		},
		sql: static("SELECT COUNT(*) as sales_count FROM sales"),
	},
	{
		name: "list-products",
		match: func(q string) bool {
			return strings.Contains(q, "show all products") ||
				strings.Contains(q, "list all products") ||
				strings.Contains(q, "all products")
		},
		sql: static("SELECT * FROM products"),
	},
	{
		name: "list-sales",
		match: func(q string) bool {
			return strings.Contains(q, "show all sales") ||
				strings.Contains(q, "list all sales") ||
				strings.Contains(q, "all sales")
		},
		sql: static("SELECT * FROM sales LIMIT 20"),
	},
	{
		name:  "price",
		match: func(q string) bool { return strings.Contains(q, "price") },
		sql: func(q string) string {
			for _, product := range productVocabulary {
				if strings.Contains(q, product) {
					return "SELECT name, price FROM products WHERE LOWER(name) LIKE '%" + product + "%'"
				}
			}
			if strings.Contains(q, "highest") || strings.Contains(q, "most expensive") {
				return "SELECT name, price FROM products ORDER BY price DESC LIMIT 5"
			}
			if strings.Contains(q, "lowest") || strings.Contains(q, "cheapest") {
				return "SELECT name, price FROM products ORDER BY price ASC LIMIT 5"
			}
			// No specific product mentioned: fall back to an unfiltered listing.
			return "SELECT name, price FROM products ORDER BY price DESC"
		},
	},
	{
		name: "category",
		match: func(q string) bool {
			return strings.Contains(q, "category") || strings.Contains(q, "categories")
		},
		sql: func(q string) string {
			if strings.Contains(q, "how many") || strings.Contains(q, "count") {
				return "SELECT category, COUNT(*) as count FROM products GROUP BY category"
			}
			return "SELECT DISTINCT category FROM products"
		},
	},
	{
		name:  "region",
		match: func(q string) bool { return strings.Contains(q, "region") },
		sql: func(q string) string {
			if strings.Contains(q, "sales") || strings.Contains(q, "most") || strings.Contains(q, "highest") {
				return "SELECT region, SUM(quantity) as total_sales FROM sales GROUP BY region ORDER BY total_sales DESC"
			}
			return "SELECT DISTINCT region FROM sales"
		},
	},
	{
		name: "total-sales",
		match: func(q string) bool {
			return strings.Contains(q, "total sales") || strings.Contains(q, "total quantity")
		},
		sql: static("SELECT SUM(quantity) as total_quantity FROM sales"),
	},
	{
		name: "top-products",
		match: func(q string) bool {
			return strings.Contains(q, "top") && strings.Contains(q, "product")
		},
		sql: static("SELECT p.name, SUM(s.quantity) as total_sold FROM products p JOIN sales s ON p.id = s.product_id GROUP BY p.id ORDER BY total_sold DESC LIMIT 5"),
	},
	{
		name: "revenue",
		match: func(q string) bool {
			return strings.Contains(q, "revenue") || strings.Contains(q, "money") || strings.Contains(q, "earned")
		},
		sql: static("SELECT SUM(p.price * s.quantity) as total_revenue FROM products p JOIN sales s ON p.id = s.product_id"),
	},
	{
		name:  "average-price",
		match: func(q string) bool { return strings.Contains(q, "average price") },
		sql:   static("SELECT AVG(price) as average_price FROM products"),
	},
	{
		name: "average-sales",
		match: func(q string) bool {
			return strings.Contains(q, "average") && strings.Contains(q, "sales")
		},
		sql: static("SELECT AVG(quantity) as average_quantity FROM sales"),
	},
}

// Match returns the SQL and rule name for the first rule matching the
// question, or ("", "", false) when no rule applies and the model fallback
// should run. Questions are lowercased and trimmed before matching; no other
// normalization is performed.
func Match(question string) (sql string, rule string, ok bool) {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, r := range ruleTable {
		if r.match(q) {
			return r.sql(q), r.name, true
		}
	}
	return "", "", false
}
