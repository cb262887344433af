// pkg/catalog/schema.go
package catalog

// Product is a single entry in the demo product catalog.
type Product struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Catalog holds the products and sales regions used to seed the database.
type Catalog struct {
	Products []Product `json:"products"`
	Regions  []string  `json:"regions"`
}
