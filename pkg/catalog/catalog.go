// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a catalog definition from a JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	if len(cat.Products) == 0 {
		return nil, fmt.Errorf("catalog %s has no products", path)
	}
	if len(cat.Regions) == 0 {
		cat.Regions = Default().Regions
	}
	return &cat, nil
}

// Default returns the built-in demo catalog: 20 products across four
// categories and five sales regions.
func Default() Catalog {
	return Catalog{
		Products: []Product{
			{Name: "Gaming Laptop", Category: "Electronics", Price: 1499.99},
			{Name: "Mechanical Keyboard", Category: "Electronics", Price: 129.99},
			{Name: "Wireless Mouse", Category: "Electronics", Price: 39.99},
			{Name: "27-inch 4K Monitor", Category: "Electronics", Price: 329.99},
			{Name: "Noise-Cancelling Headphones", Category: "Electronics", Price: 199.99},
			{Name: "USB-C Docking Station", Category: "Electronics", Price: 119.99},
			{Name: "Portable SSD 1TB", Category: "Electronics", Price: 99.99},
			{Name: "Smartphone", Category: "Electronics", Price: 899.00},
			{Name: "Fitness Smartwatch", Category: "Electronics", Price: 249.99},
			{Name: "Wi-Fi Router", Category: "Electronics", Price: 89.99},
			{Name: "Ergonomic Office Chair", Category: "Furniture", Price: 279.99},
			{Name: "Standing Desk", Category: "Furniture", Price: 499.99},
			{Name: "LED Desk Lamp", Category: "Furniture", Price: 34.99},
			{Name: "Bookshelf", Category: "Furniture", Price: 159.99},
			{Name: "Coffee Table", Category: "Furniture", Price: 129.99},
			{Name: "Stainless Steel Water Bottle", Category: "Accessories", Price: 24.99},
			{Name: "Backpack", Category: "Accessories", Price: 59.99},
			{Name: "Phone Case", Category: "Accessories", Price: 19.99},
			{Name: "Running Shoes", Category: "Apparel", Price: 89.99},
			{Name: "Hoodie", Category: "Apparel", Price: 54.99},
		},
		Regions: []string{"North", "South", "East", "West", "Central"},
	}
}
