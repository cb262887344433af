// internal/seed/seed.go
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/Violet0725/NLtoSQL/internal/common/logger"
	"github.com/Violet0725/NLtoSQL/pkg/catalog"
)

const (
	// DefaultSalesRows is the number of pseudo-random sales inserted by default.
	DefaultSalesRows = 50
	// DefaultSeed keeps the demo data set reproducible across runs.
	DefaultSeed = 42
	// saleWindowDays is how far back from today sale dates are spread.
	saleWindowDays = 120
)

var ddlStatements = []string{
	`DROP TABLE IF EXISTS sales`,
	`DROP TABLE IF EXISTS products`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price REAL NOT NULL CHECK(price >= 0)
	)`,
	`CREATE TABLE sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK(quantity > 0),
		sale_date TEXT NOT NULL,
		region TEXT NOT NULL,
		FOREIGN KEY (product_id) REFERENCES products(id)
	)`,
	`CREATE INDEX idx_sales_product_id ON sales(product_id)`,
	`CREATE INDEX idx_sales_sale_date ON sales(sale_date)`,
	`CREATE INDEX idx_sales_region ON sales(region)`,
}

// SaleRow is one generated row for the sales table.
type SaleRow struct {
	ProductID int
	Quantity  int
	SaleDate  string
	Region    string
}

// BuildSalesRows generates n reproducible sales rows referencing the catalog
// products by 1-based rowid, with dates spread over the window ending today.
func BuildSalesRows(cat catalog.Catalog, n int, randSeed int64, start time.Time) []SaleRow {
	rng := rand.New(rand.NewSource(randSeed))

	rows := make([]SaleRow, 0, n)
	for i := 0; i < n; i++ {
		productID := rng.Intn(len(cat.Products)) + 1
		quantity := rng.Intn(8) + 1
		saleDate := start.AddDate(0, 0, rng.Intn(saleWindowDays+1)).Format("2006-01-02")
		region := cat.Regions[rng.Intn(len(cat.Regions))]
		rows = append(rows, SaleRow{
			ProductID: productID,
			Quantity:  quantity,
			SaleDate:  saleDate,
			Region:    region,
		})
	}
	return rows
}

// Apply rebuilds the schema and inserts the catalog products plus salesRows
// generated sales. Existing tables are dropped first.
func Apply(ctx context.Context, db *sql.DB, cat catalog.Catalog, salesRows int, randSeed int64) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, stmt := range ddlStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	for _, p := range cat.Products {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO products (name, category, price) VALUES (?, ?, ?)",
			p.Name, p.Category, p.Price,
		); err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
	}

	start := time.Now().AddDate(0, 0, -saleWindowDays)
	for _, row := range BuildSalesRows(cat, salesRows, randSeed, start) {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO sales (product_id, quantity, sale_date, region) VALUES (?, ?, ?, ?)",
			row.ProductID, row.Quantity, row.SaleDate, row.Region,
		); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
	}

	return nil
}

// Counts returns the row counts of the two tables for sanity checks.
func Counts(ctx context.Context, db *sql.DB) (products, sales int, err error) {
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&products); err != nil {
		return 0, 0, err
	}
	if err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&sales); err != nil {
		return 0, 0, err
	}
	return products, sales, nil
}

// EnsureSeeded seeds the database with the default catalog when the products
// table does not exist yet, so a fresh checkout serves queries immediately.
func EnsureSeeded(ctx context.Context, db *sql.DB, log logger.Logger) error {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='products'",
	).Scan(&name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check seed state: %w", err)
	}

	log.Info("database empty, seeding demo data", map[string]interface{}{
		"salesRows": DefaultSalesRows,
	})
	if err := Apply(ctx, db, catalog.Default(), DefaultSalesRows, DefaultSeed); err != nil {
		return err
	}

	products, sales, err := Counts(ctx, db)
	if err != nil {
		return err
	}
	log.Info("seeded demo data", map[string]interface{}{
		"products": products,
		"sales":    sales,
	})
	return nil
}
