// cmd/tools/seed-data/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Violet0725/NLtoSQL/internal/seed"
	"github.com/Violet0725/NLtoSQL/pkg/catalog"
)

func main() {
	dbPath := flag.String("db", "sales_data.db", "Path to the SQLite database file")
	salesRows := flag.Int("sales", seed.DefaultSalesRows, "Number of sales rows to generate")
	randSeed := flag.Int64("seed", seed.DefaultSeed, "Random seed for reproducible sales data")
	catalogPath := flag.String("catalog", "", "Optional JSON catalog file (default: built-in product set)")
	flag.Parse()

	cat := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.Load(*catalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load catalog %s: %v\n", *catalogPath, err)
			os.Exit(1)
		}
		cat = *loaded
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed.Apply(ctx, db, cat, *salesRows, *randSeed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: seeding failed: %v\n", err)
		os.Exit(1)
	}

	products, sales, err := seed.Counts(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: verification query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %s: %d products, %d sales rows (seed=%d)\n", *dbPath, products, sales, *randSeed)
}
