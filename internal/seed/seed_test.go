package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Violet0725/NLtoSQL/pkg/catalog"
)

func TestBuildSalesRows_Deterministic(t *testing.T) {
	cat := catalog.Default()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := BuildSalesRows(cat, DefaultSalesRows, DefaultSeed, start)
	second := BuildSalesRows(cat, DefaultSalesRows, DefaultSeed, start)

	assert.Equal(t, first, second)
	assert.Len(t, first, DefaultSalesRows)
}

func TestBuildSalesRows_RowsReferenceCatalog(t *testing.T) {
	cat := catalog.Default()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	regions := map[string]bool{}
	for _, r := range cat.Regions {
		regions[r] = true
	}

	for _, row := range BuildSalesRows(cat, 200, 7, start) {
		assert.GreaterOrEqual(t, row.ProductID, 1)
		assert.LessOrEqual(t, row.ProductID, len(cat.Products))
		assert.GreaterOrEqual(t, row.Quantity, 1)
		assert.LessOrEqual(t, row.Quantity, 8)
		assert.True(t, regions[row.Region], "unknown region %q", row.Region)

		saleDate, err := time.Parse("2006-01-02", row.SaleDate)
		assert.NoError(t, err)
		assert.False(t, saleDate.Before(start))
		assert.False(t, saleDate.After(start.AddDate(0, 0, saleWindowDays)))
	}
}

func TestBuildSalesRows_SeedChangesOutput(t *testing.T) {
	cat := catalog.Default()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := BuildSalesRows(cat, DefaultSalesRows, 1, start)
	second := BuildSalesRows(cat, DefaultSalesRows, 2, start)

	assert.NotEqual(t, first, second)
}

func TestDDLStatements(t *testing.T) {
	all := ""
	for _, stmt := range ddlStatements {
		all += stmt + "\n"
	}

	assert.Contains(t, all, "CREATE TABLE products")
	assert.Contains(t, all, "CREATE TABLE sales")
	assert.Contains(t, all, "FOREIGN KEY (product_id) REFERENCES products(id)")
	assert.Contains(t, all, "idx_sales_product_id")
	assert.Contains(t, all, "idx_sales_sale_date")
	assert.Contains(t, all, "idx_sales_region")
}
