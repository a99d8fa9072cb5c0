//go:build integration

package warehouse_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/testutil"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

const testSize = 512 * 1024

func generate(t *testing.T, ctx context.Context, pool *pgxpool.Pool, schema string, seed uint64) {
	t.Helper()

	require.NoError(t, warehouse.CreateSchema(ctx, pool, schema))
	gen := warehouse.NewGenerator(warehouse.GeneratorConfig{
		Schema:     schema,
		TargetSize: testSize,
		Seed:       seed,
		StartDate:  time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, gen.GenerateData(ctx, pool))
}

func counts(t *testing.T, ctx context.Context, pool *pgxpool.Pool, schema string) map[string]int64 {
	t.Helper()

	inv, err := warehouse.Inventory(ctx, pool, schema)
	require.NoError(t, err)
	out := make(map[string]int64, len(inv))
	for _, c := range inv {
		out[c.Name] = c.Rows
	}
	return out
}

func fingerprint(t *testing.T, ctx context.Context, pool *pgxpool.Pool, schema string) string {
	t.Helper()

	var sum string
	err := pool.QueryRow(ctx, warehouse.QualifySchema(`
        SELECT md5(string_agg(
            concat_ws('|', order_number, product_key, customer_key, order_date, sales_amount),
            ',' ORDER BY order_number, product_key, sales_amount))
        FROM {schema}.fact_sales`, schema)).Scan(&sum)
	require.NoError(t, err)
	return sum
}

func TestGenerateDataIntegration(t *testing.T) {
	ctx := context.Background()
	_, pool := testutil.NewTestDB(t, "warehouse")

	generate(t, ctx, pool, "gold", 42)

	plan := warehouse.PlanFor(testSize)
	got := counts(t, ctx, pool, "gold")
	assert.Equal(t, int64(plan.Customers), got[warehouse.TableCustomers])
	assert.Equal(t, int64(plan.Products), got[warehouse.TableProducts])
	assert.GreaterOrEqual(t, got[warehouse.TableSales], int64(plan.Orders))
	assert.LessOrEqual(t, got[warehouse.TableSales], int64(plan.Orders*3))

	// Every generated sale references an existing dimension row
	var orphans int
	err := pool.QueryRow(ctx, warehouse.QualifySchema(`
        SELECT COUNT(*)
        FROM {schema}.fact_sales f
        LEFT JOIN {schema}.dim_products p ON p.product_key = f.product_key
        LEFT JOIN {schema}.dim_customers c ON c.customer_key = f.customer_key
        WHERE p.product_key IS NULL OR c.customer_key IS NULL`, "gold")).Scan(&orphans)
	require.NoError(t, err)
	assert.Zero(t, orphans)

	// sales_amount is always price times quantity
	var mismatched int
	err = pool.QueryRow(ctx, warehouse.QualifySchema(`
        SELECT COUNT(*) FROM {schema}.fact_sales
        WHERE sales_amount <> price * quantity`, "gold")).Scan(&mismatched)
	require.NoError(t, err)
	assert.Zero(t, mismatched)

	t.Run("same seed reproduces the data", func(t *testing.T) {
		generate(t, ctx, pool, "gold_again", 42)
		assert.Equal(t, fingerprint(t, ctx, pool, "gold"), fingerprint(t, ctx, pool, "gold_again"))
	})

	t.Run("different seed differs", func(t *testing.T) {
		generate(t, ctx, pool, "gold_other", 7)
		assert.NotEqual(t, fingerprint(t, ctx, pool, "gold"), fingerprint(t, ctx, pool, "gold_other"))
	})

	t.Run("views over generated data", func(t *testing.T) {
		require.NoError(t, warehouse.CreateViews(ctx, pool, warehouse.ViewOptions{Schema: "gold"}))
		got := counts(t, ctx, pool, "gold")
		assert.Positive(t, got[warehouse.ViewCustomerReport])
		assert.LessOrEqual(t, got[warehouse.ViewCustomerReport], int64(plan.Customers))
		assert.Positive(t, got[warehouse.ViewProductReport])
		assert.LessOrEqual(t, got[warehouse.ViewProductReport], int64(plan.Products))
	})

	t.Run("drop schema", func(t *testing.T) {
		require.NoError(t, warehouse.DropSchema(ctx, pool, "gold_other"))
		assert.Empty(t, counts(t, ctx, pool, "gold_other"))
	})
}

func TestMetadataIntegration(t *testing.T) {
	ctx := context.Background()
	_, pool := testutil.NewTestDB(t, "metadata")

	exists, err := db.MetadataExists(ctx, pool)
	require.NoError(t, err)
	assert.False(t, exists)

	m := db.Metadata{
		Schema:     "gold",
		TargetSize: "10MB",
		Seed:       42,
		StartDate:  time.Date(2010, 12, 29, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2014, 1, 28, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveMetadata(ctx, pool, m))

	// Saving again overwrites rather than failing
	m.Seed = 43
	require.NoError(t, db.SaveMetadata(ctx, pool, m))

	all, err := db.GetAllMetadata(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, "gold", all["schema"])
	assert.Equal(t, strconv.FormatUint(43, 10), all["seed"])
	assert.Equal(t, "2010-12-29", all["start_date"])
	assert.Equal(t, "2014-01-28", all["end_date"])

	size, err := db.GetMetadataValue(ctx, pool, "target_size")
	require.NoError(t, err)
	assert.Equal(t, "10MB", size)

	require.NoError(t, db.DropMetadata(ctx, pool))
	exists, err = db.MetadataExists(ctx, pool)
	require.NoError(t, err)
	assert.False(t, exists)
}
