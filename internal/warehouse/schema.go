// Package warehouse manages the gold layer star schema used by the report
// catalog: base table DDL, the derived reporting views and fixture data.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Base table names.
const (
	TableCustomers = "dim_customers"
	TableProducts  = "dim_products"
	TableSales     = "fact_sales"
)

// Schema SQL for the gold layer. Foreign keys are deliberately absent: fact
// rows may reference dimension keys that do not exist and reports tolerate
// that with LEFT JOINs.
const createSchemaSQL = `
CREATE SCHEMA IF NOT EXISTS {schema};

-- dim_customers: one row per customer
CREATE TABLE IF NOT EXISTS {schema}.dim_customers (
    customer_key    INTEGER PRIMARY KEY,
    customer_id     INTEGER NOT NULL,
    customer_number VARCHAR(50) NOT NULL,
    first_name      VARCHAR(50),
    last_name       VARCHAR(50),
    country         VARCHAR(50),
    marital_status  VARCHAR(50),
    gender          VARCHAR(50),
    birthdate       DATE,
    create_date     DATE
);

-- dim_products: one row per product
CREATE TABLE IF NOT EXISTS {schema}.dim_products (
    product_key    INTEGER PRIMARY KEY,
    product_id     INTEGER NOT NULL,
    product_number VARCHAR(50) NOT NULL,
    product_name   VARCHAR(100),
    category_id    VARCHAR(50),
    category       VARCHAR(50),
    subcategory    VARCHAR(50),
    maintenance    VARCHAR(50),
    cost           NUMERIC(12,2),
    product_line   VARCHAR(50),
    start_date     DATE
);

-- fact_sales: one row per order line
CREATE TABLE IF NOT EXISTS {schema}.fact_sales (
    order_number  VARCHAR(50) NOT NULL,
    product_key   INTEGER,
    customer_key  INTEGER,
    order_date    DATE,
    shipping_date DATE,
    due_date      DATE,
    sales_amount  NUMERIC(12,2),
    quantity      INTEGER,
    price         NUMERIC(12,2)
);

CREATE INDEX IF NOT EXISTS idx_fact_sales_order_date ON {schema}.fact_sales(order_date);
CREATE INDEX IF NOT EXISTS idx_fact_sales_customer_key ON {schema}.fact_sales(customer_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_product_key ON {schema}.fact_sales(product_key);
`

const dropSchemaSQL = `DROP SCHEMA IF EXISTS {schema} CASCADE`

// QualifySchema replaces every {schema} placeholder with the quoted schema name.
func QualifySchema(sql, schema string) string {
	return strings.ReplaceAll(sql, "{schema}", pgx.Identifier{schema}.Sanitize())
}

// CreateSchema creates the gold schema and its base tables.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, QualifySchema(createSchemaSQL, schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	return nil
}

// DropSchema drops the gold schema, including views.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if _, err := pool.Exec(ctx, QualifySchema(dropSchemaSQL, schema)); err != nil {
		return fmt.Errorf("drop schema %s: %w", schema, err)
	}
	return nil
}

// TableCount holds the row count of one relation.
type TableCount struct {
	Name string
	Rows int64
}

// Inventory returns row counts for the base tables and reporting views that
// exist in the schema. Missing relations are skipped.
func Inventory(ctx context.Context, pool *pgxpool.Pool, schema string) ([]TableCount, error) {
	rows, err := pool.Query(ctx, `
        SELECT table_name::text
        FROM information_schema.tables
        WHERE table_schema = $1
        ORDER BY table_type, table_name
    `, schema)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	counts := make([]TableCount, 0, len(names))
	for _, name := range names {
		var n int64
		q := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{schema, name}.Sanitize())
		if err := pool.QueryRow(ctx, q).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts = append(counts, TableCount{Name: name, Rows: n})
	}
	return counts, nil
}
