package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

// Reporting view names.
const (
	ViewCustomerReport = "report_customers"
	ViewProductReport  = "product_report"
)

// CustomerReportColumns is the column contract of report_customers.
var CustomerReportColumns = []string{
	"customer_key", "customer_number", "customer_name", "age", "age_group",
	"customer_segment", "last_order_date", "recency", "total_orders",
	"total_sales", "total_quantity", "total_products", "lifespan",
	"avg_order_value", "avg_monthly_spend",
}

// ProductReportColumns is the column contract of product_report.
var ProductReportColumns = []string{
	"product_key", "product_name", "category", "subcategory", "cost",
	"last_sale_date", "recency_in_months", "product_segment", "lifespan",
	"total_orders", "total_sales", "total_quantity", "total_customers",
	"avg_selling_price", "avg_order_revenue", "avg_monthly_revenue",
}

// ViewOptions controls how the reporting views are defined.
type ViewOptions struct {
	Schema string

	// AsOf pins age and recency to a fixed date; zero uses CURRENT_DATE at
	// query time.
	AsOf time.Time

	Thresholds segment.Thresholds
}

func (o ViewOptions) withDefaults() ViewOptions {
	if o.Schema == "" {
		o.Schema = "gold"
	}
	if o.Thresholds.IsZero() {
		o.Thresholds = segment.DefaultThresholds()
	}
	return o
}

const customerReportSQL = `
CREATE VIEW {schema}.report_customers AS
WITH base_query AS (
    -- order lines joined to the customer dimension
    SELECT
        f.order_number,
        f.product_key,
        f.order_date,
        f.sales_amount,
        f.quantity,
        c.customer_key,
        c.customer_number,
        CONCAT(c.first_name, ' ', c.last_name) AS customer_name,
        {age} AS age
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_customers c
        ON c.customer_key = f.customer_key
    WHERE f.order_date IS NOT NULL
),
customer_aggregation AS (
    SELECT
        customer_key,
        customer_number,
        customer_name,
        age,
        COUNT(DISTINCT order_number) AS total_orders,
        SUM(sales_amount) AS total_sales,
        SUM(quantity) AS total_quantity,
        COUNT(DISTINCT product_key) AS total_products,
        MAX(order_date) AS last_order_date,
        {lifespan} AS lifespan
    FROM base_query
    GROUP BY customer_key, customer_number, customer_name, age
)
SELECT
    customer_key,
    customer_number,
    customer_name,
    age,
    {age_group} AS age_group,
    {customer_segment} AS customer_segment,
    last_order_date,
    {recency} AS recency,
    total_orders,
    total_sales,
    total_quantity,
    total_products,
    lifespan,
    CASE WHEN total_orders = 0 THEN 0
         ELSE ROUND(total_sales / total_orders, 2)
    END AS avg_order_value,
    CASE WHEN lifespan = 0 THEN total_sales
         ELSE ROUND(total_sales / lifespan, 2)
    END AS avg_monthly_spend
FROM customer_aggregation
`

const productReportSQL = `
CREATE VIEW {schema}.product_report AS
WITH base_query AS (
    -- order lines joined to the product dimension
    SELECT
        f.order_number,
        f.order_date,
        f.customer_key,
        f.sales_amount,
        f.quantity,
        p.product_key,
        p.product_name,
        p.category,
        p.subcategory,
        p.cost
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_products p
        ON f.product_key = p.product_key
    WHERE f.order_date IS NOT NULL
),
product_aggregations AS (
    SELECT
        product_key,
        product_name,
        category,
        subcategory,
        cost,
        {lifespan} AS lifespan,
        MAX(order_date) AS last_sale_date,
        COUNT(DISTINCT order_number) AS total_orders,
        COUNT(DISTINCT customer_key) AS total_customers,
        SUM(sales_amount) AS total_sales,
        SUM(quantity) AS total_quantity,
        ROUND(AVG(sales_amount / NULLIF(quantity, 0)), 1) AS avg_selling_price
    FROM base_query
    GROUP BY product_key, product_name, category, subcategory, cost
)
SELECT
    product_key,
    product_name,
    category,
    subcategory,
    cost,
    last_sale_date,
    {recency} AS recency_in_months,
    {product_segment} AS product_segment,
    lifespan,
    total_orders,
    total_sales,
    total_quantity,
    total_customers,
    avg_selling_price,
    CASE WHEN total_orders = 0 THEN 0
         ELSE ROUND(total_sales / total_orders, 2)
    END AS avg_order_revenue,
    CASE WHEN lifespan = 0 THEN total_sales
         ELSE ROUND(total_sales / lifespan, 2)
    END AS avg_monthly_revenue
FROM product_aggregations
`

// CustomerReportSQL returns the CREATE VIEW statement for report_customers.
func CustomerReportSQL(opts ViewOptions) string {
	opts = opts.withDefaults()
	asOf := segment.DateSQL(opts.AsOf)
	r := strings.NewReplacer(
		"{age}", segment.YearsBetweenSQL("c.birthdate", asOf),
		"{lifespan}", segment.MonthsBetweenSQL("MIN(order_date)", "MAX(order_date)"),
		"{age_group}", segment.AgeGroupSQL("age"),
		"{customer_segment}", opts.Thresholds.CustomerSegmentSQL("lifespan", "total_sales"),
		"{recency}", segment.MonthsBetweenSQL("last_order_date", asOf),
	)
	return QualifySchema(r.Replace(customerReportSQL), opts.Schema)
}

// ProductReportSQL returns the CREATE VIEW statement for product_report.
func ProductReportSQL(opts ViewOptions) string {
	opts = opts.withDefaults()
	asOf := segment.DateSQL(opts.AsOf)
	r := strings.NewReplacer(
		"{lifespan}", segment.MonthsBetweenSQL("MIN(order_date)", "MAX(order_date)"),
		"{recency}", segment.MonthsBetweenSQL("last_sale_date", asOf),
		"{product_segment}", opts.Thresholds.ProductTierSQL("total_sales"),
	)
	return QualifySchema(r.Replace(productReportSQL), opts.Schema)
}

func dropViewsSQL(schema string) []string {
	return []string{
		QualifySchema("DROP VIEW IF EXISTS {schema}.report_customers", schema),
		QualifySchema("DROP VIEW IF EXISTS {schema}.product_report", schema),
	}
}

// CreateViews (re)creates both reporting views in a single transaction.
// Views are dropped first so that column changes never conflict with
// CREATE OR REPLACE rules.
func CreateViews(ctx context.Context, pool *pgxpool.Pool, opts ViewOptions) error {
	opts = opts.withDefaults()
	if err := opts.Thresholds.Validate(); err != nil {
		return err
	}

	stmts := append(dropViewsSQL(opts.Schema), CustomerReportSQL(opts), ProductReportSQL(opts))
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create reporting views: %w", err)
	}

	logging.Info().
		Str("schema", opts.Schema).
		Str("as_of", segment.DateSQL(opts.AsOf)).
		Msg("Reporting views created")
	return nil
}

// RowQuerier is satisfied by *pgxpool.Pool and *pgx.Conn.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ViewsExist reports whether both reporting views exist in the schema.
func ViewsExist(ctx context.Context, q RowQuerier, schema string) (bool, error) {
	var n int
	err := q.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM information_schema.views
        WHERE table_schema = $1
            AND table_name IN ($2, $3)
    `, schema, ViewCustomerReport, ViewProductReport).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check reporting views: %w", err)
	}
	return n == 2, nil
}

// DropViews drops both reporting views if they exist.
func DropViews(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	for _, stmt := range dropViewsSQL(schema) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop reporting views: %w", err)
		}
	}
	return nil
}
