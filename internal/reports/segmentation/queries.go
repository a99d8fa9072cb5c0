// Package segmentation registers reports that bucket products and customers
// using the rules in package segment.
package segmentation

import (
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

const productCostRangesSQL = `
WITH product_segments AS (
    SELECT
        product_key,
        product_name,
        cost,
        {cost_range} AS cost_range
    FROM {schema}.dim_products
    WHERE ($1::text IS NULL OR category = $1::text)
)
SELECT
    cost_range,
    COUNT(product_key) AS total_products
FROM product_segments
GROUP BY cost_range
ORDER BY total_products DESC, cost_range
`

// Lifespan is measured between the first and last dated order.
const customerSegmentsSQL = `
WITH customer_spending AS (
    SELECT
        c.customer_key,
        SUM(f.sales_amount) AS total_spending,
        MIN(f.order_date) AS first_order,
        MAX(f.order_date) AS last_order,
        {lifespan} AS lifespan
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_customers c
        ON f.customer_key = c.customer_key
    WHERE f.order_date IS NOT NULL
    GROUP BY c.customer_key
)
SELECT
    customer_segment,
    COUNT(customer_key) AS total_customers
FROM (
    SELECT
        customer_key,
        {customer_segment} AS customer_segment
    FROM customer_spending
) segmented
GROUP BY customer_segment
ORDER BY total_customers DESC, customer_segment
`

func init() {
	reports.Register(
		&reports.Report{
			Name:        "product_cost_ranges",
			Category:    reports.CategorySegmentation,
			Description: "Products counted per cost range",
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(productCostRangesSQL,
					"{cost_range}", p.Segments.CostRangeSQL("cost"),
				), []any{p.CategoryArg()}
			},
		},
		&reports.Report{
			Name:        "customer_segments",
			Category:    reports.CategorySegmentation,
			Description: "Customers counted per segment (VIP, Regular, New)",
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(customerSegmentsSQL,
					"{lifespan}", segment.MonthsBetweenSQL("MIN(f.order_date)", "MAX(f.order_date)"),
					"{customer_segment}", p.Segments.CustomerSegmentSQL("lifespan", "total_spending"),
				), nil
			},
		},
	)
}
