// Package ranking registers top-N and bottom-N reports.
package ranking

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

// Default row limits.
const (
	DefaultProductLimit  = 5
	DefaultCustomerLimit = 10
	DefaultInactiveLimit = 3
)

const topProductsSQL = `
SELECT
    p.product_name,
    SUM(f.sales_amount) AS total_revenue
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_products p
    ON p.product_key = f.product_key
WHERE ($2::text IS NULL OR p.category = $2::text)
GROUP BY p.product_name
ORDER BY total_revenue DESC NULLS LAST, p.product_name
LIMIT $1
`

const bottomProductsSQL = `
SELECT
    p.product_name,
    SUM(f.sales_amount) AS total_revenue
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_products p
    ON p.product_key = f.product_key
WHERE ($2::text IS NULL OR p.category = $2::text)
GROUP BY p.product_name
ORDER BY total_revenue ASC NULLS LAST, p.product_name
LIMIT $1
`

// The rank filter is applied outside the window so that ties keep distinct
// ranks.
const topProductsRankedSQL = `
SELECT *
FROM (
    SELECT
        p.product_name,
        SUM(f.sales_amount) AS total_revenue,
        ROW_NUMBER() OVER (ORDER BY SUM(f.sales_amount) DESC NULLS LAST, p.product_name) AS rank_products
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_products p
        ON p.product_key = f.product_key
    WHERE ($2::text IS NULL OR p.category = $2::text)
    GROUP BY p.product_name
) ranked
WHERE $1::int IS NULL OR rank_products <= $1::int
ORDER BY rank_products
`

const topCustomersSQL = `
SELECT
    c.customer_key,
    c.first_name,
    c.last_name,
    SUM(f.sales_amount) AS total_revenue
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_customers c
    ON c.customer_key = f.customer_key
GROUP BY c.customer_key, c.first_name, c.last_name
ORDER BY total_revenue DESC NULLS LAST, c.customer_key
LIMIT $1
`

const leastActiveCustomersSQL = `
SELECT
    c.customer_key,
    c.first_name,
    c.last_name,
    COUNT(DISTINCT f.order_number) AS total_orders
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_customers c
    ON c.customer_key = f.customer_key
GROUP BY c.customer_key, c.first_name, c.last_name
ORDER BY total_orders ASC, c.customer_key
LIMIT $1
`

func limitedByCategory(tmpl string) func(reports.Params) (string, []any) {
	return func(p reports.Params) (string, []any) {
		return p.SQL(tmpl), []any{p.LimitArg(), p.CategoryArg()}
	}
}

func limited(tmpl string) func(reports.Params) (string, []any) {
	return func(p reports.Params) (string, []any) {
		return p.SQL(tmpl), []any{p.LimitArg()}
	}
}

func init() {
	reports.Register(
		&reports.Report{
			Name:         "top_products",
			Category:     reports.CategoryRanking,
			Description:  "Products generating the highest revenue",
			DefaultLimit: DefaultProductLimit,
			Build:        limitedByCategory(topProductsSQL),
		},
		&reports.Report{
			Name:         "bottom_products",
			Category:     reports.CategoryRanking,
			Description:  "Products generating the lowest revenue",
			DefaultLimit: DefaultProductLimit,
			Build:        limitedByCategory(bottomProductsSQL),
		},
		&reports.Report{
			Name:         "top_products_ranked",
			Category:     reports.CategoryRanking,
			Description:  "Highest revenue products ranked with ROW_NUMBER",
			DefaultLimit: DefaultProductLimit,
			Build:        limitedByCategory(topProductsRankedSQL),
		},
		&reports.Report{
			Name:         "top_customers",
			Category:     reports.CategoryRanking,
			Description:  "Customers generating the highest revenue",
			DefaultLimit: DefaultCustomerLimit,
			Build:        limited(topCustomersSQL),
		},
		&reports.Report{
			Name:         "least_active_customers",
			Category:     reports.CategoryRanking,
			Description:  "Customers with the fewest orders placed",
			DefaultLimit: DefaultInactiveLimit,
			Build:        limited(leastActiveCustomersSQL),
		},
	)
}
