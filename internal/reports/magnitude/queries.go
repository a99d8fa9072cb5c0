// Package magnitude registers reports that aggregate a measure across one
// dimension.
package magnitude

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

const customersByCountrySQL = `
SELECT
    country,
    COUNT(customer_key) AS total_customers
FROM {schema}.dim_customers
GROUP BY country
ORDER BY total_customers DESC, country
`

const customersByGenderSQL = `
SELECT
    gender,
    COUNT(customer_key) AS total_customers
FROM {schema}.dim_customers
GROUP BY gender
ORDER BY total_customers DESC, gender
`

const productsByCategorySQL = `
SELECT
    category,
    COUNT(product_key) AS total_products
FROM {schema}.dim_products
WHERE ($1::text IS NULL OR category = $1::text)
GROUP BY category
ORDER BY total_products DESC, category
`

const avgCostByCategorySQL = `
SELECT
    category,
    ROUND(AVG(cost), 2) AS avg_cost
FROM {schema}.dim_products
WHERE ($1::text IS NULL OR category = $1::text)
GROUP BY category
ORDER BY avg_cost DESC, category
`

const revenueByCategorySQL = `
SELECT
    p.category,
    SUM(f.sales_amount) AS total_revenue
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_products p
    ON p.product_key = f.product_key
WHERE ($1::text IS NULL OR p.category = $1::text)
GROUP BY p.category
ORDER BY total_revenue DESC NULLS LAST, p.category
`

const revenueByCustomerSQL = `
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

const quantityByCountrySQL = `
SELECT
    c.country,
    SUM(f.quantity) AS total_sold_items
FROM {schema}.fact_sales f
LEFT JOIN {schema}.dim_customers c
    ON c.customer_key = f.customer_key
GROUP BY c.country
ORDER BY total_sold_items DESC NULLS LAST, c.country
`

func categoryFiltered(tmpl string) func(reports.Params) (string, []any) {
	return func(p reports.Params) (string, []any) {
		return p.SQL(tmpl), []any{p.CategoryArg()}
	}
}

func init() {
	reports.Register(
		&reports.Report{
			Name:        "customers_by_country",
			Category:    reports.CategoryMagnitude,
			Description: "Total customers per country",
			Build:       reports.Static(customersByCountrySQL),
		},
		&reports.Report{
			Name:        "customers_by_gender",
			Category:    reports.CategoryMagnitude,
			Description: "Total customers per gender",
			Build:       reports.Static(customersByGenderSQL),
		},
		&reports.Report{
			Name:        "products_by_category",
			Category:    reports.CategoryMagnitude,
			Description: "Total products per category",
			Build:       categoryFiltered(productsByCategorySQL),
		},
		&reports.Report{
			Name:        "avg_cost_by_category",
			Category:    reports.CategoryMagnitude,
			Description: "Average product cost per category",
			Build:       categoryFiltered(avgCostByCategorySQL),
		},
		&reports.Report{
			Name:        "revenue_by_category",
			Category:    reports.CategoryMagnitude,
			Description: "Total revenue per product category",
			Build:       categoryFiltered(revenueByCategorySQL),
		},
		&reports.Report{
			Name:        "revenue_by_customer",
			Category:    reports.CategoryMagnitude,
			Description: "Total revenue per customer, highest first",
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(revenueByCustomerSQL), []any{p.LimitArg()}
			},
		},
		&reports.Report{
			Name:        "quantity_by_country",
			Category:    reports.CategoryMagnitude,
			Description: "Items sold per customer country",
			Build:       reports.Static(quantityByCountrySQL),
		},
	)
}
