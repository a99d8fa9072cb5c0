// Package partwhole registers part-to-whole reports that express each
// member's share of an overall total.
package partwhole

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

const categoryContributionSQL = `
WITH category_sales AS (
    SELECT
        p.category,
        SUM(f.sales_amount) AS total_sales
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_products p
        ON p.product_key = f.product_key
    GROUP BY p.category
)
SELECT
    category,
    total_sales,
    SUM(total_sales) OVER () AS overall_sales,
    ROUND(total_sales * 100.0 / NULLIF(SUM(total_sales) OVER (), 0), 2) AS percentage_of_total
FROM category_sales
ORDER BY total_sales DESC NULLS LAST, category
`

const countryContributionSQL = `
WITH country_sales AS (
    SELECT
        c.country,
        SUM(f.sales_amount) AS total_sales
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_customers c
        ON c.customer_key = f.customer_key
    GROUP BY c.country
)
SELECT
    country,
    total_sales,
    SUM(total_sales) OVER () AS overall_sales,
    ROUND(total_sales * 100.0 / NULLIF(SUM(total_sales) OVER (), 0), 2) AS percentage_of_total
FROM country_sales
ORDER BY total_sales DESC NULLS LAST, country
`

func init() {
	reports.Register(
		&reports.Report{
			Name:        "category_contribution",
			Category:    reports.CategoryPartWhole,
			Description: "Share of overall sales contributed by each product category",
			Build:       reports.Static(categoryContributionSQL),
		},
		&reports.Report{
			Name:        "country_contribution",
			Category:    reports.CategoryPartWhole,
			Description: "Share of overall sales contributed by each customer country",
			Build:       reports.Static(countryContributionSQL),
		},
	)
}
