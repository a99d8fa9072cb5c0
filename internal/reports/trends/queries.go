// Package trends registers time-series reports: sales over time, running
// totals and year-over-year product performance.
package trends

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

// Year-over-year labels.
const (
	AboveAvg = "Above Avg"
	BelowAvg = "Below Avg"
	Avg      = "Avg"

	Increase = "Increase"
	Decrease = "Decrease"
	NoChange = "No Change"
)

const salesByYearSQL = `
SELECT
    EXTRACT(YEAR FROM order_date)::int AS order_year,
    SUM(sales_amount) AS total_sales,
    COUNT(DISTINCT customer_key) AS total_customers,
    SUM(quantity) AS total_quantity
FROM {schema}.fact_sales
WHERE order_date IS NOT NULL
GROUP BY EXTRACT(YEAR FROM order_date)
ORDER BY order_year
`

const salesByMonthSQL = `
SELECT
    EXTRACT(YEAR FROM order_date)::int AS order_year,
    EXTRACT(MONTH FROM order_date)::int AS order_month,
    SUM(sales_amount) AS total_sales,
    COUNT(DISTINCT customer_key) AS total_customers,
    SUM(quantity) AS total_quantity
FROM {schema}.fact_sales
WHERE order_date IS NOT NULL
GROUP BY EXTRACT(YEAR FROM order_date), EXTRACT(MONTH FROM order_date)
ORDER BY order_year, order_month
`

const salesByMonthTruncSQL = `
SELECT
    DATE_TRUNC('month', order_date)::date AS order_date,
    SUM(sales_amount) AS total_sales,
    COUNT(DISTINCT customer_key) AS total_customers,
    SUM(quantity) AS total_quantity
FROM {schema}.fact_sales
WHERE order_date IS NOT NULL
GROUP BY DATE_TRUNC('month', order_date)
ORDER BY DATE_TRUNC('month', order_date)
`

// Running totals restart every year.
const cumulativeSalesSQL = `
SELECT
    order_date,
    total_sales,
    SUM(total_sales) OVER (
        PARTITION BY EXTRACT(YEAR FROM order_date)
        ORDER BY order_date
    ) AS running_total_sales,
    ROUND(AVG(avg_price) OVER (
        PARTITION BY EXTRACT(YEAR FROM order_date)
        ORDER BY order_date
    ), 2) AS moving_average_price
FROM (
    SELECT
        DATE_TRUNC('month', order_date)::date AS order_date,
        SUM(sales_amount) AS total_sales,
        AVG(price) AS avg_price
    FROM {schema}.fact_sales
    WHERE order_date IS NOT NULL
    GROUP BY DATE_TRUNC('month', order_date)
) monthly
ORDER BY order_date
`

const cumulativeSalesYearlySQL = `
SELECT
    order_date,
    total_sales,
    SUM(total_sales) OVER (ORDER BY order_date) AS running_total_sales,
    ROUND(AVG(avg_price) OVER (ORDER BY order_date), 2) AS moving_average_price
FROM (
    SELECT
        DATE_TRUNC('year', order_date)::date AS order_date,
        SUM(sales_amount) AS total_sales,
        AVG(price) AS avg_price
    FROM {schema}.fact_sales
    WHERE order_date IS NOT NULL
    GROUP BY DATE_TRUNC('year', order_date)
) yearly
ORDER BY order_date
`

const productPerformanceYoYSQL = `
WITH yearly_product_sales AS (
    SELECT
        EXTRACT(YEAR FROM f.order_date)::int AS order_year,
        p.product_name,
        SUM(f.sales_amount) AS current_sales
    FROM {schema}.fact_sales f
    LEFT JOIN {schema}.dim_products p
        ON f.product_key = p.product_key
    WHERE f.order_date IS NOT NULL
        AND ($1::text IS NULL OR p.category = $1::text)
    GROUP BY EXTRACT(YEAR FROM f.order_date), p.product_name
),
compared AS (
    SELECT
        order_year,
        product_name,
        current_sales,
        ROUND(AVG(current_sales) OVER (PARTITION BY product_name), 2) AS avg_sales,
        LAG(current_sales) OVER (PARTITION BY product_name ORDER BY order_year) AS py_sales
    FROM yearly_product_sales
)
SELECT
    order_year,
    product_name,
    current_sales,
    avg_sales,
    current_sales - avg_sales AS diff_avg,
    CASE
        WHEN current_sales - avg_sales > 0 THEN '{above_avg}'
        WHEN current_sales - avg_sales < 0 THEN '{below_avg}'
        ELSE '{avg}'
    END AS avg_change,
    py_sales,
    current_sales - py_sales AS diff_py,
    CASE
        WHEN current_sales - py_sales > 0 THEN '{increase}'
        WHEN current_sales - py_sales < 0 THEN '{decrease}'
        ELSE '{no_change}'
    END AS py_change
FROM compared
ORDER BY product_name, order_year
`

func init() {
	reports.Register(
		&reports.Report{
			Name:        "sales_by_year",
			Category:    reports.CategoryTrends,
			Description: "Sales, customers and quantity per year",
			Build:       reports.Static(salesByYearSQL),
		},
		&reports.Report{
			Name:        "sales_by_month",
			Category:    reports.CategoryTrends,
			Description: "Sales, customers and quantity per year and month",
			Build:       reports.Static(salesByMonthSQL),
		},
		&reports.Report{
			Name:        "sales_by_month_trunc",
			Category:    reports.CategoryTrends,
			Description: "Sales, customers and quantity per month bucket",
			Build:       reports.Static(salesByMonthTruncSQL),
		},
		&reports.Report{
			Name:        "cumulative_sales",
			Category:    reports.CategoryTrends,
			Description: "Monthly sales with a running total and moving average price per year",
			Build:       reports.Static(cumulativeSalesSQL),
		},
		&reports.Report{
			Name:        "cumulative_sales_yearly",
			Category:    reports.CategoryTrends,
			Description: "Yearly sales with an overall running total and moving average price",
			Build:       reports.Static(cumulativeSalesYearlySQL),
		},
		&reports.Report{
			Name:        "product_performance_yoy",
			Category:    reports.CategoryTrends,
			Description: "Yearly product sales compared to the product average and the previous year",
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(productPerformanceYoYSQL,
					"{above_avg}", AboveAvg,
					"{below_avg}", BelowAvg,
					"{avg}", Avg,
					"{increase}", Increase,
					"{decrease}", Decrease,
					"{no_change}", NoChange,
				), []any{p.CategoryArg()}
			},
		},
	)
}
