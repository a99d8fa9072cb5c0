// Package reporting registers reports that read the reporting views,
// report_customers and product_report. They require the views to exist
// (see the "views create" command).
package reporting

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

const customerReportSQL = `
SELECT *
FROM {schema}.report_customers
ORDER BY total_sales DESC NULLS LAST, customer_key
LIMIT $1
`

const productReportSQL = `
SELECT *
FROM {schema}.product_report
WHERE ($2::text IS NULL OR category = $2::text)
ORDER BY total_sales DESC NULLS LAST, product_key
LIMIT $1
`

const customerSegmentSummarySQL = `
SELECT
    customer_segment,
    COUNT(customer_number) AS total_customers,
    SUM(total_sales) AS total_sales,
    ROUND(AVG(avg_order_value), 2) AS avg_order_value,
    ROUND(AVG(avg_monthly_spend), 2) AS avg_monthly_spend
FROM {schema}.report_customers
GROUP BY customer_segment
ORDER BY total_sales DESC NULLS LAST, customer_segment
`

const customerAgeGroupsSQL = `
SELECT
    age_group,
    COUNT(customer_number) AS total_customers,
    SUM(total_sales) AS total_sales
FROM {schema}.report_customers
GROUP BY age_group
ORDER BY age_group
`

const productSegmentSummarySQL = `
SELECT
    product_segment,
    COUNT(product_key) AS total_products,
    SUM(total_sales) AS total_sales,
    ROUND(AVG(avg_order_revenue), 2) AS avg_order_revenue,
    ROUND(AVG(recency_in_months), 1) AS avg_recency_in_months
FROM {schema}.product_report
WHERE ($1::text IS NULL OR category = $1::text)
GROUP BY product_segment
ORDER BY total_sales DESC NULLS LAST, product_segment
`

func init() {
	reports.Register(
		&reports.Report{
			Name:          "customer_report",
			Category:      reports.CategoryReporting,
			Description:   "Customer reporting view, highest spending customers first",
			RequiresViews: true,
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(customerReportSQL), []any{p.LimitArg()}
			},
		},
		&reports.Report{
			Name:          "product_report",
			Category:      reports.CategoryReporting,
			Description:   "Product reporting view, highest selling products first",
			RequiresViews: true,
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(productReportSQL), []any{p.LimitArg(), p.CategoryArg()}
			},
		},
		&reports.Report{
			Name:          "customer_segment_summary",
			Category:      reports.CategoryReporting,
			Description:   "Customers, sales and averages per customer segment",
			RequiresViews: true,
			Build:         reports.Static(customerSegmentSummarySQL),
		},
		&reports.Report{
			Name:          "customer_age_groups",
			Category:      reports.CategoryReporting,
			Description:   "Customers and sales per age group",
			RequiresViews: true,
			Build:         reports.Static(customerAgeGroupsSQL),
		},
		&reports.Report{
			Name:          "product_segment_summary",
			Category:      reports.CategoryReporting,
			Description:   "Products, sales and recency per product segment",
			RequiresViews: true,
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(productSegmentSummarySQL), []any{p.CategoryArg()}
			},
		},
	)
}
