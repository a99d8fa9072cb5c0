// Package measures registers the headline business metrics report.
package measures

import "github.com/pgEdge/pgedge-goldreports/internal/reports"

// Every measure is cast to numeric so the UNION ALL has a single column type.
const keyMetricsSQL = `
SELECT 'Total Sales' AS measure_name, SUM(sales_amount)::numeric AS measure_value
FROM {schema}.fact_sales
UNION ALL
SELECT 'Total Quantity', SUM(quantity)::numeric
FROM {schema}.fact_sales
UNION ALL
SELECT 'Average Price', ROUND(AVG(price), 2)::numeric
FROM {schema}.fact_sales
UNION ALL
SELECT 'Total Orders', COUNT(DISTINCT order_number)::numeric
FROM {schema}.fact_sales
UNION ALL
SELECT 'Total Products', COUNT(DISTINCT product_name)::numeric
FROM {schema}.dim_products
UNION ALL
SELECT 'Total Customers', COUNT(customer_key)::numeric
FROM {schema}.dim_customers
UNION ALL
SELECT 'Customers Ordered', COUNT(DISTINCT customer_key)::numeric
FROM {schema}.fact_sales
`

// Measure names reported by key_metrics, in output order.
const (
	TotalSales       = "Total Sales"
	TotalQuantity    = "Total Quantity"
	AveragePrice     = "Average Price"
	TotalOrders      = "Total Orders"
	TotalProducts    = "Total Products"
	TotalCustomers   = "Total Customers"
	CustomersOrdered = "Customers Ordered"
)

func init() {
	reports.Register(&reports.Report{
		Name:        "key_metrics",
		Category:    reports.CategoryMeasures,
		Description: "Key business metrics: sales, quantity, price, orders, products and customers",
		Build:       reports.Static(keyMetricsSQL),
	})
}
