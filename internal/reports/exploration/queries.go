// Package exploration registers reports that describe the shape of the gold
// layer: its relations, columns, dimension members and date coverage.
package exploration

import (
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

// information_schema uses domain types pgx cannot decode in binary form,
// so every column is cast to a base type.
const databaseTablesSQL = `
SELECT
    table_catalog::text AS table_catalog,
    table_schema::text  AS table_schema,
    table_name::text    AS table_name,
    table_type::text    AS table_type
FROM information_schema.tables
WHERE table_schema = $1
ORDER BY table_type, table_name
`

const tableColumnsSQL = `
SELECT
    column_name::text              AS column_name,
    data_type::text                AS data_type,
    is_nullable::text              AS is_nullable,
    character_maximum_length::int  AS character_maximum_length
FROM information_schema.columns
WHERE table_schema = $1
    AND table_name = $2
ORDER BY ordinal_position
`

const customerCountriesSQL = `
SELECT DISTINCT country
FROM {schema}.dim_customers
ORDER BY country
`

const productHierarchySQL = `
SELECT DISTINCT
    category,
    subcategory,
    product_name
FROM {schema}.dim_products
ORDER BY category, subcategory, product_name
`

const orderDateRangeSQL = `
SELECT
    MIN(order_date) AS first_order_date,
    MAX(order_date) AS last_order_date,
    {years} AS order_range_years,
    {months} AS order_range_months
FROM {schema}.fact_sales
WHERE order_date IS NOT NULL
`

const customerAgeRangeSQL = `
SELECT
    MIN(birthdate) AS oldest_birthdate,
    {oldest_age} AS oldest_age,
    MAX(birthdate) AS youngest_birthdate,
    {youngest_age} AS youngest_age
FROM {schema}.dim_customers
WHERE birthdate IS NOT NULL
`

func init() {
	reports.Register(
		&reports.Report{
			Name:        "database_tables",
			Category:    reports.CategoryExploration,
			Description: "Tables and views in the gold schema",
			Build: func(p reports.Params) (string, []any) {
				return databaseTablesSQL, []any{p.Schema}
			},
		},
		&reports.Report{
			Name:        "table_columns",
			Category:    reports.CategoryExploration,
			Description: "Columns of a gold table (dim_customers unless --table is given)",
			Build: func(p reports.Params) (string, []any) {
				return tableColumnsSQL, []any{p.Schema, p.Table}
			},
		},
		&reports.Report{
			Name:        "customer_countries",
			Category:    reports.CategoryExploration,
			Description: "Distinct countries customers come from",
			Build:       reports.Static(customerCountriesSQL),
		},
		&reports.Report{
			Name:        "product_hierarchy",
			Category:    reports.CategoryExploration,
			Description: "Distinct category / subcategory / product combinations",
			Build:       reports.Static(productHierarchySQL),
		},
		&reports.Report{
			Name:        "order_date_range",
			Category:    reports.CategoryExploration,
			Description: "First and last order date and the span between them",
			Build: func(p reports.Params) (string, []any) {
				return p.SQL(orderDateRangeSQL,
					"{years}", segment.YearsBetweenSQL("MIN(order_date)", "MAX(order_date)"),
					"{months}", segment.MonthsBetweenSQL("MIN(order_date)", "MAX(order_date)"),
				), nil
			},
		},
		&reports.Report{
			Name:        "customer_age_range",
			Category:    reports.CategoryExploration,
			Description: "Oldest and youngest customer birthdates and ages",
			Build: func(p reports.Params) (string, []any) {
				asOf := segment.DateSQL(p.AsOf)
				return p.SQL(customerAgeRangeSQL,
					"{oldest_age}", segment.YearsBetweenSQL("MIN(birthdate)", asOf),
					"{youngest_age}", segment.YearsBetweenSQL("MAX(birthdate)", asOf),
				), nil
			},
		},
	)
}
