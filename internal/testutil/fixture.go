package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-goldreports/internal/datagen"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

// FixtureAsOf is the reference date the fixture's expected ages and
// recencies are computed for.
var FixtureAsOf = time.Date(2014, 1, 31, 0, 0, 0, 0, time.UTC)

func date(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func money(s string) any {
	return datagen.Numeric(decimal.RequireFromString(s))
}

// fixtureCustomers: customer 4 never orders, customer 3 has no birthdate.
var fixtureCustomers = [][]any{
	{1, 11001, "AW00011001", "Alice", "Smith", "Germany", "Married", "Female", date("1980-05-10"), date("2010-10-01")},
	{2, 11002, "AW00011002", "Bob", "Jones", "United States", "Single", "Male", date("2000-01-15"), date("2010-10-01")},
	{3, 11003, "AW00011003", "Carol", "White", "Germany", "Married", "Female", date(""), date("2010-10-01")},
	{4, 11004, "AW00011004", "Dan", "Brown", "France", "Single", "Male", date("1950-07-01"), date("2010-10-01")},
}

// fixtureProducts: product 13 never sells.
var fixtureProducts = [][]any{
	{10, 310, "BK-R93R-62", "Road-150 Red- 62", "BI_RB", "Bikes", "Road Bikes", "No", money("1500.00"), "Road", date("2010-12-29")},
	{11, 211, "HL-U509", "Sport-100 Helmet", "AC_HE", "Accessories", "Helmets", "No", money("20.00"), "Other", date("2010-12-29")},
	{12, 212, "LJ-0192-M", "Long-Sleeve Logo Jersey", "CL_JE", "Clothing", "Jerseys", "No", money("150.00"), "Other", date("2010-12-29")},
	{13, 313, "FK-1639", "LL Fork", "CO_FO", "Components", "Forks", "Yes", money("600.00"), "Other", date("2010-12-29")},
}

// fixtureSales: SO7 references a customer missing from dim_customers and SO8
// has no order date.
var fixtureSales = [][]any{
	{"SO1", 10, 1, date("2012-01-10"), money("3000.00"), 1, money("3000.00")},
	{"SO1", 11, 1, date("2012-01-10"), money("40.00"), 2, money("20.00")},
	{"SO2", 10, 1, date("2013-03-05"), money("3000.00"), 1, money("3000.00")},
	{"SO3", 11, 2, date("2013-06-01"), money("20.00"), 1, money("20.00")},
	{"SO4", 12, 2, date("2013-07-15"), money("100.00"), 2, money("50.00")},
	{"SO5", 12, 3, date("2012-02-01"), money("50.00"), 1, money("50.00")},
	{"SO6", 11, 3, date("2013-04-01"), money("20.00"), 1, money("20.00")},
	{"SO7", 11, 99, date("2013-05-01"), money("20.00"), 1, money("20.00")},
	{"SO8", 12, 2, date(""), money("50.00"), 1, money("50.00")},
}

// SeedFixture creates the gold schema and loads a small, fixed data set
// whose report results are known in advance.
func SeedFixture(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if err := warehouse.CreateSchema(ctx, pool, schema); err != nil {
		return err
	}

	tables := []struct {
		name    string
		columns []string
		rows    [][]any
	}{
		{warehouse.TableCustomers, []string{
			"customer_key", "customer_id", "customer_number", "first_name", "last_name",
			"country", "marital_status", "gender", "birthdate", "create_date",
		}, fixtureCustomers},
		{warehouse.TableProducts, []string{
			"product_key", "product_id", "product_number", "product_name", "category_id",
			"category", "subcategory", "maintenance", "cost", "product_line", "start_date",
		}, fixtureProducts},
		{warehouse.TableSales, []string{
			"order_number", "product_key", "customer_key", "order_date",
			"sales_amount", "quantity", "price",
		}, fixtureSales},
	}

	for _, tbl := range tables {
		w := datagen.NewBatchWriter(pool, pgx.Identifier{schema, tbl.name}, tbl.columns,
			int64(len(tbl.rows)), datagen.DefaultCopyConfig())
		for _, row := range tbl.rows {
			if err := w.Add(ctx, row...); err != nil {
				return fmt.Errorf("load %s: %w", tbl.name, err)
			}
		}
		if err := w.Close(ctx); err != nil {
			return fmt.Errorf("load %s: %w", tbl.name, err)
		}
	}
	return nil
}
