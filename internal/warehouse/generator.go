//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-goldreports/internal/datagen"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
)

// Approximate on-disk footprint per scale unit. Sales lines dominate.
var tableSizes = []datagen.TableSizeInfo{
	{Name: TableCustomers, BaseRowSize: 130, ScaleRatio: 100, IndexFactor: 1.2, MinRows: 20},
	{Name: TableProducts, BaseRowSize: 150, ScaleRatio: 2, IndexFactor: 1.2, MinRows: 12},
	{Name: TableSales, BaseRowSize: 96, ScaleRatio: 650, IndexFactor: 1.5, MinRows: 60},
}

type subcategory struct {
	name     string
	costMin  float64
	costMax  float64
	line     string
	maintain bool
}

// Product hierarchy used for fixture products.
var catalog = []struct {
	id            string
	name          string
	subcategories []subcategory
	weight        int
}{
	{"BI", "Bikes", []subcategory{
		{"Mountain Bikes", 300, 2200, "Mountain", true},
		{"Road Bikes", 350, 2200, "Road", true},
		{"Touring Bikes", 450, 1500, "Touring", true},
	}, 25},
	{"CO", "Components", []subcategory{
		{"Handlebars", 10, 70, "Other Sales", true},
		{"Brakes", 40, 60, "Other Sales", true},
		{"Chains", 8, 12, "Other Sales", true},
		{"Wheels", 30, 600, "Road", true},
		{"Frames", 150, 800, "Mountain", true},
	}, 30},
	{"CL", "Clothing", []subcategory{
		{"Jerseys", 30, 50, "Sport", false},
		{"Caps", 5, 7, "Sport", false},
		{"Gloves", 9, 16, "Sport", false},
		{"Socks", 3, 4, "Sport", false},
		{"Shorts", 25, 30, "Sport", false},
	}, 25},
	{"AC", "Accessories", []subcategory{
		{"Helmets", 12, 14, "Sport", false},
		{"Bottles and Cages", 1, 4, "Other Sales", false},
		{"Tires and Tubes", 1, 14, "Other Sales", false},
		{"Cleaners", 2, 3, "Other Sales", false},
		{"Locks", 10, 11, "Other Sales", false},
	}, 20},
}

var countries = []string{
	"United States", "Australia", "United Kingdom", "Germany", "France", "Canada", "n/a",
}
var countryWeights = []int{40, 20, 10, 10, 10, 9, 1}

var genders = []string{"Male", "Female", "n/a"}
var genderWeights = []int{49, 49, 2}

var maritalStatuses = []string{"Married", "Single"}

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Schema     string
	TargetSize int64
	Seed       uint64
	StartDate  time.Time
	EndDate    time.Time
	Copy       datagen.CopyConfig
}

// Plan holds the number of rows to generate per table.
type Plan struct {
	Customers int
	Products  int
	Orders    int
}

// PlanFor derives row counts from a target size. Each order averages
// 1.5 lines, so Orders is two thirds of the fact_sales row estimate.
func PlanFor(targetSize int64) Plan {
	calc := datagen.NewSizeCalculator(tableSizes)
	counts := calc.CalculateRowCounts(targetSize)
	return Plan{
		Customers: int(counts[TableCustomers]),
		Products:  int(counts[TableProducts]),
		Orders:    max(1, int(counts[TableSales]*2/3)),
	}
}

// Generator generates fixture data for the gold schema.
type Generator struct {
	faker *datagen.Faker
	cfg   GeneratorConfig
}

// NewGenerator creates a new fixture generator. A zero seed picks a random one.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Schema == "" {
		cfg.Schema = "gold"
	}
	if cfg.Copy.BatchSize == 0 {
		cfg.Copy = datagen.DefaultCopyConfig()
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		faker: datagen.NewFakerWithSeed(cfg.Seed),
		cfg:   cfg,
	}
}

// Seed returns the seed in use, so a run can be reproduced.
func (g *Generator) Seed() uint64 {
	return g.cfg.Seed
}

type productRef struct {
	key   int
	price decimal.Decimal
}

// GenerateData fills the base tables.
func (g *Generator) GenerateData(ctx context.Context, pool *pgxpool.Pool) error {
	plan := PlanFor(g.cfg.TargetSize)

	logging.Info().
		Int("customers", plan.Customers).
		Int("products", plan.Products).
		Int("orders", plan.Orders).
		Uint64("seed", g.cfg.Seed).
		Msg("Generating gold layer fixtures")

	if err := g.generateCustomers(ctx, pool, plan.Customers); err != nil {
		return fmt.Errorf("failed to generate customers: %w", err)
	}
	products, err := g.generateProducts(ctx, pool, plan.Products)
	if err != nil {
		return fmt.Errorf("failed to generate products: %w", err)
	}
	if err := g.generateSales(ctx, pool, plan.Orders, plan.Customers, products); err != nil {
		return fmt.Errorf("failed to generate sales: %w", err)
	}

	if _, err := pool.Exec(ctx, QualifySchema("ANALYZE {schema}.fact_sales", g.cfg.Schema)); err != nil {
		logging.Warn().Err(err).Msg("ANALYZE failed")
	}
	return nil
}

func (g *Generator) generateCustomers(ctx context.Context, db datagen.Copier, count int) error {
	w := datagen.NewBatchWriter(db, pgx.Identifier{g.cfg.Schema, TableCustomers},
		[]string{"customer_key", "customer_id", "customer_number", "first_name", "last_name",
			"country", "marital_status", "gender", "birthdate", "create_date"},
		int64(count), g.cfg.Copy)

	birthStart := time.Date(1916, 1, 1, 0, 0, 0, 0, time.UTC)
	birthEnd := time.Date(1986, 12, 31, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= count; i++ {
		var birthdate any
		if !g.faker.Chance(0.01) {
			birthdate = g.faker.Date(birthStart, birthEnd)
		}
		customerID := 11000 + i - 1
		err := w.Add(ctx,
			i,
			customerID,
			fmt.Sprintf("AW%08d", customerID),
			g.faker.FirstName(),
			g.faker.LastName(),
			datagen.ChooseWeighted(g.faker, countries, countryWeights),
			datagen.Choose(g.faker, maritalStatuses),
			datagen.ChooseWeighted(g.faker, genders, genderWeights),
			birthdate,
			g.faker.Date(g.cfg.StartDate, g.cfg.EndDate),
		)
		if err != nil {
			return err
		}
	}
	return w.Close(ctx)
}

func (g *Generator) generateProducts(ctx context.Context, db datagen.Copier, count int) ([]productRef, error) {
	w := datagen.NewBatchWriter(db, pgx.Identifier{g.cfg.Schema, TableProducts},
		[]string{"product_key", "product_id", "product_number", "product_name", "category_id",
			"category", "subcategory", "maintenance", "cost", "product_line", "start_date"},
		int64(count), g.cfg.Copy)

	weights := make([]int, len(catalog))
	for i, c := range catalog {
		weights[i] = c.weight
	}
	indexes := make([]int, len(catalog))
	for i := range indexes {
		indexes[i] = i
	}

	products := make([]productRef, 0, count)
	for i := 1; i <= count; i++ {
		cat := catalog[datagen.ChooseWeighted(g.faker, indexes, weights)]
		sub := datagen.Choose(g.faker, cat.subcategories)

		cost := g.faker.Money(sub.costMin, sub.costMax).Round(0)
		markup := decimal.NewFromFloat(g.faker.Float64(1.1, 1.8))
		price := cost.Mul(markup).Round(0)
		if price.IsZero() {
			price = decimal.NewFromInt(1)
		}

		maintenance := "No"
		if sub.maintain {
			maintenance = "Yes"
		}

		name := datagen.Truncate(fmt.Sprintf("%s %s-%s", sub.name, g.faker.Color(), g.faker.Digits(2)), 100)
		err := w.Add(ctx,
			i,
			200+i,
			fmt.Sprintf("%s-%s%s", cat.id, g.faker.Digits(2), g.faker.Digits(2)),
			name,
			cat.id+"_"+sub.name[:2],
			cat.name,
			sub.name,
			maintenance,
			datagen.Numeric(cost),
			sub.line,
			g.faker.Date(g.cfg.StartDate.AddDate(-2, 0, 0), g.cfg.StartDate),
		)
		if err != nil {
			return nil, err
		}
		products = append(products, productRef{key: i, price: price})
	}
	return products, w.Close(ctx)
}

func (g *Generator) generateSales(ctx context.Context, db datagen.Copier, orders, customers int, products []productRef) error {
	w := datagen.NewBatchWriter(db, pgx.Identifier{g.cfg.Schema, TableSales},
		[]string{"order_number", "product_key", "customer_key", "order_date", "shipping_date",
			"due_date", "sales_amount", "quantity", "price"},
		int64(orders*3/2), g.cfg.Copy)

	lineCounts := []int{1, 2, 3}
	lineWeights := []int{60, 30, 10}

	for o := 0; o < orders; o++ {
		orderNumber := fmt.Sprintf("SO%d", 43697+o)
		customerKey := g.faker.Int(1, customers)

		// A small share of orders lack a date and are excluded from
		// time-based reports.
		var orderDate, shipDate, dueDate any
		if !g.faker.Chance(0.002) {
			d := g.faker.Date(g.cfg.StartDate, g.cfg.EndDate)
			orderDate, shipDate, dueDate = d, d.AddDate(0, 0, 7), d.AddDate(0, 0, 12)
		}

		lines := datagen.ChooseWeighted(g.faker, lineCounts, lineWeights)
		for l := 0; l < lines; l++ {
			p := datagen.Choose(g.faker, products)
			qty := 1
			if g.faker.Chance(0.05) {
				qty = g.faker.Int(2, 3)
			}
			amount := p.price.Mul(decimal.NewFromInt(int64(qty)))
			err := w.Add(ctx,
				orderNumber,
				p.key,
				customerKey,
				orderDate,
				shipDate,
				dueDate,
				datagen.Numeric(amount),
				qty,
				datagen.Numeric(p.price),
			)
			if err != nil {
				return err
			}
		}
	}
	return w.Close(ctx)
}
