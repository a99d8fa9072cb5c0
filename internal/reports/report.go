//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package reports defines the analytical report catalog: report definitions,
// parameters, the registry the report packages add themselves to, and the
// runner that executes a report and collects its tabular result.
package reports

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-goldreports/internal/segment"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

// Report categories.
const (
	CategoryExploration  = "exploration"
	CategoryMeasures     = "measures"
	CategoryMagnitude    = "magnitude"
	CategoryRanking      = "ranking"
	CategoryTrends       = "trends"
	CategorySegmentation = "segmentation"
	CategoryPartWhole    = "partwhole"
	CategoryReporting    = "reporting"
)

// CategoryOrder is the order categories are listed and run in.
var CategoryOrder = []string{
	CategoryExploration,
	CategoryMeasures,
	CategoryMagnitude,
	CategoryRanking,
	CategoryTrends,
	CategorySegmentation,
	CategoryPartWhole,
	CategoryReporting,
}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Report is a single read-only analytical query.
type Report struct {
	// Name is the unique report identifier.
	Name string

	// Category groups related reports.
	Category string

	// Description describes what the report answers.
	Description string

	// DefaultLimit is the row limit used when Params.Limit is zero. Zero
	// means the report is not limited.
	DefaultLimit int

	// RequiresViews is set for reports that read the reporting views.
	RequiresViews bool

	// Build returns the SQL text and its positional arguments.
	Build func(p Params) (string, []any)
}

// Params are the inputs shared by all reports.
type Params struct {
	// Schema holding the gold layer; defaults to "gold".
	Schema string

	// Limit overrides Report.DefaultLimit when positive.
	Limit int

	// AsOf is the reference date for ages and recency; zero means today.
	AsOf time.Time

	// Category restricts product-centric reports to one product category.
	Category string

	// Table is the table inspected by table_columns.
	Table string

	// Segments are the segmentation thresholds.
	Segments segment.Thresholds
}

// Resolve fills unset parameters with their defaults for report r.
func (p Params) Resolve(r *Report) Params {
	if p.Schema == "" {
		p.Schema = "gold"
	}
	if p.Limit <= 0 {
		p.Limit = r.DefaultLimit
	}
	if p.Table == "" {
		p.Table = warehouse.TableCustomers
	}
	if p.Segments.IsZero() {
		p.Segments = segment.DefaultThresholds()
	}
	return p
}

// SQL expands the {schema} and {as_of} placeholders in tmpl, plus any extra
// placeholder/value pairs.
func (p Params) SQL(tmpl string, pairs ...string) string {
	pairs = append(pairs, "{as_of}", segment.DateSQL(p.AsOf))
	return warehouse.QualifySchema(strings.NewReplacer(pairs...).Replace(tmpl), p.Schema)
}

// LimitArg returns the limit as a query argument. A nil argument makes
// "LIMIT $n" unbounded in PostgreSQL.
func (p Params) LimitArg() any {
	if p.Limit <= 0 {
		return nil
	}
	return p.Limit
}

// CategoryArg returns the category filter as a query argument, nil when unset.
func (p Params) CategoryArg() any {
	if p.Category == "" {
		return nil
	}
	return p.Category
}

// Static returns a Build function for SQL without arguments.
func Static(tmpl string) func(Params) (string, []any) {
	return func(p Params) (string, []any) {
		return p.SQL(tmpl), nil
	}
}
