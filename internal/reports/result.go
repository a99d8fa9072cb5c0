package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-goldreports/internal/logging"
)

// Result is the tabular output of one report execution.
type Result struct {
	Report   string
	Category string
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// ColumnIndex returns the index of the named column, or -1.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the named column of a row, or nil when the column is missing.
func (r *Result) Value(row int, column string) any {
	i := r.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(r.Rows) {
		return nil
	}
	return r.Rows[row][i]
}

// Run executes a report and collects its rows.
func Run(ctx context.Context, q Querier, r *Report, p Params) (*Result, error) {
	p = p.Resolve(r)
	sql, args := r.Build(p)

	start := time.Now()
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.Name, err)
	}
	res, err := Collect(rows)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.Name, err)
	}
	res.Report = r.Name
	res.Category = r.Category
	res.Duration = time.Since(start)

	logging.Debug().
		Str("report", r.Name).
		Int("rows", len(res.Rows)).
		Dur("duration", res.Duration).
		Msg("Report executed")

	return res, nil
}

// Collect reads all rows into a Result, normalizing driver values. It
// closes rows.
func Collect(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	res := &Result{Columns: make([]string, len(fields))}
	for i, f := range fields {
		res.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = Normalize(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Normalize maps driver values onto a small set of types: nil, string,
// int64, float64, bool, time.Time and decimal.Decimal.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		return numericValue(x)
	case *pgtype.Numeric:
		if x == nil {
			return nil
		}
		return numericValue(*x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case pgtype.Text:
		if !x.Valid {
			return nil
		}
		return x.String
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		if x.InfinityModifier != pgtype.Finite {
			return x.InfinityModifier.String()
		}
		return x.Time
	default:
		return v
	}
}

func numericValue(n pgtype.Numeric) any {
	switch {
	case !n.Valid:
		return nil
	case n.NaN:
		return "NaN"
	case n.InfinityModifier != pgtype.Finite:
		return n.InfinityModifier.String()
	case n.Int == nil:
		return decimal.Zero
	default:
		return decimal.NewFromBigInt(n.Int, n.Exp)
	}
}
