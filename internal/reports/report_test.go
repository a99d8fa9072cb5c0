package reports

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-goldreports/internal/reports/reportstest"
	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

func TestParamsResolve(t *testing.T) {
	r := &Report{Name: "r", DefaultLimit: 5}

	p := Params{}.Resolve(r)
	assert.Equal(t, "gold", p.Schema)
	assert.Equal(t, 5, p.Limit)
	assert.Equal(t, "dim_customers", p.Table)
	assert.Equal(t, segment.DefaultThresholds(), p.Segments)

	p = Params{Schema: "s", Limit: 2, Table: "fact_sales"}.Resolve(r)
	assert.Equal(t, "s", p.Schema)
	assert.Equal(t, 2, p.Limit)
	assert.Equal(t, "fact_sales", p.Table)
}

func TestParamsSQL(t *testing.T) {
	p := Params{Schema: "gold", AsOf: time.Date(2013, 12, 31, 0, 0, 0, 0, time.UTC)}
	got := p.SQL("SELECT {x}, {as_of} FROM {schema}.t", "{x}", "1")
	assert.Equal(t, `SELECT 1, DATE '2013-12-31' FROM "gold".t`, got)
}

func TestParamsArgs(t *testing.T) {
	assert.Nil(t, Params{}.LimitArg())
	assert.Equal(t, 3, Params{Limit: 3}.LimitArg())
	assert.Nil(t, Params{}.CategoryArg())
	assert.Equal(t, "Bikes", Params{Category: "Bikes"}.CategoryArg())
}

func TestNormalize(t *testing.T) {
	day := time.Date(2013, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int16", int16(3), int64(3)},
		{"int32", int32(4), int64(4)},
		{"int", 5, int64(5)},
		{"int64", int64(6), int64(6)},
		{"float32", float32(1.5), float64(1.5)},
		{"bytes", []byte("abc"), "abc"},
		{"string", "abc", "abc"},
		{"time", day, day},
		{"text", pgtype.Text{String: "x", Valid: true}, "x"},
		{"null text", pgtype.Text{}, nil},
		{"date", pgtype.Date{Time: day, Valid: true}, day},
		{"infinite date", pgtype.Date{InfinityModifier: pgtype.Infinity, Valid: true}, "infinity"},
		{"null numeric", pgtype.Numeric{}, nil},
		{"nan", pgtype.Numeric{NaN: true, Valid: true}, "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeNumeric(t *testing.T) {
	n := pgtype.Numeric{Int: big.NewInt(123456), Exp: -2, Valid: true}
	got, ok := Normalize(n).(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, "1234.56", got.String())

	got, ok = Normalize(&n).(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("1234.56")))
}

func TestRunCollectsRows(t *testing.T) {
	rows := reportstest.NewRows([]string{"measure_name", "measure_value"},
		[]any{"Total Sales", pgtype.Numeric{Int: big.NewInt(2999), Exp: -1, Valid: true}},
		[]any{"Total Orders", int32(2)},
	)
	q := &reportstest.Querier{Respond: func(string, []any) (pgx.Rows, error) { return rows, nil }}
	r := &Report{Name: "metrics", Category: CategoryMeasures, Build: Static("SELECT 1 FROM {schema}.x")}

	res, err := Run(context.Background(), q, r, Params{})
	require.NoError(t, err)
	assert.True(t, rows.Closed())

	assert.Equal(t, "metrics", res.Report)
	assert.Equal(t, CategoryMeasures, res.Category)
	assert.Equal(t, []string{"measure_name", "measure_value"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "299.9", res.Value(0, "measure_value").(decimal.Decimal).String())
	assert.Equal(t, int64(2), res.Value(1, "measure_value"))
	assert.Nil(t, res.Value(5, "measure_value"))
	assert.Nil(t, res.Value(0, "missing"))
	assert.Equal(t, -1, res.ColumnIndex("missing"))
}

func TestRunErrors(t *testing.T) {
	r := &Report{Name: "broken", Build: Static("SELECT 1")}

	queryErr := errors.New("relation does not exist")
	q := &reportstest.Querier{Respond: func(string, []any) (pgx.Rows, error) { return nil, queryErr }}
	_, err := Run(context.Background(), q, r, Params{})
	require.ErrorIs(t, err, queryErr)
	assert.Contains(t, err.Error(), "report broken")

	iterErr := errors.New("connection reset")
	rows := reportstest.NewRows([]string{"a"}, []any{1})
	rows.Failure = iterErr
	q = &reportstest.Querier{Respond: func(string, []any) (pgx.Rows, error) { return rows, nil }}
	_, err = Run(context.Background(), q, r, Params{})
	require.ErrorIs(t, err, iterErr)
}
