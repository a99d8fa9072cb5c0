package reports_test

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/reports/reportstest"
	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

func maxPlaceholder(sql string) int {
	n := 0
	for _, m := range placeholderRe.FindAllStringSubmatch(sql, -1) {
		v, _ := strconv.Atoi(m[1])
		n = max(n, v)
	}
	return n
}

func runAndCapture(t *testing.T, r *reports.Report, p reports.Params) reportstest.Call {
	t.Helper()
	q := &reportstest.Querier{}
	_, err := reports.Run(context.Background(), q, r, p)
	require.NoError(t, err)
	calls := q.Calls()
	require.Len(t, calls, 1)
	return calls[0]
}

func TestCatalogBuildsCompleteSQL(t *testing.T) {
	params := []reports.Params{
		{},
		{Schema: "sales", Limit: 7, Category: "Bikes", AsOf: time.Date(2014, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, r := range reports.All() {
		for _, p := range params {
			t.Run(r.Name, func(t *testing.T) {
				call := runAndCapture(t, r, p)

				assert.NotContains(t, call.SQL, "{", "unexpanded placeholder")
				assert.NotContains(t, call.SQL, "}", "unexpanded placeholder")
				assert.Equal(t, maxPlaceholder(call.SQL), len(call.Args),
					"positional parameters and arguments must match")

				schema := p.Schema
				if schema == "" {
					schema = "gold"
				}
				if strings.Contains(call.SQL, "FROM information_schema") {
					assert.Equal(t, schema, call.Args[0])
				} else {
					assert.Contains(t, call.SQL, `"`+schema+`".`)
				}
			})
		}
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	writes := regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|CREATE|DROP|ALTER|TRUNCATE)\b`)
	for _, r := range reports.All() {
		call := runAndCapture(t, r, reports.Params{})
		assert.False(t, writes.MatchString(call.SQL), "report %s must not modify data", r.Name)
	}
}

func TestRankingLimits(t *testing.T) {
	tests := []struct {
		report string
		limit  int
		want   any
	}{
		{"top_products", 0, 5},
		{"bottom_products", 0, 5},
		{"top_customers", 0, 10},
		{"least_active_customers", 0, 3},
		{"top_products", 20, 20},
		{"revenue_by_customer", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.report, func(t *testing.T) {
			r, err := reports.Get(tt.report)
			require.NoError(t, err)
			call := runAndCapture(t, r, reports.Params{Limit: tt.limit})
			require.NotEmpty(t, call.Args)
			assert.Equal(t, tt.want, call.Args[0])
			assert.Contains(t, call.SQL, "LIMIT $1")
		})
	}
}

func TestCategoryFilter(t *testing.T) {
	r, err := reports.Get("top_products")
	require.NoError(t, err)

	call := runAndCapture(t, r, reports.Params{})
	assert.Nil(t, call.Args[1])

	call = runAndCapture(t, r, reports.Params{Category: "Bikes"})
	assert.Equal(t, "Bikes", call.Args[1])
}

func TestTableColumnsDefaultsToCustomers(t *testing.T) {
	r, err := reports.Get("table_columns")
	require.NoError(t, err)

	call := runAndCapture(t, r, reports.Params{})
	assert.Equal(t, []any{"gold", "dim_customers"}, call.Args)

	call = runAndCapture(t, r, reports.Params{Table: "fact_sales"})
	assert.Equal(t, []any{"gold", "fact_sales"}, call.Args)
}

func TestSegmentationUsesThresholds(t *testing.T) {
	r, err := reports.Get("customer_segments")
	require.NoError(t, err)

	call := runAndCapture(t, r, reports.Params{})
	assert.Contains(t, call.SQL, "total_spending > 5000 THEN 'VIP'")
	assert.Contains(t, call.SQL, "lifespan >= 12")

	th := segment.DefaultThresholds()
	th.VIPMinSpend = 7500.5
	th.VIPMinLifespanMonths = 6
	call = runAndCapture(t, r, reports.Params{Segments: th})
	assert.Contains(t, call.SQL, "total_spending > 7500.5 THEN 'VIP'")
	assert.Contains(t, call.SQL, "lifespan >= 6")

	r, err = reports.Get("product_cost_ranges")
	require.NoError(t, err)
	call = runAndCapture(t, r, reports.Params{})
	for _, label := range segment.DefaultThresholds().CostRanges() {
		assert.Contains(t, call.SQL, "'"+label+"'")
	}
}

func TestAsOfPinsAges(t *testing.T) {
	r, err := reports.Get("customer_age_range")
	require.NoError(t, err)

	call := runAndCapture(t, r, reports.Params{})
	assert.Contains(t, call.SQL, "CURRENT_DATE")

	call = runAndCapture(t, r, reports.Params{AsOf: time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC)})
	assert.Contains(t, call.SQL, "DATE '2014-02-01'")
	assert.NotContains(t, call.SQL, "CURRENT_DATE")
}
