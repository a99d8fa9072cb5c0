package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/exploration"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/magnitude"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/measures"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/partwhole"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/ranking"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/reporting"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/segmentation"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/trends"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pgedge-goldreports")
}

func TestReportsCommand(t *testing.T) {
	t.Cleanup(func() { reportsCategory = "" })

	out, err := execute(t, "reports", "--category", "ranking")
	require.NoError(t, err)
	assert.Contains(t, out, "top_products")
	assert.Contains(t, out, "least_active_customers")
	assert.NotContains(t, out, "key_metrics")

	_, err = execute(t, "reports", "--category", "nonexistent")
	assert.ErrorContains(t, err, "unknown category")
}

func TestReportsDescribeCommand(t *testing.T) {
	t.Cleanup(func() { schema = "" })

	out, err := execute(t, "reports", "describe", "top_products", "--schema", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Category:    ranking")
	assert.Contains(t, out, "$1 = 5")
	assert.Contains(t, out, "$2 = NULL")
	assert.Contains(t, out, `FROM "sales".fact_sales`)

	_, err = execute(t, "reports", "describe", "nonexistent")
	assert.ErrorIs(t, err, reports.ErrUnknownReport)
}

func TestSelectReports(t *testing.T) {
	reset := func() {
		runAll = false
		runCategory = ""
	}
	t.Cleanup(reset)

	tests := []struct {
		name      string
		args      []string
		all       bool
		category  string
		wantCount int
		wantError bool
	}{
		{"nothing selected", nil, false, "", 0, true},
		{"names", []string{"key_metrics", "top_products"}, false, "", 2, false},
		{"duplicate names", []string{"key_metrics", "key_metrics"}, false, "", 1, false},
		{"unknown name", []string{"nope"}, false, "", 0, true},
		{"all", nil, true, "", len(reports.All()), false},
		{"category", nil, false, "trends", len(reports.ByCategory("trends")), false},
		{"unknown category", nil, false, "nope", 0, true},
		{"names and all", []string{"key_metrics"}, true, "", 0, true},
		{"all and category", nil, true, "trends", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			runAll = tt.all
			runCategory = tt.category

			got, err := selectReports(tt.args)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestCatalogResult(t *testing.T) {
	res := catalogResult(reports.ByCategory(reports.CategoryReporting))
	require.NotEmpty(t, res.Rows)
	for i := range res.Rows {
		assert.Equal(t, "yes", res.Value(i, "views"))
	}
}

func TestStatusResults(t *testing.T) {
	meta := metadataResult(map[string]string{"seed": "42", "schema": "gold"})
	assert.Equal(t, "schema", meta.Value(0, "key"))
	assert.Equal(t, "42", meta.Value(1, "value"))

	inv := inventoryResult([]warehouse.TableCount{{Name: "fact_sales", Rows: 10}})
	assert.Equal(t, int64(10), inv.Value(0, "rows"))
}

func TestDescribeArg(t *testing.T) {
	assert.Equal(t, "NULL", describeArg(nil))
	assert.Equal(t, `"gold"`, describeArg("gold"))
	assert.Equal(t, "5", describeArg(5))
	assert.False(t, strings.Contains(describeArg(3), `"`))
}
