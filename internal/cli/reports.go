package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/render"
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
)

var reportsCategory string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports",
	Long: `List the report catalog. Reports are grouped into categories:

  exploration   - schema objects, dimension members, date coverage
  measures      - key business metrics
  magnitude     - measures aggregated by a dimension
  ranking       - top and bottom performers
  trends        - sales over time, running totals, year-over-year
  segmentation  - cost ranges and customer segments
  partwhole     - contribution to the overall total
  reporting     - reports over the report_customers and product_report views

Use 'pgedge-goldreports reports describe <report>' for details.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := selectCategory(reportsCategory)
		if err != nil {
			return err
		}
		return render.Render(cmd.OutOrStdout(), catalogResult(list), render.FormatTable)
	},
}

var reportsDescribeCmd = &cobra.Command{
	Use:   "describe <report>",
	Short: "Show a report's description and SQL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := reports.Get(args[0])
		if err != nil {
			return err
		}
		asOf, err := cfg.AsOf()
		if err != nil {
			return err
		}

		sql, queryArgs := r.Build(reportParams(asOf).Resolve(r))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:        %s\n", r.Name)
		fmt.Fprintf(out, "Category:    %s\n", r.Category)
		fmt.Fprintf(out, "Description: %s\n", r.Description)
		if r.DefaultLimit > 0 {
			fmt.Fprintf(out, "Limit:       %d\n", r.DefaultLimit)
		}
		if r.RequiresViews {
			fmt.Fprintln(out, "Requires:    reporting views (pgedge-goldreports views create)")
		}
		if len(queryArgs) > 0 {
			fmt.Fprintln(out, "Arguments:")
			for i, a := range queryArgs {
				fmt.Fprintf(out, "  $%d = %s\n", i+1, describeArg(a))
			}
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.TrimSpace(sql))
		return nil
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsCategory, "category", "",
		"only list reports in this category")
	reportsCmd.AddCommand(reportsDescribeCmd)
}

// selectCategory returns the whole catalog, or one category of it.
func selectCategory(category string) ([]*reports.Report, error) {
	if category == "" {
		return reports.All(), nil
	}
	if !slices.Contains(reports.Categories(), category) {
		return nil, fmt.Errorf("unknown category: %s (available: %s)",
			category, strings.Join(reports.Categories(), ", "))
	}
	return reports.ByCategory(category), nil
}

func catalogResult(list []*reports.Report) *reports.Result {
	res := &reports.Result{
		Report:  "reports",
		Columns: []string{"report", "category", "limit", "views", "description"},
	}
	for _, r := range list {
		limit := ""
		if r.DefaultLimit > 0 {
			limit = strconv.Itoa(r.DefaultLimit)
		}
		views := ""
		if r.RequiresViews {
			views = "yes"
		}
		res.Rows = append(res.Rows, []any{r.Name, r.Category, limit, views, r.Description})
	}
	return res
}

func describeArg(a any) string {
	if a == nil {
		return "NULL"
	}
	if s, ok := a.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(a)
}
