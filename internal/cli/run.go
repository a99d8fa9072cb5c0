package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/internal/render"
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
	"github.com/pgEdge/pgedge-goldreports/internal/workload"
)

var (
	runAll             bool
	runCategory        string
	runFormat          string
	runLimit           int
	runAsOf            string
	runConcurrency     int
	runReportInterval  int
	runOutput          string
	runProductCategory string
	runTable           string
)

var runCmd = &cobra.Command{
	Use:   "run [report...]",
	Short: "Run reports against the gold layer",
	Long: `Run one or more reports and print their results. Reports are named as
arguments, selected by category with --category, or all run with --all.

Reports run concurrently on --concurrency worker connections; results are
always printed in catalog order. A failing report does not stop the others,
but the command exits with an error if any report failed.

Example:
  pgedge-goldreports run key_metrics top_products --limit 10
  pgedge-goldreports run --category trends --format csv --output trends.csv
  pgedge-goldreports run --all --as-of 2014-01-31 --format json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false,
		"run every report in the catalog")
	runCmd.Flags().StringVar(&runCategory, "category", "",
		"run every report in this category")
	runCmd.Flags().StringVar(&runFormat, "format", "",
		"output format: table, csv, json")
	runCmd.Flags().IntVar(&runLimit, "limit", 0,
		"row limit for ranking and reporting reports (default: per report)")
	runCmd.Flags().StringVar(&runAsOf, "as-of", "",
		"reference date for ages and recency, YYYY-MM-DD (default: today)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0,
		"number of worker connections")
	runCmd.Flags().IntVar(&runReportInterval, "report-interval", 0,
		"progress reporting interval in seconds")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "",
		"write results to this file instead of stdout")
	runCmd.Flags().StringVar(&runProductCategory, "product-category", "",
		"restrict product reports to one product category (e.g. Bikes)")
	runCmd.Flags().StringVar(&runTable, "table", "",
		"table inspected by table_columns (default: dim_customers)")
}

// reportParams builds report parameters from the configuration.
func reportParams(asOf time.Time) reports.Params {
	return reports.Params{
		Schema:   cfg.Schema,
		Limit:    cfg.Run.Limit,
		AsOf:     asOf,
		Category: runProductCategory,
		Table:    runTable,
		Segments: cfg.Segments,
	}
}

// selectReports resolves the reports named on the command line.
func selectReports(names []string) ([]*reports.Report, error) {
	selectors := 0
	if len(names) > 0 {
		selectors++
	}
	if runAll {
		selectors++
	}
	if runCategory != "" {
		selectors++
	}
	switch {
	case selectors == 0:
		return nil, errors.New("no reports selected; name reports or use --all or --category")
	case selectors > 1:
		return nil, errors.New("report names, --all and --category are mutually exclusive")
	case runAll:
		return reports.All(), nil
	case runCategory != "":
		return selectCategory(runCategory)
	}

	list := make([]*reports.Report, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		r, err := reports.Get(name)
		if err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			list = append(list, r)
		}
	}
	return list, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runFormat != "" {
		cfg.Run.Format = runFormat
	}
	if runLimit > 0 {
		cfg.Run.Limit = runLimit
	}
	if runAsOf != "" {
		cfg.Run.AsOf = runAsOf
	}
	if runConcurrency > 0 {
		cfg.Run.Concurrency = runConcurrency
	}
	if runReportInterval > 0 {
		cfg.Run.ReportInterval = runReportInterval
	}
	if runOutput != "" {
		cfg.Run.Output = runOutput
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	asOf, err := cfg.AsOf()
	if err != nil {
		return err
	}

	selected, err := selectReports(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := checkViews(ctx, selected); err != nil {
		return err
	}

	logging.Info().
		Int("reports", len(selected)).
		Str("schema", cfg.Schema).
		Str("format", cfg.Run.Format).
		Int("concurrency", cfg.Run.Concurrency).
		Msg("Running reports")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	executor, err := workload.NewExecutor(workload.ExecutorConfig{
		ConnString:     cfg.Connection,
		Reports:        selected,
		Params:         reportParams(asOf),
		Concurrency:    cfg.Run.Concurrency,
		ReportInterval: cfg.Run.ReportInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	outcomes, runErr := executor.Run(ctx)
	executor.PrintSummary()

	var results []*reports.Result
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			logging.Error().Err(o.Err).Str("report", o.Report.Name).Msg("Report failed")
			continue
		}
		results = append(results, o.Result)
	}

	if err := writeResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("report run interrupted: %w", runErr)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(outcomes))
	}
	return nil
}

// checkViews warns before running view-based reports when the reporting
// views are missing.
func checkViews(ctx context.Context, selected []*reports.Report) error {
	needViews := false
	for _, r := range selected {
		needViews = needViews || r.RequiresViews
	}
	if !needViews {
		return nil
	}

	conn, err := db.ConnectSingle(ctx, cfg.Connection, "metadata")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	ok, err := warehouse.ViewsExist(ctx, conn, cfg.Schema)
	if err != nil {
		return err
	}
	if !ok {
		logging.Warn().
			Str("schema", cfg.Schema).
			Msg("Reporting views are missing; run 'pgedge-goldreports views create'")
	}
	return nil
}

func writeResults(stdout io.Writer, results []*reports.Result) error {
	if len(results) == 0 {
		return nil
	}

	w := stdout
	if cfg.Run.Output != "" {
		f, err := os.Create(cfg.Run.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if len(results) == 1 {
		return render.Render(w, results[0], cfg.Run.Format)
	}
	return render.RenderAll(w, results, cfg.Run.Format)
}
