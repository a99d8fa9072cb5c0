package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

var viewsAsOf string

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Manage the reporting views",
	Long: `Create or drop the reporting views report_customers and
product_report. The views are derived from the base tables at query time;
recreate them after changing segment thresholds in the configuration.`,
}

var viewsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create (or recreate) the reporting views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viewsAsOf != "" {
			cfg.Run.AsOf = viewsAsOf
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		asOf, err := cfg.AsOf()
		if err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg.Connection)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		return warehouse.CreateViews(ctx, pool, warehouse.ViewOptions{
			Schema:     cfg.Schema,
			AsOf:       asOf,
			Thresholds: cfg.Segments,
		})
	},
}

var viewsDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the reporting views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := context.Background()
		pool, err := db.Connect(ctx, cfg.Connection)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := warehouse.DropViews(ctx, pool, cfg.Schema); err != nil {
			return err
		}
		logging.Info().Str("schema", cfg.Schema).Msg("Reporting views dropped")
		return nil
	},
}

func init() {
	viewsCreateCmd.Flags().StringVar(&viewsAsOf, "as-of", "",
		"pin ages and recency to this date, YYYY-MM-DD (default: current date at query time)")
	viewsCmd.AddCommand(viewsCreateCmd)
	viewsCmd.AddCommand(viewsDropCmd)
}
