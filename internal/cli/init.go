package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/datagen"
	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

var (
	initSize         string
	initSeed         uint64
	initStartDate    string
	initEndDate      string
	initDropExisting bool
	initSkipViews    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the gold schema and fill it with fixture data",
	Long: `Create the gold layer star schema (dim_customers, dim_products,
fact_sales), fill it with synthetic fixture data and create the reporting
views. The size parameter controls how much data is generated; the seed
makes the data reproducible.

Fixture data exists so the report catalog can be exercised; it does not
model any real source system.

Example:
  pgedge-goldreports init --size 50MB --seed 42 --connection "postgres://..."`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSize, "size", "",
		"target fixture size (e.g., 10MB, 1GB)")
	initCmd.Flags().Uint64Var(&initSeed, "seed", 0,
		"random seed for reproducible fixtures (default: random)")
	initCmd.Flags().StringVar(&initStartDate, "start-date", "",
		"first order date, YYYY-MM-DD")
	initCmd.Flags().StringVar(&initEndDate, "end-date", "",
		"last order date, YYYY-MM-DD")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop the existing schema before initialization")
	initCmd.Flags().BoolVar(&initSkipViews, "skip-views", false,
		"do not create the reporting views")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initSize != "" {
		cfg.Init.Size = initSize
	}
	if initSeed != 0 {
		cfg.Init.Seed = initSeed
	}
	if initStartDate != "" {
		cfg.Init.StartDate = initStartDate
	}
	if initEndDate != "" {
		cfg.Init.EndDate = initEndDate
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}
	if initSkipViews {
		cfg.Init.SkipViews = true
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}
	targetBytes, err := datagen.ParseSize(cfg.Init.Size)
	if err != nil {
		return fmt.Errorf("invalid size: %w", err)
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		return err
	}
	asOf, err := cfg.AsOf()
	if err != nil {
		return err
	}

	logging.Info().
		Str("schema", cfg.Schema).
		Str("size", cfg.Init.Size).
		Msg("Initializing gold layer")

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Drop existing schema if requested
	if cfg.Init.DropExisting {
		logging.Info().Str("schema", cfg.Schema).Msg("Dropping existing schema")
		if err := warehouse.DropSchema(ctx, pool, cfg.Schema); err != nil {
			return err
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	// Create schema
	logging.Info().Msg("Creating schema")
	if err := warehouse.CreateSchema(ctx, pool, cfg.Schema); err != nil {
		return err
	}

	// Refuse to append fixtures to a populated schema
	counts, err := warehouse.Inventory(ctx, pool, cfg.Schema)
	if err != nil {
		return err
	}
	for _, c := range counts {
		if c.Name == warehouse.TableSales && c.Rows > 0 {
			return fmt.Errorf(
				"schema '%s' already contains %d sales rows; use --drop-existing to reinitialize",
				cfg.Schema, c.Rows)
		}
	}

	// Generate data
	logging.Info().
		Int64("target_bytes", targetBytes).
		Msg("Generating fixture data")

	gen := warehouse.NewGenerator(warehouse.GeneratorConfig{
		Schema:     cfg.Schema,
		TargetSize: targetBytes,
		Seed:       cfg.Init.Seed,
		StartDate:  start,
		EndDate:    end,
	})
	if err := gen.GenerateData(ctx, pool); err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	if !cfg.Init.SkipViews {
		if err := warehouse.CreateViews(ctx, pool, warehouse.ViewOptions{
			Schema:     cfg.Schema,
			AsOf:       asOf,
			Thresholds: cfg.Segments,
		}); err != nil {
			return err
		}
	}

	// Save metadata
	if err := db.SaveMetadata(ctx, pool, db.Metadata{
		Schema:     cfg.Schema,
		TargetSize: cfg.Init.Size,
		Seed:       gen.Seed(),
		StartDate:  start,
		EndDate:    end,
	}); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("schema", cfg.Schema).
		Str("size", cfg.Init.Size).
		Uint64("seed", gen.Seed()).
		Msg("Gold layer initialization complete")

	return nil
}
