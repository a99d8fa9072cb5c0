package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/db"
	"github.com/pgEdge/pgedge-goldreports/internal/render"
	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	"github.com/pgEdge/pgedge-goldreports/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show initialization metadata and row counts",
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

		out := cmd.OutOrStdout()

		exists, err := db.MetadataExists(ctx, pool)
		if err != nil {
			return fmt.Errorf("failed to check metadata: %w", err)
		}
		if exists {
			metadata, err := db.GetAllMetadata(ctx, pool)
			if err != nil {
				return fmt.Errorf("failed to read metadata: %w", err)
			}
			if err := render.Render(out, metadataResult(metadata), render.FormatTable); err != nil {
				return err
			}
			fmt.Fprintln(out)
		} else {
			fmt.Fprintln(out, "No initialization metadata found (the gold layer was not created by 'init').")
			fmt.Fprintln(out)
		}

		counts, err := warehouse.Inventory(ctx, pool, cfg.Schema)
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			return fmt.Errorf("schema '%s' has no tables; run 'pgedge-goldreports init' first", cfg.Schema)
		}
		return render.Render(out, inventoryResult(counts), render.FormatTable)
	},
}

func metadataResult(metadata map[string]string) *reports.Result {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := &reports.Result{Report: "metadata", Columns: []string{"key", "value"}}
	for _, k := range keys {
		res.Rows = append(res.Rows, []any{k, metadata[k]})
	}
	return res
}

func inventoryResult(counts []warehouse.TableCount) *reports.Result {
	res := &reports.Result{Report: "inventory", Columns: []string{"relation", "rows"}}
	for _, c := range counts {
		res.Rows = append(res.Rows, []any{c.Name, c.Rows})
	}
	return res
}
