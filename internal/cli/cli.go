//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-goldreports.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-goldreports/internal/config"
	"github.com/pgEdge/pgedge-goldreports/internal/logging"
	"github.com/pgEdge/pgedge-goldreports/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	schema     string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-goldreports",
		Short: "Analytical reports over a PostgreSQL gold layer star schema",
		Long: `pgedge-goldreports runs a catalog of read-only analytical reports
against a star schema "gold layer" (fact_sales, dim_customers, dim_products)
and the two reporting views derived from it (report_customers and
product_report).

Reports cover database exploration, key measures, magnitude, ranking,
trends over time, segmentation and part-to-whole analysis. The tool can also
create the gold schema with synthetic fixture data for testing and demos.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-goldreports.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&schema, "schema", "",
		"schema holding the gold layer (default: gold)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (console, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(viewsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if schema != "" {
		cfg.Schema = schema
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogFormat != "json",
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
