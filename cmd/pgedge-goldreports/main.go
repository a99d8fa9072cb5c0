// Package main is the entry point for pgedge-goldreports.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-goldreports/internal/cli"

	// Register reports
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/exploration"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/magnitude"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/measures"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/partwhole"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/ranking"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/reporting"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/segmentation"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/trends"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
