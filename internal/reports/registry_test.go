//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package reports_test

import (
	"errors"
	"testing"

	"github.com/pgEdge/pgedge-goldreports/internal/reports"
	// Import report packages to trigger their init() functions which register the reports
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/exploration"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/magnitude"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/measures"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/partwhole"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/ranking"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/reporting"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/segmentation"
	_ "github.com/pgEdge/pgedge-goldreports/internal/reports/trends"
)

func TestGet(t *testing.T) {
	knownReports := map[string]string{
		"database_tables":         reports.CategoryExploration,
		"table_columns":           reports.CategoryExploration,
		"key_metrics":             reports.CategoryMeasures,
		"customers_by_country":    reports.CategoryMagnitude,
		"top_products":            reports.CategoryRanking,
		"least_active_customers":  reports.CategoryRanking,
		"cumulative_sales":        reports.CategoryTrends,
		"product_performance_yoy": reports.CategoryTrends,
		"customer_segments":       reports.CategorySegmentation,
		"category_contribution":   reports.CategoryPartWhole,
		"customer_report":         reports.CategoryReporting,
		"product_report":          reports.CategoryReporting,
	}

	for name, category := range knownReports {
		t.Run(name, func(t *testing.T) {
			r, err := reports.Get(name)
			if err != nil {
				t.Fatalf("Failed to get report '%s': %v", name, err)
			}
			if r.Name != name {
				t.Errorf("Report name mismatch: expected '%s', got '%s'", name, r.Name)
			}
			if r.Category != category {
				t.Errorf("Report '%s' category: expected '%s', got '%s'", name, category, r.Category)
			}
			if r.Description == "" {
				t.Error("Report description should not be empty")
			}
		})
	}
}

func TestGetUnknownReport(t *testing.T) {
	for _, name := range []string{"nonexistent", ""} {
		_, err := reports.Get(name)
		if err == nil {
			t.Fatalf("Expected error for report %q, got nil", name)
		}
		if !errors.Is(err, reports.ErrUnknownReport) {
			t.Errorf("Expected ErrUnknownReport, got %v", err)
		}
	}
}

func TestList(t *testing.T) {
	names := reports.List()
	if len(names) == 0 {
		t.Fatal("List returned empty slice")
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Errorf("Report '%s' listed twice", name)
		}
		seen[name] = true
	}

	// Catalog order starts with exploration and ends with reporting
	first, _ := reports.Get(names[0])
	last, _ := reports.Get(names[len(names)-1])
	if first.Category != reports.CategoryExploration {
		t.Errorf("Expected first report in exploration, got %s", first.Category)
	}
	if last.Category != reports.CategoryReporting {
		t.Errorf("Expected last report in reporting, got %s", last.Category)
	}
}

func TestCategories(t *testing.T) {
	got := reports.Categories()
	if len(got) != len(reports.CategoryOrder) {
		t.Fatalf("Expected %d categories, got %d: %v", len(reports.CategoryOrder), len(got), got)
	}
	for i, c := range reports.CategoryOrder {
		if got[i] != c {
			t.Errorf("Category %d: expected '%s', got '%s'", i, c, got[i])
		}
	}
}

func TestByCategory(t *testing.T) {
	ranking := reports.ByCategory(reports.CategoryRanking)
	if len(ranking) != 5 {
		t.Errorf("Expected 5 ranking reports, got %d", len(ranking))
	}
	for i := 1; i < len(ranking); i++ {
		if ranking[i-1].Name > ranking[i].Name {
			t.Errorf("ByCategory not sorted: %s before %s", ranking[i-1].Name, ranking[i].Name)
		}
	}

	if got := reports.ByCategory("nonexistent"); len(got) != 0 {
		t.Errorf("Expected no reports for unknown category, got %d", len(got))
	}
}

func TestRequiresViews(t *testing.T) {
	for _, r := range reports.All() {
		want := r.Category == reports.CategoryReporting
		if r.RequiresViews != want {
			t.Errorf("Report '%s': RequiresViews = %v, want %v", r.Name, r.RequiresViews, want)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when registering a duplicate report")
		}
	}()
	reports.Register(&reports.Report{
		Name:  "key_metrics",
		Build: reports.Static("SELECT 1"),
	})
}

func TestRegisterInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when registering a report without Build")
		}
	}()
	reports.Register(&reports.Report{Name: "no_build"})
}
