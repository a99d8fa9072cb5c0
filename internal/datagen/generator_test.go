package datagen

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100B", 100, false},
		{"1KB", 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1.5mb", int64(1.5 * 1024 * 1024), false},
		{"2G", 2 * 1024 * 1024 * 1024, false},
		{"10", 0, true},
		{"MB", 0, true},
		{"10XB", 0, true},
		{"-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestSizeCalculator(t *testing.T) {
	calc := NewSizeCalculator([]TableSizeInfo{
		{Name: "dim", BaseRowSize: 100, ScaleRatio: 1, IndexFactor: 1.0, MinRows: 10},
		{Name: "fact", BaseRowSize: 100, ScaleRatio: 9, IndexFactor: 1.0},
	})

	counts := calc.CalculateRowCounts(100 * 1000)
	if counts["dim"] != 100 {
		t.Errorf("dim rows = %d, want 100", counts["dim"])
	}
	if counts["fact"] != 900 {
		t.Errorf("fact rows = %d, want 900", counts["fact"])
	}
	if size := calc.EstimatedSize(counts); size != 100*1000 {
		t.Errorf("EstimatedSize = %d, want %d", size, 100*1000)
	}

	// Tiny targets still honour MinRows
	small := calc.CalculateRowCounts(10)
	if small["dim"] != 10 {
		t.Errorf("dim rows = %d, want MinRows 10", small["dim"])
	}
	if small["fact"] != 1 {
		t.Errorf("fact rows = %d, want 1", small["fact"])
	}

	if len(NewSizeCalculator(nil).CalculateRowCounts(1000)) != 0 {
		t.Error("empty calculator should return no counts")
	}
}

func TestNumeric(t *testing.T) {
	n := Numeric(dec("1234.56"))
	if !n.Valid {
		t.Fatal("Numeric should be valid")
	}
	if n.Exp != -2 || n.Int.Int64() != 123456 {
		t.Errorf("Numeric = %s e%d, want 123456 e-2", n.Int, n.Exp)
	}
}

type fakeCopier struct {
	calls [][][]any
	err   error
}

func (c *fakeCopier) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	var rows [][]any
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		rows = append(rows, values)
	}
	c.calls = append(c.calls, rows)
	return int64(len(rows)), nil
}

func TestBatchWriter(t *testing.T) {
	ctx := context.Background()
	copier := &fakeCopier{}
	w := NewBatchWriter(copier, pgx.Identifier{"gold", "dim_products"},
		[]string{"product_key", "product_name"}, 5, CopyConfig{BatchSize: 2, ProgressInterval: 1})

	for i := 1; i <= 5; i++ {
		if err := w.Add(ctx, i, "Road-150"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if len(copier.calls) != 3 {
		t.Fatalf("expected 3 COPY batches, got %d", len(copier.calls))
	}
	if w.Rows() != 5 {
		t.Errorf("Rows() = %d, want 5", w.Rows())
	}
	if len(copier.calls[2]) != 1 {
		t.Errorf("last batch has %d rows, want 1", len(copier.calls[2]))
	}

	if err := w.Add(ctx, 6); err == nil {
		t.Error("expected error for wrong column count")
	}
}

func TestBatchWriterCopyError(t *testing.T) {
	ctx := context.Background()
	copier := &fakeCopier{err: errors.New("relation does not exist")}
	w := NewBatchWriter(copier, pgx.Identifier{"gold", "fact_sales"}, []string{"order_number"}, 1, DefaultCopyConfig())

	if err := w.Add(ctx, "SO43697"); err != nil {
		t.Fatalf("Add should buffer without error: %v", err)
	}
	if err := w.Close(ctx); err == nil {
		t.Error("expected Close to surface the COPY error")
	}
}
