// Package datagen provides data generation utilities for pgedge-goldreports
// fixtures: table sizing, bulk loading and progress reporting.
package datagen

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-goldreports/internal/logging"
)

// CopyConfig configures bulk loading.
type CopyConfig struct {
	// BatchSize is the number of rows sent per COPY.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultCopyConfig returns default bulk load configuration.
func DefaultCopyConfig() CopyConfig {
	return CopyConfig{
		BatchSize:        5000,
		ProgressInterval: 50000,
	}
}

// Copier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// BatchWriter buffers rows and flushes them with COPY.
type BatchWriter struct {
	db       Copier
	table    pgx.Identifier
	columns  []string
	batch    [][]any
	size     int
	progress *ProgressReporter
}

// NewBatchWriter creates a writer for the given table and columns. total is
// only used for progress reporting.
func NewBatchWriter(db Copier, table pgx.Identifier, columns []string, total int64, cfg CopyConfig) *BatchWriter {
	size := cfg.BatchSize
	if size <= 0 {
		size = DefaultCopyConfig().BatchSize
	}
	return &BatchWriter{
		db:       db,
		table:    table,
		columns:  columns,
		batch:    make([][]any, 0, size),
		size:     size,
		progress: NewProgressReporter(strings.Join(table, "."), total, cfg.ProgressInterval),
	}
}

// Add appends a row, flushing when the batch is full.
func (w *BatchWriter) Add(ctx context.Context, row ...any) error {
	if len(row) != len(w.columns) {
		return fmt.Errorf("%s: got %d values for %d columns", w.progress.tableName, len(row), len(w.columns))
	}
	w.batch = append(w.batch, row)
	if len(w.batch) >= w.size {
		return w.Flush(ctx)
	}
	return nil
}

// Flush writes any buffered rows.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.batch) == 0 {
		return nil
	}
	n, err := w.db.CopyFrom(ctx, w.table, w.columns, pgx.CopyFromRows(w.batch))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", w.progress.tableName, err)
	}
	w.progress.Update(n)
	w.batch = w.batch[:0]
	return nil
}

// Close flushes remaining rows and logs completion.
func (w *BatchWriter) Close(ctx context.Context) error {
	if err := w.Flush(ctx); err != nil {
		return err
	}
	w.progress.Done()
	return nil
}

// Rows returns the number of rows written so far.
func (w *BatchWriter) Rows() int64 {
	return w.progress.currentRow
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = DefaultCopyConfig().ProgressInterval
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		event := logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow)
		if p.totalRows > 0 {
			event = event.
				Int64("total", p.totalRows).
				Float64("percent", float64(p.currentRow)/float64(p.totalRows)*100)
		}
		event.Msg("Loading data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

// TableSizeInfo holds size information for a table.
type TableSizeInfo struct {
	Name        string
	BaseRowSize int64   // Average row size in bytes
	ScaleRatio  float64 // Rows per scale unit
	IndexFactor float64 // Estimated index overhead (e.g., 1.3 = 30% overhead)
	MinRows     int64   // Floor applied after scaling
}

// SizeCalculator helps calculate row counts based on target size.
type SizeCalculator struct {
	tables []TableSizeInfo
}

// NewSizeCalculator creates a new size calculator.
func NewSizeCalculator(tables []TableSizeInfo) *SizeCalculator {
	return &SizeCalculator{tables: tables}
}

func (t TableSizeInfo) indexFactor() float64 {
	if t.IndexFactor == 0 {
		return 1.3
	}
	return t.IndexFactor
}

// CalculateRowCounts calculates row counts for each table given a target size.
func (c *SizeCalculator) CalculateRowCounts(targetSize int64) map[string]int64 {
	var sizePerUnit float64
	for _, t := range c.tables {
		sizePerUnit += float64(t.BaseRowSize) * t.ScaleRatio * t.indexFactor()
	}

	rowCounts := make(map[string]int64, len(c.tables))
	if sizePerUnit == 0 {
		return rowCounts
	}

	scaleFactor := float64(targetSize) / sizePerUnit
	for _, t := range c.tables {
		rows := int64(scaleFactor * t.ScaleRatio)
		rowCounts[t.Name] = max(rows, t.MinRows, 1)
	}

	return rowCounts
}

// EstimatedSize returns the estimated size for given row counts.
func (c *SizeCalculator) EstimatedSize(rowCounts map[string]int64) int64 {
	var total int64
	for _, t := range c.tables {
		total += int64(float64(rowCounts[t.Name]) * float64(t.BaseRowSize) * t.indexFactor())
	}
	return total
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// ParseSize converts a size string (e.g., "5GB", "500MB") to bytes.
func ParseSize(s string) (int64, error) {
	var value float64
	var unit string

	_, err := fmt.Sscanf(s, "%f%s", &value, &unit)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %s", s)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", s)
	}

	var multiplier int64
	switch strings.ToUpper(unit) {
	case "B":
		multiplier = 1
	case "KB", "K":
		multiplier = 1024
	case "MB", "M":
		multiplier = 1024 * 1024
	case "GB", "G":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size unit: %s", unit)
	}

	return int64(value * float64(multiplier)), nil
}

// Numeric converts a decimal to the pgx NUMERIC representation without
// going through float64.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
