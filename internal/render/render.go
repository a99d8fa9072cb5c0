//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package render writes report results as text tables, CSV or JSON.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-goldreports/internal/reports"
)

// Output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON}

// Render writes a single result in the given format.
func Render(w io.Writer, res *reports.Result, format string) error {
	switch format {
	case FormatTable, "":
		return renderTable(w, res)
	case FormatCSV:
		return renderCSV(w, res)
	case FormatJSON:
		return renderJSON(w, []*reports.Result{res}, false)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// RenderAll writes several results. Tables are preceded by a title line and
// separated by a blank line; CSV sections are separated by a blank line; JSON
// is a single array of report objects.
func RenderAll(w io.Writer, results []*reports.Result, format string) error {
	if format == FormatJSON {
		return renderJSON(w, results, true)
	}
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if format == FormatTable || format == "" {
			if _, err := fmt.Fprintf(w, "%s (%s, %d rows)\n", res.Report, res.Category, len(res.Rows)); err != nil {
				return err
			}
		}
		if err := Render(w, res, format); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, res *reports.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(res.Columns)

	for _, row := range res.Rows {
		table.Append(Strings(row))
	}
	table.Render()
	return nil
}

func renderCSV(w io.Writer, res *reports.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Columns); err != nil {
		return err
	}
	for _, row := range res.Rows {
		if err := cw.Write(Strings(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonReport struct {
	Report     string           `json:"report"`
	Category   string           `json:"category"`
	DurationMS float64          `json:"duration_ms"`
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
}

func renderJSON(w io.Writer, results []*reports.Result, many bool) error {
	out := make([]jsonReport, len(results))
	for i, res := range results {
		out[i] = jsonReport{
			Report:     res.Report,
			Category:   res.Category,
			DurationMS: float64(res.Duration.Microseconds()) / 1000,
			Columns:    res.Columns,
			Rows:       make([]map[string]any, len(res.Rows)),
		}
		for j, row := range res.Rows {
			obj := make(map[string]any, len(row))
			for k, v := range row {
				obj[res.Columns[k]] = jsonValue(v)
			}
			out[i].Rows[j] = obj
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if many {
		return enc.Encode(out)
	}
	return enc.Encode(out[0])
}

// jsonValue keeps decimals exact by encoding them as JSON numbers from their
// string form.
func jsonValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return json.Number(x.String())
	case time.Time:
		return FormatValue(x)
	default:
		return v
	}
}

// Strings formats every value of a row.
func Strings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = FormatValue(v)
	}
	return out
}

// FormatValue formats a normalized report value for text output. NULL is
// rendered as the empty string, dates without a time of day as 2006-01-02.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
