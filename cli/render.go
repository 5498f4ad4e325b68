// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/netdata/netdata/go/promtable/pkg/asynctable"
	"github.com/netdata/netdata/go/promtable/pkg/funcapi"
	"github.com/netdata/netdata/go/promtable/pkg/kubetables"
	"github.com/netdata/netdata/go/promtable/pkg/promql"
)

const (
	OutputTable   = "table"
	OutputJSON    = "json"
	OutputQueries = "queries"
)

const noValue = "-"

// Render writes the view in the given output format. Records are only used by
// the queries output.
func Render(w io.Writer, output string, v asynctable.View, records []QueryRecord) error {
	switch output {
	case OutputJSON:
		return RenderJSON(w, v)
	case OutputQueries:
		return RenderQueries(w, records)
	case OutputTable, "":
		return RenderTable(w, v)
	default:
		return fmt.Errorf("unknown output format '%s'", output)
	}
}

// RenderTable writes the view as a text table. Children are indented below
// their parent. Grouped columns get a second header row.
func RenderTable(w io.Writer, v asynctable.View) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	grouped := false
	top := make(table.Row, 0, len(v.Columns))
	sub := make(table.Row, 0, len(v.Columns))
	for _, col := range v.Columns {
		header := col.Header
		if col.ID == v.Sorting.ColumnID {
			header += sortMark(v.Sorting)
		}
		if col.GroupHeader != "" {
			grouped = true
			top = append(top, col.GroupHeader)
			sub = append(sub, header)
		} else {
			top = append(top, header)
			sub = append(sub, "")
		}
	}
	if grouped {
		t.AppendHeader(top, table.RowConfig{AutoMerge: true})
		t.AppendHeader(sub)
	} else {
		t.AppendHeader(top)
	}

	for _, row := range v.Rows {
		t.AppendRow(tableRow(v.Columns, row, ""))
		for _, child := range row.Children {
			t.AppendRow(tableRow(v.Columns, child, "  "))
		}
	}

	t.Render()

	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(v.Rows), v.Total)
	if v.Err != nil {
		_, _ = fmt.Fprintf(w, "error: %v\n", v.Err)
	}
	return nil
}

func sortMark(s asynctable.SortingState) string {
	if s.Direction == promql.Desc {
		return " ↓"
	}
	return " ↑"
}

func tableRow(columns []asynctable.ViewColumn, row asynctable.ViewRow, indent string) table.Row {
	out := make(table.Row, 0, len(columns))
	for i, col := range columns {
		s := FormatCell(col.Cell, row.Cells[col.ID])
		if i == 0 {
			s = indent + s
		}
		out = append(out, s)
	}
	return out
}

// FormatCell formats a cell value for text output. Missing values are shown as "-".
func FormatCell(cell asynctable.Cell, value any) string {
	if value == nil {
		return noValue
	}
	if cell.Kind != asynctable.CellFormatted {
		return fmt.Sprint(value)
	}

	f, ok := value.(float64)
	if !ok {
		return fmt.Sprint(value)
	}

	switch cell.Format {
	case funcapi.FormatBytes:
		if f < 0 {
			return "-" + humanize.IBytes(uint64(-f))
		}
		return humanize.IBytes(uint64(f))
	case funcapi.FormatDuration:
		now := time.Now()
		return strings.TrimSpace(humanize.RelTime(now.Add(-time.Duration(f*float64(time.Second))), now, "", ""))
	case funcapi.FormatPercent:
		return humanize.FtoaWithDigits(f, cell.Decimals) + "%"
	default:
		return humanize.CommafWithDigits(f, cell.Decimals)
	}
}

// RenderJSON writes the view as a function response. A view holding only an
// error is written as an unavailable response.
func RenderJSON(w io.Writer, v asynctable.View) error {
	resp := funcapi.BuildResponse(v, kubetables.Help(v.Table))
	if v.Err != nil && len(v.Rows) == 0 {
		resp = funcapi.UnavailableResponse(v.Err.Error())
	}

	return writeJSON(w, resp)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderError writes err as a function response when the output is json and
// does nothing otherwise.
func RenderError(w io.Writer, output, tableName string, err error) error {
	if output != OutputJSON || err == nil {
		return nil
	}

	var resp *funcapi.FunctionResponse
	switch {
	case errors.Is(err, kubetables.ErrUnknownTable):
		resp = funcapi.NotFoundResponse(tableName)
	case errors.Is(err, asynctable.ErrUnknownColumn),
		errors.Is(err, asynctable.ErrSortDisabled),
		errors.Is(err, asynctable.ErrUnknownRow):
		resp = funcapi.ErrorResponse(400, "%v", err)
	default:
		resp = funcapi.InternalErrorResponse("%v", err)
	}
	return writeJSON(w, resp)
}

// RenderQueries writes every recorded query with its outcome.
func RenderQueries(w io.Writer, records []QueryRecord) error {
	for i, r := range records {
		status := fmt.Sprintf("%d samples", r.Samples)
		if r.Err != nil {
			status = "error: " + r.Err.Error()
		}
		if _, err := fmt.Fprintf(w, "# %d %s (%s)\n%s\n\n", i+1, status, r.Took.Round(time.Millisecond), r.Expr); err != nil {
			return err
		}
	}
	return nil
}
