// Package report exports detection results as spreadsheets, one sheet per
// algorithm. Rows are flattened: nested objects become dotted columns and
// nested lists are written as JSON text.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Section is one named table of results.
type Section struct {
	Name string
	Rows any
}

// Table is a flattened section ready to be written.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Flatten converts a slice of result values into a table. rows must marshal
// to a JSON array of objects; scalars become a single "value" column.
func Flatten(rows any) (Table, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return Table{}, fmt.Errorf("encode rows: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return Table{}, fmt.Errorf("rows must be a list: %w", err)
	}

	flat := make([]map[string]any, 0, len(items))
	columns := map[string]bool{}
	for _, item := range items {
		row := map[string]any{}
		if obj, ok := item.(map[string]any); ok {
			flattenInto(row, "", obj)
		} else {
			row["value"] = cell(item)
		}
		for k := range row {
			columns[k] = true
		}
		flat = append(flat, row)
	}

	t := Table{Columns: make([]string, 0, len(columns))}
	for c := range columns {
		t.Columns = append(t.Columns, c)
	}
	sort.Strings(t.Columns)

	for _, row := range flat {
		values := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			values[i] = row[c]
		}
		t.Rows = append(t.Rows, values)
	}
	return t, nil
}

func flattenInto(dst map[string]any, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(dst, key, nested)
			continue
		}
		dst[key] = cell(v)
	}
}

// cell converts a decoded JSON value into something a spreadsheet cell holds.
func cell(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any, map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return v
	}
}

// Write renders the sections as an xlsx workbook.
func Write(w io.Writer, sections ...Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("no sections to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sections {
		table, err := Flatten(s.Rows)
		if err != nil {
			return fmt.Errorf("section %s: %w", s.Name, err)
		}
		name := sheetName(s.Name)
		idx, err := f.NewSheet(name)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeTable(f, name, table, header); err != nil {
			return fmt.Errorf("write sheet %s: %w", name, err)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	return f.Write(w)
}

// Save writes the workbook to path.
func Save(path string, sections ...Section) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, sections...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeTable(f *excelize.File, sheet string, t Table, headerStyle int) error {
	if len(t.Columns) == 0 {
		return f.SetCellValue(sheet, "A1", "no results")
	}

	headers := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return err
		}
	}
	return nil
}

// sheetName trims names to the 31 characters xlsx allows.
func sheetName(name string) string {
	if name == "" {
		name = "results"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
