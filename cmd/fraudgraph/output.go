package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/report"
)

// printRows writes a result list as JSON or as a flattened table.
func printRows(cmd *cobra.Command, rows any) error {
	out := formatter(cmd)
	if jsonOutput(cmd) {
		return out.PrintJSON(rows)
	}

	table, err := report.Flatten(rows)
	if err != nil {
		return err
	}
	cells := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out.PrintTable(table.Columns, cells)
}

// parseProperties decodes a JSON object. Integral numbers become int64 so they
// are stored as graph integers.
func parseProperties(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return nil, graph.NewValidationError(fmt.Sprintf("properties must be a JSON object: %v", err))
	}
	for k, v := range props {
		props[k] = jsonValue(v)
	}
	return props, nil
}

// parseAssignments turns key=value pairs into a map. Values are read as JSON
// when they parse, otherwise kept as strings.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, graph.NewValidationError(fmt.Sprintf("expected key=value, got %q", pair))
		}
		out[key] = scalar(value)
	}
	return out, nil
}

func scalar(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return jsonValue(v)
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, item := range t {
			t[k] = jsonValue(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = jsonValue(item)
		}
		return t
	default:
		return v
	}
}
