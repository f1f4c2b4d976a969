package server

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// panelContent is the generic rendering of a panel's JSON document: a table
// for lists of records, otherwise a key/value list.
type panelContent struct {
	Columns []string
	Rows    [][]string
	Fields  []panelField
}

type panelField struct {
	Key   string
	Value string
}

// hiddenColumns are backend bookkeeping fields not worth a table column.
var hiddenColumns = map[string]bool{
	"__v":      true,
	"password": true,
}

func tabulate(doc any) panelContent {
	switch v := doc.(type) {
	case []any:
		return tableOf(v)
	case map[string]any:
		// Envelopes such as {"orders":[...]} or {"products":[...],"total":3}
		// render their single list as the table.
		if list, ok := soleList(v); ok {
			return tableOf(list)
		}
		keys := visibleKeys(v)
		fields := make([]panelField, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, panelField{Key: k, Value: cell(v[k])})
		}
		return panelContent{Fields: fields}
	case nil:
		return panelContent{}
	default:
		return panelContent{Fields: []panelField{{Key: "value", Value: cell(v)}}}
	}
}

func soleList(m map[string]any) ([]any, bool) {
	var found []any
	n := 0
	for _, v := range m {
		if list, ok := v.([]any); ok {
			found = list
			n++
		}
	}
	return found, n == 1
}

func tableOf(items []any) panelContent {
	if len(items) == 0 {
		return panelContent{}
	}

	seen := map[string]bool{}
	scalar := false
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			scalar = true
			continue
		}
		for _, k := range visibleKeys(record) {
			seen[k] = true
		}
	}

	if len(seen) == 0 || scalar {
		rows := make([][]string, len(items))
		for i, item := range items {
			rows[i] = []string{cell(item)}
		}
		return panelContent{Columns: []string{"value"}, Rows: rows}
	}

	columns := slices.Collect(maps.Keys(seen))
	slices.SortFunc(columns, compareColumns)

	rows := make([][]string, len(items))
	for i, item := range items {
		record := item.(map[string]any)
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = cell(record[c])
		}
		rows[i] = row
	}
	return panelContent{Columns: columns, Rows: rows}
}

func visibleKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if !hiddenColumns[k] {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, compareColumns)
	return keys
}

// compareColumns sorts _id first, then alphabetically.
func compareColumns(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "_id":
		return -1
	case b == "_id":
		return 1
	case a < b:
		return -1
	default:
		return 1
	}
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		// Populated references, e.g. {"_id":..., "name":"Books"}.
		for _, k := range []string{"name", "title", "email"} {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
	case []any:
		return fmt.Sprintf("%d items", len(t))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
