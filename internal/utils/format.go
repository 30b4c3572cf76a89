package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

/**
 * Convert a struct into an ordered map keyed by its json tags
 * @param {interface{}} v - Struct value
 * @returns {*orderedmap.OrderedMap} Fields in declaration order
 * @returns {error} Marshal error
 */
func StructToOrderedMap(v interface{}) (*orderedmap.OrderedMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := orderedmap.New()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// PrintFormat 以表格形式输出到标准输出
func PrintFormat(dataList []*orderedmap.OrderedMap) {
	RenderTable(os.Stdout, dataList)
}

/**
 * Render records as a table
 * @param {io.Writer} w - Output
 * @param {[]*orderedmap.OrderedMap} dataList - Records, the first one decides the columns
 * @description
 * - Column titles are the keys upper-cased with "_" turned into spaces
 * - Missing keys render as empty cells
 */
func RenderTable(w io.Writer, dataList []*orderedmap.OrderedMap) {
	if len(dataList) == 0 {
		return
	}
	keys := dataList[0].Keys()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatUpper

	header := make(table.Row, 0, len(keys))
	for _, k := range keys {
		header = append(header, strings.ReplaceAll(k, "_", " "))
	}
	t.AppendHeader(header)

	for _, m := range dataList {
		row := make(table.Row, 0, len(keys))
		for _, k := range keys {
			v, ok := m.Get(k)
			if !ok || v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, formatCell(v))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%v", x)
	case bool:
		if x {
			return "Y"
		}
		return "N"
	default:
		data, _ := json.Marshal(x)
		return string(data)
	}
}
