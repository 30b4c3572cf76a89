package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iancoleman/orderedmap"
)

type sampleRow struct {
	TunnelID int     `json:"tunnel_id"`
	Name     string  `json:"name"`
	Healthy  bool    `json:"healthy"`
	Memory   float64 `json:"memory_mb"`
}

func TestStructToOrderedMapKeepsFieldOrder(t *testing.T) {
	m, err := StructToOrderedMap(sampleRow{TunnelID: 3, Name: "LLUSTR[3]", Healthy: true, Memory: 1.5})
	if err != nil {
		t.Fatalf("StructToOrderedMap: %v", err)
	}
	want := []string{"tunnel_id", "name", "healthy", "memory_mb"}
	if got := m.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestRenderTable(t *testing.T) {
	var rows []*orderedmap.OrderedMap
	for _, r := range []sampleRow{{0, "LLUSTR[0]", true, 20}, {3, "LLUSTR[3]", false, 21.5}} {
		m, _ := StructToOrderedMap(r)
		rows = append(rows, m)
	}

	var buf bytes.Buffer
	RenderTable(&buf, rows)
	out := buf.String()
	for _, want := range []string{"TUNNEL ID", "MEMORY MB", "LLUSTR[3]", "21.5", " N "} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	RenderTable(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("empty input rendered %q", buf.String())
	}
}
