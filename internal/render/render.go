// Package render turns the table view into HTML. The snapshot path and the
// health probe path share the "status" template so both produce identical markup.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"strconv"
	"time"

	"tunnel-dashboard/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.New("").ParseFS(templateFiles, "templates/*.html"))

// Templates returns the parsed template set ("dashboard", "rows", "status").
func Templates() *template.Template {
	return templates
}

// PageData feeds the "dashboard" template
type PageData struct {
	Title                 string
	Generation            uint64
	TotalMemory           string
	Rows                  template.HTML
	NotificationTTLMillis int64
}

// StatusCell renders the inner markup of a status cell.
func StatusCell(state models.TunnelState) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "status", string(state)); err != nil {
		return template.HTML(template.HTMLEscapeString(string(state)))
	}
	return template.HTML(buf.String())
}

// Rows renders the table body for a snapshot.
func Rows(rows []models.TunnelRow) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "rows", rows); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// TotalMemory formats the aggregate memory scalar ("41.5 MB").
func TotalMemory(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64) + " MB"
}

// Page builds the data for a full page render.
func Page(title string, view *models.TableView, ttl time.Duration) (PageData, error) {
	rows, err := Rows(view.Rows)
	if err != nil {
		return PageData{}, err
	}
	return PageData{
		Title:                 title,
		Generation:            view.Generation,
		TotalMemory:           TotalMemory(view.TotalMemoryMB),
		Rows:                  rows,
		NotificationTTLMillis: ttl.Milliseconds(),
	}, nil
}
