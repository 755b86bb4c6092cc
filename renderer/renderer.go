// Package renderer turns terminal data into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/papertrade"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates = must(fs.Sub(templatesFS, "templates"))

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var funcs = template.FuncMap{
	"cell":      cell,
	"sparkline": Sparkline,
	"last":      func(h []papertrade.Sample) papertrade.Sample { return h[len(h)-1] },
}

// cell escapes a value so that it can be used inside a table cell.
func cell(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderWatchList renders the watch-list as a table, with the refresh status.
func RenderWatchList(w *WatchList) string {
	return renderTemplate("watchlist", "watchlist.md", nil, w)
}

// RenderDetail renders a single instrument with its chart and the position held, if any.
func RenderDetail(d *Detail) string {
	partials := map[string]string{
		"detail_position": "",
	}
	if d.Position != nil {
		partials["detail_position"] = "detail_position.md"
	}
	return renderTemplate("detail", "detail.md", partials, d)
}

// RenderHolding renders the portfolio report.
func RenderHolding(h *papertrade.HoldingReport) string {
	partials := map[string]string{
		"holding_positions": "holding_positions.md",
	}
	if len(h.Positions) == 0 {
		partials["holding_positions"] = "holding_empty.md"
	}
	return renderTemplate("holding", "holding.md", partials, h)
}

// RenderAnalysis renders an analysis of 'symbol'.
func RenderAnalysis(symbol string, a papertrade.Analysis) string {
	return renderTemplate("analysis", "analysis.md", nil, struct {
		Symbol string
		papertrade.Analysis
	}{symbol, a})
}

// RenderNews renders headlines followed by their sources.
func RenderNews(n papertrade.News) string {
	return renderTemplate("news", "news.md", nil, n)
}

// RenderFill renders an execution receipt.
func RenderFill(f papertrade.Fill) string {
	return renderTemplate("fill", "fill.md", nil, f)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
