package chart

import (
	_ "embed"
	"html/template"
	"io"
)

// PlotlyCDN is the plotly.js bundle loaded by generated pages.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

//go:embed templates/standalone.html
var standaloneHTML string

var standaloneTmpl = template.Must(template.New("standalone").Parse(standaloneHTML))

// RenderHTML writes a self-contained interactive page for fig.
func RenderHTML(w io.Writer, fig *Figure) error {
	return standaloneTmpl.Execute(w, struct {
		Title     string
		PlotlyURL string
		Figure    *Figure
	}{
		Title:     fig.Layout.Title.Text,
		PlotlyURL: PlotlyCDN,
		Figure:    fig,
	})
}
