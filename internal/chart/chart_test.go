package chart

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Selection: model.Selection{
			Date:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Start: model.MustClock("9:00"),
			End:   model.MustClock("23:55"),
		},
		Series: []model.ChartSeries{
			{Label: "09:00", Values: []float64{1.30, 1.31, 1.29, 1.305}, Tag: model.TagUp},
			{Label: "09:05", Values: []float64{1.305, 1.32, 1.30, 1.30}, Tag: model.TagDown},
		},
		Records: 2,
	}
}

func TestBuild(t *testing.T) {
	fig := Build(sampleResult(), DefaultOptions())

	if want := "2024-01-01 09:00 - 23:55 镑日价格分布"; fig.Layout.Title.Text != want {
		t.Errorf("expected title %q, got %q", want, fig.Layout.Title.Text)
	}
	if len(fig.Data) != 2 {
		t.Fatalf("expected 2 traces, got %d", len(fig.Data))
	}
	if fig.Data[0].Type != "box" || fig.Data[0].Name != "09:00" || fig.Data[0].Marker.Color != "green" {
		t.Errorf("unexpected first trace: %+v", fig.Data[0])
	}
	if fig.Data[1].Marker.Color != "red" {
		t.Errorf("expected red for down bucket, got %s", fig.Data[1].Marker.Color)
	}
	if fig.Layout.XAxis.RangeSlider == nil || !fig.Layout.XAxis.RangeSlider.Visible {
		t.Error("expected visible range slider")
	}
	if fig.Layout.XAxis.Title.Text != "时间" || fig.Layout.YAxis.Title.Text != "价格" {
		t.Errorf("unexpected axis titles: %q %q", fig.Layout.XAxis.Title.Text, fig.Layout.YAxis.Title.Text)
	}
	if fig.Layout.Width != 1800 || fig.Layout.Height != 1000 || fig.Layout.XAxis.TickAngle != 50 {
		t.Errorf("unexpected layout size: %+v", fig.Layout)
	}
}

func TestFigureJSON(t *testing.T) {
	data, err := json.Marshal(Build(sampleResult(), DefaultOptions()))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"rangeslider":{"visible":true}`, `"tickangle":50`, `"type":"box"`, `"y":[1.3,1.31,1.29,1.305]`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("figure JSON missing %s: %s", key, data)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, Build(sampleResult(), DefaultOptions())); err != nil {
		t.Fatal(err)
	}
	page := buf.String()
	if !strings.Contains(page, PlotlyCDN) {
		t.Error("page does not load plotly")
	}
	if !strings.Contains(page, `"rangeslider"`) || !strings.Contains(page, "Plotly.newPlot") {
		t.Error("page does not embed the figure")
	}
}

func TestRenderPNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 640, 400
	var buf bytes.Buffer
	if err := RenderPNG(&buf, Build(sampleResult(), opts), ""); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderPNG_NoTraces(t *testing.T) {
	if err := RenderPNG(&bytes.Buffer{}, &Figure{}, ""); err == nil {
		t.Error("expected error for empty figure")
	}
}

func TestRenderPNG_MissingFont(t *testing.T) {
	err := RenderPNG(&bytes.Buffer{}, Build(sampleResult(), DefaultOptions()), "/nonexistent/font.ttf")
	if err == nil {
		t.Error("expected font error")
	}
}

func TestParseColor(t *testing.T) {
	if parseColor("green") != namedColors["green"] {
		t.Error("named color not resolved")
	}
	if c := parseColor("#7f7f7f"); c.R != 0x7f || c.G != 0x7f || c.B != 0x7f {
		t.Errorf("hex color not parsed: %+v", c)
	}
}
