package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"PriceBox/internal/calculator"
)

const (
	boxHalfWidth = 0.3
	maxXTicks    = 48
)

var namedColors = map[string]drawing.Color{
	"green": drawing.ColorFromHex("008000"),
	"red":   drawing.ColorFromHex("ff0000"),
	"blue":  drawing.ColorFromHex("0000ff"),
	"black": drawing.ColorFromHex("000000"),
	"gray":  drawing.ColorFromHex("808080"),
}

// parseColor accepts the CSS names above or #rrggbb.
func parseColor(s string) drawing.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
	}
	return drawing.ColorFromHex("808080")
}

// loadFont reads a TrueType file; an empty path keeps go-chart's default font.
func loadFont(path string) (*truetype.Font, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// RenderPNG draws fig as a static box plot: Q1-Q3 box, median line, whiskers to min and max.
func RenderPNG(w io.Writer, fig *Figure, fontPath string) error {
	if len(fig.Data) == 0 {
		return errors.New("figure has no traces")
	}
	font, err := loadFont(fontPath)
	if err != nil {
		return err
	}

	var series []gochart.Series
	var ticks []gochart.Tick
	low, high := 0.0, 0.0
	step := (len(fig.Data) + maxXTicks - 1) / maxXTicks
	for i, tr := range fig.Data {
		box, err := calculator.BoxStats(tr.Y)
		if err != nil {
			return fmt.Errorf("trace %s: %w", tr.Name, err)
		}
		if i == 0 || box.Min < low {
			low = box.Min
		}
		if i == 0 || box.Max > high {
			high = box.Max
		}
		series = append(series, boxSeries(float64(i), box, parseColor(tr.Marker.Color))...)
		if i%step == 0 {
			ticks = append(ticks, gochart.Tick{Value: float64(i), Label: tr.Name})
		}
	}
	yMin, yMax := calculator.PaddedRange(low, high, 0.05)

	ch := gochart.Chart{
		Title:      fig.Layout.Title.Text,
		Width:      fig.Layout.Width,
		Height:     fig.Layout.Height,
		Font:       font,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:      fig.Layout.XAxis.Title.Text,
			Range:     &gochart.ContinuousRange{Min: -0.5, Max: float64(len(fig.Data)) - 0.5},
			Ticks:     ticks,
			TickStyle: gochart.Style{TextRotationDegrees: float64(fig.Layout.XAxis.TickAngle)},
		},
		YAxis: gochart.YAxis{
			Name:  fig.Layout.YAxis.Title.Text,
			Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.FormatFloat(f, 'f', 4, 64)
				}
				return ""
			},
		},
		Series: series,
	}
	return ch.Render(gochart.PNG, w)
}

func boxSeries(x float64, b calculator.Box, color drawing.Color) []gochart.Series {
	style := gochart.Style{StrokeColor: color, StrokeWidth: 1.5}
	l, r := x-boxHalfWidth, x+boxHalfWidth
	capL, capR := x-boxHalfWidth/2, x+boxHalfWidth/2
	line := func(xs, ys []float64) gochart.Series {
		return gochart.ContinuousSeries{Style: style, XValues: xs, YValues: ys}
	}
	return []gochart.Series{
		line([]float64{l, r, r, l, l}, []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1}),
		line([]float64{l, r}, []float64{b.Median, b.Median}),
		line([]float64{x, x}, []float64{b.Min, b.Q1}),
		line([]float64{x, x}, []float64{b.Q3, b.Max}),
		line([]float64{capL, capR}, []float64{b.Min, b.Min}),
		line([]float64{capL, capR}, []float64{b.Max, b.Max}),
	}
}
