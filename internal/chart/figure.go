package chart

import (
	"fmt"

	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
)

// Options controls labels and styling of the distribution chart.
type Options struct {
	Instrument string `yaml:"instrument"`
	XTitle     string `yaml:"x_title"`
	YTitle     string `yaml:"y_title"`
	UpColor    string `yaml:"up_color"`
	DownColor  string `yaml:"down_color"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TickAngle  int    `yaml:"tick_angle"`
	FontFamily string `yaml:"font_family"`
	FontSize   int    `yaml:"font_size"`
	FontColor  string `yaml:"font_color"`
	// PNGFont is an optional TrueType file used by the static renderer (CJK titles need one).
	PNGFont string `yaml:"png_font"`
}

// DefaultOptions mirrors the layout of the GBP/JPY history viewer.
func DefaultOptions() Options {
	return Options{
		Instrument: "镑日",
		XTitle:     "时间",
		YTitle:     "价格",
		UpColor:    "green",
		DownColor:  "red",
		Width:      1800,
		Height:     1000,
		TickAngle:  50,
		FontFamily: "Arial, monospace",
		FontSize:   12,
		FontColor:  "#7f7f7f",
	}
}

// Figure is a plotly.js figure: {data, layout}.
type Figure struct {
	Data   []BoxTrace `json:"data"`
	Layout Layout     `json:"layout"`
}

type BoxTrace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name"`
	Y      []float64 `json:"y"`
	Marker Marker    `json:"marker"`
}

type Marker struct {
	Color string `json:"color"`
}

type Layout struct {
	Title  Text `json:"title"`
	XAxis  Axis `json:"xaxis"`
	YAxis  Axis `json:"yaxis"`
	Font   Font `json:"font"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type Axis struct {
	Title       Text         `json:"title"`
	TickAngle   int          `json:"tickangle"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	Size   int    `json:"size,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Title formats the chart title for a selection.
func Title(sel model.Selection, instrument string) string {
	return fmt.Sprintf("%s %s - %s %s价格分布",
		sel.Date.Format(model.DateLayout), sel.Start, sel.End, instrument)
}

// Build converts a pipeline result into a figure, one box trace per series.
func Build(res *pipeline.Result, opts Options) *Figure {
	fig := &Figure{
		Data: make([]BoxTrace, 0, len(res.Series)),
		Layout: Layout{
			Title: Text{Text: Title(res.Selection, opts.Instrument)},
			XAxis: Axis{
				Title:       Text{Text: opts.XTitle},
				TickAngle:   opts.TickAngle,
				RangeSlider: &RangeSlider{Visible: true},
			},
			YAxis:  Axis{Title: Text{Text: opts.YTitle}},
			Font:   Font{Family: opts.FontFamily, Size: opts.FontSize, Color: opts.FontColor},
			Width:  opts.Width,
			Height: opts.Height,
		},
	}
	for _, s := range res.Series {
		color := opts.DownColor
		if s.Tag == model.TagUp {
			color = opts.UpColor
		}
		fig.Data = append(fig.Data, BoxTrace{
			Type:   "box",
			Name:   s.Label,
			Y:      s.Values,
			Marker: Marker{Color: color},
		})
	}
	return fig
}
