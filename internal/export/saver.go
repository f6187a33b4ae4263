package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"PriceBox/internal/chart"
	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
)

// Report is one rendered selection ready to be written out.
type Report struct {
	Result *pipeline.Result
	Figure *chart.Figure
}

// NewReport builds the figure for res.
func NewReport(res *pipeline.Result, opts chart.Options) *Report {
	return &Report{Result: res, Figure: chart.Build(res, opts)}
}

// Saver writes a report in one file format.
type Saver interface {
	Save(rep *Report, path string) error
	Extension() string
}

// Formats lists the supported format names.
var Formats = []string{"html", "png", "json", "csv", "parquet"}

// NewSaver returns the saver for format, or nil if the format is not supported.
// fontPath is only used by the png saver.
func NewSaver(format, fontPath string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html":
		return HTMLSaver{}
	case "png":
		return PNGSaver{FontPath: fontPath}
	case "json":
		return JSONSaver{}
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// FileName returns "<date>_<start>_<end>.<ext>" with colons dropped from the times.
func FileName(sel model.Selection, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		sel.Date.Format(model.DateLayout),
		strings.ReplaceAll(sel.Start.String(), ":", ""),
		strings.ReplaceAll(sel.End.String(), ":", ""),
		ext)
}

// PathFor places a report under dir/<date>/.
func PathFor(dir string, sel model.Selection, ext string) string {
	return filepath.Join(dir, sel.Date.Format(model.DateLayout), FileName(sel, ext))
}

// SaveAll writes rep once per format under dir/<date>/ and returns the written paths.
func SaveAll(rep *Report, dir string, formats []string, fontPath string) ([]string, error) {
	sel := rep.Result.Selection
	if err := os.MkdirAll(filepath.Join(dir, sel.Date.Format(model.DateLayout)), 0755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	var paths []string
	for _, format := range formats {
		s := NewSaver(format, fontPath)
		if s == nil {
			return paths, fmt.Errorf("unsupported format %q", format)
		}
		path := PathFor(dir, sel, s.Extension())
		if err := s.Save(rep, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", s.Extension(), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
