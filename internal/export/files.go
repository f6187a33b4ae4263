package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"PriceBox/internal/chart"
)

// writeFile creates path and hands it to write. A failed close is reported
// when write itself succeeded.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// HTMLSaver writes a standalone interactive page.
type HTMLSaver struct{}

func (HTMLSaver) Extension() string { return "html" }

func (HTMLSaver) Save(rep *Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return chart.RenderHTML(w, rep.Figure)
	})
}

// PNGSaver writes a static box plot.
type PNGSaver struct {
	FontPath string
}

func (PNGSaver) Extension() string { return "png" }

func (s PNGSaver) Save(rep *Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return chart.RenderPNG(w, rep.Figure, s.FontPath)
	})
}

// JSONSaver writes the plotly figure (indent).
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(rep *Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.Figure)
	})
}

// ValueRow is one flattened value of one bucket.
type ValueRow struct {
	Label string  `parquet:"label"`
	Tag   string  `parquet:"tag"`
	Index int32   `parquet:"index"`
	Value float64 `parquet:"value"`
}

// Rows flattens the report series into one row per value.
func (r *Report) Rows() []ValueRow {
	var rows []ValueRow
	for _, s := range r.Result.Series {
		for i, v := range s.Values {
			rows = append(rows, ValueRow{Label: s.Label, Tag: string(s.Tag), Index: int32(i), Value: v})
		}
	}
	return rows
}

// CSVSaver writes rows with header label,tag,index,value.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(rep *Report, path string) error {
	return writeFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{"label", "tag", "index", "value"}); err != nil {
			return err
		}
		for _, row := range rep.Rows() {
			if err := w.Write([]string{
				row.Label,
				row.Tag,
				strconv.Itoa(int(row.Index)),
				strconv.FormatFloat(row.Value, 'f', -1, 64),
			}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// ParquetSaver writes the same rows as CSVSaver.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rep *Report, path string) error {
	return parquet.WriteFile(path, rep.Rows())
}
