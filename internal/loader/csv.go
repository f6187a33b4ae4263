package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"PriceBox/internal/model"
)

// Columns names the six required header cells.
type Columns struct {
	Date  string `yaml:"date"`
	Time  string `yaml:"time"`
	Open  string `yaml:"open"`
	High  string `yaml:"high"`
	Low   string `yaml:"low"`
	Close string `yaml:"close"`
}

// DefaultColumns are the headers written by the MT4 history export.
var DefaultColumns = Columns{
	Date:  "日期",
	Time:  "时间",
	Open:  "开盘",
	High:  "最高",
	Low:   "最低",
	Close: "收盘",
}

var englishColumns = Columns{
	Date:  "date",
	Time:  "time",
	Open:  "open",
	High:  "high",
	Low:   "low",
	Close: "close",
}

// LookupEncoding maps a config name to a text decoder.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "utf-8", "utf8", "":
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q (use: gbk, gb18030, utf-8)", name)
	}
}

// CSVSource reads a delimited price history file.
type CSVSource struct {
	Path     string
	Encoding string
	Columns  Columns
}

// NewCSVSource creates a CSV source; zero-valued columns fall back to DefaultColumns.
func NewCSVSource(path, enc string, cols Columns) *CSVSource {
	if cols == (Columns{}) {
		cols = DefaultColumns
	}
	return &CSVSource{Path: path, Encoding: enc, Columns: cols}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

// Load reads and decodes the whole file.
func (s *CSVSource) Load() ([]model.Record, error) {
	enc, err := LookupEncoding(s.Encoding)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.Path, ErrMissingSource)
		}
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	return s.decode(transform.NewReader(f, enc.NewDecoder()))
}

func (s *CSVSource) decode(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty file: missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := s.locate(header)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		rec, err := parseRow(row, idx, s.Columns, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// columnIndex holds the position of each required column.
type columnIndex struct {
	date, time, open, high, low, close int
}

func (s *CSVSource) locate(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		pos[strings.ToLower(h)] = i
	}
	find := func(name, alias string) (int, error) {
		if i, ok := pos[strings.ToLower(name)]; ok {
			return i, nil
		}
		if i, ok := pos[alias]; ok {
			return i, nil
		}
		return 0, fmt.Errorf("missing column %q", name)
	}

	var idx columnIndex
	var err error
	if idx.date, err = find(s.Columns.Date, englishColumns.Date); err != nil {
		return idx, err
	}
	if idx.time, err = find(s.Columns.Time, englishColumns.Time); err != nil {
		return idx, err
	}
	if idx.open, err = find(s.Columns.Open, englishColumns.Open); err != nil {
		return idx, err
	}
	if idx.high, err = find(s.Columns.High, englishColumns.High); err != nil {
		return idx, err
	}
	if idx.low, err = find(s.Columns.Low, englishColumns.Low); err != nil {
		return idx, err
	}
	if idx.close, err = find(s.Columns.Close, englishColumns.Close); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex, cols Columns, line int) (model.Record, error) {
	var rec model.Record
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var err error
	if rec.Date, err = model.ParseDate(cell(idx.date)); err != nil {
		return rec, &ParseError{Line: line, Column: cols.Date, Value: cell(idx.date), Err: err}
	}
	if rec.Time, err = model.ParseClock(cell(idx.time)); err != nil {
		return rec, &ParseError{Line: line, Column: cols.Time, Value: cell(idx.time), Err: err}
	}
	prices := []struct {
		dst  *float64
		i    int
		name string
	}{
		{&rec.Open, idx.open, cols.Open},
		{&rec.High, idx.high, cols.High},
		{&rec.Low, idx.low, cols.Low},
		{&rec.Close, idx.close, cols.Close},
	}
	for _, p := range prices {
		v, err := strconv.ParseFloat(cell(p.i), 64)
		if err != nil {
			return rec, &ParseError{Line: line, Column: p.name, Value: cell(p.i), Err: err}
		}
		*p.dst = v
	}
	return rec, nil
}
