package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"PriceBox/internal/model"
)

const gbpjpySample = `日期,时间,开盘,最高,最低,收盘,成交量
2024-01-01,09:00,1.30,1.31,1.29,1.305,120
2024-01-01,09:05,1.305,1.32,1.30,1.31,98
2024-01-02,09:00,1.31,1.315,1.30,1.30,77
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCSVSource_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(gbpjpySample)
	if err != nil {
		t.Fatalf("encode gbk: %v", err)
	}
	path := writeFile(t, "gbk.csv", []byte(encoded))

	records, err := NewCSVSource(path, "gbk", Columns{}).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	first := records[0]
	if first.Date.Format(model.DateLayout) != "2024-01-01" || first.Time.String() != "09:00" {
		t.Errorf("unexpected first record key: %v %v", first.Date, first.Time)
	}
	if first.Open != 1.30 || first.High != 1.31 || first.Low != 1.29 || first.Close != 1.305 {
		t.Errorf("unexpected prices: %+v", first)
	}
}

func TestCSVSource_UTF8EnglishHeaders(t *testing.T) {
	data := "\ufeffDate,Time,Open,High,Low,Close\n2024-03-04,23:55,1,2,0.5,1.5\n"
	path := writeFile(t, "utf8.csv", []byte(data))

	records, err := NewCSVSource(path, "utf-8", Columns{}).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 || records[0].Time != model.MustClock("23:55") {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), "gbk", Columns{})
	_, err := src.Load()
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
	_, err = LoadDataset(src)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected wrapped ErrMissingSource, got %v", err)
	}
}

func TestCSVSource_ParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		column string
		line   int
	}{
		{"bad price", "date,time,open,high,low,close\n2024-01-01,09:00,1.3,x,1.2,1.3\n", "最高", 2},
		{"bad date", "date,time,open,high,low,close\n2024-01-01,09:00,1,1,1,1\n2024/01/02,09:00,1,1,1,1\n", "日期", 3},
		{"bad time", "date,time,open,high,low,close\n2024-01-01,9h00,1,1,1,1\n", "时间", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", []byte(tt.data))
			_, err := NewCSVSource(path, "utf-8", Columns{}).Load()
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Column != tt.column || pe.Line != tt.line {
				t.Errorf("expected %s at line %d, got %s at line %d", tt.column, tt.line, pe.Column, pe.Line)
			}
			if errors.Is(err, ErrMissingSource) {
				t.Error("parse failure must not look like a missing source")
			}
		})
	}
}

func TestCSVSource_MissingColumn(t *testing.T) {
	path := writeFile(t, "cols.csv", []byte("date,time,open,high,low\n2024-01-01,09:00,1,1,1\n"))
	_, err := NewCSVSource(path, "utf-8", Columns{}).Load()
	if err == nil || !strings.Contains(err.Error(), "收盘") {
		t.Fatalf("expected missing close column error, got %v", err)
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"gbk", "GBK", "gb18030", "utf-8", "utf8"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Errorf("LookupEncoding(%q): %v", name, err)
		}
	}
	if _, err := LookupEncoding("latin1"); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestMockSource(t *testing.T) {
	boom := errors.New("boom")
	if _, err := LoadDataset(&MockSource{Err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	ds, err := LoadDataset(&MockSource{Records: []model.Record{{Time: model.MustClock("09:00")}}})
	if err != nil || ds.Len() != 1 {
		t.Fatalf("unexpected result: %v, %v", ds, err)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrMissingSource); got != "数据文件未找到，请检查文件路径是否正确。" {
		t.Errorf("missing source message = %q", got)
	}
	if got := UserMessage(errors.New("bad row")); got != "加载数据时发生错误: bad row" {
		t.Errorf("load failure message = %q", got)
	}
	_, err := LoadDataset(&MockSource{Err: errors.New("bad row")})
	var le *LoadError
	if !errors.As(err, &le) || le.Source != "mock" {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if got := UserMessage(err); got != "加载数据时发生错误: bad row" {
		t.Errorf("wrapped load failure message = %q", got)
	}
}
