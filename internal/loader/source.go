package loader

import (
	"errors"
	"fmt"
	"log"

	"PriceBox/internal/model"
)

// ErrMissingSource means the input file does not exist.
var ErrMissingSource = errors.New("source file not found")

// ParseError reports a value that could not be coerced to its column type.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LoadError is any failure to build the dataset from a source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Source, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// Source reads the whole dataset in one call.
type Source interface {
	Load() ([]model.Record, error)
	Name() string
}

// MockSource returns fixed records for development and testing.
type MockSource struct {
	Records []model.Record
	Err     error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Load() ([]model.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

// LoadDataset reads src once and freezes the result.
func LoadDataset(src Source) (*model.Dataset, error) {
	records, err := src.Load()
	if err != nil {
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	ds := model.NewDataset(records)
	if ds.Len() == 0 {
		log.Printf("[WARN] %s: dataset is empty", src.Name())
	} else {
		log.Printf("[INFO] %s: loaded %d records, %s ~ %s", src.Name(), ds.Len(),
			ds.MinDate().Format(model.DateLayout), ds.MaxDate().Format(model.DateLayout))
	}
	return ds, nil
}

// UserMessage renders a load failure in the wording shown at startup.
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingSource) {
		return "数据文件未找到，请检查文件路径是否正确。"
	}
	var le *LoadError
	if errors.As(err, &le) {
		err = le.Err
	}
	return fmt.Sprintf("加载数据时发生错误: %v", err)
}
