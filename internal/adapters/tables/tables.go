// Package tables reads factor class tables from CSV and YAML files.
//
// CSV input has a header row naming at least the factor and count columns:
//
//	factor,class,min,max,count
//	slope,1,0,5,120
//	slope,2,5,15,40
//
// Rows are grouped by factor in order of first appearance. The class column
// is the 1-based class index; when it is absent, rows are taken in order.
// Classes missing from a factor are filled with empty bins so every factor
// has as many classes as the largest index seen.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
	"gopkg.in/yaml.v3"
)

// ErrMalformed marks input that cannot be read as factor tables.
var ErrMalformed = errors.New("malformed factor tables")

// Column names recognised in a CSV header.
const (
	ColFactor = "factor"
	ColClass  = "class"
	ColMin    = "min"
	ColMax    = "max"
	ColCount  = "count"
)

// Document is the YAML layout of a factor table file.
type Document struct {
	Factors []types.FactorInput `yaml:"factors"`
}

// Load reads path as CSV or YAML depending on its extension.
func Load(path string) ([]model.Factor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DecodeCSV(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrMalformed, filepath.Ext(path))
	}
}

// DecodeYAML reads a {factors: [{name, classes: [{min, max, count}]}]} document.
func DecodeYAML(r io.Reader) ([]model.Factor, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return types.EvaluationRequest{Factors: doc.Factors}.ToFactors(), nil
}

type columns struct {
	factor, class, min, max, count int
}

func headerColumns(header []string) (columns, error) {
	cols := columns{factor: -1, class: -1, min: -1, max: -1, count: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case ColFactor:
			cols.factor = i
		case ColClass:
			cols.class = i
		case ColMin:
			cols.min = i
		case ColMax:
			cols.max = i
		case ColCount:
			cols.count = i
		}
	}
	if cols.factor < 0 || cols.count < 0 {
		return cols, fmt.Errorf("%w: header needs %q and %q columns", ErrMalformed, ColFactor, ColCount)
	}
	return cols, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// DecodeCSV reads factor tables from CSV with a header row.
func DecodeCSV(r io.Reader) ([]model.Factor, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	cols, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	var order []string
	bins := make(map[string]map[int]model.ClassBin)
	next := make(map[string]int)
	width := 0

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		name := cell(rec, cols.factor)
		if name == "" {
			continue
		}
		if _, ok := bins[name]; !ok {
			order = append(order, name)
			bins[name] = make(map[int]model.ClassBin)
		}

		idx := next[name] + 1
		if cols.class >= 0 {
			raw := cell(rec, cols.class)
			idx, err = strconv.Atoi(raw)
			if err != nil || idx < 1 {
				return nil, fmt.Errorf("%w: line %d: class %q is not a positive integer", ErrMalformed, line, raw)
			}
		}
		if idx > model.MaxClasses {
			return nil, fmt.Errorf("%w: line %d: class %d exceeds %d", ErrMalformed, line, idx, model.MaxClasses)
		}
		if _, dup := bins[name][idx]; dup {
			return nil, fmt.Errorf("%w: line %d: class %d of %q given twice", ErrMalformed, line, idx, name)
		}
		bins[name][idx] = model.ClassBin{
			Min:   cell(rec, cols.min),
			Max:   cell(rec, cols.max),
			Count: model.ParseCount(cell(rec, cols.count)),
		}
		next[name] = idx
		width = max(width, idx)
	}

	out := make([]model.Factor, 0, len(order))
	for _, name := range order {
		f := model.Factor{Name: name, Bins: make([]model.ClassBin, width)}
		for idx, b := range bins[name] {
			f.Bins[idx-1] = b
		}
		out = append(out, f)
	}
	return out, nil
}
