// Package export writes evaluation results as CSV for spreadsheet users.
//
// Every field is quoted, with embedded quotes doubled, and numbers use six
// decimals so files diff cleanly between runs.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrShape marks names and values of different lengths.
var ErrShape = errors.New("names and values differ in length")

const precision = 6

// WriteMatrixCSV writes the comparison matrix with factor names on both axes.
func WriteMatrixCSV(w io.Writer, names []string, matrix [][]float64) error {
	if len(matrix) != len(names) {
		return fmt.Errorf("%w: %d names, %d rows", ErrShape, len(names), len(matrix))
	}
	bw := bufio.NewWriter(w)
	header := append([]string{""}, names...)
	writeRecord(bw, header)
	for i, row := range matrix {
		if len(row) != len(names) {
			return fmt.Errorf("%w: row %d has %d values", ErrShape, i, len(row))
		}
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, names[i])
		for _, v := range row {
			rec = append(rec, formatFloat(v))
		}
		writeRecord(bw, rec)
	}
	return bw.Flush()
}

// WriteWeightsCSV writes one Factor,Weight row per factor.
func WriteWeightsCSV(w io.Writer, names []string, weights []float64) error {
	if len(weights) != len(names) {
		return fmt.Errorf("%w: %d names, %d weights", ErrShape, len(names), len(weights))
	}
	bw := bufio.NewWriter(w)
	writeRecord(bw, []string{"Factor", "Weight"})
	for i, name := range names {
		writeRecord(bw, []string{name, formatFloat(weights[i])})
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// writeRecord quotes every field; bufio.Writer keeps the first write error for Flush.
func writeRecord(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_ = w.WriteByte('"')
		_, _ = w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString("\r\n")
}
