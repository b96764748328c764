package export_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/okian/classahp/internal/adapters/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMatrixCSV(t *testing.T) {
	var buf bytes.Buffer
	names := []string{"A", `Soil "type"`}
	err := export.WriteMatrixCSV(&buf, names, [][]float64{{1, 1.0 / 3}, {3, 1}})
	require.NoError(t, err)

	want := "\"\",\"A\",\"Soil \"\"type\"\"\"\r\n" +
		"\"A\",\"1.000000\",\"0.333333\"\r\n" +
		"\"Soil \"\"type\"\"\",\"3.000000\",\"1.000000\"\r\n"
	assert.Equal(t, want, buf.String())

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `Soil "type"`, recs[0][2])
}

func TestWriteWeightsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteWeightsCSV(&buf, []string{"A", "B"}, []float64{0.9, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "\"Factor\",\"Weight\"\r\n\"A\",\"0.900000\"\r\n\"B\",\"0.100000\"\r\n", buf.String())
}

func TestShapeErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, export.WriteMatrixCSV(&buf, []string{"A"}, [][]float64{{1}, {1}}), export.ErrShape)
	assert.ErrorIs(t, export.WriteMatrixCSV(&buf, []string{"A", "B"}, [][]float64{{1, 1}, {1}}), export.ErrShape)
	assert.ErrorIs(t, export.WriteWeightsCSV(&buf, []string{"A"}, nil), export.ErrShape)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteErrorsSurface(t *testing.T) {
	err := export.WriteWeightsCSV(failingWriter{}, []string{"A"}, []float64{1})
	assert.EqualError(t, err, "disk full")
}
