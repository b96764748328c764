package tables_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/classahp/internal/adapters/tables"
	"github.com/okian/classahp/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV(t *testing.T) {
	in := `factor,class,min,max,count
slope,1,0,5,120
slope,2,5,15,40
rainfall,1,0,800,
slope,3,15,90,10
rainfall,3,1200,2000,35
rainfall,2,800,1200,bad
`
	factors, err := tables.DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, factors, 2)

	assert.Equal(t, "slope", factors[0].Name)
	assert.Equal(t, []float64{120, 40, 10}, counts(factors[0]))
	assert.Equal(t, "5", factors[0].Bins[1].Min)
	assert.Equal(t, "15", factors[0].Bins[1].Max)

	assert.Equal(t, "rainfall", factors[1].Name)
	assert.Equal(t, []float64{0, 0, 35}, counts(factors[1]))
}

func TestDecodeCSVHeaderVariants(t *testing.T) {
	t.Run("case and order of columns do not matter", func(t *testing.T) {
		in := "Count, Factor\n3,a\n4,a\n5,a\n1,b\n1,b\n1,b\n"
		factors, err := tables.DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, factors, 2)
		assert.Equal(t, []float64{3, 4, 5}, counts(factors[0]))
		assert.Equal(t, []float64{1, 1, 1}, counts(factors[1]))
	})

	t.Run("byte order mark is ignored", func(t *testing.T) {
		in := "\ufefffactor,count\na,1\n"
		factors, err := tables.DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, factors, 1)
	})

	t.Run("missing classes are filled with empty bins", func(t *testing.T) {
		in := "factor,class,count\na,1,2\na,4,3\nb,2,7\n"
		factors, err := tables.DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 0, 0, 3}, counts(factors[0]))
		assert.Equal(t, []float64{0, 7, 0, 0}, counts(factors[1]))
	})

	t.Run("rows without a factor name are skipped", func(t *testing.T) {
		in := "factor,count\n,9\na,1\n"
		factors, err := tables.DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, factors, 1)
		assert.Equal(t, []float64{1}, counts(factors[0]))
	})
}

func TestDecodeCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"no count column": "factor,class\na,1\n",
		"bad class":       "factor,class,count\na,x,1\n",
		"zero class":      "factor,class,count\na,0,1\n",
		"class too large": "factor,class,count\na,10,1\n",
		"duplicate class": "factor,class,count\na,1,1\na,1,2\n",
		"broken quoting":  "factor,count\n\"a,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tables.DecodeCSV(strings.NewReader(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, tables.ErrMalformed)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	in := `
factors:
  - name: slope
    classes:
      - {min: "0", max: "5", count: 120}
      - {min: "5", max: "15", count: "40"}
      - {min: "15", max: "90", count: ""}
  - name: soil
    classes:
      - {count: 1}
      - {count: 2}
      - {count: [1]}
`
	factors, err := tables.DecodeYAML(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, factors, 2)
	assert.Equal(t, []float64{120, 40, 0}, counts(factors[0]))
	assert.Equal(t, "15", factors[0].Bins[2].Min)
	assert.Equal(t, []float64{1, 2, 0}, counts(factors[1]))
	assert.NoError(t, model.Validate(factors))
}

func TestDecodeYAMLErrors(t *testing.T) {
	_, err := tables.DecodeYAML(strings.NewReader(""))
	assert.ErrorIs(t, err, tables.ErrMalformed)

	_, err = tables.DecodeYAML(strings.NewReader("factors: [unclosed"))
	assert.ErrorIs(t, err, tables.ErrMalformed)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "tables.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("factor,count\na,1\na,2\na,3\nb,3\nb,2\nb,1\n"), 0o600))
	factors, err := tables.Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, factors, 2)

	yamlPath := filepath.Join(dir, "tables.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("factors:\n  - name: a\n    classes: [{count: 1}]\n"), 0o600))
	factors, err = tables.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, factors, 1)

	txtPath := filepath.Join(dir, "tables.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o600))
	_, err = tables.Load(txtPath)
	assert.ErrorIs(t, err, tables.ErrMalformed)

	_, err = tables.Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func counts(f model.Factor) []float64 {
	out := make([]float64, len(f.Bins))
	for i, b := range f.Bins {
		out[i] = b.Count
	}
	return out
}
