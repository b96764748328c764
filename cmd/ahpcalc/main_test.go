package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classic = `factor,class,count
A,1,10
A,2,5
A,3,0
A,4,0
A,5,0
B,1,0
B,2,0
B,3,0
B,4,5
B,5,10
C,1,3
C,2,3
C,3,3
C,4,3
C,5,3
`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunPrintsReport(t *testing.T) {
	in := writeInput(t, "tables.csv", classic)
	dir := filepath.Dir(in)
	matrixPath := filepath.Join(dir, "matrix.csv")
	weightsPath := filepath.Join(dir, "weights.csv")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-in", in, "-matrix", matrixPath, "-weights", weightsPath}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "FACTOR")
	assert.Regexp(t, `B\s+4\.666667\s+15\.000000\s+0\.636986`, out)
	assert.Regexp(t, `CR\s+0\.033199`, out)
	assert.Regexp(t, `acceptable\s+true`, out)
	assert.Regexp(t, `MATRIX\s+A\s+B\s+C\n`, out)
	assert.Regexp(t, `\nA\s+1\.000000\s+0\.200000\s+0\.333333\s*\n`, out)
	assert.Regexp(t, `\nB\s+5\.000000\s+1\.000000\s+3\.000000\s*\n`, out)
	assert.NotContains(t, out, "ADVISORIES")

	matrix, err := os.ReadFile(matrixPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(matrix), "\"\",\"A\",\"B\",\"C\"\r\n\"A\",\"1.000000\",\"0.200000\",\"0.333333\"\r\n"))

	weights, err := os.ReadFile(weightsPath)
	require.NoError(t, err)
	assert.Contains(t, string(weights), "\"B\",\"0.636986\"")
}

func TestRunYAMLWithEmptyFactor(t *testing.T) {
	in := writeInput(t, "tables.yaml", `
factors:
  - name: slope
    classes: [{count: 4}, {count: 4}, {count: 2}]
  - name: empty
    classes: [{count: 0}, {count: ""}, {count: "n/a"}]
`)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-in", in}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "no information")
	assert.Regexp(t, `ADVISORIES\nempty: factor has no information\n`, stdout.String())
	assert.Regexp(t, `\nempty\s+0\.111111\s+1\.000000\s*\n`, stdout.String())
	assert.Contains(t, stderr.String(), "factor carries no information")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ctx := context.Background()

	assert.Error(t, run(ctx, nil, &stdout, &stderr))
	assert.ErrorIs(t, run(ctx, []string{"-h"}, &stdout, &stderr), flag.ErrHelp)
	assert.Error(t, run(ctx, []string{"-in", filepath.Join(t.TempDir(), "missing.csv")}, &stdout, &stderr))

	single := writeInput(t, "single.csv", "factor,count\nA,1\nA,2\nA,3\n")
	assert.Error(t, run(ctx, []string{"-in", single}, &stdout, &stderr))
	assert.NoError(t, run(ctx, []string{"-in", single, "-strict=false"}, &stdout, &stderr))

	in := writeInput(t, "tables.csv", classic)
	assert.Error(t, run(ctx, []string{"-in", in, "-log-format", "xml"}, &stdout, &stderr))
}
