package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/apr-engine/factory"
	"github.com/warp/apr-engine/regz"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_YAML(t *testing.T) {
	path := writeFile(t, "loan.yaml", `
name: Odd Days
advances:
  - amount: "5000.00"
    date: "2015-01-15"
payment: "230.00"
num_payments: 24
periods_per_year: 12
first_payment_due: "2015-03-01"
`)
	var out bytes.Buffer

	require.NoError(t, run([]string{"-file", path}, &out))

	assert.Equal(t, "APR: 9.25%\nPeriods to first payment: 1 full + 0.5667 odd\n", out.String())
}

func TestRun_JSONVerbose(t *testing.T) {
	path := writeFile(t, "loan.json",
		factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))
	var out bytes.Buffer

	require.NoError(t, run([]string{"-file", path, "-v"}, &out))

	assert.Contains(t, out.String(), "APR: 15.00%\n")
	assert.Contains(t, out.String(), "Unrounded APR: 15.0035")
	assert.Contains(t, out.String(), "restarted: false")
}

func TestRun_Errors(t *testing.T) {
	late := writeFile(t, "late.json",
		factory.SingleAdvanceJSON("Late", "1000.00", "2015-10-01", "90.00", 12, 12, "2015-07-01"))

	assert.Error(t, run(nil, &bytes.Buffer{}))
	assert.Error(t, run([]string{"-file", filepath.Join(t.TempDir(), "missing.json")}, &bytes.Buffer{}))
	assert.ErrorIs(t, run([]string{"-file", late}, &bytes.Buffer{}), regz.ErrLoopBound)
}
