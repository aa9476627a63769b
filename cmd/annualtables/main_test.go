package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanspareilsmyn/annualtables/internal/output"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

const checkConfig = `
input:
  mode: file
  path: frames.jsonl
report:
  formats: ["text"]
variables:
  - name: Zone Temp
    units: C
    keys: [Z1, Z2]
tables:
  - name: Zone Report
    fields:
      - variable: Zone Temp
        aggregation: Maximum
      - variable: Missing Var
      - variable: Zone Temp
        aggregation: Average
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestCheckPrintsLayout(t *testing.T) {
	path := writeConfig(t, checkConfig)

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"check", "--config", path})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Zone Report (2 entities)")
	assert.Contains(t, out, "Maximum")
	assert.Contains(t, out, "Missing Var")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "SumOrAverage")
	assert.Contains(t, out, "1 table(s) OK")
}

func TestRootHelpNamesEveryInputMode(t *testing.T) {
	long := newRootCmd().Long
	for _, mode := range []string{"Kafka", "MQTT", "JSON Lines"} {
		assert.Contains(t, long, mode)
	}
}

func TestCheckRejectsBadConfig(t *testing.T) {
	path := writeConfig(t, "input:\n  mode: carrier-pigeon\n")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", "--config", path})
	assert.Error(t, cmd.Execute())
}

func TestRunsListsStoredRuns(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tables.db")

	store, err := output.OpenSQLite(ctx, dbPath, nil)
	require.NoError(t, err)
	run := output.NewRun(units.StyleJtoKWH, 8760)
	require.NoError(t, store.SaveRun(ctx, run, nil))
	require.NoError(t, store.Close())

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"runs", "--sqlite", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), run.ID)
	assert.Contains(t, buf.String(), "8760")
}
