package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/RollCut/internal/project"
)

const jobInput = `Demo job
100 6
50 50 1 Left
50 50 2 Right
`

// run executes the CLI with an isolated home and config file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeJob(t *testing.T, content string) string {
	t.Helper()
	base := filepath.Join(t.TempDir(), "job")
	require.NoError(t, os.WriteFile(base+".in", []byte(content), 0644))
	return base
}

func TestPlan_WritesReportAndScript(t *testing.T) {
	base := writeJob(t, jobInput)

	out, err := run(t, "plan", base)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Demo job: 2 of 2 orders placed, length 5.0cm, utilization 100.00%")
	assert.Contains(t, out, "Elapsed:")

	report, err := os.ReadFile(base + ".out")
	require.NoError(t, err)
	lines := strings.Split(string(report), "\n")
	assert.Equal(t, "Demo job", lines[0])
	assert.Equal(t, "Benötigte Länge: 5.0cm", lines[1])
	assert.Equal(t, "Genutzte Flaeche: 100.00%", lines[2])

	script, err := os.ReadFile(base + ".gnu")
	require.NoError(t, err)
	assert.Contains(t, string(script), "set xrange [0:100]")
}

func TestPlan_AllOutputs(t *testing.T) {
	base := writeJob(t, jobInput)

	out, err := run(t, "plan", base, "--pdf", "--labels", "--xlsx", "--json")
	require.NoError(t, err, out)

	for _, suffix := range []string{".pdf", "-labels.pdf", ".xlsx", ".json"} {
		_, err := os.Stat(base + suffix)
		assert.NoError(t, err, "missing %s", suffix)
	}

	plan, err := project.LoadPlan(base + ".json")
	require.NoError(t, err)
	assert.Equal(t, "Demo job", plan.Description)
	assert.Equal(t, 100, plan.Settings.RollWidth)
	assert.Equal(t, 50, plan.Result.Height)
}

func TestPlan_FlagsOverrideOrderFile(t *testing.T) {
	base := writeJob(t, jobInput)

	out, err := run(t, "plan", base, "--roll-width", "50", "--strategy", "parallel", "--description", "Narrow")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Narrow: 2 of 2 orders placed, length 10.0cm")
}

func TestPlan_CSVInput(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Width,Height,Label\n20,20,a\n20,20,b\n20,20,c\n"), 0644))
	base := filepath.Join(dir, "csvjob")

	out, err := run(t, "plan", base, "--input", csvPath, "--roll-width", "20", "--depth", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "csvjob: 3 of 3 orders placed, length 6.0cm, utilization 100.00%")
}

func TestPlan_InfeasibleStillWritesReport(t *testing.T) {
	base := writeJob(t, "Too wide\n40 6\n50 50 1 Square\n")

	out, err := run(t, "plan", base)
	require.Error(t, err)
	assert.Contains(t, out, "0 of 1 orders placed")

	report, rerr := os.ReadFile(base + ".out")
	require.NoError(t, rerr)
	assert.Contains(t, string(report), "Nicht platzierte Kundenaufträge:")
}

func TestPlan_MissingInput(t *testing.T) {
	_, err := run(t, "plan", filepath.Join(t.TempDir(), "nothing"))
	assert.Error(t, err)
}

func TestPlan_InvalidStrategy(t *testing.T) {
	base := writeJob(t, jobInput)
	_, err := run(t, "plan", base, "--strategy", "random")
	assert.Error(t, err)
}

func TestCompare_PrintsScenarios(t *testing.T) {
	base := writeJob(t, jobInput)

	out, err := run(t, "compare", base)
	require.NoError(t, err, out)
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Parallel Chunks")
	assert.Contains(t, out, "*")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "rollcut dev\n", out)
}

func TestInvalidConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("plan:\n  roll_width: -5\n"), 0644))

	_, err := run(t, "--config", cfgPath, "version")
	assert.Error(t, err)
}
