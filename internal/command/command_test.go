package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fieldwork.yml")
	content := "store:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "fieldwork.db") + "\nrefdata:\n  source: defaults\nlog:\n  level: error\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

// resetFlags restores every flag to its default so that commands can run
// several times in the same process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCommand(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	appConfig = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "estimate", "-n", "300", "--loi", "10", "--ir", "50", "--name", "Tracker")
	require.NoError(t, err)
	assert.Contains(t, out, "# Tracker")
	assert.Contains(t, out, "**Fieldwork: 4 - 5 days**")
	assert.Contains(t, out, "**$1.50 USD per interview**")

	out, err = runCommand(t, cfg, "estimate", "-n", "300", "--loi", "10", "--quick", "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "quick"`)

	out, err = runCommand(t, cfg, "estimate", "--loi", "10", "--ir", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "## Problems")

	_, err = runCommand(t, cfg, "estimate", "-n", "300", "--loi", "10", "--disable", "weather")
	assert.Error(t, err)

	_, err = runCommand(t, cfg, "estimate", "--template", "unknown")
	assert.Error(t, err)
}

func TestEstimateCommand_Template(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "estimate", "--template", "brand_health", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "result:")
}

func TestHistoryCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, cfg, "estimate", "-n", "300", "--loi", "10", "--ir", "50",
		"--name", "Tracker", "--save", "--expert-days", "5", "--note", "slow panel")
	require.NoError(t, err)

	out, err := runCommand(t, cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Tracker (detailed)")
	assert.Contains(t, out, "system 4-5 days, expert 5 days")
	assert.Contains(t, out, "note: slow panel")

	export := filepath.Join(t.TempDir(), "history.xlsx")
	out, err = runCommand(t, cfg, "history", "export", export)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 calculations")
	assert.FileExists(t, export)

	_, err = runCommand(t, cfg, "history", "export", "history.csv")
	assert.Error(t, err)

	_, err = runCommand(t, cfg, "history", "clear")
	assert.Error(t, err)

	_, err = runCommand(t, cfg, "history", "clear", "--force")
	require.NoError(t, err)

	out, err = runCommand(t, cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved calculations.")

	_, err = runCommand(t, cfg, "history", "delete", "missing")
	assert.Error(t, err)
}

func TestCPICommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "cpi")
	require.NoError(t, err)
	assert.Contains(t, out, "CPI: $1.50 USD")

	out, err = runCommand(t, cfg, "cpi", "--loi", "15", "--ir", "20", "--quota", "nested")
	require.NoError(t, err)
	assert.Contains(t, out, "LOI 15m")
}

func TestCompareCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "compare", "3", "--min", "10", "--max", "14")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: too_low (-75% from midpoint 12)")

	_, err = runCommand(t, cfg, "compare", "3", "--min", "14", "--max", "10")
	assert.Error(t, err)

	_, err = runCommand(t, cfg, "compare", "three", "--min", "10", "--max", "14")
	assert.Error(t, err)
}

func TestTimingCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "timing", "--start", "2026-02-17", "--days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "[critical]")

	out, err = runCommand(t, cfg, "timing", "check", "--start", "2026-02-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming")

	_, err = runCommand(t, cfg, "timing", "check")
	assert.Error(t, err)
}

func TestRefdataCommands(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, cfg, "refdata", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "brand_health")

	out, err = runCommand(t, cfg, "refdata", "show", "vendors")
	require.NoError(t, err)
	assert.Contains(t, out, "purespectrum")

	_, err = runCommand(t, cfg, "refdata", "show", "weather")
	assert.Error(t, err)

	_, err = runCommand(t, cfg, "refdata", "check")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "reference.yml")
	out, err = runCommand(t, cfg, "refdata", "export", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Reference data exported")
	assert.FileExists(t, file)
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.yml")

	out, err := runCommand(t, path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")
	assert.FileExists(t, path)

	_, err = runCommand(t, path, "config", "init")
	assert.Error(t, err)

	_, err = runCommand(t, path, "config", "init", "--force")
	require.NoError(t, err)

	out, err = runCommand(t, path, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "Store: sqlite (fieldwork.db)")
	assert.Contains(t, out, "History limit: 50")
}
