package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, history store.HistoryStore) (*mcp.ClientSession, string) {
	t.Helper()

	root := t.TempDir()
	ctx := context.Background()

	server, err := NewServer(&ServerOptions{RootDir: root, History: history})
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs, root
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)

	var sb strings.Builder
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), res.IsError
}

func TestServer_ListTools(t *testing.T) {
	cs, _ := connect(t, nil)

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}

	for _, name := range []string{
		"estimate_fieldwork", "quick_range", "estimate_cpi", "check_timing", "compare_expert",
		"save_calculation", "list_history", "export_history", "list_exports", "list_reference",
	} {
		assert.True(t, names[name], name)
	}
}

func TestServer_EstimateFieldwork(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "estimate_fieldwork", map[string]any{
		"projectName": "Skincare",
		"sampleSize":  300,
		"loi":         10,
		"ir":          50,
		"expertDays":  4,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "# Skincare")
	assert.Contains(t, text, "**Fieldwork: 4 - 5 days**")
	assert.Contains(t, text, "## Expert comparison")
}

func TestServer_QuickRange(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "quick_range", map[string]any{
		"sampleSize": 500,
		"loi":        12,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "## Quick range")
	assert.Contains(t, text, "| Worst | 20% | yes |")
}

func TestServer_EstimateCPI(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "estimate_cpi", map[string]any{
		"loi": 10,
		"ir":  50,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "CPI: $1.50 USD")
}

func TestServer_CheckTiming(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "check_timing", map[string]any{"startDate": "2026-02-10"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Upcoming")

	text, isErr = callText(t, cs, "check_timing", map[string]any{"startDate": "2026-02-17", "days": 5})
	require.False(t, isErr, text)
	assert.Contains(t, text, "[critical]")

	_, isErr = callText(t, cs, "check_timing", map[string]any{"startDate": "17/02/2026"})
	assert.True(t, isErr)
}

func TestServer_CompareExpert(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "compare_expert", map[string]any{
		"expertDays": 2,
		"fwDaysMin":  8,
		"fwDaysMax":  10,
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Status: too_low")
}

func TestServer_History(t *testing.T) {
	history := store.NewMemoryStore(model.DefaultHistoryLimit)
	cs, root := connect(t, history)

	text, isErr := callText(t, cs, "save_calculation", map[string]any{
		"projectName": "Snack test",
		"sampleSize":  300,
		"loi":         10,
		"ir":          50,
		"expertDays":  5,
		"note":        "agreed",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Calculation 'Snack test' saved")
	assert.Equal(t, 1, history.Len())

	text, isErr = callText(t, cs, "list_history", map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Snack test")
	assert.Contains(t, text, "expert 5 days")

	text, isErr = callText(t, cs, "export_history", map[string]any{"path": "exports/history.xlsx"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Exported 1 calculations")

	_, err := os.Stat(filepath.Join(root, "exports", "history.xlsx"))
	require.NoError(t, err)

	text, isErr = callText(t, cs, "list_exports", map[string]any{"dir": "exports"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "history.xlsx")

	_, isErr = callText(t, cs, "export_history", map[string]any{"path": "history.csv"})
	assert.True(t, isErr)
}

func TestServer_HistoryNotConfigured(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "list_history", map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "not configured")
}

func TestServer_ListReference(t *testing.T) {
	cs, _ := connect(t, nil)

	text, isErr := callText(t, cs, "list_reference", map[string]any{"table": "panel_vendors"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "purespectrum")

	_, isErr = callText(t, cs, "list_reference", map[string]any{"table": "weather"})
	assert.True(t, isErr)
}
