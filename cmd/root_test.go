package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimberlite-group/matprofile/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"lookup", "bulk", "history", "serve", "migrate", "config"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "matprofile", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestLookupCommand_Flags(t *testing.T) {
	require.NotNil(t, lookupCmd.Flags().Lookup("mock"), "lookup command should have --mock flag")
	require.NotNil(t, lookupCmd.Flags().Lookup("json"), "lookup command should have --json flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestHistoryCommand_Flags(t *testing.T) {
	for _, name := range []string{"source", "code", "batch", "limit", "json"} {
		require.NotNil(t, historyCmd.Flags().Lookup(name), "history command should have --%s flag", name)
	}
}

func TestFormatLookupList(t *testing.T) {
	lookups := []model.Lookup{
		{
			Code:   "BRG-6205",
			Source: model.SourceAI,
			Status: model.LookupStatusComplete,
			Cached: true,
			Profile: &model.MaterialProfile{
				Code:         "BRG-6205",
				Category:     "Bearings",
				StockLevel:   142,
				UnitCost:     decimal.NewFromFloat(18.75),
				Obsolescence: model.ObsolescenceRisk{Level: model.RiskLow},
				GeneratedAt:  time.Now().UTC(),
			},
		},
		{
			Code:   "???",
			Source: model.SourceMock,
			Status: model.LookupStatusFailed,
			Error:  "invalid material code",
		},
	}

	var buf bytes.Buffer
	formatLookupList(&buf, lookups)
	out := buf.String()

	assert.Contains(t, out, "BRG-6205")
	assert.Contains(t, out, "ai*")
	assert.Contains(t, out, "Bearings")
	assert.Contains(t, out, "142")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4) // header, separator, two rows
}
