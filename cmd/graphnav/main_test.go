package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, execute(t, "", "version"), "graphnav version ")
}

func TestTypesCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	out := execute(t, "", "types", "--config", cfg)
	assert.Contains(t, out, "Circle")
	assert.Contains(t, out, "center, radius, segments")
}

func TestShellCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	out := execute(t, "create Subgraph\nenter 0.0\ncrumbs\n", "shell", "--headless", "--config", cfg)
	assert.Contains(t, out, "created Subgraph(0.0)")
	assert.Contains(t, out, "Root")
}

func TestMCPCommand_RejectsUnknownTransport(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"mcp", "--transport", "carrier-pigeon", "--config", cfg})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}
