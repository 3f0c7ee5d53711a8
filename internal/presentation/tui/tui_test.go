package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/graphnav/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer(60)
	out, err := render("# Commands\n\n`types` lists node types")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands")
	assert.Contains(t, out, "types")
}
