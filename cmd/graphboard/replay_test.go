package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/graphboard/internal/config"
)

const triangle = `
seed: 7
events:
  - {type: toggle_vertex}
  - {type: click, x: 100, y: 100}
  - {type: click, x: 300, y: 100}
  - {type: click, x: 200, y: 300}
  - {type: toggle_edge}
  - {type: click, x: 100, y: 100}
  - {type: click, x: 300, y: 100}
  - {type: click, x: 100, y: 100}
  - {type: click, x: 200, y: 300}
  - {type: click, x: 300, y: 100}
  - {type: click, x: 200, y: 300}
`

func TestReplay_PrintsExport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, replay(strings.NewReader(triangle), &out, config.Default(), ""))
	assert.Equal(t, "[[1,2],\r\n[0,2],\r\n[0,1]]\n", out.String())
}

func TestReplay_ExportEvents(t *testing.T) {
	var out bytes.Buffer
	script := `
events:
  - {type: export}
  - {type: toggle_vertex}
  - {type: click, x: 10, y: 10}
  - {type: export}
`
	require.NoError(t, replay(strings.NewReader(script), &out, config.Default(), ""))
	assert.Equal(t, "[]\n[[]]\n", out.String())
}

func TestReplay_WritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	cfg := config.Default()
	cfg.Canvas.Width, cfg.Canvas.Height = 400, 400

	var out bytes.Buffer
	require.NoError(t, replay(strings.NewReader(triangle), &out, cfg, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestReplay_RejectsBadScript(t *testing.T) {
	var out bytes.Buffer
	err := replay(strings.NewReader("events:\n  - {type: fly}\n"), &out, config.Default(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events[0]")

	err = replay(strings.NewReader("events: [\n"), &out, config.Default(), "")
	assert.Error(t, err)
}
