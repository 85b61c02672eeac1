package ui_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/ui"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░   0%", ui.ProgressBar(0, 0, 1))
	assert.Equal(t, "█████░░░░░  50%", ui.ProgressBar(1, 2, 10))
	assert.Equal(t, "██████████ 100%", ui.ProgressBar(3, 3, 10))
}

func TestRenderPanelMono(t *testing.T) {
	ui.SetTheme("mono")
	t.Cleanup(func() {
		ui.SetColorForcing(false, false)
		ui.SetTheme("classic")
	})

	out := ui.RenderPanel([]string{"ab", "☑ x"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "+-----+", lines[0])
	assert.Equal(t, "| ab  |", lines[1])
	assert.Equal(t, "| ☑ x |", lines[2])
}

func TestAlertWritesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	ui.SetOutput(&out, &errOut)
	ui.SetColorForcing(false, true)
	t.Cleanup(func() { ui.SetColorForcing(false, false) })

	ui.Alert("toggle failed", errors.New("authorization required"))
	ui.OK("added")
	assert.Contains(t, errOut.String(), "toggle failed")
	assert.Contains(t, errOut.String(), "authorization required")
	assert.Equal(t, "✔ added\n", out.String())
}
