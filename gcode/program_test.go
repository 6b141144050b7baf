package gcode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgram(t *testing.T) {
	p := NewProgram()
	assert.Equal(t, "G21 (set units to mm)\nG90 (set positioning to absolute)\n", p.String())
}

func TestProgram_Commands(t *testing.T) {
	p := &Program{}
	p.MoveTo(coord.Point{X: 52.5, Y: -3.25}, 1000)
	p.Dwell(0.25)
	p.SetToolEnabled(true)
	p.SetToolEnabled(false)
	p.SetZero()
	p.SetRelative()
	p.Raw("?")

	lines := p.Lines()
	require.Len(t, lines, 7)

	cmds := make([]string, len(lines))
	for i, l := range lines {
		cmds[i] = l.Command()
	}
	assert.Equal(t, []string{
		"G1 X52.5 Y-3.25 F1000",
		"G4 P0.25",
		"M3",
		"M5",
		"G10 P0 L20 X0 Y0 Z0",
		"G91",
		"?",
	}, cmds)

	assert.Equal(t, "G1 X52.5 Y-3.25 F1000 (move to X: 52.5, Y: -3.25 with feedrate: 1000)", lines[0].String())
	assert.Equal(t, "?", lines[6].String())
	assert.Len(t, p.Blocks(), 6)
}

func TestProgram_String(t *testing.T) {
	p := NewProgram()
	p.MoveTo(coord.Point{X: 1, Y: 2}, 300)
	p.Raw("?")

	s := p.String()
	assert.True(t, strings.HasSuffix(s, "\n"))
	assert.Equal(t, p.Len(), strings.Count(s, "\n"))

	var buf bytes.Buffer
	n, err := p.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(s), n)
	assert.Equal(t, s, buf.String())
}

func TestProgram_RoundTrip(t *testing.T) {
	p := NewProgram()
	calls := 2
	p.MoveTo(coord.Point{X: 40}, 1000)
	p.MoveTo(coord.Point{X: 52.5}, 1000)
	p.SetToolEnabled(true)
	p.Dwell(0.5)
	p.SetToolEnabled(false)
	p.SetZero()
	p.SetRelative()
	p.SetAbsolute()
	p.SetUnitsMetric()
	p.Raw("?")
	p.Raw(Jog(-5, 2.5, 600))
	calls += 11

	lines, err := ParseLines(p.String())
	require.NoError(t, err)
	assert.Len(t, lines, calls)
	assert.Equal(t, p.Lines(), lines)

	b, err := Parse(p.String())
	require.NoError(t, err)
	assert.Equal(t, p.Blocks(), b)
}

func TestProgram_WriteFile(t *testing.T) {
	p := NewProgram()
	p.Dwell(2)

	name := filepath.Join(t.TempDir(), "cut.gcode")
	require.NoError(t, p.WriteFile(name))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, p.String(), string(data))
}

func TestJog(t *testing.T) {
	assert.Equal(t, "$J=G91 G21 X10 Y-0.5 F600", Jog(10, -0.5, 600))
}
