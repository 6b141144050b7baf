package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	b, err := Parse(`
G21 (set units to mm)
g1 x40 y-3.25 F1000 ; trailing
(only a comment)

G4 P0.5
`)
	require.NoError(t, err)
	assert.Equal(t, []Block{
		{{W: 'G', Arg: 21}},
		{{W: 'G', Arg: 1}, {W: 'X', Arg: 40}, {W: 'Y', Arg: -3.25}, {W: 'F', Arg: 1000}},
		{{W: 'G', Arg: 4}, {W: 'P', Arg: 0.5}},
	}, b)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("G1 X")
	assert.Error(t, err)
	_, err = Parse("G1 X1 %")
	assert.Error(t, err)
}

func TestParse_SkipsRaw(t *testing.T) {
	b, err := Parse("G21\n?\n$J=G91 G21 X1 Y0 F600\n$H\nG90\n")
	require.NoError(t, err)
	assert.Equal(t, []Block{{{W: 'G', Arg: 21}}, {{W: 'G', Arg: 90}}}, b)
}

func TestParseLines(t *testing.T) {
	lines, err := ParseLines(`
G21 (set units to mm)
?
  $J=G91 G21 X1 Y0 F600
(only a comment)
M5 ; off
~
`)
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{Block: Block{{W: 'G', Arg: 21}}, Comment: "set units to mm"},
		{Raw: "?"},
		{Raw: "$J=G91 G21 X1 Y0 F600"},
		{Block: Block{{W: 'M', Arg: 5}}},
		{Raw: "~"},
	}, lines)
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "G1 X1 ", stripComments("G1 X1 (move to x)"))
	assert.Equal(t, "M3 ", stripComments("M3 (unterminated"))
	assert.Equal(t, "G4P1", stripComments("G4(a)P1(b);c"))
}
