package machine

import (
	"testing"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commands(p *gcode.Program) []string {
	var res []string
	for _, l := range p.Lines() {
		res = append(res, l.Command())
	}
	return res
}

func TestCutOptions_Program(t *testing.T) {
	opt := CutOptions{
		TubeWidth:         25,
		Feedrate:          1000,
		PierceDelay:       0.5,
		SecondPierceDelay: 0.25,
	}

	p, err := opt.Program()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"G21",
		"G90",
		"G1 X40 Y0 F1000",
		"G1 X52.5 Y0 F1000",
		"M3",
		"G4 P0.5",
		"G1 X65 Y0 F1000",
		"M5",
		"G4 P2",
		"G1 X52.5 Y0 F1000",
		"M3",
		"G4 P0.25",
		"G1 X40 Y0 F1000",
		"M5",
		"G1 X0 Y0 F1000",
	}, commands(p))
}

func TestCutOptions_Overshoot(t *testing.T) {
	opt := DefaultCutOptions()
	opt.CutAngle = 0
	opt.Start = coord.Point{X: 10, Y: 5}

	assert.Equal(t, coord.Point{X: 50, Y: 5}, opt.RealStart())
	assert.Equal(t, coord.Point{X: 76, Y: 5}, opt.EndPosition())

	p, err := opt.Program()
	require.NoError(t, err)
	cmds := commands(p)
	assert.Equal(t, "G1 X63 Y5 F1000", cmds[3])
	assert.Equal(t, "G1 X76 Y5 F1000", cmds[6])
	assert.Equal(t, "G1 X10 Y5 F1000", cmds[len(cmds)-1])
}

// toolEvents returns true for every tool-on and false for every tool-off line.
func toolEvents(p *gcode.Program) []bool {
	var ev []bool
	for _, b := range p.Blocks() {
		switch {
		case b.Has(gcode.Word{W: 'M', Arg: 3}):
			ev = append(ev, true)
		case b.Has(gcode.Word{W: 'M', Arg: 5}):
			ev = append(ev, false)
		}
	}
	return ev
}

func TestCutOptions_ToolBalance(t *testing.T) {
	for _, angle := range []float64{0, 15, 45, 90, -30, 120} {
		for _, width := range []float64{10, 25, 101.6} {
			opt := DefaultCutOptions()
			opt.CutAngle = angle
			opt.TubeWidth = width
			opt.Start = coord.Point{X: width, Y: -angle}

			p, err := opt.Program()
			require.NoError(t, err)
			assert.Equal(t, []bool{true, false, true, false}, toolEvents(p))

			s, err := gcode.Trace(p.Reader())
			require.NoError(t, err)
			assert.Equal(t, 2, s.Pierces)
			assert.Equal(t, 2, s.Releases)
			assert.False(t, s.ToolOn)
			assert.Equal(t, opt.Start, s.Moves[len(s.Moves)-1].To)
		}
	}
}

func TestCutOptions_Straight(t *testing.T) {
	opt := DefaultCutOptions()
	opt.Method = CutStraight
	opt.CutAngle = 0

	p, err := opt.Program()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"G21",
		"G90",
		"G1 X40 Y0 F1000",
		"M3",
		"G4 P0.5",
		"G1 X66 Y0 F1000",
		"M5",
		"G4 P2",
		"G1 X0 Y0 F1000",
	}, commands(p))
	assert.Equal(t, []bool{true, false}, toolEvents(p))
}

func TestCutOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultCutOptions().Validate())

	bad := []func(*CutOptions){
		func(o *CutOptions) { o.TubeWidth = 0 },
		func(o *CutOptions) { o.Feedrate = -1 },
		func(o *CutOptions) { o.Overshoot = -1 },
		func(o *CutOptions) { o.PierceDelay = -0.1 },
		func(o *CutOptions) { o.Method = "zigzag" },
	}
	for _, fn := range bad {
		opt := DefaultCutOptions()
		fn(&opt)
		assert.Error(t, opt.Validate())
		_, err := opt.Program()
		assert.Error(t, err)
	}
}

func TestJobProgram(t *testing.T) {
	a := DefaultCutOptions()
	b := DefaultCutOptions()
	b.Start = coord.Point{X: 100}

	p, err := JobProgram([]CutOptions{a, b})
	require.NoError(t, err)

	single, err := a.Program()
	require.NoError(t, err)

	// one shared header
	assert.Equal(t, 2*single.Len()-2, p.Len())
	assert.Equal(t, []bool{true, false, true, false, true, false, true, false}, toolEvents(p))

	_, err = JobProgram(nil)
	assert.Error(t, err)

	b.Feedrate = 0
	_, err = JobProgram([]CutOptions{a, b})
	assert.EqualError(t, err, "cut 2: feedrate must be positive")
}
