package machine

import (
	"errors"
	"fmt"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/gcode"
)

// CutMethod selects how a cut is pierced.
type CutMethod string

const (
	// CutSplit pierces at the midpoint and cuts each half outward.
	CutSplit CutMethod = "split"
	// CutStraight pierces once at the start and cuts across.
	CutStraight CutMethod = "straight"
)

const (
	// MountOffset is the X distance from the tube start to the torch.
	MountOffset = 40.0
	// DefaultOvershoot is how far past the tube edge a cut travels.
	DefaultOvershoot = 1.0

	settleDelay = 2.0
)

// CutOptions configure a single cut across the tube.
type CutOptions struct {
	Start     coord.Point `json:"start" yaml:"start"`
	TubeWidth float64     `json:"tubeWidth" yaml:"tube_width"`
	CutAngle  float64     `json:"cutAngle" yaml:"cut_angle"`
	Overshoot float64     `json:"overshoot" yaml:"overshoot"`
	Feedrate  float64     `json:"feedrate" yaml:"feedrate"`

	PierceDelay       float64 `json:"pierceDelay" yaml:"pierce_delay"`
	SecondPierceDelay float64 `json:"secondPierceDelay" yaml:"second_pierce_delay"`

	Method CutMethod `json:"method" yaml:"method"`
}

// DefaultCutOptions returns the settings of a freshly set up cutter.
func DefaultCutOptions() CutOptions {
	return CutOptions{
		TubeWidth:         25,
		CutAngle:          90,
		Overshoot:         DefaultOvershoot,
		Feedrate:          1000,
		PierceDelay:       0.5,
		SecondPierceDelay: 0.25,
		Method:            CutSplit,
	}
}

func (opt CutOptions) Validate() error {
	switch {
	case opt.TubeWidth <= 0:
		return errors.New("tube width must be positive")
	case opt.Feedrate <= 0:
		return errors.New("feedrate must be positive")
	case opt.Overshoot < 0:
		return errors.New("overshoot must not be negative")
	case opt.PierceDelay < 0 || opt.SecondPierceDelay < 0:
		return errors.New("pierce delays must not be negative")
	}
	switch opt.Method {
	case "", CutSplit, CutStraight:
	default:
		return fmt.Errorf("unknown cut method %q", opt.Method)
	}
	return nil
}

// RealStart is the start shifted by the torch mount offset.
func (opt CutOptions) RealStart() coord.Point {
	return opt.Start.Add(coord.Point{X: MountOffset})
}

// EndPosition is where the cut finishes, cutting right from RealStart.
func (opt CutOptions) EndPosition() coord.Point {
	return coord.EndPosition(opt.RealStart(), opt.TubeWidth, opt.CutAngle, opt.Overshoot, true)
}

// Program returns a complete program for the cut, header included.
func (opt CutOptions) Program() (*gcode.Program, error) {
	err := opt.Validate()
	if err != nil {
		return nil, err
	}
	p := gcode.NewProgram()
	opt.generate(p)
	return p, nil
}

// JobProgram returns one program running every cut in order.
func JobProgram(cuts []CutOptions) (*gcode.Program, error) {
	if len(cuts) == 0 {
		return nil, errors.New("job has no cuts")
	}
	p := gcode.NewProgram()
	for i, c := range cuts {
		err := c.Validate()
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i+1, err)
		}
		c.generate(p)
	}
	return p, nil
}

func (opt CutOptions) generate(p *gcode.Program) {
	if opt.Method == CutStraight {
		opt.generateStraight(p)
		return
	}
	opt.generateSplit(p)
}

// generateSplit pierces at the midpoint, cuts out to the end, then returns to
// the midpoint and pierces again to cut back to the start. The half nearest
// the start never carries a second pierce mark.
func (opt CutOptions) generateSplit(p *gcode.Program) {
	start := opt.RealStart()
	end := opt.EndPosition()
	mid := coord.Midpoint(start, end)

	p.MoveTo(start, opt.Feedrate)
	p.MoveTo(mid, opt.Feedrate)

	p.SetToolEnabled(true)
	p.Dwell(opt.PierceDelay)
	p.MoveTo(end, opt.Feedrate)
	p.SetToolEnabled(false)

	// let the torch stop blowing before re-piercing
	p.Dwell(settleDelay)

	p.MoveTo(mid, opt.Feedrate)
	p.SetToolEnabled(true)
	p.Dwell(opt.SecondPierceDelay)
	p.MoveTo(start, opt.Feedrate)
	p.SetToolEnabled(false)

	p.MoveTo(opt.Start, opt.Feedrate)
}

func (opt CutOptions) generateStraight(p *gcode.Program) {
	start := opt.RealStart()

	p.MoveTo(start, opt.Feedrate)
	p.SetToolEnabled(true)
	p.Dwell(opt.PierceDelay)
	p.MoveTo(opt.EndPosition(), opt.Feedrate)
	p.SetToolEnabled(false)
	p.Dwell(settleDelay)

	p.MoveTo(opt.Start, opt.Feedrate)
}
