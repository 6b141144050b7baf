package gcode

import (
	"errors"

	"github.com/mastercactapus/tubecut/coord"
)

// VM will track state and interpret gcode.
type VM struct {
	pos coord.Point
	wco coord.Point

	modal [256]float64

	dwell float64
}

// NewVM constructs a new VM with default state.
func NewVM() *VM {
	vm := &VM{}

	// using grbl defaults
	vm.modal[ModalGroupMotion] = 0
	vm.modal[ModalGroupCoordinateSystem] = 54
	vm.modal[ModalGroupPlaneSelection] = 17
	vm.modal[ModalGroupDistanceMode] = 90
	vm.modal[ModalGroupFeedRateMode] = 94
	vm.modal[ModalGroupUnits] = 21
	vm.modal[ModalGroupStopping] = 0
	vm.modal[ModalGroupSpindle] = 5
	vm.modal[ModalGroupCoolant] = 9

	return vm
}

func (vm VM) Inches() bool         { return vm.modal[ModalGroupUnits] == 20 }
func (vm VM) RelativeMotion() bool { return vm.modal[ModalGroupDistanceMode] == 91 }
func (vm VM) ToolOn() bool         { return vm.modal[ModalGroupSpindle] != 5 }
func (vm VM) Feed() float64        { return vm.modal[ModalGroupFeedRate] }

// LastDwell returns the duration in seconds of the last G4 run.
func (vm VM) LastDwell() float64 { return vm.dwell }

func (vm VM) WPos() coord.Point {
	return vm.pos.Sub(vm.wco)
}
func (vm VM) MPos() coord.Point {
	return vm.pos
}

// SetMPos places the machine at p without moving.
func (vm *VM) SetMPos(p coord.Point) {
	vm.pos = p
}

func isSupported(g Word) bool {
	if g.IsAxis() {
		return true
	}

	switch g.W {
	case 'G':
		switch g.Arg {
		case 0, 1, 4, 10, 20, 21, 53, 90, 91, 94:
			return true
		}
	case 'M':
		switch g.Arg {
		case 3, 4, 5:
			return true
		}
	case 'F', 'P', 'L':
		return true
	}

	return false
}

func applyBlock(p coord.Point, b Block, mul float64) coord.Point {
	for _, g := range b {
		switch g.W {
		case 'X':
			p.X = g.Arg * mul
		case 'Y':
			p.Y = g.Arg * mul
		}
	}

	return p
}

func (vm *VM) Run(b Block) error {
	err := b.Validate()
	if err != nil {
		return err
	}
	for _, g := range b {
		if !isSupported(g) {
			return errors.New("unsupported code: " + g.String())
		}
		mg := g.ModalGroup()
		if mg != ModalGroupNone && mg != ModalGroupNonModal {
			vm.modal[mg] = g.Arg
		}
	}

	mul := 1.0
	if vm.Inches() {
		mul = 25.4
	}

	switch {
	case b.Has(Word{W: 'G', Arg: 4}):
		_, vm.dwell = b.Arg('P')
		return nil
	case b.Has(Word{W: 'G', Arg: 10}):
		return vm.setOffset(b, mul)
	}

	var axes Block
	for _, g := range b.Args() {
		if g.IsAxis() {
			axes = append(axes, g)
		}
	}
	if len(axes) == 0 {
		return nil
	}

	// apply motion
	if vm.RelativeMotion() {
		vm.pos = vm.pos.Add(applyBlock(coord.Point{}, axes, mul))
	} else if b.Has(Word{W: 'G', Arg: 53}) {
		vm.pos = applyBlock(vm.pos, axes, 1)
	} else {
		vm.pos = applyBlock(vm.WPos(), axes, mul).Add(vm.wco)
	}

	return nil
}

// setOffset handles G10 L20, making the current position read as the given values.
func (vm *VM) setOffset(b Block, mul float64) error {
	if ok, l := b.Arg('L'); !ok || l != 20 {
		return errors.New("unsupported G10 form: " + b.String())
	}
	if ok, x := b.Arg('X'); ok {
		vm.wco.X = vm.pos.X - x*mul
	}
	if ok, y := b.Arg('Y'); ok {
		vm.wco.Y = vm.pos.Y - y*mul
	}
	return nil
}
