package gcode

import (
	"io"

	"github.com/mastercactapus/tubecut/coord"
)

// Move is one linear motion replayed from a program.
type Move struct {
	From    coord.Point `json:"from"`
	To      coord.Point `json:"to"`
	Feed    float64     `json:"feed"`
	Cutting bool        `json:"cutting"`
}

// Summary describes what a program does when run from the origin.
type Summary struct {
	Moves []Move `json:"moves"`

	// Pierces counts tool off->on transitions, Releases on->off.
	Pierces  int `json:"pierces"`
	Releases int `json:"releases"`

	DwellSeconds float64 `json:"dwellSeconds"`
	CutLength    float64 `json:"cutLength"`

	// ToolOn is the tool state after the last block.
	ToolOn bool `json:"toolOn"`
}

// Trace replays every block from r through a fresh VM at the origin.
func Trace(r Reader) (*Summary, error) {
	return TraceFrom(r, coord.Point{})
}

// TraceFrom is like Trace, with the machine starting at start.
func TraceFrom(r Reader, start coord.Point) (*Summary, error) {
	vm := NewVM()
	vm.SetMPos(start)
	var s Summary
	for {
		b, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		wasOn := vm.ToolOn()
		from := vm.MPos()
		err = vm.Run(b)
		if err != nil {
			return nil, err
		}

		if b.Has(Word{W: 'G', Arg: 4}) {
			s.DwellSeconds += vm.LastDwell()
		}
		switch on := vm.ToolOn(); {
		case on && !wasOn:
			s.Pierces++
		case !on && wasOn:
			s.Releases++
		}

		to := vm.MPos()
		if from.Equal(to) {
			continue
		}
		m := Move{From: from, To: to, Feed: vm.Feed(), Cutting: vm.ToolOn()}
		if m.Cutting {
			s.CutLength += from.Distance(to)
		}
		s.Moves = append(s.Moves, m)
	}
	s.ToolOn = vm.ToolOn()

	return &s, nil
}
