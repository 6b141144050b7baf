package gcode

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/mastercactapus/tubecut/coord"
)

// Line is a single program line with an optional human-readable comment.
//
// Raw lines are passed through untouched and are not G-code blocks.
type Line struct {
	Block   Block
	Raw     string
	Comment string
}

// Command returns the line without its comment.
func (l Line) Command() string {
	if l.Block == nil {
		return l.Raw
	}
	return l.Block.String()
}

func (l Line) String() string {
	if l.Comment == "" {
		return l.Command()
	}
	return l.Command() + " (" + l.Comment + ")"
}

// Program accumulates G-code lines in execution order.
//
// Lines are only ever appended; nothing is reordered or removed.
type Program struct {
	lines []Line
}

// NewProgram returns a program that starts in metric, absolute mode.
func NewProgram() *Program {
	p := &Program{}
	p.SetUnitsMetric()
	p.SetAbsolute()
	return p
}

func (p *Program) add(b Block, comment string) {
	p.lines = append(p.lines, Line{Block: b, Comment: comment})
}

func (p *Program) SetUnitsMetric() {
	p.add(Block{{W: 'G', Arg: 21}}, "set units to mm")
}

func (p *Program) SetAbsolute() {
	p.add(Block{{W: 'G', Arg: 90}}, "set positioning to absolute")
}

func (p *Program) SetRelative() {
	p.add(Block{{W: 'G', Arg: 91}}, "set positioning to relative")
}

// MoveTo adds a linear move to pos at the given feedrate.
func (p *Program) MoveTo(pos coord.Point, feedrate float64) {
	p.add(Block{
		{W: 'G', Arg: 1},
		{W: 'X', Arg: pos.X},
		{W: 'Y', Arg: pos.Y},
		{W: 'F', Arg: feedrate},
	}, "move to X: "+formatFloat(pos.X, 3)+", Y: "+formatFloat(pos.Y, 3)+" with feedrate: "+formatFloat(feedrate, 3))
}

// Dwell pauses for the given number of seconds.
func (p *Program) Dwell(seconds float64) {
	p.add(Block{{W: 'G', Arg: 4}, {W: 'P', Arg: seconds}}, "wait "+formatFloat(seconds, 3)+" seconds")
}

// SetToolEnabled switches the plasma/laser on or off.
func (p *Program) SetToolEnabled(enabled bool) {
	if enabled {
		p.add(Block{{W: 'M', Arg: 3}}, "set tool enabled")
		return
	}
	p.add(Block{{W: 'M', Arg: 5}}, "set tool disabled")
}

// SetZero makes the current position the origin.
func (p *Program) SetZero() {
	p.add(Block{
		{W: 'G', Arg: 10},
		{W: 'P', Arg: 0},
		{W: 'L', Arg: 20},
		{W: 'X', Arg: 0},
		{W: 'Y', Arg: 0},
		{W: 'Z', Arg: 0},
	}, "set machine zero")
}

// Raw appends line verbatim, e.g. `?` or a `$J=` jog.
func (p *Program) Raw(line string) {
	p.lines = append(p.lines, Line{Raw: line})
}

func (p *Program) Len() int { return len(p.lines) }

// Lines returns a copy of the program lines.
func (p *Program) Lines() []Line {
	l := make([]Line, len(p.lines))
	copy(l, p.lines)
	return l
}

// Blocks returns the G-code blocks of the program, skipping raw lines.
func (p *Program) Blocks() []Block {
	b := make([]Block, 0, len(p.lines))
	for _, l := range p.lines {
		if l.Block != nil {
			b = append(b, l.Block)
		}
	}
	return b
}

// Reader returns a Reader over the program blocks.
func (p *Program) Reader() Reader {
	return &BlocksReader{Blocks: p.Blocks()}
}

// String returns the finalized program, one newline-terminated line per command.
func (p *Program) String() string {
	var sb strings.Builder
	for _, l := range p.lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *Program) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, bytes.NewBufferString(p.String()))
}

// WriteFile exports the program text verbatim to name.
func (p *Program) WriteFile(name string) error {
	return os.WriteFile(name, []byte(p.String()), 0644)
}

// Jog returns a relative jog command for dx, dy at feedrate.
func Jog(dx, dy, feedrate float64) string {
	return "$J=" + Block{
		{W: 'G', Arg: 91},
		{W: 'G', Arg: 21},
		{W: 'X', Arg: dx},
		{W: 'Y', Arg: dy},
		{W: 'F', Arg: feedrate},
	}.String()
}
