package grbl

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mastercactapus/tubecut/coord"
	"github.com/mastercactapus/tubecut/machine"
)

var (
	// ErrNotStatus is returned for lines that are not wrapped in <...>.
	ErrNotStatus = errors.New("not a status report")
	// ErrMalformedStatus is returned when a <...> line fails to parse.
	ErrMalformedStatus = errors.New("malformed status report")
)

func isStatusEnvelope(line string) bool {
	return len(line) >= 2 && line[0] == '<' && line[len(line)-1] == '>'
}

// parseCoords reads x,y with an optional ignored z.
func parseCoords(data string) (p coord.Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return p, errors.New("invalid number of elements")
	}
	p.X, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return p, err
	}
	p.Y, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return p, err
	}
	if !isFinite(p.X) || !isFinite(p.Y) {
		return p, errors.New("non-finite coordinate")
	}
	return p, nil
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ParseStatus parses a report like `<Idle|MPos:12.500,-3.250,0.000|FS:0,0>`.
//
// Only the state and the X/Y machine position are read. Unknown state names
// leave the state at Idle. A sub-state suffix such as `Hold:0` is ignored.
func ParseStatus(line string) (machine.Status, error) {
	var stat machine.Status

	line = strings.TrimSpace(line)
	if !isStatusEnvelope(line) {
		return stat, ErrNotStatus
	}
	parts := strings.Split(line[1:len(line)-1], "|")

	name, _, _ := strings.Cut(parts[0], ":")
	if !isIdent(name) {
		return stat, fmt.Errorf("%w: bad state %q", ErrMalformedStatus, parts[0])
	}
	stat.State, _ = machine.ParseState(name)

	for _, s := range parts[1:] {
		key, val, _ := strings.Cut(s, ":")
		if key != "MPos" {
			continue
		}
		pos, err := parseCoords(val)
		if err != nil {
			return machine.Status{}, fmt.Errorf("%w: MPos: %v", ErrMalformedStatus, err)
		}
		stat.MPos = pos
		return stat, nil
	}

	return machine.Status{}, fmt.Errorf("%w: missing MPos", ErrMalformedStatus)
}
