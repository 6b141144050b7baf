package gcode

import (
	"io"
	"strings"
)

// ReadAll reads blocks from r until io.EOF.
func ReadAll(r Reader) ([]Block, error) {
	var b []Block
	for {
		bl, err := r.Read()
		if err == io.EOF {
			return b, nil
		}
		if err != nil {
			return nil, err
		}
		b = append(b, bl)
	}
}

func Parse(data string) ([]Block, error) {
	return ReadAll(NewParser(strings.NewReader(data)))
}

// ParseLines parses program text into lines, keeping raw lines and comments.
func ParseLines(data string) ([]Line, error) {
	p := NewParser(strings.NewReader(data))
	var lines []Line
	for {
		l, err := p.ReadLine()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
}
