package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Parser reads blocks from G-code text, one per non-empty line.
type Parser struct{ br *bufio.Reader }

func NewParser(r io.Reader) *Parser {
	if br, ok := r.(*bufio.Reader); ok {
		return &Parser{br: br}
	}

	return &Parser{br: bufio.NewReader(r)}
}

var (
	rx      = regexp.MustCompile(`^([A-Z][0-9.\-]+)+$`)
	rxSplit = regexp.MustCompile(`[A-Z][0-9.\-]+`)
)

// stripComments removes `;` line comments and parenthesized comments.
func stripComments(s string) string {
	s = strings.SplitN(s, ";", 2)[0]
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return s
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			return s[:open]
		}
		s = s[:open] + s[open+end+1:]
	}
}

// isRaw reports whether s is a Grbl system command or realtime character
// rather than a G-code block.
func isRaw(s string) bool {
	if strings.HasPrefix(s, "$") {
		return true
	}
	switch s {
	case "?", "!", "~", "\x18":
		return true
	}
	return false
}

// firstComment returns the text of the first parenthesized comment in s.
func firstComment(s string) string {
	s = strings.SplitN(s, ";", 2)[0]
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return ""
	}
	s = s[open+1:]
	if end := strings.IndexByte(s, ')'); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// parseBlock returns nil for lines holding only whitespace or comments.
func parseBlock(s string) (Block, error) {
	s = stripComments(s)
	s = strings.Replace(s, " ", "", -1)
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)

	if s == "" {
		return nil, nil
	}

	if !rx.MatchString(s) {
		return nil, errors.New("invalid or unhandled line: " + s)
	}

	codes := rxSplit.FindAllString(s, -1)
	res := make(Block, len(codes))

	for i, c := range codes {
		_, err := fmt.Sscanf(c, "%c%f", &res[i].W, &res[i].Arg)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// ReadLine returns the next non-empty line. System commands such as `$J=` jogs
// and realtime characters such as `?` come back as raw lines.
func (p *Parser) ReadLine() (Line, error) {
	for {
		s, err := p.br.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		if err != nil {
			return Line{}, err
		}

		s = strings.TrimSpace(s)
		if isRaw(s) {
			return Line{Raw: s}, nil
		}

		b, err := parseBlock(s)
		if err != nil {
			return Line{}, err
		}
		if b == nil {
			continue
		}
		return Line{Block: b, Comment: firstComment(s)}, nil
	}
}

// Read returns the next G-code block, skipping raw lines.
func (p *Parser) Read() (Block, error) {
	for {
		l, err := p.ReadLine()
		if err != nil {
			return nil, err
		}
		if l.Block != nil {
			return l.Block, nil
		}
	}
}
