package grbl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/machine"
)

const (
	ackToken = "ok"

	outputBuffer = 256

	readBufferSize = 512
	// maxLineLength bounds a single received line; Grbl lines are far shorter.
	maxLineLength = 4096
)

// ErrConnClosed is returned by Run if the connection already ran.
var ErrConnClosed = errors.New("grbl: connection closed")

type flowState int

const (
	// flowReady means the next queued line may be sent.
	flowReady flowState = iota
	// flowAwaitingAck means one line is in flight.
	flowAwaitingAck
)

// Conn represents a direct connection to a Grbl controller.
//
// Lines are sent one at a time; the next line is only written after the
// controller answers `ok`. Only the goroutine running Run touches the
// transport for writing.
type Conn struct {
	rw  io.ReadWriter
	log *zap.Logger

	queue *commandQueue

	mx     sync.RWMutex
	flow   flowState
	status machine.Status
	err    error

	updates chan machine.Status
	output  chan string

	runMx   sync.Mutex
	started bool
	done    chan struct{}
}

var _ machine.Adapter = &Conn{}

// NewConn creates a new Conn using the provided ReadWriter for data.
//
// If rw implements io.Closer it is closed when Run returns.
func NewConn(rw io.ReadWriter, logger *zap.Logger) *Conn {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conn{
		rw:      rw,
		log:     logger,
		queue:   newCommandQueue(),
		updates: make(chan machine.Status, 1),
		output:  make(chan string, outputBuffer),
		done:    make(chan struct{}),
	}
}

// splitLines breaks text on carriage returns and line feeds, dropping blank
// lines. The controller treats either byte as a line terminator.
func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func commands(lines []string, p Priority) []pendingCommand {
	cmds := make([]pendingCommand, len(lines))
	for i, l := range lines {
		cmds[i] = pendingCommand{line: l, priority: p}
	}
	return cmds
}

// Send queues a single line. Embedded line breaks split it into several
// lines, queued together in order.
func (c *Conn) Send(line string) {
	c.queue.push(commands(splitLines(line), PriorityNormal)...)
}

// SendLowPriority queues line only if no other line is waiting. It reports
// whether the line was queued. Blank lines and lines containing a line
// break are never queued.
func (c *Conn) SendLowPriority(line string) bool {
	lines := splitLines(line)
	if len(lines) != 1 {
		lowPriorityDropped.Inc()
		c.log.Warn("low priority line rejected", zap.String("line", line))
		return false
	}
	ok := c.queue.pushIfEmpty(pendingCommand{line: lines[0], priority: PriorityLow})
	if !ok {
		lowPriorityDropped.Inc()
		c.log.Debug("low priority line dropped", zap.String("line", line))
	}
	return ok
}

// SendProgram queues every non-blank line of program, in order.
func (c *Conn) SendProgram(program string) int {
	cmds := commands(splitLines(program), PriorityProgram)
	c.queue.push(cmds...)
	return len(cmds)
}

// Pending returns the number of lines waiting to be sent.
func (c *Conn) Pending() int { return c.queue.len() }

// Status returns a copy of the latest status report.
func (c *Conn) Status() machine.Status {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.status
}

// Updates delivers new status reports. Only the most recent unread report is kept.
func (c *Conn) Updates() <-chan machine.Status { return c.updates }

// Output delivers lines that are neither acknowledgements nor status reports.
func (c *Conn) Output() <-chan string { return c.output }

// Idle reports whether nothing is in flight and nothing is queued.
func (c *Conn) Idle() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.flow == flowReady && c.queue.len() == 0
}

// Done is closed once Run has returned.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the reason Run stopped, or nil while it is running.
func (c *Conn) Err() error {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.err
}

// Run drives the connection until ctx is done or the transport fails.
//
// Transport errors are fatal; there is no reconnect.
func (c *Conn) Run(ctx context.Context) error {
	c.runMx.Lock()
	if c.started {
		c.runMx.Unlock()
		return ErrConnClosed
	}
	c.started = true
	c.runMx.Unlock()

	lines := make(chan string)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	go c.readLoop(lines, readErr, stop)

	err := c.loop(ctx, lines, readErr)
	close(stop)
	if closer, ok := c.rw.(io.Closer); ok {
		closer.Close()
	}
	if !errors.Is(err, context.Canceled) {
		c.log.Error("connection stopped", zap.Error(err))
	}

	c.mx.Lock()
	c.err = err
	c.mx.Unlock()
	close(c.done)

	return err
}

func (c *Conn) loop(ctx context.Context, lines <-chan string, readErr <-chan error) error {
	for {
		err := c.transmitNext()
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.queue.notify:
		case line := <-lines:
			c.handleLine(line)
		case err := <-readErr:
			return fmt.Errorf("transport read: %w", err)
		}
	}
}

// transmitNext writes the front of the queue if nothing is in flight.
func (c *Conn) transmitNext() error {
	c.mx.Lock()
	if c.flow != flowReady {
		c.mx.Unlock()
		return nil
	}
	cmd, ok := c.queue.pop()
	if !ok {
		c.mx.Unlock()
		return nil
	}
	c.flow = flowAwaitingAck
	c.mx.Unlock()

	_, err := io.WriteString(c.rw, cmd.line+"\n")
	if err != nil {
		return fmt.Errorf("transport write: %w", err)
	}
	commandsTransmitted.WithLabelValues(cmd.priority.String()).Inc()
	c.log.Debug("transmit", zap.String("line", cmd.line), zap.Stringer("priority", cmd.priority))
	return nil
}

func (c *Conn) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
	case trimmed == ackToken:
		c.mx.Lock()
		inFlight := c.flow == flowAwaitingAck
		c.flow = flowReady
		c.mx.Unlock()
		acks.Inc()
		if !inFlight {
			c.log.Debug("ack with nothing in flight")
		}
	case isStatusEnvelope(trimmed):
		stat, err := ParseStatus(trimmed)
		if err != nil {
			statusReports.WithLabelValues("malformed").Inc()
			c.log.Warn("parse status", zap.String("line", line), zap.Error(err))
			c.forward(line)
			return
		}
		statusReports.WithLabelValues("ok").Inc()
		c.publish(stat)
	default:
		c.forward(line)
	}
}

func (c *Conn) publish(stat machine.Status) {
	c.mx.Lock()
	c.status = stat
	c.mx.Unlock()

	select {
	case c.updates <- stat:
		return
	default:
	}
	// replace the unread report
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- stat:
	default:
	}
}

func (c *Conn) forward(line string) {
	select {
	case c.output <- line:
		outputLines.WithLabelValues("forwarded").Inc()
	default:
		outputLines.WithLabelValues("dropped").Inc()
		c.log.Warn("output buffer full, dropping line", zap.String("line", line))
	}
}

func (c *Conn) readLoop(lines chan<- string, readErr chan<- error, stop <-chan struct{}) {
	var fr lineFramer
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.rw.Read(buf)
		for _, line := range fr.feed(buf[:n]) {
			select {
			case lines <- line:
			case <-stop:
				return
			}
		}
		if fr.truncated > 0 {
			c.log.Warn("received line too long, truncated", zap.Int("lines", fr.truncated), zap.Int("max_length", maxLineLength))
			fr.truncated = 0
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

// lineFramer assembles lines terminated by carriage returns. Line feeds are
// discarded, so both `\r` and `\r\n` framing work. Bytes beyond
// maxLineLength are dropped until the next carriage return.
type lineFramer struct {
	buf     []byte
	dropped int

	// truncated counts completed lines that lost bytes.
	truncated int
}

// feed consumes data and returns every line it completed.
func (f *lineFramer) feed(data []byte) []string {
	var lines []string
	for _, b := range data {
		switch {
		case b == '\r':
			lines = append(lines, string(f.buf))
			f.buf = f.buf[:0]
			if f.dropped > 0 {
				f.truncated++
				f.dropped = 0
			}
		case b == '\n':
		case len(f.buf) >= maxLineLength:
			f.dropped++
		default:
			f.buf = append(f.buf, b)
		}
	}
	return lines
}
