// Package serialport opens the serial device a Grbl controller is attached to.
package serialport

import (
	"errors"
	"fmt"
	"io"

	"github.com/tarm/serial"
)

// Options identify the device and line speed.
type Options struct {
	Port string
	Baud int
}

func (o Options) Validate() error {
	if o.Port == "" {
		return errors.New("serial port is required")
	}
	if o.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", o.Baud)
	}
	return nil
}

func (o Options) config() *serial.Config {
	// ReadTimeout stays zero so reads block until data arrives. A timed out
	// read on Linux surfaces as io.EOF, which would end the connection.
	return &serial.Config{Name: o.Port, Baud: o.Baud}
}

// Open opens the port.
//
// Reads are blocking, and closing the port does not interrupt a read that is
// already waiting on Linux. A reader goroutine outlives Close until the next
// byte arrives or the process exits.
func Open(o Options) (io.ReadWriteCloser, error) {
	err := o.Validate()
	if err != nil {
		return nil, err
	}
	p, err := serial.OpenPort(o.config())
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", o.Port, err)
	}
	return p, nil
}
