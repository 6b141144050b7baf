package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mastercactapus/tubecut/config"
	"github.com/mastercactapus/tubecut/machine"
	"github.com/mastercactapus/tubecut/machine/grbl"
	"github.com/mastercactapus/tubecut/serialport"
)

const drainInterval = 50 * time.Millisecond

func newMachine(cfg *config.Config, a machine.Adapter, log *zap.Logger) *machine.Machine {
	m := machine.NewMachine(a, log.Named("machine"))
	m.HomeFeedrate = cfg.Machine.HomeFeedrate
	m.JogFeedrate = cfg.Machine.JogFeedrate
	return m
}

func connect(cfg *config.Config, log *zap.Logger) (*grbl.Conn, error) {
	port, err := serialport.Open(cfg.SerialOptions())
	if err != nil {
		return nil, err
	}
	log.Info("serial port open", zap.String("port", cfg.Serial.Port), zap.Int("baud", cfg.Serial.Baud))
	return grbl.NewConn(port, log.Named("grbl")), nil
}

// stream queues program and waits until the controller acknowledged every
// line. Controller output is copied to out.
func stream(ctx context.Context, cfg *config.Config, log *zap.Logger, program string, out io.Writer) error {
	conn, err := connect(cfg, log)
	if err != nil {
		return err
	}
	m := newMachine(cfg, conn, log)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return conn.Run(ctx) })
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case line := <-conn.Output():
				fmt.Fprintln(out, line)
			}
		}
	})
	g.Go(func() error {
		id, n := m.RunText(program)
		err := m.WaitIdle(ctx, drainInterval)
		if err != nil {
			return err
		}
		log.Info("program complete", zap.String("job", id), zap.Int("lines", n))
		cancel()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && parent.Err() == nil {
		// finished
		return nil
	}
	return err
}
