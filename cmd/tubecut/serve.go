package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the controller and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().String("addr", "", "address to bind the HTTP server to")
	cmd.Flags().Duration("poll-interval", 0, "status poll interval, 0 disables polling")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, log, err := opts.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	conn, err := connect(cfg, log)
	if err != nil {
		return err
	}
	m := newMachine(cfg, conn, log)
	a := newAPI(m, cfg.CutOptions(), log.Named("api"))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a,
		ReadHeaderTimeout: 15 * time.Second,
	}

	parent := cmd.Context()
	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error { return conn.Run(ctx) })
	g.Go(func() error { return a.run(ctx) })
	if cfg.Poll.Interval > 0 {
		g.Go(func() error { return m.StartPolling(ctx, cfg.Poll.Interval) })
	}
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && parent.Err() != nil {
		log.Info("shutting down")
		return nil
	}
	return err
}
