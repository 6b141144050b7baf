package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/config"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "tubecut",
		Short: "Plasma tube cutter controller for Grbl",
		Long: `tubecut generates cut programs for a plasma tube cutter and streams
them to a Grbl controller over a serial port, one acknowledged line at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file path")
	pf.String("port", "", "serial port path")
	pf.Int("baud", 0, "serial baud rate")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Bool("dev", false, "use development logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCutCommand(opts))
	cmd.AddCommand(newSendCommand(opts))
	cmd.AddCommand(newTraceCommand())

	return cmd
}

// load reads the config and builds the logger for cmd.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := cfg.Log.Logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
