package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newSendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <file>",
		Short: "Stream a G-code file and wait until it completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return stream(cmd.Context(), cfg, log, string(data), cmd.ErrOrStderr())
		},
	}
}
