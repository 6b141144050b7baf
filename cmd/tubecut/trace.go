package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/tubecut/gcode"
)

func newTraceCommand() *cobra.Command {
	var moves bool
	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Summarize the motion and tool events of a G-code file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fd.Close()

			sum, err := gcode.Trace(gcode.NewParser(fd))
			if err != nil {
				return fmt.Errorf("trace %s: %w", args[0], err)
			}
			printSummary(cmd.OutOrStdout(), sum, moves)
			return nil
		},
	}
	cmd.Flags().BoolVar(&moves, "moves", false, "list every move")
	return cmd
}

func printSummary(w io.Writer, s *gcode.Summary, moves bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if moves {
		fmt.Fprintln(tw, "FROM\tTO\tFEED\tCUTTING")
		for _, m := range s.Moves {
			fmt.Fprintf(tw, "%g,%g\t%g,%g\t%g\t%t\n", m.From.X, m.From.Y, m.To.X, m.To.Y, m.Feed, m.Cutting)
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "moves:\t%d\n", len(s.Moves))
	fmt.Fprintf(tw, "pierces:\t%d\n", s.Pierces)
	fmt.Fprintf(tw, "releases:\t%d\n", s.Releases)
	fmt.Fprintf(tw, "dwell:\t%gs\n", s.DwellSeconds)
	fmt.Fprintf(tw, "cut length:\t%.3f\n", s.CutLength)
	fmt.Fprintf(tw, "tool on at end:\t%t\n", s.ToolOn)
}
