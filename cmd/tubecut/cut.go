package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mastercactapus/tubecut/gcode"
	"github.com/mastercactapus/tubecut/machine"
)

type cutFlags struct {
	job    string
	output string
	send   bool
	dryRun bool

	x, y      float64
	width     float64
	angle     float64
	feedrate  float64
	method    string
	overshoot float64
}

func newCutCommand(opts *rootOptions) *cobra.Command {
	var f cutFlags
	cmd := &cobra.Command{
		Use:   "cut",
		Short: "Generate the program for a cut or a job file",
		Long: `Generate the G-code for a single cut, or for every cut listed in a YAML
job file. The program is printed unless --output or --send is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCut(cmd, opts, &f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.job, "job", "", "YAML job file with a list of cuts")
	fs.StringVarP(&f.output, "output", "o", "", "write the program to this file")
	fs.BoolVar(&f.send, "send", false, "stream the program to the controller")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print a trace of the program instead of the program")
	fs.Float64Var(&f.x, "x", 0, "cut start X")
	fs.Float64Var(&f.y, "y", 0, "cut start Y")
	fs.Float64Var(&f.width, "width", 0, "tube width")
	fs.Float64Var(&f.angle, "angle", 0, "cut angle in degrees")
	fs.Float64Var(&f.feedrate, "feedrate", 0, "cutting feedrate")
	fs.StringVar(&f.method, "method", "", "cut method (split or straight)")
	fs.Float64Var(&f.overshoot, "overshoot", 0, "distance to travel past the tube edge")

	return cmd
}

// apply overrides opt with every cut flag set on cmd.
func (f *cutFlags) apply(cmd *cobra.Command, opt machine.CutOptions) machine.CutOptions {
	changed := cmd.Flags().Changed
	if changed("x") {
		opt.Start.X = f.x
	}
	if changed("y") {
		opt.Start.Y = f.y
	}
	if changed("width") {
		opt.TubeWidth = f.width
	}
	if changed("angle") {
		opt.CutAngle = f.angle
	}
	if changed("feedrate") {
		opt.Feedrate = f.feedrate
	}
	if changed("method") {
		opt.Method = machine.CutMethod(f.method)
	}
	if changed("overshoot") {
		opt.Overshoot = f.overshoot
	}
	return opt
}

type jobFile struct {
	Cuts []yaml.Node `yaml:"cuts"`
}

// readJob decodes a job file. Each cut starts from defaults.
func readJob(r io.Reader, defaults machine.CutOptions) ([]machine.CutOptions, error) {
	var jf jobFile
	err := yaml.NewDecoder(r).Decode(&jf)
	if err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if len(jf.Cuts) == 0 {
		return nil, errors.New("job has no cuts")
	}
	cuts := make([]machine.CutOptions, len(jf.Cuts))
	for i := range jf.Cuts {
		cuts[i] = defaults
		err = jf.Cuts[i].Decode(&cuts[i])
		if err != nil {
			return nil, fmt.Errorf("cut %d: %w", i+1, err)
		}
	}
	return cuts, nil
}

func readJobFile(name string, defaults machine.CutOptions) ([]machine.CutOptions, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return readJob(fd, defaults)
}

func buildCutProgram(cmd *cobra.Command, f *cutFlags, defaults machine.CutOptions) (*gcode.Program, error) {
	defaults = f.apply(cmd, defaults)
	if f.job == "" {
		return defaults.Program()
	}
	cuts, err := readJobFile(f.job, defaults)
	if err != nil {
		return nil, err
	}
	return machine.JobProgram(cuts)
}

func runCut(cmd *cobra.Command, opts *rootOptions, f *cutFlags) error {
	cfg, log, err := opts.load(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildCutProgram(cmd, f, cfg.CutOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.dryRun {
		sum, err := gcode.Trace(p.Reader())
		if err != nil {
			return err
		}
		printSummary(out, sum, false)
		return nil
	}

	if f.output != "" {
		err = p.WriteFile(f.output)
		if err != nil {
			return err
		}
		log.Info("program written", zap.String("file", f.output), zap.Int("lines", p.Len()))
	}

	if f.send {
		return stream(cmd.Context(), cfg, log, p.String(), cmd.ErrOrStderr())
	}
	if f.output == "" {
		_, err = p.WriteTo(out)
	}
	return err
}
