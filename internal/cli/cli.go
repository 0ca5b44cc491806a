// Package cli wires the command line: the root command runs the rain and
// the subcommands expose the bench, diagnostics and listings.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"cosmorain/internal/app"
	"cosmorain/internal/config"
	"cosmorain/internal/term"
)

const (
	defaultLogFile     = "cosmorain.log"
	defaultBenchFrames = 1000
)

// Build metadata, overridden with -ldflags at release time.
var (
	Version = "0.3.0"
	Build   = "dev"
)

// options is the state shared by the commands of one invocation.
type options struct {
	cfg        *config.Config
	configFile string
	out        io.Writer
}

// NewRootCmd builds the command tree writing reports to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	o := &options{cfg: config.Default(), out: out}

	root := &cobra.Command{
		Use:           "cosmorain",
		Short:         "falling character rain for the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.runRain,
	}
	root.SetOut(out)
	o.cfg.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&o.configFile, "config", "", "config file path (yaml)")

	var frames int
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the simulation off screen and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()
			_, err = app.Bench(cfg, frames, o.out, logger)
			return err
		},
	}
	benchCmd.Flags().IntVar(&frames, "frames", defaultBenchFrames, "frames to simulate")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "report terminal, locale and charset diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			return app.Doctor(o.out, cfg)
		},
	}

	bitcolorCmd := &cobra.Command{
		Use:   "check-bitcolor",
		Short: "report the detected and effective color mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd)
			if err != nil {
				return err
			}
			return app.CheckBitColor(o.out, cfg)
		},
	}

	listColorsCmd := &cobra.Command{
		Use:   "list-colors",
		Short: "list color schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listColors(o.out)
		},
	}

	listCharsetsCmd := &cobra.Command{
		Use:   "list-charsets",
		Short: "list charset presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCharsets(o.out)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(o.out, "cosmorain %s\n", Version)
			return err
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(o.out, "Version: %s\nBuild: %s\nCopyright: (c) the cosmorain authors\nLicense: MIT\nSource: cosmorain\n", Version, Build)
			return err
		},
	}

	root.AddCommand(benchCmd, doctorCmd, bitcolorCmd, listColorsCmd, listCharsetsCmd, versionCmd, infoCmd)
	return root
}

// resolve merges the config file, if any, with the flags set on cmd and
// validates the result.
func (o *options) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := o.cfg
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Overlay(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runRain validates the settings, then takes over the terminal until the
// rain ends.
func (o *options) runRain(cmd *cobra.Command, args []string) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	t, err := term.Open()
	if err != nil {
		return err
	}
	rain, err := app.New(cfg, t, logger, nil)
	if err != nil {
		t.Close()
		return err
	}
	runErr := rain.Run(cmd.Context())
	t.Close()
	if runErr != nil {
		return runErr
	}
	return rain.Report(o.out)
}

// newLogger returns the debug logger. The alternate screen owns stdout, so
// logs only go to a file and are discarded unless debugging.
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	if !cfg.Debug {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	path := cfg.LogFile
	if path == "" {
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return log.New(f, "", log.Lshortfile|log.Ltime), func() { f.Close() }, nil
}

// RewriteArgs expands the -mB shorthand, which pflag cannot express as a
// single-dash flag.
func RewriteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-mB" || a == "-mb" {
			a = "--message-no-border"
		}
		out[i] = a
	}
	return out
}

// Execute runs the command line in args.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCmd(out)
	root.SetArgs(RewriteArgs(args))
	return root.ExecuteContext(ctx)
}
