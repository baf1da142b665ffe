// Package cli provides the command-line interface of aqa.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/internal/output"
)

// Version is set at build time.
var Version = "dev"

// Options holds the command-line flags.
type Options struct {
	Watch         bool
	Verbose       bool
	NoConcurrency bool
	Reporter      string
	OutputDir     string
	Timeout       time.Duration
	MaxWorkers    int
}

// NewRootCommand creates the aqa command writing through out.
func NewRootCommand(out *output.Writer) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "aqa [glob-or-path]",
		Short:         "Run test files in isolated processes",
		Version:       Version,
		Args:          maxOneArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runTests(cmd.Context(), cmd, opts, out, arg)
		},
	}

	cmd.SetOut(out.Stdout())
	cmd.SetErr(out.Stderr())
	cmd.SetVersionTemplate("aqa {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WrapKind(errors.KindConfig, err, "invalid arguments")
	})
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		printHelp(out)
	})

	flags := cmd.Flags()
	flags.BoolVar(&opts.Watch, "watch", false, "re-run affected tests when files change")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print per-test progress and passing output")
	flags.BoolVar(&opts.NoConcurrency, "no-concurrency", false, "run test files one after another")
	flags.StringVar(&opts.Reporter, "reporter", "", "write a report per test file (tap|junit)")
	flags.StringVar(&opts.OutputDir, "output-dir", "", "directory for report files")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "maximum run time of a single test file")
	flags.IntVar(&opts.MaxWorkers, "max-workers", 0, "maximum number of test files running at once (0 = unbounded)")

	return cmd
}

func maxOneArg(_ *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.Configf("expected at most one glob or path, got %d arguments", len(args))
	}
	return nil
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Execute(ctx, args, output.New())
}

// Execute runs the root command and maps its error to an exit code.
// Test failures are already reported by the time they surface here.
func Execute(ctx context.Context, args []string, out *output.Writer) int {
	cmd := NewRootCommand(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}

	var ae *errors.AqaError
	if !errors.As(err, &ae) || ae.Kind != errors.KindTestFailure {
		out.ErrorPrefix("%v", err)
	}
	return errors.GetExitCode(err)
}
