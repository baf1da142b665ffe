package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aqatest/aqa/internal/config"
	"github.com/aqatest/aqa/internal/discovery"
	"github.com/aqatest/aqa/internal/errors"
	"github.com/aqatest/aqa/internal/orchestrator"
	"github.com/aqatest/aqa/internal/output"
	"github.com/aqatest/aqa/internal/project"
	"github.com/aqatest/aqa/internal/watch"
	"github.com/aqatest/aqa/pkg/report"
)

func runTests(ctx context.Context, cmd *cobra.Command, opts *Options, out *output.Writer, arg string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.WrapKind(errors.KindEnvironment, err, "cannot determine working directory")
	}
	root, err := project.FindRootOrCwd(cwd)
	if err != nil {
		return errors.WrapKind(errors.KindEnvironment, err, "cannot determine project root")
	}

	settings, warnings, err := config.LoadAndValidate(root)
	for _, w := range warnings {
		out.Warning("%s", w)
	}
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, opts, settings); err != nil {
		return err
	}
	out.SetVerbose(settings.Verbose)
	if settings.Source != "" {
		out.Info("Using configuration from %s", settings.Source)
	}

	finder := discovery.New(root, settings.Extensions())
	files, err := finder.Resolve(ctx, cwd, arg)
	if err != nil {
		return err
	}

	orch := orchestrator.New(settings, out)
	if opts.Watch {
		var fixed []string
		if arg != "" {
			fixed = files
		}
		w := watch.New(finder, out, func(ctx context.Context, files []string) {
			orchestrator.Report(out, orch.Run(ctx, files))
		}, watch.Options{Files: fixed})
		return w.Run(ctx)
	}

	if len(files) == 0 {
		out.Warning("no test files found")
	}
	summary := orch.Run(ctx, files)
	orchestrator.Report(out, summary)
	if !summary.Success() {
		return errors.TestsFailed(summary.Failed)
	}
	return nil
}

// applyFlags overlays explicitly set flags onto the resolved settings.
func applyFlags(cmd *cobra.Command, opts *Options, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		s.Verbose = opts.Verbose
	}
	if flags.Changed("no-concurrency") {
		s.Concurrency = !opts.NoConcurrency
	}
	if flags.Changed("reporter") {
		r, err := report.ParseReporter(opts.Reporter)
		if err != nil {
			return errors.WrapKind(errors.KindConfig, err, "--reporter")
		}
		s.Reporter = r
	}
	if flags.Changed("output-dir") {
		if opts.OutputDir == "" {
			return errors.Config("--output-dir: must not be empty")
		}
		s.OutputDir = opts.OutputDir
	}
	if flags.Changed("timeout") {
		if opts.Timeout <= 0 {
			return errors.Configf("--timeout: must be positive, got %s", opts.Timeout)
		}
		s.Timeout = opts.Timeout
	}
	if flags.Changed("max-workers") {
		if opts.MaxWorkers < 0 {
			return errors.Configf("--max-workers: must not be negative, got %d", opts.MaxWorkers)
		}
		s.MaxWorkers = opts.MaxWorkers
	}
	return nil
}
