package cli

import (
	"github.com/aqatest/aqa/internal/config"
	"github.com/aqatest/aqa/internal/output"
)

func printHelp(w *output.Writer) {
	w.HelpTitle("aqa - run test files in isolated processes")

	w.HelpSection("Usage:")
	w.HelpUsage("aqa [flags]                Run every test file in the project")
	w.HelpUsage("aqa <path> [flags]         Run one test file, or the test files below a directory")
	w.HelpUsage("aqa <glob> [flags]         Run the files matching a glob, e.g. \"src/**/*.test.go\"")

	const flagWidth = 22
	w.HelpSection("Flags:")
	w.HelpFlag("--watch", "Re-run affected tests when files change", flagWidth)
	w.HelpFlag("-v, --verbose", "Print per-test progress and passing output", flagWidth)
	w.HelpFlag("--no-concurrency", "Run test files one after another", flagWidth)
	w.HelpFlag("--reporter <name>", "Write a tap or junit report per test file", flagWidth)
	w.HelpFlag("--output-dir <dir>", "Directory for report files (default test-results)", flagWidth)
	w.HelpFlag("--timeout <duration>", "Maximum run time of one test file (default 2m)", flagWidth)
	w.HelpFlag("--max-workers <n>", "Maximum number of concurrent test files", flagWidth)
	w.HelpFlag("--version", "Show version", flagWidth)
	w.HelpFlag("-h, --help", "Show this help", flagWidth)

	w.HelpSection("Configuration:")
	w.HelpUsage("aqa.yaml at the project root, or the \"aqa\" section of package.json.")
	w.HelpUsage("Flags override environment variables, which override the file.")

	const envWidth = 24
	w.HelpSection("Environment Variables:")
	w.HelpEnvVar(config.EnvVerbose, "Same as --verbose (true/false)", envWidth)
	w.HelpEnvVar(config.EnvConcurrency, "Set to false for --no-concurrency", envWidth)
	w.HelpEnvVar(config.EnvReporter, "Same as --reporter", envWidth)
	w.HelpEnvVar(config.EnvReporterOutputDir, "Same as --output-dir", envWidth)
	w.HelpEnvVar(config.EnvTimeout, "Same as --timeout", envWidth)
	w.HelpEnvVar(config.EnvMaxWorkers, "Same as --max-workers", envWidth)
	w.HelpEnvVar("NO_COLOR", "Disable colored output", envWidth)

	w.HelpSection("Examples:")
	w.HelpExample("aqa", "Run all test files")
	w.HelpExample("aqa math.test.go -v", "Run one file with verbose output")
	w.HelpExample("aqa --watch", "Watch the project and re-run tests on change")
	w.HelpExample("aqa --reporter junit --output-dir reports", "Write JUnit XML for CI")
	w.Println("")
}
