// Package output provides formatted console output for aqa.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// Writer handles console output formatting for both the aqa command and
// test file processes.
type Writer struct {
	out     io.Writer
	err     io.Writer
	color   bool
	verbose bool
}

// New creates a new Writer on the process stdout and stderr.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: ColorEnabled(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// ColorEnabled decides whether ANSI colors are used. AQA_COLOR overrides
// NO_COLOR, which overrides terminal detection.
func ColorEnabled() bool {
	if v, ok := os.LookupEnv("AQA_COLOR"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetVerbose enables or disables per-test narration.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// Verbose reports whether narration is enabled.
func (w *Writer) Verbose() bool {
	return w.verbose
}

// Color reports whether the writer emits ANSI colors.
func (w *Writer) Color() bool {
	return w.color
}

// Stdout returns the underlying standard output writer.
func (w *Writer) Stdout() io.Writer {
	return w.out
}

// Stderr returns the underlying standard error writer.
func (w *Writer) Stderr() io.Writer {
	return w.err
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...any) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints a message only in verbose mode.
func (w *Writer) Info(format string, args ...any) {
	if !w.verbose {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...any) {
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...any) {
	w.Errorln("%s", w.paint(yellow, "warning: "+fmt.Sprintf(format, args...)))
}

// ErrorPrefix prints an error message with the aqa prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.Errorln("%s %s", w.paint(red, "aqa:"), msg)
}

// Gray returns text dimmed when colors are enabled.
func (w *Writer) Gray(text string) string {
	return w.paint(gray, text)
}

// FileHeader prints the "[name]" line that opens a test file's output.
func (w *Writer) FileHeader(name string) {
	w.Println("%s", w.paint(bold+cyan, "["+name+"]"))
}

// Block prints a multi-line block to stdout, skipping it when blank.
func (w *Writer) Block(text string) {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	w.Println("%s", text)
}

// TestStart narrates the start of a test (verbose mode).
func (w *Writer) TestStart(name string) {
	if !w.verbose {
		return
	}
	w.Println("%s %s", w.paint(cyan, "▶"), name)
}

// TestPassed narrates a passing test (verbose mode).
func (w *Writer) TestPassed(name string, d time.Duration) {
	if !w.verbose {
		return
	}
	w.Println("%s %s %s", w.paint(green, "✓"), name, w.paint(gray, "("+HumanTime(d)+")"))
}

// TestSkipped narrates a skipped test (verbose mode).
func (w *Writer) TestSkipped(name, reason string) {
	if !w.verbose {
		return
	}
	w.Println("%s %s %s", w.paint(yellow, "-"), name, w.paint(gray, "(skipped: "+reason+")"))
}

// TestFailed reports a failing test to stderr.
func (w *Writer) TestFailed(name, message string) {
	w.Errorln("%s", w.paint(red, fmt.Sprintf("✗ FAILED: %q", name)))
	w.Errorln("Error: %s", message)
}

// LogGroup prints the buffered log lines of a test under a "[log] name"
// header.
func (w *Writer) LogGroup(name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.Println("%s", w.paint(gray, "[log] "+name))
	for _, line := range lines {
		w.Println("  %s", line)
	}
}

// FinalSuccess prints the green closing line with the elapsed time.
func (w *Writer) FinalSuccess(elapsed time.Duration, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s %s", w.paint(green, " "+msg), w.paint(gray, "("+HumanTime(elapsed)+")"))
}

// FinalFailure prints the red closing line with the elapsed time.
func (w *Writer) FinalFailure(elapsed time.Duration, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.Println("%s %s", w.paint(red, " "+msg), w.paint(gray, "("+HumanTime(elapsed)+")"))
}

// FatalError prints the stderr of a process that died without a summary.
func (w *Writer) FatalError(stderr string) {
	w.Println("%s", w.paint(red, "Fatal error:"))
	w.Block(stderr)
}

// Watch prints a "[watch]" status line.
func (w *Writer) Watch(format string, args ...any) {
	w.Println("%s %s", w.paint(bold+blue, "[watch]"), fmt.Sprintf(format, args...))
}

// HumanTime renders a duration as "N ms" below one second and as seconds
// with one decimal otherwise.
func HumanTime(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func (w *Writer) paint(code, text string) string {
	if !w.color {
		return text
	}
	return code + text + reset
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

// Semantic color roles for help output.
const (
	colorTitle       = bold + cyan   // Main title/brand
	colorSection     = bold + yellow // Section headers
	colorPlaceholder = green         // Placeholders like <glob>
	colorFlag        = yellow        // Flags like --watch
	colorDescription = dim           // Help text descriptions
	colorExample     = cyan          // Example commands
	colorEnvVar      = yellow        // Environment variables
)

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(colorTitle, title))
}

// HelpSection formats a section header (e.g., "Flags:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(colorSection, title))
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	if w.color {
		padding := max(width-len(name), 0)
		w.Println("  %s%s%s%s  %s%s%s", colorFlag, w.colorPlaceholders(name), reset, strings.Repeat(" ", padding), colorDescription, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(colorExample, command))
	if description != "" {
		w.Println("      %s", w.paint(colorDescription, description))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	if w.color {
		w.Println("  %s", w.colorPlaceholders(usage))
	} else {
		w.Println("  %s", usage)
	}
}

// HelpEnvVar formats an environment variable.
func (w *Writer) HelpEnvVar(name, description string, width int) {
	if w.color {
		w.Println("  %s%-*s%s  %s%s%s", colorEnvVar, width, name, reset, colorDescription, description, reset)
	} else {
		w.Println("  %-*s  %s", width, name, description)
	}
}

// colorPlaceholders highlights <placeholder> patterns in text.
func (w *Writer) colorPlaceholders(text string) string {
	var result strings.Builder
	i := 0
	for i < len(text) {
		if text[i] == '<' {
			end := strings.Index(text[i:], ">")
			if end != -1 {
				placeholder := text[i : i+end+1]
				result.WriteString(reset)
				result.WriteString(colorPlaceholder)
				result.WriteString(placeholder)
				result.WriteString(reset)
				i += end + 1
				continue
			}
		}
		result.WriteByte(text[i])
		i++
	}
	return result.String()
}
