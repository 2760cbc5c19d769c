// Package logging provides the leveled build logger used by the Conan
// orchestration.
//
// Four ordered levels control verbosity: quiet < normal < verbose < debug.
// Errors are always emitted; warnings, info, success and command echoes show
// at normal and above; verbose messages at verbose and above; debug messages
// only at debug. The logger also tracks named phases (profile setup, recipe
// installation, dependency resolution) and reports elapsed time when a phase
// exits.
//
// The level is resolved in this order: explicit argument > the
// CONANGO_LOG_LEVEL environment variable (quiet/normal/verbose/debug,
// case-insensitive, unknown values fall back to normal) > normal.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// EnvLogLevel is the environment variable consulted when no explicit level
// is given.
const EnvLogLevel = "CONANGO_LOG_LEVEL"

// prefix tags every line so the shim's output is distinguishable from the
// wrapped build's.
const prefix = "[conango]"

// Level is a log verbosity level.
type Level int

// Ordered verbosity levels.
const (
	Quiet   Level = iota // only errors
	Normal               // standard operation messages
	Verbose              // detailed operation info
	Debug                // everything, including full subprocess output
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case Quiet:
		return "quiet"
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	default:
		return "normal"
	}
}

// ParseLevel converts a level name to a Level. Unrecognized names map to
// Normal, matching the environment-variable contract.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return Quiet
	case "verbose":
		return Verbose
	case "debug":
		return Debug
	default:
		return Normal
	}
}

// LevelFromEnv resolves the level from CONANGO_LOG_LEVEL, defaulting to
// Normal when unset or unrecognized.
func LevelFromEnv() Level {
	return ParseLevel(os.Getenv(EnvLogLevel))
}

// =============================================================================
// Styles
// =============================================================================

var (
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorCyan   = lipgloss.Color("36")  // verbose detail
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleVerbose = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Logger
// =============================================================================

// Logger writes leveled status messages. Status output goes to Out (stdout by
// default) and errors/warnings to Err (stderr by default), so a host tool can
// capture the two streams separately.
//
// A Logger retains no state beyond the current phase timer and is meant for
// single-goroutine use, matching the synchronous orchestration it serves.
type Logger struct {
	Out io.Writer
	Err io.Writer

	level      Level
	phase      string
	phaseStart time.Time
}

// New creates a Logger at the given level writing to stdout/stderr.
func New(level Level) *Logger {
	return &Logger{Out: os.Stdout, Err: os.Stderr, level: level}
}

// NewFromEnv creates a Logger with the level resolved from the environment.
func NewFromEnv() *Logger {
	return New(LevelFromEnv())
}

// Level returns the current verbosity level.
func (l *Logger) Level() Level { return l.level }

// SetLevel updates the verbosity level.
func (l *Logger) SetLevel(level Level) { l.level = level }

// Errorf logs an error message. Always emitted, to the error stream.
func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintln(l.Err, styleError.Render(fmt.Sprintf(prefix+" ERROR "+format, args...)))
}

// Warnf logs a warning (normal and above), to the error stream.
func (l *Logger) Warnf(format string, args ...any) {
	if l.level >= Normal {
		fmt.Fprintln(l.Err, styleWarning.Render(fmt.Sprintf(prefix+" WARN "+format, args...)))
	}
}

// Infof logs a standard status message (normal and above).
func (l *Logger) Infof(format string, args ...any) {
	if l.level >= Normal {
		fmt.Fprintf(l.Out, prefix+" "+format+"\n", args...)
	}
}

// Printf writes unprefixed text to the output stream at every level. It is
// for output the caller explicitly requested, which must not be suppressed
// by the verbosity gate.
func (l *Logger) Printf(format string, args ...any) {
	fmt.Fprintf(l.Out, format+"\n", args...)
}

// Successf logs a success message (normal and above).
func (l *Logger) Successf(format string, args ...any) {
	if l.level >= Normal {
		fmt.Fprintln(l.Out, styleSuccess.Render(fmt.Sprintf(prefix+" "+format, args...)))
	}
}

// Commandf echoes an external command being executed (normal and above).
func (l *Logger) Commandf(format string, args ...any) {
	if l.level >= Normal {
		fmt.Fprintln(l.Out, styleCommand.Render(fmt.Sprintf(prefix+" $ "+format, args...)))
	}
}

// Verbosef logs detailed operation info (verbose and above).
func (l *Logger) Verbosef(format string, args ...any) {
	if l.level >= Verbose {
		fmt.Fprintln(l.Out, styleVerbose.Render(fmt.Sprintf(prefix+" "+format, args...)))
	}
}

// Debugf logs a debug message (debug only). A non-nil err appends its detail
// on a second line.
func (l *Logger) Debugf(err error, format string, args ...any) {
	if l.level >= Debug {
		fmt.Fprintf(l.Out, prefix+" DEBUG "+format+"\n", args...)
		if err != nil {
			fmt.Fprintf(l.Out, prefix+" DEBUG   %v\n", err)
		}
	}
}

// Output echoes captured subprocess output. At debug everything is shown; at
// verbose long output is truncated to its first lines plus a count; below
// verbose nothing is shown.
func (l *Logger) Output(out string) {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	switch {
	case l.level >= Debug:
		for _, line := range lines {
			fmt.Fprintln(l.Out, "  "+line)
		}
	case l.level >= Verbose:
		if len(lines) <= 10 {
			for _, line := range lines {
				fmt.Fprintln(l.Out, "  "+line)
			}
			return
		}
		for _, line := range lines[:5] {
			fmt.Fprintln(l.Out, "  "+line)
		}
		fmt.Fprintln(l.Out, styleDim.Render(fmt.Sprintf("  ... (%d more lines)", len(lines)-5)))
	}
}

// EnterPhase starts a named phase, printing a banner at normal and above and
// recording the start time for ExitPhase.
func (l *Logger) EnterPhase(name string) {
	l.phase = name
	l.phaseStart = time.Now()
	if l.level >= Normal {
		rule := strings.Repeat("=", 60)
		fmt.Fprintf(l.Out, "\n%s\n%s %s\n%s\n", rule, prefix, name, rule)
	}
}

// ExitPhase ends the current phase, reporting elapsed time and status at
// verbose and above. Calling it without a matching EnterPhase is a no-op.
func (l *Logger) ExitPhase(success bool) {
	if !l.phaseStart.IsZero() && l.level >= Verbose {
		elapsed := time.Since(l.phaseStart)
		status := styleSuccess.Render("completed")
		if !success {
			status = styleError.Render("failed")
		}
		fmt.Fprintf(l.Out, "%s Phase %s in %.1fs\n", prefix, status, elapsed.Seconds())
	}
	l.phase = ""
	l.phaseStart = time.Time{}
}

// Phase returns the name of the phase currently in progress, if any.
func (l *Logger) Phase() string { return l.phase }
