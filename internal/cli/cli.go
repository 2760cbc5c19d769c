// Package cli implements the conango command-line interface.
//
// This package provides commands for setting up C/C++ dependencies through
// Conan and handing the generated toolchain configuration to a CMake build.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - setup: Resolve dependencies and run the wrapped CMake build
//   - report: Print the dependency report for the current configuration
//   - doctor: Check the installed Conan and CMake toolchain
//
// # Logging
//
// All commands support --verbose (-v, repeatable) and --quiet (-q). CLI
// diagnostics go through charmbracelet/log; the dependency workflow itself
// reports through pkg/logging at the matching level.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/conango/conango/pkg/buildinfo"
	"github.com/conango/conango/pkg/logging"
)

// appName is the application name used for the binary and display.
const appName = "conango"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	level  logging.Level
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		level:  logging.Normal,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose int
	var quiet bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Conango wires Conan-managed C/C++ dependencies into CMake builds",
		Long:         `Conango fetches C/C++ dependencies through Conan 2, installs local recipes into the cache, and hands the generated toolchain configuration to a CMake build.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case quiet:
				c.level = logging.Quiet
				c.SetLogLevel(log.ErrorLevel)
			case verbose >= 2:
				c.level = logging.Debug
				c.SetLogLevel(log.DebugLevel)
			case verbose == 1:
				c.level = logging.Verbose
				c.SetLogLevel(log.DebugLevel)
			default:
				c.level = logging.LevelFromEnv()
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (-vv for debug)")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only show errors")

	// Register all subcommands
	root.AddCommand(c.setupCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.completionCommand())

	return root
}
