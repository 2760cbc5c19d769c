// Package setup orchestrates the Conan dependency workflow around a wrapped
// native-build entry point.
//
// Setup validates the caller's configuration, applies platform compatibility
// adjustments, drives the Conan adapter through its install phases, merges
// the generated toolchain flags into the outgoing build arguments, and
// finally forwards everything to the wrapped build. The wrapped entry point
// is an injected capability: any BuildFunc works, with pkg/cmake providing
// the default.
//
// Failure handling follows fixed exit-code conventions: validation and known
// operational failures map to exit code 1, user interruption to 130, and
// truly unexpected errors are logged with full detail and propagated
// unmodified.
package setup

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/pflag"

	"github.com/conango/conango/pkg/cmake"
	"github.com/conango/conango/pkg/conan"
	"github.com/conango/conango/pkg/depgraph"
	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/execx"
	"github.com/conango/conango/pkg/logging"
)

// BuildFunc is the wrapped native-build entry point: it receives the merged
// CMake flag set plus all caller-supplied build arguments, unchanged.
type BuildFunc func(ctx context.Context, cmakeArgs []string, buildArgs map[string]any) error

// ExitError carries the process exit code a failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options configures Setup.
type Options struct {
	// Conanfile is the path to the folder holding conanfile.py or
	// conanfile.txt. Defaults to the current directory. Mutually exclusive
	// with Requirements.
	Conanfile string

	// Recipes lists local recipe directories to build into the Conan cache.
	Recipes []string

	// Requirements states dependencies directly, e.g. "fmt/[>=10.0.0]",
	// instead of through a conanfile.
	Requirements []string

	// OutputFolder is where Conan writes generated files. Defaults to ".conan".
	OutputFolder string

	// Settings overrides Conan profile settings, e.g. for ABI workarounds.
	Settings map[string]string

	// Profile names the Conan profile. Defaults per pkg/conan.
	Profile string

	// Env holds environment overrides for Conan calls. When nil, CC and CXX
	// are blanked to work around Anaconda compiler selection.
	Env map[string]string

	// CMakeArgs are caller flags for the native build; the generated
	// toolchain flags are appended to them.
	CMakeArgs []string

	// LogLevel forces a verbosity level. When nil, Args flags then the
	// environment decide.
	LogLevel *logging.Level

	// Args is the command-line argument list scanned for --build-type and
	// the -v/-q verbosity flags. Passed explicitly rather than read from
	// ambient os.Args so callers and tests control it.
	Args []string

	// Build is the wrapped native-build entry point. Defaults to a
	// pkg/cmake Builder over the current directory.
	Build BuildFunc

	// BuildArgs are forwarded to Build unchanged.
	BuildArgs map[string]any

	// Graph requests the dependency-graph artifact (DOT+SVG) in the output
	// folder. Best-effort: failures degrade to warnings.
	Graph bool

	// Report prints the dependency report regardless of verbosity. Without
	// it the report is only shown at verbose level and above.
	Report bool

	// Runner and Conan override subprocess execution, used by tests.
	Runner execx.Runner
	Conan  string

	// goos overrides runtime.GOOS for the platform workarounds in tests.
	goos string
}

// flagConfig is what the explicit argument list contributes.
type flagConfig struct {
	buildType string
	level     *logging.Level
}

// parseArgs scans an explicit argument list for --build-type and the
// conventional verbosity flags. Unknown flags are ignored: the list usually
// belongs to a host tool with its own flag set.
func parseArgs(args []string) (flagConfig, error) {
	fs := pflag.NewFlagSet("conango", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	buildType := fs.String("build-type", "Release", "CMake build type")
	verbose := fs.CountP("verbose", "v", "increase verbosity")
	quiet := fs.BoolP("quiet", "q", false, "only show errors")

	if err := fs.Parse(args); err != nil && !stderrors.Is(err, pflag.ErrHelp) {
		return flagConfig{}, errors.Wrap(errors.CodeInvalidInput, err, "could not parse arguments")
	}

	cfg := flagConfig{buildType: *buildType}
	if cfg.buildType != "Release" && cfg.buildType != "Debug" {
		return flagConfig{}, errors.New(errors.CodeInvalidInput,
			"invalid --build-type %q, choices are Release and Debug", cfg.buildType)
	}

	switch {
	case *quiet:
		level := logging.Quiet
		cfg.level = &level
	case *verbose >= 2:
		level := logging.Debug
		cfg.level = &level
	case *verbose == 1:
		level := logging.Verbose
		cfg.level = &level
	}
	return cfg, nil
}

// resolveLevel applies the verbosity precedence: explicit option, then
// command-line flags, then environment, then normal.
func resolveLevel(opts Options, flags flagConfig) logging.Level {
	if opts.LogLevel != nil {
		return *opts.LogLevel
	}
	if flags.level != nil {
		return *flags.level
	}
	return logging.LevelFromEnv()
}

// Setup runs the full workflow and returns nil on success. Known failures
// come back as *ExitError with the conventional code; unexpected errors are
// returned unmodified after being logged with full detail.
func Setup(ctx context.Context, opts Options) error {
	if opts.Conanfile == "" {
		opts.Conanfile = "."
	}
	goos := opts.goos
	if goos == "" {
		goos = runtime.GOOS
	}

	flags, err := parseArgs(opts.Args)
	if err != nil {
		logger := logging.New(resolveLevel(opts, flagConfig{}))
		logger.Errorf("%s", errors.Detailed(err))
		return &ExitError{Code: 1, Err: err}
	}
	logger := logging.New(resolveLevel(opts, flags))

	if err := Validate(opts.Conanfile, opts.Recipes, opts.Requirements); err != nil {
		logger.Errorf("%s", errors.Detailed(err))
		return &ExitError{Code: 1, Err: err}
	}

	// Default environment override: blank CC/CXX to keep Anaconda's compiler
	// wrappers from leaking into Conan's toolchain detection.
	env := opts.Env
	if env == nil {
		env = map[string]string{"CC": "", "CXX": ""}
	}

	settings := make(map[string]string, len(opts.Settings)+1)
	for k, v := range opts.Settings {
		settings[k] = v
	}
	cmakeArgs := append([]string(nil), opts.CMakeArgs...)

	// Platform compatibility adjustments, applied only when the caller has
	// not already chosen.
	if goos == "linux" {
		if _, ok := settings["compiler.libcxx"]; !ok {
			logger.Verbosef("applying ABI workaround: compiler.libcxx=libstdc++11")
			settings["compiler.libcxx"] = "libstdc++11"
		}
	}
	if goos == "windows" && !slices.Contains(cmakeArgs, msvcRuntimePolicy) {
		logger.Verbosef("applying MSVC workaround: %s", msvcRuntimePolicy)
		cmakeArgs = append(cmakeArgs, msvcRuntimePolicy)
	}

	err = run(ctx, opts, flags, logger, env, settings, &cmakeArgs)
	if err != nil {
		if canceled(ctx, err) {
			logger.Warnf("build interrupted by user")
			return &ExitError{Code: 130, Err: err}
		}
		var known *errors.Error
		if stderrors.As(err, &known) {
			logger.Errorf("%s", known.DetailedMessage())
			if known.Code == errors.CodeNetwork {
				logger.Warnf("network errors are often transient, try running again")
			}
			return &ExitError{Code: 1, Err: err}
		}
		// Unexpected failure: log everything we know and hand the original
		// error to the caller untouched.
		logger.Errorf("unexpected error during setup: %v", err)
		logger.Errorf("this is likely a bug, please report it at %s", errors.SupportURL)
		logger.Debugf(err, "full error detail")
		return err
	}

	logger.Successf("Conan dependencies set up successfully")
	logger.Verbosef("cmake arguments: %v", cmakeArgs)

	if opts.Build == nil {
		builder := cmake.New(".", "build")
		builder.BuildType(flags.buildType)
		builder.Logger(logger)
		opts.Build = func(ctx context.Context, args []string, _ map[string]any) error {
			return builder.Run(ctx, args...)
		}
	}
	if err := opts.Build(ctx, cmakeArgs, opts.BuildArgs); err != nil {
		if canceled(ctx, err) {
			logger.Warnf("build interrupted by user")
			return &ExitError{Code: 130, Err: err}
		}
		logger.Errorf("native build failed: %v", err)
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// msvcRuntimePolicy makes CMake honor CMAKE_MSVC_RUNTIME_LIBRARY so the MSVC
// runtime matches the build type.
const msvcRuntimePolicy = "-DCMAKE_POLICY_DEFAULT_CMP0091=NEW"

// run drives the Conan adapter and appends the generated flags to cmakeArgs.
func run(ctx context.Context, opts Options, flags flagConfig, logger *logging.Logger,
	env, settings map[string]string, cmakeArgs *[]string) error {

	helper, err := conan.New(ctx, conan.Options{
		OutputFolder: opts.OutputFolder,
		LocalRecipes: opts.Recipes,
		Settings:     settings,
		Profile:      opts.Profile,
		Env:          env,
		BuildType:    flags.buildType,
		Logger:       logger,
		Runner:       opts.Runner,
		Conan:        opts.Conan,
	})
	if err != nil {
		return err
	}

	if err := helper.Install(ctx, opts.Conanfile, opts.Requirements); err != nil {
		return err
	}

	generated, err := helper.CMakeArgs()
	if err != nil {
		return err
	}
	*cmakeArgs = append(*cmakeArgs, generated...)

	report := helper.GenerateDependencyReport(ctx, opts.Requirements)
	switch {
	case opts.Report:
		logger.Printf("\n%s", report)
	case logger.Level() >= logging.Verbose:
		logger.Infof("\n%s", report)
	}

	if opts.Graph {
		if g, err := helper.GraphInfo(ctx, opts.Conanfile, opts.Requirements); err != nil {
			logger.Warnf("could not resolve dependency graph: %s", errors.UserMessage(err))
		} else if dotPath, svgPath, err := depgraph.Write(ctx, g, helper.OutputDir()); err != nil {
			logger.Warnf("could not write dependency graph: %v", err)
		} else {
			logger.Infof("dependency graph written to %s and %s", dotPath, svgPath)
		}
	}
	return nil
}

func canceled(ctx context.Context, err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(ctx.Err(), context.Canceled)
}

// Run executes Setup and converts its outcome to a process exit. Intended
// for use directly from a main function.
func Run(ctx context.Context, opts Options) {
	err := Setup(ctx, opts)
	if err == nil {
		return
	}
	var exit *ExitError
	if stderrors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	os.Exit(1)
}
