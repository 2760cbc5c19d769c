// Package conan adapts the Conan 2 command-line interface for use as a
// build-configuration step.
//
// The Helper drives Conan through three phases: profile setup, local recipe
// installation, and dependency resolution. It translates Conan's JSON output
// and failure modes into the structured error kinds of pkg/errors, retries
// transient network failures, and emits the CMake flags pointing at the
// generated toolchain configuration.
//
// Conan itself is treated as an opaque collaborator: dependency graph
// resolution, recipe execution and binary caching are delegated wholesale.
package conan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/conango/conango/pkg/envscope"
	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/execx"
	"github.com/conango/conango/pkg/logging"
	"github.com/conango/conango/pkg/retry"
)

const (
	// DefaultProfile is the profile conango creates and reuses when the
	// caller does not name one. Kept distinct from Conan's own "default" so
	// our detection settings never clobber a user's default profile.
	DefaultProfile = "conango"

	// EnvProfile overrides the default profile name.
	EnvProfile = "CONANGO_PROFILE"

	// DefaultOutputFolder is where generated build configuration lands,
	// split into one subfolder per build type.
	DefaultOutputFolder = ".conan"

	// ReportFilename is the dependency report written into the per-build-type
	// output folder on every run.
	ReportFilename = "dependency-report.txt"

	// toolchainFile is the CMake toolchain include Conan generates.
	toolchainFile = "conan_toolchain.cmake"

	// excerptLimit bounds the raw-output excerpt embedded in
	// MALFORMED_OUTPUT errors.
	excerptLimit = 200
)

// Retry defaults for transient network failures.
const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 2.0
)

// Options configures a Helper.
type Options struct {
	// OutputFolder is the root for generated files. Defaults to ".conan".
	// Each build type gets its own subfolder (e.g. .conan/release).
	OutputFolder string

	// LocalRecipes lists directories containing conanfile.py recipes to
	// install into the local cache before resolution.
	LocalRecipes []string

	// Settings are profile setting overrides passed as -s key=value.
	Settings map[string]string

	// Profile names the Conan profile to use. Defaults to DefaultProfile,
	// overridable through the CONANGO_PROFILE environment variable.
	Profile string

	// Env holds environment overrides applied for the duration of every
	// Conan invocation and restored afterwards.
	Env map[string]string

	// BuildType selects Release or Debug. Defaults to "Release".
	BuildType string

	// Logger receives phase and command logging. Defaults to a logger at the
	// level resolved from the environment.
	Logger *logging.Logger

	// Runner executes external commands. Defaults to the os/exec runner.
	Runner execx.Runner

	// Conan is the executable name. Defaults to "conan".
	Conan string

	// MaxAttempts and BackoffBase tune the network-failure retry policy.
	MaxAttempts int
	BackoffBase float64
}

// Helper orchestrates Conan for one build configuration.
type Helper struct {
	outputFolder string
	localRecipes []string
	settings     map[string]string
	profile      string
	env          map[string]string
	buildType    string
	logger       *logging.Logger
	runner       execx.Runner
	conan        string
	maxAttempts  int
	backoffBase  float64
}

// New creates a Helper and verifies the installed Conan is a supported major
// version. A major version other than 2 yields a VERSION_INCOMPATIBLE error;
// 2.0.x releases log an upgrade warning. Host toolchain issues found
// during the best-effort compatibility probe are downgraded to warnings.
func New(ctx context.Context, opts Options) (*Helper, error) {
	h := &Helper{
		outputFolder: opts.OutputFolder,
		localRecipes: opts.LocalRecipes,
		settings:     opts.Settings,
		profile:      opts.Profile,
		env:          opts.Env,
		buildType:    opts.BuildType,
		logger:       opts.Logger,
		runner:       opts.Runner,
		conan:        opts.Conan,
		maxAttempts:  opts.MaxAttempts,
		backoffBase:  opts.BackoffBase,
	}
	if h.outputFolder == "" {
		h.outputFolder = DefaultOutputFolder
	}
	if h.profile == "" {
		if env := os.Getenv(EnvProfile); env != "" {
			h.profile = env
		} else {
			h.profile = DefaultProfile
		}
	}
	if h.buildType == "" {
		h.buildType = "Release"
	}
	if h.logger == nil {
		h.logger = logging.NewFromEnv()
	}
	if h.runner == nil {
		h.runner = execx.NewRunner()
	}
	if h.conan == "" {
		h.conan = "conan"
	}
	if h.maxAttempts <= 0 {
		h.maxAttempts = defaultMaxAttempts
	}
	if h.backoffBase <= 0 {
		h.backoffBase = defaultBackoffBase
	}

	if len(h.env) > 0 {
		h.logger.Verbosef("temporarily overriding environment variables: %v", sortedKeys(h.env))
	}

	if err := h.checkConanVersion(ctx); err != nil {
		return nil, err
	}
	h.checkHostToolchain(ctx)
	return h, nil
}

// Profile returns the profile name in use.
func (h *Helper) Profile() string { return h.profile }

// BuildType returns the configured build type.
func (h *Helper) BuildType() string { return h.buildType }

// OutputDir returns the absolute per-build-type output folder.
func (h *Helper) OutputDir() string {
	abs, err := filepath.Abs(filepath.Join(h.outputFolder, strings.ToLower(h.buildType)))
	if err != nil {
		return filepath.Join(h.outputFolder, strings.ToLower(h.buildType))
	}
	return abs
}

// =============================================================================
// Command plumbing
// =============================================================================

// run executes one Conan invocation with the scoped environment override in
// place, echoing the command and its output through the logger. Failures are
// classified: output matching network signatures becomes a NETWORK error so
// the retry policy can engage; everything else is returned as-is for the
// caller to wrap.
func (h *Helper) run(ctx context.Context, args ...string) (string, error) {
	h.logger.Commandf("%s %s", h.conan, strings.Join(args, " "))

	var stdout, stderr []byte
	err := envscope.With(h.env, func() error {
		var runErr error
		stdout, stderr, runErr = h.runner.Run(ctx, "", h.conan, args...)
		return runErr
	})

	if out := string(stdout) + string(stderr); strings.TrimSpace(out) != "" {
		h.logger.Output(out)
	}

	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		if isNetworkFailure(detail) {
			return "", errors.New(errors.CodeNetwork, "conan %s: %s", args[0], excerpt(detail))
		}
		return "", fmt.Errorf("conan %s: %w: %s", args[0], err, excerpt(detail))
	}
	return string(stdout), nil
}

// runRetry wraps run with the bounded network-failure retry policy.
func (h *Helper) runRetry(ctx context.Context, args ...string) (string, error) {
	var out string
	err := retry.Do(ctx, h.maxAttempts, h.backoffBase, h.logger, func() error {
		var runErr error
		out, runErr = h.run(ctx, args...)
		return runErr
	})
	return out, err
}

// runJSON executes a JSON-emitting Conan command and decodes stdout into v.
// Non-JSON output yields a MALFORMED_OUTPUT error carrying a truncated
// excerpt for diagnosis.
func (h *Helper) runJSON(ctx context.Context, v any, args ...string) error {
	out, err := h.runRetry(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return errors.Wrap(errors.CodeMalformedOutput, err,
			"expected JSON from 'conan %s', got: %s", args[0], excerpt(out))
	}
	return nil
}

// isNetworkFailure matches Conan output against transient-network signatures.
func isNetworkFailure(out string) bool {
	lower := strings.ToLower(out)
	for _, sig := range []string{
		"connection refused",
		"connection reset",
		"connection aborted",
		"timed out",
		"timeout",
		"temporary failure in name resolution",
		"name or service not known",
		"network is unreachable",
		"failed to establish a new connection",
		"ssl error",
		"remote disconnected",
		"max retries exceeded",
	} {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// excerpt truncates s for embedding in error messages.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > excerptLimit {
		return s[:excerptLimit] + "..."
	}
	return s
}

// =============================================================================
// Version and compatibility checks
// =============================================================================

// Version queries the installed Conan and returns its reported version
// string (the trailing token of "conan --version" output).
func (h *Helper) Version(ctx context.Context) (string, error) {
	out, err := h.runRetry(ctx, "--version")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return "", errors.New(errors.CodeMalformedOutput, "empty output from 'conan --version'")
	}
	return fields[len(fields)-1], nil
}

func (h *Helper) checkConanVersion(ctx context.Context) error {
	h.logger.Verbosef("checking Conan version")
	raw, err := h.Version(ctx)
	if err != nil {
		return errors.Wrap(errors.CodeVersionIncompatible, err, "could not determine Conan version")
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return errors.Wrap(errors.CodeMalformedOutput, err, "unparseable Conan version %q", raw)
	}
	if v.Major() != 2 {
		return errors.New(errors.CodeVersionIncompatible,
			"Conan %s is not compatible, required: 2.x", raw)
	}
	if v.Minor() == 0 {
		h.logger.Warnf("Conan %s is an old 2.0.x patch release; consider upgrading", raw)
	}
	h.logger.Verbosef("Conan version %s OK", raw)
	return nil
}

// minCMake is the oldest CMake the generated toolchain files are known to
// work with.
var minCMake = semver.MustParse("3.15.0")

// checkHostToolchain performs best-effort compatibility checks of the host
// build tools. Any issue found is downgraded to a logged warning; probe
// failures only show at debug.
func (h *Helper) checkHostToolchain(ctx context.Context) {
	stdout, _, err := h.runner.Run(ctx, "", "cmake", "--version")
	if err != nil {
		h.logger.Debugf(err, "cmake version probe failed")
		return
	}

	// First line reads "cmake version X.Y.Z".
	fields := strings.Fields(strings.SplitN(string(stdout), "\n", 2)[0])
	if len(fields) == 0 {
		return
	}
	v, err := semver.NewVersion(fields[len(fields)-1])
	if err != nil {
		h.logger.Debugf(err, "unparseable cmake version output")
		return
	}
	if v.LessThan(minCMake) {
		warn := errors.New(errors.CodeCompatWarning,
			"CMake %s is older than %s; the generated toolchain file may not work", v, minCMake)
		h.logger.Warnf("%s", errors.UserMessage(warn))
	}
}

// =============================================================================
// Install phases
// =============================================================================

// EnsureProfile guarantees the configured profile exists, creating it via
// Conan's auto-detection when missing. An existing profile is left untouched:
// the first listing hit early-returns, which also de-duplicates the case
// where the requested name is Conan's own "default" and already materialized.
func (h *Helper) EnsureProfile(ctx context.Context) error {
	h.logger.Infof("ensuring Conan profile %q exists", h.profile)

	var profiles []string
	if err := h.runJSON(ctx, &profiles, "profile", "list", "-f", "json"); err != nil {
		return errors.Wrap(errors.CodeProfileSetup, err, "could not list Conan profiles")
	}
	for _, p := range profiles {
		if p == h.profile {
			h.logger.Verbosef("profile %q already exists", h.profile)
			return nil
		}
	}

	args := []string{"profile", "detect"}
	if h.profile != "default" {
		args = append(args, "--name", h.profile)
	}
	if _, err := h.runRetry(ctx, args...); err != nil {
		return errors.Wrap(errors.CodeProfileSetup, err, "could not create profile %q", h.profile)
	}
	h.logger.Successf("created profile %q", h.profile)
	return nil
}

// recipeInfo is the subset of 'conan inspect -f json' output we need.
type recipeInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// cacheList is the shape of 'conan list -c -f json' output.
type cacheList struct {
	LocalCache map[string]json.RawMessage `json:"Local Cache"`
}

// InstallRecipes builds each local recipe into the Conan cache, skipping
// recipes whose name/version is already cached. Matching is on name and
// version only, not user or channel.
func (h *Helper) InstallRecipes(ctx context.Context) error {
	for _, path := range h.localRecipes {
		if err := h.installRecipe(ctx, path); err != nil {
			return errors.Wrap(errors.CodeLocalRecipe, err, "recipe %q failed", path)
		}
	}
	return nil
}

func (h *Helper) installRecipe(ctx context.Context, path string) error {
	h.logger.Infof("installing local recipe %s", path)

	if _, err := os.Stat(path); err != nil {
		return errors.New(errors.CodeLocalRecipe, "recipe path %q does not exist", path)
	}
	if _, err := os.Stat(filepath.Join(path, "conanfile.py")); err != nil {
		return errors.New(errors.CodeLocalRecipe, "recipe path %q is missing conanfile.py", path)
	}

	var info recipeInfo
	if err := h.runJSON(ctx, &info, "inspect", "-f", "json", path); err != nil {
		return err
	}

	var cached cacheList
	if err := h.runJSON(ctx, &cached, "list", "-c", "-f", "json", info.Name); err != nil {
		return err
	}
	ref := info.Name + "/" + info.Version
	if _, ok := cached.LocalCache[ref]; ok {
		h.logger.Infof("%s already cached, not building again", ref)
		return nil
	}

	_, err := h.runRetry(ctx, "create", path,
		"-pr", h.profile,
		"-s", "build_type="+h.buildType,
		"--build=missing")
	if err != nil {
		return err
	}
	h.logger.Successf("built and cached %s", ref)
	return nil
}

// Install runs the full dependency workflow: profile setup, local recipe
// installation, then dependency resolution via 'conan install'. Requirements,
// when given, are passed as discrete --requires flags; otherwise the
// conanfile at path is used. Each phase is logged as entered and exited with
// its success state.
func (h *Helper) Install(ctx context.Context, path string, requirements []string) error {
	h.logger.EnterPhase("Profile setup")
	if err := h.EnsureProfile(ctx); err != nil {
		h.logger.ExitPhase(false)
		return err
	}
	h.logger.ExitPhase(true)

	if len(h.localRecipes) > 0 {
		h.logger.EnterPhase("Local recipe installation")
		if err := h.InstallRecipes(ctx); err != nil {
			h.logger.ExitPhase(false)
			return err
		}
		h.logger.ExitPhase(true)
	}

	h.logger.EnterPhase("Dependency resolution")
	if err := h.install(ctx, path, requirements); err != nil {
		h.logger.ExitPhase(false)
		return errors.Wrap(errors.CodeDependencyResolution, err, "conan install failed")
	}
	h.logger.ExitPhase(true)
	return nil
}

func (h *Helper) install(ctx context.Context, path string, requirements []string) error {
	args := []string{"install"}
	if len(requirements) > 0 {
		for _, req := range requirements {
			args = append(args, "--requires", req)
		}
	} else {
		args = append(args, path)
	}
	for _, key := range sortedKeys(h.settings) {
		args = append(args, "-s", key+"="+h.settings[key])
	}
	args = append(args,
		"-s", "build_type="+h.buildType,
		"--build=missing",
		"--output-folder="+h.OutputDir(),
		"-g", "CMakeDeps",
		"-g", "CMakeToolchain",
		"-pr", h.profile)

	_, err := h.runRetry(ctx, args...)
	return err
}

// CMakeArgs returns the two flags pointing the native build at the generated
// toolchain file and prefix path for the current build type. It fails when
// the toolchain file is absent, which means an installation phase did not run
// or failed silently.
func (h *Helper) CMakeArgs() ([]string, error) {
	outDir := h.OutputDir()
	toolchain := filepath.Join(outDir, toolchainFile)
	if _, err := os.Stat(toolchain); err != nil {
		return nil, errors.New(errors.CodeDependencyResolution,
			"%s not found in %s; run Install first and make sure the CMakeDeps and CMakeToolchain generators are enabled",
			toolchainFile, outDir)
	}
	return []string{
		"-DCMAKE_TOOLCHAIN_FILE=" + toolchain,
		"-DCMAKE_PREFIX_PATH=" + outDir,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
