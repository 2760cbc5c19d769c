// Package cmake drives the CMake configure/build workflow that consumes the
// Conan-generated toolchain configuration.
//
// It provides the default implementation of the wrapped native-build entry
// point used by pkg/setup: configure the source tree with the merged flag set,
// then build it. Callers needing a different build system supply their own
// entry point instead.
package cmake

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/conango/conango/pkg/execx"
	"github.com/conango/conango/pkg/logging"
)

// Builder runs cmake for one source/build directory pair.
type Builder struct {
	sourceDir string
	buildDir  string
	buildType string
	logger    *logging.Logger
	runner    execx.Runner
}

// New returns a ready-to-use Builder. Empty sourceDir defaults to the current
// directory and empty buildDir to "build".
func New(sourceDir, buildDir string) *Builder {
	if sourceDir == "" {
		sourceDir = "."
	}
	if buildDir == "" {
		buildDir = "build"
	}
	return &Builder{
		sourceDir: sourceDir,
		buildDir:  buildDir,
		logger:    logging.NewFromEnv(),
		runner:    execx.NewRunner(),
	}
}

// BuildType sets CMAKE_BUILD_TYPE (e.g. "Release", "Debug").
func (b *Builder) BuildType(name string) { b.buildType = name }

// Logger overrides the default logger.
func (b *Builder) Logger(l *logging.Logger) { b.logger = l }

// Runner overrides the command runner, used by tests.
func (b *Builder) Runner(r execx.Runner) { b.runner = r }

// Configure runs "cmake -S <source> -B <build>" with the given extra
// arguments (typically the Conan toolchain flags) appended.
func (b *Builder) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(b.buildDir, 0o755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}
	cmakeArgs := []string{"-S", b.sourceDir, "-B", b.buildDir}
	if b.buildType != "" {
		cmakeArgs = append(cmakeArgs, "-DCMAKE_BUILD_TYPE="+b.buildType)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return b.run(ctx, cmakeArgs)
}

// Build runs "cmake --build <build>" with optional extra arguments.
func (b *Builder) Build(ctx context.Context, args ...string) error {
	cmakeArgs := []string{"--build", b.buildDir}
	if b.buildType != "" {
		cmakeArgs = append(cmakeArgs, "--config", b.buildType)
	}
	cmakeArgs = append(cmakeArgs, args...)
	return b.run(ctx, cmakeArgs)
}

// Run configures and then builds: the default wrapped build entry point.
func (b *Builder) Run(ctx context.Context, cmakeArgs ...string) error {
	if err := b.Configure(ctx, cmakeArgs...); err != nil {
		return err
	}
	return b.Build(ctx)
}

func (b *Builder) run(ctx context.Context, args []string) error {
	b.logger.Commandf("cmake %s", strings.Join(args, " "))
	stdout, stderr, err := b.runner.Run(ctx, "", "cmake", args...)
	if out := string(stdout) + string(stderr); strings.TrimSpace(out) != "" {
		b.logger.Output(out)
	}
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("cmake %s: %w: %s", args[0], err, detail)
	}
	return nil
}
