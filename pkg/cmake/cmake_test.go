package cmake

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conango/conango/pkg/logging"
)

type fakeRunner struct {
	calls [][]string
	fail  bool
}

func (f *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail {
		return nil, []byte("CMake Error: oops"), fmt.Errorf("exit status 1")
	}
	return nil, nil, nil
}

func newTestBuilder(t *testing.T) (*Builder, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	b := New(".", filepath.Join(t.TempDir(), "build"))
	b.Logger(logging.New(logging.Quiet))
	b.Runner(runner)
	return b, runner
}

func TestConfigurePassesFlags(t *testing.T) {
	b, runner := newTestBuilder(t)
	b.BuildType("Release")

	err := b.Configure(context.Background(),
		"-DCMAKE_TOOLCHAIN_FILE=/tmp/conan_toolchain.cmake",
		"-DCMAKE_PREFIX_PATH=/tmp/out")
	if err != nil {
		t.Fatalf("Configure = %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(runner.calls))
	}
	cmdline := strings.Join(runner.calls[0], " ")
	for _, want := range []string{
		"cmake -S .",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_TOOLCHAIN_FILE=/tmp/conan_toolchain.cmake",
		"-DCMAKE_PREFIX_PATH=/tmp/out",
	} {
		if !strings.Contains(cmdline, want) {
			t.Errorf("configure command missing %q: %s", want, cmdline)
		}
	}
}

func TestRunConfiguresThenBuilds(t *testing.T) {
	b, runner := newTestBuilder(t)
	b.BuildType("Debug")

	if err := b.Run(context.Background(), "-DFOO=1"); err != nil {
		t.Fatalf("Run = %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("calls = %d, want configure then build", len(runner.calls))
	}
	build := strings.Join(runner.calls[1], " ")
	if !strings.Contains(build, "--build") || !strings.Contains(build, "--config Debug") {
		t.Errorf("build command = %s", build)
	}
}

func TestRunSurfacesConfigureFailure(t *testing.T) {
	b, runner := newTestBuilder(t)
	runner.fail = true

	err := b.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "CMake Error") {
		t.Fatalf("Run = %v, want configure failure with stderr detail", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("build ran after failed configure: %d calls", len(runner.calls))
	}
}

func TestNewDefaults(t *testing.T) {
	b := New("", "")
	if b.sourceDir != "." || b.buildDir != "build" {
		t.Errorf("defaults = (%q, %q), want (., build)", b.sourceDir, b.buildDir)
	}
}
