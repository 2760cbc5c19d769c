// Package execx provides an interface for running external commands.
//
// All Conan and CMake invocations funnel through a Runner so tests can
// substitute a fake instead of spawning processes.
package execx

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner defines the interface for running external commands.
type Runner interface {
	// Run executes a command and returns stdout and stderr separately.
	// The working directory is set to dir if non-empty. The command inherits
	// the current process environment (scoped overrides are applied by the
	// caller around the invocation).
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// NewRunner creates a new ExecRunner.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command, capturing stdout and stderr into separate buffers.
func (r *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}

// Verify ExecRunner implements Runner at compile time.
var _ Runner = (*ExecRunner)(nil)
