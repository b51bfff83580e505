package executor

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// ProcessRunner runs a plugin binary once and collects its output.
type ProcessRunner interface {
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner implements ProcessRunner with os/exec.
type RealProcessRunner struct{}

// NewRealProcessRunner creates a runner backed by os/exec.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes path. On a non-zero exit the captured stderr is returned
// alongside the error.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout, exitErr.Stderr, err
		}
		return stdout, nil, err
	}
	return stdout, nil, nil
}
