package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes one external tool invocation and returns its captured
// output streams and exit code. It exists as a seam so tests can count
// invocations and script outputs without spawning processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// Run blocks until the process completes. A non-zero exit status is not an
// error at this layer; it is reported through exitCode so the caller can
// attach the captured stderr to its own error type.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = nil
		}
	}
	return outBuf.String(), errBuf.String(), exitCode, err
}
