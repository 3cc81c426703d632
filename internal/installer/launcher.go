package installer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// RunResult captures everything observed from one subprocess run.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Launcher runs external installation commands. It is injected so tests can
// substitute a deterministic stub for the real package managers.
type Launcher interface {
	// LookPath reports whether the named binary is on the PATH.
	LookPath(binary string) (string, error)

	// Run executes the command and waits for it to finish, honoring
	// cancellation through the context.
	Run(ctx context.Context, name string, args ...string) RunResult
}

// ExecLauncher is the production Launcher backed by os/exec.
type ExecLauncher struct{}

func (ExecLauncher) LookPath(binary string) (string, error) {
	return exec.LookPath(binary)
}

func (ExecLauncher) Run(ctx context.Context, name string, args ...string) RunResult {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Err:      err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}
	return result
}
