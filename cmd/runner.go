package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"conductor/internal/dispatch"
	"conductor/internal/pool"
)

// defaultRunnerCommand is the external language-model command a one-shot
// request shells out to. The role instructions and the prompt are written to
// its stdin; its stdout is the role's answer.
const defaultRunnerCommand = "llm"

// execRunner runs roles through an external model command. The coordinator
// never talks to a model directly, so the CLI supplies this subprocess-backed
// implementation of the runner facade.
type execRunner struct {
	command string
	args    []string
}

// newExecRunner splits a command line like "llm -m gpt-4o" into the binary
// and its arguments.
func newExecRunner(commandLine string) execRunner {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = []string{defaultRunnerCommand}
	}
	return execRunner{command: fields[0], args: fields[1:]}
}

func (r execRunner) Run(ctx context.Context, role *pool.Role, prompt string) (string, error) {
	var input bytes.Buffer
	if role != nil && role.Instructions != "" {
		input.WriteString(role.Instructions)
		input.WriteString("\n\n")
	}
	input.WriteString(prompt)

	args := r.args
	if model, ok := dispatch.ModelProvider(ctx); ok {
		args = append(append([]string(nil), args...), "-m", model)
	}

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Stdin = &input

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("model command %q failed: %w: %s", r.command, err, msg)
		}
		return "", fmt.Errorf("model command %q failed: %w", r.command, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
