package audio

import (
	"bytes"
	"context"
	"os/exec"
)

// Executor runs external binaries. Tests substitute fakes so no tool needs to
// be installed.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) (stdout, stderr string, err error)
}

type commandExecutor struct{}

// NewCommandExecutor returns an Executor backed by os/exec.
func NewCommandExecutor() Executor {
	return commandExecutor{}
}

func (commandExecutor) Run(ctx context.Context, binary string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
