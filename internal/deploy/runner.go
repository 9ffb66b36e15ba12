package deploy

import (
	"context"
	"fmt"
	"io"
	"nerisdash/pkg/logger"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner runs an external command in dir.
//
//go:generate mockgen -package mockdeploy -source=runner.go -destination=mock/mockdeploy.go *
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a Runner writing to the process stdout and stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	logger.Info(ctx, "running command",
		zap.String("dir", dir),
		zap.String("command", strings.Join(append([]string{name}, args...), " ")))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("could not run %s: %w", name, err)
	}

	return nil
}
