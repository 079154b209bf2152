// Command collector: hands the run's artifacts to an external OCR program.
package collector

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// maxLoggedOutput bounds how much command output is logged.
const maxLoggedOutput = 2048

// CommandCollector runs an external command with the artifact paths gathered
// so far appended to its arguments.
type CommandCollector struct {
	argv   []string
	logger *zap.Logger
}

// NewCommandCollector creates a step running argv. An empty argv disables it.
func NewCommandCollector(argv []string, logger *zap.Logger) *CommandCollector {
	return &CommandCollector{argv: argv, logger: logger.Named("command")}
}

// Name returns the collector identifier.
func (c *CommandCollector) Name() string { return "ocr-command" }

// Collect runs the command and fails if it exits non-zero.
func (c *CommandCollector) Collect(ctx context.Context, run *Run) error {
	args := append(append([]string{}, c.argv[1:]...), run.Artifacts...)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	cmd.Env = append(cmd.Environ(), "LAFMS_RUN_ID="+run.ID)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()

	output := strings.TrimSpace(out.String())
	if len(output) > maxLoggedOutput {
		output = output[:maxLoggedOutput] + "..."
	}
	if err != nil {
		return fmt.Errorf("%s: %w (output: %s)", c.argv[0], err, output)
	}
	c.logger.Info("OCR command finished", zap.String("run", run.ID), zap.String("output", output))
	return nil
}

// IsAvailable returns true when a command is configured.
func (c *CommandCollector) IsAvailable() bool { return len(c.argv) > 0 && c.argv[0] != "" }
