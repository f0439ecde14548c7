// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultCommand is the converter invoked when none is configured.
const DefaultCommand = "markitdown"

// CommandConverter implements Converter by running an external converter
// command with the source path as its final argument and capturing stdout.
type CommandConverter struct {
	command string
	args    []string
	logger  *slog.Logger
}

// CommandOption configures a CommandConverter.
type CommandOption func(*CommandConverter)

// WithArgs sets extra arguments passed to the converter command before the
// source path.
func WithArgs(args ...string) CommandOption {
	return func(c *CommandConverter) {
		c.args = args
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CommandOption {
	return func(c *CommandConverter) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewCommandConverter creates a converter that runs the given command.
// If command is empty, DefaultCommand is used.
func NewCommandConverter(command string, opts ...CommandOption) *CommandConverter {
	if command == "" {
		command = DefaultCommand
	}
	c := &CommandConverter{
		command: command,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "command-converter", "command", command)
	return c
}

// Convert runs the converter command against the file at path and returns
// its stdout. A non-zero exit is a conversion failure; stderr is folded
// into the error message for diagnostics. Cancelling the context kills the
// subprocess.
func (c *CommandConverter) Convert(ctx context.Context, path string) (string, error) {
	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, path)

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("converting document", "path", path)

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return "", fmt.Errorf("converter %s failed for %s: %w", c.command, path, err)
		}
		return "", fmt.Errorf("converter %s failed for %s: %w: %s", c.command, path, err, detail)
	}

	return stdout.String(), nil
}
