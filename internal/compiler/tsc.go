package compiler

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/conneroisu/tsvalidate/internal/config"
	"github.com/conneroisu/tsvalidate/internal/errors"
	"github.com/conneroisu/tsvalidate/internal/types"
	"github.com/conneroisu/tsvalidate/internal/validation"
	"github.com/conneroisu/tsvalidate/internal/workspace"
)

// DefaultWaitDelay bounds how long a cancelled compiler may take to exit
// after it was interrupted before it is killed.
const DefaultWaitDelay = 2 * time.Second

// TSC runs the TypeScript compiler against a workspace.
type TSC struct {
	command   string
	args      []string
	waitDelay time.Duration
	parser    *errors.ErrorParser
}

// NewTSC creates a type checker running command with the given leading
// arguments, e.g. NewTSC("npx", "--no-install", "tsc").
func NewTSC(command string, args ...string) *TSC {
	return &TSC{
		command:   command,
		args:      args,
		waitDelay: DefaultWaitDelay,
		parser:    errors.NewErrorParser(),
	}
}

// Command returns the configured executable.
func (c *TSC) Command() string {
	return c.command
}

// Check runs `tsc -p tsconfig.json --pretty false` inside the workspace root.
// Exit codes 1 and 2 mean diagnostics were reported; any other failure is
// returned as an error.
func (c *TSC) Check(ctx context.Context, ws *workspace.Workspace) ([]RawDiagnostic, error) {
	args := append(append([]string{}, c.args...),
		"-p", workspace.ConfigFileName,
		"--pretty", "false",
	)

	// Validate command and arguments to prevent command injection
	if err := c.validateCommand(args); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = ws.Root
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = c.waitDelay

	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return nil, errors.NewTimeoutError("tsc timed out", ctx.Err())
	}

	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return nil, errors.NewCompilerError(errors.ErrCodeCompilerNotFound,
				fmt.Sprintf("TypeScript compiler %q not found", c.command), err)
		}

		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			return nil, errors.NewCompilerError(errors.ErrCodeCompilerFailed, "failed to run tsc", err)
		}

		code := exitErr.ExitCode()
		if code != 1 && code != 2 {
			return nil, errors.NewCompilerError(errors.ErrCodeCompilerFailed,
				fmt.Sprintf("tsc exited with code %d: %s", code, strings.TrimSpace(string(output))), err).
				WithContext("exit_code", code)
		}
	}

	parsed := c.parser.ParseError(string(output))
	if err != nil && len(parsed) == 0 {
		return nil, errors.NewCompilerError(errors.ErrCodeCompilerFailed,
			fmt.Sprintf("tsc failed without diagnostics: %s", strings.TrimSpace(string(output))), err)
	}

	raws := make([]RawDiagnostic, 0, len(parsed))
	for _, p := range parsed {
		source := types.SourceSemantic
		if p.Kind == errors.ErrorKindSyntax {
			source = types.SourceSyntax
		}
		raws = append(raws, RawDiagnostic{
			File:     p.File,
			Line:     p.Line,
			Column:   p.Column,
			Message:  p.Message,
			Code:     p.Code,
			Severity: p.Severity,
			Source:   source,
		})
	}
	return raws, nil
}

// Version runs `<command> --version` and returns its trimmed output.
func (c *TSC) Version(ctx context.Context) (string, error) {
	args := append(append([]string{}, c.args...), "--version")
	if err := c.validateCommand(args); err != nil {
		return "", err
	}

	output, err := exec.CommandContext(ctx, c.command, args...).CombinedOutput()
	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return "", errors.NewCompilerError(errors.ErrCodeCompilerNotFound,
				fmt.Sprintf("TypeScript compiler %q not found", c.command), err)
		}
		return "", errors.NewCompilerError(errors.ErrCodeCompilerFailed, "failed to query tsc version", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// validateCommand validates the command and arguments to prevent command injection
func (c *TSC) validateCommand(args []string) error {
	if err := validation.ValidateCommand(c.command, config.AllowedCommands); err != nil {
		return errors.ErrCommandInjection(c.command).WithContext("reason", err.Error())
	}

	for _, arg := range args {
		if err := validation.ValidateArgument(arg); err != nil {
			return errors.ErrCommandInjection(arg).WithContext("reason", err.Error())
		}
	}

	return nil
}
