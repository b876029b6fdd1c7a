// Package runner launches emulation commands.
//
// Catalog commands are operator-curated and trusted: the command line is handed
// to the configured shell as a single argument, verbatim. Nothing here parses,
// quotes or sanitizes it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	appErrors "mitremenu/internal/errors"
)

// SpawnFailedCode is the ExitStatus code reported when no process could be started.
const SpawnFailedCode = -1

// ExitStatus is the outcome of one execution.
type ExitStatus struct {
	Code int
	Err  error
}

// Success reports whether the command ran and exited zero.
func (s ExitStatus) Success() bool {
	return s.Err == nil && s.Code == 0
}

// Spawned reports whether a process was started at all.
func (s ExitStatus) Spawned() bool {
	return !appErrors.IsCode(s.Err, appErrors.CodeSpawnFailed)
}

func (s ExitStatus) String() string {
	switch {
	case s.Success():
		return "exit 0"
	case !s.Spawned():
		return fmt.Sprintf("failed to start: %v", s.Err)
	default:
		return fmt.Sprintf("exit %d", s.Code)
	}
}

// Runner is the single boundary between the console and process launching.
type Runner interface {
	// Command prepares, but does not start, the process for commandLine.
	Command(commandLine string) *exec.Cmd
	// Run executes commandLine and blocks until it exits.
	Run(ctx context.Context, commandLine string) ExitStatus
}

// Shell runs command lines through an interpreter such as powershell or sh.
type Shell struct {
	Program string
	// Args precede the command line, e.g. ["-NoProfile", "-Command"].
	Args []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShell builds a Shell wired to the process's standard streams.
func NewShell(program string, args ...string) *Shell {
	return &Shell{
		Program: strings.TrimSpace(program),
		Args:    append([]string(nil), args...),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Argv returns the full argument vector used for commandLine.
func (s *Shell) Argv(commandLine string) []string {
	argv := make([]string, 0, len(s.Args)+2)
	argv = append(argv, s.Program)
	argv = append(argv, s.Args...)
	return append(argv, commandLine)
}

// Command returns an unstarted process for commandLine. Its standard streams
// are left unset so the caller (or Bubble Tea) can attach the terminal.
func (s *Shell) Command(commandLine string) *exec.Cmd {
	argv := s.Argv(commandLine)
	//nolint:gosec // G204: Catalog commands are trusted, operator-curated content
	return exec.Command(argv[0], argv[1:]...)
}

// Run executes commandLine with the shell's streams attached.
func (s *Shell) Run(ctx context.Context, commandLine string) ExitStatus {
	argv := s.Argv(commandLine)
	//nolint:gosec // G204: Catalog commands are trusted, operator-curated content
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	return StatusFromError(cmd.Run())
}

// StatusFromError converts the error returned by running a command into an
// ExitStatus. A non-zero exit keeps its code; anything that prevented the
// process from starting is reported as a spawn failure.
func StatusFromError(err error) ExitStatus {
	if err == nil {
		return ExitStatus{}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		return ExitStatus{
			Code: exitErr.ExitCode(),
			Err:  appErrors.New(appErrors.CodeExecFailed, fmt.Sprintf("command failed: %v", exitErr), err),
		}
	}
	return ExitStatus{
		Code: SpawnFailedCode,
		Err:  appErrors.New(appErrors.CodeSpawnFailed, fmt.Sprintf("start command: %v", err), err),
	}
}
