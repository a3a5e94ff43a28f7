// Package shell runs external commands on behalf of pipeline stages.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes a single external command invocation.
type Cmd struct {
	Name string
	Args []string
	Dir  string

	// Sink receives the command's combined output. When nil, the runner's
	// default sink is used.
	Sink io.Writer

	// Interactive wires the command directly to the user's terminal. Used
	// when an external tool's own prompts must be forwarded to the user.
	Interactive bool
}

// Runner executes external commands. Stages accept a Runner so tests can
// script command outcomes without touching the host.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) error
	Output(ctx context.Context, cmd Cmd) (string, error)
}

// Exec is the production Runner backed by os/exec.
type Exec struct {
	// Log receives the combined output of every command that does not set
	// its own Sink. Nil discards.
	Log io.Writer
}

// Run executes the command and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Cmd) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	if cmd.Interactive {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
	} else {
		sink := cmd.Sink
		if sink == nil {
			sink = e.Log
		}
		if sink == nil {
			sink = io.Discard
		}
		c.Stdout = sink
		c.Stderr = sink
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", Format(cmd), err)
	}
	return nil
}

// Output executes the command and returns its trimmed standard output.
func (e *Exec) Output(ctx context.Context, cmd Cmd) (string, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	out, err := c.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", Format(cmd), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Format renders a command for log messages, quoting arguments that
// contain whitespace.
func Format(cmd Cmd) string {
	parts := make([]string, 0, len(cmd.Args)+1)
	parts = append(parts, cmd.Name)
	for _, a := range cmd.Args {
		if strings.ContainsAny(a, " \t\"'") {
			parts = append(parts, fmt.Sprintf("%q", a))
		} else {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// Have reports whether an executable is reachable on PATH.
func Have(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
