package shell

import (
	"context"
	"fmt"
)

// FakeRunner is a Runner for tests. It records every invocation and
// returns scripted results.
type FakeRunner struct {
	Calls []Cmd

	// RunErr, when set, decides the outcome of Run per command.
	RunErr func(Cmd) error

	// Out, when set, decides the outcome of Output per command.
	Out func(Cmd) (string, error)
}

func (f *FakeRunner) Run(_ context.Context, cmd Cmd) error {
	f.Calls = append(f.Calls, cmd)
	if f.RunErr != nil {
		return f.RunErr(cmd)
	}
	return nil
}

func (f *FakeRunner) Output(_ context.Context, cmd Cmd) (string, error) {
	f.Calls = append(f.Calls, cmd)
	if f.Out != nil {
		return f.Out(cmd)
	}
	return "", fmt.Errorf("no scripted output for %s", Format(cmd))
}
