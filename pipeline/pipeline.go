// Package pipeline sequences the installation stages and owns overall
// success or failure, including the troubleshooting sub-loop that can
// re-enter earlier stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/initializ/wrfup/diagnose"
	"github.com/initializ/wrfup/internal/runlog"
)

// Stage is a single unit of work in the installation pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, ic *InstallContext) error
}

// Prompter asks the user questions. The troubleshooting menu goes
// through it so tests can script decisions.
type Prompter interface {
	Select(label string, items []string, defaultIdx int) (int, error)
	Confirm(label string, defaultYes bool) (bool, error)
}

// Stages holds one implementation per pipeline position.
type Stages struct {
	InstallDeps        Stage
	SetEnv             Stage
	Acquire            Stage
	Configure          Stage
	Compile            Stage
	AcquireCompanion   Stage
	ConfigureCompanion Stage
	CompileCompanion   Stage
	Verify             Stage
}

// Controller drives the state machine over the configured stages.
type Controller struct {
	Stages Stages
	Prompt Prompter
	Log    *runlog.Logger

	// Out receives menu output and log dumps; defaults to os.Stdout.
	Out io.Writer
}

const troubleshootAbort = 3

var troubleshootMenu = []string{
	"Show the full error log",
	"Re-run environment setup",
	"Re-install dependencies",
	"Abort installation",
}

// Run executes the pipeline from dependency installation onward (the
// capability probe has already produced the profile the stages were
// built with). It returns nil only when the main artifact path verifies.
func (c *Controller) Run(ctx context.Context, ic *InstallContext) error {
	state := StateInstallingDeps
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled during %s: %w", state, err)
		}

		stage := c.stageFor(state)
		c.Log.Infof("--- %s ---", state)

		if err := stage.Run(ctx, ic); err != nil {
			if state.companion() {
				// A failed companion build is reported but does not
				// convert a successful main build into overall failure.
				c.Log.Errorf("preprocessing system failed (%s): %v; continuing with main build", state, err)
				ic.CompanionBuilt = false
				state = StateVerifying
				continue
			}
			next, abortErr := c.troubleshoot(ctx, state, err)
			if abortErr != nil {
				return abortErr
			}
			state = next
			continue
		}

		state = c.advance(state, ic)
	}
	c.Log.Infof("installation pipeline complete")
	return nil
}

func (c *Controller) stageFor(state State) Stage {
	switch state {
	case StateInstallingDeps:
		return c.Stages.InstallDeps
	case StateSettingEnv:
		return c.Stages.SetEnv
	case StateAcquiring:
		return c.Stages.Acquire
	case StateConfiguring:
		return c.Stages.Configure
	case StateCompiling:
		return c.Stages.Compile
	case StateAcquiringCompanion:
		return c.Stages.AcquireCompanion
	case StateConfiguringCompanion:
		return c.Stages.ConfigureCompanion
	case StateCompilingCompanion:
		return c.Stages.CompileCompanion
	case StateVerifying:
		return c.Stages.Verify
	}
	panic(fmt.Sprintf("no stage for state %d", int(state)))
}

// advance computes the next state after a successful stage. All edges
// here are forward-only.
func (c *Controller) advance(state State, ic *InstallContext) State {
	switch state {
	case StateInstallingDeps:
		return StateSettingEnv
	case StateSettingEnv:
		return StateAcquiring
	case StateAcquiring:
		return StateConfiguring
	case StateConfiguring:
		return StateCompiling
	case StateCompiling:
		if !ic.CompanionDecided {
			want, err := c.Prompt.Confirm("Install the preprocessing system (WPS) as well?", true)
			if err != nil {
				want = true
			}
			ic.WantsPreprocessing = want
			ic.CompanionDecided = true
		}
		if ic.WantsPreprocessing {
			return StateAcquiringCompanion
		}
		return StateVerifying
	case StateAcquiringCompanion:
		return StateConfiguringCompanion
	case StateConfiguringCompanion:
		return StateCompilingCompanion
	case StateCompilingCompanion:
		ic.CompanionBuilt = true
		return StateVerifying
	case StateVerifying:
		return StateDone
	}
	return StateDone
}

// troubleshoot records the failure, shows a root-cause guess, and runs
// the remediation menu. It returns the state to resume at, or an error
// when the user aborts. Every retry requires an explicit user decision;
// the engine never loops on its own.
func (c *Controller) troubleshoot(ctx context.Context, state State, stageErr error) (State, error) {
	se := AsStageError(state.String(), stageErr)
	c.Log.Errorf("stage failed (%s): %s", state, se.Reason)

	finding := diagnose.Classify(se.Reason + "\n" + se.Excerpt)
	out := c.out()
	fmt.Fprintf(out, "\nLikely cause: %s\n", finding.Summary)
	fmt.Fprintf(out, "Suggestion:   %s\n", finding.Advice)
	if se.Excerpt != "" {
		fmt.Fprintf(out, "\n%s\n", se.Excerpt)
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("pipeline cancelled during troubleshooting: %w", err)
		}
		choice, err := c.Prompt.Select("How do you want to proceed?", troubleshootMenu, troubleshootAbort)
		if err != nil {
			choice = troubleshootAbort
		}
		switch choice {
		case 0:
			c.dumpLog(se)
		case 1:
			c.Log.Infof("re-entering environment setup at user request")
			return StateSettingEnv, nil
		case 2:
			c.Log.Infof("re-entering dependency installation at user request")
			return StateInstallingDeps, nil
		default:
			return 0, fmt.Errorf("installation aborted during %s: %w", state, se)
		}
	}
}

func (c *Controller) dumpLog(se *StageError) {
	path := se.LogPath
	if path == "" {
		path = c.Log.ErrorPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.out(), "could not read log %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(c.out(), "---- %s ----\n%s\n---- end of log ----\n", path, strings.TrimRight(string(data), "\n"))
}

func (c *Controller) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}
