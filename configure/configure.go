package configure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/initializ/wrfup/envfile"
	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

// lookPath is stubbed in tests.
var lookPath = exec.LookPath

// Configurator runs the stock configure script of one source tree. The
// script is interactive; when expect is installed the known prompts are
// answered automatically, otherwise the script's stdio is handed to the
// user. Either way success is judged solely by the presence of the
// generated configuration file, because the script exits zero even when
// it fails to produce one.
type Configurator struct {
	Runner shell.Runner
	Log    *runlog.Logger

	// Dir is the canonical source directory under the install root
	// ("WRF" or "WPS"); Artifact the file configure must produce.
	Dir       string
	Artifact  string
	Companion bool
}

// MainConfigurator configures the WRF tree.
func MainConfigurator(runner shell.Runner, log *runlog.Logger) *Configurator {
	return &Configurator{Runner: runner, Log: log, Dir: "WRF", Artifact: "configure.wrf"}
}

// CompanionConfigurator configures the WPS tree.
func CompanionConfigurator(runner shell.Runner, log *runlog.Logger) *Configurator {
	return &Configurator{Runner: runner, Log: log, Dir: "WPS", Artifact: "configure.wps", Companion: true}
}

func (c *Configurator) Name() string { return "configure-" + c.Dir }

func (c *Configurator) Run(ctx context.Context, ic *pipeline.InstallContext) error {
	// configure hangs or emits misleading errors without NETCDF; catch
	// that here with a pointed message instead.
	if _, ok := ic.Resolved(envfile.LibNetCDF); !ok {
		return &pipeline.StageError{
			Stage:  c.Name(),
			Kind:   pipeline.KindEnvironment,
			Reason: "NETCDF could not be resolved; configure cannot proceed without it",
		}
	}

	dir := filepath.Join(ic.InstallRoot, c.Dir)
	artifact := filepath.Join(dir, c.Artifact)

	// A stale file from an earlier attempt would make the existence
	// check below meaningless.
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		return &pipeline.StageError{
			Stage:  c.Name(),
			Kind:   pipeline.KindConfigureArtifact,
			Reason: fmt.Sprintf("removing stale %s", c.Artifact),
			Err:    err,
		}
	}

	option := ic.VariantOption
	if c.Companion {
		option = CompanionOption(ic.Toolchain, ic.VariantClass)
	}

	var runErr error
	if _, err := lookPath("expect"); err == nil {
		runErr = c.runScripted(ctx, ic, dir, option)
	} else {
		c.Log.Infof("expect not found; answering the configure prompts is up to you")
		runErr = c.runPassthrough(ctx, dir)
	}
	if runErr != nil {
		c.Log.Errorf("%s: configure invocation: %v", c.Name(), runErr)
	}

	if _, err := os.Stat(artifact); err != nil {
		return &pipeline.StageError{
			Stage:   c.Name(),
			Kind:    pipeline.KindConfigureArtifact,
			Reason:  fmt.Sprintf("configure did not produce %s", c.Artifact),
			LogPath: c.Log.InfoPath(),
			Err:     runErr,
		}
	}
	c.Log.Infof("%s generated", c.Artifact)
	return nil
}

// runScripted answers the configure prompts through an expect script:
// the selection number, and for WRF the nesting option.
func (c *Configurator) runScripted(ctx context.Context, ic *pipeline.InstallContext, dir string, option int) error {
	script := filepath.Join(dir, ".wrfup-configure.exp")
	body := expectScript(option, ic.NestingOption, !c.Companion)
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		return fmt.Errorf("writing expect script: %w", err)
	}
	defer os.Remove(script)

	c.Log.Infof("running ./configure in %s (selection %d, scripted)", c.Dir, option)
	return c.Runner.Run(ctx, shell.Cmd{
		Name: "expect",
		Args: []string{script},
		Dir:  dir,
		Sink: c.Log.Raw(),
	})
}

func (c *Configurator) runPassthrough(ctx context.Context, dir string) error {
	c.Log.Infof("running ./configure in %s (interactive)", c.Dir)
	return c.Runner.Run(ctx, shell.Cmd{
		Name:        "./configure",
		Dir:         dir,
		Interactive: true,
	})
}

func expectScript(option, nesting int, withNesting bool) string {
	// Every block needs an eof arm: a configure that aborts before its
	// prompt must not hold expect until the timeout.
	s := fmt.Sprintf(`#!/usr/bin/expect -f
set timeout 900
spawn ./configure
expect {
    -re {Enter selection.*:} { send "%d\r" }
    eof { exit }
    timeout { exit 1 }
}
`, option)
	if withNesting {
		s += fmt.Sprintf(`expect {
    -re {Compile for nesting.*:} { send "%d\r" }
    eof {}
    timeout { exit 1 }
}
`, nesting)
	}
	s += "expect eof\n"
	return s
}
