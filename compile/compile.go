// Package compile drives the long-running WRF and WPS builds and
// verifies the resulting executables. The build scripts exit zero even
// on failure, so success is judged only by the artifacts they leave
// behind.
package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

// MainArtifacts are the executables a successful WRF build produces,
// relative to the WRF source directory.
var MainArtifacts = []string{
	"main/wrf.exe",
	"main/real.exe",
	"main/ndown.exe",
	"main/tc.exe",
}

// CompanionArtifacts are the executables a successful WPS build
// produces, relative to the WPS source directory.
var CompanionArtifacts = []string{
	"geogrid.exe",
	"ungrib.exe",
	"metgrid.exe",
}

// Driver runs one build, capturing the full compiler output to a log
// file under the install root.
type Driver struct {
	Runner shell.Runner
	Log    *runlog.Logger

	Dir       string
	Artifacts []string
	Companion bool
}

// MainDriver builds the WRF tree.
func MainDriver(runner shell.Runner, log *runlog.Logger) *Driver {
	return &Driver{Runner: runner, Log: log, Dir: "WRF", Artifacts: MainArtifacts}
}

// CompanionDriver builds the WPS tree.
func CompanionDriver(runner shell.Runner, log *runlog.Logger) *Driver {
	return &Driver{Runner: runner, Log: log, Dir: "WPS", Artifacts: CompanionArtifacts, Companion: true}
}

func (d *Driver) Name() string { return "compile-" + d.Dir }

func (d *Driver) Run(ctx context.Context, ic *pipeline.InstallContext) error {
	dir := filepath.Join(ic.InstallRoot, d.Dir)
	logPath := filepath.Join(ic.InstallRoot, fmt.Sprintf("compile-%s.log", strings.ToLower(d.Dir)))

	// Artifacts from a previous build would mask a failed rebuild; the
	// build system also miscompiles over stale objects after an
	// environment change.
	if d.anyArtifact(dir) {
		d.Log.Infof("previous %s build detected, running ./clean -a", d.Dir)
		err := d.Runner.Run(ctx, shell.Cmd{Name: "./clean", Args: []string{"-a"}, Dir: dir})
		if err != nil {
			d.Log.Errorf("%s: clean failed, continuing anyway: %v", d.Name(), err)
		}
	}

	out, err := os.Create(logPath)
	if err != nil {
		return &pipeline.StageError{
			Stage:  d.Name(),
			Kind:   pipeline.KindBuildArtifact,
			Reason: "opening compile log",
			Err:    err,
		}
	}

	cmd := shell.Cmd{Name: "./compile", Dir: dir, Sink: out}
	if !d.Companion {
		cmd.Args = []string{"-j", fmt.Sprint(ic.CoreCount), "em_real"}
	}
	d.Log.Infof("compiling %s (this takes a while); output in %s", d.Dir, logPath)
	runErr := d.Runner.Run(ctx, cmd)
	out.Close()
	if runErr != nil {
		d.Log.Errorf("%s: compile invocation: %v", d.Name(), runErr)
	}

	if missing := missingArtifacts(dir, d.Artifacts); len(missing) > 0 {
		reason, excerpt := scanFailure(logPath)
		return &pipeline.StageError{
			Stage:   d.Name(),
			Kind:    pipeline.KindBuildArtifact,
			Reason:  fmt.Sprintf("build did not produce %s (%s)", strings.Join(missing, ", "), reason),
			Excerpt: excerpt,
			LogPath: logPath,
			Err:     runErr,
		}
	}
	d.Log.Infof("%s build complete", d.Dir)
	return nil
}

func (d *Driver) anyArtifact(dir string) bool {
	for _, a := range d.Artifacts {
		if _, err := os.Stat(filepath.Join(dir, a)); err == nil {
			return true
		}
	}
	return false
}

func missingArtifacts(dir string, artifacts []string) []string {
	var missing []string
	for _, a := range artifacts {
		if _, err := os.Stat(filepath.Join(dir, a)); err != nil {
			missing = append(missing, a)
		}
	}
	return missing
}

// failureSignatures is scanned in order; the first hit names the
// failure. Earlier entries are more specific.
var failureSignatures = []struct {
	needle string
	reason string
}{
	{"netcdf.h", "netcdf development headers were not found during the build"},
	{"mpif.h", "MPI Fortran headers were not found during the build"},
	{"cp: cannot", "the build could not copy a generated file"},
	{"Fatal Error", "the compiler reported a fatal error"},
	{"Error 2", "make reported a fatal error"},
}

// scanFailure classifies the captured build log and returns a reason
// plus an excerpt around the first matching line, or the log tail when
// nothing matches.
func scanFailure(logPath string) (reason, excerpt string) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return "compile log unreadable", ""
	}
	lines := strings.Split(string(data), "\n")

	for _, sig := range failureSignatures {
		for i, line := range lines {
			if strings.Contains(line, sig.needle) {
				return sig.reason, excerptAround(lines, i)
			}
		}
	}
	return "no known failure signature; see the log tail", tail(lines, 20)
}

func excerptAround(lines []string, i int) string {
	lo, hi := i-2, i+3
	if lo < 0 {
		lo = 0
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	return strings.TrimSpace(strings.Join(lines[lo:hi], "\n"))
}

func tail(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
