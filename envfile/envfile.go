// Package envfile resolves installed library locations and materializes
// the build environment: a persisted descriptor the user's shell can
// source, applied to the current process as well so immediately
// following stages see the same variables.
package envfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

// DescriptorName is the environment descriptor's file name under the
// install root.
const DescriptorName = "wrfenv.sh"

// Materializer is the environment-setup stage. It is idempotent: safe to
// re-run, always overwriting the descriptor in place.
type Materializer struct {
	Runner shell.Runner
	Log    *runlog.Logger

	// Lookups overrides the resolution table; nil uses DefaultLookups.
	Lookups []Lookup
}

func (m *Materializer) Name() string { return "set-environment" }

// Run resolves each logical library, writes the descriptor, and loads it
// into the current process. Unresolved libraries are recorded absent and
// surface later as targeted build failures, not path errors.
func (m *Materializer) Run(ctx context.Context, ic *pipeline.InstallContext) error {
	lookups := m.Lookups
	if lookups == nil {
		lookups = DefaultLookups()
	}

	for _, l := range lookups {
		path := resolve(ctx, m.Runner, l)
		ic.SetResolved(l.Name, path)
		if path == "" {
			m.Log.Infof("library %s: not resolved", l.Name)
			continue
		}
		m.Log.Infof("library %s: %s", l.Name, path)
	}

	descriptor := filepath.Join(ic.InstallRoot, DescriptorName)
	if err := WriteDescriptor(descriptor, lookups, ic); err != nil {
		return &pipeline.StageError{
			Stage:  m.Name(),
			Kind:   pipeline.KindEnvironment,
			Reason: "writing environment descriptor",
			Err:    err,
		}
	}
	ic.EnvFile = descriptor

	// Persist and apply are both required: the file serves future shell
	// sessions, the process environment serves the next stages.
	if err := Apply(descriptor); err != nil {
		return &pipeline.StageError{
			Stage:  m.Name(),
			Kind:   pipeline.KindEnvironment,
			Reason: "applying environment descriptor",
			Err:    err,
		}
	}
	m.Log.Infof("environment descriptor written and applied: %s", descriptor)
	return nil
}

// WriteDescriptor writes the sh-sourceable environment descriptor. The
// file is overwritten in place, never appended.
func WriteDescriptor(path string, lookups []Lookup, ic *pipeline.InstallContext) error {
	var b strings.Builder
	b.WriteString("# Generated by wrfup. Source this file before building or running WRF:\n")
	b.WriteString("#   . " + path + "\n")

	for _, l := range lookups {
		if p, ok := ic.Resolved(l.Name); ok {
			fmt.Fprintf(&b, "export %s=%s\n", l.Var, shValue(p))
		}
	}

	binDirs := []string{
		filepath.Join(ic.InstallRoot, "WRF", "main"),
		filepath.Join(ic.InstallRoot, "WPS"),
	}
	fmt.Fprintf(&b, "export PATH=%s\n", shValue(strings.Join(binDirs, ":")+":$PATH"))
	fmt.Fprintf(&b, "export WRF_INSTALL_ROOT=%s\n", shValue(ic.InstallRoot))
	fmt.Fprintf(&b, "export WRF_BUILD_JOBS=%s\n", strconv.Itoa(ic.CoreCount))
	b.WriteString("export WRFIO_NCD_LARGE_FILE_SUPPORT=1\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// shValue quotes a value so the descriptor stays shell-sourceable when
// paths contain whitespace. Double quotes keep $PATH expandable.
func shValue(v string) string {
	if strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}

// Apply loads a descriptor into the current process's environment.
// References to existing variables (notably $PATH) are expanded against
// the environment as it stands when the line is applied.
func Apply(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening descriptor %s: %w", path, err)
	}
	defer f.Close()

	vars, err := ParseEnvVars(f)
	if err != nil {
		return fmt.Errorf("parsing descriptor %s: %w", path, err)
	}

	// Apply in a stable order so expansion is reproducible.
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		expanded := os.Expand(vars[k], os.Getenv)
		if err := os.Setenv(k, expanded); err != nil {
			return fmt.Errorf("setting %s: %w", k, err)
		}
	}
	return nil
}
