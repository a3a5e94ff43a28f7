package configure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/initializ/wrfup/envfile"
	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

func TestVariantsFor(t *testing.T) {
	tests := []struct {
		name          string
		compilers     []string
		wantToolchain string
		wantFirst     int
		wantFallback  bool
	}{
		{"gnu", []string{"gnu"}, "gnu", 32, false},
		{"intel", []string{"intel"}, "intel", 13, false},
		{"pgi", []string{"pgi"}, "pgi", 50, false},
		{"gnu preferred over intel", []string{"intel", "gnu"}, "gnu", 32, false},
		{"none falls back to gnu", nil, "gnu", 32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, variants, fellBack := VariantsFor(tt.compilers)
			if tc != tt.wantToolchain || fellBack != tt.wantFallback {
				t.Errorf("VariantsFor(%v) = %s/%v, want %s/%v",
					tt.compilers, tc, fellBack, tt.wantToolchain, tt.wantFallback)
			}
			if len(variants) != 4 || variants[0].Option != tt.wantFirst {
				t.Errorf("variants = %v, want 4 options starting at %d", variants, tt.wantFirst)
			}
			for i, class := range []string{"serial", "smpar", "dmpar", "dmsm"} {
				if variants[i].Class != class {
					t.Errorf("variants[%d].Class = %s, want %s", i, variants[i].Class, class)
				}
			}
		})
	}
}

func TestCompanionOption(t *testing.T) {
	if got := CompanionOption("gnu", "dmpar"); got != 3 {
		t.Errorf("gnu/dmpar = %d, want 3", got)
	}
	if got := CompanionOption("intel", "serial"); got != 17 {
		t.Errorf("intel/serial = %d, want 17", got)
	}
	// Unknown combinations take the common default rather than zero.
	if got := CompanionOption("", ""); got != 3 {
		t.Errorf("unknown = %d, want gnu/dmpar default 3", got)
	}
}

func stubExpect(t *testing.T, present bool) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if name == "expect" && present {
			return "/usr/bin/expect", nil
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = orig })
}

func newConfigurator(t *testing.T, runner shell.Runner, companion bool) (*Configurator, *pipeline.InstallContext) {
	t.Helper()
	log, err := runlog.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })

	root := t.TempDir()
	ic := pipeline.NewInstallContext(root, 2)
	ic.SetResolved(envfile.LibNetCDF, "/usr")
	ic.Toolchain = "gnu"
	ic.VariantOption = 34
	ic.VariantClass = "dmpar"
	ic.NestingOption = 1

	c := MainConfigurator(runner, log)
	if companion {
		c = CompanionConfigurator(runner, log)
	}
	if err := os.MkdirAll(filepath.Join(root, c.Dir), 0755); err != nil {
		t.Fatal(err)
	}
	return c, ic
}

func TestConfigurator_NetCDFUnresolvedFailsEarly(t *testing.T) {
	runner := &shell.FakeRunner{}
	c, ic := newConfigurator(t, runner, false)
	ic.ResolvedPaths = map[string]string{}

	err := c.Run(context.Background(), ic)
	var se *pipeline.StageError
	if !errors.As(err, &se) || se.Kind != pipeline.KindEnvironment {
		t.Fatalf("error = %v, want KindEnvironment", err)
	}
	if len(runner.Calls) != 0 {
		t.Error("configure must not be invoked when NETCDF is unresolved")
	}
}

func TestConfigurator_ArtifactDecidesSuccess(t *testing.T) {
	t.Run("nonzero exit but artifact present", func(t *testing.T) {
		stubExpect(t, true)
		var c *Configurator
		var ic *pipeline.InstallContext
		runner := &shell.FakeRunner{RunErr: func(cmd shell.Cmd) error {
			// configure "fails" by exit code yet leaves its artifact.
			path := filepath.Join(ic.InstallRoot, c.Dir, c.Artifact)
			if err := os.WriteFile(path, []byte("cfg"), 0644); err != nil {
				return err
			}
			return errors.New("exit status 1")
		}}
		c, ic = newConfigurator(t, runner, false)

		if err := c.Run(context.Background(), ic); err != nil {
			t.Fatalf("Run() = %v, want success when configure.wrf exists", err)
		}
	})

	t.Run("zero exit but artifact missing", func(t *testing.T) {
		stubExpect(t, true)
		runner := &shell.FakeRunner{}
		c, ic := newConfigurator(t, runner, false)

		err := c.Run(context.Background(), ic)
		var se *pipeline.StageError
		if !errors.As(err, &se) || se.Kind != pipeline.KindConfigureArtifact {
			t.Fatalf("error = %v, want KindConfigureArtifact", err)
		}
	})
}

func TestConfigurator_RemovesStaleArtifact(t *testing.T) {
	stubExpect(t, true)
	runner := &shell.FakeRunner{}
	c, ic := newConfigurator(t, runner, false)

	stale := filepath.Join(ic.InstallRoot, c.Dir, c.Artifact)
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	err := c.Run(context.Background(), ic)
	var se *pipeline.StageError
	if !errors.As(err, &se) || se.Kind != pipeline.KindConfigureArtifact {
		t.Fatalf("error = %v, want failure: stale artifact must not count", err)
	}
}

func TestConfigurator_ScriptedWhenExpectPresent(t *testing.T) {
	stubExpect(t, true)
	runner := &shell.FakeRunner{}
	c, ic := newConfigurator(t, runner, false)
	c.Run(context.Background(), ic) //nolint:errcheck

	if len(runner.Calls) != 1 || runner.Calls[0].Name != "expect" {
		t.Fatalf("calls = %v, want one expect invocation", runner.Calls)
	}
	if runner.Calls[0].Interactive {
		t.Error("scripted run must not hand stdio to the user")
	}
}

func TestConfigurator_PassthroughWithoutExpect(t *testing.T) {
	stubExpect(t, false)
	runner := &shell.FakeRunner{}
	c, ic := newConfigurator(t, runner, false)
	c.Run(context.Background(), ic) //nolint:errcheck

	if len(runner.Calls) != 1 || runner.Calls[0].Name != "./configure" {
		t.Fatalf("calls = %v, want one ./configure invocation", runner.Calls)
	}
	if !runner.Calls[0].Interactive {
		t.Error("passthrough run must forward stdio to the user")
	}
}

func TestExpectScript(t *testing.T) {
	s := expectScript(34, 1, true)
	for _, want := range []string{"spawn ./configure", `send "34\r"`, `send "1\r"`} {
		if !strings.Contains(s, want) {
			t.Errorf("script missing %q:\n%s", want, s)
		}
	}
	wps := expectScript(3, 0, false)
	if strings.Contains(wps, "nesting") {
		t.Error("companion script must not answer a nesting prompt")
	}
	// A configure that dies before its prompt must end the script, not
	// run out the timeout.
	for _, script := range []string{s, wps} {
		if !strings.Contains(script, "eof { exit }") {
			t.Errorf("selection block missing an eof arm:\n%s", script)
		}
	}
}
