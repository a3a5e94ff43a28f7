package envfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

func mkMarker(t *testing.T, prefix, rel string) {
	t.Helper()
	path := filepath.Join(prefix, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_IntrospectionWins(t *testing.T) {
	toolPrefix := t.TempDir()
	scanPrefix := t.TempDir()
	mkMarker(t, scanPrefix, "include/netcdf.h")

	fake := &shell.FakeRunner{
		Out: func(cmd shell.Cmd) (string, error) { return toolPrefix, nil },
	}
	l := Lookup{
		Name:       LibNetCDF,
		Introspect: []string{"nc-config", "--prefix"},
		Candidates: []string{scanPrefix},
		Markers:    []string{"include/netcdf.h"},
	}
	if got := resolve(context.Background(), fake, l); got != toolPrefix {
		t.Errorf("resolve = %q, want introspection result %q", got, toolPrefix)
	}
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	// Both candidates exist; the earlier one must win.
	mkMarker(t, first, "include/hdf5.h")
	mkMarker(t, second, "include/hdf5.h")

	fake := &shell.FakeRunner{} // introspection fails by default
	l := Lookup{
		Name:       LibHDF5,
		Introspect: []string{"pkg-config", "--variable=prefix", "hdf5"},
		Candidates: []string{first, second},
		Markers:    []string{"include/hdf5.h"},
	}
	if got := resolve(context.Background(), fake, l); got != first {
		t.Errorf("resolve = %q, want first candidate %q", got, first)
	}
}

func TestResolve_AbsentIsEmpty(t *testing.T) {
	fake := &shell.FakeRunner{}
	l := Lookup{Name: LibJasperLib, Candidates: []string{t.TempDir()}, Markers: []string{"libjasper.so"}}
	if got := resolve(context.Background(), fake, l); got != "" {
		t.Errorf("resolve = %q, want empty for absent library", got)
	}
}

func testLookups(t *testing.T) ([]Lookup, string) {
	prefix := t.TempDir()
	mkMarker(t, prefix, "include/netcdf.h")
	return []Lookup{
		{Name: LibNetCDF, Var: "NETCDF", Candidates: []string{prefix}, Markers: []string{"include/netcdf.h"}},
		{Name: LibJasperLib, Var: "JASPERLIB", Candidates: []string{filepath.Join(prefix, "nope")}, Markers: []string{"libjasper.so"}},
	}, prefix
}

func TestMaterializer_RunIsIdempotent(t *testing.T) {
	log, err := runlog.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	lookups, prefix := testLookups(t)
	m := &Materializer{Runner: &shell.FakeRunner{}, Log: log, Lookups: lookups}
	ic := pipeline.NewInstallContext(t.TempDir(), 4)

	t.Setenv("NETCDF", "")
	t.Setenv("PATH", os.Getenv("PATH"))

	for i := 0; i < 2; i++ {
		if err := m.Run(context.Background(), ic); err != nil {
			t.Fatalf("Run() #%d error: %v", i+1, err)
		}
	}

	if p, ok := ic.Resolved(LibNetCDF); !ok || p != prefix {
		t.Errorf("netcdf resolved to %q, want %q", p, prefix)
	}
	if _, ok := ic.Resolved(LibJasperLib); ok {
		t.Error("jasper-lib must be recorded absent")
	}
	if os.Getenv("NETCDF") != prefix {
		t.Errorf("NETCDF env = %q, want %q (descriptor must be applied)", os.Getenv("NETCDF"), prefix)
	}
	if ic.EnvFile == "" {
		t.Fatal("EnvFile not recorded")
	}
	data, err := os.ReadFile(ic.EnvFile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "JASPERLIB") {
		t.Error("descriptor must not export unresolved libraries")
	}
}

func TestDescriptor_RoundTrip(t *testing.T) {
	lookups, prefix := testLookups(t)
	root := t.TempDir()
	ic := pipeline.NewInstallContext(root, 8)
	ic.SetResolved(LibNetCDF, prefix)

	path := filepath.Join(root, DescriptorName)
	if err := WriteDescriptor(path, lookups, ic); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	vars, err := ParseEnvVars(f)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"NETCDF":                       prefix,
		"WRF_INSTALL_ROOT":             root,
		"WRF_BUILD_JOBS":               "8",
		"WRFIO_NCD_LARGE_FILE_SUPPORT": "1",
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s = %q, want %q", k, vars[k], v)
		}
	}
	if !strings.HasPrefix(vars["PATH"], filepath.Join(root, "WRF", "main")) {
		t.Errorf("PATH = %q, want the built binary dirs prepended", vars["PATH"])
	}
	if !strings.HasSuffix(vars["PATH"], "$PATH") {
		t.Errorf("PATH = %q, must remain shell re-sourceable", vars["PATH"])
	}
}

func TestDescriptor_QuotesWhitespacePaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "wrf install")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	ic := pipeline.NewInstallContext(root, 2)
	ic.SetResolved(LibNetCDF, "/opt/my libs/netcdf")

	path := filepath.Join(root, DescriptorName)
	lookups := []Lookup{{Name: LibNetCDF, Var: "NETCDF"}}
	if err := WriteDescriptor(path, lookups, ic); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `export NETCDF="/opt/my libs/netcdf"`) {
		t.Errorf("descriptor must quote values with spaces:\n%s", data)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	vars, err := ParseEnvVars(f)
	if err != nil {
		t.Fatal(err)
	}
	if vars["WRF_INSTALL_ROOT"] != root {
		t.Errorf("WRF_INSTALL_ROOT = %q, want %q", vars["WRF_INSTALL_ROOT"], root)
	}
	if vars["NETCDF"] != "/opt/my libs/netcdf" {
		t.Errorf("NETCDF = %q, quotes must round-trip", vars["NETCDF"])
	}
}

func TestApply_ExpandsPath(t *testing.T) {
	root := t.TempDir()
	descriptor := filepath.Join(root, DescriptorName)
	body := "export WRF_TEST_VAR=hello\nexport PATH=" + root + ":$PATH\n"
	if err := os.WriteFile(descriptor, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WRF_TEST_VAR", "")
	t.Setenv("PATH", "/usr/bin")

	if err := Apply(descriptor); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("WRF_TEST_VAR"); got != "hello" {
		t.Errorf("WRF_TEST_VAR = %q, want hello", got)
	}
	if got := os.Getenv("PATH"); got != root+":/usr/bin" {
		t.Errorf("PATH = %q, want %q", got, root+":/usr/bin")
	}
}

func TestParseEnvVars(t *testing.T) {
	in := `# comment
export A=1
export B="two words"
C=not-an-export
ignored line
`
	vars, err := ParseEnvVars(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"A": "1", "B": "two words"} {
		if vars[k] != want {
			t.Errorf("%s = %q, want %q", k, vars[k], want)
		}
	}
	for _, k := range []string{"C", "ignored"} {
		if _, ok := vars[k]; ok {
			t.Errorf("%q parsed, want only export lines accepted", k)
		}
	}
}
