package envfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/initializ/wrfup/internal/shell"
)

// Logical library names recorded in InstallContext.ResolvedPaths and
// exported through the descriptor.
const (
	LibNetCDF        = "netcdf"
	LibNetCDFFortran = "netcdf-fortran"
	LibHDF5          = "hdf5"
	LibJasperInclude = "jasper-include"
	LibJasperLib     = "jasper-lib"
)

// Lookup describes how one logical library is resolved: an introspection
// command first, then a fixed list of conventional locations. The first
// existing match wins.
type Lookup struct {
	Name string
	Var  string // environment variable in the descriptor

	// Introspect is an argv whose trimmed stdout is the install prefix.
	// Empty means no introspection tool exists for this library.
	Introspect []string

	// Candidates are tried in order when introspection yields nothing.
	// A candidate matches when Marker (or any of Markers) exists under it.
	Candidates []string
	Markers    []string
}

// DefaultLookups returns the resolution table. Candidate order is
// system-wide, local, package-manager prefix, opt prefix.
func DefaultLookups() []Lookup {
	prefixes := []string{"/usr", "/usr/local", "/opt/homebrew", "/opt"}
	includes := []string{"/usr/include", "/usr/local/include", "/opt/homebrew/include", "/opt/include"}
	libs := []string{"/usr/lib", "/usr/lib/x86_64-linux-gnu", "/usr/local/lib", "/opt/homebrew/lib", "/opt/lib"}

	return []Lookup{
		{
			Name:       LibNetCDF,
			Var:        "NETCDF",
			Introspect: []string{"nc-config", "--prefix"},
			Candidates: prefixes,
			Markers:    []string{"include/netcdf.h"},
		},
		{
			Name:       LibNetCDFFortran,
			Var:        "NETCDF_FORTRAN",
			Introspect: []string{"nf-config", "--prefix"},
			Candidates: prefixes,
			Markers:    []string{"include/netcdf.mod", "include/netcdf.inc"},
		},
		{
			Name:       LibHDF5,
			Var:        "HDF5",
			Introspect: []string{"pkg-config", "--variable=prefix", "hdf5"},
			Candidates: prefixes,
			Markers:    []string{"include/hdf5.h"},
		},
		{
			Name:       LibJasperInclude,
			Var:        "JASPERINC",
			Candidates: includes,
			Markers:    []string{"jasper/jasper.h"},
		},
		{
			Name:       LibJasperLib,
			Var:        "JASPERLIB",
			Candidates: libs,
			Markers:    []string{"libjasper.so", "libjasper.dylib", "libjasper.a"},
		},
	}
}

// resolve finds the library's location, or "" when nothing matches.
// Resolution is deterministic: a working introspection tool always wins
// over the directory scan, and the scan takes the first existing
// candidate.
func resolve(ctx context.Context, runner shell.Runner, l Lookup) string {
	if len(l.Introspect) > 0 {
		out, err := runner.Output(ctx, shell.Cmd{Name: l.Introspect[0], Args: l.Introspect[1:]})
		if err == nil && out != "" && dirExists(out) {
			return out
		}
	}
	for _, c := range l.Candidates {
		for _, m := range l.Markers {
			if fileExists(filepath.Join(c, m)) {
				return c
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
