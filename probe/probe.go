// Package probe inspects the host and produces an immutable Profile.
// Every sub-detection degrades to an empty or zero result rather than
// failing the probe: a missing compiler is data, not an error.
package probe

import (
	"context"
	"os/exec"
	"strings"
)

// OSFamily is the closed set of operating system classifications the
// installer dispatches on.
type OSFamily string

const (
	OSDebian  OSFamily = "debian"
	OSRedHat  OSFamily = "redhat"
	OSMac     OSFamily = "macos"
	OSWSL     OSFamily = "wsl"
	OSUnknown OSFamily = "unknown"
)

// Profile is an immutable snapshot of host capabilities, constructed once
// per run and read-only afterward.
type Profile struct {
	OS     OSFamily
	Distro string // raw distribution identifier, informational
	Arch   string
	Kernel string

	Compilers []string // subset of {gnu, intel, pgi}
	MPI       []string // subset of {mpich, openmpi}
	Libraries []string // subset of {netcdf, hdf5, jasper}

	DiskFreeKB uint64 // advisory only
	MemoryKB   uint64 // advisory only
}

// lookPath is stubbed in tests.
var lookPath = exec.LookPath

// Probe inspects the host. It never returns an error; absent
// capabilities are simply absent from the profile.
func Probe(ctx context.Context) *Profile {
	p := &Profile{
		Arch:   unameOutput(ctx, "-m"),
		Kernel: unameOutput(ctx, "-r"),
	}
	p.OS, p.Distro = DetectOS("/", unameOutput(ctx, "-s"), p.Kernel)
	p.Compilers = detectCompilers()
	p.MPI = detectMPI()
	p.Libraries = detectLibraries()
	p.DiskFreeKB = diskFreeKB(ctx, ".")
	p.MemoryKB = memoryKB(ctx)
	return p
}

// HasCompiler reports whether the given toolchain was detected.
func (p *Profile) HasCompiler(name string) bool {
	for _, c := range p.Compilers {
		if c == name {
			return true
		}
	}
	return false
}

func unameOutput(ctx context.Context, flag string) string {
	out, err := exec.CommandContext(ctx, "uname", flag).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// detectCompilers checks for known Fortran/C toolchains. An empty result
// is valid; the configurator falls back to the GNU variant table.
func detectCompilers() []string {
	var found []string
	if have("gfortran") || have("gcc") {
		found = append(found, "gnu")
	}
	if have("ifort") || have("ifx") {
		found = append(found, "intel")
	}
	if have("pgfortran") || have("pgf90") {
		found = append(found, "pgi")
	}
	return found
}

func detectMPI() []string {
	var found []string
	if have("mpichversion") || have("mpich") {
		found = append(found, "mpich")
	}
	if have("ompi_info") {
		found = append(found, "openmpi")
	}
	if len(found) == 0 && have("mpirun") {
		// Some runtime is present but its flavor is unidentified.
		found = append(found, "mpich")
	}
	return found
}

func detectLibraries() []string {
	var found []string
	if have("nc-config") {
		found = append(found, "netcdf")
	}
	if have("h5cc") || have("h5pcc") {
		found = append(found, "hdf5")
	}
	if have("jasper") {
		found = append(found, "jasper")
	}
	return found
}

func have(name string) bool {
	_, err := lookPath(name)
	return err == nil
}
