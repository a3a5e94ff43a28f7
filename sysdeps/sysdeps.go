// Package sysdeps installs the build tools and libraries WRF needs,
// dispatching on the probed operating system family.
package sysdeps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
	"github.com/initializ/wrfup/probe"
)

// Group is one ordered package-manager invocation batch. A non-zero exit
// in any command aborts the remaining groups.
type Group struct {
	Name     string
	Commands [][]string
}

// lookPath is stubbed in tests.
var lookPath = exec.LookPath

// Installer is the dependency-installation stage.
type Installer struct {
	Runner  shell.Runner
	Log     *runlog.Logger
	Profile *probe.Profile
}

func (i *Installer) Name() string { return "install-dependencies" }

// Run selects the procedure for the probed OS family and executes its
// groups in order. An unmapped family is a failure, not a crash.
func (i *Installer) Run(ctx context.Context, _ *pipeline.InstallContext) error {
	family, err := i.dispatch()
	if err != nil {
		return err
	}

	if family == probe.OSMac && !have("brew") {
		// Installing a package manager autonomously is out of scope; this
		// is a deliberate safety boundary.
		return &pipeline.StageError{
			Stage:  i.Name(),
			Kind:   pipeline.KindDependencyInstall,
			Reason: "Homebrew is required on macOS but was not found; install it from https://brew.sh and re-run",
		}
	}

	groups := proceduresByFamily[family]
	i.Log.Infof("installing dependencies via the %s procedure (%d groups)", family, len(groups))

	for _, g := range groups {
		i.Log.Infof("package group: %s", g.Name)
		for _, argv := range g.Commands {
			cmd := shell.Cmd{Name: argv[0], Args: argv[1:]}
			i.Log.Infof("  running %s", shell.Format(cmd))
			if err := i.Runner.Run(ctx, cmd); err != nil {
				return &pipeline.StageError{
					Stage:  i.Name(),
					Kind:   pipeline.KindDependencyInstall,
					Reason: fmt.Sprintf("package group %q failed", g.Name),
					Err:    err,
				}
			}
		}
	}
	return nil
}

// dispatch maps the profile's OS family onto one of the four fixed
// procedures. The compatibility layer installs as Debian. An unknown
// family gets one fallback check (kernel naming the compatibility
// layer) before the manual-installation failure.
func (i *Installer) dispatch() (probe.OSFamily, error) {
	switch i.Profile.OS {
	case probe.OSDebian, probe.OSRedHat, probe.OSMac:
		return i.Profile.OS, nil
	case probe.OSWSL:
		return probe.OSDebian, nil
	default:
		if strings.Contains(strings.ToLower(i.Profile.Kernel), "microsoft") {
			i.Log.Infof("unknown distribution on a WSL kernel; using the Debian procedure")
			return probe.OSDebian, nil
		}
		return "", &pipeline.StageError{
			Stage:  i.Name(),
			Kind:   pipeline.KindDependencyInstall,
			Reason: fmt.Sprintf("unsupported operating system %q: manual installation required", i.Profile.OS),
		}
	}
}

// GroupsFor exposes the procedure for a family; used by tests and the
// probe subcommand's dry listing.
func GroupsFor(family probe.OSFamily) ([]Group, bool) {
	g, ok := proceduresByFamily[family]
	return g, ok
}

func have(name string) bool {
	_, err := lookPath(name)
	return err == nil
}

// Procedures run build tools first, then numerical libraries, then the
// message-passing runtime, then image-format libraries.
var proceduresByFamily = map[probe.OSFamily][]Group{
	probe.OSDebian: {
		{
			Name: "build-tools",
			Commands: [][]string{
				{"sudo", "apt-get", "update"},
				{"sudo", "apt-get", "install", "-y",
					"build-essential", "gfortran", "csh", "m4", "perl",
					"tar", "file", "make", "git"},
			},
		},
		{
			Name: "numerical-libraries",
			Commands: [][]string{
				{"sudo", "apt-get", "install", "-y",
					"libnetcdf-dev", "libnetcdff-dev", "libhdf5-dev", "netcdf-bin"},
			},
		},
		{
			Name: "mpi",
			Commands: [][]string{
				{"sudo", "apt-get", "install", "-y", "mpich", "libmpich-dev"},
			},
		},
		{
			Name: "image-format-libraries",
			Commands: [][]string{
				{"sudo", "apt-get", "install", "-y",
					"libjasper-dev", "libpng-dev", "zlib1g-dev"},
			},
		},
	},
	probe.OSRedHat: {
		{
			Name: "build-tools",
			Commands: [][]string{
				{"sudo", "yum", "install", "-y",
					"gcc", "gcc-gfortran", "gcc-c++", "make", "m4",
					"csh", "perl", "tar", "file", "git"},
			},
		},
		{
			Name: "numerical-libraries",
			Commands: [][]string{
				{"sudo", "yum", "install", "-y",
					"netcdf-devel", "netcdf-fortran-devel", "hdf5-devel"},
			},
		},
		{
			Name: "mpi",
			Commands: [][]string{
				{"sudo", "yum", "install", "-y", "mpich", "mpich-devel"},
			},
		},
		{
			Name: "image-format-libraries",
			Commands: [][]string{
				{"sudo", "yum", "install", "-y",
					"jasper-devel", "libpng-devel", "zlib-devel"},
			},
		},
	},
	probe.OSMac: {
		{
			Name: "build-tools",
			Commands: [][]string{
				{"brew", "install", "gcc", "m4", "wget"},
			},
		},
		{
			Name: "numerical-libraries",
			Commands: [][]string{
				{"brew", "install", "netcdf", "netcdf-fortran", "hdf5"},
			},
		},
		{
			Name: "mpi",
			Commands: [][]string{
				{"brew", "install", "mpich"},
			},
		},
		{
			Name: "image-format-libraries",
			Commands: [][]string{
				{"brew", "install", "jasper", "libpng"},
			},
		},
	},
}
