// Package diagnose pattern-matches captured failure output against a
// small taxonomy of known root causes.
package diagnose

import "strings"

// Cause identifies a diagnosed root cause.
type Cause string

const (
	CauseNetCDF      Cause = "netcdf"
	CauseMPI         Cause = "mpi"
	CauseConfigure   Cause = "configure"
	CauseMissingFile Cause = "missing-file"
	CausePermission  Cause = "permission"
	CauseUnknown     Cause = "unknown"
)

// Finding is a classified failure: a root-cause guess plus remediation
// advice, shown to the user alongside the raw log.
type Finding struct {
	Cause   Cause
	Summary string
	Advice  string
}

// rules are evaluated in order; the first match wins. Order matters: a
// log naming both a NetCDF header and an MPI symbol is a NetCDF finding.
var rules = []struct {
	needles []string
	finding Finding
}{
	{
		needles: []string{"netcdf.h", "netcdf.inc", "libnetcdf", "NETCDF"},
		finding: Finding{
			Cause:   CauseNetCDF,
			Summary: "the build could not find the NetCDF library",
			Advice:  "re-enter environment setup so the NetCDF paths are re-resolved, or re-install dependencies",
		},
	},
	{
		needles: []string{"mpif.h", "mpi.h", "mpicc", "mpif90", "MPI_"},
		finding: Finding{
			Cause:   CauseMPI,
			Summary: "the build could not find the MPI runtime",
			Advice:  "re-install dependencies to bring in MPI, then re-enter environment setup",
		},
	},
	{
		needles: []string{"configure.wrf", "configure.wps", "configure: error"},
		finding: Finding{
			Cause:   CauseConfigure,
			Summary: "the configuration artifact is missing or invalid",
			Advice:  "re-enter environment setup and run configuration again",
		},
	},
	{
		needles: []string{"No such file or directory"},
		finding: Finding{
			Cause:   CauseMissingFile,
			Summary: "a required file was not found",
			Advice:  "check the log for the missing path; re-installing dependencies may supply it",
		},
	},
	{
		needles: []string{"Permission denied"},
		finding: Finding{
			Cause:   CausePermission,
			Summary: "a file or directory was not writable",
			Advice:  "check ownership of the install directory and re-run",
		},
	},
}

// Classify maps captured log output to a Finding. It is total: input
// matching no rule yields CauseUnknown.
func Classify(log string) Finding {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(log, n) {
				return r.finding
			}
		}
	}
	return Finding{
		Cause:   CauseUnknown,
		Summary: "no known failure signature matched",
		Advice:  "inspect the full error log",
	}
}
