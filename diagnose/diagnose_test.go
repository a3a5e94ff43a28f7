package diagnose

import "testing"

func TestClassify_FirstMatchWins(t *testing.T) {
	// A log naming both a NetCDF header and MPI symbols classifies as
	// NetCDF, per the documented rule order.
	log := "fatal: mpif.h not found\nerror: netcdf.h: No such file or directory\n"
	if got := Classify(log).Cause; got != CauseNetCDF {
		t.Errorf("Cause = %s, want %s", got, CauseNetCDF)
	}
}

func TestClassify_Taxonomy(t *testing.T) {
	cases := []struct {
		name string
		log  string
		want Cause
	}{
		{"netcdf", "cannot open libnetcdf.so", CauseNetCDF},
		{"mpi", "undefined reference to MPI_Init", CauseMPI},
		{"configure", "configure.wrf: not found", CauseConfigure},
		{"missing file", "cp: foo: No such file or directory", CauseMissingFile},
		{"permission", "mkdir: cannot create: Permission denied", CausePermission},
		{"unknown", "segmentation fault (core dumped)", CauseUnknown},
		{"empty", "", CauseUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.log)
			if got.Cause != tc.want {
				t.Errorf("Cause = %s, want %s", got.Cause, tc.want)
			}
			if got.Summary == "" || got.Advice == "" {
				t.Error("finding must carry a summary and advice")
			}
		})
	}
}
