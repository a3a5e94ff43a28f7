// Package configure drives the interactive configure step of WRF and
// WPS, automating the stock prompts when expect is installed.
package configure

// Variant is one parallelism choice offered by the stock configure
// script, identified by its option number for a given toolchain.
type Variant struct {
	Class  string // serial, smpar, dmpar or dmsm
	Option int    // stock ./configure selection number
	Label  string
}

// variantTables maps a Fortran toolchain to its block of stock WRF
// configure options. The numbers are fixed by the upstream script.
var variantTables = map[string][]Variant{
	"gnu": {
		{Class: "serial", Option: 32, Label: "serial (single process)"},
		{Class: "smpar", Option: 33, Label: "smpar (shared-memory, OpenMP)"},
		{Class: "dmpar", Option: 34, Label: "dmpar (distributed-memory, MPI)"},
		{Class: "dmsm", Option: 35, Label: "dm+sm (MPI + OpenMP)"},
	},
	"intel": {
		{Class: "serial", Option: 13, Label: "serial (single process)"},
		{Class: "smpar", Option: 14, Label: "smpar (shared-memory, OpenMP)"},
		{Class: "dmpar", Option: 15, Label: "dmpar (distributed-memory, MPI)"},
		{Class: "dmsm", Option: 16, Label: "dm+sm (MPI + OpenMP)"},
	},
	"pgi": {
		{Class: "serial", Option: 50, Label: "serial (single process)"},
		{Class: "smpar", Option: 51, Label: "smpar (shared-memory, OpenMP)"},
		{Class: "dmpar", Option: 52, Label: "dmpar (distributed-memory, MPI)"},
		{Class: "dmsm", Option: 53, Label: "dm+sm (MPI + OpenMP)"},
	},
}

// companionOptions maps a toolchain and variant class to the stock WPS
// configure option number.
var companionOptions = map[string]map[string]int{
	"gnu":   {"serial": 1, "smpar": 2, "dmpar": 3, "dmsm": 4},
	"intel": {"serial": 17, "smpar": 18, "dmpar": 19, "dmsm": 20},
	"pgi":   {"serial": 5, "smpar": 6, "dmpar": 7, "dmsm": 8},
}

// toolchainPreference orders toolchains when several compilers were
// detected.
var toolchainPreference = []string{"gnu", "intel", "pgi"}

// VariantsFor selects the toolchain for the detected compilers and
// returns its variant block. With no detected Fortran compiler it falls
// back to the gnu table and reports the fallback so the caller can warn.
func VariantsFor(compilers []string) (toolchain string, variants []Variant, fellBack bool) {
	have := make(map[string]bool, len(compilers))
	for _, c := range compilers {
		have[c] = true
	}
	for _, tc := range toolchainPreference {
		if have[tc] {
			return tc, variantTables[tc], false
		}
	}
	return "gnu", variantTables["gnu"], true
}

// CompanionOption returns the WPS configure option matching the variant
// class chosen for the main build.
func CompanionOption(toolchain, class string) int {
	if opts, ok := companionOptions[toolchain]; ok {
		if n, ok := opts[class]; ok {
			return n
		}
	}
	return companionOptions["gnu"]["dmpar"]
}

// NestingChoices are the WRF nesting options, indexed by option-1.
var NestingChoices = []string{
	"basic",
	"preset moves",
	"vortex following",
}
