package pipeline

// InstallContext carries mutable state through the installation pipeline.
type InstallContext struct {
	// InstallRoot is the absolute directory everything is installed
	// under. It exists and is writable before any stage runs.
	InstallRoot string

	// CoreCount is the build parallelism hint, floor 1.
	CoreCount int

	// ResolvedPaths maps logical library names to filesystem paths. An
	// empty value records that resolution found nothing; a later stage
	// turns that into a targeted failure.
	ResolvedPaths map[string]string

	// Compiler variant and nesting selections fed to the external
	// configure procedure.
	Toolchain     string // gnu, intel or pgi
	VariantOption int    // stock configure option number
	VariantClass  string // serial, smpar, dmpar or dmsm
	NestingOption int

	// Companion (preprocessing system) choice, decided after the main
	// compilation succeeds.
	WantsPreprocessing bool
	CompanionDecided   bool
	CompanionBuilt     bool

	// EnvFile is the persisted environment descriptor's path, set by
	// the materializer.
	EnvFile string
}

// NewInstallContext creates an InstallContext rooted at dir with the
// given parallelism degree.
func NewInstallContext(dir string, cores int) *InstallContext {
	if cores < 1 {
		cores = 1
	}
	return &InstallContext{
		InstallRoot:   dir,
		CoreCount:     cores,
		ResolvedPaths: make(map[string]string),
	}
}

// SetResolved records a library resolution; empty path marks it absent.
func (ic *InstallContext) SetResolved(name, path string) {
	ic.ResolvedPaths[name] = path
}

// Resolved returns the resolved path for a logical library and whether
// resolution found one.
func (ic *InstallContext) Resolved(name string) (string, bool) {
	p, ok := ic.ResolvedPaths[name]
	if !ok || p == "" {
		return "", false
	}
	return p, true
}
