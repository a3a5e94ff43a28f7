package compile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/pipeline"
)

// Verifier is the pipeline's final gate: it re-checks every expected
// executable on disk. Nothing before it is trusted.
type Verifier struct {
	Log *runlog.Logger
}

func (v *Verifier) Name() string { return "verify" }

func (v *Verifier) Run(ctx context.Context, ic *pipeline.InstallContext) error {
	missing := missingArtifacts(filepath.Join(ic.InstallRoot, "WRF"), MainArtifacts)
	for i, m := range missing {
		missing[i] = filepath.Join("WRF", m)
	}
	if ic.CompanionBuilt {
		for _, m := range missingArtifacts(filepath.Join(ic.InstallRoot, "WPS"), CompanionArtifacts) {
			missing = append(missing, filepath.Join("WPS", m))
		}
	}
	if len(missing) > 0 {
		return &pipeline.StageError{
			Stage:  v.Name(),
			Kind:   pipeline.KindVerification,
			Reason: fmt.Sprintf("expected executables missing: %s", strings.Join(missing, ", ")),
		}
	}

	v.Log.Infof("all expected executables present under %s", ic.InstallRoot)
	return nil
}
