package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

// Target identifies one versioned source archive and where it lands.
type Target struct {
	Name      string // display name
	Version   string
	URL       string // archive URL
	Extracted string // top-level directory the archive unpacks to
	Canonical string // fixed directory name the pipeline expects
}

// MainTarget is the WRF model source for the given version.
func MainTarget(version string) Target {
	return Target{
		Name:      "WRF",
		Version:   version,
		URL:       fmt.Sprintf("https://github.com/wrf-model/WRF/archive/refs/tags/v%s.tar.gz", version),
		Extracted: "WRF-" + version,
		Canonical: "WRF",
	}
}

// CompanionTarget is the WPS preprocessing source for the given version.
func CompanionTarget(version string) Target {
	return Target{
		Name:      "WPS",
		Version:   version,
		URL:       fmt.Sprintf("https://github.com/wrf-model/WPS/archive/refs/tags/v%s.tar.gz", version),
		Extracted: "WPS-" + version,
		Canonical: "WPS",
	}
}

// Acquirer downloads, extracts, and canonically renames one target. Each
// sub-step reports its own failure reason so diagnosis can target the
// right remediation.
type Acquirer struct {
	Runner shell.Runner
	Log    *runlog.Logger
	Target Target

	// Transports overrides transport detection; nil uses wget then curl.
	Transports []Transport
}

func (a *Acquirer) Name() string { return "acquire-" + a.Target.Canonical }

// Run tolerates a partially-modified install root: an existing archive
// is resumed or re-downloaded, an existing canonical directory is
// replaced.
func (a *Acquirer) Run(ctx context.Context, ic *pipeline.InstallContext) error {
	if err := os.MkdirAll(ic.InstallRoot, 0755); err != nil {
		return a.fail(pipeline.KindAcquisition, "creating install root", err)
	}

	transports := a.Transports
	if transports == nil {
		transports = []Transport{
			&WgetTransport{Runner: a.Runner},
			&CurlTransport{Runner: a.Runner},
		}
	}
	transport := DetectTransport(transports...)
	if transport == nil {
		return a.fail(pipeline.KindTransportUnavailable,
			"no download transport available (need wget or curl)", nil)
	}

	archive := filepath.Join(ic.InstallRoot, fmt.Sprintf("%s-v%s.tar.gz", a.Target.Canonical, a.Target.Version))
	a.Log.Infof("downloading %s v%s via %s", a.Target.Name, a.Target.Version, transport.Name())
	if err := transport.Fetch(ctx, a.Target.URL, archive); err != nil {
		return a.fail(pipeline.KindAcquisition, fmt.Sprintf("downloading %s", a.Target.URL), err)
	}

	a.Log.Infof("extracting %s", filepath.Base(archive))
	err := a.Runner.Run(ctx, shell.Cmd{
		Name: "tar",
		Args: []string{"-xzf", archive, "-C", ic.InstallRoot},
	})
	if err != nil {
		return a.fail(pipeline.KindAcquisition, fmt.Sprintf("extracting %s", filepath.Base(archive)), err)
	}

	extracted := filepath.Join(ic.InstallRoot, a.Target.Extracted)
	canonical := filepath.Join(ic.InstallRoot, a.Target.Canonical)
	if _, err := os.Stat(extracted); err != nil {
		return a.fail(pipeline.KindAcquisition,
			fmt.Sprintf("archive did not unpack to the expected directory %s", a.Target.Extracted), err)
	}
	if err := os.RemoveAll(canonical); err != nil {
		return a.fail(pipeline.KindAcquisition, fmt.Sprintf("replacing existing %s", a.Target.Canonical), err)
	}
	if err := os.Rename(extracted, canonical); err != nil {
		return a.fail(pipeline.KindAcquisition,
			fmt.Sprintf("renaming %s to %s", a.Target.Extracted, a.Target.Canonical), err)
	}

	a.Log.Infof("%s source ready under %s", a.Target.Name, canonical)
	return nil
}

func (a *Acquirer) fail(kind pipeline.FailureKind, reason string, err error) error {
	return &pipeline.StageError{Stage: a.Name(), Kind: kind, Reason: reason, Err: err}
}
