package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/initializ/wrfup/internal/runlog"
	"github.com/initializ/wrfup/internal/shell"
	"github.com/initializ/wrfup/pipeline"
)

type fakeTransport struct {
	name     string
	avail    bool
	fetchErr error
	fetched  []string
}

func (f *fakeTransport) Name() string    { return f.name }
func (f *fakeTransport) Available() bool { return f.avail }
func (f *fakeTransport) Fetch(_ context.Context, url, dest string) error {
	f.fetched = append(f.fetched, url)
	return f.fetchErr
}

func newAcquirer(t *testing.T, target Target, runner shell.Runner, transports ...Transport) *Acquirer {
	t.Helper()
	log, err := runlog.New(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return &Acquirer{Runner: runner, Log: log, Target: target, Transports: transports}
}

// extractingRunner simulates tar by creating the expected directory.
func extractingRunner(root, extracted string) *shell.FakeRunner {
	return &shell.FakeRunner{
		RunErr: func(cmd shell.Cmd) error {
			if cmd.Name == "tar" {
				return os.MkdirAll(filepath.Join(root, extracted), 0755)
			}
			return nil
		},
	}
}

func TestDetectTransport_PreferenceOrder(t *testing.T) {
	wget := &fakeTransport{name: "wget", avail: true}
	curl := &fakeTransport{name: "curl", avail: true}
	if got := DetectTransport(wget, curl); got != Transport(wget) {
		t.Errorf("DetectTransport picked %s, want wget", got.Name())
	}

	wget.avail = false
	if got := DetectTransport(wget, curl); got != Transport(curl) {
		t.Error("DetectTransport must fall back to curl")
	}

	curl.avail = false
	if got := DetectTransport(wget, curl); got != nil {
		t.Error("DetectTransport must return nil when none available")
	}
}

func TestAcquirer_NoTransport(t *testing.T) {
	a := newAcquirer(t, MainTarget("4.5.2"), &shell.FakeRunner{}, &fakeTransport{avail: false})
	err := a.Run(context.Background(), pipeline.NewInstallContext(t.TempDir(), 1))

	var se *pipeline.StageError
	if !errors.As(err, &se) || se.Kind != pipeline.KindTransportUnavailable {
		t.Fatalf("error = %v, want KindTransportUnavailable", err)
	}
}

func TestAcquirer_SubStepReasons(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		tr := &fakeTransport{name: "wget", avail: true, fetchErr: errors.New("network down")}
		a := newAcquirer(t, MainTarget("4.5.2"), &shell.FakeRunner{}, tr)
		err := a.Run(context.Background(), pipeline.NewInstallContext(t.TempDir(), 1))
		if err == nil || !strings.Contains(err.Error(), "downloading") {
			t.Errorf("error = %v, want download reason", err)
		}
	})

	t.Run("extract", func(t *testing.T) {
		runner := &shell.FakeRunner{RunErr: func(cmd shell.Cmd) error {
			if cmd.Name == "tar" {
				return errors.New("not in gzip format")
			}
			return nil
		}}
		a := newAcquirer(t, MainTarget("4.5.2"), runner, &fakeTransport{name: "wget", avail: true})
		err := a.Run(context.Background(), pipeline.NewInstallContext(t.TempDir(), 1))
		if err == nil || !strings.Contains(err.Error(), "extracting") {
			t.Errorf("error = %v, want extract reason", err)
		}
	})

	t.Run("rename", func(t *testing.T) {
		// tar "succeeds" but produces nothing.
		a := newAcquirer(t, MainTarget("4.5.2"), &shell.FakeRunner{}, &fakeTransport{name: "wget", avail: true})
		err := a.Run(context.Background(), pipeline.NewInstallContext(t.TempDir(), 1))
		if err == nil || !strings.Contains(err.Error(), "expected directory") {
			t.Errorf("error = %v, want rename-step reason", err)
		}
	})
}

func TestAcquirer_SuccessRenamesCanonical(t *testing.T) {
	root := t.TempDir()
	target := MainTarget("4.5.2")
	runner := extractingRunner(root, target.Extracted)
	tr := &fakeTransport{name: "wget", avail: true}
	a := newAcquirer(t, target, runner, tr)

	if err := a.Run(context.Background(), pipeline.NewInstallContext(root, 1)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "WRF")); err != nil {
		t.Error("canonical WRF directory missing after acquisition")
	}
	if len(tr.fetched) != 1 || !strings.Contains(tr.fetched[0], "v4.5.2.tar.gz") {
		t.Errorf("fetched = %v, want the v4.5.2 archive URL", tr.fetched)
	}
}

func TestAcquirer_ToleratesExistingCanonicalDir(t *testing.T) {
	root := t.TempDir()
	target := CompanionTarget("4.5")

	// Leftovers from an earlier partial run.
	stale := filepath.Join(root, "WPS", "stale.txt")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	a := newAcquirer(t, target, extractingRunner(root, target.Extracted), &fakeTransport{name: "curl", avail: true})
	if err := a.Run(context.Background(), pipeline.NewInstallContext(root, 1)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale canonical directory must be replaced, not merged")
	}
}
