// Package acquire fetches and unpacks the WRF and WPS source archives.
package acquire

import (
	"context"
	"os/exec"

	"github.com/initializ/wrfup/internal/shell"
)

// Transport downloads a release archive to a local file.
type Transport interface {
	Name() string
	Available() bool
	Fetch(ctx context.Context, url, dest string) error
}

// lookPath is stubbed in tests.
var lookPath = exec.LookPath

// WgetTransport downloads with wget. Preferred because it resumes
// partial downloads and shows progress.
type WgetTransport struct {
	Runner shell.Runner
}

func (t *WgetTransport) Name() string { return "wget" }

func (t *WgetTransport) Available() bool {
	_, err := lookPath("wget")
	return err == nil
}

func (t *WgetTransport) Fetch(ctx context.Context, url, dest string) error {
	return t.Runner.Run(ctx, shell.Cmd{
		Name: "wget",
		Args: []string{"-c", "--progress=dot:giga", "-O", dest, url},
	})
}

// CurlTransport downloads with curl, the fallback transport.
type CurlTransport struct {
	Runner shell.Runner
}

func (t *CurlTransport) Name() string { return "curl" }

func (t *CurlTransport) Available() bool {
	_, err := lookPath("curl")
	return err == nil
}

func (t *CurlTransport) Fetch(ctx context.Context, url, dest string) error {
	return t.Runner.Run(ctx, shell.Cmd{
		Name: "curl",
		Args: []string{"-L", "-f", "-o", dest, url},
	})
}

// DetectTransport returns the first available transport in preference
// order, or nil when none is usable.
func DetectTransport(transports ...Transport) Transport {
	for _, t := range transports {
		if t.Available() {
			return t
		}
	}
	return nil
}
