package probe

import (
	"os"
	"path/filepath"
	"strings"
)

// Family alias membership is an explicit policy list: a new distribution
// identifier is an explicit addition here, never an inference.
var (
	debianAliases = map[string]bool{
		"debian": true, "ubuntu": true, "linuxmint": true,
		"pop": true, "raspbian": true, "elementary": true,
	}
	redhatAliases = map[string]bool{
		"rhel": true, "centos": true, "fedora": true,
		"rocky": true, "almalinux": true, "scientific": true, "amzn": true,
	}
)

// DetectOS classifies the host operating system. Detection precedence,
// most to least specific: /etc/os-release, /etc/lsb-release,
// /etc/debian_version, /etc/redhat-release, kernel name Darwin, unknown.
// A kernel version naming the Microsoft compatibility layer reclassifies
// any Linux result as wsl. root is "/" outside tests.
func DetectOS(root, kernelName, kernelVersion string) (OSFamily, string) {
	family, distro := detectOSFiles(root, kernelName)
	if family != OSMac && family != OSUnknown && isWSLKernel(kernelVersion) {
		return OSWSL, distro
	}
	return family, distro
}

func detectOSFiles(root, kernelName string) (OSFamily, string) {
	if id := osReleaseID(filepath.Join(root, "etc/os-release")); id != "" {
		if fam := classifyDistro(id); fam != OSUnknown {
			return fam, id
		}
		// Fall through: an unrecognized ID may still carry ID_LIKE.
		if like := osReleaseField(filepath.Join(root, "etc/os-release"), "ID_LIKE"); like != "" {
			for _, w := range strings.Fields(like) {
				if fam := classifyDistro(w); fam != OSUnknown {
					return fam, id
				}
			}
		}
	}
	if id := lsbReleaseID(filepath.Join(root, "etc/lsb-release")); id != "" {
		if fam := classifyDistro(id); fam != OSUnknown {
			return fam, id
		}
	}
	if fileExists(filepath.Join(root, "etc/debian_version")) {
		return OSDebian, "debian"
	}
	if fileExists(filepath.Join(root, "etc/redhat-release")) {
		return OSRedHat, "redhat"
	}
	if kernelName == "Darwin" {
		return OSMac, "macos"
	}
	return OSUnknown, ""
}

func classifyDistro(id string) OSFamily {
	id = strings.ToLower(strings.TrimSpace(id))
	switch {
	case debianAliases[id]:
		return OSDebian
	case redhatAliases[id]:
		return OSRedHat
	default:
		return OSUnknown
	}
}

// isWSLKernel reports whether the kernel version names the Windows
// compatibility layer.
func isWSLKernel(version string) bool {
	return strings.Contains(strings.ToLower(version), "microsoft")
}

func osReleaseID(path string) string {
	return osReleaseField(path, "ID")
}

func osReleaseField(path, key string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || k != key {
			continue
		}
		return strings.Trim(v, `"'`)
	}
	return ""
}

func lsbReleaseID(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "DISTRIB_ID="); ok {
			return strings.Trim(v, `"'`)
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
