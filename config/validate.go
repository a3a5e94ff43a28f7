package config

import (
	"fmt"
	"path/filepath"
)

// ValidationResult holds errors and warnings from preset validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate applies the semantic checks the schema cannot express.
func Validate(p *Preset) *ValidationResult {
	r := &ValidationResult{}

	if p.InstallRoot != "" && !filepath.IsAbs(p.InstallRoot) {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("install_root %q is relative; it resolves against the directory wrfup runs from", p.InstallRoot))
	}

	if p.WPSVersion != "" && (p.Companion != nil && !*p.Companion) {
		r.Warnings = append(r.Warnings, "wps_version is set but companion is false; it will be ignored")
	}

	if p.NonInteractive {
		if p.InstallRoot == "" {
			r.Errors = append(r.Errors, "non_interactive requires install_root to be set")
		}
		if p.Variant == "" {
			r.Errors = append(r.Errors, "non_interactive requires variant to be set")
		}
		if p.Companion == nil {
			r.Errors = append(r.Errors, "non_interactive requires companion to be set")
		}
	}

	return r
}
