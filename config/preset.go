// Package config loads the optional wrfup.yaml preset file. A preset
// pins answers the interactive flow would otherwise prompt for.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PresetName is the file looked up in the working directory.
const PresetName = "wrfup.yaml"

// Preset is the top-level wrfup.yaml structure. Zero values mean "not
// pinned, ask interactively"; Companion is a pointer so that an explicit
// `companion: false` is distinguishable from absence.
type Preset struct {
	InstallRoot    string `yaml:"install_root,omitempty"`
	WRFVersion     string `yaml:"wrf_version,omitempty"`
	WPSVersion     string `yaml:"wps_version,omitempty"`
	Variant        string `yaml:"variant,omitempty"` // serial, smpar, dmpar, dmsm
	Nesting        int    `yaml:"nesting,omitempty"` // 1..3
	Companion      *bool  `yaml:"companion,omitempty"`
	Jobs           int    `yaml:"jobs,omitempty"`
	NonInteractive bool   `yaml:"non_interactive,omitempty"`
}

// Load reads a preset from path. A missing file is not an error: it
// yields the zero preset, meaning everything is asked interactively.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Preset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses and schema-validates raw preset YAML.
func Parse(data []byte) (*Preset, error) {
	schemaErrs, err := validateSchema(data)
	if err != nil {
		return nil, err
	}
	if len(schemaErrs) > 0 {
		return nil, fmt.Errorf("preset does not match schema: %s", schemaErrs[0])
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	return &p, nil
}
