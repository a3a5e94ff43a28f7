package ui

import (
	"fmt"
	"strings"
)

// RenderBanner returns the header printed at the start of a run.
func RenderBanner(styles *StyleSet, version string, width int) string {
	if version == "" {
		version = "dev"
	}

	title := styles.Banner.Render("☁  W R F U P") + "  " + styles.DimTxt.Render("v"+version)
	subtitle := styles.Subtitle.Render("Install, configure, and compile WRF and WPS on this machine.")

	dividerWidth := width - 4
	if dividerWidth < 20 {
		dividerWidth = 20
	}
	if dividerWidth > 60 {
		dividerWidth = 60
	}
	divider := styles.DimTxt.Render(strings.Repeat("─", dividerWidth))

	return fmt.Sprintf("  %s\n  %s\n  %s\n\n", title, subtitle, divider)
}
