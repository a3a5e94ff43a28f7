package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/initializ/wrfup/internal/ui"
	"github.com/initializ/wrfup/probe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print what wrfup detects on this machine without installing anything",
	RunE: func(cmd *cobra.Command, _ []string) error {
		styles := ui.NewStyleSet()
		p := probe.Probe(cmd.Context())
		printProfile(styles, p)
		fmt.Printf("  %s%s\n", styles.SummaryKey.Render("Kernel"), p.Kernel)
		return nil
	},
}
