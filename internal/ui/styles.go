// Package ui renders the installer's terminal output and prompts.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// StyleSet contains the pre-computed lipgloss styles used by the installer.
type StyleSet struct {
	Banner     lipgloss.Style
	Subtitle   lipgloss.Style
	Section    lipgloss.Style
	SuccessTxt lipgloss.Style
	WarningTxt lipgloss.Style
	ErrorTxt   lipgloss.Style
	DimTxt     lipgloss.Style
	SummaryKey lipgloss.Style
	SummaryVal lipgloss.Style
}

// NewStyleSet builds the default style set.
func NewStyleSet() *StyleSet {
	return &StyleSet{
		Banner:     lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true),
		Subtitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Section:    lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true),
		SuccessTxt: lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		WarningTxt: lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308")),
		ErrorTxt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		DimTxt:     lipgloss.NewStyle().Foreground(lipgloss.Color("#5a5a70")),
		SummaryKey: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(18),
		SummaryVal: lipgloss.NewStyle().Bold(true),
	}
}

// MarkOK returns the styled success mark.
func (s *StyleSet) MarkOK() string { return s.SuccessTxt.Render("✓") }

// MarkFail returns the styled failure mark.
func (s *StyleSet) MarkFail() string { return s.ErrorTxt.Render("✗") }

// MarkWarn returns the styled warning mark.
func (s *StyleSet) MarkWarn() string { return s.WarningTxt.Render("!") }

// IsInteractive reports whether stdin is attached to a terminal. When it
// is not, prompts fall back to their defaults.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Width returns the terminal width, or a sane default when unavailable.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
