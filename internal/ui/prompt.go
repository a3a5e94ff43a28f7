package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompt asks the user questions on the terminal. On a non-interactive
// stdin every prompt resolves to its default so scripted runs proceed
// without input.
type Prompt struct {
	styles *StyleSet
}

// NewPrompt creates a Prompt using the given styles.
func NewPrompt(styles *StyleSet) *Prompt {
	return &Prompt{styles: styles}
}

// Text prompts for a text value with a default.
func (p *Prompt) Text(label, defaultVal string) (string, error) {
	if !IsInteractive() {
		return defaultVal, nil
	}
	pr := promptui.Prompt{
		Label:   label,
		Default: defaultVal,
	}
	result, err := pr.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %q failed: %w", label, err)
	}
	if strings.TrimSpace(result) == "" {
		return defaultVal, nil
	}
	return result, nil
}

// Select presents a list and returns the selected index. The cursor
// starts on defaultIdx, which is also the non-interactive answer.
func (p *Prompt) Select(label string, items []string, defaultIdx int) (int, error) {
	if defaultIdx < 0 || defaultIdx >= len(items) {
		defaultIdx = 0
	}
	if !IsInteractive() {
		return defaultIdx, nil
	}
	s := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: defaultIdx,
		Size:      len(items),
	}
	idx, _, err := s.Run()
	if err != nil {
		return -1, fmt.Errorf("prompt %q failed: %w", label, err)
	}
	return idx, nil
}

// Confirm asks a yes/no question with a default answer.
func (p *Prompt) Confirm(label string, defaultYes bool) (bool, error) {
	def := "y"
	if !defaultYes {
		def = "n"
	}
	answer, err := p.Text(label+" (y/n)", def)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes, nil
	}
	return strings.HasPrefix(answer, "y"), nil
}
