package ui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// Run starts the viewer for root and blocks until the user quits. Extra
// ProgramOptions (e.g. custom IO) are passed to tea.NewProgram. It returns the
// path that had focus on exit.
func Run(root value.Value, cfg Config, opts ...tea.ProgramOption) (string, error) {
	m := New(root, cfg)
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, tea.WithWindowSize(cfg.Width, cfg.Height))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return "", fmt.Errorf("viewer: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm.FocusPath(), nil
	}
	return m.FocusPath(), nil
}
