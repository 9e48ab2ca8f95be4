package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/jvx/internal/theme"
)

type themeSelectionError struct {
	Selected     string
	Available    []string
	DefaultTheme string
}

func (e themeSelectionError) Error() string {
	return fmt.Sprintf("unknown theme %q\navailable themes: %v\ndefault theme: %s", e.Selected, e.Available, e.DefaultTheme)
}

// selectTheme resolves the --theme flag against cfg. Without the flag the
// configured default is used, and a default naming a missing theme falls
// back to the built-in palette.
func selectTheme(cfg theme.ConfigFile, cliTheme string, themeFlagSet bool) (theme.Theme, error) {
	selected := strings.TrimSpace(cliTheme)
	if !themeFlagSet || selected == "" {
		selected = cfg.DefaultThemeName()
	}
	if th, ok := cfg.Theme(selected); ok {
		return th, nil
	}
	if !themeFlagSet {
		return theme.Default(), nil
	}
	return theme.Theme{}, themeSelectionError{
		Selected:     selected,
		Available:    cfg.ThemeNames(),
		DefaultTheme: cfg.DefaultThemeName(),
	}
}

func printThemeSelectionError(w io.Writer, err error) {
	var themeErr themeSelectionError
	if errors.As(err, &themeErr) {
		fmt.Fprintf(w, "unknown theme %q\n", themeErr.Selected)
		fmt.Fprintf(w, "available themes: %v\n", themeErr.Available)
		fmt.Fprintf(w, "default theme: %s\n", themeErr.DefaultTheme)
		return
	}
	fmt.Fprintln(w, err)
}
