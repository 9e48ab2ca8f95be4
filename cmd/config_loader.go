package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/pkg/settings"
)

// resolveConfigPath returns explicit when set, otherwise the user config file
// under $XDG_CONFIG_HOME (or ~/.config) when it exists. An empty result means
// only the built-in defaults apply.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// loadMergedConfig layers the config file at cfgPath, if any, over the
// embedded defaults.
func loadMergedConfig(cfgPath string) (theme.ConfigFile, error) {
	cfg, err := theme.EmbeddedDefaultConfig()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if cfg.UI.Theme.Default == "" || len(cfg.UI.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}
	if cfgPath == "" {
		return cfg, nil
	}
	user, err := theme.LoadConfigFile(cfgPath)
	if err != nil {
		return cfg, err
	}
	return theme.Merge(cfg, user), nil
}

type displaySettings struct {
	indent      int
	expandDepth int
	height      int
}

// resolveDisplay takes each display setting from its flag when the flag was
// given, else from the config, else from the flag default.
func resolveDisplay(flags *pflag.FlagSet, cfg theme.ConfigFile) displaySettings {
	pick := func(name string, flagValue int, configured *int) int {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return flagValue
		}
		if configured != nil {
			return *configured
		}
		return flagValue
	}
	d := cfg.UI.Display
	return displaySettings{
		indent:      pick("indent", indentWidth, d.Indent),
		expandDepth: pick("expand-depth", expandDepth, d.ExpandDepth),
		height:      pick("height", viewHeight, d.Height),
	}
}
