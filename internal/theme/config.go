package theme

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     ConfigFile
	embeddedConfigErr  error
)

// ColorValue stores a color token (ANSI number, hex or name) and marshals
// numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is the YAML form of a Theme. Empty fields inherit from the base
// palette.
type ThemeConfig struct {
	Null        ColorValue `yaml:"null_color,omitempty"`
	Number      ColorValue `yaml:"number,omitempty"`
	Boolean     ColorValue `yaml:"boolean,omitempty"`
	String      ColorValue `yaml:"string,omitempty"`
	Key         ColorValue `yaml:"key,omitempty"`
	Bracket     ColorValue `yaml:"bracket,omitempty"`
	Comma       ColorValue `yaml:"comma,omitempty"`
	Colon       ColorValue `yaml:"colon,omitempty"`
	HighlightFG ColorValue `yaml:"highlight_fg,omitempty"`
	HighlightBG ColorValue `yaml:"highlight_bg,omitempty"`
	CurrentFG   ColorValue `yaml:"current_fg,omitempty"`
	CurrentBG   ColorValue `yaml:"current_bg,omitempty"`
	StatusFG    ColorValue `yaml:"status_fg,omitempty"`
	StatusBG    ColorValue `yaml:"status_bg,omitempty"`
	FocusBG     ColorValue `yaml:"focus_bg,omitempty"`
	ErrorFG     ColorValue `yaml:"error_fg,omitempty"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// SelectionConfig names the theme used when no --theme flag is given.
type SelectionConfig struct {
	Default string `yaml:"default,omitempty"`
}

// DisplayConfig holds render defaults. Nil fields are unset.
type DisplayConfig struct {
	// Indent is the number of spaces per nesting level.
	Indent *int `yaml:"indent,omitempty"`
	// ExpandDepth opens containers shallower than this depth; negative opens all.
	ExpandDepth *int `yaml:"expand_depth,omitempty"`
	// Height is the viewport height for non-interactive output; 0 prints everything.
	Height *int `yaml:"height,omitempty"`
}

// UIConfig groups the display settings and theme definitions.
type UIConfig struct {
	Theme   SelectionConfig        `yaml:"theme,omitempty"`
	Display DisplayConfig          `yaml:"display,omitempty"`
	Themes  map[string]ThemeConfig `yaml:"themes,omitempty"`
}

// ConfigFile is the complete configuration document.
type ConfigFile struct {
	App AppConfig `yaml:"app,omitempty"`
	UI  UIConfig  `yaml:"ui,omitempty"`
}

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefaultConfig parses and returns the embedded default configuration.
func EmbeddedDefaultConfig() (ConfigFile, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		embeddedConfig, embeddedConfigErr = ParseConfig(embeddedDefaultConfig)
		if embeddedConfigErr != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", embeddedConfigErr)
		}
	})
	return embeddedConfig, embeddedConfigErr
}

// ParseConfig decodes a configuration document.
func ParseConfig(data []byte) (ConfigFile, error) {
	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ConfigFile{}, err
	}
	if cfg.UI.Themes == nil {
		cfg.UI.Themes = map[string]ThemeConfig{}
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the configuration at path.
func LoadConfigFile(path string) (ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConfigFile{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return ConfigFile{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge layers override on top of base. Themes present in both are merged
// field by field.
func Merge(base, override ConfigFile) ConfigFile {
	out := base
	if override.App.Name != "" {
		out.App.Name = override.App.Name
	}
	if override.App.Description != "" {
		out.App.Description = override.App.Description
	}
	if name := strings.TrimSpace(override.UI.Theme.Default); name != "" {
		out.UI.Theme.Default = name
	}
	if override.UI.Display.Indent != nil {
		out.UI.Display.Indent = override.UI.Display.Indent
	}
	if override.UI.Display.ExpandDepth != nil {
		out.UI.Display.ExpandDepth = override.UI.Display.ExpandDepth
	}
	if override.UI.Display.Height != nil {
		out.UI.Display.Height = override.UI.Display.Height
	}
	out.UI.Themes = make(map[string]ThemeConfig, len(base.UI.Themes)+len(override.UI.Themes))
	for name, th := range base.UI.Themes {
		out.UI.Themes[name] = th
	}
	for name, th := range override.UI.Themes {
		out.UI.Themes[name] = mergeThemeConfig(out.UI.Themes[name], th)
	}
	return out
}

func mergeThemeConfig(base, override ThemeConfig) ThemeConfig {
	out := base
	apply := func(src ColorValue, dst *ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	apply(override.Null, &out.Null)
	apply(override.Number, &out.Number)
	apply(override.Boolean, &out.Boolean)
	apply(override.String, &out.String)
	apply(override.Key, &out.Key)
	apply(override.Bracket, &out.Bracket)
	apply(override.Comma, &out.Comma)
	apply(override.Colon, &out.Colon)
	apply(override.HighlightFG, &out.HighlightFG)
	apply(override.HighlightBG, &out.HighlightBG)
	apply(override.CurrentFG, &out.CurrentFG)
	apply(override.CurrentBG, &out.CurrentBG)
	apply(override.StatusFG, &out.StatusFG)
	apply(override.StatusBG, &out.StatusBG)
	apply(override.FocusBG, &out.FocusBG)
	apply(override.ErrorFG, &out.ErrorFG)
	return out
}

// DefaultThemeName returns the configured default theme, or "dark".
func (c ConfigFile) DefaultThemeName() string {
	if name := strings.TrimSpace(c.UI.Theme.Default); name != "" {
		return name
	}
	return "dark"
}

// ThemeNames returns the configured theme names in sorted order.
func (c ConfigFile) ThemeNames() []string {
	names := make([]string, 0, len(c.UI.Themes))
	for name := range c.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Theme builds the named theme on top of the fallback palette.
func (c ConfigFile) Theme(name string) (Theme, bool) {
	cfg, ok := c.UI.Themes[name]
	if !ok {
		return Theme{}, false
	}
	return FromConfig(name, cfg), true
}
