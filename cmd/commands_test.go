package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/pkg/settings"
)

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, cliRun{}, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jvx "), out)
	assert.Equal(t, cliVersionString()+"\n", out)

	out, _, err = runCLI(t, cliRun{}, "version", "-o", "json")
	require.NoError(t, err)
	var info settings.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)

	out, _, err = runCLI(t, cliRun{}, "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "platform: ")

	_, _, err = runCLI(t, cliRun{}, "version", "-o", "xml")
	assert.ErrorContains(t, err, `unsupported output "xml"`)
}

func TestVersionFlag(t *testing.T) {
	out, _, err := runCLI(t, cliRun{}, "--version")
	require.NoError(t, err)
	assert.Equal(t, cliVersionString()+"\n", out)
}

func TestThemesCommand(t *testing.T) {
	out, _, err := runCLI(t, cliRun{}, "themes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "Available themes (default: dark):", lines[0])
	assert.Contains(t, lines, " - dark")
	assert.Contains(t, lines, " - light")
}

func TestThemesCommandIncludesUserThemes(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "ui:\n  theme:\n    default: mine\n  themes:\n    mine:\n      key: 33\n")

	out, _, err := runCLI(t, cliRun{}, "themes", "--config-file", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Available themes (default: mine):")
	assert.Contains(t, out, " - mine\n")
}

func TestConfigCommands(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		out, _, err := runCLI(t, cliRun{}, "config", "get")
		require.NoError(t, err)
		var cfg theme.ConfigFile
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		assert.Equal(t, "dark", cfg.UI.Theme.Default)
		assert.Contains(t, cfg.UI.Themes, "light")
	})

	t.Run("get merges user file", func(t *testing.T) {
		cfgPath := writeFile(t, "config.yaml", "ui:\n  display:\n    indent: 3\n")
		out, _, err := runCLI(t, cliRun{}, "config", "get", "--config-file", cfgPath)
		require.NoError(t, err)
		var cfg theme.ConfigFile
		require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
		require.NotNil(t, cfg.UI.Display.Indent)
		assert.Equal(t, 3, *cfg.UI.Display.Indent)
		assert.Contains(t, cfg.UI.Themes, "dark")
	})

	t.Run("default", func(t *testing.T) {
		out, _, err := runCLI(t, cliRun{}, "config", "default")
		require.NoError(t, err)
		assert.Equal(t, string(theme.DefaultConfigYAML()), out)
	})

	t.Run("path without file", func(t *testing.T) {
		out, _, err := runCLI(t, cliRun{}, "config", "path")
		require.NoError(t, err)
		assert.Equal(t, "no config file found; using built-in defaults\n", out)
	})

	t.Run("bare group shows help", func(t *testing.T) {
		out, _, err := runCLI(t, cliRun{}, "config")
		require.NoError(t, err)
		assert.Contains(t, out, "Available Commands:")
	})
}

func TestFunctionsCommand(t *testing.T) {
	out, _, err := runCLI(t, cliRun{}, "functions", "size")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Contains(t, strings.ToLower(line), "size")
	}
}

func TestResolveConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml"))
	assert.Equal(t, "", resolveConfigPath(""), "missing file is ignored")

	dir := filepath.Join(xdg, "jvx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config.yaml"), 0o755))
	assert.Equal(t, "", resolveConfigPath(""), "directories are ignored")

	require.NoError(t, os.Remove(filepath.Join(dir, "config.yaml")))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ui: {}\n"), 0o600))
	assert.Equal(t, cfgPath, resolveConfigPath(""))
}

func TestLoadMergedConfigErrors(t *testing.T) {
	_, err := loadMergedConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "ui: [unclosed\n")
	_, err = loadMergedConfig(bad)
	assert.ErrorContains(t, err, "decode config")
}

func TestSelectTheme(t *testing.T) {
	cfg, err := loadMergedConfig("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		cli     string
		flagSet bool
		want    string
		wantErr bool
	}{
		{name: "default", want: "dark"},
		{name: "flag", cli: "light", flagSet: true, want: "light"},
		{name: "blank flag uses default", cli: " ", flagSet: true, want: "dark"},
		{name: "unknown flag", cli: "nope", flagSet: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := selectTheme(cfg, tt.cli, tt.flagSet)
			if tt.wantErr {
				var themeErr themeSelectionError
				require.ErrorAs(t, err, &themeErr)
				assert.Equal(t, cfg.ThemeNames(), themeErr.Available)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, th.Name)
		})
	}

	t.Run("configured default missing", func(t *testing.T) {
		broken := cfg
		broken.UI.Theme.Default = "gone"
		th, err := selectTheme(broken, "", false)
		require.NoError(t, err)
		assert.Equal(t, theme.Default().Name, th.Name)
	})
}

func TestPrintThemeSelectionError(t *testing.T) {
	var b strings.Builder
	printThemeSelectionError(&b, themeSelectionError{Selected: "x", Available: []string{"a", "b"}, DefaultTheme: "a"})
	assert.Equal(t, "unknown theme \"x\"\navailable themes: [a b]\ndefault theme: a\n", b.String())

	b.Reset()
	printThemeSelectionError(&b, os.ErrNotExist)
	assert.Equal(t, os.ErrNotExist.Error()+"\n", b.String())
}
