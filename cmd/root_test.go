package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jvx/internal/ui"
	"github.com/oakwood-commons/jvx/pkg/settings"
	"github.com/oakwood-commons/jvx/pkg/value"
)

const sampleJSON = `{"name": "jvx", "items": [1, 2, 3], "meta": {"ok": true}}`

// sampleText is sampleJSON fully expanded. Rows:
// 0 root, 1 .name, 2 .items, 3-5 .items[i], 6 .meta, 7 .meta.ok.
const sampleText = `{
  "name": "jvx",
  "items": [
    1,
    2,
    3  ],
  "meta": {
    "ok": true  }  }
`

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cliRun struct {
	stdin string
	piped bool
}

func runCLI(t *testing.T, in cliRun, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "")
	_ = os.Unsetenv("NO_COLOR")

	origPiped, origTerminal, origViewer := stdinIsPiped, stdoutIsTerminal, runViewer
	t.Cleanup(func() {
		stdinIsPiped, stdoutIsTerminal, runViewer = origPiped, origTerminal, origViewer
	})
	stdinIsPiped = func() bool { return in.piped }
	stdoutIsTerminal = func() bool { return false }

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(in.stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLIRendersFile(t *testing.T) {
	path := writeFile(t, "sample.json", sampleJSON)

	out, _, err := runCLI(t, cliRun{}, path)
	require.NoError(t, err)
	assert.Equal(t, sampleText, out)
}

func TestCLIRenderFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "expand depth",
			args: []string{"--expand-depth", "1"},
			want: "{\n  \"name\": \"jvx\",\n  \"items\": […],\n  \"meta\": {…}  }\n",
		},
		{
			name: "expand depth plus path",
			args: []string{"--expand-depth", "1", "--expand", "meta"},
			want: "{\n  \"name\": \"jvx\",\n  \"items\": […],\n  \"meta\": {\n    \"ok\": true  }  }\n",
		},
		{
			name: "hide",
			args: []string{"--hide", ".items"},
			want: "{\n  \"name\": \"jvx\",\n‾‾\"meta\": {\n    \"ok\": true  }  }\n",
		},
		{
			name: "indent",
			args: []string{"--indent", "4", "--expand-depth", "1"},
			want: "{\n    \"name\": \"jvx\",\n    \"items\": […],\n    \"meta\": {…}    }\n",
		},
		{
			name: "expression",
			args: []string{"-e", "_.items"},
			want: "[\n  1,\n  2,\n  3  ]\n",
		},
		{
			name: "expression scalar",
			args: []string{"-e", "size(_.items)"},
			want: "3\n",
		},
		{
			name: "limit records",
			args: []string{"-e", "_.items", "--offset", "1", "--limit", "1"},
			want: "[\n  2  ]\n",
		},
		{
			name: "tail records",
			args: []string{"--tail", "1"},
			want: "{\n  \"meta\": {\n    \"ok\": true  }  }\n",
		},
		{
			name: "window around focus",
			args: []string{"--height", "3", "--focus", ".meta.ok"},
			want: "    3  ],\n  \"meta\": {\n    \"ok\": true  }  }\n",
		},
		{
			name: "window around first match",
			args: []string{"--height", "2", "--highlight", "^3$"},
			want: "    2,\n    3  ],\n",
		},
		{
			name: "window around current match",
			args: []string{"--height", "1", "--highlight", "^[12]$", "--current", "items[1]"},
			want: "    2,\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, cliRun{stdin: sampleJSON, piped: true}, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCLIReadsYAMLFromStdin(t *testing.T) {
	out, _, err := runCLI(t, cliRun{stdin: "b: 1\na: [x]\n", piped: true})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    \"x\"  ]  }\n", out)
}

func TestCLIDecode(t *testing.T) {
	in := cliRun{stdin: `{"payload": "{\"a\": 1}"}`, piped: true}

	out, _, err := runCLI(t, in)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"payload\": \"{\\\"a\\\": 1}\"  }\n", out)

	out, _, err = runCLI(t, in, "--decode")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"payload\": {\n    \"a\": 1  }  }\n", out)
}

func TestCLIColor(t *testing.T) {
	in := cliRun{stdin: sampleJSON, piped: true}

	colored, _, err := runCLI(t, in, "--color", "always", "--highlight", "jvx")
	require.NoError(t, err)
	assert.Contains(t, colored, "\x1b[")
	assert.Equal(t, sampleText, ansi.Strip(colored))

	plain, _, err := runCLI(t, in, "--color", "always", "--no-color")
	require.NoError(t, err)
	assert.NotContains(t, plain, "\x1b[")
}

func TestColorEnabled(t *testing.T) {
	origTerminal := stdoutIsTerminal
	origMode := colorMode
	t.Cleanup(func() {
		stdoutIsTerminal = origTerminal
		colorMode = origMode
	})

	tests := []struct {
		name     string
		mode     string
		disabled bool
		viewer   bool
		terminal bool
		noColor  bool
		want     bool
	}{
		{name: "auto terminal", mode: "auto", terminal: true, want: true},
		{name: "auto pipe", mode: "auto", want: false},
		{name: "auto viewer", mode: "auto", viewer: true, want: true},
		{name: "auto NO_COLOR", mode: "auto", terminal: true, noColor: true, want: false},
		{name: "always pipe", mode: "always", want: true},
		{name: "never terminal", mode: "never", terminal: true, want: false},
		{name: "no-color wins", mode: "always", disabled: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colorMode = tt.mode
			stdoutIsTerminal = func() bool { return tt.terminal }
			if tt.noColor {
				t.Setenv("NO_COLOR", "1")
			} else {
				t.Setenv("NO_COLOR", "")
				_ = os.Unsetenv("NO_COLOR")
			}
			assert.Equal(t, tt.want, colorEnabled(tt.disabled, tt.viewer))
		})
	}
}

func TestCLIPrintIndexJSON(t *testing.T) {
	out, _, err := runCLI(t, cliRun{stdin: sampleJSON, piped: true},
		"--print-index", "json", "--highlight", "^2$", "--focus", ".items[1]")
	require.NoError(t, err)

	var doc indexDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, strings.TrimSuffix(sampleText, "\n"), doc.Text)
	assert.Equal(t, 4, doc.Paths[".items[1]"])
	assert.Equal(t, "", doc.Rows[0])
	assert.Equal(t, ".meta.ok", doc.Rows[7])
	assert.Equal(t, []string{".items[1]"}, doc.Matches)
	assert.Equal(t, 25, doc.Priorities[".items[1]"], "focus peak plus highlight")
	assert.Equal(t, 25, doc.Priorities[".items"], "ancestors take the maximum")
}

func TestCLIPrintIndexYAML(t *testing.T) {
	out, _, err := runCLI(t, cliRun{stdin: `[1, {"a": null}]`, piped: true}, "--print-index", "yaml")
	require.NoError(t, err)

	var doc indexDocument
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[int]string{0: "", 1: "[0]", 2: "[1]", 3: "[1].a"}, doc.Rows)
	assert.Equal(t, map[string]int{"": 0, "[0]": 1, "[1]": 2, "[1].a": 3}, doc.Paths)
	assert.Empty(t, doc.Matches)
}

func TestCLINoInputShowsHelp(t *testing.T) {
	out, _, err := runCLI(t, cliRun{})
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "jvx [file]")
	assert.Contains(t, out, "Examples:")
}

func TestCLINoInputWithExpressionUsesEmptyObject(t *testing.T) {
	out, _, err := runCLI(t, cliRun{}, "-e", "size(_)")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)

	out, _, err = runCLI(t, cliRun{piped: true}, "-e", "_")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}

func TestCLIErrors(t *testing.T) {
	tests := []struct {
		name string
		in   cliRun
		args []string
		want string
	}{
		{"missing file", cliRun{}, []string{"does-not-exist.json"}, "load does-not-exist.json"},
		{"empty stdin", cliRun{stdin: " \n", piped: true}, nil, "empty input"},
		{"bad color", cliRun{}, []string{"--color", "sometimes"}, `invalid --color "sometimes"`},
		{"bad index format", cliRun{}, []string{"--print-index", "xml"}, `unsupported index format "xml"`},
		{"index in viewer", cliRun{}, []string{"--print-index", "json", "-i"}, "cannot be combined"},
		{"zero indent", cliRun{stdin: "1", piped: true}, []string{"--indent", "0"}, "indent must be at least 1"},
		{"bad highlight", cliRun{stdin: "1", piped: true}, []string{"--highlight", "("}, "invalid highlight pattern"},
		{"bad expression", cliRun{stdin: "1", piped: true}, []string{"-e", "_.("}, "compilation error"},
		{"limit and tail", cliRun{stdin: "[1]", piped: true}, []string{"--limit", "1", "--tail", "1"}, "mutually exclusive"},
		{"too many args", cliRun{}, []string{"a", "b"}, "accepts at most 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, tt.in, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestCLIUnknownTheme(t *testing.T) {
	_, stderr, err := runCLI(t, cliRun{stdin: "1", piped: true}, "--theme", "nope")
	require.Error(t, err)

	var themeErr themeSelectionError
	require.ErrorAs(t, err, &themeErr)
	assert.Equal(t, "nope", themeErr.Selected)
	assert.Contains(t, stderr, `unknown theme "nope"`)
	assert.Contains(t, stderr, "default theme: dark")
}

func TestCLIConfigFile(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "ui:\n  display:\n    indent: 4\n    expand_depth: 1\n")
	in := cliRun{stdin: sampleJSON, piped: true}

	out, _, err := runCLI(t, in, "--config-file", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"name\": \"jvx\",\n    \"items\": […],\n    \"meta\": {…}    }\n", out)

	out, _, err = runCLI(t, in, "--config-file", cfgPath, "--indent", "2", "--expand-depth", "-1")
	require.NoError(t, err)
	assert.Equal(t, sampleText, out, "flags override the config file")
}

func TestCLIInteractive(t *testing.T) {
	var got ui.Config
	var gotRoot value.Value
	stub := func(root value.Value, cfg ui.Config, _ ...tea.ProgramOption) (string, error) {
		gotRoot, got = root, cfg
		return ".items[1]", nil
	}

	origTermGetSize := termGetSize
	t.Cleanup(func() { termGetSize = origTermGetSize })
	termGetSize = func(int) (int, int, error) { return 90, 30, nil }

	path := writeFile(t, "sample.json", sampleJSON)
	out, _, err := runCLIWithViewer(t, stub, path, "-i", "-e", "_.items", "--hide", "[0]", "--highlight", "2", "--focus", "[2]", "--expand-depth", "3")
	require.NoError(t, err)

	assert.Equal(t, ".items[1]\n", out)
	assert.Equal(t, value.KindArray, gotRoot.Kind())
	assert.Equal(t, 3, gotRoot.Len())
	assert.Equal(t, []string{"[0]"}, got.Hidden)
	assert.Equal(t, "[2]", got.Focus)
	require.NotNil(t, got.Highlight)
	assert.Equal(t, "2", got.Highlight.String())
	assert.Equal(t, 3, got.ExpandDepth)
	assert.Equal(t, "  ", got.Indent)
	assert.Equal(t, 90, got.Width)
	assert.Equal(t, 30, got.Height)
	assert.False(t, got.NoColor)
	assert.Equal(t, "dark", got.Theme.Name)
}

func TestCLIInteractiveHeightOverridesTerminal(t *testing.T) {
	var got ui.Config
	stub := func(_ value.Value, cfg ui.Config, _ ...tea.ProgramOption) (string, error) {
		got = cfg
		return "", nil
	}
	origTermGetSize := termGetSize
	t.Cleanup(func() { termGetSize = origTermGetSize })
	termGetSize = func(int) (int, int, error) { return 90, 30, nil }

	out, _, err := runCLIWithViewer(t, stub, writeFile(t, "s.json", sampleJSON), "-i", "--height", "12", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, ".\n", out)
	assert.Equal(t, 12, got.Height)
	assert.True(t, got.NoColor)
}

func runCLIWithViewer(t *testing.T, viewer func(value.Value, ui.Config, ...tea.ProgramOption) (string, error), args ...string) (string, string, error) {
	t.Helper()
	origViewer := runViewer
	t.Cleanup(func() { runViewer = origViewer })
	runViewer = viewer
	resetFlags(rootCmd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "")
	_ = os.Unsetenv("NO_COLOR")

	origPiped, origTerminal := stdinIsPiped, stdoutIsTerminal
	t.Cleanup(func() { stdinIsPiped, stdoutIsTerminal = origPiped, origTerminal })
	stdinIsPiped = func() bool { return false }
	stdoutIsTerminal = func() bool { return false }

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoadInput(t *testing.T) {
	origPiped := stdinIsPiped
	t.Cleanup(func() { stdinIsPiped = origPiped })

	t.Run("stdin not piped without expression", func(t *testing.T) {
		stdinIsPiped = func() bool { return false }
		_, err := loadInput(strings.NewReader(""), settings.NewCliParams(), false)
		assert.ErrorIs(t, err, errShowHelp)
	})

	t.Run("file by extension", func(t *testing.T) {
		path := writeFile(t, "doc.toml", "title = \"x\"\n")
		v, err := loadInput(nil, &settings.Run{InputPath: path}, false)
		require.NoError(t, err)
		title, ok := v.Get("title")
		require.True(t, ok)
		assert.Equal(t, "x", title.Text())
	})
}
