package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/jvx/internal/cel"
	"github.com/oakwood-commons/jvx/internal/theme"
	"github.com/oakwood-commons/jvx/pkg/settings"
)

var versionOutput string

// cliVersionString builds the human-readable version line used by the
// version command and Cobra's --version flag.
func cliVersionString() string {
	v := settings.VersionInformation.Resolve()
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, v.GoVersion, v.Platform)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print jvx version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		v := settings.VersionInformation.Resolve()
		switch versionOutput {
		case "", "text":
			fmt.Fprintln(out, cliVersionString())
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		case "yaml":
			return yaml.NewEncoder(out).Encode(v)
		default:
			return fmt.Errorf("unsupported output %q (use text, json or yaml)", versionOutput)
		}
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runThemesList(cmd.OutOrStdout())
	},
}

// runThemesList prints the themes of the merged configuration.
func runThemesList(w io.Writer) error {
	merged, err := loadMergedConfig(resolveConfigPath(configFile))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Available themes (default: %s):\n", merged.DefaultThemeName())
	for _, name := range merged.ThemeNames() {
		fmt.Fprintf(w, " - %s\n", name)
	}
	return nil
}

// configCmd groups configuration-related subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage jvx configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		merged, err := loadMergedConfig(resolveConfigPath(configFile))
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(merged); err != nil {
			return err
		}
		return enc.Close()
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in configuration, a starting point for a config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(theme.DefaultConfigYAML())
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := resolveConfigPath(configFile)
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no config file found; using built-in defaults")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var functionsCmd = &cobra.Command{
	Use:   "functions [filter]",
	Short: "List the functions available in -e expressions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		filter := ""
		if len(args) == 1 {
			filter = strings.ToLower(args[0])
		}
		for _, fn := range eval.Functions() {
			if filter != "" && !strings.Contains(strings.ToLower(fn), filter) {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), fn)
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "text", "output format: text, json or yaml")
	configCmd.AddCommand(configGetCmd, configDefaultCmd, configPathCmd)
}
