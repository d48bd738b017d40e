package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure recommender settings.

Settings resolve in order: command-line flags, INTERNREC_* environment
variables, the config file, then built-in defaults.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: setupSettings,
	RunE:              runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting in the config file",
	Long: `Persist a setting to the config file. An empty value removes the key.

Keys:
  recommender.bundle_path   bundle file
  recommender.neighbors     number of listings to return
  recommender.fallback_csv  listings CSV used when the bundle cannot be loaded
  output.format             json or table`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries, err := settingsService.Explain()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Settings")
	fmt.Fprintln(out, "================")
	fmt.Fprintln(out)

	section := ""
	for _, e := range entries {
		name, field, _ := strings.Cut(e.Key, ".")
		if name != section {
			if section != "" {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "[%s]\n", name)
			section = name
		}
		value := e.Value
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(out, "  %s: %s  (%s, env %s)\n", field, value, e.Source, e.EnvVar)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Config file: %s\n", settingsService.ConfigPath())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", key)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	}
	return nil
}
