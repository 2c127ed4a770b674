package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperloopupv-h8/stools/internal/config"
)

// errSettingsExist is returned by config init when it would overwrite a file.
var errSettingsExist = errors.New("settings file already exists, use --force to overwrite it")

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage the settings file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSettings: ""},
	}

	cmd.AddCommand(newConfigInitCommand(a))

	return cmd
}

func newConfigInitCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Long: `Writes the built-in settings to the --config path, or to ` + config.DefaultConfigFilename + `.
A path ending in .toml is written as TOML, anything else as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s: %w", path, errSettingsExist)
				}
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")

	return cmd
}
