package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/meigma/artisign/cmd/artisign/cli/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage artisign configuration",
	Long: `View and modify artisign configuration.

Without arguments, displays the current effective configuration.
Use subcommands to view the config path, initialize a config file,
or set configuration values.`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configPath returns the file written by config subcommands: the --config
// file when given, the XDG path otherwise.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.Path()
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long: `Create a default configuration file at the XDG config path.

The file will be created at ~/.config/artisign/config.yaml (or
$XDG_CONFIG_HOME/artisign/config.yaml if set).`,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750); mkdirErr != nil {
		return mkdirErr
	}

	data, err := yaml.Marshal(config.Defaults())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return writeErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Only the file is updated; values from flags and environment variables
are not written.

Examples:
  artisign config set signing.url https://signer.example.com/sign
  artisign config set reuse.fail-on-inconsistency true
  artisign config set suffixes jar,sources:jar`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	var parsedValue any
	switch value {
	case "true":
		parsedValue = true
	case "false":
		parsedValue = false
	default:
		parsedValue = value
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750); mkdirErr != nil {
		return mkdirErr
	}

	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("yaml")
	if _, statErr := os.Stat(path); statErr == nil {
		if readErr := file.ReadInConfig(); readErr != nil {
			return fmt.Errorf("read config: %w", readErr)
		}
	}
	file.Set(key, parsedValue)
	if writeErr := file.WriteConfigAs(path); writeErr != nil {
		return fmt.Errorf("write config: %w", writeErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s = %v\n", key, parsedValue)
	return nil
}

// secretSigningKeys are masked by "config" output.
var secretSigningKeys = []string{"token", "password"}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings := viper.AllSettings()
	if signing, ok := settings["signing"].(map[string]any); ok {
		for _, key := range secretSigningKeys {
			if v, set := signing[key]; set && v != "" {
				signing[key] = "********"
			}
		}
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
