package cli

import (
	"fmt"
	"strings"

	"github.com/dl-alexandre/rmirror/internal/config"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/spf13/cobra"
)

const redacted = "[REDACTED]"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Commands for managing rmirror configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current configuration settings, including environment overrides",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Keys: defaultRepository, defaultRef, apiBaseURL,
defaultProvider, driveAPIKey, requestTimeout, userAgent, defaultOutputFormat,
logLevel, colorOutput, recordHistory.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset configuration to defaults",
	Long:  "Reset all configuration settings to their default values",
	RunE:  runConfigReset,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configResetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := loadConfig()
	if err != nil {
		return out.WriteError("config.show", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	shown := *cfg
	if shown.DriveAPIKey != "" {
		shown.DriveAPIKey = redacted
	}
	return out.WriteSuccess("config.show", &shown)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	key := args[0]
	value := args[1]

	cfg, err := loadConfig()
	if err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	if err := cfg.Set(key, value); err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).
			WithContext("key", key).
			Build())
	}

	path, err := configFilePath()
	if err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}
	if err := cfg.SaveTo(path); err != nil {
		return out.WriteError("config.set", utils.NewCLIError(utils.ErrCodeFilesystemError,
			fmt.Sprintf("Failed to save configuration: %v", err)).Build())
	}

	if strings.EqualFold(key, "driveAPIKey") {
		value = redacted
	}
	out.Log("Configuration updated: %s = %s", key, value)
	return out.WriteSuccess("config.set", map[string]interface{}{
		"key":   key,
		"value": value,
	})
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	path, err := configFilePath()
	if err != nil {
		return out.WriteError("config.reset", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	cfg := config.DefaultConfig()
	if err := cfg.SaveTo(path); err != nil {
		return out.WriteError("config.reset", utils.NewCLIError(utils.ErrCodeFilesystemError,
			fmt.Sprintf("Failed to reset configuration: %v", err)).Build())
	}

	out.Log("Configuration reset to defaults")
	return out.WriteSuccess("config.reset", cfg)
}
