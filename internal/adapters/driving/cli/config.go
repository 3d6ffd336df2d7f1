package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Show and change the settings in config.toml.

Keys:
  secrets_dir        directory holding the encrypted files
  auth.timeout       how long to wait for browser consent (e.g. 5m, 0 = no limit)
  auth.open_browser  open the consent page automatically (true/false)
  log.verbose        verbose logging (true/false)
  log.file           append JSON-lines logs to this file

Examples:
  redoffice config
  redoffice config get auth.timeout
  redoffice config set auth.open_browser false`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configKeys lists the settable keys in display order.
var configKeys = []string{
	file.KeySecretsDir,
	file.KeyAuthTimeout,
	file.KeyAuthOpenBrowser,
	file.KeyLogVerbose,
	file.KeyLogFile,
}

// configEntry is one setting. Value is omitted when the key is unset.
type configEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value,omitempty"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	entries := make([]configEntry, 0, len(configKeys))
	for _, key := range configKeys {
		val, _ := config.Get(key)
		entries = append(entries, configEntry{Key: key, Value: val})
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{
		"path":     config.Path(),
		"settings": entries,
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !knownConfigKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	config, err := loadConfig()
	if err != nil {
		return err
	}
	val, _ := config.Get(key)
	return writeJSON(cmd.OutOrStdout(), configEntry{Key: key, Value: val})
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	val, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}
	config, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.Set(key, val); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), configEntry{Key: key, Value: val})
}

func knownConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// parseConfigValue converts raw into the type the key is read as.
func parseConfigValue(key, raw string) (any, error) {
	switch key {
	case file.KeySecretsDir, file.KeyLogFile:
		return raw, nil
	case file.KeyAuthOpenBrowser, file.KeyLogVerbose:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case file.KeyAuthTimeout:
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs >= 0 {
			return (time.Duration(secs) * time.Second).String(), nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: %s must be a duration such as 5m", domain.ErrInvalidInput, key)
		}
		return d.String(), nil
	default:
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}
