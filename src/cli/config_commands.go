package cli

import (
	"fmt"
	"os"

	"typegate/src/config"
	"typegate/src/internal/common"
)

// InitConfig writes the default configuration file
func InitConfig(configFile string, overwrite bool) error {
	path := configFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.GenerateDefaultConfig(path); err != nil {
		return err
	}

	common.CLILogger.Info("wrote default configuration to %s", path)
	return nil
}
