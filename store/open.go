package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/canopy-network/canopy-forestry/lib"
)

// Open() is the bootstrap path a standalone binary takes: resolve the data directory, write a
// default config.json on first run, load it back, build the logger at the configured level, and
// open the backing database with the result.
func Open(dataDirPath string) (*Store, lib.ErrorI) {
	config, err := loadOrInitConfig(dataDirPath)
	if err != nil {
		return nil, err
	}
	log := lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	return New(config.StoreConfig, log)
}

// loadOrInitConfig reads config.json under dataDirPath, creating it with defaults when absent.
// The passed data directory always wins over whatever path the file itself carries, so a
// relocated data directory keeps working without hand-editing its config.
func loadOrInitConfig(dataDirPath string) (lib.Config, lib.ErrorI) {
	if dataDirPath == "" {
		dataDirPath = lib.DefaultDataDirPath()
	}
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		return lib.Config{}, lib.ErrWriteFile(err)
	}
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		defaults := lib.DefaultConfig()
		defaults.DataDirPath = dataDirPath
		if err = defaults.WriteToFile(configFilePath); err != nil {
			return lib.Config{}, lib.ErrWriteFile(err)
		}
	}
	config, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		return lib.Config{}, lib.ErrReadFile(err)
	}
	config.DataDirPath = dataDirPath
	return config, nil
}
