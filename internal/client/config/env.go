package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/beiwe-client/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvServerURL    = "BEIWE_SERVER_URL"
	EnvBuildChannel = "BEIWE_BUILD_CHANNEL"
	EnvDataDir      = "BEIWE_DATA_DIR"
)

// parseEnv overlays Config with BEIWE_* environment variables. A .env file
// named by -e/-env is loaded first and must exist; without the flag a .env in
// the working directory is loaded when present. godotenv never overrides
// variables that are already set.
//
// Panics when the named file cannot be read, like parseJson.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := os.LookupEnv(EnvServerURL); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvBuildChannel); ok {
		cfg.BuildChannel = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok {
		cfg.DataDir = v
	}
}
