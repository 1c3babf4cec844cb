package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/flagx"
	"github.com/dmitrijs2005/beiwe-client/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" from the zero value so a partial file only touches
// what it names.
type JsonConfig struct {
	ServerURL             *string         `json:"server_url"`
	BuildChannel          *string         `json:"build_channel"`
	CustomizableServerURL *bool           `json:"customizable_server_url"`
	DataDir               *string         `json:"data_dir"`
	DBPath                *string         `json:"db_path"`
	ConnectTimeout        *timex.Duration `json:"connect_timeout"`
	ReadTimeout           *timex.Duration `json:"read_timeout"`
	UploadCeiling         *timex.Duration `json:"upload_ceiling"`
	UploadInterval        *timex.Duration `json:"upload_interval"`
	LogLevel              *string         `json:"log_level"`
	AppVersion            *string         `json:"app_version"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. Without the flag nothing is loaded. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.BuildChannel, jc.BuildChannel)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.AppVersion, jc.AppVersion)
	if jc.CustomizableServerURL != nil {
		cfg.CustomizableServerURL = *jc.CustomizableServerURL
	}
	for dst, src := range map[*time.Duration]*timex.Duration{
		&cfg.ConnectTimeout: jc.ConnectTimeout,
		&cfg.ReadTimeout:    jc.ReadTimeout,
		&cfg.UploadCeiling:  jc.UploadCeiling,
		&cfg.UploadInterval: jc.UploadInterval,
	} {
		if src != nil {
			*dst = src.Duration
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
