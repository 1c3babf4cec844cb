package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
)

// Version is the client release reported to the server as
// "<channel>-<version>".
const Version = "3.1.3"

// Config holds runtime settings for the device client.
//
// ServerURL is only an initial value: once a registration stores its own
// URL, the stored one is used. CustomizableServerURL decides whether the
// user may enter a URL at registration at all; when false the channel's
// built-in URL is always used.
type Config struct {
	ServerURL             string
	BuildChannel          string
	CustomizableServerURL bool
	DataDir               string
	DBPath                string
	ConnectTimeout        time.Duration
	ReadTimeout           time.Duration
	UploadCeiling         time.Duration
	UploadInterval        time.Duration
	LogLevel              string
	AppVersion            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = ""
	c.BuildChannel = string(urls.ChannelProduction)
	c.CustomizableServerURL = true
	c.DataDir = defaultDataDir()
	c.DBPath = "beiwe.db"
	c.ConnectTimeout = 3 * time.Second
	c.ReadTimeout = 5 * time.Second
	c.UploadCeiling = time.Hour
	c.UploadInterval = 10 * time.Minute
	c.LogLevel = "info"
	c.AppVersion = Version
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Channel returns the parsed build channel, falling back to production.
func (c *Config) Channel() urls.Channel {
	ch, err := urls.ParseChannel(c.BuildChannel)
	if err != nil {
		return urls.ChannelProduction
	}
	return ch
}

// VersionString is the beiwe_version value sent at registration.
func (c *Config) VersionString() string {
	return string(c.Channel()) + "-" + c.AppVersion
}

// DatabaseFile resolves DBPath against DataDir unless it is absolute or the
// in-memory DSN.
func (c *Config) DatabaseFile() string {
	if c.DBPath == ":memory:" || filepath.IsAbs(c.DBPath) {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, c.DBPath)
}

// UploadDir is where files waiting for upload are kept.
func (c *Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".beiwe"
	}
	return filepath.Join(dir, "beiwe")
}
