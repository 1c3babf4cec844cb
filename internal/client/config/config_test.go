package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "production", c.BuildChannel)
	assert.True(t, c.CustomizableServerURL)
	assert.Equal(t, 3*time.Second, c.ConnectTimeout)
	assert.Equal(t, 5*time.Second, c.ReadTimeout)
	assert.Equal(t, time.Hour, c.UploadCeiling)
	assert.Equal(t, "info", c.LogLevel)
	assert.NotEmpty(t, c.DataDir)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, Version, cfg.AppVersion)
}

func TestConfig_Derived(t *testing.T) {
	c := Config{BuildChannel: "staging", AppVersion: "3.1.3", DataDir: "/data", DBPath: "beiwe.db"}

	assert.Equal(t, urls.ChannelStaging, c.Channel())
	assert.Equal(t, "staging-3.1.3", c.VersionString())
	assert.Equal(t, filepath.Join("/data", "beiwe.db"), c.DatabaseFile())
	assert.Equal(t, filepath.Join("/data", "uploads"), c.UploadDir())

	c.BuildChannel = "nightly"
	assert.Equal(t, urls.ChannelProduction, c.Channel(), "unknown channels fall back to production")

	c.DBPath = ":memory:"
	assert.Equal(t, ":memory:", c.DatabaseFile())
	c.DBPath = "/abs/x.db"
	assert.Equal(t, "/abs/x.db", c.DatabaseFile())
}
