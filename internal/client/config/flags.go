package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs first so the -c and -e flags consumed by
// the earlier stages do not trip this flag set.
//
// Timeouts are given in seconds, the upload ceiling in minutes.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-b", "-d", "-t", "-r", "-l", "-i", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "u", cfg.ServerURL, "study server URL")
	fs.StringVar(&cfg.BuildChannel, "b", cfg.BuildChannel, "build channel (production or staging)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	connectTimeout := fs.Int("t", int(cfg.ConnectTimeout.Seconds()), "connect timeout (in seconds)")
	readTimeout := fs.Int("r", int(cfg.ReadTimeout.Seconds()), "read timeout (in seconds)")
	uploadCeiling := fs.Int("l", int(cfg.UploadCeiling.Minutes()), "upload batch ceiling (in minutes)")
	uploadInterval := fs.Int("i", int(cfg.UploadInterval.Seconds()), "background upload interval (in seconds, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ConnectTimeout = time.Duration(*connectTimeout) * time.Second
	cfg.ReadTimeout = time.Duration(*readTimeout) * time.Second
	cfg.UploadCeiling = time.Duration(*uploadCeiling) * time.Minute
	cfg.UploadInterval = time.Duration(*uploadInterval) * time.Second
}
