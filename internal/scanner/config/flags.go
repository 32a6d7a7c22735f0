package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/scansync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    base URL of the nutrition backend (default from Config)
//	-u string    user id for committed diary entries
//	-d string    data directory for the embedded database
//	-i int       online check interval in seconds (default from Config)
//	-offline     force offline mode
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-d", "-i", "-offline"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServiceBaseURL, "a", cfg.ServiceBaseURL, "base URL of the nutrition backend")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id for diary entries")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.BoolVar(&cfg.ForceOffline, "offline", cfg.ForceOffline, "force offline mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
