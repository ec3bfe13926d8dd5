package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clouddrive/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Arguments
// belonging to other components are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-o", "-l"})

	fs := flag.NewFlagSet("clouddrive", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the remote service")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local client database")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "directory downloads are saved into")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
