package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/flagx"
)

func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("stubserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "listen address")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
	return nil
}
