package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/clouddrive/internal/flagx"
)

type jsonConfig struct {
	ListenAddr                  string `json:"listen_addr"`
	SecretKey                   string `json:"secret_key"`
	AccessTokenValidityDuration string `json:"access_token_validity"`
	LogLevel                    string `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config. Durations are
// Go duration strings such as "30m".
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ListenAddr != "" {
		cfg.ListenAddr = jc.ListenAddr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.AccessTokenValidityDuration != "" {
		d, err := time.ParseDuration(jc.AccessTokenValidityDuration)
		if err != nil {
			return fmt.Errorf("parse access_token_validity: %w", err)
		}
		cfg.AccessTokenValidityDuration = d
	}
	return nil
}
