package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/clouddrive/internal/flagx"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling.
type jsonConfig struct {
	ServerBaseURL string `json:"server_base_url"`
	DatabasePath  string `json:"database_path"`
	DownloadDir   string `json:"download_dir"`
	LogLevel      string `json:"log_level"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
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

	overlay(&cfg.ServerBaseURL, jc.ServerBaseURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.DownloadDir, jc.DownloadDir)
	overlay(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
