package config

import "os"

// Config holds runtime settings for the cloud drive CLI.
type Config struct {
	ServerBaseURL string
	DatabasePath  string
	DownloadDir   string
	LogLevel      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000"
	c.DatabasePath = "clouddrive.db"
	c.DownloadDir = "download"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the JSON file, then flags,
// reading the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list (without the program name).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
