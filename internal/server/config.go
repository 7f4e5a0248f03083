package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server Settings `hcl:"server,block"`
}

// Settings contains server-level configuration
type Settings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	DefaultCash int    `hcl:"default_cash,optional"`
	TickMs      int    `hcl:"tick_ms,optional"`
	LogLevel    string `hcl:"log_level,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:     "localhost",
			Port:        9050,
			DefaultCash: 1000,
			TickMs:      15,
			LogLevel:    "info",
		},
	}
}

// LoadConfig loads server configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 9050
	}
	if config.Server.DefaultCash == 0 {
		config.Server.DefaultCash = 1000
	}
	if config.Server.TickMs == 0 {
		config.Server.TickMs = 15
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.DefaultCash <= 0 {
		return fmt.Errorf("default cash must be positive, got %d", c.Server.DefaultCash)
	}
	if c.Server.TickMs <= 0 {
		return fmt.Errorf("tick interval must be positive, got %dms", c.Server.TickMs)
	}
	return nil
}

// ListenAddr returns the full listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TickInterval returns the game loop tick interval
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Server.TickMs) * time.Millisecond
}
