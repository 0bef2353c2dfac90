// Package config loads analyzer configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete analyzer configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Feed     FeedConfig     `yaml:"feed"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Recorder RecorderConfig `yaml:"recorder"`
	Export   ExportConfig   `yaml:"export"`
	Anomaly  AnomalyConfig  `yaml:"anomaly"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig names the log file for single-pass runs.
type InputConfig struct {
	Path string `yaml:"path"`
}

// FeedConfig contains live telnet feed settings.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Name    string `yaml:"name"`
}

// MQTTConfig contains MQTT line-source settings.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Port    int    `yaml:"port"`
	Topic   string `yaml:"topic"`
}

// DedupConfig contains duplicate-suppression settings. Suppression is off by
// default because healthy classification counts repeated reports.
type DedupConfig struct {
	Enabled       bool `yaml:"enabled"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// RecorderConfig contains SQLite record-sampling settings.
type RecorderConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	PerStateLimit int    `yaml:"per_state_limit"`
}

// ExportConfig names the JSON summary file; empty disables export.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// AnomalyConfig controls the sensor-id anomaly scan.
type AnomalyConfig struct {
	Enabled  bool `yaml:"enabled"`
	MinRatio int  `yaml:"min_ratio"`
}

// UIConfig selects the console surface for follow mode.
type UIConfig struct {
	Mode string `yaml:"mode"` // "headless" or "tview"
}

// LoggingConfig contains file-logging settings.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load loads configuration from a YAML file, applies defaults, and validates.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Dedup.WindowSeconds == 0 {
		c.Dedup.WindowSeconds = 60
	}
	if c.Recorder.PerStateLimit == 0 {
		c.Recorder.PerStateLimit = 1000
	}
	if c.Anomaly.MinRatio == 0 {
		c.Anomaly.MinRatio = 10
	}
	if c.UI.Mode == "" {
		c.UI.Mode = "headless"
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 7
	}
	if c.Feed.Name == "" {
		c.Feed.Name = "Feed"
	}
}

func (c *Config) validate() error {
	if c.Dedup.WindowSeconds < 0 {
		return fmt.Errorf("dedup.window_seconds must not be negative, got %d", c.Dedup.WindowSeconds)
	}
	if c.Recorder.PerStateLimit < 0 {
		return fmt.Errorf("recorder.per_state_limit must not be negative, got %d", c.Recorder.PerStateLimit)
	}
	if c.Anomaly.MinRatio < 0 {
		return fmt.Errorf("anomaly.min_ratio must not be negative, got %d", c.Anomaly.MinRatio)
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must not be negative, got %d", c.Logging.RetentionDays)
	}
	if c.Feed.Enabled && (c.Feed.Host == "" || c.Feed.Port <= 0) {
		return fmt.Errorf("feed requires host and port when enabled")
	}
	if c.MQTT.Enabled && (c.MQTT.Broker == "" || c.MQTT.Port <= 0 || c.MQTT.Topic == "") {
		return fmt.Errorf("mqtt requires broker, port, and topic when enabled")
	}
	if c.Recorder.Enabled && c.Recorder.Path == "" {
		return fmt.Errorf("recorder requires a path when enabled")
	}
	return nil
}

// FollowMode reports whether any live source is enabled.
func (c *Config) FollowMode() bool {
	return c.Feed.Enabled || c.MQTT.Enabled
}

// Print displays the configuration.
func (c *Config) Print() {
	if c.Input.Path != "" {
		fmt.Printf("Input: %s\n", c.Input.Path)
	}
	if c.Feed.Enabled {
		fmt.Printf("Feed: %s:%d (%s)\n", c.Feed.Host, c.Feed.Port, c.Feed.Name)
	}
	if c.MQTT.Enabled {
		fmt.Printf("MQTT: %s:%d (topic: %s)\n", c.MQTT.Broker, c.MQTT.Port, c.MQTT.Topic)
	}
	if c.Dedup.Enabled {
		fmt.Printf("Dedup: window=%ds\n", c.Dedup.WindowSeconds)
	}
	if c.Recorder.Enabled {
		fmt.Printf("Recorder: %s (limit %d per state)\n", c.Recorder.Path, c.Recorder.PerStateLimit)
	}
	if c.Export.Path != "" {
		fmt.Printf("Export: %s\n", c.Export.Path)
	}
}
