// Package config loads the process configuration from a YAML file
// (gopkg.in/yaml.v3 unmarshal).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"styleprint/internal/models"
)

// Config holds every process-wide option the server reads at startup.
type Config struct {
	ServerPort     int    `yaml:"server_port"`
	StaticLocation string `yaml:"static_location"`
	WithAnalyzer   bool   `yaml:"with_analyzer"`

	TwitterConsumerKey    string `yaml:"twitter_consumer_key"`
	TwitterConsumerSecret string `yaml:"twitter_consumer_secret"`
	TwitterAccessToken    string `yaml:"twitter_access_token"`
	TwitterAccessSecret   string `yaml:"twitter_access_secret"`

	MongoEndpoint string `yaml:"mongo_endpoint"`

	SignatureLength      int `yaml:"signature_length"`
	MinShingleSize       int `yaml:"min_shingle_size"`
	MaxShingleSize       int `yaml:"max_shingle_size"`
	NumShinglesEvaluated int `yaml:"num_shingles_evaluated"`

	TwitterHandles []string `yaml:"twitter_handles"`
}

// Load reads and parses the YAML config file at path. A missing or
// unreadable file, or one that fails to parse, is an unrecoverable
// startup error: the caller is expected to log.Fatalf on it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// HandleConfig projects the shingle/signature-related fields into the
// plain struct the Analyzer and MinHash engine consume.
func (c *Config) HandleConfig() models.HandleConfig {
	return models.HandleConfig{
		L:    c.SignatureLength,
		SMin: c.MinShingleSize,
		SMax: c.MaxShingleSize,
		K:    c.NumShinglesEvaluated,
		Seed: models.DefaultSeed,
	}
}
