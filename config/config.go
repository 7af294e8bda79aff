/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package config loads bumperd's process configuration, following the
// teacher's own yaml:"..." tag convention (github.com/ortuman/jackal loads
// its top-level Config the same way).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is bumperd's top-level configuration.
type Config struct {
	ListenAddress  string        `yaml:"listen_address"`
	ServerCert     string        `yaml:"server_cert"`
	ServerKey      string        `yaml:"server_key"`
	CACert         string        `yaml:"ca_cert"`
	UseAuth        bool          `yaml:"use_auth"`
	StorageDSN     string        `yaml:"storage_dsn"`
	MaxConnections int           `yaml:"max_connections"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Default returns the configuration bumperd starts from before a config
// file is layered on top.
func Default() *Config {
	return &Config{
		ListenAddress:  "0.0.0.0:5223",
		UseAuth:        true,
		StorageDSN:     "memory://",
		MaxConnections: 1024,
		ConnectTimeout: 30 * time.Second,
	}
}

// Load reads and parses a YAML configuration file at path, starting from
// Default() so unset fields keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
