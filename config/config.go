// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the command line tool's settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/shamir"
	"github.com/codeandplay/passphrase-backup/recovery"
	glog "github.com/golang/glog"
	"sigs.k8s.io/yaml"
)

// DefaultName is the file name looked up in the user configuration directory.
const DefaultName = "sss.yaml"

// ErrInvalid is returned for a configuration that does not describe a usable scheme.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the defaults for the backup and restore commands.
type Config struct {
	// Shares is the number of shares created by backup.
	Shares int `json:"shares"`

	// Threshold is the number of shares needed to restore.
	Threshold int `json:"threshold"`

	// VerifyChecksum enables checksum verification of every passphrase read.
	VerifyChecksum bool `json:"verifyChecksum"`

	// Color enables coloured console output.
	Color bool `json:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Shares:         recovery.DefaultShares,
		Threshold:      recovery.DefaultThreshold,
		VerifyChecksum: true,
		Color:          true,
	}
}

// DefaultPath returns the location of the configuration file in the user
// configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory location: %w", err)
	}
	return filepath.Join(dir, DefaultName), nil
}

// Parse reads YAML configuration. Keys missing from the document keep their
// default values; unknown keys are an error.
func Parse(yamlBytes []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(yamlBytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration file at path. When optional is set, a missing file
// yields the default configuration.
func Load(path string, optional bool) (*Config, error) {
	yamlBytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && optional {
		glog.V(1).Infof("No config file at %s, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that 1 <= threshold < shares <= 255.
func (c *Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalid, c.Threshold)
	}
	if c.Shares <= c.Threshold {
		return fmt.Errorf("%w: shares (%d) must be greater than threshold (%d)", ErrInvalid, c.Shares, c.Threshold)
	}
	if c.Shares > shamir.MaxShares {
		return fmt.Errorf("%w: at most %d shares are supported, got %d", ErrInvalid, shamir.MaxShares, c.Shares)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
