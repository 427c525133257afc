// Copyright (c) 2024 The MWEB developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node orchestrates the engine: it owns the committed view and
// drives validate → connect → disconnect cycles for the host chain.
package node

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mwebchain/mweb/mw"
)

// Config is the node configuration, persisted under datadir/chain/.
type Config struct {
	DataDir        string `yaml:"-"`
	HRP            string `yaml:"hrp"`
	PegInMaturity  uint32 `yaml:"pegin-maturity"`
	MaxBlockWeight uint32 `yaml:"max-block-weight"`

	WeightPerInput     uint32 `yaml:"weight-per-input"`
	WeightPerOutput    uint32 `yaml:"weight-per-output"`
	WeightPerKernel    uint32 `yaml:"weight-per-kernel"`
	WeightPerExtraByte uint32 `yaml:"weight-per-extra-byte"`
}

const configFile = "config.yaml"

// ChainDir returns datadir/chain.
func (c *Config) ChainDir() string {
	return filepath.Join(c.DataDir, "chain")
}

// Params builds the immutable chain parameters from the config.
func (c *Config) Params() (*mw.ChainParams, error) {
	params := &mw.ChainParams{
		HRP:                c.HRP,
		PegInMaturity:      c.PegInMaturity,
		MaxBlockWeight:     c.MaxBlockWeight,
		WeightPerInput:     c.WeightPerInput,
		WeightPerOutput:    c.WeightPerOutput,
		WeightPerKernel:    c.WeightPerKernel,
		WeightPerExtraByte: c.WeightPerExtraByte,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// LoadConfig reads the config from datadir/chain/config.yaml.
func LoadConfig(datadir string) (*Config, error) {
	path := filepath.Join(datadir, "chain", configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg := &Config{DataDir: datadir}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Save writes the config to datadir/chain/config.yaml.
func (c *Config) Save() error {
	dir := c.ChainDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "save config")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, configFile), data, 0o644)
}
