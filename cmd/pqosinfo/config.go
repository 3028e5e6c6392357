// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// cliConfig mirrors the optional on-disk configuration file for this
// command. It configures the caller, not the library: the core itself
// persists no state of its own.
type cliConfig struct {
	CdpConfig    string `toml:"cdp_config"`
	Verbose      bool   `toml:"verbose"`
	IncludedCPUs []int  `toml:"included_cpus"`
}

var configPaths = []string{
	"/etc/pqos/pqos.toml",
	"./pqos.toml",
}

// loadCLIConfig reads the first config file found in configPaths. It is
// not an error for none to exist; defaults are returned instead.
func loadCLIConfig() (cliConfig, error) {
	for _, path := range configPaths {
		cfg, err := parseCLIConfig(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return cliConfig{}, fmt.Errorf("failed to open file %s: %w", path, err)
		}
		return cfg, nil
	}
	return cliConfig{}, nil
}

func parseCLIConfig(path string) (cliConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return cliConfig{}, err
	}
	defer f.Close()

	var cfg cliConfig
	if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cliConfig{}, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return cfg, nil
}
