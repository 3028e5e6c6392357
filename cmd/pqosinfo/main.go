// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package main

import (
	"errors"
	"fmt"
	"os"

	pqos "github.com/intel/pqos"
	"github.com/intel/pqos/internal/version"
)

func main() {
	fmt.Printf("Using: %s\n", version.GetFullVersion())

	cliCfg, err := loadCLIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogrusLogger(cliCfg.Verbose)

	cdpCfg, err := parseCDPConfig(cliCfg.CdpConfig)
	if err != nil {
		logger.Errorf("invalid cdp_config %q: %v", cliCfg.CdpConfig, err)
		os.Exit(1)
	}

	lib, err := pqos.NewLibrary()
	if err != nil {
		logger.Errorf("failed to create library instance: %v", err)
		os.Exit(1)
	}

	err = lib.Init(
		pqos.WithLogger(logger),
		pqos.WithVerbose(cliCfg.Verbose),
		pqos.WithCDPConfig(cdpCfg),
	)

	var genErr *pqos.GenericError
	if err != nil {
		if !errors.As(err, &genErr) {
			logger.Errorf("failed to initialize pqos: %v", err)
			os.Exit(1)
		}
		logger.Warn(err)
	}
	defer func() {
		if err := lib.Fini(); err != nil {
			logger.Errorf("error during fini: %v", err)
		}
	}()

	snapshot, topo, err := lib.GetCapabilities()
	if err != nil {
		logger.Errorf("failed to read capabilities: %v", err)
		os.Exit(1)
	}

	fmt.Printf("=== Topology ===\n")
	fmt.Printf("logical cores: %d, sockets: %v\n", topo.NumCores(), topo.SocketIDs())

	fmt.Printf("=== Monitoring ===\n")
	if snapshot.Mon == nil {
		fmt.Println("not supported on this platform")
	} else {
		fmt.Printf("max RMID: %d, L3 size: %d bytes\n", snapshot.Mon.MaxRMID, snapshot.Mon.L3SizeBytes)
		for _, ev := range snapshot.Mon.Events {
			fmt.Printf("  event %s: max_rmid=%d scale_factor=%d\n", ev.Type, ev.MaxRMID, ev.ScaleFactor)
		}
	}

	fmt.Printf("=== L3 Cache Allocation ===\n")
	if snapshot.L3Ca == nil {
		fmt.Println("not supported on this platform")
	} else {
		fmt.Printf("classes: %d, ways: %d, way size: %d bytes, cdp supported: %t, cdp on: %t\n",
			snapshot.L3Ca.NumClasses, snapshot.L3Ca.NumWays, snapshot.L3Ca.WaySizeBytes,
			snapshot.L3Ca.CdpSupported, snapshot.L3Ca.CdpOn)
	}
}

func parseCDPConfig(s string) (pqos.CDPConfig, error) {
	switch s {
	case "", "ANY":
		return pqos.CDPAny, nil
	case "REQUIRE_ON":
		return pqos.CDPRequireOn, nil
	case "REQUIRE_OFF":
		return pqos.CDPRequireOff, nil
	default:
		return 0, fmt.Errorf("unknown cdp_config value %q", s)
	}
}
