// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"github.com/intel/pqos/internal/log"
	"github.com/intel/pqos/internal/topology"
)

// CDPConfig selects the desired Code/Data Prioritization reconciliation
// behavior.
type CDPConfig int

const (
	// CDPAny leaves CDP state untouched; Init only observes it.
	CDPAny CDPConfig = iota
	// CDPRequireOn forces CDP on during Init if the platform supports it.
	CDPRequireOn
	// CDPRequireOff forces CDP off during Init.
	CDPRequireOff
)

// String returns a human-readable name for the configuration value.
func (c CDPConfig) String() string {
	switch c {
	case CDPAny:
		return "ANY"
	case CDPRequireOn:
		return "REQUIRE_ON"
	case CDPRequireOff:
		return "REQUIRE_OFF"
	default:
		return "UNKNOWN"
	}
}

// LibraryConfig is the caller-owned configuration read once during Init,
type LibraryConfig struct {
	CdpConfig     CDPConfig
	Topology      *topology.Topology
	Verbose       bool
	MsrBasePath   string
	CPUIDExecutor cpuidExecutor
	RegisterOpen  registerOpener
}

// libraryBuilder accumulates Option values before Init constructs the
// final LibraryConfig, mirroring the functional-options pattern used
// throughout this codebase's builders.
type libraryBuilder struct {
	cfg LibraryConfig
}

// Option configures a libraryBuilder. Implements the functional options
// pattern.
type Option func(*libraryBuilder)

// WithCDPConfig sets the desired CDP reconciliation behavior. Defaults to
// CDPAny when not supplied.
func WithCDPConfig(c CDPConfig) Option {
	return func(b *libraryBuilder) {
		b.cfg.CdpConfig = c
	}
}

// WithTopology injects a caller-supplied topology, bypassing internal
// platform enumeration. An empty topology causes Init to fail with
// InvalidParamError.
func WithTopology(t *topology.Topology) Option {
	return func(b *libraryBuilder) {
		b.cfg.Topology = t
	}
}

// WithVerbose sets LibraryConfig.Verbose. When it is set, Init logs one
// info-level line saying so; it does not change the level or destination
// of any other message, which stays up to the configured Logger.
func WithVerbose(v bool) Option {
	return func(b *libraryBuilder) {
		b.cfg.Verbose = v
	}
}

// WithLogger sets a user provided logger to be used for all messages
// logged by this package. This option should be passed first in the
// argument list to Init.
func WithLogger(l log.Logger) Option {
	return func(b *libraryBuilder) {
		log.SetLogger(l)
	}
}

// WithMsrBasePath overrides the default /dev/cpu MSR base path. Intended
// for tests; production callers should leave this unset.
func WithMsrBasePath(path string) Option {
	return func(b *libraryBuilder) {
		b.cfg.MsrBasePath = path
	}
}
