// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"sync"

	"github.com/intel/pqos/internal/log"
	"github.com/intel/pqos/internal/msr"
	"github.com/intel/pqos/internal/topology"
)

// singleton enforces that only one Library may exist at a time, so each
// process has a single owner of the underlying hardware state while
// still exposing an explicit value instead of package-level functions.
var (
	singletonMu  sync.Mutex
	singletonSet bool
)

// resetSingleton clears the singleton guard. Exercised only by this
// package's own tests, which construct and discard many Library values.
func resetSingleton() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singletonSet = false
}

// Library is the caller-owned handle: a single
// process-wide state machine protected by a non-reentrant mutual
// exclusion lock. No exported method calls another exported method while
// holding l.mu.
type Library struct {
	mu    sync.Mutex
	state LifecycleState

	topo     *topology.Topology
	snapshot *CapabilitySnapshot

	monRuntime   monitoringRuntime
	allocRuntime allocationRuntime
}

// NewLibrary returns an uninitialized Library value. It fails if a
// Library value has already been created in this process; Fini does not
// release the guard, so the first value stays the only one and is
// re-initialized with Init after Fini. This preserves the single-instance
// contract over the underlying hardware state.
func NewLibrary() (*Library, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singletonSet {
		return nil, &InitStateError{Operation: "NewLibrary", Want: StateUninit, Got: StateInit}
	}
	singletonSet = true
	return &Library{state: StateUninit}, nil
}

// Init runs the bring-up sequence: it verifies the
// library is UNINIT, obtains a topology, initializes HW primitives,
// discovers capabilities, builds the snapshot, and brings up the
// monitoring and allocation subsystems. On any failure it unwinds
// whatever was already brought up and returns to UNINIT.
func (l *Library) Init(opts ...Option) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateUninit {
		return &InitStateError{Operation: "Init", Want: StateUninit, Got: l.state}
	}

	b := &libraryBuilder{
		cfg: LibraryConfig{
			MsrBasePath:   msr.DefaultBasePath(),
			CPUIDExecutor: defaultCPUIDExecutor{},
			RegisterOpen:  defaultRegisterOpen,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	cfg := b.cfg

	if cfg.Verbose {
		log.Info("pqos: verbose logging requested")
	}

	topo, err := l.obtainTopology(cfg)
	if err != nil {
		return err
	}

	cfgtr := newConfigurator(topo, cfg.MsrBasePath, cfg.RegisterOpen)

	snapshot, err := discoverCapabilities(cfg, topo, cfgtr)
	if err != nil {
		log.Errorf("pqos: capability discovery failed: %v", err)
		return err
	}

	genErr := &GenericError{}

	monRuntime := &defaultMonitoringRuntime{}
	if err := monRuntime.init(topo, snapshot); err != nil {
		log.Warnf("pqos: monitoring subsystem not started: %v", err)
		genErr.add(err.Error())
		monRuntime = nil
	}

	allocRuntime := &defaultAllocationRuntime{}
	if err := allocRuntime.init(topo, snapshot); err != nil {
		log.Warnf("pqos: allocation subsystem not started: %v", err)
		genErr.add(err.Error())
		allocRuntime = nil
	}

	if genErr.hasErrors() {
		if monRuntime == nil && allocRuntime == nil {
			return genErr
		}
		log.Warnf("pqos: initialized with partial subsystem bring-up: %s", genErr.Error())
	}

	l.topo = topo
	l.snapshot = snapshot
	l.monRuntime = monRuntime
	l.allocRuntime = allocRuntime
	l.state = StateInit

	log.Infof("pqos: initialized (mon=%v, alloc=%v)", monRuntime != nil, allocRuntime != nil)
	return nil
}

// obtainTopology uses the caller-supplied
// topology if present, rejecting an empty one, otherwise enumerates the
// host platform.
func (l *Library) obtainTopology(cfg LibraryConfig) (*topology.Topology, error) {
	if cfg.Topology != nil {
		if cfg.Topology.NumCores() == 0 {
			return nil, &InvalidParamError{Reason: "caller-supplied topology has no cores"}
		}
		return cfg.Topology, nil
	}

	topo, err := topology.Discover()
	if err != nil {
		return nil, &HwError{Reason: "topology discovery failed", Err: err}
	}
	return topo, nil
}

// Fini runs the tear-down sequence: reverse order,
// best-effort, reporting the first non-ok error encountered while still
// running every step.
func (l *Library) Fini() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateInit {
		return &InitStateError{Operation: "Fini", Want: StateInit, Got: l.state}
	}

	var first error
	if l.allocRuntime != nil {
		if err := l.allocRuntime.close(); err != nil && first == nil {
			first = err
		}
	}
	if l.monRuntime != nil {
		if err := l.monRuntime.close(); err != nil && first == nil {
			first = err
		}
	}

	l.snapshot = nil
	l.topo = nil
	l.monRuntime = nil
	l.allocRuntime = nil
	l.state = StateUninit

	if first != nil {
		log.Errorf("pqos: fini completed with error: %v", first)
	} else {
		log.Info("pqos: fini complete")
	}
	return first
}

// GetCapabilities returns borrowed references to the capability snapshot
// and topology published at Init. Both remain valid until
// Fini is called.
func (l *Library) GetCapabilities() (*CapabilitySnapshot, *topology.Topology, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateInit {
		return nil, nil, &InitStateError{Operation: "GetCapabilities", Want: StateInit, Got: l.state}
	}
	return l.snapshot, l.topo, nil
}

// discoverCapabilities runs discovery end to end: L3 geometry,
// monitoring, and allocation discovery, followed by CDP reconciliation,
// and assembles the sealed CapabilitySnapshot.
func discoverCapabilities(cfg LibraryConfig, topo *topology.Topology, cfgtr *configurator) (*CapabilitySnapshot, error) {
	core := topo.Cores[0].LcoreID
	cp := cfg.CPUIDExecutor

	if name := discoverModelName(cp, core); name != "" {
		log.Infof("detected platform microarchitecture: %s", name)
	}

	numWays, _, _, _, l3Size, _, err := discoverL3Geometry(cp, core)
	if err != nil {
		return nil, err
	}

	monCap, err := discoverMonitoring(cp, core)
	if err != nil {
		return nil, err
	}
	if monCap != nil && monCap.HasEvent(L3Occupancy) {
		monCap.L3SizeBytes = l3Size
	}

	requireOn := cfg.CdpConfig == CDPRequireOn
	l3ca, err := discoverAllocation(cp, core, requireOn)
	if err != nil {
		return nil, err
	}
	if l3ca != nil {
		if l3ca.NumWays == 0 {
			// brand-string fallback path: geometry probe fills num_ways,
			// geometry probe must run whenever L3CA is detected, independent of path.
			l3ca.NumWays = numWays
		}
		l3ca.WaySizeBytes = l3Size / l3ca.NumWays

		if l3ca.CdpSupported {
			if err := reconcileCDP(cfgtr, l3ca, cfg.CdpConfig, topo.SocketIDs()); err != nil {
				return nil, err
			}
		} else if cfg.CdpConfig == CDPRequireOn {
			return nil, &InvalidParamError{Reason: "REQUIRE_ON requested but platform does not support CDP"}
		}
	}

	if monCap == nil && l3ca == nil {
		return nil, &NotSupportedError{Reason: "neither monitoring nor allocation was discovered"}
	}

	return &CapabilitySnapshot{
		Mon:     monCap,
		L3Ca:    l3ca,
		Version: uint64(timeNowFn().UnixNano()),
	}, nil
}
