// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/intel/pqos/internal/log"
	"github.com/intel/pqos/internal/msr"
	"github.com/intel/pqos/internal/topology"
)

// configurator implements low-level CAT reset, CDP enable
// sequencing, and cross-socket CDP consistency checks. Every operation
// mutates or reads machine-global state and is never retried internally.
type configurator struct {
	topo        *topology.Topology
	open        registerOpener
	msrBasePath string
}

// newConfigurator builds a configurator bound to topo's socket/core
// layout, opening MSR device files under basePath via open.
func newConfigurator(topo *topology.Topology, basePath string, open registerOpener) *configurator {
	crossCheckMSRCores(topo, basePath)
	return &configurator{topo: topo, open: open, msrBasePath: basePath}
}

// crossCheckMSRCores compares topo's cores against the MSR device
// directories actually present under basePath and logs a warning if a
// topology core has no corresponding MSR file. It never blocks
// configurator construction: a missing file only becomes fatal when an
// operation later tries to open it.
func crossCheckMSRCores(topo *topology.Topology, basePath string) {
	available, err := msr.AvailableCores(basePath)
	if err != nil {
		log.Debugf("msr device directory cross-check skipped: %v", err)
		return
	}

	present := make(map[int]bool, len(available))
	for _, id := range available {
		present[id] = true
	}

	var missing []int
	for _, c := range topo.Cores {
		if !present[c.LcoreID] {
			missing = append(missing, c.LcoreID)
		}
	}
	if len(missing) > 0 {
		log.Warnf("topology lists logical cores with no MSR device directory under %q: %v", basePath, missing)
	}
}

// catReset resets CAT state. For each socket it writes
// the all-ways-open mask into every class mask register, then for every
// logical core it resets PQR_ASSOC's class field to 0. Sockets are
// processed concurrently; any MSR failure aborts with HwError and leaves
// prior writes applied (no rollback).
func (c *configurator) catReset(sockets []int, numWays, numClasses uint32) error {
	mask := waysMask(numWays)

	var g errgroup.Group
	for _, s := range sockets {
		socket := s
		g.Go(func() error {
			return c.resetSocketClassMasks(socket, mask, numClasses)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var g2 errgroup.Group
	for _, core := range allCoreIDs(c.topo) {
		lcore := core
		g2.Go(func() error {
			return c.resetCoreAssociation(lcore)
		})
	}
	return g2.Wait()
}

// resetSocketClassMasks writes mask into every class-of-service register
// on the socket's representative core.
func (c *configurator) resetSocketClassMasks(socket int, mask uint64, numClasses uint32) error {
	core, err := representativeCore(c.topo, socket)
	if err != nil {
		return err
	}
	reg, err := c.open(c.msrBasePath, core)
	if err != nil {
		return &HwError{Reason: fmt.Sprintf("opening MSR for socket %d core %d", socket, core), Err: err}
	}
	for classID := uint32(0); classID < numClasses; classID++ {
		if err := reg.Write(classMaskRegister(classID), mask); err != nil {
			return &HwError{Reason: fmt.Sprintf("writing class mask register for class %d on socket %d", classID, socket), Err: err}
		}
	}
	return nil
}

// resetCoreAssociation clears the class-of-service field of PQR_ASSOC on
// the given logical core.
func (c *configurator) resetCoreAssociation(core int) error {
	reg, err := c.open(c.msrBasePath, core)
	if err != nil {
		return &HwError{Reason: fmt.Sprintf("opening MSR for core %d", core), Err: err}
	}
	assoc, err := reg.Read(msrPQRAssoc)
	if err != nil {
		return &HwError{Reason: fmt.Sprintf("reading PQR_ASSOC on core %d", core), Err: err}
	}
	assoc = setPQRAssocClass(assoc, 0)
	if err := reg.Write(msrPQRAssoc, assoc); err != nil {
		return &HwError{Reason: fmt.Sprintf("writing PQR_ASSOC on core %d", core), Err: err}
	}
	return nil
}

// cdpEnable toggles CDP: for one
// representative core per socket, set or clear L3_QOS_CFG's CDP_EN bit.
func (c *configurator) cdpEnable(sockets []int, on bool) error {
	var g errgroup.Group
	for _, s := range sockets {
		socket := s
		g.Go(func() error {
			core, err := representativeCore(c.topo, socket)
			if err != nil {
				return err
			}
			reg, err := c.open(c.msrBasePath, core)
			if err != nil {
				return &HwError{Reason: fmt.Sprintf("opening MSR for socket %d core %d", socket, core), Err: err}
			}
			cfg, err := reg.Read(msrL3QosCfg)
			if err != nil {
				return &HwError{Reason: fmt.Sprintf("reading L3_QOS_CFG on socket %d", socket), Err: err}
			}
			cfg = withCdpBit(cfg, on)
			if err := reg.Write(msrL3QosCfg, cfg); err != nil {
				return &HwError{Reason: fmt.Sprintf("writing L3_QOS_CFG on socket %d", socket), Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// socketCdpState pairs a socket ID with its observed CDP_EN bit, used to
// produce an actionable log message when sockets disagree.
type socketCdpState struct {
	socket  int
	enabled bool
}

// cdpIsEnabled reads CDP state: for one
// representative core per socket, read L3_QOS_CFG's CDP_EN bit. If
// sockets disagree, returns HwError naming the disagreeing sockets; the
// library never attempts to force convergence.
func (c *configurator) cdpIsEnabled(sockets []int) (bool, error) {
	states := make([]socketCdpState, len(sockets))
	var g errgroup.Group
	for i, s := range sockets {
		idx, socket := i, s
		g.Go(func() error {
			core, err := representativeCore(c.topo, socket)
			if err != nil {
				return err
			}
			reg, err := c.open(c.msrBasePath, core)
			if err != nil {
				return &HwError{Reason: fmt.Sprintf("opening MSR for socket %d core %d", socket, core), Err: err}
			}
			cfg, err := reg.Read(msrL3QosCfg)
			if err != nil {
				return &HwError{Reason: fmt.Sprintf("reading L3_QOS_CFG on socket %d", socket), Err: err}
			}
			states[idx] = socketCdpState{socket: socket, enabled: cdpEnabled(cfg)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	if len(states) == 0 {
		return false, &HwError{Reason: "no sockets to query for CDP state"}
	}

	want := states[0].enabled
	for _, st := range states[1:] {
		if st.enabled != want {
			log.Errorf("CDP_EN disagrees across sockets (socket %d=%v, socket %d=%v); reboot required, the library will not force convergence",
				states[0].socket, states[0].enabled, st.socket, st.enabled)
			return false, &HwError{Reason: fmt.Sprintf("CDP_EN inconsistent across sockets %d and %d", states[0].socket, st.socket)}
		}
	}
	return want, nil
}

// representativeCore returns the lowest logical core ID on socket, used
// as the single core each per-socket MSR operation is issued against.
func representativeCore(topo *topology.Topology, socket int) (int, error) {
	cores := topo.CoresOnSocket(socket)
	if len(cores) == 0 {
		return 0, &HwError{Reason: fmt.Sprintf("no cores found for socket %d", socket)}
	}
	return cores[0], nil
}

// allCoreIDs returns every logical core ID in topo.
func allCoreIDs(topo *topology.Topology) []int {
	ids := make([]int, 0, topo.NumCores())
	for _, c := range topo.Cores {
		ids = append(ids, c.LcoreID)
	}
	return ids
}
