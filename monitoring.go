// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"fmt"

	"github.com/intel/pqos/internal/topology"
)

// monitoringRuntime is initialized by the core once a CapabilitySnapshot
// is available; RMID assignment and periodic polling are a separate,
// unspecified subsystem. This type only carries enough state for the
// core's bring-up/tear-down bookkeeping.
type monitoringRuntime interface {
	init(topo *topology.Topology, snap *CapabilitySnapshot) error
	close() error
}

// maxSaneRMID bounds the RMID bookkeeping allocation below. A MaxRMID
// this large could only come from a corrupted or malicious CPUID
// response, not a real platform.
const maxSaneRMID = 1 << 20

// defaultMonitoringRuntime records the capability it was handed so the
// core can confirm dependency-ordered bring-up; it does not assign
// RMIDs or poll counters, but it does reserve the bookkeeping slot for
// each RMID up front so a later assignment path has somewhere to mark
// RMIDs in use.
type defaultMonitoringRuntime struct {
	mon       *MonCapability
	rmidInUse []bool
}

func (r *defaultMonitoringRuntime) init(_ *topology.Topology, snap *CapabilitySnapshot) error {
	if snap.Mon == nil {
		return &NotSupportedError{Reason: "monitoring subsystem: no monitoring capability in snapshot"}
	}
	if snap.Mon.MaxRMID > maxSaneRMID {
		return &OutOfMemoryError{Reason: fmt.Sprintf("max_rmid %d exceeds bookkeeping limit %d", snap.Mon.MaxRMID, maxSaneRMID)}
	}
	r.mon = snap.Mon
	r.rmidInUse = make([]bool, snap.Mon.MaxRMID+1)
	return nil
}

func (r *defaultMonitoringRuntime) close() error {
	r.mon = nil
	r.rmidInUse = nil
	return nil
}
