// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"fmt"

	"github.com/intel/pqos/internal/topology"
)

// allocationRuntime is initialized by the core once a CapabilitySnapshot
// is available; class-of-service bitmask programming per allocation
// request is a separate, unspecified subsystem. This type only carries
// enough state for the core's bring-up/tear-down bookkeeping.
type allocationRuntime interface {
	init(topo *topology.Topology, snap *CapabilitySnapshot) error
	close() error
}

// maxSaneClasses bounds the class-of-service bookkeeping allocation
// below. A NumClasses this large could only come from a corrupted CPUID
// response or a brand-string fallback bug, not a real platform.
const maxSaneClasses = 1 << 16

// defaultAllocationRuntime records the capability it was handed so the
// core can confirm dependency-ordered bring-up; it does not program
// class-of-service masks beyond what the configurator already applied
// during CDP reconciliation, but it does reserve the bookkeeping slot
// for each class-of-service ID up front.
type defaultAllocationRuntime struct {
	l3ca       *L3CaCapability
	classInUse []bool
}

func (r *defaultAllocationRuntime) init(_ *topology.Topology, snap *CapabilitySnapshot) error {
	if snap.L3Ca == nil {
		return &NotSupportedError{Reason: "allocation subsystem: no L3 CAT capability in snapshot"}
	}
	if snap.L3Ca.NumClasses > maxSaneClasses {
		return &OutOfMemoryError{Reason: fmt.Sprintf("num_classes %d exceeds bookkeeping limit %d", snap.L3Ca.NumClasses, maxSaneClasses)}
	}
	r.l3ca = snap.L3Ca
	r.classInUse = make([]bool, snap.L3Ca.NumClasses)
	return nil
}

func (r *defaultAllocationRuntime) close() error {
	r.l3ca = nil
	r.classInUse = nil
	return nil
}
