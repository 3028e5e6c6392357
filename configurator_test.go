// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intel/pqos/internal/msr"
	"github.com/intel/pqos/internal/topology"
)

func twoSocketTopology(t *testing.T) *topology.Topology {
	t.Helper()
	topo, err := topology.New([]topology.CoreInfo{
		{LcoreID: 0, SocketID: 0},
		{LcoreID: 1, SocketID: 0},
		{LcoreID: 2, SocketID: 1},
		{LcoreID: 3, SocketID: 1},
	})
	require.NoError(t, err)
	return topo
}

func openerFor(regs map[int]*registerMock) registerOpener {
	return func(basePath string, core int) (msr.Register, error) {
		return regs[core], nil
	}
}

// TestCatReset checks the cat_reset invariant: every class mask
// register is written with the all-ways-open mask, and every core's
// PQR_ASSOC class field is cleared to 0.
func TestCatReset(t *testing.T) {
	topo := twoSocketTopology(t)

	regs := map[int]*registerMock{
		0: {core: 0}, 1: {core: 1}, 2: {core: 2}, 3: {core: 3},
	}
	mask := waysMask(4)
	for _, core := range []int{0, 2} {
		regs[core].On("Write", classMaskRegister(0), mask).Return(nil)
		regs[core].On("Write", classMaskRegister(1), mask).Return(nil)
	}
	for _, core := range []int{0, 1, 2, 3} {
		regs[core].On("Read", uint32(msrPQRAssoc)).Return(setPQRAssocClass(0, 3), nil)
		regs[core].On("Write", uint32(msrPQRAssoc), setPQRAssocClass(0, 0)).Return(nil)
	}

	cfgtr := newConfigurator(topo, "", openerFor(regs))

	err := cfgtr.catReset(topo.SocketIDs(), 4, 2)
	require.NoError(t, err)
	for _, core := range []int{0, 1, 2, 3} {
		regs[core].AssertExpectations(t)
	}
}

// TestCdpEnable checks the cdp_enable invariant: after a
// successful call every socket's CDP_EN bit equals the requested value.
func TestCdpEnable(t *testing.T) {
	topo := twoSocketTopology(t)

	regs := map[int]*registerMock{0: {core: 0}, 2: {core: 2}}
	regs[0].On("Read", uint32(msrL3QosCfg)).Return(uint64(0), nil)
	regs[0].On("Write", uint32(msrL3QosCfg), uint64(1)).Return(nil)
	regs[2].On("Read", uint32(msrL3QosCfg)).Return(uint64(0), nil)
	regs[2].On("Write", uint32(msrL3QosCfg), uint64(1)).Return(nil)

	cfgtr := newConfigurator(topo, "", openerFor(regs))

	err := cfgtr.cdpEnable(topo.SocketIDs(), true)
	require.NoError(t, err)
	regs[0].AssertExpectations(t)
	regs[2].AssertExpectations(t)
}

// TestCdpIsEnabledConsistent checks the agreement path.
func TestCdpIsEnabledConsistent(t *testing.T) {
	topo := twoSocketTopology(t)

	regs := map[int]*registerMock{0: {core: 0}, 2: {core: 2}}
	regs[0].On("Read", uint32(msrL3QosCfg)).Return(uint64(1), nil)
	regs[2].On("Read", uint32(msrL3QosCfg)).Return(uint64(1), nil)

	cfgtr := newConfigurator(topo, "", openerFor(regs))

	on, err := cfgtr.cdpIsEnabled(topo.SocketIDs())
	require.NoError(t, err)
	require.True(t, on)
}

// TestCdpIsEnabledInconsistent covers the case where sockets
// disagree on CDP_EN, discovery must fail with HwError.
func TestCdpIsEnabledInconsistent(t *testing.T) {
	topo := twoSocketTopology(t)

	regs := map[int]*registerMock{0: {core: 0}, 2: {core: 2}}
	regs[0].On("Read", uint32(msrL3QosCfg)).Return(uint64(1), nil)
	regs[2].On("Read", uint32(msrL3QosCfg)).Return(uint64(0), nil)

	cfgtr := newConfigurator(topo, "", openerFor(regs))

	_, err := cfgtr.cdpIsEnabled(topo.SocketIDs())
	require.Error(t, err)
	require.IsType(t, &HwError{}, err)
}
