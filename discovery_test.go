// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intel/pqos/internal/cpuid"
)

// TestDiscoverMonitoringCMTOnly covers a CMT-only
// platform with no MBM and no CAT signaled via cpuid(0x7,0).
func TestDiscoverMonitoringCMTOnly(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{EBX: 1 << 12}, nil)
	cp.On("Execute", 0, uint32(leafMonitoring), uint32(0)).
		Return(cpuid.Registers{EBX: 127, EDX: 0b10}, nil)
	cp.On("Execute", 0, uint32(leafMonitoring), uint32(1)).
		Return(cpuid.Registers{EDX: 0b001, ECX: 127, EBX: 65536}, nil)

	mon, err := discoverMonitoring(cp, 0)
	require.NoError(t, err)
	require.NotNil(t, mon)
	require.EqualValues(t, 128, mon.MaxRMID)
	require.Len(t, mon.Events, 1)
	require.Equal(t, L3Occupancy, mon.Events[0].Type)
	require.EqualValues(t, 128, mon.Events[0].MaxRMID)
	require.EqualValues(t, 65536, mon.Events[0].ScaleFactor)
}

// TestDiscoverMonitoringFullCMTAndMBM covers all
// four events present, including the synthesized RMEM_BW.
func TestDiscoverMonitoringFullCMTAndMBM(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{EBX: 1 << 12}, nil)
	cp.On("Execute", 0, uint32(leafMonitoring), uint32(0)).
		Return(cpuid.Registers{EBX: 127, EDX: 0b10}, nil)
	cp.On("Execute", 0, uint32(leafMonitoring), uint32(1)).
		Return(cpuid.Registers{EDX: 0b111, ECX: 127, EBX: 65536}, nil)

	mon, err := discoverMonitoring(cp, 0)
	require.NoError(t, err)
	require.Len(t, mon.Events, 4)
	require.True(t, mon.HasEvent(L3Occupancy))
	require.True(t, mon.HasEvent(LocalMemBandwidth))
	require.True(t, mon.HasEvent(TotalMemBandwidth))
	require.True(t, mon.HasEvent(RemoteMemBandwidth))
}

// TestDiscoverMonitoringAbsent covers the boundary case where
// cpuid(0x7,0).ebx bit 12 is clear.
func TestDiscoverMonitoringAbsent(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{}, nil)

	mon, err := discoverMonitoring(cp, 0)
	require.NoError(t, err)
	require.Nil(t, mon)
}

// TestDiscoverAllocationCPUIDPath covers the discovery
// half: CAT with CDP supported, exposed via cpuid(0x10,*).
func TestDiscoverAllocationCPUIDPath(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{EBX: 1 << 15}, nil)
	cp.On("Execute", 0, uint32(leafAllocation), uint32(0)).
		Return(cpuid.Registers{EBX: 1 << 1}, nil)
	cp.On("Execute", 0, uint32(leafAllocation), uint32(1)).
		Return(cpuid.Registers{EAX: 19, EBX: 0x600, ECX: 0b100, EDX: 15}, nil)

	l3ca, err := discoverAllocation(cp, 0, false)
	require.NoError(t, err)
	require.NotNil(t, l3ca)
	require.EqualValues(t, 16, l3ca.NumClasses)
	require.EqualValues(t, 20, l3ca.NumWays)
	require.EqualValues(t, 0x600, l3ca.WayContentionMask)
	require.True(t, l3ca.CdpSupported)
}

// TestDiscoverAllocationBrandFallback covers the fallback.
func TestDiscoverAllocationBrandFallback(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{}, nil)
	cp.On("BrandString", 0).Return("Intel(R) Xeon(R) CPU E5-2658 v3 @ 2.20GHz", nil)

	l3ca, err := discoverAllocation(cp, 0, false)
	require.NoError(t, err)
	require.NotNil(t, l3ca)
	require.EqualValues(t, fallbackNumClasses, l3ca.NumClasses)
	require.False(t, l3ca.CdpSupported)
	require.EqualValues(t, 0, l3ca.NumWays)
}

// TestDiscoverAllocationBrandFallbackRequireOnFails covers the
// REQUIRE_ON branch: the fallback path cannot satisfy it.
func TestDiscoverAllocationBrandFallbackRequireOnFails(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{}, nil)

	_, err := discoverAllocation(cp, 0, true)
	require.Error(t, err)
	require.IsType(t, &InvalidParamError{}, err)
}

// TestDiscoverAllocationBrandNotListed covers the boundary case where the
// brand string is not in the allow-list.
func TestDiscoverAllocationBrandNotListed(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafStructExt), uint32(0)).
		Return(cpuid.Registers{}, nil)
	cp.On("BrandString", 0).Return("Totally Unknown CPU", nil)

	l3ca, err := discoverAllocation(cp, 0, false)
	require.NoError(t, err)
	require.Nil(t, l3ca)
}

// TestDiscoverL3Geometry checks the arithmetic against the documented formulas.
func TestDiscoverL3Geometry(t *testing.T) {
	cp := &cpuidExecutorMock{}
	// ways=11 (ebx bits 22-31 = 10), line_size=64 (ebx bits 0-11 = 63),
	// partitions=1 (ebx bits 12-21 = 0), sets=4096 (ecx=4095).
	ebx := uint32(10<<22 | 0<<12 | 63)
	cp.On("Execute", 0, uint32(leafCacheParams), uint32(subleafL3Cache)).
		Return(cpuid.Registers{EBX: ebx, ECX: 4095}, nil)

	numWays, lineSize, numPartitions, numSets, l3Size, waySize, err := discoverL3Geometry(cp, 0)
	require.NoError(t, err)
	require.EqualValues(t, 11, numWays)
	require.EqualValues(t, 64, lineSize)
	require.EqualValues(t, 1, numPartitions)
	require.EqualValues(t, 4096, numSets)
	require.EqualValues(t, 11*1*64*4096, l3Size)
	require.EqualValues(t, l3Size/11, waySize)
}

// TestLogUnsupportedResourceIDsDoesNotFail exercises the supplemented
// logging path; it must never fail discovery.
func TestLogUnsupportedResourceIDsDoesNotFail(t *testing.T) {
	require.NotPanics(t, func() {
		logUnsupportedResourceIDs(1<<1 | 1<<2 | 1<<3)
	})
}

// TestDiscoverModelName resolves a recognized server-class model to its
// microarchitecture name.
func TestDiscoverModelName(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafVersionInfo), uint32(0)).
		Return(cpuid.Registers{EAX: 0x606A0}, nil)

	require.Equal(t, "Ice Lake-SP", discoverModelName(cp, 0))
}

// TestDiscoverModelNameUnknown never fails discovery; an unrecognized
// or unreadable model just yields an empty name.
func TestDiscoverModelNameUnknown(t *testing.T) {
	cp := &cpuidExecutorMock{}
	cp.On("Execute", 0, uint32(leafVersionInfo), uint32(0)).
		Return(cpuid.Registers{EAX: 0x00001}, nil)

	require.Equal(t, "", discoverModelName(cp, 0))
}
