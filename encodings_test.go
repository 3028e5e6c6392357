// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWaysMask checks the cat_reset invariant: the all-ways-open
// mask has exactly numWays low bits set.
func TestWaysMask(t *testing.T) {
	require.EqualValues(t, 0b1111, waysMask(4))
	require.EqualValues(t, 0, waysMask(0))
	require.EqualValues(t, 1<<20-1, waysMask(20))
}

// TestSetPQRAssocClassPreservesRMID checks that the class field occupies
// only bits 63..32 and the low 32 bits (RMID) survive untouched.
func TestSetPQRAssocClassPreservesRMID(t *testing.T) {
	assoc := uint64(0xCAFEBABE) // RMID in the low 32 bits
	assoc = setPQRAssocClass(assoc, 7)
	require.EqualValues(t, 0xCAFEBABE, assoc&0xFFFFFFFF)
	require.EqualValues(t, 7, pqrAssocClass(assoc))
}

// TestCdpEnabledBit checks withCdpBit/cdpEnabled round-trip for both
// values without disturbing other bits of the register.
func TestCdpEnabledBit(t *testing.T) {
	reg := uint64(0b10) // an unrelated bit set
	reg = withCdpBit(reg, true)
	require.True(t, cdpEnabled(reg))
	require.EqualValues(t, 0b11, reg)

	reg = withCdpBit(reg, false)
	require.False(t, cdpEnabled(reg))
	require.EqualValues(t, 0b10, reg)
}

// TestClassMaskRegister checks the register address table.
func TestClassMaskRegister(t *testing.T) {
	require.EqualValues(t, 0xC90, classMaskRegister(0))
	require.EqualValues(t, 0xC91, classMaskRegister(1))
}

// TestBitFieldExtract is a small property check over the generic
// bit-field extraction helper used by every CPUID decode in discovery.go.
func TestBitFieldExtract(t *testing.T) {
	f := bitField{Low: 4, High: 7}
	require.EqualValues(t, 0xA, f.extract(0xAB))
}

// TestDisplayFamilyModel checks the Intel SDM's family/model decode,
// including the family-6 extended-model case every server part this
// package names in internal/cpumodel falls under.
func TestDisplayFamilyModel(t *testing.T) {
	// Ice Lake-SP: base_family=6, ext_model=6, base_model=0xA -> model 0x6A.
	family, model := displayFamilyModel(0x606A0)
	require.Equal(t, 6, family)
	require.Equal(t, 0x6A, model)

	// A family-0xF value also combines the extended family field.
	family, model = displayFamilyModel(0xF00)
	require.Equal(t, 0xF, family)
	require.Equal(t, 0, model)
}
