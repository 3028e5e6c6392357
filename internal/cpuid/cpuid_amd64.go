// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

// Package cpuid executes the CPUID instruction on a chosen logical core.
package cpuid

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

//nolint:revive // keeps the parameter names aligned with the Intel SDM's (EAX, ECX) input pair
func cpuid_count(leaf, subleaf uint32) (eax, ebx, ecx, edx uint32) // implemented in cpuid_amd64.s

// Registers holds the four 32-bit outputs of a single CPUID leaf/subleaf query.
type Registers struct {
	EAX, EBX, ECX, EDX uint32
}

// Execute runs CPUID(leaf, subleaf) pinned to the given logical core and
// returns its four output registers. Pinning is necessary because leaf
// contents (notably cache and resource-control geometry) are only
// guaranteed accurate for the core the instruction executes on.
func Execute(core int, leaf, subleaf uint32) (Registers, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	restore, err := pinCurrentThread(core)
	if err != nil {
		return Registers{}, fmt.Errorf("error pinning thread to core %d: %w", core, err)
	}
	defer restore()

	eax, ebx, ecx, edx := cpuid_count(leaf, subleaf)
	return Registers{EAX: eax, EBX: ebx, ECX: ecx, EDX: edx}, nil
}

// pinCurrentThread pins the calling OS thread to run exclusively on core
// and returns a function that restores the previous affinity mask.
func pinCurrentThread(core int) (func(), error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return nil, fmt.Errorf("error getting current CPU affinity: %w", err)
	}

	var next unix.CPUSet
	next.Zero()
	next.Set(core)
	if err := unix.SchedSetaffinity(0, &next); err != nil {
		return nil, fmt.Errorf("error setting CPU affinity to core %d: %w", core, err)
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
	}, nil
}

// BrandString executes CPUID leaves 0x80000002-0x80000004 on core and
// decodes the 48-byte ASCII processor brand string.
func BrandString(core int) (string, error) {
	buf := make([]byte, 0, 48)
	for leaf := uint32(0x80000002); leaf <= 0x80000004; leaf++ {
		regs, err := Execute(core, leaf, 0)
		if err != nil {
			return "", fmt.Errorf("error executing cpuid leaf 0x%X: %w", leaf, err)
		}
		buf = appendLE(buf, regs.EAX, regs.EBX, regs.ECX, regs.EDX)
	}
	return trimBrandString(buf), nil
}

func appendLE(buf []byte, regs ...uint32) []byte {
	for _, r := range regs {
		buf = append(buf, byte(r), byte(r>>8), byte(r>>16), byte(r>>24))
	}
	return buf
}

func trimBrandString(buf []byte) string {
	// Brand strings are NUL-padded and may carry leading spaces.
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	start := 0
	for start < end && buf[start] == ' ' {
		start++
	}
	return string(buf[start:end])
}
