// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"github.com/intel/pqos/internal/cpuid"
	"github.com/intel/pqos/internal/log"
	"github.com/intel/pqos/internal/msr"
)

// cpuidExecutor abstracts internal/cpuid so discovery and the configurator
// can be tested against a testify/mock double instead of real hardware.
type cpuidExecutor interface {
	Execute(core int, leaf, subleaf uint32) (cpuid.Registers, error)
	BrandString(core int) (string, error)
}

// registerOpener abstracts internal/msr.Open so the configurator can be
// tested against a testify/mock double instead of a real MSR device file.
type registerOpener func(basePath string, core int) (msr.Register, error)

// defaultCPUIDExecutor calls straight through to internal/cpuid.
type defaultCPUIDExecutor struct{}

func (defaultCPUIDExecutor) Execute(core int, leaf, subleaf uint32) (cpuid.Registers, error) {
	return cpuid.Execute(core, leaf, subleaf)
}

func (defaultCPUIDExecutor) BrandString(core int) (string, error) {
	return cpuid.BrandString(core)
}

// defaultRegisterOpen is the production registerOpener: it checks that
// the msr kernel module is loaded before opening a core's device file,
// so a missing module produces a clear HwError instead of a raw
// "no such file" one. Tests substitute their own registerOpener and
// never exercise this path.
func defaultRegisterOpen(basePath string, core int) (msr.Register, error) {
	loaded, err := msr.IsLoaded()
	if err != nil {
		log.Debugf("pqos: could not determine whether the msr kernel module is loaded: %v", err)
	} else if !loaded {
		return nil, &HwError{Reason: "msr kernel module is not loaded"}
	}
	return msr.Open(basePath, core)
}
