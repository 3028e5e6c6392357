// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"github.com/stretchr/testify/mock"

	"github.com/intel/pqos/internal/cpuid"
)

// cpuidExecutorMock is a mock for cpuidExecutor.
type cpuidExecutorMock struct {
	mock.Mock
}

func (m *cpuidExecutorMock) Execute(core int, leaf, subleaf uint32) (cpuid.Registers, error) {
	args := m.Called(core, leaf, subleaf)
	return args.Get(0).(cpuid.Registers), args.Error(1)
}

func (m *cpuidExecutorMock) BrandString(core int) (string, error) {
	args := m.Called(core)
	return args.String(0), args.Error(1)
}

// registerMock is a mock for internal/msr.Register.
type registerMock struct {
	mock.Mock
	core int
}

func (m *registerMock) Core() int {
	return m.core
}

func (m *registerMock) Read(offset uint32) (uint64, error) {
	args := m.Called(offset)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *registerMock) Write(offset uint32, value uint64) error {
	args := m.Called(offset, value)
	return args.Error(0)
}
