// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

// Package msr provides per-logical-core model-specific register read and
// write access over the /dev/cpu/N/msr device file convention.
package msr

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/intel/pqos/internal/sysfs"
)

const (
	// defaultBasePath is the base path comprising all per-core MSR device files.
	defaultBasePath = "/dev/cpu"

	// file name of the binary MSR file specific for each logical core.
	deviceFile = "msr"

	// modulesPath lists kernel modules currently loaded.
	modulesPath = "/proc/modules"
)

// cpuIDRegex checks a core ID directory name as a numeric value without leading zeroes.
var cpuIDRegex = regexp.MustCompile("^(0|[1-9][0-9]*)$")

// msrModuleRegex checks for the msr module in the loaded kernel modules list.
var msrModuleRegex = regexp.MustCompile(`\bmsr\b`)

// Register represents a logical core's MSR device file, able to read and
// write 8-byte register values at a given offset.
type Register interface {
	// Core returns the logical core ID this register file is scoped to.
	Core() int

	// Read returns the 8-byte value at the given offset.
	Read(offset uint32) (uint64, error)

	// Write writes the 8-byte value at the given offset.
	Write(offset uint32, value uint64) error
}

// reg implements Register atop a single /dev/cpu/N/msr file.
type reg struct {
	path string
	core int
}

// Open opens the MSR device file for the given logical core under basePath.
func Open(basePath string, core int) (Register, error) {
	dir := filepath.Join(basePath, strconv.Itoa(core))
	path := filepath.Join(dir, deviceFile)
	if err := sysfs.CheckFile(path); err != nil {
		return nil, fmt.Errorf("invalid MSR file for core %d: %w", core, err)
	}
	return &reg{path: path, core: core}, nil
}

// Core returns the logical core ID of the receiver.
func (m *reg) Core() int {
	return m.core
}

// Read returns the 8-byte value at offset.
func (m *reg) Read(offset uint32) (uint64, error) {
	f, err := sysfs.FS.OpenFile(m.path, os.O_RDONLY, 0400)
	if err != nil {
		return 0, fmt.Errorf("error opening MSR file %q: %w", m.path, err)
	}
	defer f.Close()

	buf := make([]byte, 8)
	if _, err := f.ReadAt(buf, int64(offset)); err != nil {
		return 0, fmt.Errorf("error reading MSR offset 0x%x: %w", offset, err)
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// Write writes value at offset.
func (m *reg) Write(offset uint32, value uint64) error {
	f, err := sysfs.FS.OpenFile(m.path, os.O_WRONLY, 0200)
	if err != nil {
		return fmt.Errorf("error opening MSR file %q: %w", m.path, err)
	}
	defer f.Close()

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	if _, err := f.WriteAt(buf, int64(offset)); err != nil {
		return fmt.Errorf("error writing MSR offset 0x%x: %w", offset, err)
	}
	return nil
}

// DefaultBasePath returns the default base path for per-core MSR device files.
func DefaultBasePath() string {
	return defaultBasePath
}

// IsLoaded returns true if the msr kernel module is loaded.
func IsLoaded() (bool, error) {
	data, err := sysfs.ReadFile(modulesPath)
	if err != nil {
		return false, err
	}
	return msrModuleRegex.Match(data), nil
}

// ValidCoreDir reports whether name is a well-formed core ID directory name.
func ValidCoreDir(name string) bool {
	return cpuIDRegex.MatchString(name)
}

// AvailableCores lists the logical core IDs that have an MSR device
// directory under basePath, ascending. Directory entries that aren't
// well-formed core IDs (per ValidCoreDir) are ignored.
func AvailableCores(basePath string) ([]int, error) {
	entries, err := afero.ReadDir(sysfs.FS, basePath)
	if err != nil {
		return nil, fmt.Errorf("error reading msr base path %q: %w", basePath, err)
	}

	var cores []int
	for _, e := range entries {
		if !e.IsDir() || !ValidCoreDir(e.Name()) {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		cores = append(cores, id)
	}
	sort.Ints(cores)
	return cores, nil
}
