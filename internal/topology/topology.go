// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

// Package topology enumerates the logical cores of the host and their
// socket/cluster membership.
package topology

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/karrick/godirwalk"
	cpuUtil "github.com/shirou/gopsutil/v3/cpu"

	"github.com/intel/pqos/internal/log"
	"github.com/intel/pqos/internal/sysfs"
)

// defaultCPUBasePath is where per-CPU sysfs attributes live.
const defaultCPUBasePath = "/sys/devices/system/cpu"

// clusterFile is the attribute file holding a core's die/cluster ID,
// relative to a cpuN directory.
const clusterFile = "topology/die_id"

// CoreInfo describes one logical core of the host.
type CoreInfo struct {
	LcoreID   int
	SocketID  int
	ClusterID int
}

// Topology is an ordered, duplicate-free list of CoreInfo.
type Topology struct {
	Cores []CoreInfo
}

// NumCores returns the number of logical cores in the topology.
func (t *Topology) NumCores() int {
	return len(t.Cores)
}

// MaxCoreID returns the largest LcoreID present in the topology.
func (t *Topology) MaxCoreID() int {
	max := 0
	for _, c := range t.Cores {
		if c.LcoreID > max {
			max = c.LcoreID
		}
	}
	return max
}

// SocketIDs returns the sorted set of distinct socket IDs in the topology.
func (t *Topology) SocketIDs() []int {
	set := mapset.NewSet()
	for _, c := range t.Cores {
		set.Add(c.SocketID)
	}
	return sortedIntSet(set)
}

// CoresOnSocket returns the logical core IDs that belong to socketID, in
// ascending order. The first of these is used as the "representative core"
// for configurator operations that act once per socket.
func (t *Topology) CoresOnSocket(socketID int) []int {
	var cores []int
	for _, c := range t.Cores {
		if c.SocketID == socketID {
			cores = append(cores, c.LcoreID)
		}
	}
	sort.Ints(cores)
	return cores
}

// New validates a caller-supplied topology. An empty slice is rejected: the
// core treats num_cores==0 as an invalid parameter rather than silently
// disabling itself.
func New(cores []CoreInfo) (*Topology, error) {
	if len(cores) == 0 {
		return nil, fmt.Errorf("caller-supplied topology has no cores")
	}

	seen := mapset.NewSet()
	for _, c := range cores {
		if seen.Contains(c.LcoreID) {
			return nil, fmt.Errorf("duplicate logical core id %d in caller-supplied topology", c.LcoreID)
		}
		seen.Add(c.LcoreID)
	}

	ordered := make([]CoreInfo, len(cores))
	copy(ordered, cores)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].LcoreID < ordered[j].LcoreID })

	return &Topology{Cores: ordered}, nil
}

// Discover enumerates the host's logical cores via gopsutil, cross
// referencing each core's cluster (die) ID from sysfs when available.
func Discover() (*Topology, error) {
	infos, err := cpuUtil.Info()
	if err != nil {
		return nil, fmt.Errorf("error occurred while parsing CPU information: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("no logical cores were found")
	}

	cores := make([]CoreInfo, 0, len(infos))
	for _, info := range infos {
		socketID, err := strconv.Atoi(info.PhysicalID)
		if err != nil {
			return nil, fmt.Errorf("error parsing socket id for cpu %d: %w", info.CPU, err)
		}
		clusterID := readClusterID(int(info.CPU))
		cores = append(cores, CoreInfo{
			LcoreID:   int(info.CPU),
			SocketID:  socketID,
			ClusterID: clusterID,
		})
	}

	sort.Slice(cores, func(i, j int) bool { return cores[i].LcoreID < cores[j].LcoreID })
	crossCheckCPUDirs(cores, defaultCPUBasePath)
	return &Topology{Cores: cores}, nil
}

// crossCheckCPUDirs compares gopsutil's view of available cores against a
// direct sysfs directory listing under base and logs a warning if they
// disagree. It never fails Discover: the sysfs walk is a diagnostic aid,
// not a second source of truth.
func crossCheckCPUDirs(cores []CoreInfo, base string) {
	names, err := WalkCPUDirs(base)
	if err != nil {
		log.Debugf("cpu directory cross-check skipped: %v", err)
		return
	}

	seen := mapset.NewSet()
	for _, c := range cores {
		seen.Add("cpu" + strconv.Itoa(c.LcoreID))
	}

	var missing []string
	for _, name := range names {
		if !seen.Contains(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		log.Warnf("sysfs lists cpu directories gopsutil did not enumerate: %v", missing)
	}
}

// readClusterID returns the die/cluster ID for a logical core, defaulting
// to 0 when the sysfs attribute is absent (older kernels, some VMs).
func readClusterID(lcoreID int) int {
	path := filepath.Join(defaultCPUBasePath, "cpu"+strconv.Itoa(lcoreID), clusterFile)
	exists, err := sysfs.FileExists(path)
	if err != nil || !exists {
		return 0
	}
	content, err := sysfs.ReadFile(path)
	if err != nil {
		return 0
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0
	}
	return id
}

// WalkCPUDirs lists the "cpuN" directory names directly under base on the
// real filesystem, used to cross-check gopsutil's view of available cores
// against sysfs during diagnostics. Unlike the rest of this package it
// bypasses sysfs.FS: godirwalk operates on real paths and offers no
// in-memory-filesystem seam, so callers needing a mockable enumeration
// should use gopsutil-backed Discover instead.
func WalkCPUDirs(base string) ([]string, error) {
	var names []string
	err := godirwalk.Walk(base, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path == base {
				return nil
			}
			name := filepath.Base(path)
			if de.IsDir() && strings.HasPrefix(name, "cpu") {
				if _, err := strconv.Atoi(strings.TrimPrefix(name, "cpu")); err == nil {
					names = append(names, name)
				}
			}
			if de.IsDir() && path != base {
				return filepath.SkipDir
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %q: %w", base, err)
	}
	sort.Strings(names)
	return names, nil
}

func sortedIntSet(set mapset.Set) []int {
	out := make([]int, 0, set.Cardinality())
	for _, v := range set.ToSlice() {
		out = append(out, v.(int))
	}
	sort.Ints(out)
	return out
}
