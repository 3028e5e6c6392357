// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"fmt"

	"github.com/intel/pqos/internal/cpumodel"
	"github.com/intel/pqos/internal/log"
)

// leaf/subleaf constants named per the Intel SDM.
const (
	leafVersionInfo  = 0x1
	leafCacheParams  = 0x4
	subleafL3Cache   = 0x3
	leafStructExt    = 0x7
	leafMonitoring   = 0xF
	subleafMonEvents = 1
	leafAllocation   = 0x10
	subleafL3Alloc   = 1
)

// discoverModelName resolves cpuid(0x1,0).eax into a human-readable
// microarchitecture name for descriptive logging, logged once at the
// start of discovery. A failed or unrecognized probe is never fatal:
// discovery proceeds without a name.
func discoverModelName(cp cpuidExecutor, core int) string {
	regs, err := cp.Execute(core, leafVersionInfo, 0)
	if err != nil {
		log.Debugf("cpuid(0x1,0) failed, skipping microarchitecture name: %v", err)
		return ""
	}
	_, model := displayFamilyModel(regs.EAX)
	name := cpumodel.Name(model)
	if name == "unknown" {
		return ""
	}
	return name
}

// discoverL3Geometry runs cpuid(0x4,0x3) on core and returns the L3 cache
// geometry.
func discoverL3Geometry(cp cpuidExecutor, core int) (numWays, lineSize, numPartitions, numSets, l3Size, waySize uint32, err error) {
	regs, err := cp.Execute(core, leafCacheParams, subleafL3Cache)
	if err != nil {
		return 0, 0, 0, 0, 0, 0, &HwError{Reason: "cpuid(0x4,0x3) failed", Err: err}
	}

	numWays = l3WaysField.extract(regs.EBX) + 1
	lineSize = l3LineSizeField.extract(regs.EBX) + 1
	numPartitions = l3PartitionsField.extract(regs.EBX) + 1
	numSets = regs.ECX + 1
	l3Size = numWays * numPartitions * lineSize * numSets
	waySize = l3Size / numWays
	return numWays, lineSize, numPartitions, numSets, l3Size, waySize, nil
}

// discoverMonitoring runs the CMT/MBM discovery sequence on core. A
// nil, nil return means monitoring is absent, which is not an error for
// the library as a whole.
func discoverMonitoring(cp cpuidExecutor, core int) (*MonCapability, error) {
	ext, err := cp.Execute(core, leafStructExt, 0)
	if err != nil {
		return nil, &HwError{Reason: "cpuid(0x7,0) failed", Err: err}
	}
	if monitorPresenceField.extract(ext.EBX) == 0 {
		log.Debug("platform QoS monitoring not advertised by cpuid(0x7,0)")
		return nil, nil
	}

	mon0, err := cp.Execute(core, leafMonitoring, 0)
	if err != nil {
		return nil, &HwError{Reason: "cpuid(0xF,0) failed", Err: err}
	}
	if monQMSupportedField.extract(mon0.EDX) == 0 {
		log.Debug("cpuid(0xF,0) does not advertise L3 QoS monitoring")
		return nil, nil
	}
	maxRMID := mon0.EBX + 1

	mon1, err := cp.Execute(core, leafMonitoring, subleafMonEvents)
	if err != nil {
		return nil, &HwError{Reason: "cpuid(0xF,1) failed", Err: err}
	}

	var events []MonitorEvent
	haveLocal, haveTotal := false, false
	for _, f := range monEventFields {
		if (mon1.EDX>>f.Bit)&1 == 0 {
			continue
		}
		events = append(events, MonitorEvent{
			Type:        f.Type,
			MaxRMID:     mon1.ECX + 1,
			ScaleFactor: mon1.EBX,
		})
		switch f.Type {
		case LocalMemBandwidth:
			haveLocal = true
		case TotalMemBandwidth:
			haveTotal = true
		}
	}
	if haveLocal && haveTotal {
		events = append(events, MonitorEvent{
			Type:        RemoteMemBandwidth,
			MaxRMID:     mon1.ECX + 1,
			ScaleFactor: mon1.EBX,
		})
	}

	if len(events) == 0 {
		log.Debug("cpuid(0xF,1) advertised no monitoring events")
		return nil, nil
	}

	return &MonCapability{MaxRMID: maxRMID, Events: events}, nil
}

// discoverAllocation runs the CAT discovery sequence on core, trying the
// CPUID path first and falling back to the brand-string allow-list. A
// nil, nil return means allocation is absent. requireOn forces an
// InvalidParamError when only the brand-string fallback path is
// available, since CDP cannot be required there.
func discoverAllocation(cp cpuidExecutor, core int, requireOn bool) (*L3CaCapability, error) {
	ext, err := cp.Execute(core, leafStructExt, 0)
	if err != nil {
		return nil, &HwError{Reason: "cpuid(0x7,0) failed", Err: err}
	}

	if allocationPresenceField.extract(ext.EBX) != 0 {
		l3ca, ok, err := discoverAllocationCPUID(cp, core)
		if err != nil {
			return nil, err
		}
		if ok {
			return l3ca, nil
		}
	}

	l3ca, err := discoverAllocationBrandFallback(cp, core, requireOn)
	if err != nil {
		return nil, err
	}
	return l3ca, nil
}

// discoverAllocationCPUID implements the CPUID path of allocation
// discovery. ok is false when cpuid(0x10,0) does not advertise the L3
// resource ID, in which case the caller should try the fallback path.
func discoverAllocationCPUID(cp cpuidExecutor, core int) (l3ca *L3CaCapability, ok bool, err error) {
	alloc0, err := cp.Execute(core, leafAllocation, 0)
	if err != nil {
		return nil, false, &HwError{Reason: "cpuid(0x10,0) failed", Err: err}
	}

	logUnsupportedResourceIDs(alloc0.EBX)

	if l3AllocResourceIDField.extract(alloc0.EBX) == 0 {
		return nil, false, nil
	}

	alloc1, err := cp.Execute(core, leafAllocation, subleafL3Alloc)
	if err != nil {
		return nil, false, &HwError{Reason: "cpuid(0x10,1) failed", Err: err}
	}

	return &L3CaCapability{
		NumClasses:        alloc1.EDX + 1,
		NumWays:           alloc1.EAX + 1,
		WayContentionMask: uint64(alloc1.EBX),
		CdpSupported:      l3AllocCdpSupportedField.extract(alloc1.ECX) == 1,
	}, true, nil
}

// discoverAllocationBrandFallback implements the brand-string fallback
// path of allocation discovery.
func discoverAllocationBrandFallback(cp cpuidExecutor, core int, requireOn bool) (*L3CaCapability, error) {
	if requireOn {
		return nil, &InvalidParamError{Reason: "CDP cannot be required on the brand-string CAT fallback path"}
	}

	brand, err := cp.BrandString(core)
	if err != nil {
		return nil, &HwError{Reason: "brand string read failed", Err: err}
	}

	if !brandStringSupportsCAT(brand) {
		log.Infof("brand string %q does not match the CAT allow-list", brand)
		return nil, nil
	}

	log.Infof("CAT support for %q inferred from the brand-string fallback allow-list", brand)
	return &L3CaCapability{
		NumClasses:   fallbackNumClasses,
		CdpSupported: false,
	}, nil
}

// logUnsupportedResourceIDs decodes cpuid(0x10,0).ebx bits beyond the L3
// resource ID and logs each set bit, by name where the bit is in
// otherAllocResourceIDs and as a raw mask otherwise, a supplemented
// feature: this is never an error.
func logUnsupportedResourceIDs(ebx uint32) {
	known := uint32(1) << l3AllocResourceIDField.Low
	for _, r := range otherAllocResourceIDs {
		known |= 1 << r.Bit
		if (ebx>>r.Bit)&1 == 1 {
			log.Infof("cpuid(0x10,0).ebx advertises unsupported resource id %q (bit %d)", r.Name, r.Bit)
		}
	}
	if rest := ebx &^ known; rest != 0 {
		log.Infof("cpuid(0x10,0).ebx advertises unrecognized resource id bits 0x%x", rest)
	}
}

// reconcileCDP applies the CDP state reconciliation table ("CDP state
// reconciliation" and mutates l3ca in place. cfg is consulted for the
// current cdp_on value and to perform cat_reset/cdp_enable transitions.
func reconcileCDP(cfg *configurator, l3ca *L3CaCapability, cdpCfg CDPConfig, sockets []int) error {
	if !l3ca.CdpSupported {
		if cdpCfg == CDPRequireOn {
			return &InvalidParamError{Reason: "REQUIRE_ON requested but platform does not support CDP"}
		}
		return nil
	}

	on, err := cfg.cdpIsEnabled(sockets)
	if err != nil {
		return err
	}
	l3ca.CdpOn = on

	switch cdpCfg {
	case CDPAny:
		// observe only
	case CDPRequireOn:
		if !on {
			if err := cfg.catReset(sockets, l3ca.NumWays, l3ca.NumClasses); err != nil {
				return err
			}
			if err := cfg.cdpEnable(sockets, true); err != nil {
				return err
			}
			l3ca.CdpOn = true
		}
	case CDPRequireOff:
		if on {
			if err := cfg.catReset(sockets, l3ca.NumWays, l3ca.NumClasses); err != nil {
				return err
			}
			if err := cfg.cdpEnable(sockets, false); err != nil {
				return err
			}
			l3ca.CdpOn = false
		}
	default:
		return &InvalidParamError{Reason: fmt.Sprintf("unknown cdp_cfg value %d", cdpCfg)}
	}

	if l3ca.CdpOn {
		l3ca.NumClasses /= 2
	}
	return nil
}
