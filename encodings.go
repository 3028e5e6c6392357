// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

// This file keeps CPUID and MSR bit-field layouts as data tables rather
// than inline shifts scattered through discovery.go and configurator.go,
// so the encodings can be exercised directly by property tests.

// bitField names a contiguous range of bits within a 32-bit register.
// Low and High are inclusive bit positions, Low <= High.
type bitField struct {
	Name string
	Low  uint
	High uint
}

// extract returns the value of f within reg, right-shifted to bit 0.
func (f bitField) extract(reg uint32) uint32 {
	width := f.High - f.Low + 1
	mask := uint32(1)<<width - 1
	return (reg >> f.Low) & mask
}

// L3 geometry fields, cpuid(0x4, 0x3).
var (
	l3WaysField       = bitField{Name: "ways", Low: 22, High: 31}       // ebx
	l3LineSizeField   = bitField{Name: "line_size", Low: 0, High: 11}   // ebx
	l3PartitionsField = bitField{Name: "partitions", Low: 12, High: 21} // ebx
)

// monitorPresenceField is cpuid(0x7,0).ebx bit 12: PQM (CMT/MBM) present.
var monitorPresenceField = bitField{Name: "pqm_present", Low: 12, High: 12}

// allocationPresenceField is cpuid(0x7,0).ebx bit 15: PQE (CAT) present.
var allocationPresenceField = bitField{Name: "pqe_present", Low: 15, High: 15}

// monQMSupportedField is cpuid(0xF,0).edx bit 1: L3 QoS monitoring supported.
var monQMSupportedField = bitField{Name: "l3_qm_supported", Low: 1, High: 1}

// monEventFields decode cpuid(0xF,1).edx; each bit set means the
// corresponding event type is present. Order matters: RMEM_BW is
// synthesized, not decoded directly, and is appended separately by the
// caller when both LMEM_BW and TMEM_BW bits are set.
var monEventFields = []struct {
	Bit  uint
	Type MonitorEventType
}{
	{Bit: 0, Type: L3Occupancy},
	{Bit: 1, Type: LocalMemBandwidth},
	{Bit: 2, Type: TotalMemBandwidth},
}

// l3AllocResourceIDField is cpuid(0x10,0).ebx bit 1: L3 CAT resource ID.
var l3AllocResourceIDField = bitField{Name: "l3_cat_resource_id", Low: 1, High: 1}

// otherAllocResourceIDs names the remaining documented resource IDs in
// cpuid(0x10,0).ebx, used only to produce an informative log line when
// set; the core does not act on them.
var otherAllocResourceIDs = []struct {
	Bit  uint
	Name string
}{
	{Bit: 2, Name: "L2 CAT"},
	{Bit: 3, Name: "MBA"},
}

// l3AllocCdpSupportedField is cpuid(0x10,1).ecx bit 2: CDP supported.
var l3AllocCdpSupportedField = bitField{Name: "cdp_supported", Low: 2, High: 2}

// cpuid(0x1,0).eax family/model/stepping fields, used to resolve a
// human-readable microarchitecture name for descriptive logging only.
var (
	cpuBaseModelField  = bitField{Name: "base_model", Low: 4, High: 7}
	cpuBaseFamilyField = bitField{Name: "base_family", Low: 8, High: 11}
	cpuExtModelField   = bitField{Name: "ext_model", Low: 16, High: 19}
	cpuExtFamilyField  = bitField{Name: "ext_family", Low: 20, High: 27}
)

// displayFamilyModel decodes cpuid(0x1,0).eax into the Intel SDM's
// DisplayFamily/DisplayModel pair.
func displayFamilyModel(eax uint32) (family, model int) {
	baseFamily := cpuBaseFamilyField.extract(eax)
	baseModel := cpuBaseModelField.extract(eax)
	family = int(baseFamily)
	model = int(baseModel)
	if baseFamily == 0x6 || baseFamily == 0xF {
		model = int(cpuExtModelField.extract(eax))<<4 | int(baseModel)
	}
	if baseFamily == 0xF {
		family = int(baseFamily) + int(cpuExtFamilyField.extract(eax))
	}
	return family, model
}

// MSR register addresses used by the configurator.
const (
	// msrL3QosCfg is L3_QOS_CFG: bit 0 enables CDP for the socket.
	msrL3QosCfg = 0xC81

	// msrL3CaClassMaskBase is the first class-of-service mask register;
	// class i's register address is msrL3CaClassMaskBase + i.
	msrL3CaClassMaskBase = 0xC90

	// msrPQRAssoc is PQR_ASSOC: bits 63..32 hold the class-of-service id
	// applied to the executing logical core.
	msrPQRAssoc = 0xC8F
)

// l3QosCfgCdpEnableField is L3_QOS_CFG bit 0.
var l3QosCfgCdpEnableField = bitField{Name: "cdp_en", Low: 0, High: 0}

// pqrAssocClassShift and pqrAssocClassMask locate PQR_ASSOC's class
// field, bits 32..63 (the high 32 bits of the 64-bit register); callers
// operate on it via the helpers below since bitField only models 32-bit
// registers.
const (
	pqrAssocClassShift = 32
	pqrAssocClassMask  = 0xFFFFFFFF
)

// classMaskRegister returns the MSR address of the class mask register
// for classID.
func classMaskRegister(classID uint32) uint32 {
	return msrL3CaClassMaskBase + classID
}

// waysMask returns the all-ways-open bitmask for numWays cache ways.
func waysMask(numWays uint32) uint64 {
	return 1<<numWays - 1
}

// setPQRAssocClass returns assoc with its class-of-service field replaced
// by classID, preserving the low 32 bits (RMID) untouched.
func setPQRAssocClass(assoc uint64, classID uint32) uint64 {
	low := assoc & pqrAssocClassMask
	return low | uint64(classID)<<pqrAssocClassShift
}

// pqrAssocClass returns the class-of-service field of assoc.
func pqrAssocClass(assoc uint64) uint32 {
	return uint32((assoc >> pqrAssocClassShift) & pqrAssocClassMask)
}

// cdpEnabled reports whether L3_QOS_CFG's CDP_EN bit is set.
func cdpEnabled(l3QosCfg uint64) bool {
	return l3QosCfgCdpEnableField.extract(uint32(l3QosCfg)) == 1
}

// withCdpBit returns l3QosCfg with CDP_EN set or cleared per on.
func withCdpBit(l3QosCfg uint64, on bool) uint64 {
	cleared := l3QosCfg &^ 1
	if on {
		return cleared | 1
	}
	return cleared
}
