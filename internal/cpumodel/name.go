// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package cpumodel

// serverNames maps the server-class model IDs most relevant to platform
// QoS features (CAT/CDP/CMT/MBM shipped first on Xeon server parts) to a
// human-readable microarchitecture name, for descriptive logging only.
var serverNames = map[int]string{
	INTEL_FAM6_HASWELL_X:       "Haswell-EP/EX",
	INTEL_FAM6_BROADWELL_X:     "Broadwell-EP/EX",
	INTEL_FAM6_BROADWELL_D:     "Broadwell-DE",
	INTEL_FAM6_SKYLAKE_X:       "Skylake-SP (or Cascade Lake-SP / Cooper Lake-SP, same model ID)",
	INTEL_FAM6_ICELAKE_X:       "Ice Lake-SP",
	INTEL_FAM6_ICELAKE_D:       "Ice Lake-D",
	INTEL_FAM6_SAPPHIRERAPIDS_X: "Sapphire Rapids-SP",
	INTEL_FAM6_EMERALDRAPIDS_X: "Emerald Rapids-SP",
}

// Name returns a human-readable microarchitecture name for model, or
// "unknown" if it isn't in the server-class table above.
func Name(model int) string {
	if name, ok := serverNames[model]; ok {
		return name
	}
	return "unknown"
}
