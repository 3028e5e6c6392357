// Copyright (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import "strings"

// catBrandAllowList is the fallback table of CPU brand-string substrings
// known to support L3 CAT without advertising it via cpuid(0x7,0).ebx bit
// 15. It is treated as frozen data, not logic: do not add heuristics
// around it, only entries.
var catBrandAllowList = []string{
	"E5-2658 v3",
	"E5-2650 v4",
	"E5-2690 v4",
	"E5-2699 v4",
	"E5-2680 v3",
	"E5-2695 v3",
}

// brandStringSupportsCAT reports whether brand matches an entry in the
// fallback allow-list.
func brandStringSupportsCAT(brand string) bool {
	for _, s := range catBrandAllowList {
		if strings.Contains(brand, s) {
			return true
		}
	}
	return false
}

// fallbackNumClasses is the hardware class count assumed on the
// brand-string fallback path; CDP is never supported there.
const fallbackNumClasses = 4
