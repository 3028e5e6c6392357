// Copyright (C) 2023 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//go:build linux && amd64

package pqos

import (
	"fmt"
	"strings"
)

// InvalidParamError indicates the caller violated a precondition: a nil
// output pointer, an empty caller-supplied topology, a REQUIRE_ON request
// the platform cannot satisfy, or an unrecognized configuration value.
type InvalidParamError struct {
	Reason string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter: %s", e.Reason)
}

// NotSupportedError indicates a requested capability is absent on this
// platform: no monitoring and no allocation support at all, or a specific
// resource the caller asked about.
type NotSupportedError struct {
	Reason string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("not supported: %s", e.Reason)
}

// HwError wraps a failure surfaced by a CPUID or MSR primitive, or a
// cross-socket hardware inconsistency detected while reconciling state
// (e.g. CDP reported as enabled on one socket and disabled on another).
// It is never retried internally.
type HwError struct {
	Reason string
	Err    error
}

func (e *HwError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hardware error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("hardware error: %s", e.Reason)
}

func (e *HwError) Unwrap() error {
	return e.Err
}

// InitStateError indicates an entrypoint was called in the wrong lifecycle
// state: Init called twice, or Fini/GetCapabilities called before Init.
type InitStateError struct {
	Operation string
	Want      LifecycleState
	Got       LifecycleState
}

func (e *InitStateError) Error() string {
	return fmt.Sprintf("%s requires library state %s, got %s", e.Operation, e.Want, e.Got)
}

// OutOfMemoryError indicates an allocation backing the capability snapshot
// or a subsystem's bookkeeping could not be made.
type OutOfMemoryError struct {
	Reason string
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: %s", e.Reason)
}

// GenericError is a composite failure: it accumulates the descriptions of
// several independent sub-failures (e.g. both the monitoring and the
// allocation subsystem failed to come up during Init) and reports them
// together rather than hiding all but the first.
type GenericError struct {
	errs []string
}

// add appends an error message to the receiver's slice of sub-errors.
func (e *GenericError) add(errMsg string) {
	e.errs = append(e.errs, errMsg)
}

// hasErrors reports whether any sub-error has been recorded.
func (e *GenericError) hasErrors() bool {
	return len(e.errs) > 0
}

// Error returns a string joining all recorded sub-error descriptions.
func (e *GenericError) Error() string {
	return strings.Join(e.errs, "; ")
}
