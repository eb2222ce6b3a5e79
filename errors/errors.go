// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors exports the core's error kinds without pulling in the
// decode/interp/jit/gmem packages themselves.
package errors

import (
	"golang.org/x/xerrors"

	"github.com/kupua/espresso/internal/coreerr"
)

// UndecodedInstruction wraps an encoding the decoder could not
// classify. The interpreter loop treats it as fatal for the owning
// thread.
func UndecodedInstruction(addr, word uint32) error {
	return xerrors.Errorf("decode: %w", coreerr.UndecodedInstruction(addr, word))
}

// UnimplementedHandler wraps a decoded instruction with no registered
// interpreter handler.
func UnimplementedHandler(name string) error {
	return xerrors.Errorf("dispatch: %w", coreerr.UnimplementedHandler(name))
}

// UnimplementedSyscall wraps a kernel call whose kci (implementation
// present) flag is clear.
func UnimplementedSyscall(name string) error {
	return xerrors.Errorf("kernel call: %w", coreerr.UnimplementedSyscall(name))
}

// InvalidHostPointer wraps an untranslate() call on a pointer outside the
// guest window; a programmer error, not a guest-recoverable condition.
func InvalidHostPointer(ptr uintptr) error {
	return xerrors.Errorf("untranslate: %w", coreerr.InvalidHostPointer(ptr))
}

// ComplianceDivergence wraps a debug-mode interpreter/JIT state mismatch,
// naming the fields that differed.
func ComplianceDivergence(fields []string) error {
	return xerrors.Errorf("compliance: %w", coreerr.ComplianceDivergence(fields))
}

// IsUndecodedInstruction reports whether err (or its chain) is an
// UndecodedInstruction.
func IsUndecodedInstruction(err error) bool {
	var e interface{ UndecodedInstruction() bool }
	return xerrors.As(err, &e)
}

// IsUnimplementedHandler reports whether err (or its chain) is an
// UnimplementedHandler.
func IsUnimplementedHandler(err error) bool {
	var e interface{ UnimplementedHandler() bool }
	return xerrors.As(err, &e)
}

// IsUnimplementedSyscall reports whether err (or its chain) is an
// UnimplementedSyscall.
func IsUnimplementedSyscall(err error) bool {
	var e interface{ UnimplementedSyscall() bool }
	return xerrors.As(err, &e)
}

// IsInvalidHostPointer reports whether err (or its chain) is an
// InvalidHostPointer.
func IsInvalidHostPointer(err error) bool {
	var e interface{ InvalidHostPointer() bool }
	return xerrors.As(err, &e)
}

// DivergedFields returns the field names an interpreter/JIT compliance
// divergence reported, or nil if err is not one.
func DivergedFields(err error) []string {
	var e interface{ Fields() []string }
	if xerrors.As(err, &e) {
		return e.Fields()
	}
	return nil
}
