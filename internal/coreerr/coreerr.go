// Copyright (c) 2019 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coreerr defines the core's concrete error types. The public
// errors package re-exports the ones callers are meant to type-switch on.
package coreerr

import "fmt"

type decodeError struct {
	addr uint32
	word uint32
}

func UndecodedInstruction(addr, word uint32) error {
	return &decodeError{addr, word}
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("undecoded instruction %#08x at %#08x", e.word, e.addr)
}

func (e *decodeError) UndecodedInstruction() bool { return true }

type handlerError struct {
	name string
}

func UnimplementedHandler(name string) error {
	return &handlerError{name}
}

func (e *handlerError) Error() string {
	return fmt.Sprintf("unimplemented interpreter handler: %s", e.name)
}

func (e *handlerError) UnimplementedHandler() bool { return true }

type syscallError struct {
	name string
}

func UnimplementedSyscall(name string) error {
	return &syscallError{name}
}

func (e *syscallError) Error() string {
	return fmt.Sprintf("unimplemented kernel call: %s", e.name)
}

func (e *syscallError) UnimplementedSyscall() bool { return true }

type hostPointerError struct {
	ptr uintptr
}

func InvalidHostPointer(ptr uintptr) error {
	return &hostPointerError{ptr}
}

func (e *hostPointerError) Error() string {
	return fmt.Sprintf("host pointer %#x is outside the guest address window", e.ptr)
}

func (e *hostPointerError) InvalidHostPointer() bool { return true }

type complianceError struct {
	fields []string
}

func ComplianceDivergence(fields []string) error {
	return &complianceError{fields}
}

func (e *complianceError) Error() string {
	return fmt.Sprintf("interpreter/JIT state diverged on fields: %v", e.fields)
}

func (e *complianceError) ComplianceDivergence() bool { return true }
func (e *complianceError) Fields() []string           { return e.fields }
