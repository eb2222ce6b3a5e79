// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"log"

	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/errors"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
	"github.com/kupua/espresso/trap"
)

// Mode selects how the loop dispatches decoded instructions.
type Mode int

const (
	Disabled Mode = iota
	Enabled
	Debug
)

// CompiledBlock is a JIT-compiled basic block: it mutates state in place
// and returns the guest PC execution should resume at.
type CompiledBlock func(*state.ThreadState) uint32

// JITProvider is the loop's view of the JIT code cache. The interp
// package only depends on this interface, not on package jit, since
// jit's fallback path depends on interp's Registry — a direct import
// the other way would cycle.
type JITProvider interface {
	Get(pc uint32) (CompiledBlock, bool)
	GetSingle(pc uint32) (CompiledBlock, bool)
}

// ComplianceChecker is the debug-compliance hook; it is invoked instead
// of a plain dispatch when Mode is Debug. It receives the shared
// Context, already positioned at the current instruction and its decode.
type ComplianceChecker interface {
	RunCompliant(c *Context, dec *decode.Decoded, reg *Registry, jitp JITProvider) error
}

// TraceRecord brackets one interpreted instruction.
type TraceRecord struct {
	Addr   uint32
	Word   uint32
	Before state.ThreadState
	After  state.ThreadState
}

// Loop is the fetch/decode/dispatch driver shared by every guest
// thread; each thread calls Execute/ExecuteSub with its own
// *state.ThreadState while sharing this Loop's Memory, Decoder, Registry,
// Reservations, and Syscalls.
type Loop struct {
	Memory       *gmem.Memory
	Decoder      *decode.Decoder
	Registry     *Registry
	Reservations *state.Reservations
	Syscalls     *kernel.Table

	Mode Mode
	JIT  JITProvider
	Compliance ComplianceChecker

	// Breakpoint is polled before fetch/decode; it may block. Interrupt
	// is polled at the top of every iteration and may mutate state.
	// Trace, if set, receives every interpreted instruction's
	// before/after snapshot; instructions run inside a JIT block are not
	// traced.
	Breakpoint func(addr uint32)
	Interrupt  func(s *state.ThreadState)
	Trace      func(TraceRecord)

	Logger *log.Logger
}

func (l *Loop) logf(format string, args ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// Execute runs s until nia reaches trap.CallbackAddr. The JIT cache is
// consulted only when the previous instruction was a taken branch (nia
// != cia+4), right after a JIT block returned, or on the first
// iteration, which enters at a forced address
// (a call/callback entry point); a cache lookup on every sequential
// instruction would never observe a cache miss worth paying for, since
// blocks already run every instruction up to their own block-ending
// branch.
func (l *Loop) Execute(s *state.ThreadState) error {
	jitEligible := true

	for !trap.IsCallback(s.NIA) {
		if l.Interrupt != nil {
			l.Interrupt(s)
			if trap.IsCallback(s.NIA) {
				break
			}
		}

		if l.Mode == Enabled && l.JIT != nil && jitEligible {
			if block, ok := l.JIT.Get(s.NIA); ok {
				s.CIA = s.NIA
				s.NIA = block(s)
				jitEligible = true
				continue
			}
		}

		if l.Breakpoint != nil {
			l.Breakpoint(s.NIA)
		}

		s.CIA = s.NIA
		s.NIA = s.CIA + 4

		word := gmem.Read[uint32](l.Memory, s.CIA)
		dec, ok := l.Decoder.Decode(word)
		if !ok {
			err := errors.UndecodedInstruction(s.CIA, word)
			l.logf("undecoded instruction at %#x: %#08x", s.CIA, word)
			return err
		}

		c := &Context{State: s, Memory: l.Memory, Reservations: l.Reservations, Syscalls: l.Syscalls}

		var before state.ThreadState
		if l.Trace != nil {
			before = *s
		}

		if l.Mode == Debug && l.Compliance != nil {
			if err := l.Compliance.RunCompliant(c, dec, l.Registry, l.JIT); err != nil {
				l.logf("compliance divergence at %#x: %v", s.CIA, err)
				return err
			}
		} else if err := l.Registry.Dispatch(c, dec); err != nil {
			l.logf("unimplemented handler %s at %#x", dec.Name, s.CIA)
			return err
		}

		if c.Err != nil {
			l.logf("kernel call error at %#x: %v", s.CIA, c.Err)
			return c.Err
		}

		jitEligible = s.NIA != s.CIA+4

		if l.Trace != nil {
			l.Trace(TraceRecord{Addr: s.CIA, Word: word, Before: before, After: *s})
		}
	}
	return nil
}

// ExecuteSub calls a guest function and regains control when it
// returns: it saves lr, sets lr to the callback sentinel so a guest
// `blr` exits the loop, runs the guest function starting at entry, then
// restores the caller's lr.
func (l *Loop) ExecuteSub(s *state.ThreadState, entry uint32) error {
	savedLR := s.LR
	s.LR = trap.CallbackAddr
	s.NIA = entry
	err := l.Execute(s)
	s.LR = savedLR
	return err
}
