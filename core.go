// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package espresso wires the guest memory, decoder, interpreter, JIT
// manager, and syscall table into one execution core: process-wide
// services owned by a root execution context, injected into threads
// rather than accessed through ambient globals.
package espresso

import (
	"log"

	"github.com/kupua/espresso/compliance"
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/interp"
	"github.com/kupua/espresso/jit"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
)

// Option configures a Core at construction time.
type Option func(*Core)

// WithJITMode selects Disabled/Enabled/Debug.
func WithJITMode(mode interp.Mode) Option {
	return func(c *Core) { c.loop.Mode = mode }
}

// WithLogger installs a logger the interpreter loop reports decode and
// dispatch failures to; nil (the default) discards them.
func WithLogger(l *log.Logger) Option {
	return func(c *Core) { c.loop.Logger = l }
}

// WithMaxBlockLength caps how many instructions a single JIT block folds
// together.
func WithMaxBlockLength(n int) Option {
	return func(c *Core) { c.maxBlockLen = n }
}

// WithTrace installs a per-instruction trace sink.
func WithTrace(fn func(interp.TraceRecord)) Option {
	return func(c *Core) { c.loop.Trace = fn }
}

// WithBreakpointHook installs the debug-control hook polled before every
// fetch/decode.
func WithBreakpointHook(fn func(addr uint32)) Option {
	return func(c *Core) { c.loop.Breakpoint = fn }
}

// WithInterruptHook installs the non-blocking interrupt poll run at the
// top of every loop iteration.
func WithInterruptHook(fn func(*state.ThreadState)) Option {
	return func(c *Core) { c.loop.Interrupt = fn }
}

// Core is the process-wide execution context: one Memory, one Decoder,
// one handler Registry, one JIT Manager, one Reservations table, and one
// syscall Table, shared by every guest thread created with NewThreadState.
type Core struct {
	Memory       *gmem.Memory
	Decoder      *decode.Decoder
	Registry     *interp.Registry
	Reservations *state.Reservations
	Syscalls     *kernel.Table
	JIT          *jit.Manager

	loop        interp.Loop
	maxBlockLen int
}

// New builds a Core: reserves and maps guest memory, constructs the
// decoder and handler registry, and wires the JIT manager's fallback
// path to the registry. Initialisation failure (the 4 GiB reservation
// couldn't be mapped) returns a nil Core and false.
func New(opts ...Option) (*Core, bool) {
	c := &Core{
		Memory:       gmem.New(),
		Decoder:      decode.NewDecoder(),
		Registry:     interp.NewRegistry(),
		Reservations: state.NewReservations(),
		Syscalls:     kernel.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.Memory.Initialise() {
		return nil, false
	}

	c.JIT = jit.New(c.Memory, c.Decoder, c.Registry, c.Reservations, c.Syscalls, c.maxBlockLen)

	c.loop.Memory = c.Memory
	c.loop.Decoder = c.Decoder
	c.loop.Registry = c.Registry
	c.loop.Reservations = c.Reservations
	c.loop.Syscalls = c.Syscalls
	c.loop.JIT = c.JIT
	if c.loop.Mode == interp.Debug {
		c.loop.Compliance = compliance.Checker{}
	}

	return c, true
}

// Close releases the guest memory mapping.
func (c *Core) Close() error {
	return c.Memory.Close()
}

// NewThreadState returns a zeroed ThreadState tagged with threadID, ready
// to be passed to Execute/ExecuteSub.
func (c *Core) NewThreadState(threadID uint64) *state.ThreadState {
	return &state.ThreadState{ThreadID: threadID}
}

// Execute runs s until the callback sentinel is reached.
func (c *Core) Execute(s *state.ThreadState) error {
	return c.loop.Execute(s)
}

// ExecuteSub calls the guest function at entry and returns when it does.
func (c *Core) ExecuteSub(s *state.ThreadState, entry uint32) error {
	return c.loop.ExecuteSub(s, entry)
}
