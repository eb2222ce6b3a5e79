// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package interp implements the architectural interpreter: one handler
// per InstructionID registered into a dense table, plus the
// fetch/decode/dispatch loop.
package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/errors"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
)

// Handler executes one decoded instruction against live thread state.
// Handlers signal a taken branch by writing c.State.NIA directly; the loop
// pre-sets NIA = CIA+4 before dispatch, so an untaken instruction's
// default fall-through needs no explicit write.
type Handler func(c *Context, dec *decode.Decoded)

// Context bundles everything a handler needs: the thread it's mutating,
// the shared memory and reservation table, and the syscall table for `kc`.
type Context struct {
	State        *state.ThreadState
	Memory       *gmem.Memory
	Reservations *state.Reservations
	Syscalls     *kernel.Table

	// Err is set by a handler that hit a fatal, per-instruction condition
	// (an unresolved kernel call). The loop checks it after dispatch,
	// alongside Dispatch's own UnimplementedHandler case.
	Err error
}

// Registry is the dense, InstructionID-indexed handler table.
// Registration is idempotent: registering the same ID twice simply
// replaces the entry, matching the kernel syscall table's
// replace-on-duplicate rule.
type Registry struct {
	handlers [decode.Count]Handler
}

// NewRegistry returns a Registry with every handler this package implements
// already installed (see handlers_*.go). Embedders may still call Register
// to override or add entries before the first Execute/ExecuteSub call.
func NewRegistry() *Registry {
	r := &Registry{}
	registerBranchHandlers(r)
	registerIntegerHandlers(r)
	registerConditionHandlers(r)
	registerLoadStoreHandlers(r)
	registerFloatHandlers(r)
	registerPairedHandlers(r)
	registerSystemHandlers(r)
	registerKernelHandler(r)
	return r
}

// Register installs fn as the handler for id, replacing any prior entry.
func (r *Registry) Register(id decode.InstructionID, fn Handler) {
	r.handlers[id] = fn
}

// HasHandler reports whether id has a registered handler.
func (r *Registry) HasHandler(id decode.InstructionID) bool {
	return r.handlers[id] != nil
}

// Dispatch runs the handler for dec.ID, or returns UnimplementedHandler
// if none is registered.
func (r *Registry) Dispatch(c *Context, dec *decode.Decoded) error {
	h := r.handlers[dec.ID]
	if h == nil {
		return errors.UnimplementedHandler(dec.Name)
	}
	h(c, dec)
	return nil
}
