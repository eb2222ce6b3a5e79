// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jit implements the code cache and compile manager. Concrete
// host-ISA code generation is out of scope; every opcode compiles to a
// fallback trampoline that calls straight back into an interp.Registry
// handler, so the cache's contract (get/getSingle/execute/invalidateAll)
// is fully exercised without ever emitting host machine code.
package jit

import (
	"sync"

	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/errors"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/interp"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
)

// Codegen compiles one instruction to native host code appended to buf,
// returning the updated buffer. No codegen is registered by this repo;
// the type exists so a real backend can be wired in via
// RegisterInstruction without changing the manager's contract.
type Codegen func(dec *decode.Decoded, buf []byte) []byte

// entry is what the manager knows about compiling one InstructionID: a
// native codegen function, or nothing (meaning: always fall back).
type entry struct {
	codegen Codegen
}

// Manager is the JIT compile manager and code cache. It implements
// interp.JITProvider so an interp.Loop can drive it directly.
type Manager struct {
	Memory       *gmem.Memory
	Decoder      *decode.Decoder
	Registry     *interp.Registry
	Reservations *state.Reservations
	Syscalls     *kernel.Table

	maxBlockLen int

	mu       sync.Mutex
	entries  map[decode.InstructionID]*entry
	fallback map[decode.InstructionID]bool
	cache    map[uint32]interp.CompiledBlock
	single   map[uint32]interp.CompiledBlock
}

// New returns a Manager with an empty cache. maxBlockLen bounds the
// number of instructions get() will fold into one block, in addition to
// the natural basic-block boundary; 0 means no per-length cap.
func New(mem *gmem.Memory, dec *decode.Decoder, reg *interp.Registry, res *state.Reservations, sys *kernel.Table, maxBlockLen int) *Manager {
	return &Manager{
		Memory:       mem,
		Decoder:      dec,
		Registry:     reg,
		Reservations: res,
		Syscalls:     sys,
		maxBlockLen:  maxBlockLen,
		entries:      make(map[decode.InstructionID]*entry),
		fallback:     make(map[decode.InstructionID]bool),
		cache:        make(map[uint32]interp.CompiledBlock),
		single:       make(map[uint32]interp.CompiledBlock),
	}
}

// RegisterInstruction records native codegen for id. compile does not
// call it: an id with codegen registered is compilable, but still runs
// through the fallback trampoline.
func (m *Manager) RegisterInstruction(id decode.InstructionID, gen Codegen) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = &entry{codegen: gen}
}

// RegisterInstructionFallback marks id as fallback-only: every
// occurrence compiles to a trampoline into the interpreter handler.
// An id is compilable if it has native codegen, a fallback registration,
// or a handler in Registry, so ids with a Registry handler compile
// without this call.
func (m *Manager) RegisterInstructionFallback(id decode.InstructionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback[id] = true
}

func (m *Manager) canCompile(id decode.InstructionID) bool {
	if _, ok := m.entries[id]; ok {
		return true
	}
	return m.fallback[id] || m.Registry.HasHandler(id)
}

// fallbackBlock returns a CompiledBlock that runs dec through the
// interpreter's registered handler for a single instruction, without
// emitting any host code: the "call" is a direct Go function call
// instead of a jump to a generated stub.
func (m *Manager) fallbackBlock(dec *decode.Decoded, ea uint32) interp.CompiledBlock {
	return func(s *state.ThreadState) uint32 {
		s.CIA = ea
		s.NIA = ea + 4
		c := &interp.Context{State: s, Memory: m.Memory, Reservations: m.Reservations, Syscalls: m.Syscalls}
		m.Registry.Dispatch(c, dec)
		return s.NIA
	}
}

// isBlockEnd reports whether dec ends a basic block: any branch, any
// kernel call, or any SPR move whose side effect exits the
// architectural model.
func isBlockEnd(dec *decode.Decoded) bool {
	switch dec.ID {
	case decode.B, decode.BC, decode.BCLR, decode.BCCTR, decode.KC, decode.MTSPR:
		return true
	default:
		return false
	}
}

// compile builds a block starting at pc, running up to maxBlockLen
// instructions or a block-ending instruction, whichever comes first; a
// later word that does not decode ends the block just before it.
// Every step's fallback closure is chained: a multi-instruction block is
// just a sequence of single-instruction fallbacks that thread s.NIA
// forward, since this manager registers no native codegen.
func (m *Manager) compile(pc uint32, single bool) (interp.CompiledBlock, error) {
	var steps []interp.CompiledBlock
	addr := pc
	for {
		word := gmem.Read[uint32](m.Memory, addr)
		dec, ok := m.Decoder.Decode(word)
		if !ok {
			if len(steps) > 0 {
				// End the block before a word that does not decode; the
				// loop interprets that word and reports the error itself.
				break
			}
			return nil, errors.UndecodedInstruction(addr, word)
		}
		if !m.canCompile(dec.ID) {
			return nil, errors.UnimplementedHandler(dec.Name)
		}
		steps = append(steps, m.fallbackBlock(dec, addr))

		if single || isBlockEnd(dec) {
			break
		}
		if m.maxBlockLen > 0 && len(steps) >= m.maxBlockLen {
			break
		}
		addr += 4
	}

	return func(s *state.ThreadState) uint32 {
		next := s.NIA
		for _, step := range steps {
			next = step(s)
			if next != s.CIA+4 {
				// A taken branch or trap redirected control flow;
				// abandon the rest of this block.
				break
			}
		}
		return next
	}, nil
}

// Get returns a multi-instruction block starting at pc, compiling on
// first miss. The lookup-then-insert sequence is serialised by mu so
// concurrent callers for the same pc observe at most one compile.
func (m *Manager) Get(pc uint32) (interp.CompiledBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.cache[pc]; ok {
		return b, true
	}
	b, err := m.compile(pc, false)
	if err != nil {
		return nil, false
	}
	m.cache[pc] = b
	return b, true
}

// GetSingle returns a one-instruction block, used only in
// debug-compliance mode.
func (m *Manager) GetSingle(pc uint32) (interp.CompiledBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.single[pc]; ok {
		return b, true
	}
	b, err := m.compile(pc, true)
	if err != nil {
		return nil, false
	}
	m.single[pc] = b
	return b, true
}

// InvalidateAll clears both caches. This is coarse: invalidate-all on
// guest memory unmap or explicit request, with no fine-grained
// watchpoint tracking.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[uint32]interp.CompiledBlock)
	m.single = make(map[uint32]interp.CompiledBlock)
}
