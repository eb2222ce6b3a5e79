// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jit

import (
	"testing"

	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/interp"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
)

func newTestManager(t *testing.T) (*Manager, *gmem.Memory) {
	t.Helper()
	mem := gmem.New()
	if !mem.Initialise() {
		t.Fatal("Initialise failed")
	}
	t.Cleanup(func() { mem.Close() })

	dec := decode.NewDecoder()
	reg := interp.NewRegistry()
	res := state.NewReservations()
	sys := kernel.New()

	return New(mem, dec, reg, res, sys, 0), mem
}

func TestGetCompilesAndCaches(t *testing.T) {
	m, mem := newTestManager(t)

	ga := mem.Alloc(gmem.Application, 4)
	if ga == 0 {
		t.Fatal("alloc failed")
	}
	// addi r3, 0, 42
	word := uint32(14)<<26 | 3<<21 | 0<<16 | 42
	gmem.Write[uint32](mem, ga, word)

	block1, ok := m.Get(ga)
	if !ok {
		t.Fatal("Get failed to compile")
	}
	block2, ok := m.Get(ga)
	if !ok {
		t.Fatal("Get failed on cache hit")
	}
	_ = block1
	_ = block2 // both draw from the same cache entry; Manager doesn't expose identity

	var s state.ThreadState
	s.NIA = ga
	next := block1(&s)
	if s.GPR[3] != 42 {
		t.Fatalf("GPR[3] = %d, want 42", s.GPR[3])
	}
	if next != ga+4 {
		t.Fatalf("next = %#x, want %#x", next, ga+4)
	}
}

func TestGetUnknownOpcodeFails(t *testing.T) {
	m, mem := newTestManager(t)
	ga := mem.Alloc(gmem.Application, 4)
	gmem.Write[uint32](mem, ga, uint32(62)<<26) // unregistered primary opcode

	if _, ok := m.Get(ga); ok {
		t.Fatal("expected Get to fail for undecodable word")
	}
}

func TestInvalidateAllClearsCache(t *testing.T) {
	m, mem := newTestManager(t)
	ga := mem.Alloc(gmem.Application, 4)
	gmem.Write[uint32](mem, ga, uint32(14)<<26|3<<21|42)

	if _, ok := m.Get(ga); !ok {
		t.Fatal("Get failed")
	}
	m.InvalidateAll()
	if len(m.cache) != 0 {
		t.Fatal("InvalidateAll did not clear cache")
	}
}

func TestGetSingleStopsAfterOneInstruction(t *testing.T) {
	m, mem := newTestManager(t)
	ga := mem.Alloc(gmem.Application, 8)
	// addi r3,0,1 ; addi r4,0,2
	gmem.Write[uint32](mem, ga, uint32(14)<<26|3<<21|1)
	gmem.Write[uint32](mem, ga+4, uint32(14)<<26|4<<21|2)

	block, ok := m.GetSingle(ga)
	if !ok {
		t.Fatal("GetSingle failed")
	}
	var s state.ThreadState
	s.NIA = ga
	next := block(&s)
	if s.GPR[3] != 1 {
		t.Fatalf("GPR[3] = %d, want 1", s.GPR[3])
	}
	if s.GPR[4] != 0 {
		t.Fatal("GetSingle must not execute past one instruction")
	}
	if next != ga+4 {
		t.Fatalf("next = %#x, want %#x", next, ga+4)
	}
}
