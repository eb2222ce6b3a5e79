// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compliance

import (
	"testing"

	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/gmem"
	"github.com/kupua/espresso/interp"
	"github.com/kupua/espresso/jit"
	"github.com/kupua/espresso/kernel"
	"github.com/kupua/espresso/state"
	"github.com/kupua/espresso/trap"
)

// TestDebugModeNoDivergence runs the add-chain scenario under
// debug-compliance mode and checks it reports no divergence and leaves
// the same final state an interpreter-only run would.
func TestDebugModeNoDivergence(t *testing.T) {
	mem := gmem.New()
	if !mem.Initialise() {
		t.Fatal("Initialise failed")
	}
	defer mem.Close()

	dec := decode.NewDecoder()
	reg := interp.NewRegistry()
	res := state.NewReservations()
	sys := kernel.New()
	mgr := jit.New(mem, dec, reg, res, sys, 0)

	ga := mem.Alloc(gmem.Application, 16)
	words := []uint32{
		uint32(14)<<26 | 3<<21 | 0<<16 | 5,    // addi r3,0,5
		uint32(14)<<26 | 4<<21 | 0<<16 | 7,    // addi r4,0,7
		uint32(31)<<26 | 5<<21 | 3<<16 | 4<<11 | 266<<1, // add r5,r3,r4
		uint32(19)<<26 | 20<<21 | 0<<16 | 16<<1,         // blr
	}
	for i, w := range words {
		gmem.Write[uint32](mem, ga+uint32(i*4), w)
	}

	loop := &interp.Loop{
		Memory:       mem,
		Decoder:      dec,
		Registry:     reg,
		Reservations: res,
		Syscalls:     sys,
		Mode:         interp.Debug,
		JIT:          mgr,
		Compliance:   Checker{},
	}

	var s state.ThreadState
	s.LR = trap.CallbackAddr
	s.NIA = ga

	if err := loop.Execute(&s); err != nil {
		t.Fatalf("Execute reported divergence or error: %v", err)
	}
	if s.GPR[5] != 12 {
		t.Fatalf("GPR[5] = %d, want 12", s.GPR[5])
	}
}
