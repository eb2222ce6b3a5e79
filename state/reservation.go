// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import "sync"

// Reservations tracks the (thread, reserved address) pairs lwarx/stwcx.
// need across threads (Design Note 9.4): any store to a reserved address,
// by any thread, must clear every thread's reservation on that address.
// This lives outside ThreadState because breaking a reservation is a
// cross-thread side effect, not a purely local one.
type Reservations struct {
	mu      sync.Mutex
	holders map[uint64]uint32 // threadID -> reserved address
}

// NewReservations returns an empty reservation table.
func NewReservations() *Reservations {
	return &Reservations{holders: make(map[uint64]uint32)}
}

// Acquire records that thread now holds a reservation on addr, replacing
// any reservation it previously held.
func (r *Reservations) Acquire(threadID uint64, addr uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holders[threadID] = addr
}

// Break clears every thread's reservation on addr. Called on every
// store (from any thread) to addr.
func (r *Reservations) Break(addr uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, held := range r.holders {
		if held == addr {
			delete(r.holders, id)
		}
	}
}

// Release clears thread's reservation unconditionally (context switch).
func (r *Reservations) Release(threadID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.holders, threadID)
}

// Held reports whether thread currently holds a reservation on addr.
func (r *Reservations) Held(threadID uint64, addr uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	held, ok := r.holders[threadID]
	return ok && held == addr
}
