// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel implements the syscall table the `kc` instruction
// dispatches through: host-implemented OS routines, resolved by name
// at registration time and addressed by a dense index at execution
// time.
package kernel

import (
	"sync"

	"github.com/kupua/espresso/state"
)

// Func is a host-implemented syscall. It reads arguments from r3..r10/
// f1..f13 of the calling thread and writes its result into r3/f1, per
// the PPC calling convention.
type Func func(t *state.ThreadState)

// entry is a registered syscall: its resolved name and implementation.
type entry struct {
	name string
	call Func
}

// Table maps syscall names to dense, registration-order indexes,
// mirroring how an import resolver binds a loader's external symbols
// to a vector position by exact name match.
type Table struct {
	mu      sync.RWMutex
	byName  map[string]int
	entries []entry
}

// New returns an empty syscall table.
func New() *Table {
	return &Table{byName: make(map[string]int)}
}

// RegisterSyscall binds name to fn. If name was already registered, its
// existing index is rebound to fn; otherwise a new dense index is
// assigned.
func (t *Table) RegisterSyscall(name string, fn Func) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if idx, ok := t.byName[name]; ok {
		t.entries[idx].call = fn
		return idx
	}

	idx := len(t.entries)
	t.entries = append(t.entries, entry{name: name, call: fn})
	t.byName[name] = idx
	return idx
}

// Resolve returns the dense index bound to name, or ok=false if no
// syscall has been registered under that name. Loaders use this to turn
// an imported symbol into a kcn value at load time.
func (t *Table) Resolve(name string) (index int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	index, ok = t.byName[name]
	return
}

// GetSyscall returns the name and implementation bound to index, or
// ok=false if index is out of range.
func (t *Table) GetSyscall(index int) (name string, fn Func, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || index >= len(t.entries) {
		return "", nil, false
	}
	e := t.entries[index]
	return e.name, e.call, true
}

// Len reports how many syscalls are registered.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
