// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gmem implements the guest virtual memory subsystem: a
// reserved 4 GiB host VA window, a paged allocator per tagged view, and
// typed endian-aware read/write. It follows the mmap-then-protect idiom
// of a reference runner's memory setup, widened from per-buffer mmaps
// to a single reserved window with per-view protection.
package gmem

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/kupua/espresso/errors"
)

// addressSpace is the full 32-bit guest address range.
const addressSpace = 1 << 32

// Memory reserves one contiguous host VA window and maps the fixed set
// of views into it, so that translate(ga) == mBase+ga always holds.
type Memory struct {
	mu    sync.Mutex
	base  []byte
	views [numViews]View
}

// New returns an unmapped Memory. Call Initialise before use.
func New() *Memory {
	return &Memory{views: defaultViews()}
}

// Initialise reserves the 4 GiB window and maps every view into it. It is
// not safe to call concurrently with itself or with any other method.
func (m *Memory) Initialise() bool {
	if m.base != nil {
		return true
	}

	base, err := unix.Mmap(-1, 0, addressSpace, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return false
	}

	if !m.tryMapViews(base) {
		unix.Munmap(base)
		return false
	}

	m.base = base
	for i := range m.views {
		v := &m.views[i]
		v.pages = make([]pageEntry, v.numPages())
	}
	return true
}

// tryMapViews widens protection over each declared view's sub-range. On
// any failure it re-protects the views that had already succeeded back
// to PROT_NONE and fails the whole operation.
func (m *Memory) tryMapViews(base []byte) bool {
	for i, v := range m.views {
		sub := base[v.Start:v.End]
		if err := unix.Mprotect(sub, unix.PROT_READ|unix.PROT_WRITE); err != nil {
			for j := 0; j < i; j++ {
				prev := m.views[j]
				unix.Mprotect(base[prev.Start:prev.End], unix.PROT_NONE)
			}
			return false
		}
	}
	return true
}

// Close releases the reserved window.
func (m *Memory) Close() error {
	if m.base == nil {
		return nil
	}
	err := unix.Munmap(m.base)
	m.base = nil
	return err
}

// Base returns the host address of guest address zero.
func (m *Memory) Base() uintptr {
	if len(m.base) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&m.base[0]))
}

func (m *Memory) viewByTag(tag ViewTag) *View {
	for i := range m.views {
		if m.views[i].Tag == tag {
			return &m.views[i]
		}
	}
	return nil
}

func (m *Memory) viewByAddress(ga uint32) *View {
	for i := range m.views {
		if m.views[i].contains(ga) {
			return &m.views[i]
		}
	}
	return nil
}

// Valid reports whether ga falls inside a mapped view.
func (m *Memory) Valid(ga uint32) bool {
	if ga == 0 {
		return false
	}
	return m.viewByAddress(ga) != nil
}

// Alloc reserves the first free run of pages able to hold size bytes in
// the view tagged type, returning its guest address or 0 on allocation
// failure.
func (m *Memory) Alloc(tag ViewTag, size uint32) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.viewByTag(tag)
	if v == nil || size == 0 {
		return 0
	}

	n := pageCount(size, v.PageSize)
	first, ok := v.findFreeRun(n)
	if !ok {
		return 0
	}

	v.markAllocated(first, n)
	return v.Start + first*v.PageSize
}

// AllocFixed reserves size bytes at exactly ga, failing if any page in the
// range is already allocated.
func (m *Memory) AllocFixed(ga uint32, size uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.viewByAddress(ga)
	if v == nil || size == 0 {
		return false
	}
	if (ga-v.Start)%v.PageSize != 0 {
		return false
	}

	first := (ga - v.Start) / v.PageSize
	n := pageCount(size, v.PageSize)
	if first+n > uint32(len(v.pages)) {
		return false
	}

	for i := uint32(0); i < n; i++ {
		// Pages of a run based at page 0 carry basePage 0 like free
		// pages; page 0's runLength covers them.
		if v.pages[first+i].allocated || v.pages[first+i].basePage != 0 || first+i < v.pages[0].runLength {
			return false
		}
	}

	v.markAllocated(first, n)
	return true
}

// Free releases the allocation whose first page is at ga.
func (m *Memory) Free(ga uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.viewByAddress(ga)
	if v == nil {
		return false
	}
	if (ga-v.Start)%v.PageSize != 0 {
		return false
	}

	idx := (ga - v.Start) / v.PageSize
	if idx >= uint32(len(v.pages)) || !v.pages[idx].allocated {
		return false
	}

	n := v.pages[idx].runLength
	for i := uint32(0); i < n; i++ {
		v.pages[idx+i] = pageEntry{}
	}
	return true
}

func pageCount(size, pageSize uint32) uint32 {
	return (size + pageSize - 1) / pageSize
}

func (v *View) findFreeRun(n uint32) (first uint32, ok bool) {
	count := uint32(len(v.pages))
	if n == 0 || n > count {
		return 0, false
	}

	run := uint32(0)
	for i := uint32(0); i < count; i++ {
		// Pages of a run based at page 0 carry basePage 0 like free
		// pages; page 0's runLength covers them.
		if v.pages[i].allocated || v.pages[i].basePage != 0 || i < v.pages[0].runLength {
			run = 0
			continue
		}
		run++
		if run == n {
			return i - n + 1, true
		}
	}
	return 0, false
}

func (v *View) markAllocated(first, n uint32) {
	v.pages[first] = pageEntry{allocated: true, runLength: n, basePage: first}
	for i := uint32(1); i < n; i++ {
		v.pages[first+i] = pageEntry{basePage: first}
	}
}

// Translate returns the host pointer for ga, or nil if ga is the null
// sentinel.
func (m *Memory) Translate(ga uint32) unsafe.Pointer {
	if ga == 0 {
		return nil
	}
	return unsafe.Pointer(&m.base[ga])
}

// Untranslate recovers the guest address of a host pointer previously
// returned by Translate. A nil pointer untranslates to 0. Any other
// pointer outside the reserved window is a programmer error and
// reported as InvalidHostPointer.
func (m *Memory) Untranslate(p unsafe.Pointer) (uint32, error) {
	if p == nil {
		return 0, nil
	}

	base := uintptr(unsafe.Pointer(&m.base[0]))
	ptr := uintptr(p)

	if ptr <= base || ptr > base+addressSpace {
		return 0, errors.InvalidHostPointer(ptr)
	}
	return uint32(ptr - base), nil
}
