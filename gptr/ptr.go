// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gptr implements guest pointers: a guest address plus a
// compile-time flag for whether the pointer's own storage is
// big-endian.
//
// Go has no boolean const generic, so the two forms are two named
// types here: Ptr (native-endian storage, for host-owned scratch) and
// BEPtr (big-endian storage, for guest-visible structures).
package gptr

import (
	"unsafe"

	"github.com/kupua/espresso/bitutil"
	"github.com/kupua/espresso/gmem"
)

// Ptr is a guest pointer stored in native host byte order.
type Ptr[T any] struct {
	addr uint32
}

// BEPtr is a guest pointer whose own 4-byte storage is big-endian, for
// embedding inside guest-visible structures.
type BEPtr[T any] struct {
	raw uint32
}

// Null returns the null pointer, address 0.
func Null[T any]() Ptr[T] { return Ptr[T]{} }

// FromAddress wraps a raw guest address.
func FromAddress[T any](addr uint32) Ptr[T] { return Ptr[T]{addr} }

// Address returns the decoded guest address.
func (p Ptr[T]) Address() uint32 { return p.addr }

// Address returns the decoded guest address, undoing the big-endian
// storage encoding.
func (p BEPtr[T]) Address() uint32 { return bitutil.Swap32(p.raw) }

// IsNull reports whether the pointer's address is the null sentinel.
func (p Ptr[T]) IsNull() bool { return p.addr == 0 }

// IsNull reports whether the pointer's address is the null sentinel.
func (p BEPtr[T]) IsNull() bool { return p.raw == 0 }

// ToBE re-encodes p for storage inside a guest-visible structure:
// assignment across endiannesses re-encodes the stored address.
func (p Ptr[T]) ToBE() BEPtr[T] { return BEPtr[T]{raw: bitutil.Swap32(p.addr)} }

// ToNative decodes a big-endian-stored pointer into native form.
func (p BEPtr[T]) ToNative() Ptr[T] { return Ptr[T]{addr: p.Address()} }

// Get translates p to a host pointer to T. Byte-swapping is T's own
// concern (a T with big-endian scalar fields decodes them itself); Get
// mirrors virtual_ptr::get()'s plain reinterpret_cast, not a typed
// gmem.Read.
func (p Ptr[T]) Get(mem *gmem.Memory) *T {
	return (*T)(mem.Translate(p.addr))
}

// Get translates p to a host pointer to T.
func (p BEPtr[T]) Get(mem *gmem.Memory) *T {
	return (*T)(mem.Translate(p.Address()))
}

// elemSize returns sizeof(T) the way pointer arithmetic needs it.
func elemSize[T any]() uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero))
}

// Add returns a pointer offset by n elements of type T.
func (p Ptr[T]) Add(n int32) Ptr[T] {
	return Ptr[T]{addr: uint32(int64(p.addr) + int64(n)*int64(elemSize[T]()))}
}

// Add returns a pointer offset by n elements of type T.
func (p BEPtr[T]) Add(n int32) BEPtr[T] {
	native := p.ToNative().Add(n)
	return native.ToBE()
}

// Equal compares by decoded address, never raw storage.
func (p Ptr[T]) Equal(q Ptr[T]) bool { return p.Address() == q.Address() }

// EqualBE compares a native pointer against a big-endian-stored one by
// decoded address.
func (p Ptr[T]) EqualBE(q BEPtr[T]) bool { return p.Address() == q.Address() }

// FromHostPointer untranslates a host pointer obtained from Get back into
// a guest pointer.
func FromHostPointer[T any](mem *gmem.Memory, host *T) (Ptr[T], error) {
	ga, err := mem.Untranslate(unsafe.Pointer(host))
	if err != nil {
		return Ptr[T]{}, err
	}
	return Ptr[T]{addr: ga}, nil
}
