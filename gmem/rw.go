// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmem

import (
	"math"
	"unsafe"

	"github.com/kupua/espresso/bitutil"
)

// Scalar is the set of types typed guest memory access supports: every
// integer width up to 64 bits, and both float widths (treated as an
// integer of matching width for byte-swap purposes).
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// ReadNoSwap loads a value of type T from ga without any endian
// conversion: the raw host-order bytes are reinterpreted as T.
func ReadNoSwap[T Scalar](m *Memory, ga uint32) T {
	return *(*T)(m.Translate(ga))
}

// WriteNoSwap stores v at ga without any endian conversion.
func WriteNoSwap[T Scalar](m *Memory, ga uint32, v T) {
	*(*T)(m.Translate(ga)) = v
}

// Read loads a value of type T from ga, applying host<->guest byte swap
// for any T wider than one byte.
func Read[T Scalar](m *Memory, ga uint32) T {
	return swap(ReadNoSwap[T](m, ga))
}

// Write stores v at ga, applying host<->guest byte swap for any T wider
// than one byte.
func Write[T Scalar](m *Memory, ga uint32, v T) {
	WriteNoSwap(m, ga, swap(v))
}

// swap reverses the byte order of v according to its concrete type. Go
// generics have no built-in bit-cast, so the concrete type is recovered
// with a type switch over the boxed value — the idiomatic way to do
// per-type work inside an otherwise type-parameterized function.
func swap[T Scalar](v T) T {
	switch x := any(v).(type) {
	case uint8:
		return any(x).(T)
	case int8:
		return any(x).(T)
	case uint16:
		return any(bitutil.Swap16(x)).(T)
	case int16:
		return any(int16(bitutil.Swap16(uint16(x)))).(T)
	case uint32:
		return any(bitutil.Swap32(x)).(T)
	case int32:
		return any(int32(bitutil.Swap32(uint32(x)))).(T)
	case uint64:
		return any(bitutil.Swap64(x)).(T)
	case int64:
		return any(int64(bitutil.Swap64(uint64(x)))).(T)
	case float32:
		bits := bitutil.Swap32(math.Float32bits(x))
		return any(math.Float32frombits(bits)).(T)
	case float64:
		bits := bitutil.Swap64(math.Float64bits(x))
		return any(math.Float64frombits(bits)).(T)
	default:
		panic("gmem: unsupported scalar type")
	}
}

// TranslatePtr untranslates ptr and retranslates it as *T.
func TranslatePtr[T any](m *Memory, ptr unsafe.Pointer) *T {
	ga, err := m.Untranslate(ptr)
	if err != nil {
		panic(err)
	}
	return (*T)(m.Translate(ga))
}
