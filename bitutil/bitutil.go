// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitutil implements host<->big-endian conversion and the
// MSB-numbered bit-field extraction that the PowerPC encoding uses.
package bitutil

// Order is the guest's serialisation order. The Espresso core is
// big-endian; every typed guest memory access goes through it.
import "encoding/binary"

var Order binary.ByteOrder = binary.BigEndian

// Bits extracts an inclusive bit range [hi, lo] using PowerPC's MSB-0 bit
// numbering (bit 0 is the most significant bit of a 32-bit word).
func Bits(word uint32, hi, lo int) uint32 {
	width := lo - hi + 1
	shift := 31 - lo
	mask := uint32(1)<<uint(width) - 1
	return (word >> uint(shift)) & mask
}

// SignExtend sign-extends the low `bits` bits of v to a full int32.
func SignExtend(v uint32, bits int) int32 {
	shift := 32 - bits
	return int32(v<<uint(shift)) >> uint(shift)
}

// Swap16 reverses the byte order of a 16-bit value.
func Swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// Swap32 reverses the byte order of a 32-bit value.
func Swap32(v uint32) uint32 {
	return v<<24 | (v<<8)&0x00FF0000 | (v>>8)&0x0000FF00 | v>>24
}

// Swap64 reverses the byte order of a 64-bit value.
func Swap64(v uint64) uint64 {
	return uint64(Swap32(uint32(v)))<<32 | uint64(Swap32(uint32(v>>32)))
}
