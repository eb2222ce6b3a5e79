// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package state defines the per-guest-thread architectural register
// file and the cross-thread reservation table lwarx and stwcx. share.
package state

// XER holds the fixed-point exception register's four architected
// fields: carry, overflow, sticky summary overflow, and a 7-bit byte
// count used by string load/store instructions.
type XER struct {
	CA        bool
	OV        bool
	SO        bool
	ByteCount uint8 // 7 bits
}

// Value packs XER into its 32-bit SPR encoding.
func (x XER) Value() uint32 {
	var v uint32
	if x.SO {
		v |= 1 << 31
	}
	if x.OV {
		v |= 1 << 30
	}
	if x.CA {
		v |= 1 << 29
	}
	v |= uint32(x.ByteCount&0x7F) << 0
	return v
}

// SetValue unpacks a 32-bit SPR encoding into XER.
func (x *XER) SetValue(v uint32) {
	x.SO = v&(1<<31) != 0
	x.OV = v&(1<<30) != 0
	x.CA = v&(1<<29) != 0
	x.ByteCount = uint8(v & 0x7F)
}

// FPR is a 64-bit FPR: an IEEE double, plus the paired-single {ps0, ps1}
// view PPC 750's SIMD mode uses. The exact marshalling rule between the
// double and paired-single views is an open design question, resolved
// here (see DESIGN.md) as: ps0 is the double truncated to float32 on
// read, ps1 is tracked as a companion float32 that shares the register
// slot.
type FPR struct {
	d   float64
	ps1 float32
}

func (f FPR) Double() float64    { return f.d }
func (f *FPR) SetDouble(v float64) { f.d = v; f.ps1 = 0 }

func (f FPR) PS0() float32 { return float32(f.d) }
func (f FPR) PS1() float32 { return f.ps1 }

func (f *FPR) SetPaired(ps0, ps1 float32) {
	f.d = float64(ps0)
	f.ps1 = ps1
}

// GQR is one graphics quantization register; it parameterises quantized
// paired-single loads/stores.
type GQR uint32

func (g GQR) LoadType() int   { return int(g & 0x7) }
func (g GQR) LoadScale() int  { return int((g >> 8) & 0x3F) }
func (g GQR) StoreType() int  { return int((g >> 16) & 0x7) }
func (g GQR) StoreScale() int { return int((g >> 24) & 0x3F) }

// ThreadState is the complete architectural state of one guest thread.
type ThreadState struct {
	GPR [32]uint32
	FPR [32]FPR
	CR  CR
	XER XER
	LR  uint32
	CTR uint32
	GQR [8]GQR

	CIA uint32 // current instruction address
	NIA uint32 // next instruction address

	Reserve        bool
	ReserveAddress uint32

	// ThreadID identifies this state to the shared Reservations table.
	// It need not be a real OS thread id, only unique per live ThreadState.
	ThreadID uint64
}

// SPRRead reads one of the small set of SPRs the core actually models
// (XER, LR, CTR, GQR0..7). For any other SPR number it returns zero with
// ok false; nothing is logged.
func (s *ThreadState) SPRRead(spr int) (value uint32, ok bool) {
	switch spr {
	case 1: // XER
		return s.XER.Value(), true
	case 8: // LR
		return s.LR, true
	case 9: // CTR
		return s.CTR, true
	case 912, 913, 914, 915, 916, 917, 918, 919: // GQR0..GQR7
		return uint32(s.GQR[spr-912]), true
	default:
		return 0, false
	}
}

// SPRWrite writes one of the modeled SPRs. ok is false (and the write is
// dropped) for any other SPR number.
func (s *ThreadState) SPRWrite(spr int, value uint32) (ok bool) {
	switch spr {
	case 1:
		s.XER.SetValue(value)
	case 8:
		s.LR = value
	case 9:
		s.CTR = value
	case 912, 913, 914, 915, 916, 917, 918, 919:
		s.GQR[spr-912] = GQR(value)
	default:
		return false
	}
	return true
}

// DecodeSPR reassembles the architectural SPR number from the raw
// 10-bit encoded field: the encoding swaps the low and high 5-bit
// halves.
func DecodeSPR(raw uint32) int {
	return int(((raw << 5) & 0x3E0) | ((raw >> 5) & 0x1F))
}
