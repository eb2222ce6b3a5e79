// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import "testing"

func TestDecodeUnknownOpcodeReturnsFalse(t *testing.T) {
	d := NewDecoder()
	// Primary opcode 63 with ext 0 is FCMPU; opcode 62 is never registered.
	word := uint32(62) << 26
	if _, ok := d.Decode(word); ok {
		t.Fatal("expected unknown primary opcode to fail to decode")
	}
}

func TestDecodeUnknownExtReturnsFalse(t *testing.T) {
	d := NewDecoder()
	// Opcode 31 is registered, but ext 0x3FF is not any instruction.
	word := uint32(31)<<26 | 0x3FF<<1
	if _, ok := d.Decode(word); ok {
		t.Fatal("expected unregistered extended opcode to fail to decode")
	}
}

func encodeDecodeRoundTrip(t *testing.T, d *Decoder, word uint32, wantID InstructionID) {
	t.Helper()
	dec, ok := d.Decode(word)
	if !ok {
		t.Fatalf("Decode(%#08x) failed", word)
	}
	if dec.ID != wantID {
		t.Fatalf("Decode(%#08x).ID = %v, want %v", word, dec.ID, wantID)
	}
	if got := d.Encode(dec); got != word {
		t.Fatalf("Encode(Decode(%#08x)) = %#08x, want %#08x", word, got, word)
	}
}

func TestRoundTripADDI(t *testing.T) {
	d := NewDecoder()
	// addi r3, r0, 42
	word := uint32(14)<<26 | 3<<21 | 0<<16 | 42
	encodeDecodeRoundTrip(t, d, word, ADDI)
}

func TestRoundTripADDIS(t *testing.T) {
	d := NewDecoder()
	// addis r3, r0, 0x1234
	word := uint32(15)<<26 | 3<<21 | 0<<16 | 0x1234
	encodeDecodeRoundTrip(t, d, word, ADDIS)
}

func TestRoundTripADD(t *testing.T) {
	d := NewDecoder()
	// add r3, r4, r5
	word := uint32(31)<<26 | 3<<21 | 4<<16 | 5<<11 | 266<<1
	encodeDecodeRoundTrip(t, d, word, ADD)

	// add. r3, r4, r5 (Rc set)
	wordRc := word | 1
	encodeDecodeRoundTrip(t, d, wordRc, ADD)

	// add r3, r4, r5 with OE set
	wordOE := word | 1<<10
	encodeDecodeRoundTrip(t, d, wordOE, ADD)
}

func TestRoundTripORI(t *testing.T) {
	d := NewDecoder()
	// ori r3, r4, 0xBEEF
	word := uint32(24)<<26 | 4<<21 | 3<<16 | 0xBEEF
	encodeDecodeRoundTrip(t, d, word, ORI)
}

func TestRoundTripSTWAndLWZ(t *testing.T) {
	d := NewDecoder()
	// stw r3, -4(r1)
	disp := int32(-4)
	stw := uint32(36)<<26 | 3<<21 | 1<<16 | uint32(disp)&0xFFFF
	encodeDecodeRoundTrip(t, d, stw, STW)

	// lwz r3, -4(r1)
	lwz := uint32(32)<<26 | 3<<21 | 1<<16 | uint32(disp)&0xFFFF
	encodeDecodeRoundTrip(t, d, lwz, LWZ)
}

func TestRoundTripLWARXAndSTWCX(t *testing.T) {
	d := NewDecoder()
	// lwarx r3, r0, r4
	lwarx := uint32(31)<<26 | 3<<21 | 0<<16 | 4<<11 | 20<<1
	encodeDecodeRoundTrip(t, d, lwarx, LWARX)

	// stwcx. r5, r0, r4 (Rc always set for stwcx.)
	stwcx := uint32(31)<<26 | 5<<21 | 0<<16 | 4<<11 | 150<<1 | 1
	encodeDecodeRoundTrip(t, d, stwcx, STWCX)
}

func TestRoundTripBAndBC(t *testing.T) {
	d := NewDecoder()
	// b +0x100
	b := uint32(18)<<26 | (uint32(0x100>>2)&0xFFFFFF)<<2
	encodeDecodeRoundTrip(t, d, b, B)

	// bc BO=12,BI=2, disp=+8
	bc := uint32(16)<<26 | 12<<21 | 2<<16 | (uint32(8>>2)&0x3FFF)<<2
	encodeDecodeRoundTrip(t, d, bc, BC)
}

func TestRoundTripBCLR(t *testing.T) {
	d := NewDecoder()
	// blr: bclr with BO=20 (branch always), BI=0
	word := uint32(19)<<26 | 20<<21 | 0<<16 | 16<<1
	encodeDecodeRoundTrip(t, d, word, BCLR)
}

func TestRoundTripMFSPRAndMTSPR(t *testing.T) {
	d := NewDecoder()
	// mfspr r3, XER: spr raw field 0x00020 placed at bits 11-20
	mfspr := uint32(31)<<26 | 3<<21 | 0x00020<<11 | 339<<1
	dec, ok := d.Decode(mfspr)
	if !ok {
		t.Fatal("mfspr failed to decode")
	}
	if dec.SPR != 1 {
		t.Fatalf("mfspr SPR = %d, want 1 (XER)", dec.SPR)
	}
	if got := d.Encode(dec); got != mfspr {
		t.Fatalf("Encode(Decode(mfspr)) = %#08x, want %#08x", got, mfspr)
	}

	// mtspr CTR, r5: spr raw field 0x00120
	mtspr := uint32(31)<<26 | 5<<21 | 0x00120<<11 | 467<<1
	dec, ok = d.Decode(mtspr)
	if !ok {
		t.Fatal("mtspr failed to decode")
	}
	if dec.SPR != 9 {
		t.Fatalf("mtspr SPR = %d, want 9 (CTR)", dec.SPR)
	}
	if got := d.Encode(dec); got != mtspr {
		t.Fatalf("Encode(Decode(mtspr)) = %#08x, want %#08x", got, mtspr)
	}
}

func TestRoundTripKC(t *testing.T) {
	d := NewDecoder()
	// kc syscall index 7, kci=1
	word := uint32(1)<<26 | 7<<6 | 1<<5
	dec, ok := d.Decode(word)
	if !ok {
		t.Fatal("kc failed to decode")
	}
	if dec.KCN != 7 || dec.KCI != 1 {
		t.Fatalf("kc fields = %d,%d want 7,1", dec.KCN, dec.KCI)
	}
	if got := d.Encode(dec); got != word {
		t.Fatalf("Encode(Decode(kc)) = %#08x, want %#08x", got, word)
	}
}

func TestRoundTripRLWINM(t *testing.T) {
	d := NewDecoder()
	// rlwinm r3, r4, 16, 0, 15 (shift the low halfword into the high halfword)
	word := uint32(21)<<26 | 4<<21 | 3<<16 | 16<<11 | 0<<6 | 15<<1
	encodeDecodeRoundTrip(t, d, word, RLWINM)
}

func TestRoundTripFADDAndFMR(t *testing.T) {
	d := NewDecoder()
	// fadd f1, f2, f3
	fadd := uint32(63)<<26 | 1<<21 | 2<<16 | 3<<11 | 21<<1
	encodeDecodeRoundTrip(t, d, fadd, FADD)

	// fmr f1, f2
	fmr := uint32(63)<<26 | 1<<21 | 0<<16 | 2<<11 | 72<<1
	encodeDecodeRoundTrip(t, d, fmr, FMR)
}

func TestRoundTripPSADD(t *testing.T) {
	d := NewDecoder()
	// ps_add f1, f2, f3
	word := uint32(4)<<26 | 1<<21 | 2<<16 | 3<<11 | 21<<1
	encodeDecodeRoundTrip(t, d, word, PSADD)
}
