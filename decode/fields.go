// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"github.com/kupua/espresso/bitutil"
	"github.com/kupua/espresso/state"
)

// FieldTag names one extracted operand in an instruction's read or
// written field sets.
type FieldTag int

const (
	FieldRA FieldTag = iota
	FieldRD
	FieldRS
	FieldRB
	FieldFRA
	FieldFRB
	FieldFRC
	FieldFRD
	FieldSIMM
	FieldUIMM
	FieldBD
	FieldLI
	FieldBO
	FieldBI
	FieldCRFD
	FieldCRFS
	FieldSPR
	FieldKCN
	FieldKCI
	FieldCR
	FieldLR
	FieldCTR
	FieldXER
	FieldMem
)

// Form names the PowerPC encoding shape an instruction belongs to. Every
// opcode in a given Form shares the same bit layout, so field
// extraction/reassembly is implemented once per Form rather than once per
// opcode.
type Form int

const (
	FormD  Form = iota // opcd(0-5) D(6-10) A(11-15) imm(16-31)
	FormX               // opcd D A B ext(21-30) Rc(31)
	FormXO              // opcd D A B OE(21) ext(22-30) Rc(31)
	FormB               // opcd BO(6-10) BI(11-15) BD(16-29) AA(30) LK(31)
	FormI               // opcd LI(6-29) AA(30) LK(31)
	FormA               // opcd D A B C(21-25) ext(26-30) Rc(31), float A-form
	FormM               // opcd S A SH(16-20) MB(21-25) ME(26-30) Rc(31), rotate
	FormXL              // opcd crbD(6-10) crbA(11-15) crbB(16-20) ext(21-30) LK(31), CR logical
	FormKC              // opcd(0-5)=1 kcn(6-25) kci(26)
)

// Decoded is the structured form of one 32-bit instruction word.
// Fields not meaningful to ID are left at their zero value; Encode
// reassembles the word purely from these fields, so any bit the Form
// doesn't name reconstructs as zero.
type Decoded struct {
	ID   InstructionID
	Name string
	Form Form

	Written []FieldTag
	Read    []FieldTag

	Opcode uint32
	Ext    uint32

	RD, RA, RB, RC uint32
	SIMM           int32
	UIMM           uint32
	BO, BI         uint32
	BD             int32
	LI             int32
	AA, LK, Rc, OE bool
	SPR            int
	SH, MB, ME     uint32
	KCN            uint32
	KCI            uint32
}

func extractD(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10),
		RA:     bitutil.Bits(w, 11, 15),
		SIMM:   bitutil.SignExtend(bitutil.Bits(w, 16, 31), 16),
		UIMM:   bitutil.Bits(w, 16, 31),
	}
}

func encodeD(d *Decoded) uint32 {
	return d.Opcode<<26 | d.RD<<21 | d.RA<<16 | (d.UIMM & 0xFFFF)
}

func extractX(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10),
		RA:     bitutil.Bits(w, 11, 15),
		RB:     bitutil.Bits(w, 16, 20),
		Ext:    bitutil.Bits(w, 21, 30),
		Rc:     bitutil.Bits(w, 31, 31) != 0,
		SPR:    state.DecodeSPR(bitutil.Bits(w, 11, 20)),
	}
}

func encodeX(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.RD<<21 | d.RA<<16 | d.RB<<11 | d.Ext<<1
	if d.Rc {
		v |= 1
	}
	return v
}

func extractXO(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10),
		RA:     bitutil.Bits(w, 11, 15),
		RB:     bitutil.Bits(w, 16, 20),
		OE:     bitutil.Bits(w, 21, 21) != 0,
		Ext:    bitutil.Bits(w, 22, 30),
		Rc:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeXO(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.RD<<21 | d.RA<<16 | d.RB<<11 | d.Ext<<1
	if d.OE {
		v |= 1 << 10
	}
	if d.Rc {
		v |= 1
	}
	return v
}

func extractB(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		BO:     bitutil.Bits(w, 6, 10),
		BI:     bitutil.Bits(w, 11, 15),
		BD:     bitutil.SignExtend(bitutil.Bits(w, 16, 29)<<2, 16),
		AA:     bitutil.Bits(w, 30, 30) != 0,
		LK:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeB(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.BO<<21 | d.BI<<16 | (uint32(d.BD>>2) & 0x3FFF << 2)
	if d.AA {
		v |= 1 << 1
	}
	if d.LK {
		v |= 1
	}
	return v
}

func extractI(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		LI:     bitutil.SignExtend(bitutil.Bits(w, 6, 29)<<2, 26),
		AA:     bitutil.Bits(w, 30, 30) != 0,
		LK:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeI(d *Decoded) uint32 {
	v := d.Opcode<<26 | (uint32(d.LI>>2) & 0xFFFFFF << 2)
	if d.AA {
		v |= 1 << 1
	}
	if d.LK {
		v |= 1
	}
	return v
}

func extractA(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10),
		RA:     bitutil.Bits(w, 11, 15),
		RB:     bitutil.Bits(w, 16, 20),
		RC:     bitutil.Bits(w, 21, 25),
		Ext:    bitutil.Bits(w, 26, 30),
		Rc:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeA(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.RD<<21 | d.RA<<16 | d.RB<<11 | d.RC<<6 | d.Ext<<1
	if d.Rc {
		v |= 1
	}
	return v
}

func extractM(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10), // RS when read
		RA:     bitutil.Bits(w, 11, 15),
		SH:     bitutil.Bits(w, 16, 20),
		MB:     bitutil.Bits(w, 21, 25),
		ME:     bitutil.Bits(w, 26, 30),
		Rc:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeM(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.RD<<21 | d.RA<<16 | d.SH<<11 | d.MB<<6 | d.ME<<1
	if d.Rc {
		v |= 1
	}
	return v
}

func extractXL(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		RD:     bitutil.Bits(w, 6, 10),  // crbD
		RA:     bitutil.Bits(w, 11, 15), // crbA
		RB:     bitutil.Bits(w, 16, 20), // crbB
		Ext:    bitutil.Bits(w, 21, 30),
		LK:     bitutil.Bits(w, 31, 31) != 0,
	}
}

func encodeXL(d *Decoded) uint32 {
	v := d.Opcode<<26 | d.RD<<21 | d.RA<<16 | d.RB<<11 | d.Ext<<1
	if d.LK {
		v |= 1
	}
	return v
}

func extractKC(w uint32) Decoded {
	return Decoded{
		Opcode: bitutil.Bits(w, 0, 5),
		KCN:    bitutil.Bits(w, 6, 25),
		KCI:    bitutil.Bits(w, 26, 26),
	}
}

func encodeKC(d *Decoded) uint32 {
	return d.Opcode<<26 | d.KCN<<6 | d.KCI<<5
}
