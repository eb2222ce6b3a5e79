// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import "github.com/kupua/espresso/bitutil"

type template struct {
	id      InstructionID
	form    Form
	written []FieldTag
	read    []FieldTag
}

// bucket holds every instruction registered under one primary opcode. Most
// opcodes decode to exactly one instruction (single != nil); opcodes that
// host several forms (19, 31, 4, 63) are disambiguated by the raw 10-bit
// field at bits 21-30, regardless of which sub-range the instruction's own
// Form actually treats as its extended opcode. The primary opcode is
// bits 0..5; the secondary key is bits 21..30 where one is needed. When
// that key misses, Decode retries with bits 26..30 alone and accepts the
// match only for an A-form template.
type bucket struct {
	single *template
	byExt  map[uint32]*template
}

// Decoder is the constructed instruction table. Construct once with
// NewDecoder; it is read-only and safe for concurrent Decode calls
// thereafter.
type Decoder struct {
	buckets map[uint32]*bucket
}

func (d *Decoder) register(opcode uint32, id InstructionID, form Form, written, read []FieldTag) {
	d.buckets[opcode] = &bucket{single: &template{id, form, written, read}}
}

func (d *Decoder) registerExt(opcode, ext uint32, id InstructionID, form Form, written, read []FieldTag) {
	b, ok := d.buckets[opcode]
	if !ok {
		b = &bucket{byExt: make(map[uint32]*template)}
		d.buckets[opcode] = b
	}
	if b.byExt == nil {
		b.byExt = make(map[uint32]*template)
	}
	b.byExt[ext] = &template{id, form, written, read}
}

// registerXOExt registers an instruction that carries the OE bit (bit 21):
// OE doesn't change the instruction's identity, only whether it records
// overflow, so both encodings dispatch to the same template.
func (d *Decoder) registerXOExt(opcode, ext uint32, id InstructionID, written, read []FieldTag) {
	d.registerExt(opcode, ext, id, FormXO, written, read)
	d.registerExt(opcode, ext|0x200, id, FormXO, written, read)
}

func extractForm(form Form, word uint32) Decoded {
	switch form {
	case FormD:
		return extractD(word)
	case FormX:
		return extractX(word)
	case FormXO:
		return extractXO(word)
	case FormB:
		return extractB(word)
	case FormI:
		return extractI(word)
	case FormA:
		return extractA(word)
	case FormM:
		return extractM(word)
	case FormXL:
		return extractXL(word)
	case FormKC:
		return extractKC(word)
	default:
		panic("decode: unknown form")
	}
}

func encodeForm(dec *Decoded) uint32 {
	switch dec.Form {
	case FormD:
		return encodeD(dec)
	case FormX:
		return encodeX(dec)
	case FormXO:
		return encodeXO(dec)
	case FormB:
		return encodeB(dec)
	case FormI:
		return encodeI(dec)
	case FormA:
		return encodeA(dec)
	case FormM:
		return encodeM(dec)
	case FormXL:
		return encodeXL(dec)
	case FormKC:
		return encodeKC(dec)
	default:
		panic("decode: unknown form")
	}
}

// Decode maps a 32-bit instruction word to its structured form, or
// returns ok=false for an encoding not in the table.
func (d *Decoder) Decode(word uint32) (*Decoded, bool) {
	opcode := bitutil.Bits(word, 0, 5)
	b, ok := d.buckets[opcode]
	if !ok {
		return nil, false
	}

	var tpl *template
	if b.single != nil {
		tpl = b.single
	} else {
		ext := bitutil.Bits(word, 21, 30)
		tpl, ok = b.byExt[ext]
		if !ok {
			// A-form instructions carry frC in bits 21-25, so only bits
			// 26-30 name them.
			tpl, ok = b.byExt[ext&0x1F]
			if !ok || tpl.form != FormA {
				return nil, false
			}
		}
	}

	dec := extractForm(tpl.form, word)
	dec.ID = tpl.id
	dec.Name = tpl.id.String()
	dec.Form = tpl.form
	dec.Written = tpl.written
	dec.Read = tpl.read
	return &dec, true
}

// Encode reassembles the 32-bit word a Decoded value came from. Fields
// the Form doesn't carry reconstruct as zero.
func (d *Decoder) Encode(dec *Decoded) uint32 {
	return encodeForm(dec)
}

// NewDecoder builds the instruction table. A representative subset of
// each instruction family is registered; coverage is representative, not
// exhaustive, and registerExt is how the rest of the Espresso ISA would
// be added.
func NewDecoder() *Decoder {
	d := &Decoder{buckets: make(map[uint32]*bucket)}

	// Kernel call.
	d.register(1, KC, FormKC, nil, []FieldTag{FieldKCN, FieldKCI})

	// Branch.
	d.register(16, BC, FormB, []FieldTag{FieldLR}, []FieldTag{FieldBO, FieldBI, FieldCR, FieldCTR})
	d.register(18, B, FormI, []FieldTag{FieldLR}, []FieldTag{FieldLI})
	d.registerExt(19, 16, BCLR, FormXL, []FieldTag{FieldLR}, []FieldTag{FieldBO, FieldBI, FieldCR, FieldLR})
	d.registerExt(19, 528, BCCTR, FormXL, []FieldTag{FieldLR}, []FieldTag{FieldBO, FieldBI, FieldCR, FieldCTR})
	d.registerExt(19, 0, MCRF, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 150, ISYNC, FormXL, nil, nil)
	d.registerExt(19, 257, CRAND, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 449, CROR, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 193, CRXOR, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 225, CRNAND, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 33, CRNOR, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 129, CRANDC, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 289, CREQV, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})
	d.registerExt(19, 417, CRORC, FormXL, []FieldTag{FieldCR}, []FieldTag{FieldCR})

	// Integer immediate (D-form).
	d.register(7, MULLI, FormD, []FieldTag{FieldRD}, []FieldTag{FieldRA, FieldSIMM})
	d.register(10, CMPLI, FormD, []FieldTag{FieldCR}, []FieldTag{FieldRA, FieldUIMM})
	d.register(11, CMPI, FormD, []FieldTag{FieldCR}, []FieldTag{FieldRA, FieldSIMM})
	d.register(14, ADDI, FormD, []FieldTag{FieldRD}, []FieldTag{FieldRA, FieldSIMM})
	d.register(15, ADDIS, FormD, []FieldTag{FieldRD}, []FieldTag{FieldRA, FieldSIMM})
	d.register(24, ORI, FormD, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldUIMM})
	d.register(25, ORIS, FormD, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldUIMM})
	d.register(26, XORI, FormD, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldUIMM})
	d.register(27, XORIS, FormD, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldUIMM})
	d.register(28, ANDI, FormD, []FieldTag{FieldRA, FieldCR}, []FieldTag{FieldRS, FieldUIMM})
	d.register(29, ANDIS, FormD, []FieldTag{FieldRA, FieldCR}, []FieldTag{FieldRS, FieldUIMM})

	// Rotate-and-mask (M-form).
	d.register(20, RLWIMI, FormM, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRA})
	d.register(21, RLWINM, FormM, []FieldTag{FieldRA}, []FieldTag{FieldRS})

	// Load/store (D-form).
	d.register(32, LWZ, FormD, []FieldTag{FieldRD, FieldMem}, []FieldTag{FieldRA})
	d.register(33, LWZU, FormD, []FieldTag{FieldRD, FieldRA, FieldMem}, []FieldTag{FieldRA})
	d.register(34, LBZ, FormD, []FieldTag{FieldRD, FieldMem}, []FieldTag{FieldRA})
	d.register(36, STW, FormD, []FieldTag{FieldMem}, []FieldTag{FieldRS, FieldRA})
	d.register(37, STWU, FormD, []FieldTag{FieldRA, FieldMem}, []FieldTag{FieldRS, FieldRA})
	d.register(38, STB, FormD, []FieldTag{FieldMem}, []FieldTag{FieldRS, FieldRA})
	d.register(40, LHZ, FormD, []FieldTag{FieldRD, FieldMem}, []FieldTag{FieldRA})
	d.register(44, STH, FormD, []FieldTag{FieldMem}, []FieldTag{FieldRS, FieldRA})

	// Load/store (float D-form).
	d.register(48, LFS, FormD, []FieldTag{FieldFRD, FieldMem}, []FieldTag{FieldRA})
	d.register(50, LFD, FormD, []FieldTag{FieldFRD, FieldMem}, []FieldTag{FieldRA})
	d.register(52, STFS, FormD, []FieldTag{FieldMem}, []FieldTag{FieldFRD, FieldRA})
	d.register(54, STFD, FormD, []FieldTag{FieldMem}, []FieldTag{FieldFRD, FieldRA})

	// Quantized paired-single load/store.
	d.register(56, PSQL, FormD, []FieldTag{FieldFRD, FieldMem}, []FieldTag{FieldRA})
	d.register(60, PSQST, FormD, []FieldTag{FieldMem}, []FieldTag{FieldFRD, FieldRA})

	// Paired-single arithmetic (A-form, opcode 4 bucket).
	d.registerExt(4, 21, PSADD, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(4, 20, PSSUB, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(4, 25, PSMUL, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRC})
	d.registerExt(4, 552, PSMERGE00, FormX, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})

	// Double-precision float (A/X-form, opcode 63 bucket).
	d.registerExt(63, 21, FADD, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(63, 20, FSUB, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(63, 25, FMUL, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRC})
	d.registerExt(63, 18, FDIV, FormA, []FieldTag{FieldFRD}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(63, 0, FCMPU, FormX, []FieldTag{FieldCR}, []FieldTag{FieldFRA, FieldFRB})
	d.registerExt(63, 72, FMR, FormX, []FieldTag{FieldFRD}, []FieldTag{FieldFRB})
	d.registerExt(63, 40, FNEG, FormX, []FieldTag{FieldFRD}, []FieldTag{FieldFRB})
	d.registerExt(63, 264, FABS, FormX, []FieldTag{FieldFRD}, []FieldTag{FieldFRB})

	// Integer register-register (X/XO-form, opcode 31 bucket).
	d.registerXOExt(31, 266, ADD, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 10, ADDC, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 40, SUBF, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 8, SUBFC, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 235, MULLW, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 491, DIVW, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA, FieldRB})
	d.registerXOExt(31, 104, NEG, []FieldTag{FieldRD, FieldXER}, []FieldTag{FieldRA})
	d.registerExt(31, 28, AND, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 444, OR, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 316, XOR, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 476, NAND, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 124, NOR, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 284, EQV, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 60, ANDC, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 412, ORC, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 954, EXTSB, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS})
	d.registerExt(31, 922, EXTSH, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS})
	d.registerExt(31, 24, SLW, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 536, SRW, FormX, []FieldTag{FieldRA}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 792, SRAW, FormX, []FieldTag{FieldRA, FieldXER}, []FieldTag{FieldRS, FieldRB})
	d.registerExt(31, 824, SRAWI, FormX, []FieldTag{FieldRA, FieldXER}, []FieldTag{FieldRS})
	d.registerExt(31, 0, CMP, FormX, []FieldTag{FieldCR}, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 32, CMPL, FormX, []FieldTag{FieldCR}, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 19, MFCR, FormX, []FieldTag{FieldRD}, []FieldTag{FieldCR})
	d.registerExt(31, 144, MTCRF, FormX, []FieldTag{FieldCR}, []FieldTag{FieldRS})
	d.registerExt(31, 339, MFSPR, FormX, []FieldTag{FieldRD}, []FieldTag{FieldSPR})
	d.registerExt(31, 467, MTSPR, FormX, []FieldTag{FieldSPR}, []FieldTag{FieldRS})
	d.registerExt(31, 371, MFTB, FormX, []FieldTag{FieldRD}, nil)
	d.registerExt(31, 598, SYNC, FormX, nil, nil)
	d.registerExt(31, 854, EIEIO, FormX, nil, nil)
	d.registerExt(31, 20, LWARX, FormX, []FieldTag{FieldRD, FieldMem}, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 150, STWCX, FormX, []FieldTag{FieldCR, FieldMem}, []FieldTag{FieldRS, FieldRA, FieldRB})
	d.registerExt(31, 86, DCBF, FormX, nil, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 470, DCBI, FormX, nil, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 54, DCBST, FormX, nil, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 278, DCBT, FormX, nil, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 246, DCBTST, FormX, nil, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 1014, DCBZ, FormX, []FieldTag{FieldMem}, []FieldTag{FieldRA, FieldRB})
	d.registerExt(31, 1010, DCBZL, FormX, []FieldTag{FieldMem}, []FieldTag{FieldRA, FieldRB})

	return d
}
