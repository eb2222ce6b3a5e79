// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/gmem"
)

// registerPairedHandlers implements the {ps0, ps1} paired-single family.
// PSQL/PSQST always quantize through GQR[0]; selecting one of GQR[0..7]
// by instruction field is real-hardware detail the representative
// opcode table in decode/table.go doesn't carry.
func registerPairedHandlers(r *Registry) {
	r.Register(decode.PSADD, func(c *Context, d *decode.Decoded) {
		a, b := c.State.FPR[d.RA], c.State.FPR[d.RB]
		c.State.FPR[d.RD].SetPaired(a.PS0()+b.PS0(), a.PS1()+b.PS1())
	})

	r.Register(decode.PSSUB, func(c *Context, d *decode.Decoded) {
		a, b := c.State.FPR[d.RA], c.State.FPR[d.RB]
		c.State.FPR[d.RD].SetPaired(a.PS0()-b.PS0(), a.PS1()-b.PS1())
	})

	r.Register(decode.PSMUL, func(c *Context, d *decode.Decoded) {
		a, b := c.State.FPR[d.RA], c.State.FPR[d.RC]
		c.State.FPR[d.RD].SetPaired(a.PS0()*b.PS0(), a.PS1()*b.PS1())
	})

	r.Register(decode.PSMERGE00, func(c *Context, d *decode.Decoded) {
		a, b := c.State.FPR[d.RA], c.State.FPR[d.RB]
		c.State.FPR[d.RD].SetPaired(a.PS0(), b.PS0())
	})

	r.Register(decode.PSQL, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gqr := c.State.GQR[0]
		ps0, ps1 := loadQuantized(c.Memory, ea, gqr.LoadType(), gqr.LoadScale())
		c.State.FPR[d.RD].SetPaired(ps0, ps1)
	})

	r.Register(decode.PSQST, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gqr := c.State.GQR[0]
		f := c.State.FPR[d.RD]
		storeQuantized(c.Memory, ea, f.PS0(), f.PS1(), gqr.StoreType(), gqr.StoreScale())
	})
}

// loadQuantized reads a paired-single value applying the GQR-selected
// quantization; unknown types fall back to plain IEEE float passthrough.
func loadQuantized(mem *gmem.Memory, ea uint32, qtype, scale int) (ps0, ps1 float32) {
	switch qtype {
	case 4: // unsigned 8-bit
		v0 := gmem.Read[uint8](mem, ea)
		v1 := gmem.Read[uint8](mem, ea+1)
		return dequantizeU(uint32(v0), scale), dequantizeU(uint32(v1), scale)
	case 6: // unsigned 16-bit
		v0 := gmem.Read[uint16](mem, ea)
		v1 := gmem.Read[uint16](mem, ea+2)
		return dequantizeU(uint32(v0), scale), dequantizeU(uint32(v1), scale)
	default: // IEEE float passthrough
		return gmem.Read[float32](mem, ea), gmem.Read[float32](mem, ea+4)
	}
}

func storeQuantized(mem *gmem.Memory, ea uint32, ps0, ps1 float32, qtype, scale int) {
	switch qtype {
	case 4:
		gmem.Write[uint8](mem, ea, quantizeU8(ps0, scale))
		gmem.Write[uint8](mem, ea+1, quantizeU8(ps1, scale))
	case 6:
		gmem.Write[uint16](mem, ea, quantizeU16(ps0, scale))
		gmem.Write[uint16](mem, ea+2, quantizeU16(ps1, scale))
	default:
		gmem.Write[float32](mem, ea, ps0)
		gmem.Write[float32](mem, ea+4, ps1)
	}
}

func dequantizeU(v uint32, scale int) float32 {
	return float32(v) / float32(uint32(1)<<uint(scale))
}

func quantizeU8(v float32, scale int) uint8 {
	return uint8(v * float32(uint32(1)<<uint(scale)))
}

func quantizeU16(v float32, scale int) uint16 {
	return uint16(v * float32(uint32(1)<<uint(scale)))
}
