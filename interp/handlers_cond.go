// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/state"
)

func compareField(c *Context, crf uint32, lt, gt, eq bool) {
	c.State.CR.SetField(int(crf), state.CRField{
		LT: lt, GT: gt, EQ: eq, SO: c.State.XER.SO,
	})
}

func registerConditionHandlers(r *Registry) {
	r.Register(decode.CMPI, func(c *Context, d *decode.Decoded) {
		a := int32(c.State.GPR[d.RA])
		b := d.SIMM
		compareField(c, d.RD>>2, a < b, a > b, a == b)
	})

	r.Register(decode.CMPLI, func(c *Context, d *decode.Decoded) {
		a := c.State.GPR[d.RA]
		b := d.UIMM
		compareField(c, d.RD>>2, a < b, a > b, a == b)
	})

	r.Register(decode.CMP, func(c *Context, d *decode.Decoded) {
		a := int32(c.State.GPR[d.RA])
		b := int32(c.State.GPR[d.RB])
		compareField(c, d.RD>>2, a < b, a > b, a == b)
	})

	r.Register(decode.CMPL, func(c *Context, d *decode.Decoded) {
		a := c.State.GPR[d.RA]
		b := c.State.GPR[d.RB]
		compareField(c, d.RD>>2, a < b, a > b, a == b)
	})

	r.Register(decode.MCRF, func(c *Context, d *decode.Decoded) {
		src := c.State.CR.Field(int(d.RA >> 2))
		c.State.CR.SetField(int(d.RD>>2), src)
	})

	r.Register(decode.MFCR, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RD] = uint32(c.State.CR)
	})

	r.Register(decode.MTCRF, func(c *Context, d *decode.Decoded) {
		// CRM (bits 12-19) selects which of the 8 CR nibbles this
		// instruction updates; it straddles the RA/RB fields FormX
		// extracted as ///(11)+4 bits and 4 bits+/(20).
		crm := (d.RA&0xF)<<4 | d.RB>>1
		src := c.State.GPR[d.RD]
		var mask uint32
		for n := 0; n < 8; n++ {
			if crm&(1<<uint(7-n)) != 0 {
				mask |= 0xF << uint(28-4*n)
			}
		}
		c.State.CR = state.CR((uint32(c.State.CR) &^ mask) | (src & mask))
	})

	r.Register(decode.CRAND, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) && c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CROR, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) || c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CRXOR, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) != c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CRNAND, func(c *Context, d *decode.Decoded) {
		v := !(c.State.CR.Bit(int(d.RA)) && c.State.CR.Bit(int(d.RB)))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CRNOR, func(c *Context, d *decode.Decoded) {
		v := !(c.State.CR.Bit(int(d.RA)) || c.State.CR.Bit(int(d.RB)))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CRANDC, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) && !c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CREQV, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) == c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})

	r.Register(decode.CRORC, func(c *Context, d *decode.Decoded) {
		v := c.State.CR.Bit(int(d.RA)) || !c.State.CR.Bit(int(d.RB))
		c.State.CR.SetBit(int(d.RD), v)
	})
}
