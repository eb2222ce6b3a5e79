// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/state"
)

// rA0 reads GPR[rA], treating register 0 as a literal zero (the PPC
// "rA|0" idiom used by addi/load/store effective-address forms).
func rA0(c *Context, ra uint32) uint32 {
	if ra == 0 {
		return 0
	}
	return c.State.GPR[ra]
}

// finishRc sets CR0 from result when Rc is set.
func finishRc(c *Context, d *decode.Decoded, result uint32) {
	if d.Rc {
		state.SetField0FromCompare(&c.State.CR, int32(result), c.State.XER.SO)
	}
}

// finishOE records XER.OV/SO for an operation whose OE bit is set; ov is
// the operation's own signed-overflow test.
func finishOE(c *Context, d *decode.Decoded, ov bool) {
	if d.OE {
		c.State.XER.OV = ov
		if ov {
			c.State.XER.SO = true
		}
	}
}

func registerIntegerHandlers(r *Registry) {
	r.Register(decode.ADDI, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RD] = rA0(c, d.RA) + uint32(d.SIMM)
	})

	r.Register(decode.ADDIS, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RD] = rA0(c, d.RA) + uint32(d.SIMM)<<16
	})

	r.Register(decode.MULLI, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RD] = uint32(int32(c.State.GPR[d.RA]) * d.SIMM)
	})

	r.Register(decode.ADD, func(c *Context, d *decode.Decoded) {
		a, b := c.State.GPR[d.RA], c.State.GPR[d.RB]
		result := a + b
		ov := (int32(a) >= 0) == (int32(b) >= 0) && (int32(result) >= 0) != (int32(a) >= 0)
		c.State.GPR[d.RD] = result
		finishOE(c, d, ov)
		finishRc(c, d, result)
	})

	r.Register(decode.ADDC, func(c *Context, d *decode.Decoded) {
		a, b := c.State.GPR[d.RA], c.State.GPR[d.RB]
		result := a + b
		c.State.XER.CA = result < a
		c.State.GPR[d.RD] = result
		finishRc(c, d, result)
	})

	r.Register(decode.SUBF, func(c *Context, d *decode.Decoded) {
		a, b := c.State.GPR[d.RA], c.State.GPR[d.RB]
		result := b - a
		ov := (int32(b) >= 0) != (int32(a) >= 0) && (int32(result) >= 0) != (int32(b) >= 0)
		c.State.GPR[d.RD] = result
		finishOE(c, d, ov)
		finishRc(c, d, result)
	})

	r.Register(decode.SUBFC, func(c *Context, d *decode.Decoded) {
		a, b := c.State.GPR[d.RA], c.State.GPR[d.RB]
		result := b - a
		c.State.XER.CA = b >= a
		c.State.GPR[d.RD] = result
		finishRc(c, d, result)
	})

	r.Register(decode.MULLW, func(c *Context, d *decode.Decoded) {
		result := uint32(int32(c.State.GPR[d.RA]) * int32(c.State.GPR[d.RB]))
		c.State.GPR[d.RD] = result
		finishRc(c, d, result)
	})

	r.Register(decode.DIVW, func(c *Context, d *decode.Decoded) {
		a, b := int32(c.State.GPR[d.RA]), int32(c.State.GPR[d.RB])
		var result int32
		ov := b == 0 || (a == -1<<31 && b == -1)
		if !ov {
			result = a / b
		}
		c.State.GPR[d.RD] = uint32(result)
		finishOE(c, d, ov)
		finishRc(c, d, uint32(result))
	})

	r.Register(decode.NEG, func(c *Context, d *decode.Decoded) {
		a := c.State.GPR[d.RA]
		result := -a
		ov := a == 1<<31
		c.State.GPR[d.RD] = result
		finishOE(c, d, ov)
		finishRc(c, d, result)
	})

	r.Register(decode.AND, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] & c.State.GPR[d.RB]
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.ANDC, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] &^ c.State.GPR[d.RB]
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.OR, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] | c.State.GPR[d.RB]
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.ORC, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] | ^c.State.GPR[d.RB]
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.XOR, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] ^ c.State.GPR[d.RB]
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.NAND, func(c *Context, d *decode.Decoded) {
		result := ^(c.State.GPR[d.RD] & c.State.GPR[d.RB])
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.NOR, func(c *Context, d *decode.Decoded) {
		result := ^(c.State.GPR[d.RD] | c.State.GPR[d.RB])
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.EQV, func(c *Context, d *decode.Decoded) {
		result := ^(c.State.GPR[d.RD] ^ c.State.GPR[d.RB])
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.EXTSB, func(c *Context, d *decode.Decoded) {
		result := uint32(int8(c.State.GPR[d.RD]))
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.EXTSH, func(c *Context, d *decode.Decoded) {
		result := uint32(int16(c.State.GPR[d.RD]))
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.SLW, func(c *Context, d *decode.Decoded) {
		sh := c.State.GPR[d.RB] & 0x3F
		var result uint32
		if sh < 32 {
			result = c.State.GPR[d.RD] << sh
		}
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.SRW, func(c *Context, d *decode.Decoded) {
		sh := c.State.GPR[d.RB] & 0x3F
		var result uint32
		if sh < 32 {
			result = c.State.GPR[d.RD] >> sh
		}
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.SRAW, func(c *Context, d *decode.Decoded) {
		s := int32(c.State.GPR[d.RD])
		sh := c.State.GPR[d.RB] & 0x3F
		var result int32
		if sh >= 32 {
			if s < 0 {
				result = -1
			}
		} else {
			result = s >> sh
		}
		c.State.XER.CA = s < 0 && (s&((1<<sh)-1)) != 0
		c.State.GPR[d.RA] = uint32(result)
		finishRc(c, d, uint32(result))
	})

	r.Register(decode.SRAWI, func(c *Context, d *decode.Decoded) {
		s := int32(c.State.GPR[d.RD])
		sh := d.RB // SRAWI's SH sits in the rB field of FormX
		result := s >> sh
		c.State.XER.CA = s < 0 && (s&((1<<sh)-1)) != 0
		c.State.GPR[d.RA] = uint32(result)
		finishRc(c, d, uint32(result))
	})

	r.Register(decode.RLWINM, func(c *Context, d *decode.Decoded) {
		result := rotlwMask(c.State.GPR[d.RD], d.SH, d.MB, d.ME)
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.RLWIMI, func(c *Context, d *decode.Decoded) {
		rotated := rotlw(c.State.GPR[d.RD], d.SH)
		mask := maskRange(d.MB, d.ME)
		result := (c.State.GPR[d.RA] &^ mask) | (rotated & mask)
		c.State.GPR[d.RA] = result
		finishRc(c, d, result)
	})

	r.Register(decode.ANDI, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] & d.UIMM
		c.State.GPR[d.RA] = result
		state.SetField0FromCompare(&c.State.CR, int32(result), c.State.XER.SO)
	})

	r.Register(decode.ANDIS, func(c *Context, d *decode.Decoded) {
		result := c.State.GPR[d.RD] & (d.UIMM << 16)
		c.State.GPR[d.RA] = result
		state.SetField0FromCompare(&c.State.CR, int32(result), c.State.XER.SO)
	})

	r.Register(decode.ORI, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RA] = c.State.GPR[d.RD] | d.UIMM
	})

	r.Register(decode.ORIS, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RA] = c.State.GPR[d.RD] | (d.UIMM << 16)
	})

	r.Register(decode.XORI, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RA] = c.State.GPR[d.RD] ^ d.UIMM
	})

	r.Register(decode.XORIS, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RA] = c.State.GPR[d.RD] ^ (d.UIMM << 16)
	})
}

func rotlw(v, sh uint32) uint32 {
	sh &= 31
	return (v << sh) | (v >> (32 - sh))
}

func maskRange(mb, me uint32) uint32 {
	var mask uint32
	for i := uint32(0); i < 32; i++ {
		bit := uint32(1) << (31 - i)
		if mb <= me {
			if i >= mb && i <= me {
				mask |= bit
			}
		} else if i >= mb || i <= me {
			mask |= bit
		}
	}
	return mask
}

func rotlwMask(v, sh, mb, me uint32) uint32 {
	return rotlw(v, sh) & maskRange(mb, me)
}
