// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import "github.com/kupua/espresso/decode"

// registerSystemHandlers implements sync/isync/eieio (no-ops within a
// single guest thread), the modeled SPR moves, and the dcb* cache hints
// (no-ops, except dcbz and dcbz_l, which zero the 32-byte cache line).
// The `kc` kernel-call trap is registered by registerKernelHandler.
func registerSystemHandlers(r *Registry) {
	noop := func(*Context, *decode.Decoded) {}

	r.Register(decode.SYNC, noop)
	r.Register(decode.ISYNC, noop)
	r.Register(decode.EIEIO, noop)
	r.Register(decode.DCBF, noop)
	r.Register(decode.DCBI, noop)
	r.Register(decode.DCBST, noop)
	r.Register(decode.DCBT, noop)
	r.Register(decode.DCBTST, noop)

	r.Register(decode.DCBZ, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + c.State.GPR[d.RB]
		zeroCacheLine(c, ea)
	})
	r.Register(decode.DCBZL, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + c.State.GPR[d.RB]
		zeroCacheLine(c, ea)
	})

	r.Register(decode.MFSPR, func(c *Context, d *decode.Decoded) {
		v, ok := c.State.SPRRead(d.SPR)
		if ok {
			c.State.GPR[d.RD] = v
		} else {
			c.State.GPR[d.RD] = 0
		}
	})

	r.Register(decode.MTSPR, func(c *Context, d *decode.Decoded) {
		c.State.SPRWrite(d.SPR, c.State.GPR[d.RD])
	})

	r.Register(decode.MFTB, func(c *Context, d *decode.Decoded) {
		c.State.GPR[d.RD] = 0
	})
}

const cacheLineSize = 32

func zeroCacheLine(c *Context, ea uint32) {
	aligned := ea &^ (cacheLineSize - 1)
	for i := uint32(0); i < cacheLineSize; i++ {
		writeByte(c, aligned+i, 0)
	}
	c.Reservations.Break(aligned)
}

func writeByte(c *Context, ga uint32, v uint8) {
	p := (*uint8)(c.Memory.Translate(ga))
	*p = v
}
