// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/gmem"
)

func registerLoadStoreHandlers(r *Registry) {
	r.Register(decode.LWZ, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		c.State.GPR[d.RD] = gmem.Read[uint32](c.Memory, ea)
	})

	r.Register(decode.LWZU, func(c *Context, d *decode.Decoded) {
		ea := c.State.GPR[d.RA] + uint32(d.SIMM)
		c.State.GPR[d.RD] = gmem.Read[uint32](c.Memory, ea)
		c.State.GPR[d.RA] = ea
	})

	r.Register(decode.LBZ, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		c.State.GPR[d.RD] = uint32(gmem.Read[uint8](c.Memory, ea))
	})

	r.Register(decode.LHZ, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		c.State.GPR[d.RD] = uint32(gmem.Read[uint16](c.Memory, ea))
	})

	r.Register(decode.STW, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gmem.Write[uint32](c.Memory, ea, c.State.GPR[d.RD])
		c.Reservations.Break(ea)
	})

	r.Register(decode.STWU, func(c *Context, d *decode.Decoded) {
		ea := c.State.GPR[d.RA] + uint32(d.SIMM)
		gmem.Write[uint32](c.Memory, ea, c.State.GPR[d.RD])
		c.Reservations.Break(ea)
		c.State.GPR[d.RA] = ea
	})

	r.Register(decode.STB, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gmem.Write[uint8](c.Memory, ea, uint8(c.State.GPR[d.RD]))
		c.Reservations.Break(ea)
	})

	r.Register(decode.STH, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gmem.Write[uint16](c.Memory, ea, uint16(c.State.GPR[d.RD]))
		c.Reservations.Break(ea)
	})

	r.Register(decode.LFS, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		c.State.FPR[d.RD].SetDouble(float64(gmem.Read[float32](c.Memory, ea)))
	})

	r.Register(decode.LFD, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		c.State.FPR[d.RD].SetDouble(gmem.Read[float64](c.Memory, ea))
	})

	r.Register(decode.STFS, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gmem.Write[float32](c.Memory, ea, float32(c.State.FPR[d.RD].Double()))
		c.Reservations.Break(ea)
	})

	r.Register(decode.STFD, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + uint32(d.SIMM)
		gmem.Write[float64](c.Memory, ea, c.State.FPR[d.RD].Double())
		c.Reservations.Break(ea)
	})

	r.Register(decode.LWARX, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + c.State.GPR[d.RB]
		c.State.GPR[d.RD] = gmem.Read[uint32](c.Memory, ea)
		c.State.Reserve = true
		c.State.ReserveAddress = ea
		c.Reservations.Acquire(c.State.ThreadID, ea)
	})

	r.Register(decode.STWCX, func(c *Context, d *decode.Decoded) {
		ea := rA0(c, d.RA) + c.State.GPR[d.RB]
		success := c.State.Reserve && c.State.ReserveAddress == ea &&
			c.Reservations.Held(c.State.ThreadID, ea)
		if success {
			gmem.Write[uint32](c.Memory, ea, c.State.GPR[d.RD])
		}
		c.Reservations.Break(ea)
		c.State.Reserve = false
		c.State.CR.SetBit(2, success) // CR0.EQ
	})
}
