// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/state"
)

// Float handlers implement IEEE-754 double arithmetic; FPSCR is not
// modeled beyond what CR1/CR fields the guest can observe.
func registerFloatHandlers(r *Registry) {
	r.Register(decode.FADD, func(c *Context, d *decode.Decoded) {
		result := c.State.FPR[d.RA].Double() + c.State.FPR[d.RB].Double()
		c.State.FPR[d.RD].SetDouble(result)
	})

	r.Register(decode.FSUB, func(c *Context, d *decode.Decoded) {
		result := c.State.FPR[d.RA].Double() - c.State.FPR[d.RB].Double()
		c.State.FPR[d.RD].SetDouble(result)
	})

	r.Register(decode.FMUL, func(c *Context, d *decode.Decoded) {
		result := c.State.FPR[d.RA].Double() * c.State.FPR[d.RC].Double()
		c.State.FPR[d.RD].SetDouble(result)
	})

	r.Register(decode.FDIV, func(c *Context, d *decode.Decoded) {
		result := c.State.FPR[d.RA].Double() / c.State.FPR[d.RB].Double()
		c.State.FPR[d.RD].SetDouble(result)
	})

	r.Register(decode.FCMPU, func(c *Context, d *decode.Decoded) {
		a := c.State.FPR[d.RA].Double()
		b := c.State.FPR[d.RB].Double()
		var f state.CRField
		switch {
		case a < b:
			f.LT = true
		case a > b:
			f.GT = true
		case a == b:
			f.EQ = true
		default: // unordered (NaN)
			f.SO = true
		}
		c.State.CR.SetField(0, f)
	})

	r.Register(decode.FMR, func(c *Context, d *decode.Decoded) {
		c.State.FPR[d.RD].SetDouble(c.State.FPR[d.RB].Double())
	})

	r.Register(decode.FNEG, func(c *Context, d *decode.Decoded) {
		c.State.FPR[d.RD].SetDouble(-c.State.FPR[d.RB].Double())
	})

	r.Register(decode.FABS, func(c *Context, d *decode.Decoded) {
		v := c.State.FPR[d.RB].Double()
		if v < 0 {
			v = -v
		}
		c.State.FPR[d.RD].SetDouble(v)
	})
}
