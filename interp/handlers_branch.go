// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/state"
)

// evalBO implements the PPC branch-condition table: BO bit 2 (0x04)
// clear decrements and tests CTR, with bit 3 (0x02) selecting CTR==0
// versus CTR!=0; BO bit 0 (0x10) clear tests CR bit BI, with bit 1
// (0x08) selecting whether the bit must be set or clear.
func evalBO(bo, bi uint32, cr state.CR, ctr *uint32) bool {
	ctrOK := true
	if bo&0x04 == 0 { // decrement and test CTR
		*ctr--
		if bo&0x02 == 0 {
			ctrOK = *ctr != 0
		} else {
			ctrOK = *ctr == 0
		}
	}

	condOK := true
	if bo&0x10 == 0 { // test CR condition
		bitSet := cr.Bit(int(bi))
		if bo&0x08 == 0 {
			condOK = !bitSet
		} else {
			condOK = bitSet
		}
	}

	return ctrOK && condOK
}

func registerBranchHandlers(r *Registry) {
	r.Register(decode.B, func(c *Context, d *decode.Decoded) {
		target := branchTarget(c.State.CIA, d.LI, d.AA)
		if d.LK {
			c.State.LR = c.State.CIA + 4
		}
		c.State.NIA = target
	})

	r.Register(decode.BC, func(c *Context, d *decode.Decoded) {
		taken := evalBO(d.BO, d.BI, c.State.CR, &c.State.CTR)
		if taken {
			target := branchTarget(c.State.CIA, d.BD, d.AA)
			if d.LK {
				c.State.LR = c.State.CIA + 4
			}
			c.State.NIA = target
		}
	})

	r.Register(decode.BCLR, func(c *Context, d *decode.Decoded) {
		// BCLR decodes through FormXL, which names these fields crbD/crbA;
		// for this opcode they hold BO/BI, same bit positions as FormB.
		taken := evalBO(d.RD, d.RA, c.State.CR, &c.State.CTR)
		if taken {
			target := c.State.LR &^ 0x3
			if d.LK {
				c.State.LR = c.State.CIA + 4
			}
			c.State.NIA = target
		}
	})

	r.Register(decode.BCCTR, func(c *Context, d *decode.Decoded) {
		// See BCLR above: RD/RA carry BO/BI for this opcode.
		taken := evalBO(d.RD, d.RA, c.State.CR, &c.State.CTR)
		if taken {
			target := c.State.CTR &^ 0x3
			if d.LK {
				c.State.LR = c.State.CIA + 4
			}
			c.State.NIA = target
		}
	})
}

func branchTarget(cia uint32, disp int32, absolute bool) uint32 {
	if absolute {
		return uint32(disp)
	}
	return cia + uint32(disp)
}
