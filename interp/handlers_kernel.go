// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package interp

import (
	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/errors"
)

// registerKernelHandler wires the `kc` synthetic opcode to the syscall
// table. kci==0 means the loader bound the call to an index with no
// implementation registered; the core traps rather than guessing.
func registerKernelHandler(r *Registry) {
	r.Register(decode.KC, func(c *Context, d *decode.Decoded) {
		if d.KCI == 0 {
			name, _, _ := c.Syscalls.GetSyscall(int(d.KCN))
			c.Err = errors.UnimplementedSyscall(name)
			c.State.NIA = c.State.CIA // do not advance
			return
		}

		name, fn, ok := c.Syscalls.GetSyscall(int(d.KCN))
		if !ok || fn == nil {
			c.Err = errors.UnimplementedSyscall(name)
			c.State.NIA = c.State.CIA
			return
		}

		fn(c.State)
	})
}
