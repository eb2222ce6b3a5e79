// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trap defines the callback sentinel: the one reserved guest
// address the interpreter loop recognizes as "stop here, cleanly".
package trap

// CallbackAddr is a guest address outside any mapped view. ExecuteSub
// places it in LR before calling into the guest; branch-to-LR loading
// this value into NIA terminates the loop.
const CallbackAddr uint32 = 0xFBADCDE0

// IsCallback reports whether addr is the callback sentinel.
func IsCallback(addr uint32) bool {
	return addr == CallbackAddr
}

// ID names the single recognized loop-exit condition. Kept as a type
// (rather than a bare bool) so a future exit reason can be added
// without changing the loop's signature.
type ID int

const (
	// Callback is the only termination condition the interpreter loop
	// recognizes.
	Callback = ID(iota)
)

func (ID) String() string { return "callback" }

func (id ID) Error() string {
	return "trap: " + id.String()
}
