// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compliance implements the interpreter/JIT debug-compliance
// mode: run one instruction through the interpreter, run the same
// instruction through a single-instruction JIT block on a shadow copy
// of state, and diff the two post-states field by field.
package compliance

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kupua/espresso/decode"
	"github.com/kupua/espresso/errors"
	"github.com/kupua/espresso/interp"
	"github.com/kupua/espresso/state"
)

// Checker implements interp.ComplianceChecker. It is the concrete wiring the
// root config installs into a Loop when Mode is Debug.
type Checker struct{}

// RunCompliant executes dec once via the interpreter on the live state
// and once via JIT (getSingle) on a shadow copy, then compares the two
// resulting ThreadStates. Kernel calls are excluded from the diff: they
// run host code with side effects outside guest state and are not
// stateless.
func (Checker) RunCompliant(c *interp.Context, dec *decode.Decoded, reg *Registry, jitp interp.JITProvider) error {
	return runCompliant(c, dec, reg, jitp)
}

// Registry is an alias for interp.Registry, the handler table the
// checker dispatches the live instruction through.
type Registry = interp.Registry

func runCompliant(c *interp.Context, dec *decode.Decoded, reg *Registry, jitp interp.JITProvider) error {
	shadow := *c.State
	heldBefore := shadow.Reserve && c.Reservations.Held(shadow.ThreadID, shadow.ReserveAddress)

	if err := reg.Dispatch(c, dec); err != nil {
		return err
	}
	if c.Err != nil {
		// Kernel calls are not stateless; compliance doesn't apply.
		return nil
	}

	if dec.ID == decode.KC || jitp == nil {
		return nil
	}

	block, ok := jitp.GetSingle(shadow.CIA)
	if !ok {
		return nil
	}
	if heldBefore {
		// The live run may have consumed the reservation (stwcx.); the
		// shadow run starts from the reservation the live run saw.
		c.Reservations.Acquire(shadow.ThreadID, shadow.ReserveAddress)
	}
	block(&shadow)

	diff := cmp.Diff(*c.State, shadow,
		cmpopts.IgnoreFields(state.ThreadState{}, "ThreadID"),
		cmpopts.EquateNaNs(),
		cmp.AllowUnexported(state.FPR{}),
	)
	if diff == "" {
		return nil
	}

	return errors.ComplianceDivergence(divergedFields(diff))
}

// divergedFields extracts top-level field names from a go-cmp textual
// diff; good enough to name which register groups differed without
// hand-rolling a full structural walk.
func divergedFields(diff string) []string {
	seen := map[string]bool{}
	var fields []string
	for _, tok := range splitLines(diff) {
		name := firstIdent(tok)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func firstIdent(line string) string {
	start := -1
	for i, r := range line {
		isIdent := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if isIdent && start == -1 {
			start = i
		} else if !isIdent && start != -1 {
			return line[start:i]
		}
	}
	if start != -1 {
		return line[start:]
	}
	return ""
}
