package errors

import "testing"

func TestIsUndecodedInstruction(t *testing.T) {
	err := UndecodedInstruction(0x80001000, 0xFFFFFFFF)
	if !IsUndecodedInstruction(err) {
		t.Fatal("expected UndecodedInstruction")
	}
	if IsUnimplementedHandler(err) {
		t.Fatal("should not match UnimplementedHandler")
	}
}

func TestDivergedFields(t *testing.T) {
	err := ComplianceDivergence([]string{"gpr[3]", "cr"})
	fields := DivergedFields(err)
	if len(fields) != 2 || fields[0] != "gpr[3]" {
		t.Fatalf("got %v", fields)
	}
}
