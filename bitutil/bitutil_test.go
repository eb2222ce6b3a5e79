package bitutil

import "testing"

func TestSwapIdempotent(t *testing.T) {
	if got := Swap16(Swap16(0x1234)); got != 0x1234 {
		t.Errorf("Swap16 round trip: got %#x", got)
	}
	if got := Swap32(Swap32(0x12345678)); got != 0x12345678 {
		t.Errorf("Swap32 round trip: got %#x", got)
	}
	if got := Swap64(Swap64(0x0123456789ABCDEF)); got != 0x0123456789ABCDEF {
		t.Errorf("Swap64 round trip: got %#x", got)
	}
}

func TestBits(t *testing.T) {
	// Primary opcode occupies bits 0..5 of the word.
	word := uint32(0b111111_00000_00000_0000000000000000)
	if got := Bits(word, 0, 5); got != 0x3F {
		t.Errorf("Bits(0,5) = %#x, want 0x3f", got)
	}
}

func TestSignExtend(t *testing.T) {
	if got := SignExtend(0x7FFF, 16); got != 0x7FFF {
		t.Errorf("SignExtend positive: got %#x", got)
	}
	if got := SignExtend(0xFFFF, 16); got != -1 {
		t.Errorf("SignExtend negative: got %d, want -1", got)
	}
}
