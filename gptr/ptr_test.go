package gptr

import (
	"testing"

	"github.com/kupua/espresso/gmem"
)

func newTestMemory(t *testing.T) *gmem.Memory {
	t.Helper()
	m := gmem.New()
	if !m.Initialise() {
		t.Fatal("Initialise failed")
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNullPointer(t *testing.T) {
	var p Ptr[uint32]
	if !p.IsNull() {
		t.Fatal("zero value Ptr should be null")
	}
	if p.Address() != 0 {
		t.Fatalf("null address = %#x", p.Address())
	}
}

func TestEndianRoundTrip(t *testing.T) {
	p := FromAddress[uint32](0x02001000)
	be := p.ToBE()
	back := be.ToNative()

	if !p.Equal(back) {
		t.Fatalf("round trip through BE storage changed address: %#x vs %#x", p.Address(), back.Address())
	}
	if p.EqualBE(be) != true {
		t.Fatal("EqualBE should compare decoded addresses, not raw storage")
	}
}

func TestPointerArithmetic(t *testing.T) {
	p := FromAddress[uint32](0x02001000)
	q := p.Add(2)
	if q.Address() != p.Address()+8 {
		t.Fatalf("Add(2) on uint32 pointer = %#x, want %#x", q.Address(), p.Address()+8)
	}
}

func TestGetAndFromHostPointer(t *testing.T) {
	mem := newTestMemory(t)
	ga := mem.Alloc(gmem.Application, 4096)

	p := FromAddress[uint32](ga)
	host := p.Get(mem)
	*host = 42

	back, err := FromHostPointer(mem, host)
	if err != nil || !back.Equal(p) {
		t.Fatalf("FromHostPointer round trip failed: %#x, %v", back.Address(), err)
	}
}
