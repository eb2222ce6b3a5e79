package state

import "testing"

func TestCRFieldRoundTrip(t *testing.T) {
	var cr CR
	cr.SetField(0, CRField{LT: true, SO: true})
	f := cr.Field(0)
	if !f.LT || f.GT || f.EQ || !f.SO {
		t.Fatalf("Field(0) = %+v", f)
	}
	// Other fields must be untouched.
	if cr.Field(1) != (CRField{}) {
		t.Fatalf("Field(1) should be zero, got %+v", cr.Field(1))
	}
}

func TestXERValueRoundTrip(t *testing.T) {
	x := XER{CA: true, OV: false, SO: true, ByteCount: 12}
	var y XER
	y.SetValue(x.Value())
	if y != x {
		t.Fatalf("XER round trip: got %+v, want %+v", y, x)
	}
}

func TestDecodeSPR(t *testing.T) {
	cases := []struct {
		raw  uint32
		want int
	}{
		{0x00020, 1}, // XER
		{0x00120, 9}, // CTR
	}
	for _, c := range cases {
		if got := DecodeSPR(c.raw); got != c.want {
			t.Errorf("DecodeSPR(%#x) = %d, want %d", c.raw, got, c.want)
		}
	}

	for i, want := range []int{912, 913, 914, 915, 916, 917, 918, 919} {
		// Encoded field: low 5 bits of the SPR number in the high half.
		raw := uint32(want&0x1F)<<5 | uint32(want>>5)
		if got := DecodeSPR(raw); got != want {
			t.Errorf("DecodeSPR GQR%d: got %d, want %d", i, got, want)
		}
	}
}

func TestReservationsBreakClearsAllHolders(t *testing.T) {
	r := NewReservations()
	r.Acquire(1, 0x1000)
	r.Acquire(2, 0x1000)
	r.Acquire(3, 0x2000)

	r.Break(0x1000)

	if r.Held(1, 0x1000) || r.Held(2, 0x1000) {
		t.Fatal("Break should clear all holders of the address")
	}
	if !r.Held(3, 0x2000) {
		t.Fatal("Break should not touch unrelated reservations")
	}
}
