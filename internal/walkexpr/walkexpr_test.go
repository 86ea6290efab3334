package walkexpr

import "testing"

func TestEvalReadsLittleEndianWidths(t *testing.T) {
	window := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a}

	e, err := Parse("b[0]")
	if err != nil {
		t.Fatal(err)
	}
	if got, err := e.Eval(window); err != nil || got != 1 {
		t.Fatalf("b[0] = %d, %v, want 1", got, err)
	}

	e, err = Parse("h[0] + 4")
	if err != nil {
		t.Fatal(err)
	}
	// little-endian uint16 at [0,1] = 0x0201 = 513
	if got, err := e.Eval(window); err != nil || got != 517 {
		t.Fatalf("h[0]+4 = %d, %v, want 517", got, err)
	}

	e, err = Parse("w[2]")
	if err != nil {
		t.Fatal(err)
	}
	// bytes[2:6] = 03 04 05 06 little-endian = 0x06050403
	if got, err := e.Eval(window); err != nil || got != 0x06050403 {
		t.Fatalf("w[2] = %#x, %v, want 0x06050403", got, err)
	}
}

func TestEvalRejectsOutOfRangeIndex(t *testing.T) {
	window := []byte{1, 2, 3}
	e, err := Parse("d[0]")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Eval(window); err == nil {
		t.Fatal("expected an error reading an 8-byte word from a 3-byte window")
	}
}
