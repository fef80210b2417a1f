package binutil

import "testing"

func TestBuilderLittleEndian(t *testing.T) {
	b := NewBuilder()
	b.PutU8(0x7f)
	b.PutU16(0x0102)
	b.PutU32(0x01020304)
	b.PutU64(0x0102030405060708)

	got := b.Bytes()
	want := []byte{
		0x7f,
		0x02, 0x01,
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestPadTo(t *testing.T) {
	b := NewBuilder()
	b.WriteBytes([]byte{1, 2, 3})
	b.PadTo(4)
	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	if b.Bytes()[3] != 0 {
		t.Fatalf("padding byte = %x, want 0", b.Bytes()[3])
	}

	b2 := NewBuilder()
	b2.WriteBytes([]byte{1, 2, 3, 4})
	b2.PadTo(4)
	if b2.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 (already aligned)", b2.Len())
	}
}
