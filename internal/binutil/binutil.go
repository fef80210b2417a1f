// Package binutil provides little-endian serialization of the fixed-width
// integers ELF records are built from, plus a Builder that concatenates
// them into one byte sequence with no implicit padding.
package binutil

import "encoding/binary"

// Builder accumulates bytes in file order. It never pads on its own;
// callers that need alignment write explicit zero bytes.
type Builder struct {
	buf []byte
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Len() int { return len(b.buf) }

func (b *Builder) Bytes() []byte { return b.buf }

func (b *Builder) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

func (b *Builder) WriteBytes(v []byte) {
	b.buf = append(b.buf, v...)
}

func (b *Builder) WriteZeros(n int) {
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, 0)
	}
}

func (b *Builder) PutU8(v uint8) { b.buf = append(b.buf, v) }

func (b *Builder) PutU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) PutU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) PutU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) PutI32(v int32) { b.PutU32(uint32(v)) }

func (b *Builder) PutI64(v int64) { b.PutU64(uint64(v)) }

// PadTo pads the builder with zero bytes until its length is a
// multiple of n.
func (b *Builder) PadTo(n int) {
	for len(b.buf)%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

// LE32 and LE64 expose the same little-endian encodings as standalone
// helpers, for callers patching bytes in place (the linker's
// relocation application, for instance) rather than appending.
func LE32(v uint32) [4]byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return tmp
}

func LE64(v uint64) [8]byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return tmp
}
