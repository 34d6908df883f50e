// stand for bytes helper
package bx

import "encoding/binary"

// BE is the byte order of every on-disk integer (heap page codec).
var BE = binary.BigEndian

func I32(b []byte) int32            { return int32(BE.Uint32(b)) }
func U32(b []byte) uint32           { return BE.Uint32(b) }
func PutI32(b []byte, v int32)      { BE.PutUint32(b, uint32(v)) }
func PutU32(b []byte, v uint32)     { BE.PutUint32(b, v) }
func I32At(b []byte, off int) int32 { return I32(b[off:]) }
func PutI32At(b []byte, off int, v int32) {
	PutI32(b[off:], v)
}

// Bit reports bit i of a LSB-first bitmap.
func Bit(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(uint(i)%8)) != 0
}

// SetBit sets or clears bit i of a LSB-first bitmap.
func SetBit(bitmap []byte, i int, v bool) {
	if v {
		bitmap[i/8] |= 1 << (uint(i) % 8)
	} else {
		bitmap[i/8] &^= 1 << (uint(i) % 8)
	}
}

// CeilDiv returns ceil(a/b) for positive b.
func CeilDiv(a, b int) int { return (a + b - 1) / b }
