package util

/*
Encoding utilities for fixed-width host-order integers. These do not check
lengths; callers must supply buffers of at least four bytes or a panic will
result.
*/

import (
	"encoding/binary"
)

// ReadI32 reads a native-endian int32 from src and stores it in x, returning
// the read length.
func ReadI32(src []byte, x *int32) int {
	*x = int32(binary.NativeEndian.Uint32(src))
	return 4
}

// I32 writes a native-endian int32 to dst and returns the written length.
func I32(dst []byte, src int32) int {
	binary.NativeEndian.PutUint32(dst, uint32(src))
	return 4
}

// I32b returns a byte slice containing the native-endian encoding of each
// supplied value in order.
func I32b(values ...int32) []byte {
	buf := make([]byte, 4*len(values))
	offset := 0
	for _, v := range values {
		offset += I32(buf[offset:], v)
	}
	return buf
}
