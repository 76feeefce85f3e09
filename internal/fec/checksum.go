package fec

import (
	"encoding/binary"
	"hash/crc32"
)

// ChecksumSize is the length of an appended CRC-32 trailer.
const ChecksumSize = 4

// CRC32 computes the IEEE CRC-32 of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// AppendCRC32 appends the big-endian CRC-32 of data to it.
func AppendCRC32(data []byte) []byte {
	return binary.BigEndian.AppendUint32(data, CRC32(data))
}

// VerifyCRC32 checks the trailer written by AppendCRC32 and returns the
// data without it.
func VerifyCRC32(dataWithCRC []byte) ([]byte, bool) {
	if len(dataWithCRC) < ChecksumSize {
		return nil, false
	}

	data := dataWithCRC[:len(dataWithCRC)-ChecksumSize]
	expected := binary.BigEndian.Uint32(dataWithCRC[len(dataWithCRC)-ChecksumSize:])
	return data, CRC32(data) == expected
}
