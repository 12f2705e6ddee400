package transport

import "hash/crc32"

var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes the IEEE CRC-32 of data.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// VerifyCRC reports whether data's CRC-32 matches expected.
func VerifyCRC(data []byte, expected uint32) bool {
	return ComputeCRC(data) == expected
}
