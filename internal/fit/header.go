package fit

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSizeLegacy = 12
	headerSizeCRC    = 14

	// protocolVersionOut and profileVersionOut are stamped on every file
	// this package writes.
	protocolVersionOut = 0x20
	profileVersionOut  = 2132
)

var fileMagic = [4]byte{'.', 'F', 'I', 'T'}

// FileHeader frames a record stream: declared payload length, protocol and
// profile versions, and (in the 14-byte form) a checksum over the first 12
// header bytes.
type FileHeader struct {
	Size            byte
	ProtocolVersion byte
	ProfileVersion  uint16
	DataSize        uint32
	CRC             uint16
}

// decodeHeader parses a file header from the front of data.
func decodeHeader(data []byte) (FileHeader, error) {
	if len(data) < headerSizeLegacy {
		return FileHeader{}, fmt.Errorf("%w: file shorter than header", ErrFormat)
	}
	h := FileHeader{Size: data[0]}
	if h.Size != headerSizeLegacy && h.Size != headerSizeCRC {
		return FileHeader{}, fmt.Errorf("%w: header size %d", ErrFormat, h.Size)
	}
	if len(data) < int(h.Size) {
		return FileHeader{}, fmt.Errorf("%w: file shorter than header", ErrFormat)
	}
	if [4]byte(data[8:12]) != fileMagic {
		return FileHeader{}, fmt.Errorf("%w: missing .FIT marker", ErrFormat)
	}
	h.ProtocolVersion = data[1]
	h.ProfileVersion = binary.LittleEndian.Uint16(data[2:4])
	h.DataSize = binary.LittleEndian.Uint32(data[4:8])

	if h.Size == headerSizeCRC {
		h.CRC = binary.LittleEndian.Uint16(data[12:14])
		// a zero header checksum means "not computed" and is accepted
		if h.CRC != 0 {
			if got := Checksum(0, data[:headerSizeLegacy]); got != h.CRC {
				return FileHeader{}, fmt.Errorf("%w: header checksum mismatch (declared 0x%04X, computed 0x%04X)", ErrFormat, h.CRC, got)
			}
		}
	}
	return h, nil
}

// encodeHeader emits a 14-byte header (with header checksum) declaring the
// given payload length.
func encodeHeader(dataSize uint32) []byte {
	out := make([]byte, headerSizeCRC)
	out[0] = headerSizeCRC
	out[1] = protocolVersionOut
	binary.LittleEndian.PutUint16(out[2:4], profileVersionOut)
	binary.LittleEndian.PutUint32(out[4:8], dataSize)
	copy(out[8:12], fileMagic[:])
	binary.LittleEndian.PutUint16(out[12:14], Checksum(0, out[:headerSizeLegacy]))
	return out
}
