package fit_test

import (
	"encoding/binary"
	"testing"

	"fitfaker/internal/fit"
)

// fdef is a (field number, size, base type) triple for hand-built
// definition records.
type fdef struct {
	num, size, typ byte
}

func defRecord(local byte, global uint16, fields ...fdef) []byte {
	out := []byte{0x40 | (local & 0x0F), 0x00, 0x00}
	out = binary.LittleEndian.AppendUint16(out, global)
	out = append(out, byte(len(fields)))
	for _, f := range fields {
		out = append(out, f.num, f.size, f.typ)
	}
	return out
}

func dataRecord(local byte, payload []byte) []byte {
	return append([]byte{local & 0x0F}, payload...)
}

// buildStream frames records with a legacy 12-byte header and a valid
// trailing checksum.
func buildStream(t *testing.T, records ...[]byte) []byte {
	t.Helper()
	var payload []byte
	for _, r := range records {
		payload = append(payload, r...)
	}
	header := []byte{12, 0x10}
	header = binary.LittleEndian.AppendUint16(header, 2132)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(payload)))
	header = append(header, '.', 'F', 'I', 'T')

	out := append(header, payload...)
	crc := fit.Checksum(0, out)
	return append(out, byte(crc), byte(crc>>8))
}

func decodeBytes(t *testing.T, data []byte) *fit.File {
	t.Helper()
	file, err := fit.NewDecoder(nil).DecodeBytes(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return file
}

func le16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func le32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// fileIDFixture is a decoded stream holding a single file_id record from a
// Zwift-like producer.
func fileIDFixture(t *testing.T, manufacturer uint16, product uint16, serial uint32, created uint32) *fit.File {
	t.Helper()
	def := defRecord(0, fit.MsgFileID,
		fdef{fit.FileIDType, 1, byte(fit.BaseEnum)},
		fdef{fit.FileIDManufacturer, 2, byte(fit.BaseUint16)},
		fdef{fit.FileIDProduct, 2, byte(fit.BaseUint16)},
		fdef{fit.FileIDSerialNumber, 4, byte(fit.BaseUint32z)},
		fdef{fit.FileIDTimeCreated, 4, byte(fit.BaseUint32)},
	)
	data := dataRecord(0, concat(
		[]byte{4}, // activity file
		le16(manufacturer),
		le16(product),
		le32(serial),
		le32(created),
	))
	return decodeBytes(t, buildStream(t, def, data))
}
