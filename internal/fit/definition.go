package fit

import (
	"encoding/binary"
	"fmt"
)

// Record header layout.
const (
	headerCompressed    = 0x80
	headerDefinition    = 0x40
	headerDeveloperData = 0x20
	headerLocalMask     = 0x0F

	compressedLocalMask  = 0x60
	compressedLocalShift = 5
)

// Architecture bytes inside a definition record.
const (
	archLittleEndian = 0x00
	archBigEndian    = 0x01
)

// maxLocalIDs is the size of the local message id space. Local ids are
// reused and rebound as a stream progresses; the decoder keeps one active
// definition slot per id.
const maxLocalIDs = 16

// FieldDef is one (field number, size, base type) entry of a definition.
type FieldDef struct {
	Num  byte
	Size byte
	Type BaseType
}

// DevFieldDef describes a developer field, additionally qualified by the
// developer data index that scopes its field number.
type DevFieldDef struct {
	Num      byte
	Size     byte
	DevIndex byte
}

// Definition is a definition record: it declares the byte layout of every
// data record that follows under the same local id, until superseded.
type Definition struct {
	LocalID   byte
	BigEndian bool
	GlobalID  uint16
	Fields    []FieldDef
	DevFields []DevFieldDef
}

// ByteOrder returns the byte order the definition declares for multi-byte
// values.
func (d *Definition) ByteOrder() binary.ByteOrder {
	if d.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Lookup returns the definition entry for the given field number.
func (d *Definition) Lookup(num byte) (FieldDef, bool) {
	for _, fd := range d.Fields {
		if fd.Num == num {
			return fd, true
		}
	}
	return FieldDef{}, false
}

// LookupDev returns the developer field entry for (devIndex, num).
func (d *Definition) LookupDev(devIndex, num byte) (DevFieldDef, bool) {
	for _, fd := range d.DevFields {
		if fd.DevIndex == devIndex && fd.Num == num {
			return fd, true
		}
	}
	return DevFieldDef{}, false
}

// Remove deletes the entry for the given field number, if present. Called
// when a field is cleared from the owning message so the layout stays in
// step with the live field set.
func (d *Definition) Remove(num byte) {
	for i, fd := range d.Fields {
		if fd.Num == num {
			d.Fields = append(d.Fields[:i], d.Fields[i+1:]...)
			return
		}
	}
}

// DataSize returns the byte length of a data record governed by this
// definition.
func (d *Definition) DataSize() int {
	total := 0
	for _, fd := range d.Fields {
		total += int(fd.Size)
	}
	for _, fd := range d.DevFields {
		total += int(fd.Size)
	}
	return total
}

// LayoutEquals reports whether two definitions declare the same record
// layout. Local id is ignored; it is an addressing concern, not a layout
// one.
func (d *Definition) LayoutEquals(other *Definition) bool {
	if other == nil {
		return false
	}
	if d.GlobalID != other.GlobalID || d.BigEndian != other.BigEndian {
		return false
	}
	if len(d.Fields) != len(other.Fields) || len(d.DevFields) != len(other.DevFields) {
		return false
	}
	for i, fd := range d.Fields {
		if fd != other.Fields[i] {
			return false
		}
	}
	for i, fd := range d.DevFields {
		if fd != other.DevFields[i] {
			return false
		}
	}
	return true
}

// Encode returns the full wire form of the definition record, including
// its record header byte.
func (d *Definition) Encode() []byte {
	header := byte(headerDefinition) | (d.LocalID & headerLocalMask)
	if len(d.DevFields) > 0 {
		header |= headerDeveloperData
	}

	out := make([]byte, 0, 6+3*len(d.Fields)+1+3*len(d.DevFields))
	out = append(out, header, 0x00)
	if d.BigEndian {
		out = append(out, archBigEndian)
	} else {
		out = append(out, archLittleEndian)
	}
	var global [2]byte
	d.ByteOrder().PutUint16(global[:], d.GlobalID)
	out = append(out, global[0], global[1])
	out = append(out, byte(len(d.Fields)))
	for _, fd := range d.Fields {
		out = append(out, fd.Num, fd.Size, byte(fd.Type))
	}
	if len(d.DevFields) > 0 {
		out = append(out, byte(len(d.DevFields)))
		for _, fd := range d.DevFields {
			out = append(out, fd.Num, fd.Size, fd.DevIndex)
		}
	}
	return out
}

func (d *Definition) clone() *Definition {
	c := &Definition{
		LocalID:   d.LocalID,
		BigEndian: d.BigEndian,
		GlobalID:  d.GlobalID,
	}
	c.Fields = append([]FieldDef(nil), d.Fields...)
	c.DevFields = append([]DevFieldDef(nil), d.DevFields...)
	return c
}

// decodeDefinition parses the body of a definition record (everything after
// the record header byte). It returns the definition and the number of
// bytes consumed.
func decodeDefinition(header byte, data []byte) (*Definition, int, error) {
	if len(data) < 5 {
		return nil, 0, fmt.Errorf("%w: truncated definition record", ErrFormat)
	}
	def := &Definition{LocalID: header & headerLocalMask}

	switch data[1] {
	case archLittleEndian:
	case archBigEndian:
		def.BigEndian = true
	default:
		return nil, 0, fmt.Errorf("%w: definition architecture 0x%02X", ErrFormat, data[1])
	}
	def.GlobalID = def.ByteOrder().Uint16(data[2:4])

	n := int(data[4])
	off := 5
	if len(data) < off+3*n {
		return nil, 0, fmt.Errorf("%w: truncated field definitions", ErrFormat)
	}
	def.Fields = make([]FieldDef, 0, n)
	for i := 0; i < n; i++ {
		def.Fields = append(def.Fields, FieldDef{
			Num:  data[off],
			Size: data[off+1],
			Type: BaseType(data[off+2]),
		})
		off += 3
	}

	if header&headerDeveloperData != 0 {
		if len(data) < off+1 {
			return nil, 0, fmt.Errorf("%w: missing developer field count", ErrFormat)
		}
		dn := int(data[off])
		off++
		if len(data) < off+3*dn {
			return nil, 0, fmt.Errorf("%w: truncated developer field definitions", ErrFormat)
		}
		def.DevFields = make([]DevFieldDef, 0, dn)
		for i := 0; i < dn; i++ {
			def.DevFields = append(def.DevFields, DevFieldDef{
				Num:      data[off],
				Size:     data[off+1],
				DevIndex: data[off+2],
			})
			off += 3
		}
	}
	return def, off, nil
}

// defaultByteOrder is used when a layout is derived rather than decoded.
// Writers in the wild overwhelmingly emit little-endian records.
func defaultByteOrder() binary.ByteOrder { return binary.LittleEndian }

// DeriveDefinition builds a definition containing exactly the fields
// currently present in msg, in the message's canonical field order, each
// sized per its value's natural width.
func DeriveDefinition(msg *Message, localID byte) *Definition {
	def := &Definition{
		LocalID:  localID,
		GlobalID: msg.GlobalID,
	}
	for _, f := range msg.Fields {
		if !f.Present() {
			continue
		}
		def.Fields = append(def.Fields, FieldDef{
			Num:  f.Num,
			Size: byte(f.naturalSize()),
			Type: f.Type,
		})
	}
	for _, f := range msg.DevFields {
		if !f.Present() {
			continue
		}
		def.DevFields = append(def.DevFields, DevFieldDef{
			Num:      f.Num,
			Size:     byte(len(f.data)),
			DevIndex: f.DevIndex,
		})
	}
	return def
}
