package fit

import "fmt"

// BaseType identifies the on-wire encoding of a field value. The high bit
// marks multi-byte types whose layout depends on the record architecture.
type BaseType byte

const (
	BaseEnum    BaseType = 0x00
	BaseSint8   BaseType = 0x01
	BaseUint8   BaseType = 0x02
	BaseSint16  BaseType = 0x83
	BaseUint16  BaseType = 0x84
	BaseSint32  BaseType = 0x85
	BaseUint32  BaseType = 0x86
	BaseString  BaseType = 0x07
	BaseFloat32 BaseType = 0x88
	BaseFloat64 BaseType = 0x89
	BaseUint8z  BaseType = 0x0A
	BaseUint16z BaseType = 0x8B
	BaseUint32z BaseType = 0x8C
	BaseByte    BaseType = 0x0D
	BaseSint64  BaseType = 0x8E
	BaseUint64  BaseType = 0x8F
	BaseUint64z BaseType = 0x90
)

type baseTypeInfo struct {
	name    string
	size    int
	invalid uint64
}

var baseTypes = map[BaseType]baseTypeInfo{
	BaseEnum:    {"enum", 1, 0xFF},
	BaseSint8:   {"sint8", 1, 0x7F},
	BaseUint8:   {"uint8", 1, 0xFF},
	BaseSint16:  {"sint16", 2, 0x7FFF},
	BaseUint16:  {"uint16", 2, 0xFFFF},
	BaseSint32:  {"sint32", 4, 0x7FFFFFFF},
	BaseUint32:  {"uint32", 4, 0xFFFFFFFF},
	BaseString:  {"string", 1, 0x00},
	BaseFloat32: {"float32", 4, 0xFFFFFFFF},
	BaseFloat64: {"float64", 8, 0xFFFFFFFFFFFFFFFF},
	BaseUint8z:  {"uint8z", 1, 0x00},
	BaseUint16z: {"uint16z", 2, 0x00},
	BaseUint32z: {"uint32z", 4, 0x00},
	BaseByte:    {"byte", 1, 0xFF},
	BaseSint64:  {"sint64", 8, 0x7FFFFFFFFFFFFFFF},
	BaseUint64:  {"uint64", 8, 0xFFFFFFFFFFFFFFFF},
	BaseUint64z: {"uint64z", 8, 0x00},
}

// Known reports whether t is one of the base types defined by the format.
func (t BaseType) Known() bool {
	_, ok := baseTypes[t]
	return ok
}

// UnitSize returns the width in bytes of a single value of this type.
// Unknown base types are treated as single opaque bytes so that records
// carrying them still round-trip.
func (t BaseType) UnitSize() int {
	if info, ok := baseTypes[t]; ok {
		return info.size
	}
	return 1
}

// Invalid returns the sentinel bit pattern the format uses for "no value".
func (t BaseType) Invalid() uint64 {
	if info, ok := baseTypes[t]; ok {
		return info.invalid
	}
	return 0xFF
}

func (t BaseType) String() string {
	if info, ok := baseTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("base_type_0x%02X", byte(t))
}
