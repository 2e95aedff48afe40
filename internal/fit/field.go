package fit

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Field holds one value slot of a data message. A field is only written to
// the wire while it is present; templates start out absent and become
// present when decoded from a stream or assigned programmatically.
//
// Numeric fields may carry several values when the governing definition
// declares a size larger than one unit width. Values are stored as raw bit
// patterns; this package never applies profile scale or offset, so decoding
// and re-encoding a field is loss-free.
type Field struct {
	Num  byte
	Name string
	Type BaseType

	// Size is the current on-wire width in bytes. Zero until the field is
	// decoded or assigned.
	Size int

	subs []SubField

	present bool
	nums    []uint64
	str     string
}

// SubField describes a conditional variant of a field whose interpretation
// depends on the value of a sibling field in the same message.
type SubField struct {
	Name string
	Type BaseType
	refs []subFieldRef
}

type subFieldRef struct {
	num   byte
	value uint64
}

// Present reports whether the field carries a value.
func (f *Field) Present() bool { return f.present }

// Clear discards the field's value. The owning message is responsible for
// removing the field from any bound definition.
func (f *Field) Clear() {
	f.present = false
	f.nums = nil
	f.str = ""
	f.Size = 0
}

// Uint returns the first numeric value as a raw bit pattern.
func (f *Field) Uint() (uint64, bool) {
	if !f.present || len(f.nums) == 0 {
		return 0, false
	}
	return f.nums[0], true
}

// Uints returns all numeric values of the field.
func (f *Field) Uints() []uint64 {
	if !f.present {
		return nil
	}
	out := make([]uint64, len(f.nums))
	copy(out, f.nums)
	return out
}

// SetUint assigns a single numeric value, sizing the field to one unit of
// its base type.
func (f *Field) SetUint(v uint64) {
	f.nums = []uint64{v}
	f.str = ""
	f.present = true
	f.Size = f.Type.UnitSize()
}

// SetUints assigns a numeric array value.
func (f *Field) SetUints(vs []uint64) {
	f.nums = make([]uint64, len(vs))
	copy(f.nums, vs)
	f.str = ""
	f.present = true
	f.Size = len(vs) * f.Type.UnitSize()
}

// StringValue returns the decoded text of a string field.
func (f *Field) StringValue() (string, bool) {
	if !f.present || f.Type != BaseString {
		return "", false
	}
	return f.str, true
}

// SetString assigns a text value. The on-wire size includes the trailing
// NUL terminator.
func (f *Field) SetString(s string) {
	f.str = s
	f.nums = nil
	f.present = true
	f.Size = len(s) + 1
}

// decode reads the field's value from data, which must be exactly the size
// the governing definition declared for it.
func (f *Field) decode(data []byte, order binary.ByteOrder) {
	f.Size = len(data)
	f.present = true

	if f.Type == BaseString {
		f.nums = nil
		f.str = decodeLenientString(data)
		return
	}

	unit := f.Type.UnitSize()
	count := len(data) / unit
	if count == 0 {
		count = 1
	}
	f.str = ""
	f.nums = make([]uint64, 0, count)
	for i := 0; i+unit <= len(data); i += unit {
		f.nums = append(f.nums, readUint(data[i:i+unit], order))
	}
	if len(f.nums) == 0 {
		// Declared size smaller than one unit; keep the raw bytes as
		// individual units so nothing is lost on re-encode.
		for _, b := range data {
			f.nums = append(f.nums, uint64(b))
		}
	}
}

// encode serializes the field's value into exactly size bytes.
func (f *Field) encode(size int, order binary.ByteOrder) []byte {
	out := make([]byte, size)

	if f.Type == BaseString {
		copy(out, f.str)
		if size > 0 {
			out[size-1] = 0x00
		}
		return out
	}

	unit := f.Type.UnitSize()
	if size < unit {
		// Declared size smaller than one unit; decode kept the raw bytes
		// as individual units, so emit them back byte for byte.
		for i := 0; i < size && i < len(f.nums); i++ {
			out[i] = byte(f.nums[i])
		}
		return out
	}
	invalid := f.Type.Invalid()
	idx := 0
	for off := 0; off+unit <= size; off += unit {
		v := invalid
		if idx < len(f.nums) {
			v = f.nums[idx]
		}
		writeUint(out[off:off+unit], v, order)
		idx++
	}
	return out
}

// naturalSize is the width the field occupies when its layout is derived
// from the value rather than a bound definition.
func (f *Field) naturalSize() int {
	if f.Type == BaseString {
		return len(f.str) + 1
	}
	n := len(f.nums)
	if n == 0 {
		n = 1
	}
	return n * f.Type.UnitSize()
}

// ResolveSubField returns the variant matching the sibling field values of
// msg, or nil when no variant applies. Selection is evaluated lazily at
// call time because the discriminant field may follow the dependent field
// in byte order.
func (f *Field) ResolveSubField(msg *Message) *SubField {
	for i := range f.subs {
		sub := &f.subs[i]
		for _, ref := range sub.refs {
			sibling := msg.Field(ref.num)
			if sibling == nil {
				continue
			}
			if v, ok := sibling.Uint(); ok && v == ref.value {
				return sub
			}
		}
	}
	return nil
}

// Label returns the display name of the field, preferring a resolved
// sub-field variant.
func (f *Field) Label(msg *Message) string {
	if sub := f.ResolveSubField(msg); sub != nil {
		return sub.Name
	}
	return f.Name
}

func (f *Field) clone() *Field {
	c := *f
	if f.nums != nil {
		c.nums = make([]uint64, len(f.nums))
		copy(c.nums, f.nums)
	}
	return &c
}

// decodeLenientString converts raw bytes into text, stopping at the first
// NUL. Invalid UTF-8 sequences are replaced rather than rejected; some
// producers write non-conforming bytes into free-text fields and a bad
// product name must not sink the whole record.
func decodeLenientString(data []byte) string {
	if i := strings.IndexByte(string(data), 0x00); i >= 0 {
		data = data[:i]
	}
	decoded, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func readUint(data []byte, order binary.ByteOrder) uint64 {
	switch len(data) {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(order.Uint16(data))
	case 4:
		return uint64(order.Uint32(data))
	case 8:
		return order.Uint64(data)
	default:
		var v uint64
		if order == binary.BigEndian {
			for _, b := range data {
				v = v<<8 | uint64(b)
			}
		} else {
			for i := len(data) - 1; i >= 0; i-- {
				v = v<<8 | uint64(data[i])
			}
		}
		return v
	}
}

func writeUint(dst []byte, v uint64, order binary.ByteOrder) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		order.PutUint16(dst, uint16(v))
	case 4:
		order.PutUint32(dst, uint32(v))
	case 8:
		order.PutUint64(dst, v)
	default:
		if order == binary.BigEndian {
			for i := len(dst) - 1; i >= 0; i-- {
				dst[i] = byte(v)
				v >>= 8
			}
		} else {
			for i := range dst {
				dst[i] = byte(v)
				v >>= 8
			}
		}
	}
}
