package fit

import (
	"fmt"
	"log/slog"
)

// Message is one data record: a set of field values bound, optionally, to
// the definition that governed its byte layout when it was decoded.
//
// The binding may be cleared to force the layout to be re-derived from the
// message's own present fields. This is mandatory after mutating the field
// set of a decoded message; encoding against the original definition would
// otherwise write stale offsets and corrupt the output.
type Message struct {
	Name     string
	GlobalID uint16
	LocalID  byte

	// Def is the bound definition, or nil when the layout must be derived
	// from the present fields at encode time.
	Def *Definition

	// Fields in canonical order. Decoding and encoding both walk the
	// governing definition, so this order only matters for derived
	// layouts.
	Fields    []*Field
	DevFields []*DeveloperField
}

// DeveloperField carries an application-defined field value. Its content
// is opaque to this package; the bytes are preserved verbatim.
type DeveloperField struct {
	Num      byte
	DevIndex byte
	data     []byte
	present  bool
}

// Present reports whether the developer field carries a value.
func (f *DeveloperField) Present() bool { return f.present }

// Bytes returns the raw value bytes.
func (f *DeveloperField) Bytes() []byte { return f.data }

// SetBytes assigns a raw value.
func (f *DeveloperField) SetBytes(data []byte) {
	f.data = append([]byte(nil), data...)
	f.present = true
}

// Field returns the field with the given number, or nil.
func (m *Message) Field(num byte) *Field {
	for _, f := range m.Fields {
		if f.Num == num {
			return f
		}
	}
	return nil
}

// DevField returns the developer field keyed by (devIndex, num), or nil.
func (m *Message) DevField(devIndex, num byte) *DeveloperField {
	for _, f := range m.DevFields {
		if f.DevIndex == devIndex && f.Num == num {
			return f
		}
	}
	return nil
}

// Uint returns the first numeric value of the given field.
func (m *Message) Uint(num byte) (uint64, bool) {
	if f := m.Field(num); f != nil {
		return f.Uint()
	}
	return 0, false
}

// SetUint assigns a numeric value, creating an untyped slot if the message
// does not model the field. Mutation clears the definition binding.
func (m *Message) SetUint(num byte, typ BaseType, v uint64) {
	f := m.Field(num)
	if f == nil {
		f = &Field{Num: num, Name: fmt.Sprintf("field_%d", num), Type: typ}
		m.Fields = append(m.Fields, f)
	}
	f.SetUint(v)
	m.reconcileBinding(f)
}

// SetString assigns a text value, creating a slot if needed.
func (m *Message) SetString(num byte, s string) {
	f := m.Field(num)
	if f == nil {
		f = &Field{Num: num, Name: fmt.Sprintf("field_%d", num), Type: BaseString}
		m.Fields = append(m.Fields, f)
	}
	f.SetString(s)
	m.reconcileBinding(f)
}

// reconcileBinding drops the definition binding when a mutated field no
// longer fits the declared layout.
func (m *Message) reconcileBinding(f *Field) {
	if m.Def == nil {
		return
	}
	fd, ok := m.Def.Lookup(f.Num)
	if !ok || int(fd.Size) != f.Size {
		m.ClearDefinition()
	}
}

// String returns the text value of the given field.
func (m *Message) String(num byte) (string, bool) {
	if f := m.Field(num); f != nil {
		return f.StringValue()
	}
	return "", false
}

// ClearField removes the field's value and drops it from any bound
// definition, keeping layout and content in step.
func (m *Message) ClearField(num byte) {
	f := m.Field(num)
	if f == nil {
		return
	}
	f.Clear()
	if m.Def != nil {
		m.Def.Remove(num)
	}
}

// ClearDefinition unbinds the message from the definition it was decoded
// with. The next encode derives a fresh layout from the present fields.
func (m *Message) ClearDefinition() {
	m.Def = nil
}

// DefinitionStale reports whether the bound definition declares fields the
// live field set no longer fully contains. Such a binding would corrupt
// output and must be cleared before encoding. A nil binding is never
// stale.
func (m *Message) DefinitionStale() bool {
	if m.Def == nil {
		return false
	}
	return m.definitionStale()
}

func (m *Message) definitionStale() bool {
	for _, fd := range m.Def.Fields {
		f := m.Field(fd.Num)
		if f == nil || !f.Present() {
			return true
		}
	}
	for _, fd := range m.Def.DevFields {
		f := m.DevField(fd.DevIndex, fd.Num)
		if f == nil || !f.Present() {
			return true
		}
	}
	return false
}

// decode reads the message body from data, walking def's field list in
// order. Field numbers the message does not model are skipped; the bytes
// stay accounted for through the definition, and the stale-binding sweep
// deals with them before any re-encode.
func (m *Message) decode(data []byte, def *Definition, logger *slog.Logger) error {
	m.Def = def
	m.LocalID = def.LocalID
	order := def.ByteOrder()

	off := 0
	for _, fd := range def.Fields {
		size := int(fd.Size)
		if off+size > len(data) {
			return fmt.Errorf("%w: %s record shorter than definition", ErrFormat, m.Name)
		}
		f := m.Field(fd.Num)
		if f == nil {
			logger.Debug("skipping unknown field",
				"message", m.Name,
				"global_id", m.GlobalID,
				"field", fd.Num,
				"size", size)
			off += size
			continue
		}
		f.decode(data[off:off+size], order)
		off += size
	}

	for _, fd := range def.DevFields {
		size := int(fd.Size)
		if off+size > len(data) {
			return fmt.Errorf("%w: %s record shorter than definition", ErrFormat, m.Name)
		}
		if size == 0 {
			logger.Debug("skipping empty developer field",
				"message", m.Name,
				"dev_index", fd.DevIndex,
				"field", fd.Num)
			continue
		}
		f := m.DevField(fd.DevIndex, fd.Num)
		if f == nil {
			f = &DeveloperField{Num: fd.Num, DevIndex: fd.DevIndex}
			m.DevFields = append(m.DevFields, f)
		}
		f.SetBytes(data[off : off+size])
		off += size
	}
	return nil
}

// Encode serializes the message body per the bound definition, or per its
// own present fields when unbound. A stale binding is cleared first; the
// check runs on every encode so any field-mutation path stays safe.
func (m *Message) Encode() ([]byte, error) {
	if m.DefinitionStale() {
		m.ClearDefinition()
	}

	if m.Def == nil {
		out := make([]byte, 0, m.Size())
		for _, f := range m.Fields {
			if !f.Present() {
				continue
			}
			out = append(out, f.encode(f.naturalSize(), defaultByteOrder())...)
		}
		for _, f := range m.DevFields {
			if !f.Present() {
				continue
			}
			out = append(out, f.data...)
		}
		return out, nil
	}

	order := m.Def.ByteOrder()
	out := make([]byte, 0, m.Def.DataSize())
	for _, fd := range m.Def.Fields {
		f := m.Field(fd.Num)
		if f == nil || !f.Present() {
			return nil, fmt.Errorf("%w: %s definition references absent field %d", ErrFormat, m.Name, fd.Num)
		}
		out = append(out, f.encode(int(fd.Size), order)...)
	}
	for _, fd := range m.Def.DevFields {
		f := m.DevField(fd.DevIndex, fd.Num)
		buf := make([]byte, int(fd.Size))
		if f != nil && f.Present() {
			copy(buf, f.data)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// Size returns the encoded byte length of the message body.
func (m *Message) Size() int {
	if m.Def != nil && !m.definitionStale() {
		return m.Def.DataSize()
	}
	total := 0
	for _, f := range m.Fields {
		if f.Present() {
			total += f.naturalSize()
		}
	}
	for _, f := range m.DevFields {
		if f.Present() {
			total += len(f.data)
		}
	}
	return total
}

// Clone returns a deep copy of the message sharing no mutable state with
// the original.
func (m *Message) Clone() *Message {
	c := &Message{
		Name:     m.Name,
		GlobalID: m.GlobalID,
		LocalID:  m.LocalID,
	}
	if m.Def != nil {
		c.Def = m.Def.clone()
	}
	c.Fields = make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		c.Fields = append(c.Fields, f.clone())
	}
	c.DevFields = make([]*DeveloperField, 0, len(m.DevFields))
	for _, f := range m.DevFields {
		df := &DeveloperField{Num: f.Num, DevIndex: f.DevIndex, present: f.present}
		df.data = append([]byte(nil), f.data...)
		c.DevFields = append(c.DevFields, df)
	}
	return c
}
