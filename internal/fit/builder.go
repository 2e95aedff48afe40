package fit

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
)

// Builder assembles an output stream from an ordered sequence of data
// records, regenerating definition records only when a record's layout
// differs from the last definition emitted for its kind. Every data record
// in the output is therefore preceded by a definition that matches it
// exactly, without redundant definition repetition.
type Builder struct {
	logger *slog.Logger

	buf bytes.Buffer

	lastDef    map[uint16]*Definition
	localOf    map[uint16]byte
	localOwner [maxLocalIDs]uint16
	localUsed  [maxLocalIDs]bool
	nextLocal  byte
}

// NewBuilder returns an empty builder. A nil logger discards debug notes.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		logger:  logger,
		lastDef: make(map[uint16]*Definition),
		localOf: make(map[uint16]byte),
	}
}

// Add appends one data record, emitting a fresh definition first when the
// record's layout requires it.
func (b *Builder) Add(msg *Message) error {
	def := b.requiredDefinition(msg)

	last := b.lastDef[msg.GlobalID]
	if last == nil || !last.LayoutEquals(def) || !b.localCurrent(last) {
		def.LocalID = b.assignLocal(msg.GlobalID)
		b.buf.Write(def.Encode())
		b.lastDef[msg.GlobalID] = def
		b.logger.Debug("emitted definition",
			"message", msg.Name,
			"global_id", msg.GlobalID,
			"local_id", def.LocalID,
			"fields", len(def.Fields),
			"developer_fields", len(def.DevFields))
	} else {
		def = last
	}

	msg.Def = def
	msg.LocalID = def.LocalID
	body, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Name, err)
	}
	b.buf.WriteByte(def.LocalID & headerLocalMask)
	b.buf.Write(body)
	return nil
}

// requiredDefinition computes the layout the record needs: its bound
// definition when still valid against the live field set, otherwise one
// derived from the present fields.
func (b *Builder) requiredDefinition(msg *Message) *Definition {
	if msg.Def != nil && !msg.DefinitionStale() && b.definitionCovers(msg) {
		return msg.Def.clone()
	}
	return DeriveDefinition(msg, 0)
}

// definitionCovers reports whether every present field of msg appears in
// its bound definition. A field added after decode would otherwise be
// silently dropped by a bound-definition encode.
func (b *Builder) definitionCovers(msg *Message) bool {
	for _, f := range msg.Fields {
		if !f.Present() {
			continue
		}
		if _, ok := msg.Def.Lookup(f.Num); !ok {
			return false
		}
	}
	for _, f := range msg.DevFields {
		if !f.Present() {
			continue
		}
		if _, ok := msg.Def.LookupDev(f.DevIndex, f.Num); !ok {
			return false
		}
	}
	return true
}

// localCurrent reports whether the definition still owns its local id
// slot; a rotated id space may have rebound it to another kind.
func (b *Builder) localCurrent(def *Definition) bool {
	id := def.LocalID & headerLocalMask
	return b.localUsed[id] && b.localOwner[id] == def.GlobalID
}

// assignLocal returns the local id to use for the given kind, reusing its
// existing slot when possible and rotating through the id space otherwise.
func (b *Builder) assignLocal(globalID uint16) byte {
	if id, ok := b.localOf[globalID]; ok && b.localOwner[id] == globalID {
		return id
	}
	id := b.nextLocal % maxLocalIDs
	b.nextLocal = (b.nextLocal + 1) % maxLocalIDs
	if b.localUsed[id] {
		// evicted kind must re-emit its definition next time
		delete(b.lastDef, b.localOwner[id])
		delete(b.localOf, b.localOwner[id])
	}
	b.localUsed[id] = true
	b.localOwner[id] = globalID
	b.localOf[globalID] = id
	return id
}

// Len returns the payload size accumulated so far.
func (b *Builder) Len() int { return b.buf.Len() }

// Bytes returns the complete encoded stream: header, records, and trailing
// checksum.
func (b *Builder) Bytes() []byte {
	header := encodeHeader(uint32(b.buf.Len()))
	out := make([]byte, 0, len(header)+b.buf.Len()+2)
	out = append(out, header...)
	out = append(out, b.buf.Bytes()...)
	crc := Checksum(0, out)
	out = append(out, byte(crc), byte(crc>>8))
	return out
}

// WriteTo writes the complete stream to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// Encode runs every message of f through a fresh builder and returns the
// resulting stream bytes.
func (f *File) Encode(logger *slog.Logger) ([]byte, error) {
	b := NewBuilder(logger)
	for _, msg := range f.Messages {
		if err := b.Add(msg); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}
