package fit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// File is a fully decoded record stream: the header it arrived with and
// its data records in original order. Definition records are not listed;
// each data record stays bound to the definition that governed it.
type File struct {
	Header   FileHeader
	Messages []*Message
}

// Decoder turns a byte stream into typed records. It is cheap to construct
// and holds no per-file state; one decoder may be reused across files.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder returns a decoder logging field-level anomalies to logger.
// A nil logger discards them.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Decoder{logger: logger}
}

// DecodeFile reads and decodes the file at path.
func (d *Decoder) DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := d.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return f, nil
}

// Decode reads the stream from r to EOF and decodes it.
func (d *Decoder) Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return d.DecodeBytes(data)
}

// DecodeBytes decodes a complete in-memory stream. The declared payload
// length must be fully present and the trailing checksum must match; a
// stream failing either check yields no records at all.
func (d *Decoder) DecodeBytes(data []byte) (*File, error) {
	header, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	payloadEnd := int(header.Size) + int(header.DataSize)
	if len(data) < payloadEnd+2 {
		return nil, fmt.Errorf("%w: declared payload of %d bytes exceeds file", ErrFormat, header.DataSize)
	}

	declared := uint16(data[payloadEnd]) | uint16(data[payloadEnd+1])<<8
	if computed := Checksum(0, data[:payloadEnd]); computed != declared {
		return nil, fmt.Errorf("%w: file checksum mismatch (declared 0x%04X, computed 0x%04X)", ErrFormat, declared, computed)
	}

	file := &File{Header: header}

	// Active definition per local id; rebound every time a definition
	// record for that id appears.
	var slots [maxLocalIDs]*Definition

	payload := data[int(header.Size):payloadEnd]
	off := 0
	for off < len(payload) {
		hdr := payload[off]
		off++

		if hdr&headerCompressed == 0 && hdr&headerDefinition != 0 {
			def, n, err := decodeDefinition(hdr, payload[off:])
			if err != nil {
				return nil, err
			}
			slots[def.LocalID] = def
			off += n
			continue
		}

		localID := hdr & headerLocalMask
		if hdr&headerCompressed != 0 {
			// The 5-bit time offset in a compressed header is discarded;
			// output is always re-framed with normal headers.
			localID = (hdr & compressedLocalMask) >> compressedLocalShift
		}

		def := slots[localID]
		if def == nil {
			return nil, fmt.Errorf("%w: data record for local id %d before any definition", ErrFormat, localID)
		}

		size := def.DataSize()
		if off+size > len(payload) {
			return nil, fmt.Errorf("%w: truncated data record for %s", ErrFormat, kindName(def.GlobalID))
		}

		msg := newMessageForDefinition(def)
		if err := msg.decode(payload[off:off+size], def, d.logger); err != nil {
			return nil, err
		}
		file.Messages = append(file.Messages, msg)
		off += size
	}

	return file, nil
}
