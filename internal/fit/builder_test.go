package fit_test

import (
	"bytes"
	"testing"

	"fitfaker/internal/fit"
)

func TestBuilderEmitsDefinitionOncePerLayout(t *testing.T) {
	b := fit.NewBuilder(nil)
	for i := 0; i < 5; i++ {
		m := fit.NewMessage(fit.MsgRecord)
		m.SetUint(20, fit.BaseUint16, uint64(100+i))
		if err := b.Add(m); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	stream := b.Bytes()
	file, err := fit.NewDecoder(nil).DecodeBytes(stream)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(file.Messages) != 5 {
		t.Fatalf("decoded %d messages", len(file.Messages))
	}

	// One definition plus five 1-byte-header, 2-byte-body data records.
	defSize := 1 + 5 + 3
	wantPayload := defSize + 5*3
	gotPayload := len(stream) - int(stream[0]) - 2
	if gotPayload != wantPayload {
		t.Fatalf("payload %d bytes, want %d (definition must not repeat)", gotPayload, wantPayload)
	}
}

func TestBuilderReEmitsDefinitionWhenLayoutChanges(t *testing.T) {
	b := fit.NewBuilder(nil)

	m1 := fit.NewMessage(fit.MsgDeviceInfo)
	m1.SetUint(fit.DeviceInfoDeviceIndex, fit.BaseUint8, 0)
	if err := b.Add(m1); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Same kind, different field set: a new definition must precede it.
	m2 := fit.NewMessage(fit.MsgDeviceInfo)
	m2.SetUint(fit.DeviceInfoDeviceIndex, fit.BaseUint8, 1)
	m2.SetUint(fit.DeviceInfoManufacturer, fit.BaseUint16, uint64(fit.ManufacturerGarmin))
	if err := b.Add(m2); err != nil {
		t.Fatalf("add: %v", err)
	}

	file, err := fit.NewDecoder(nil).DecodeBytes(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(file.Messages) != 2 {
		t.Fatalf("decoded %d messages", len(file.Messages))
	}
	if _, ok := file.Messages[1].Uint(fit.DeviceInfoManufacturer); !ok {
		t.Fatal("second record lost its extra field")
	}
}

func TestBuilderInterleavedKindsKeepDistinctLocalIDs(t *testing.T) {
	b := fit.NewBuilder(nil)
	for i := 0; i < 3; i++ {
		rec := fit.NewMessage(fit.MsgRecord)
		rec.SetUint(20, fit.BaseUint16, uint64(i))
		if err := b.Add(rec); err != nil {
			t.Fatalf("add record: %v", err)
		}
		ev := fit.NewMessage(fit.MsgEvent)
		ev.SetUint(0, fit.BaseEnum, 0)
		if err := b.Add(ev); err != nil {
			t.Fatalf("add event: %v", err)
		}
	}

	file, err := fit.NewDecoder(nil).DecodeBytes(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(file.Messages) != 6 {
		t.Fatalf("decoded %d messages", len(file.Messages))
	}
	// Alternating kinds must not force alternating definitions: the whole
	// stream needs exactly two.
	wantPayload := 2*(1+5+3) + 3*3 + 3*2
	gotPayload := len(b.Bytes()) - 14 - 2
	if gotPayload != wantPayload {
		t.Fatalf("payload %d bytes, want %d", gotPayload, wantPayload)
	}
}

func TestIdempotentEncode(t *testing.T) {
	file := fileIDFixture(t, fit.ManufacturerZwift, 1, 999, 1000000000)
	msg := file.Messages[0]

	first, err := msg.Encode()
	if err != nil {
		t.Fatalf("first encode: %v", err)
	}
	second, err := msg.Encode()
	if err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("encoding twice without mutation differed:\n% X\n% X", first, second)
	}
}

func TestStaleBindingClearedOnEncode(t *testing.T) {
	// Decode a record whose definition carries an unknown field, then
	// encode it. The stale binding must be dropped automatically; the
	// output must contain only the fields the message actually holds.
	def := defRecord(0, fit.MsgFileID,
		fdef{fit.FileIDManufacturer, 2, byte(fit.BaseUint16)},
		fdef{193, 4, byte(fit.BaseUint32)},
	)
	data := dataRecord(0, concat(le16(260), le32(0xDEADBEEF)))
	file := decodeBytes(t, buildStream(t, def, data))

	msg := file.Messages[0]
	out, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(out, le16(260)) {
		t.Fatalf("stale-schema encode = % X, want just the manufacturer bytes", out)
	}
	if msg.Def != nil {
		t.Fatal("stale binding should have been cleared")
	}
}

func TestClearFieldKeepsBindingConsistent(t *testing.T) {
	file := fileIDFixture(t, fit.ManufacturerZwift, 1, 999, 1000000000)
	msg := file.Messages[0]

	msg.ClearField(fit.FileIDSerialNumber)
	if msg.DefinitionStale() {
		t.Fatal("ClearField must remove the field from the bound definition too")
	}
	out, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// type(1) + manufacturer(2) + product(2) + time_created(4)
	if len(out) != 9 {
		t.Fatalf("encoded %d bytes after clearing serial, want 9", len(out))
	}
}

func TestBuilderDerivesDefinitionForAddedField(t *testing.T) {
	file := fileIDFixture(t, fit.ManufacturerZwift, 1, 999, 1000000000)
	msg := file.Messages[0]

	// Adding a field invalidates the decoded layout; the builder must
	// derive a covering definition rather than dropping the new value.
	msg.SetUint(fit.FileIDNumber, fit.BaseUint16, 7)

	b := fit.NewBuilder(nil)
	if err := b.Add(msg); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := fit.NewDecoder(nil).DecodeBytes(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := out.Messages[0].Uint(fit.FileIDNumber); !ok || v != 7 {
		t.Fatalf("added field lost in output: %d, %v", v, ok)
	}
	if v, _ := out.Messages[0].Uint(fit.FileIDSerialNumber); v != 999 {
		t.Fatalf("original field corrupted: serial = %d", v)
	}
}
