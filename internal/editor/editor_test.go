package editor_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fitfaker/internal/editor"
	"fitfaker/internal/fit"
)

var testTarget = editor.Target{
	Manufacturer: fit.ManufacturerGarmin,
	Product:      fit.ProductEdge830,
	SerialNumber: 1234567890,
}

func newEditor(t *testing.T, target editor.Target) *editor.Editor {
	t.Helper()
	e, err := editor.New(target, nil, nil)
	if err != nil {
		t.Fatalf("editor.New: %v", err)
	}
	return e
}

// roundTrip rewrites src and decodes the encoded result, exercising the
// full pipeline including the builder and checksum.
func roundTrip(t *testing.T, e *editor.Editor, src *fit.File) *fit.File {
	t.Helper()
	rewritten, err := e.Rewrite(src)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	data, err := e.Encode(rewritten)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := fit.NewDecoder(nil).DecodeBytes(data)
	if err != nil {
		t.Fatalf("output failed checksum verification on re-read: %v", err)
	}
	return out
}

func newFileID(manufacturer, product uint16, serial, created uint32) *fit.Message {
	m := fit.NewMessage(fit.MsgFileID)
	m.SetUint(fit.FileIDType, fit.BaseEnum, 4)
	m.SetUint(fit.FileIDManufacturer, fit.BaseUint16, uint64(manufacturer))
	m.SetUint(fit.FileIDProduct, fit.BaseUint16, uint64(product))
	m.SetUint(fit.FileIDSerialNumber, fit.BaseUint32z, uint64(serial))
	m.SetUint(fit.FileIDTimeCreated, fit.BaseUint32, uint64(created))
	return m
}

func newDeviceInfo(index uint64, deviceType uint64, manufacturer uint16) *fit.Message {
	m := fit.NewMessage(fit.MsgDeviceInfo)
	m.SetUint(fit.DeviceInfoDeviceIndex, fit.BaseUint8, index)
	m.SetUint(fit.DeviceInfoDeviceType, fit.BaseUint8, deviceType)
	m.SetUint(fit.DeviceInfoManufacturer, fit.BaseUint16, uint64(manufacturer))
	m.SetUint(fit.DeviceInfoProduct, fit.BaseUint16, 9)
	return m
}

func newActivity(sessions uint64) *fit.Message {
	m := fit.NewMessage(fit.MsgActivity)
	m.SetUint(fit.ActivityTimestamp, fit.BaseUint32, 1000000100)
	m.SetUint(fit.ActivityNumSessions, fit.BaseUint16, sessions)
	return m
}

func messagesOfKind(f *fit.File, globalID uint16) []*fit.Message {
	var out []*fit.Message
	for _, m := range f.Messages {
		if m.GlobalID == globalID {
			out = append(out, m)
		}
	}
	return out
}

func TestFileIDRewrittenForSpoofableManufacturer(t *testing.T) {
	// Scenario: ZWIFT file_id with product 1, serial 999, timestamp T
	// becomes GARMIN / 3122 / 1234567890 with T unchanged.
	const timestamp = 1000000000
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, timestamp),
	}}

	out := roundTrip(t, newEditor(t, testTarget), src)
	ids := messagesOfKind(out, fit.MsgFileID)
	if len(ids) != 1 {
		t.Fatalf("output has %d file_id records", len(ids))
	}
	m := ids[0]
	if v, _ := m.Uint(fit.FileIDManufacturer); v != uint64(fit.ManufacturerGarmin) {
		t.Fatalf("manufacturer = %d", v)
	}
	if v, _ := m.Uint(fit.FileIDProduct); v != uint64(fit.ProductEdge830) {
		t.Fatalf("product = %d", v)
	}
	if v, _ := m.Uint(fit.FileIDSerialNumber); v != 1234567890 {
		t.Fatalf("serial = %d", v)
	}
	if v, _ := m.Uint(fit.FileIDTimeCreated); v != timestamp {
		t.Fatalf("timestamp changed: %d", v)
	}
	if v, _ := m.Uint(fit.FileIDType); v != 4 {
		t.Fatalf("file type changed: %d", v)
	}
}

func TestFileIDManufacturerGating(t *testing.T) {
	// A manufacturer outside the spoofable set passes through untouched.
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerGarmin, 2530, 555000111, 1000000000),
	}}

	out := roundTrip(t, newEditor(t, testTarget), src)
	m := messagesOfKind(out, fit.MsgFileID)[0]
	if v, _ := m.Uint(fit.FileIDProduct); v != 2530 {
		t.Fatalf("non-spoofable product rewritten to %d", v)
	}
	if v, _ := m.Uint(fit.FileIDSerialNumber); v != 555000111 {
		t.Fatalf("non-spoofable serial rewritten to %d", v)
	}
}

func TestFileCreatorSynthesizedWhenFirmwareConfigured(t *testing.T) {
	target := testTarget
	target.SoftwareVersion = 975

	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, 1000000000),
	}}
	out := roundTrip(t, newEditor(t, target), src)

	creators := messagesOfKind(out, fit.MsgFileCreator)
	if len(creators) != 1 {
		t.Fatalf("output has %d file_creator records, want 1", len(creators))
	}
	if v, _ := creators[0].Uint(fit.FileCreatorSoftwareVersion); v != 975 {
		t.Fatalf("software_version = %d", v)
	}
	// It must directly follow the file_id record.
	if out.Messages[0].GlobalID != fit.MsgFileID || out.Messages[1].GlobalID != fit.MsgFileCreator {
		t.Fatalf("file_creator not adjacent to file_id: %d, %d",
			out.Messages[0].GlobalID, out.Messages[1].GlobalID)
	}
}

func TestExistingFileCreatorAndSoftwareDropped(t *testing.T) {
	creator := fit.NewMessage(fit.MsgFileCreator)
	creator.SetUint(fit.FileCreatorSoftwareVersion, fit.BaseUint16, 42)
	software := fit.NewMessage(fit.MsgSoftware)
	software.SetUint(fit.SoftwareVersion, fit.BaseUint16, 7)

	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, 1000000000),
		creator,
		software,
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)

	if n := len(messagesOfKind(out, fit.MsgFileCreator)); n != 0 {
		t.Fatalf("source file_creator leaked (no firmware configured): %d", n)
	}
	if n := len(messagesOfKind(out, fit.MsgSoftware)); n != 0 {
		t.Fatalf("source software record leaked: %d", n)
	}
}

func TestDeviceIndexContiguityAfterPlaceholderDrops(t *testing.T) {
	// Placeholder records (device_type 0) interspersed among valid ones;
	// the survivors must renumber to a contiguous 0..M-1 run.
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerCoros, 5, 999999999, 1000000000),
		newDeviceInfo(0, 0, fit.ManufacturerCoros), // dropped
		newDeviceInfo(1, 5, fit.ManufacturerCoros),
		newDeviceInfo(2, 0, fit.ManufacturerCoros), // dropped
		newDeviceInfo(3, 120, fit.ManufacturerCoros),
		newDeviceInfo(4, 121, fit.ManufacturerCoros),
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)

	devices := messagesOfKind(out, fit.MsgDeviceInfo)
	if len(devices) != 3 {
		t.Fatalf("output has %d device_info records, want 3", len(devices))
	}
	for i, d := range devices {
		idx, ok := d.Uint(fit.DeviceInfoDeviceIndex)
		if !ok || idx != uint64(i) {
			t.Fatalf("device %d has index %d, want %d", i, idx, i)
		}
	}
}

func TestDeviceInfoScenario(t *testing.T) {
	// Scenario: two device_info records, index 0 placeholder and index 1
	// COROS. Output: one record, index 0, rewritten to the target.
	src := &fit.File{Messages: []*fit.Message{
		newDeviceInfo(0, 0, fit.ManufacturerCoros),
		newDeviceInfo(1, 5, fit.ManufacturerCoros),
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)

	devices := messagesOfKind(out, fit.MsgDeviceInfo)
	if len(devices) != 1 {
		t.Fatalf("output has %d device_info records, want 1", len(devices))
	}
	d := devices[0]
	if v, _ := d.Uint(fit.DeviceInfoDeviceIndex); v != 0 {
		t.Fatalf("device_index = %d", v)
	}
	if v, _ := d.Uint(fit.DeviceInfoManufacturer); v != uint64(fit.ManufacturerGarmin) {
		t.Fatalf("manufacturer = %d", v)
	}
	if v, _ := d.Uint(fit.DeviceInfoProduct); v != uint64(fit.ProductEdge830) {
		t.Fatalf("product = %d", v)
	}
}

func TestDeviceInfoUnknownManufacturerRewritten(t *testing.T) {
	src := &fit.File{Messages: []*fit.Message{
		newDeviceInfo(0, 5, fit.ManufacturerUnknown),
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)
	d := messagesOfKind(out, fit.MsgDeviceInfo)[0]
	if v, _ := d.Uint(fit.DeviceInfoManufacturer); v != uint64(fit.ManufacturerGarmin) {
		t.Fatalf("blank-manufacturer record not rewritten: %d", v)
	}
}

func TestDeviceInfoForeignManufacturerUntouched(t *testing.T) {
	src := &fit.File{Messages: []*fit.Message{
		newDeviceInfo(0, 5, fit.ManufacturerDynastream),
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)
	d := messagesOfKind(out, fit.MsgDeviceInfo)[0]
	if v, _ := d.Uint(fit.DeviceInfoManufacturer); v != uint64(fit.ManufacturerDynastream) {
		t.Fatalf("foreign sensor record rewritten: %d", v)
	}
}

func TestDeviceInfoProductNameCleared(t *testing.T) {
	d := newDeviceInfo(0, 5, fit.ManufacturerZwift)
	d.SetString(fit.DeviceInfoProductName, "Zwift Hub")
	src := &fit.File{Messages: []*fit.Message{d}}

	out := roundTrip(t, newEditor(t, testTarget), src)
	got := messagesOfKind(out, fit.MsgDeviceInfo)[0]
	if name := got.Field(fit.DeviceInfoProductName); name != nil && name.Present() {
		s, _ := name.StringValue()
		t.Fatalf("product_name still present: %q", s)
	}
}

func TestActivityDeferral(t *testing.T) {
	// Scenario: file_id, activity, device_info. Output order: file_id,
	// device_info, activity.
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, 1000000000),
		newActivity(1),
		newDeviceInfo(0, 5, fit.ManufacturerZwift),
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)

	order := make([]uint16, 0, len(out.Messages))
	for _, m := range out.Messages {
		order = append(order, m.GlobalID)
	}
	want := []uint16{fit.MsgFileID, fit.MsgDeviceInfo, fit.MsgActivity}
	if len(order) != len(want) {
		t.Fatalf("output order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("output order %v, want %v", order, want)
		}
	}
}

func TestActivityDeferralPreservesRelativeOrder(t *testing.T) {
	a1, a2, a3 := newActivity(1), newActivity(2), newActivity(3)
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, 1000000000),
		a1,
		newDeviceInfo(0, 5, fit.ManufacturerZwift),
		a2,
		newDeviceInfo(1, 120, fit.ManufacturerZwift),
		a3,
	}}
	out := roundTrip(t, newEditor(t, testTarget), src)

	lastNonActivity := -1
	for i, m := range out.Messages {
		if m.GlobalID != fit.MsgActivity {
			lastNonActivity = i
		}
	}
	activities := messagesOfKind(out, fit.MsgActivity)
	if len(activities) != 3 {
		t.Fatalf("%d activity records in output", len(activities))
	}
	for i, m := range out.Messages {
		if m.GlobalID == fit.MsgActivity && i < lastNonActivity {
			t.Fatalf("activity record at position %d precedes non-activity record at %d", i, lastNonActivity)
		}
	}
	for i, a := range activities {
		if v, _ := a.Uint(fit.ActivityNumSessions); v != uint64(i+1) {
			t.Fatalf("activity order changed: position %d has num_sessions %d", i, v)
		}
	}
}

func TestInvalidTargetRejectedBeforeProcessing(t *testing.T) {
	_, err := editor.New(editor.Target{
		Manufacturer: fit.ManufacturerGarmin,
		Product:      fit.ProductEdge830,
		SerialNumber: 999, // below the valid range
	}, nil, nil)
	if !errors.Is(err, editor.ErrInvalidTarget) {
		t.Fatalf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestConvertFileDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "activity.fit")
	writeFixtureFile(t, input)

	e := newEditor(t, testTarget)
	out, err := e.ConvertFile(input, "", true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if out != filepath.Join(dir, "activity_modified.fit") {
		t.Fatalf("derived output path %q", out)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run left a file behind: %v", err)
	}
}

func TestConvertFileWritesVerifiableOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "activity.fit")
	writeFixtureFile(t, input)

	e := newEditor(t, testTarget)
	out, err := e.ConvertFile(input, "", false)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	file, err := fit.NewDecoder(nil).DecodeFile(out)
	if err != nil {
		t.Fatalf("output does not verify: %v", err)
	}
	m := messagesOfKind(file, fit.MsgFileID)[0]
	if v, _ := m.Uint(fit.FileIDManufacturer); v != uint64(fit.ManufacturerGarmin) {
		t.Fatalf("written file not rewritten: manufacturer %d", v)
	}
	// No stray temp files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		for _, e := range entries {
			t.Logf("entry: %s", e.Name())
		}
		t.Fatalf("%d entries in output dir, want input + output", len(entries))
	}
}

func TestConvertFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "not_a_fit.fit")
	if err := os.WriteFile(input, []byte("certainly not a record stream"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newEditor(t, testTarget)
	if _, err := e.ConvertFile(input, "", false); !errors.Is(err, fit.ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "not_a_fit_modified.fit")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("failed conversion left partial output")
	}
}

// writeFixtureFile persists a small valid stream: file_id, device_info,
// activity.
func writeFixtureFile(t *testing.T, path string) {
	t.Helper()
	src := &fit.File{Messages: []*fit.Message{
		newFileID(fit.ManufacturerZwift, 1, 999, 1000000000),
		newDeviceInfo(0, 5, fit.ManufacturerZwift),
		newActivity(1),
	}}
	data, err := src.Encode(nil)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
