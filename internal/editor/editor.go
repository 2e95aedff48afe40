package editor

import (
	"fmt"
	"log/slog"

	"fitfaker/internal/fit"
)

// Editor applies the identity rewrite to decoded streams. One editor holds
// no per-file state and may process any number of files sequentially;
// independent editors may run in parallel.
type Editor struct {
	target    Target
	spoofable map[uint16]bool
	logger    *slog.Logger
}

// New validates the target and builds an editor. An empty spoofable list
// falls back to DefaultSpoofableManufacturers. A nil logger discards
// diagnostics.
func New(target Target, spoofable []uint16, logger *slog.Logger) (*Editor, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(spoofable) == 0 {
		spoofable = DefaultSpoofableManufacturers()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := make(map[uint16]bool, len(spoofable))
	for _, id := range spoofable {
		set[id] = true
	}
	return &Editor{target: target, spoofable: set, logger: logger}, nil
}

// Rewrite transforms src into a new ordered record sequence. src is not
// reusable afterwards; records move into the result by reference.
func (e *Editor) Rewrite(src *fit.File) (*fit.File, error) {
	// Stream-wide guard first: any record whose bound definition declares
	// fields the live field set no longer contains would encode stale
	// offsets. Clearing the binding forces a clean derived layout.
	for _, msg := range src.Messages {
		if msg.DefinitionStale() {
			e.logger.Debug("clearing stale definition binding",
				"message", msg.Name, "global_id", msg.GlobalID)
			msg.ClearDefinition()
		}
	}

	out := &fit.File{Header: src.Header}
	var deferred []*fit.Message
	droppedDevices := 0

	for i, msg := range src.Messages {
		switch msg.GlobalID {
		case fit.MsgActivity:
			// Consumers expect activity summaries at stream end no matter
			// where the producer put them.
			deferred = append(deferred, msg)

		case fit.MsgFileID:
			rewritten := e.rewriteFileID(msg, i)
			out.Messages = append(out.Messages, rewritten)
			if e.target.SoftwareVersion != 0 {
				out.Messages = append(out.Messages, e.newFileCreator())
			}

		case fit.MsgFileCreator:
			// Superseded by the synthesized record, or dropped outright.
			e.logger.Debug("dropping source file_creator", "record", i)

		case fit.MsgSoftware:
			// Describes the source software; must not leak into the
			// spoofed file.
			e.logger.Debug("dropping source software record", "record", i)

		case fit.MsgDeviceInfo:
			if deviceType, ok := msg.Uint(fit.DeviceInfoDeviceType); ok && deviceType == 0 {
				e.logger.Debug("dropping placeholder device_info", "record", i)
				droppedDevices++
				continue
			}
			if droppedDevices > 0 {
				if idx, ok := msg.Uint(fit.DeviceInfoDeviceIndex); ok && idx >= uint64(droppedDevices) {
					renumbered := idx - uint64(droppedDevices)
					e.logger.Debug("renumbering device_index",
						"record", i, "from", idx, "to", renumbered)
					msg.SetUint(fit.DeviceInfoDeviceIndex, fit.BaseUint8, renumbered)
				}
			}
			e.rewriteDeviceInfo(msg, i)
			out.Messages = append(out.Messages, msg)

		default:
			out.Messages = append(out.Messages, msg)
		}
	}

	if len(deferred) > 0 {
		e.logger.Debug("appending deferred activity records", "count", len(deferred))
		out.Messages = append(out.Messages, deferred...)
	}
	return out, nil
}

// rewriteFileID returns the record to emit in place of the source file_id:
// a fresh record carrying the target identity when the source manufacturer
// qualifies, or the source record untouched when it does not. Creation
// timestamp and file type are preserved verbatim either way.
func (e *Editor) rewriteFileID(msg *fit.Message, record int) *fit.Message {
	manufacturer, _ := msg.Uint(fit.FileIDManufacturer)
	if created, ok := msg.Uint(fit.FileIDTimeCreated); ok {
		e.logger.Info("activity timestamp",
			"time", fit.TimeFromFIT(uint32(created)).Format("2006-01-02T15:04:05Z"),
			"manufacturer", fit.ManufacturerName(uint16(manufacturer)))
	}

	if !e.spoofable[uint16(manufacturer)] {
		e.logger.Debug("file_id manufacturer not spoofable, passing through",
			"record", record,
			"manufacturer", fit.ManufacturerName(uint16(manufacturer)))
		return msg
	}

	e.logger.Debug("rewriting file_id",
		"record", record,
		"manufacturer", fit.ManufacturerName(uint16(manufacturer)),
		"target_manufacturer", fit.ManufacturerName(e.target.Manufacturer),
		"target_product", e.target.Product)

	out := fit.NewMessage(fit.MsgFileID)
	if fileType, ok := msg.Uint(fit.FileIDType); ok {
		out.SetUint(fit.FileIDType, fit.BaseEnum, fileType)
	}
	out.SetUint(fit.FileIDManufacturer, fit.BaseUint16, uint64(e.target.Manufacturer))
	out.SetUint(fit.FileIDProduct, fit.BaseUint16, uint64(e.target.Product))
	out.SetUint(fit.FileIDSerialNumber, fit.BaseUint32z, uint64(e.target.SerialNumber))
	if created, ok := msg.Uint(fit.FileIDTimeCreated); ok {
		out.SetUint(fit.FileIDTimeCreated, fit.BaseUint32, created)
	}
	// product_name is deliberately not carried over; Garmin devices leave
	// it unset.
	return out
}

// rewriteDeviceInfo re-brands a device record in place when its
// manufacturer qualifies. Unlike file_id, the unknown manufacturer (0)
// also qualifies here: placeholder-branded sensors should follow the
// spoofed head unit.
func (e *Editor) rewriteDeviceInfo(msg *fit.Message, record int) {
	manufacturer, ok := msg.Uint(fit.DeviceInfoManufacturer)
	if !ok {
		return
	}
	id := uint16(manufacturer)
	if id != fit.ManufacturerUnknown && !e.spoofable[id] {
		return
	}

	e.logger.Debug("rewriting device_info",
		"record", record,
		"manufacturer", fit.ManufacturerName(id))

	msg.SetUint(fit.DeviceInfoManufacturer, fit.BaseUint16, uint64(e.target.Manufacturer))
	if product := msg.Field(fit.DeviceInfoProduct); product != nil && product.Present() {
		msg.SetUint(fit.DeviceInfoProduct, fit.BaseUint16, uint64(e.target.Product))
	}
	if name := msg.Field(fit.DeviceInfoProductName); name != nil && name.Present() {
		// Garmin-origin records do not populate the free-text name.
		msg.ClearField(fit.DeviceInfoProductName)
	}
}

func (e *Editor) newFileCreator() *fit.Message {
	creator := fit.NewMessage(fit.MsgFileCreator)
	creator.SetUint(fit.FileCreatorSoftwareVersion, fit.BaseUint16, uint64(e.target.SoftwareVersion))
	return creator
}

// Encode runs the rewritten stream through the auto-definition builder and
// returns the finished file bytes.
func (e *Editor) Encode(file *fit.File) ([]byte, error) {
	out, err := file.Encode(e.logger)
	if err != nil {
		return nil, fmt.Errorf("encode rewritten stream: %w", err)
	}
	return out, nil
}
