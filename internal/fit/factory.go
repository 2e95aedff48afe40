package fit

import "fmt"

// NewMessage builds an empty message of the given kind. Kinds outside the
// modeled subset come back as a bare message with no field templates;
// their fields are materialized from the governing definition during
// decode, which keeps them byte-compatible on the way back out.
func NewMessage(globalID uint16) *Message {
	m := &Message{GlobalID: globalID, Name: kindName(globalID)}
	if tmpl, ok := fieldTemplates[globalID]; ok {
		m.Fields = make([]*Field, 0, len(tmpl))
		for i := range tmpl {
			m.Fields = append(m.Fields, tmpl[i].clone())
		}
	}
	return m
}

// newMessageForDefinition builds the message a decoded record binds to.
// For unmodeled kinds every defined field becomes an opaque slot of the
// declared base type so that nothing is dropped.
func newMessageForDefinition(def *Definition) *Message {
	m := NewMessage(def.GlobalID)
	if _, modeled := fieldTemplates[def.GlobalID]; !modeled {
		m.Fields = make([]*Field, 0, len(def.Fields))
		for _, fd := range def.Fields {
			m.Fields = append(m.Fields, &Field{
				Num:  fd.Num,
				Name: fmt.Sprintf("field_%d", fd.Num),
				Type: fd.Type,
			})
		}
	}
	return m
}

// Modeled reports whether the record kind has named field templates.
func Modeled(globalID uint16) bool {
	_, ok := fieldTemplates[globalID]
	return ok
}

// Named reports whether the record kind has a display name. Named kinds
// without field templates still decode generically.
func Named(globalID uint16) bool {
	_, ok := kindNames[globalID]
	return ok
}

func kindName(globalID uint16) string {
	if name, ok := kindNames[globalID]; ok {
		return name
	}
	return fmt.Sprintf("message_%d", globalID)
}

var kindNames = map[uint16]string{
	MsgFileID:      "file_id",
	MsgSession:     "session",
	MsgLap:         "lap",
	MsgRecord:      "record",
	MsgEvent:       "event",
	MsgDeviceInfo:  "device_info",
	MsgActivity:    "activity",
	MsgSoftware:    "software",
	MsgFileCreator: "file_creator",
	206:            "field_description",
	207:            "developer_data_id",
}

// garminProductRefs lists the manufacturers whose product ids live in the
// vendor-extended "garmin_product" space.
var garminProductRefs = []subFieldRef{
	{num: FileIDManufacturer, value: uint64(ManufacturerGarmin)},
	{num: FileIDManufacturer, value: uint64(ManufacturerDynastream)},
	{num: FileIDManufacturer, value: uint64(ManufacturerDynastreamOEM)},
	{num: FileIDManufacturer, value: uint64(ManufacturerTacx)},
}

var deviceInfoGarminProductRefs = []subFieldRef{
	{num: DeviceInfoManufacturer, value: uint64(ManufacturerGarmin)},
	{num: DeviceInfoManufacturer, value: uint64(ManufacturerDynastream)},
	{num: DeviceInfoManufacturer, value: uint64(ManufacturerDynastreamOEM)},
	{num: DeviceInfoManufacturer, value: uint64(ManufacturerTacx)},
}

// fieldTemplates holds the canonical field sets of the modeled kinds. Only
// the records the rewrite pipeline inspects need named fields; everything
// else survives generically.
var fieldTemplates = map[uint16][]Field{
	MsgFileID: {
		{Num: FileIDType, Name: "type", Type: BaseEnum},
		{Num: FileIDManufacturer, Name: "manufacturer", Type: BaseUint16},
		{Num: FileIDProduct, Name: "product", Type: BaseUint16,
			subs: []SubField{{Name: "garmin_product", Type: BaseUint16, refs: garminProductRefs}}},
		{Num: FileIDSerialNumber, Name: "serial_number", Type: BaseUint32z},
		{Num: FileIDTimeCreated, Name: "time_created", Type: BaseUint32},
		{Num: FileIDNumber, Name: "number", Type: BaseUint16},
		{Num: FileIDProductName, Name: "product_name", Type: BaseString},
	},
	MsgFileCreator: {
		{Num: FileCreatorSoftwareVersion, Name: "software_version", Type: BaseUint16},
		{Num: FileCreatorHardwareVersion, Name: "hardware_version", Type: BaseUint8},
	},
	MsgSoftware: {
		{Num: 254, Name: "message_index", Type: BaseUint16},
		{Num: SoftwareVersion, Name: "version", Type: BaseUint16},
		{Num: SoftwarePartNumber, Name: "part_number", Type: BaseString},
	},
	MsgDeviceInfo: {
		{Num: DeviceInfoTimestamp, Name: "timestamp", Type: BaseUint32},
		{Num: DeviceInfoDeviceIndex, Name: "device_index", Type: BaseUint8},
		{Num: DeviceInfoDeviceType, Name: "device_type", Type: BaseUint8},
		{Num: DeviceInfoManufacturer, Name: "manufacturer", Type: BaseUint16},
		{Num: DeviceInfoSerialNumber, Name: "serial_number", Type: BaseUint32z},
		{Num: DeviceInfoProduct, Name: "product", Type: BaseUint16,
			subs: []SubField{{Name: "garmin_product", Type: BaseUint16, refs: deviceInfoGarminProductRefs}}},
		{Num: DeviceInfoSoftwareVersion, Name: "software_version", Type: BaseUint16},
		{Num: DeviceInfoHardwareVersion, Name: "hardware_version", Type: BaseUint8},
		{Num: DeviceInfoBatteryVoltage, Name: "battery_voltage", Type: BaseUint16},
		{Num: DeviceInfoBatteryStatus, Name: "battery_status", Type: BaseUint8},
		{Num: DeviceInfoAntDeviceNumber, Name: "ant_device_number", Type: BaseUint16z},
		{Num: DeviceInfoAntNetwork, Name: "ant_network", Type: BaseEnum},
		{Num: DeviceInfoSourceType, Name: "source_type", Type: BaseEnum},
		{Num: DeviceInfoProductName, Name: "product_name", Type: BaseString},
	},
	MsgActivity: {
		{Num: ActivityTimestamp, Name: "timestamp", Type: BaseUint32},
		{Num: ActivityTotalTimerTime, Name: "total_timer_time", Type: BaseUint32},
		{Num: ActivityNumSessions, Name: "num_sessions", Type: BaseUint16},
		{Num: ActivityType, Name: "type", Type: BaseEnum},
		{Num: ActivityEvent, Name: "event", Type: BaseEnum},
		{Num: ActivityEventType, Name: "event_type", Type: BaseEnum},
		{Num: ActivityLocalTimestamp, Name: "local_timestamp", Type: BaseUint32},
	},
}
