package fit

// crcTable drives the 4-bits-at-a-time CRC-16 the format uses for both the
// optional header checksum and the mandatory trailing file checksum.
var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400,
	0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401,
	0x5000, 0x9C01, 0x8801, 0x4400,
}

// Checksum folds data into the running crc value.
func Checksum(crc uint16, data []byte) uint16 {
	for _, b := range data {
		tmp := crcTable[crc&0x0F]
		crc = (crc >> 4) & 0x0FFF
		crc = crc ^ tmp ^ crcTable[b&0x0F]

		tmp = crcTable[crc&0x0F]
		crc = (crc >> 4) & 0x0FFF
		crc = crc ^ tmp ^ crcTable[(b>>4)&0x0F]
	}
	return crc
}
