// Package fit decodes and encodes the FIT activity-file record stream.
//
// A stream is a fixed header, an interleaved sequence of definition and
// data records, and a trailing CRC-16. Each definition record binds a
// local id (0..15) to a record layout; the data records that follow under
// that id decode against it until the id is rebound. Decoder materializes
// data records as Message values, Builder regenerates minimal definition
// records while writing messages back out, and the two together guarantee
// that a decoded stream re-encodes to a structurally valid file.
//
// Only the record kinds the identity rewrite needs are modeled with named
// fields (file_id, file_creator, software, device_info, activity);
// everything else is carried through generically, byte-for-byte, so a
// round trip never drops record kinds this package does not understand.
package fit
