// Package editor rewrites the identity records of a decoded FIT stream so
// the file appears to have been produced by a configured Garmin device.
//
// Only identity metadata changes: the file_id record is rewritten when its
// manufacturer is on the spoofable list, device_info records from those
// manufacturers are re-branded, source software records are removed, and a
// file_creator record for the target firmware is synthesized. Activity
// summary records are re-ordered to the end of the stream for consumers
// that expect them there. Everything else, from samples and laps to
// vendor-specific record kinds, passes through untouched.
package editor
