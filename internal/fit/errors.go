package fit

import "errors"

// ErrFormat marks a stream that cannot be decoded at all: bad header,
// checksum mismatch, or a data record whose local id has no active
// definition. Errors wrapping it are fatal for the file; nothing partial
// is produced.
var ErrFormat = errors.New("malformed fit stream")
