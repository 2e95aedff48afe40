package editor

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"fitfaker/internal/fit"
)

// Serial numbers are uint32z values; Garmin unit ids observed in the wild
// occupy the ten-digit range, so generated and configured serials are held
// to it.
const (
	SerialNumberMin = 1_000_000_000
	SerialNumberMax = 4_294_967_295
)

// ErrInvalidTarget rejects an identity target before any file is touched.
var ErrInvalidTarget = errors.New("invalid identity target")

// Target is the device identity written into rewritten records. Immutable
// for the duration of a rewrite; independent pipelines may share one.
type Target struct {
	Manufacturer uint16
	Product      uint16
	SerialNumber uint32

	// SoftwareVersion is the firmware version stamped into a synthesized
	// file_creator record. Zero means none is synthesized.
	SoftwareVersion uint16
}

// Validate checks the target before any file processing begins.
func (t Target) Validate() error {
	if t.Manufacturer == 0 {
		return fmt.Errorf("%w: manufacturer id is required", ErrInvalidTarget)
	}
	if t.Product == 0 {
		return fmt.Errorf("%w: product id is required", ErrInvalidTarget)
	}
	if t.SerialNumber < SerialNumberMin {
		return fmt.Errorf("%w: serial number %d outside valid range %d..%d",
			ErrInvalidTarget, t.SerialNumber, uint64(SerialNumberMin), uint64(SerialNumberMax))
	}
	return nil
}

// RandomSerialNumber picks a serial in the accepted range. Used when a
// profile does not pin one.
func RandomSerialNumber() uint32 {
	span := uint64(SerialNumberMax) - SerialNumberMin + 1
	return SerialNumberMin + uint32(rand.Uint64N(span))
}

// DefaultSpoofableManufacturers lists the producers whose files are
// rewritten: the development id plus the virtual-training platforms the
// tool supports. Extensible through configuration without touching the
// codec.
func DefaultSpoofableManufacturers() []uint16 {
	return []uint16{
		fit.ManufacturerDevelopment,
		fit.ManufacturerZwift,
		fit.ManufacturerWahooFitness,
		fit.ManufacturerPeaksware,
		fit.ManufacturerHammerhead,
		fit.ManufacturerCoros,
		fit.ManufacturerMyWhoosh,
		fit.ManufacturerOnelap,
	}
}
