package randomizer

import "errors"

var (
	// ErrBufferTooSmall is returned when the mask buffer is shorter than the chip requires.
	ErrBufferTooSmall = errors.New("randomizer buffer too small")
	// ErrInvalidGeometry is returned for geometry that is not a power of two or inconsistent.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidChip is returned when the matched chip table entry is invalid.
	ErrInvalidChip = errors.New("invalid chip table entry")
)
