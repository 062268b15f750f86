// Package chip contains the table of known NAND parts and their randomizer settings.
package chip

import (
	"bytes"
	"errors"
	"fmt"
)

// RandomizerType defines how the randomizer mask of a chip is obtained.
type RandomizerType uint8

// randomizer types.
const (
	TypeNone   RandomizerType = iota // data passes through unchanged
	TypePRBS15                       // mask is generated by the PRBS-15 generator
	TypeMemory                       // mask is supplied by the caller in the buffer
)

func (t RandomizerType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePRBS15:
		return "prbs15"
	case TypeMemory:
		return "memory"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MaxIDLength is the maximum number of ID bytes stored for a chip.
const MaxIDLength = 8

// Info describes the geometry and randomizer settings of a NAND part.
type Info struct {
	Name string
	ID   []byte // leading bytes returned by the READ ID command

	BlockSize uint32
	PageSize  uint32
	SpareSize uint32

	Type         RandomizerType
	BufferLength uint32 // length of the randomizer mask
	Invert       bool   // mask bytes are complemented
}

// Randomized returns whether data of the chip has to be randomized.
func (i Info) Randomized() bool {
	return i.Type != TypeNone
}

// PagesPerBlock returns the number of pages in an erase block.
func (i Info) PagesPerBlock() uint32 {
	if i.PageSize == 0 {
		return 0
	}
	return i.BlockSize / i.PageSize
}

// Validate checks the invariants of the table entry.
func (i Info) Validate() error {
	if len(i.ID) == 0 || len(i.ID) > MaxIDLength {
		return fmt.Errorf("invalid ID length %d", len(i.ID))
	}
	if !IsPowerOfTwo(i.PageSize) {
		return fmt.Errorf("page size %d is not a power of two", i.PageSize)
	}
	if !IsPowerOfTwo(i.BlockSize) || i.BlockSize < i.PageSize {
		return fmt.Errorf("block size %d is not a power of two multiple of page size %d", i.BlockSize, i.PageSize)
	}
	if !i.Randomized() {
		return nil
	}
	if !IsPowerOfTwo(i.BufferLength) || i.BufferLength < 2 {
		return fmt.Errorf("buffer length %d is not a power of two of at least 2", i.BufferLength)
	}
	if i.BufferLength > MaxBufferLength {
		return fmt.Errorf("buffer length %d exceeds maximum %d", i.BufferLength, MaxBufferLength)
	}
	return nil
}

// Matches returns whether the chip ID matches the entry. Only the leading
// bytes that both IDs have are compared.
func (i Info) Matches(id []byte) bool {
	n := min(len(id), len(i.ID))
	return bytes.Equal(id[:n], i.ID[:n])
}

// Table is an ordered list of chips. Entries earlier in the table take
// priority over later entries whose IDs share a prefix.
type Table []Info

// Identify returns the first entry matching the chip ID. An empty ID selects
// the first entry of the table.
func (t Table) Identify(id []byte) (Info, bool) {
	if len(t) == 0 {
		return Info{}, false
	}
	if len(id) == 0 {
		return t[0], true
	}

	for _, info := range t {
		if info.Matches(id) {
			return info, true
		}
	}
	return Info{}, false
}

// Validate checks all entries of the table.
func (t Table) Validate() error {
	var errs []error
	for _, info := range t {
		if err := info.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("chip %s: %w", info.Name, err))
		}
	}
	return errors.Join(errs...)
}

// IsPowerOfTwo returns whether v is a non zero power of two.
func IsPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
