package randomizer

import "encoding/binary"

// DefaultAlignment is the alignment of seed derived ring offsets in bytes.
const DefaultAlignment = 4

// OffsetPolicy derives the offset into the mask at which a page starts.
// The returned offset is masked into the mask range by the caller.
type OffsetPolicy interface {
	RingOffset(mask []byte, pageInBlock uint32) uint32
}

// SeedDerived reads the offset of a page from the mask itself: the little
// endian 16 bit value at byte pageInBlock*2, aligned down to Alignment.
// This is the format used by all images written by the randomizer.
type SeedDerived struct {
	Alignment uint32 // power of two, 0 or 1 disables alignment
}

// RingOffset implements OffsetPolicy.
func (p SeedDerived) RingOffset(mask []byte, pageInBlock uint32) uint32 {
	ringMask := uint32(len(mask) - 1)
	pos := (pageInBlock * 2) & ringMask
	offset := uint32(binary.LittleEndian.Uint16(mask[pos:]))
	if p.Alignment > 1 {
		offset &^= p.Alignment - 1
	}
	return offset
}

// FixedTable uses a table of offsets indexed by the page in the block. If a
// block has more pages than table entries the table is cycled.
type FixedTable struct {
	Offsets []uint32
}

// RingOffset implements OffsetPolicy.
func (p FixedTable) RingOffset(_ []byte, pageInBlock uint32) uint32 {
	if len(p.Offsets) == 0 {
		return 0
	}
	return p.Offsets[pageInBlock%uint32(len(p.Offsets))]
}

// pageRingOffset returns the offset into the mask at which the page starts.
func (r *Randomizer) pageRingOffset(page uint32) uint32 {
	pageInBlock := page & r.pageMask
	offset := r.cfg.policy.RingOffset(r.mask, pageInBlock)
	return offset & r.ringMask
}
