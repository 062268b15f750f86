// Package randomizer scrambles and unscrambles NAND page data with a
// pseudorandom XOR mask.
//
// A Randomizer is created uninitialized and initialized for a chip with
// Init. Chips that are not in the chip table, or whose table entry does not
// require randomization, leave the handle in the not randomized state; all
// randomize calls then report NotRandomized and the caller copies the data
// unchanged.
//
// The mask is generated once per initialization by the PRBS-15 generator
// into a caller owned buffer. Every page starts at a page specific offset
// into the mask, which is treated as a ring. XOR is its own inverse, the
// same call randomizes data before programming and derandomizes it after
// reading.
//
// The bad block marker, the first byte of the OOB area, is never altered.
// Blocks in the skip set, by default the blocks 0 to 8 used by the boot
// loader, are never randomized.
//
// Usage:
//
//	buf := make([]byte, chip.MaxBufferLength)
//	r := randomizer.New(logger)
//	res, err := r.Init(id, randomizer.Geometry{}, buf)
//	if err != nil {
//		return err
//	}
//	if r.RandomizePage(page, data, oob, data, oob).Status == randomizer.NotRandomized {
//		// data and oob are used unchanged
//	}
package randomizer
