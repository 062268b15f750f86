// Package prbs15 generates the PRBS-15 byte stream used to randomize NAND pages.
//
// # Sequence
//
// The stream is produced by a linear feedback shift register with the
// polynomial x^15 + x^14 + 1 (feedback taps 0xC001). Every output bit is the
// XOR of the bits 15 and 14 positions before it, so any 15 consecutive bits
// of the stream fully describe the generator state. The 15 bit seed is the
// first such window.
//
// # Chunking
//
// Bits are produced 28 at a time from the bit reversed seed and packed least
// significant bit first. Two 28 bit blocks form a 7 byte chunk:
//
//	byte 0..2: block 0 bits 0..23
//	byte 3:    block 0 bits 24..27, block 1 bits 0..3
//	byte 4..6: block 1 bits 4..27
//
// This packing is part of the on-flash format. Images written with a
// different packing or seed can not be read back.
//
// # Restarting
//
// Generate and Fill return the seed that continues the stream, so
//
//	a, next := prbs15.Generate(seed, n1, false)
//	b, _ := prbs15.Generate(next, n2, false)
//
// yields the same bytes as a single call for n1+n2 bytes.
package prbs15
