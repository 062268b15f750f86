package prbs15

import "fmt"

// Seed is the external, not bit reversed, form of a 15 bit generator state.
type Seed uint16

// DefaultSeed is the seed the NAND randomizer uses to generate its mask.
const DefaultSeed Seed = 0x576A

const (
	seedBits  = 15
	seedMask  = 1<<seedBits - 1
	blockBits = 28
	blockMask = 1<<blockBits - 1

	// ChunkSize is the number of bytes produced by two 28 bit advances.
	ChunkSize = 2 * blockBits / 8
)

// Valid returns whether the seed fits into 15 bits.
func (s Seed) Valid() bool {
	return s <= seedMask
}

func (s Seed) String() string {
	return fmt.Sprintf("0x%04X", uint16(s))
}

// Generate returns length bytes of the stream starting at seed and the seed
// that continues it. If invert is set every output byte is complemented.
// It panics if the seed is wider than 15 bits or length is not positive.
func Generate(seed Seed, length int, invert bool) ([]byte, Seed) {
	if length <= 0 {
		panic(fmt.Sprintf("prbs15: invalid length %d", length))
	}
	buf := make([]byte, length)
	next := Fill(buf, seed, invert)
	return buf, next
}

// Fill writes len(dst) bytes of the stream starting at seed into dst and
// returns the seed that continues it. It panics if the seed is wider than
// 15 bits or dst is empty.
func Fill(dst []byte, seed Seed, invert bool) Seed {
	if !seed.Valid() {
		panic(fmt.Sprintf("prbs15: seed %s exceeds 15 bits", seed))
	}
	if len(dst) == 0 {
		panic("prbs15: empty destination")
	}

	var chunk [ChunkSize]byte
	state := reverse15(uint32(seed))

	for pos := 0; pos < len(dst); pos += ChunkSize {
		block0, seed1 := advance(state)
		block1, seed2 := advance(seed1)
		packChunk(&chunk, block0, block1)

		n := copy(dst[pos:], chunk[:])
		if n == ChunkSize {
			state = seed2
			continue
		}
		state = window(state, block0, block1, uint(n)*8)
	}

	if invert {
		for i := range dst {
			dst[i] = ^dst[i]
		}
	}

	return Seed(reverse15(state))
}

// advance computes the next 28 stream bits following the reversed state x
// and returns them with the reversed state that follows them.
func advance(x uint32) (uint32, uint32) {
	y := (x ^ x>>1) & (seedMask >> 1) // 14 new bits
	w := x | y<<seedBits
	z := (w ^ w>>1) & blockMask
	return z, z >> (blockBits - seedBits)
}

func packChunk(chunk *[ChunkSize]byte, block0, block1 uint32) {
	chunk[0] = byte(block0)
	chunk[1] = byte(block0 >> 8)
	chunk[2] = byte(block0 >> 16)
	chunk[3] = byte(block0>>24&0x0F) | byte(block1&0x0F)<<4
	chunk[4] = byte(block1 >> 4)
	chunk[5] = byte(block1 >> 12)
	chunk[6] = byte(block1 >> 20)
}

// window returns the reversed state after consuming the first consumed bits
// of the chunk made of block0 and block1 that followed state x. The state is
// the 15 stream bits preceding the next unread bit.
func window(x, block0, block1 uint32, consumed uint) uint32 {
	if consumed >= seedBits {
		v := uint64(block0) | uint64(block1)<<blockBits
		return uint32(v>>(consumed-seedBits)) & seedMask
	}
	v := uint64(x) | uint64(block0)<<seedBits
	return uint32(v>>consumed) & seedMask
}

func reverse15(v uint32) uint32 {
	var r uint32
	for i := 0; i < seedBits; i++ {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}
