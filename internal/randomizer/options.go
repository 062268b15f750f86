package randomizer

import (
	"github.com/retroenv/nandrandomizer/internal/chip"
	"github.com/retroenv/nandrandomizer/internal/prbs15"
	"github.com/retroenv/retrogolib/set"
)

// DefaultSkipBlocks are the blocks reserved for the boot loader that are
// never randomized.
var DefaultSkipBlocks = []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8}

// config holds the settings of a randomizer handle that do not change on
// initialization.
type config struct {
	table  chip.Table
	skip   func(block uint32) bool
	policy OffsetPolicy
	seed   prbs15.Seed
}

func defaultConfig() config {
	return config{
		table:  chip.DefaultTable,
		skip:   skipSet(DefaultSkipBlocks),
		policy: SeedDerived{Alignment: DefaultAlignment},
		seed:   prbs15.DefaultSeed,
	}
}

// Option is a functional option for configuring a Randomizer.
type Option func(*config)

// WithChipTable sets the table used to identify chips.
func WithChipTable(table chip.Table) Option {
	return func(c *config) {
		c.table = table
	}
}

// WithSkipBlocks replaces the set of blocks that are never randomized.
func WithSkipBlocks(blocks ...uint32) Option {
	return func(c *config) {
		c.skip = skipSet(blocks)
	}
}

// WithSkipPredicate sets a function that decides which blocks are never
// randomized. It replaces any skip set.
func WithSkipPredicate(skip func(block uint32) bool) Option {
	return func(c *config) {
		c.skip = skip
	}
}

// WithOffsetPolicy sets how the ring offset of a page is derived.
func WithOffsetPolicy(policy OffsetPolicy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithSeed sets the seed used to generate the mask.
func WithSeed(seed prbs15.Seed) Option {
	return func(c *config) {
		c.seed = seed
	}
}

func skipSet(blocks []uint32) func(uint32) bool {
	blockSet := set.New[uint32]()
	for _, block := range blocks {
		blockSet.Add(block)
	}
	return blockSet.Contains
}
