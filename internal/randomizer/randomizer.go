package randomizer

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/retroenv/nandrandomizer/internal/chip"
	"github.com/retroenv/nandrandomizer/internal/prbs15"
	"github.com/retroenv/retrogolib/log"
)

// Status is the outcome of a randomizer operation.
type Status uint8

// operation outcomes.
const (
	NotRandomized Status = iota // data has to be used unchanged
	Randomized
)

func (s Status) String() string {
	if s == Randomized {
		return "randomized"
	}
	return "not randomized"
}

// Result of a randomizer operation. Length is the number of mask bytes
// generated by Init or the number of bytes processed by a randomize call.
type Result struct {
	Status Status
	Length int
}

// Geometry of the NAND chip in bytes. Zero fields are taken from the chip
// table when passed to Init.
type Geometry struct {
	BlockSize uint32
	PageSize  uint32
	OOBSize   uint32
}

// PagesPerBlock returns the number of pages in an erase block.
func (g Geometry) PagesPerBlock() uint32 {
	if g.PageSize == 0 {
		return 0
	}
	return g.BlockSize / g.PageSize
}

func (g Geometry) validate() error {
	if !chip.IsPowerOfTwo(g.PageSize) {
		return fmt.Errorf("%w: page size %d is not a power of two", ErrInvalidGeometry, g.PageSize)
	}
	if !chip.IsPowerOfTwo(g.BlockSize) || g.BlockSize < g.PageSize {
		return fmt.Errorf("%w: block size %d is not a power of two multiple of page size %d",
			ErrInvalidGeometry, g.BlockSize, g.PageSize)
	}
	if g.OOBSize == 0 {
		return fmt.Errorf("%w: empty OOB area", ErrInvalidGeometry)
	}
	return nil
}

// Randomizer holds the randomizer state for one NAND chip. It is safe for
// concurrent use.
type Randomizer struct {
	logger *log.Logger
	cfg    config

	mu         sync.RWMutex
	randomized bool
	info       chip.Info
	geometry   Geometry
	blockShift uint32 // page address to block index
	pageMask   uint32 // page address to page index in block
	ringMask   uint32
	mask       []byte // references the caller owned buffer
}

// New returns an uninitialized randomizer.
func New(logger *log.Logger, options ...Option) *Randomizer {
	cfg := defaultConfig()
	for _, option := range options {
		option(&cfg)
	}

	return &Randomizer{
		logger: logger,
		cfg:    cfg,
	}
}

// ChipRandomized returns whether the chip with the given ID is randomized
// according to the default chip table and the mask buffer length it needs.
func ChipRandomized(id []byte) (bool, int) {
	return query(chip.DefaultTable, id)
}

// Query returns whether the chip with the given ID is randomized and the
// mask buffer length it needs. The state of the randomizer is not changed.
func (r *Randomizer) Query(id []byte) (bool, int) {
	return query(r.cfg.table, id)
}

func query(table chip.Table, id []byte) (bool, int) {
	info, ok := table.Identify(id)
	if !ok || !info.Randomized() {
		return false, 0
	}
	return true, int(info.BufferLength)
}

// Init identifies the chip and prepares the randomizer for it.
//
// If buf is empty the call only queries the required buffer length and
// returns it without changing any state. If the chip is unknown or does not
// need randomization the randomizer is reset to the not randomized state and
// NotRandomized is returned without error. Zero geometry fields are taken
// from the chip table. On success the mask is written to buf, which the
// randomizer keeps referencing, and the mask length is returned.
//
// If buf is too short or the geometry is invalid an error is returned and
// the previously committed state is kept.
func (r *Randomizer) Init(id []byte, geometry Geometry, buf []byte) (Result, error) {
	info, ok := r.cfg.table.Identify(id)
	if !ok || !info.Randomized() {
		if len(buf) == 0 {
			return Result{Status: NotRandomized}, nil
		}

		r.mu.Lock()
		r.reset()
		r.mu.Unlock()

		r.logger.Debug("Chip is not randomized",
			log.String("id", chip.FormatID(id)),
			log.String("chip", info.Name))
		return Result{Status: NotRandomized}, nil
	}

	if len(buf) == 0 {
		return Result{Status: Randomized, Length: int(info.BufferLength)}, nil
	}

	if err := info.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: chip %s: %w", ErrInvalidChip, info.Name, err)
	}
	if uint32(len(buf)) < info.BufferLength {
		return Result{}, fmt.Errorf("%w: chip %s needs %d bytes, got %d",
			ErrBufferTooSmall, info.Name, info.BufferLength, len(buf))
	}

	geometry = applyDefaults(geometry, info)
	if err := geometry.validate(); err != nil {
		return Result{}, err
	}

	// the buffer may be the mask of the committed state
	mask := buf[:info.BufferLength]
	r.mu.Lock()
	if info.Type == chip.TypePRBS15 {
		prbs15.Fill(mask, r.cfg.seed, info.Invert)
	}
	r.commit(info, geometry, mask)
	r.mu.Unlock()

	r.logger.Debug("Chip is randomized",
		log.String("id", chip.FormatID(id)),
		log.String("chip", info.Name),
		log.String("type", info.Type.String()),
		log.Int("mask_length", len(mask)),
		log.Hex("page_size", geometry.PageSize),
		log.Hex("block_size", geometry.BlockSize),
		log.Hex("oob_size", geometry.OOBSize))

	return Result{Status: Randomized, Length: len(mask)}, nil
}

func applyDefaults(geometry Geometry, info chip.Info) Geometry {
	if geometry.BlockSize == 0 {
		geometry.BlockSize = info.BlockSize
	}
	if geometry.PageSize == 0 {
		geometry.PageSize = info.PageSize
	}
	if geometry.OOBSize == 0 {
		geometry.OOBSize = info.SpareSize
	}
	return geometry
}

func (r *Randomizer) commit(info chip.Info, geometry Geometry, mask []byte) {
	pagesPerBlock := geometry.PagesPerBlock()

	r.randomized = true
	r.info = info
	r.geometry = geometry
	r.blockShift = uint32(bits.TrailingZeros32(pagesPerBlock))
	r.pageMask = pagesPerBlock - 1
	r.ringMask = uint32(len(mask) - 1)
	r.mask = mask
}

func (r *Randomizer) reset() {
	r.randomized = false
	r.info = chip.Info{}
	r.geometry = Geometry{}
	r.blockShift = 0
	r.pageMask = 0
	r.ringMask = 0
	r.mask = nil
}

// Randomized returns whether the randomizer is initialized for a chip that
// needs randomization.
func (r *Randomizer) Randomized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.randomized
}

// Chip returns the chip table entry the randomizer is initialized for.
func (r *Randomizer) Chip() chip.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Geometry returns the geometry the randomizer is initialized with.
func (r *Randomizer) Geometry() Geometry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.geometry
}

// Mask returns a copy of the mask.
func (r *Randomizer) Mask() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]byte(nil), r.mask...)
}

// BlockOf returns the index of the erase block that contains the page.
func (r *Randomizer) BlockOf(page uint32) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return page >> r.blockShift
}

// SkipsBlock returns whether the block is never randomized.
func (r *Randomizer) SkipsBlock(block uint32) bool {
	return r.cfg.skip != nil && r.cfg.skip(block)
}
