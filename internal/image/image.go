// Package image processes raw NAND dumps page by page through a randomizer.
package image

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/nandrandomizer/internal/randomizer"
	"github.com/retroenv/retrogolib/log"
)

// ErrTruncatedPage is returned when the dump ends within a page.
var ErrTruncatedPage = errors.New("truncated page")

// ErrLayoutMismatch is returned when the dump layout does not fit the
// geometry the randomizer is initialized with.
var ErrLayoutMismatch = errors.New("layout does not match randomizer geometry")

const erasedByte = 0xFF

// PageRandomizer randomizes the data and OOB areas of a page.
type PageRandomizer interface {
	Geometry() randomizer.Geometry
	RandomizePage(page uint32, dataSrc, oobSrc, dataDst, oobDst []byte) randomizer.Result
}

// Layout describes how pages are stored in the dump.
type Layout struct {
	PageSize      uint32 // data bytes per plane page
	SpareSize     uint32 // OOB bytes per plane page stored in the dump
	PagesPerBlock uint32
	Planes        uint32 // 1, or 2 for dual plane dumps
}

// PageLength returns the number of dump bytes of one page including all
// planes.
func (l Layout) PageLength() int {
	return int(l.planes() * (l.PageSize + l.SpareSize))
}

func (l Layout) planes() uint32 {
	if l.Planes == 0 {
		return 1
	}
	return l.Planes
}

// PlanePage returns the address of the page of the given plane for the
// dump page address. Dual plane dumps interleave the blocks of a block
// pair, plane 0 holds the even block and plane 1 the odd block.
func (l Layout) PlanePage(page, plane uint32) uint32 {
	if l.planes() == 1 {
		return page
	}
	block := page / l.PagesPerBlock
	inBlock := page % l.PagesPerBlock
	return (block*2+plane)*l.PagesPerBlock + inBlock
}

func (l Layout) validate() error {
	if l.PageSize == 0 {
		return errors.New("page size not set")
	}
	switch l.planes() {
	case 1:
	case 2:
		if l.PagesPerBlock == 0 {
			return errors.New("pages per block not set for dual plane layout")
		}
	default:
		return fmt.Errorf("unsupported plane count %d", l.Planes)
	}
	return nil
}

// Config of a Processor.
type Config struct {
	Layout    Layout
	StartPage uint32 // page address of the first page in the dump
	SkipBlank bool   // pass erased pages through unchanged

	// SkipPage reports dump page indexes to pass through unchanged, for
	// example the blank pages of a previous run.
	SkipPage func(index uint32) bool
}

// Stats of a processing run. Randomized and PassThrough count plane pages,
// the other counters dump pages.
type Stats struct {
	Pages       int
	Randomized  int
	PassThrough int
	Blank       int
	BlankPages  []uint32 // dump page indexes that were passed through as blank
}

// Processor runs the pages of a dump through a randomizer.
type Processor struct {
	logger     *log.Logger
	randomizer PageRandomizer
	cfg        Config
}

// New returns a new dump processor.
func New(logger *log.Logger, r PageRandomizer, cfg Config) (*Processor, error) {
	if err := cfg.Layout.validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	geometry := r.Geometry()
	if geometry.PageSize != 0 {
		if geometry.PageSize != cfg.Layout.PageSize {
			return nil, fmt.Errorf("%w: page size %d, randomizer uses %d",
				ErrLayoutMismatch, cfg.Layout.PageSize, geometry.PageSize)
		}
		if geometry.OOBSize > cfg.Layout.SpareSize {
			return nil, fmt.Errorf("%w: spare size %d is smaller than randomizer OOB size %d",
				ErrLayoutMismatch, cfg.Layout.SpareSize, geometry.OOBSize)
		}
	}

	return &Processor{
		logger:     logger,
		randomizer: r,
		cfg:        cfg,
	}, nil
}

// Process reads the dump from reader page by page, randomizes every page
// in place and writes it to writer. Pages that the randomizer does not
// randomize are written unchanged.
func (p *Processor) Process(ctx context.Context, reader io.Reader, writer io.Writer) (Stats, error) {
	var stats Stats
	buf := make([]byte, p.cfg.Layout.PageLength())

	p.logger.Debug("Processing dump",
		log.Int("page_length", len(buf)),
		log.Hex("start_page", p.cfg.StartPage),
		log.Int("planes", int(p.cfg.Layout.planes())))

	for index := uint32(0); ; index++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := io.ReadFull(reader, buf)
		switch {
		case errors.Is(err, io.EOF):
			return stats, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return stats, fmt.Errorf("%w: page %d has %d of %d bytes", ErrTruncatedPage, index, n, len(buf))
		case err != nil:
			return stats, fmt.Errorf("reading page %d: %w", index, err)
		}

		p.processPage(index, buf, &stats)

		if _, err := writer.Write(buf); err != nil {
			return stats, fmt.Errorf("writing page %d: %w", index, err)
		}
		stats.Pages++
	}
}

func (p *Processor) processPage(index uint32, buf []byte, stats *Stats) {
	if p.skipPage(index, buf) {
		stats.Blank++
		stats.BlankPages = append(stats.BlankPages, index)
		return
	}

	layout := p.cfg.Layout
	planes := layout.planes()
	oobStart := planes * layout.PageSize
	page := p.cfg.StartPage + index

	for plane := uint32(0); plane < planes; plane++ {
		dataStart := plane * layout.PageSize
		data := buf[dataStart : dataStart+layout.PageSize]
		spareStart := oobStart + plane*layout.SpareSize
		oob := buf[spareStart : spareStart+layout.SpareSize]

		planePage := layout.PlanePage(page, plane)
		res := p.randomizer.RandomizePage(planePage, data, oob, data, oob)
		if res.Status == randomizer.NotRandomized {
			stats.PassThrough++
			continue
		}

		stats.Randomized++
	}
}

// skipPage returns whether the dump page is passed through unchanged. The
// blank check covers the data and spare areas of all planes, a dual plane
// page is only skipped if both planes are erased.
func (p *Processor) skipPage(index uint32, buf []byte) bool {
	if p.cfg.SkipPage != nil && p.cfg.SkipPage(index) {
		return true
	}
	return p.cfg.SkipBlank && isErased(buf)
}

func isErased(buf []byte) bool {
	for _, b := range buf {
		if b != erasedByte {
			return false
		}
	}
	return true
}
