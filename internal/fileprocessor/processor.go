// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/nandrandomizer/internal/chip"
	"github.com/retroenv/nandrandomizer/internal/image"
	"github.com/retroenv/nandrandomizer/internal/options"
	"github.com/retroenv/nandrandomizer/internal/randomizer"
	"github.com/retroenv/nandrandomizer/internal/verification"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	r, info, err := setupRandomizer(logger, opts)
	if err != nil {
		return fmt.Errorf("setting up randomizer: %w", err)
	}

	if opts.Mask != "" {
		if err := writeMask(logger, r, opts.Mask); err != nil {
			return err
		}
	}

	layout, err := dumpLayout(opts, info, r)
	if err != nil {
		return err
	}

	mode := options.Mode(opts.Mode)
	cfg := image.Config{
		Layout:    layout,
		StartPage: uint32(opts.StartPage),
		SkipBlank: mode == options.Derandomize && !opts.ProcessBlank,
	}
	processor, err := image.New(logger, r, cfg)
	if err != nil {
		return fmt.Errorf("creating dump processor: %w", err)
	}

	stats, err := processFile(ctx, logger, opts, processor)
	if err != nil {
		return err
	}

	if opts.Verify {
		// processing back skips exactly the pages that were passed through as erased
		cfg.SkipBlank = false
		cfg.SkipPage = blankPages(stats)
		verifier, err := image.New(logger, r, cfg)
		if err != nil {
			return fmt.Errorf("creating verification processor: %w", err)
		}
		if err := verification.VerifyOutput(ctx, logger, opts.Input, opts.Output, verifier); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	return nil
}

func processFile(ctx context.Context, logger *log.Logger, opts options.Program, processor *image.Processor) (image.Stats, error) {
	input, err := os.Open(opts.Input)
	if err != nil {
		return image.Stats{}, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = input.Close() }()

	writer, closeWriter, err := createWriter(opts)
	if err != nil {
		return image.Stats{}, fmt.Errorf("creating writer: %w", err)
	}

	stats, err := processor.Process(ctx, input, writer)
	if closeErr := closeWriter(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing output file %s: %w", opts.Output, closeErr)
	}
	if err != nil {
		return stats, fmt.Errorf("processing %s: %w", opts.Input, err)
	}

	logger.Info("Processed dump",
		log.String("file", opts.Input),
		log.String("mode", opts.Mode),
		log.Int("pages", stats.Pages),
		log.Int("randomized", stats.Randomized),
		log.Int("pass_through", stats.PassThrough),
		log.Int("blank", stats.Blank))
	return stats, nil
}

func blankPages(stats image.Stats) func(index uint32) bool {
	pages := set.New[uint32]()
	for _, index := range stats.BlankPages {
		pages.Add(index)
	}
	return pages.Contains
}

// setupRandomizer initializes a randomizer for the chip selected by the
// options and returns the chip table entry used for the dump layout.
func setupRandomizer(logger *log.Logger, opts options.Program) (*randomizer.Randomizer, chip.Info, error) {
	id, err := chip.ParseID(opts.ID)
	if err != nil {
		return nil, chip.Info{}, fmt.Errorf("parsing chip ID: %w", err)
	}
	info, _ := chip.DefaultTable.Identify(id)

	r := randomizer.New(logger)
	length := chip.MaxBufferLength
	if randomized, required := r.Query(id); randomized {
		length = required
	}

	geometry := randomizer.Geometry{
		BlockSize: uint32(opts.BlockSize),
		PageSize:  uint32(opts.PageSize),
		OOBSize:   uint32(opts.OOBSize),
	}
	if _, err := r.Init(id, geometry, make([]byte, length)); err != nil {
		return nil, chip.Info{}, fmt.Errorf("initializing randomizer: %w", err)
	}

	if !r.Randomized() {
		logger.Warn("Chip is not randomized, data is copied unchanged",
			log.String("id", chip.FormatID(id)))
	}
	return r, info, nil
}

// dumpLayout returns the layout of the dump, options take priority over the
// randomizer geometry and the chip table.
func dumpLayout(opts options.Program, info chip.Info, r *randomizer.Randomizer) (image.Layout, error) {
	geometry := r.Geometry()

	layout := image.Layout{
		PageSize:  firstNonZero(uint32(opts.PageSize), geometry.PageSize, info.PageSize),
		SpareSize: firstNonZero(uint32(opts.SpareSize), info.SpareSize, geometry.OOBSize),
		Planes:    uint32(opts.Planes),
	}
	if layout.PageSize == 0 {
		return image.Layout{}, errors.New("page size has to be set for unknown chips")
	}

	blockSize := firstNonZero(uint32(opts.BlockSize), geometry.BlockSize, info.BlockSize)
	layout.PagesPerBlock = blockSize / layout.PageSize
	return layout, nil
}

func firstNonZero(values ...uint32) uint32 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func writeMask(logger *log.Logger, r *randomizer.Randomizer, path string) error {
	if !r.Randomized() {
		logger.Warn("No mask to write, chip is not randomized")
		return nil
	}

	mask := r.Mask()
	if err := os.WriteFile(path, mask, 0o644); err != nil {
		return fmt.Errorf("writing mask file %s: %w", path, err)
	}
	logger.Info("Mask written", log.String("file", path), log.Int("length", len(mask)))
	return nil
}

// PrintChipInfo prints the chip table entry selected by the options.
func PrintChipInfo(logger *log.Logger, opts options.Program) error {
	id, err := chip.ParseID(opts.ID)
	if err != nil {
		return fmt.Errorf("parsing chip ID: %w", err)
	}

	info, ok := chip.DefaultTable.Identify(id)
	if !ok {
		logger.Info("Unknown chip, data is not randomized", log.String("id", chip.FormatID(id)))
		return nil
	}

	randomized, length := randomizer.ChipRandomized(id)
	logger.Info("Chip",
		log.String("name", info.Name),
		log.String("id", chip.FormatID(info.ID)),
		log.String("randomizer", info.Type.String()),
		log.String("randomized", fmt.Sprint(randomized)),
		log.Int("mask_length", length),
		log.Int("page_size", int(info.PageSize)),
		log.Int("spare_size", int(info.SpareSize)),
		log.Int("block_size", int(info.BlockSize)),
		log.Int("pages_per_block", int(info.PagesPerBlock())))
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string, mode options.Mode) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + "." + string(mode) + "d" + ext
}

func createWriter(opts options.Program) (io.Writer, func() error, error) {
	if opts.Output == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, file.Close, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("nandrandomizer", log.String("version", buildinfo.Version(version, commit, date)))
}
