package fileprocessor

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/nandrandomizer/internal/chip"
	"github.com/retroenv/nandrandomizer/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const (
	samsungPageLength = 8192 + 640
	// first page of block 9, the first block that is randomized by default
	samsungFirstPage = 9 * 128
)

func createDump(t *testing.T, dir string, pages int) (string, []byte) {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(pages)))
	data := make([]byte, pages*samsungPageLength)
	_, _ = rng.Read(data)

	path := filepath.Join(dir, "dump.bin")
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func TestProcessFileRoundTrip(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()
	input, data := createDump(t, dir, 3)

	randomized := filepath.Join(dir, "dump.randomized.bin")
	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: randomized},
		Chip:       options.Chip{ID: "EC:D7:94:7A:54:43", Planes: 1, StartPage: samsungFirstPage},
		Flags:      options.Flags{Mode: string(options.Randomize), Verify: true},
	}
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	randomizedData, err := os.ReadFile(randomized)
	assert.NoError(t, err)
	assert.Len(t, randomizedData, len(data))
	assert.Equal(t, data[8192], randomizedData[8192])

	restored := filepath.Join(dir, "dump.derandomized.bin")
	opts.Input = randomized
	opts.Output = restored
	opts.Mode = string(options.Derandomize)
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	restoredData, err := os.ReadFile(restored)
	assert.NoError(t, err)
	assert.Equal(t, data, restoredData)
}

func TestProcessFileVerifyErasedContent(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()

	plain := bytes.Repeat([]byte{0xFF}, 2*samsungPageLength)
	input := filepath.Join(dir, "dump.bin")
	assert.NoError(t, os.WriteFile(input, plain, 0o600))

	randomized := filepath.Join(dir, "dump.randomized.bin")
	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: randomized},
		Chip:       options.Chip{ID: "EC:D7:94:7A:54:43", Planes: 1, StartPage: samsungFirstPage},
		Flags:      options.Flags{Mode: string(options.Randomize), Verify: true},
	}
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	// the second page was never written and reads back erased
	randomizedData, err := os.ReadFile(randomized)
	assert.NoError(t, err)
	copy(randomizedData[samsungPageLength:], plain[samsungPageLength:])
	assert.NoError(t, os.WriteFile(randomized, randomizedData, 0o600))

	restored := filepath.Join(dir, "dump.derandomized.bin")
	opts.Input = randomized
	opts.Output = restored
	opts.Mode = string(options.Derandomize)
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	restoredData, err := os.ReadFile(restored)
	assert.NoError(t, err)
	assert.Equal(t, plain, restoredData)
}

func TestProcessFileSkippedBlocks(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()
	input, data := createDump(t, dir, 2)

	output := filepath.Join(dir, "out.bin")
	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: output},
		Chip:       options.Chip{Planes: 1},
		Flags:      options.Flags{Mode: string(options.Randomize)},
	}
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	outputData, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, data, outputData)
}

func TestProcessFileMask(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()
	input, _ := createDump(t, dir, 1)

	mask := filepath.Join(dir, "mask.bin")
	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: filepath.Join(dir, "out.bin"), Mask: mask},
		Chip:       options.Chip{Planes: 1},
		Flags:      options.Flags{Mode: string(options.Randomize)},
	}
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	maskData, err := os.ReadFile(mask)
	assert.NoError(t, err)
	assert.Len(t, maskData, 4096)
	assert.Equal(t, []byte{0xCF, 0x7E, 0xD4, 0x20, 0x5F, 0x58, 0x38, 0x3A}, maskData[:8])
}

func TestProcessFileUnknownChip(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()
	input, data := createDump(t, dir, 1)

	opts := options.Program{
		Parameters: options.Parameters{Input: input, Output: filepath.Join(dir, "out.bin")},
		Chip:       options.Chip{ID: "2C:68:04:4A", Planes: 1},
		Flags:      options.Flags{Mode: string(options.Randomize)},
	}
	assert.Error(t, ProcessFile(context.Background(), logger, opts))

	opts.PageSize = 8192
	opts.SpareSize = 640
	assert.NoError(t, ProcessFile(context.Background(), logger, opts))

	outputData, err := os.ReadFile(opts.Output)
	assert.NoError(t, err)
	assert.Equal(t, data, outputData)
}

func TestProcessFileErrors(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()
	input, _ := createDump(t, dir, 1)

	tests := []struct {
		name string
		opts options.Program
	}{
		{
			name: "missing input",
			opts: options.Program{
				Parameters: options.Parameters{Input: filepath.Join(dir, "missing.bin"), Output: filepath.Join(dir, "out.bin")},
				Chip:       options.Chip{Planes: 1},
				Flags:      options.Flags{Mode: string(options.Randomize)},
			},
		},
		{
			name: "truncated dump",
			opts: options.Program{
				Parameters: options.Parameters{Input: input, Output: filepath.Join(dir, "out.bin")},
				Chip:       options.Chip{Planes: 1, SpareSize: 1000},
				Flags:      options.Flags{Mode: string(options.Randomize)},
			},
		},
		{
			name: "spare smaller than OOB",
			opts: options.Program{
				Parameters: options.Parameters{Input: input, Output: filepath.Join(dir, "out.bin")},
				Chip:       options.Chip{Planes: 1, SpareSize: 32},
				Flags:      options.Flags{Mode: string(options.Randomize)},
			},
		},
		{
			name: "invalid geometry",
			opts: options.Program{
				Parameters: options.Parameters{Input: input, Output: filepath.Join(dir, "out.bin")},
				Chip:       options.Chip{Planes: 1, PageSize: 5000},
				Flags:      options.Flags{Mode: string(options.Randomize)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ProcessFile(context.Background(), logger, tt.opts))
		})
	}
}

func TestPrintChipInfo(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, PrintChipInfo(logger, options.Program{}))
	assert.NoError(t, PrintChipInfo(logger, options.Program{Chip: options.Chip{ID: chip.FormatID(chip.DefaultTable[3].ID)}}))
	assert.NoError(t, PrintChipInfo(logger, options.Program{Chip: options.Chip{ID: "01:02"}}))
	assert.Error(t, PrintChipInfo(logger, options.Program{Chip: options.Chip{ID: "XYZ"}}))
}

func TestGetFilesToProcess(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.bin", "b.bin", "c.txt"} {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files, err := GetFilesToProcess(&options.Program{Parameters: options.Parameters{Batch: filepath.Join(dir, "*.bin")}})
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")}, files)

	files, err = GetFilesToProcess(&options.Program{Parameters: options.Parameters{Input: "dump.bin"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"dump.bin"}, files)

	_, err = GetFilesToProcess(&options.Program{Parameters: options.Parameters{Batch: "[a-"}})
	assert.Error(t, err)
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, "dump.randomized.bin", GenerateOutputFilename("dump.bin", options.Randomize))
	assert.Equal(t, "dir/dump.derandomized.img", GenerateOutputFilename("dir/dump.img", options.Derandomize))
	assert.Equal(t, "dump.randomized", GenerateOutputFilename("dump", options.Randomize))
}
