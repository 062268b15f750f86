// Package verification verifies that a processed dump restores the input.
package verification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/nandrandomizer/internal/image"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// Processor processes a dump.
type Processor interface {
	Process(ctx context.Context, reader io.Reader, writer io.Writer) (image.Stats, error)
}

// VerifyOutput processes the output file back through the processor and
// checks that the result equals the input file.
func VerifyOutput(ctx context.Context, logger *log.Logger, input, output string, processor Processor) error {
	if output == "" {
		return errors.New("can not verify console output")
	}

	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading source file for comparison: %w", err)
	}

	file, err := os.Open(output)
	if err != nil {
		return fmt.Errorf("opening output file '%s': %w", output, err)
	}
	defer func() {
		_ = file.Close()
	}()

	restored := bytes.NewBuffer(make([]byte, 0, len(source)))
	if _, err := processor.Process(ctx, file, restored); err != nil {
		return fmt.Errorf("processing output file: %w", err)
	}

	return CheckBufferEqual(logger, source, restored.Bytes())
}

// CheckBufferEqual compares the buffers and logs the first mismatching
// offsets.
func CheckBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
