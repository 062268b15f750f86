// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/nandrandomizer/internal/chip"
	"github.com/retroenv/nandrandomizer/internal/options"
)

// ParseFlags parses command line flags and returns program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if opts.Input == "" && len(args) > 0 {
		opts.Input = args[0]
	}
	if opts.Input == "" && opts.Batch == "" && !opts.Info {
		return opts, &UsageError{flags: flags}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: nandrandomizer [options] <dump file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && len(arg) > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after dump file, please pass the dump file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	mode, err := options.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = string(mode)

	if _, err := chip.ParseID(opts.ID); err != nil {
		return fmt.Errorf("invalid chip ID: %w", err)
	}

	if opts.Planes == 0 {
		opts.Planes = 1
	}
	return nil
}

// validateOptionCombinations checks for options that can not be used together
func validateOptionCombinations(opts options.Program) error {
	if opts.Planes != 1 && opts.Planes != 2 {
		return fmt.Errorf("unsupported plane count %d, valid options: 1, 2", opts.Planes)
	}
	if opts.Verify && opts.Batch == "" && opts.Output == "" {
		return errors.New("verification requires an output file")
	}
	if opts.Batch != "" && opts.Output != "" {
		return errors.New("output file can not be set in batch mode")
	}
	if opts.Batch != "" && opts.Mask != "" {
		return errors.New("mask file can not be set in batch mode")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input dump file")
	flags.StringVar(&opts.Output, "o", "", "name of the output dump file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically name the output files, for example *.bin")
	flags.StringVar(&opts.Mask, "mask", "", "name of a file to write the randomizer mask to")

	flags.StringVar(&opts.ID, "id", "", "chip ID as hex bytes, for example EC:D7:94:7A:54:43 (default: first known chip)")
	flags.UintVar(&opts.BlockSize, "block", 0, "erase block size in bytes (default: chip table)")
	flags.UintVar(&opts.PageSize, "page", 0, "page size in bytes (default: chip table)")
	flags.UintVar(&opts.OOBSize, "oob", 0, "randomized OOB bytes per page (default: chip table)")
	flags.UintVar(&opts.SpareSize, "spare", 0, "OOB bytes per page stored in the dump (default: chip table)")
	flags.UintVar(&opts.Planes, "planes", 1, "number of planes per dump page (1 or 2)")
	flags.UintVar(&opts.StartPage, "start", 0, "page address of the first page in the dump")

	flags.StringVar(&opts.Mode, "mode", string(options.Randomize), "processing mode (randomize/derandomize)")
	flags.BoolVar(&opts.ProcessBlank, "processblank", false, "derandomize erased pages instead of passing them through")
	flags.BoolVar(&opts.Info, "info", false, "print chip information and exit")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the output by processing it back and comparing it to the input")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
