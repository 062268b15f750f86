// Package options contains the program options.
package options

import (
	"fmt"
	"strings"
)

// Mode of processing a dump.
type Mode string

// processing modes.
const (
	Randomize   Mode = "randomize"   // plain dump to be programmed to flash
	Derandomize Mode = "derandomize" // dump read from flash
)

// ParseMode parses a mode name, accepting the short forms "r" and "d".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "r", string(Randomize):
		return Randomize, nil
	case "d", string(Derandomize):
		return Derandomize, nil
	default:
		return "", fmt.Errorf("unsupported mode '%s'. Valid options: %s, %s", s, Randomize, Derandomize)
	}
}

// Parameters contains file path options.
type Parameters struct {
	Input  string // input dump file
	Output string // output dump file
	Batch  string // glob pattern of dumps to process
	Mask   string // file to write the randomizer mask to
}

// Chip contains the chip selection and geometry overrides. Zero values are
// taken from the chip table.
type Chip struct {
	ID        string
	BlockSize uint
	PageSize  uint
	OOBSize   uint // randomized OOB bytes per page
	SpareSize uint // OOB bytes per page stored in the dump
	Planes    uint
	StartPage uint
}

// Flags contains behavior options.
type Flags struct {
	Mode         string
	ProcessBlank bool // derandomize erased pages as well
	Info         bool
	Verify       bool
	Debug        bool
	Quiet        bool
}

// Program options of the randomizer tool.
type Program struct {
	Parameters
	Chip
	Flags
}
