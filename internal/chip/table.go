package chip

// MaxBufferLength is the largest randomizer mask any table entry requires.
const MaxBufferLength = 4096

const (
	kib = 1024
	mib = 1024 * kib
)

// DefaultTable lists the known parts. The first entry is used when no chip
// ID is given.
var DefaultTable = Table{
	{
		Name:         "SAMSUNG K9GBG08U0A",
		ID:           []byte{0xEC, 0xD7, 0x94, 0x7A, 0x54, 0x43},
		BlockSize:    1 * mib,
		PageSize:     8 * kib,
		SpareSize:    640,
		Type:         TypePRBS15,
		BufferLength: 4096,
	},
	{
		Name:         "SAMSUNG K9GBG08U0B",
		ID:           []byte{0xEC, 0xD7, 0x94, 0x7E, 0x64, 0x44},
		BlockSize:    1 * mib,
		PageSize:     8 * kib,
		SpareSize:    1024,
		Type:         TypePRBS15,
		BufferLength: 4096,
	},
	{
		Name:         "SAMSUNG K9GAG08U0E",
		ID:           []byte{0xEC, 0xD5, 0x84, 0x72, 0x50, 0x42},
		BlockSize:    1 * mib,
		PageSize:     8 * kib,
		SpareSize:    436,
		Type:         TypePRBS15,
		BufferLength: 4096,
	},
	{
		Name:      "SAMSUNG K9F4G08U0D",
		ID:        []byte{0xEC, 0xDC, 0x10, 0x95, 0x56},
		BlockSize: 128 * kib,
		PageSize:  2 * kib,
		SpareSize: 64,
		Type:      TypeNone,
	},
}
