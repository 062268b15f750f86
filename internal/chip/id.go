package chip

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseID parses a chip ID given as hex string. Bytes can be separated by
// colons, dashes or spaces, or written without separator with an optional
// 0x prefix.
func ParseID(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var digits string
	if strings.ContainsAny(s, ":- ") {
		parts := strings.FieldsFunc(s, func(r rune) bool {
			return r == ':' || r == '-' || r == ' '
		})
		for _, part := range parts {
			part = strings.TrimPrefix(strings.ToLower(part), "0x")
			if len(part) == 1 {
				part = "0" + part
			}
			if len(part) != 2 {
				return nil, fmt.Errorf("invalid chip ID byte '%s'", part)
			}
			digits += part
		}
	} else {
		digits = strings.TrimPrefix(strings.ToLower(s), "0x")
	}

	id, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("decoding chip ID '%s': %w", s, err)
	}
	if len(id) > MaxIDLength {
		return nil, fmt.Errorf("chip ID '%s' exceeds %d bytes", s, MaxIDLength)
	}
	return id, nil
}

// FormatID formats a chip ID as colon separated hex bytes.
func FormatID(id []byte) string {
	parts := make([]string, len(id))
	for i, b := range id {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
