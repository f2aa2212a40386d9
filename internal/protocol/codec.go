// internal/protocol/codec.go
package protocol

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Queries and responses travel as ISO-8859-1 bytes.

// outsideLatin1 maps every rune the charset cannot carry to '?'.
// Invalid UTF-8 arrives here as U+FFFD and is mapped too.
var outsideLatin1 = runes.Map(func(r rune) rune {
	if r > 0xFF {
		return '?'
	}
	return r
})

// Decode converts raw wire bytes into a string.
func Decode(b []byte) (string, error) {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode query: %w", err)
	}
	return string(s), nil
}

// Encode converts a response into wire bytes. Characters outside Latin-1 become '?'.
func Encode(s string) ([]byte, error) {
	b, _, err := transform.Bytes(transform.Chain(outsideLatin1, charmap.ISO8859_1.NewEncoder()), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return b, nil
}
