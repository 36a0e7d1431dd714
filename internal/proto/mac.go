// internal/proto/mac.go
package proto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MAC is the 8-byte hardware address of a tag or of the AP itself.
// Bytes are kept in the order they travel on air.
type MAC [8]byte

// String renders the address as AA:BB:CC:DD:EE:FF:00:11.
func (m MAC) String() string {
	var sb strings.Builder
	for i, b := range m {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Hex renders the address as 16 uppercase hex digits without separators.
func (m MAC) Hex() string {
	return strings.ToUpper(hex.EncodeToString(m[:]))
}

// IsZero reports whether every byte is zero.
func (m MAC) IsZero() bool {
	return m == MAC{}
}

// ParseMAC accepts 16 hex digits, optionally separated by ':' or '-'.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	if len(clean) != 16 {
		return m, fmt.Errorf("proto: mac %q: want 16 hex digits, got %d", s, len(clean))
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return m, fmt.Errorf("proto: mac %q: %w", s, err)
	}
	copy(m[:], b)
	return m, nil
}
