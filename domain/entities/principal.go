package entities

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

// MaxPrincipalLength is the largest principal the host hands out.
const MaxPrincipalLength = 29

var (
	// ErrPrincipalTooLong is returned for byte identities over MaxPrincipalLength.
	ErrPrincipalTooLong = errors.New("principal exceeds 29 bytes")

	// ErrPrincipalChecksum is returned when a textual principal fails its CRC check.
	ErrPrincipalChecksum = errors.New("principal checksum mismatch")
)

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is the opaque byte identity of a canister or user.
type Principal []byte

var (
	// ManagementCanister is the empty principal addressing the management canister.
	ManagementCanister = Principal{}

	// AnonymousPrincipal identifies unauthenticated callers.
	AnonymousPrincipal = Principal{0x04}
)

// NewPrincipal copies b into a Principal after validating its length.
func NewPrincipal(b []byte) (Principal, error) {
	if len(b) > MaxPrincipalLength {
		return nil, ErrPrincipalTooLong
	}
	p := make(Principal, len(b))
	copy(p, b)
	return p, nil
}

// ParsePrincipal decodes the dashed textual form.
func ParsePrincipal(s string) (Principal, error) {
	raw := strings.ToUpper(strings.ReplaceAll(s, "-", ""))
	decoded, err := principalEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid principal %q: %w", s, err)
	}
	if len(decoded) < 4 {
		return nil, fmt.Errorf("invalid principal %q: too short", s)
	}
	p, err := NewPrincipal(decoded[4:])
	if err != nil {
		return nil, err
	}
	if binary.BigEndian.Uint32(decoded[:4]) != crc32.ChecksumIEEE(p) {
		return nil, ErrPrincipalChecksum
	}
	if p.String() != strings.ToLower(s) {
		return nil, fmt.Errorf("invalid principal %q: not in canonical form", s)
	}
	return p, nil
}

// MustParsePrincipal is ParsePrincipal that panics on error.
func MustParsePrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns the raw identity.
func (p Principal) Bytes() []byte {
	return []byte(p)
}

// Equal reports whether p and o are the same identity.
func (p Principal) Equal(o Principal) bool {
	return bytes.Equal(p, o)
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p.Equal(AnonymousPrincipal)
}

// String returns the textual form: base32 of CRC32 || bytes, lower case,
// grouped by five characters.
func (p Principal) String() string {
	buf := make([]byte, 4, 4+len(p))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(p))
	buf = append(buf, p...)
	enc := strings.ToLower(principalEncoding.EncodeToString(buf))

	var sb strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}
