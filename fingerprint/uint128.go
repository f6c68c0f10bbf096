package fingerprint

import (
	"cmp"
	"encoding/binary"
	"fmt"
)

// Uint128 is a 128-bit unsigned integer. It is the result type of Rabin128
// and a valid fixed-width DRUM key.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Compare orders by Hi, then Lo.
func (u Uint128) Compare(o Uint128) int {
	if c := cmp.Compare(u.Hi, o.Hi); c != 0 {
		return c
	}
	return cmp.Compare(u.Lo, o.Lo)
}

// Rsh returns u >> n.
func (u Uint128) Rsh(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Lo: u.Hi >> (n - 64)}
	default:
		return Uint128{Hi: u.Hi >> n, Lo: u.Lo>>n | u.Hi<<(64-n)}
	}
}

func (u Uint128) String() string {
	return fmt.Sprintf("%016x%016x", u.Hi, u.Lo)
}

// MarshalBinary encodes u as 16 big-endian bytes.
func (u Uint128) MarshalBinary() ([]byte, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], u.Hi)
	binary.BigEndian.PutUint64(b[8:16], u.Lo)
	return b, nil
}

// UnmarshalBinary decodes 16 big-endian bytes.
func (u *Uint128) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return fmt.Errorf("fingerprint: uint128 needs 16 bytes, got %d", len(data))
	}
	u.Hi = binary.BigEndian.Uint64(data[0:8])
	u.Lo = binary.BigEndian.Uint64(data[8:16])
	return nil
}
