package fingerprint

import "encoding/binary"

const (
	// DefaultPolynomial is the low 64 coefficients of the irreducible
	// polynomial x^64 + DefaultPolynomial used by Default.
	DefaultPolynomial uint64 = 0x81f9c1f66c0f3459

	// SecondaryPolynomial is an independent irreducible polynomial used for
	// the low half of 128-bit fingerprints.
	SecondaryPolynomial uint64 = 0x5d5f576cdeb8fc4d
)

// Fingerprinter computes a 64-bit fingerprint of a byte sequence.
// Implementations must be deterministic and safe for concurrent use.
type Fingerprinter interface {
	Sum64(data []byte) uint64
}

// Default is the shared Rabin engine over DefaultPolynomial.
var Default = NewRabin64(DefaultPolynomial)

// Sum64 fingerprints data with Default.
func Sum64(data []byte) uint64 {
	return Default.Sum64(data)
}

// Rabin64 is a table-driven Rabin fingerprint modulo x^64 + Polynomial.
type Rabin64 struct {
	poly   uint64
	tables [8][256]uint64
}

// NewRabin64 precomputes the lookup tables for x^64 + poly.
//
// poly must describe an irreducible polynomial for the fingerprint to be
// well distributed; DefaultPolynomial and SecondaryPolynomial are.
func NewRabin64(poly uint64) *Rabin64 {
	r := &Rabin64{poly: poly}
	for i := range r.tables {
		for j := range r.tables[i] {
			v := uint64(j) << (8 * i)
			for range 64 {
				v = r.mulX(v)
			}
			r.tables[i][j] = v
		}
	}
	return r
}

// Polynomial returns the low 64 coefficients of the modulus.
func (r *Rabin64) Polynomial() uint64 { return r.poly }

func (r *Rabin64) mulX(v uint64) uint64 {
	if v&(1<<63) != 0 {
		return (v << 1) ^ r.poly
	}
	return v << 1
}

// shift64 returns f·x^64 mod P.
func (r *Rabin64) shift64(f uint64) uint64 {
	t := &r.tables
	return t[0][f&0xff] ^
		t[1][(f>>8)&0xff] ^
		t[2][(f>>16)&0xff] ^
		t[3][(f>>24)&0xff] ^
		t[4][(f>>32)&0xff] ^
		t[5][(f>>40)&0xff] ^
		t[6][(f>>48)&0xff] ^
		t[7][f>>56]
}

// Sum64 returns the fingerprint of data.
//
// The accumulator starts at 1 so that leading zero bytes change the result,
// and is multiplied by x^64 once at the end so that short inputs reach the
// high bits.
func (r *Rabin64) Sum64(data []byte) uint64 {
	f := uint64(1)
	for len(data) >= 8 {
		f = binary.BigEndian.Uint64(data) ^ r.shift64(f)
		data = data[8:]
	}
	for _, b := range data {
		f = ((f << 8) | uint64(b)) ^ r.tables[0][f>>56]
	}
	return r.shift64(f)
}

// Rabin128 is a 128-bit fingerprint built from two independent Rabin64
// engines.
type Rabin128 struct {
	hi *Rabin64
	lo *Rabin64
}

// NewRabin128 returns a 128-bit engine over the two given polynomials.
func NewRabin128(hiPoly, loPoly uint64) *Rabin128 {
	return &Rabin128{hi: NewRabin64(hiPoly), lo: NewRabin64(loPoly)}
}

// Default128 is the shared 128-bit engine.
var Default128 = &Rabin128{hi: Default, lo: NewRabin64(SecondaryPolynomial)}

// Sum128 returns the 128-bit fingerprint of data.
func (r *Rabin128) Sum128(data []byte) Uint128 {
	return Uint128{Hi: r.hi.Sum64(data), Lo: r.lo.Sum64(data)}
}

// Sum64 returns the high half of the 128-bit fingerprint, which makes
// Rabin128 usable wherever a Fingerprinter is expected.
func (r *Rabin128) Sum64(data []byte) uint64 {
	return r.hi.Sum64(data)
}
