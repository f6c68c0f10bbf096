package fingerprint

import "github.com/spaolacci/murmur3"

// Murmur3 fingerprints with 64-bit murmur3 under a fixed seed.
type Murmur3 struct {
	Seed uint32
}

// Sum64 implements Fingerprinter.
func (m Murmur3) Sum64(data []byte) uint64 {
	return murmur3.Sum64WithSeed(data, m.Seed)
}
