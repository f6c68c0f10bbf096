package bucket

import (
	"fmt"
	"testing"

	"github.com/hupe1980/drum/codec"
	"github.com/hupe1980/drum/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type url string

type compositeKey struct {
	Host string
	Path string
}

func TestTop(t *testing.T) {
	assert.Equal(t, 0, Top(^uint64(0), 0))
	assert.Equal(t, 1, Top(1<<63, 1))
	assert.Equal(t, 0xF, Top(0xF000000000000000, 4))
	assert.Equal(t, 0xAB, Top(0xAB00000000000000, 8))
	assert.Equal(t, 0x3, Top32(0xC0000000, 2))
	assert.Equal(t, 0, Top32(0xC0000000, 0))
}

func TestIntegerStrategies_MatchShiftFormula(t *testing.T) {
	for _, bits := range []uint{1, 3, 8, 12} {
		for _, k := range []uint64{0, 1, 1 << 40, 0xDEADBEEFCAFEBABE, ^uint64(0)} {
			got, err := Uint64[uint64]{}.Bucket(k, bits)
			require.NoError(t, err)
			assert.Equal(t, int(k>>(64-bits)), got)
		}
		for _, k := range []uint32{0, 7, 0xDEADBEEF, ^uint32(0)} {
			got, err := Uint32[uint32]{}.Bucket(k, bits)
			require.NoError(t, err)
			assert.Equal(t, int(k>>(32-bits)), got)
		}
		k := fingerprint.Uint128{Hi: 0xDEADBEEFCAFEBABE, Lo: 42}
		got, err := Uint128{}.Bucket(k, bits)
		require.NoError(t, err)
		assert.Equal(t, int(k.Rsh(128-bits).Lo), got)
	}
}

func TestStringStrategy_UsesFingerprint(t *testing.T) {
	s := String[url]{}
	got, err := s.Bucket("http://example.com/", 6)
	require.NoError(t, err)
	assert.Equal(t, int(fingerprint.Sum64([]byte("http://example.com/"))>>58), got)

	m := String[string]{Fingerprinter: fingerprint.Murmur3{}}
	got, err = m.Bucket("k", 6)
	require.NoError(t, err)
	assert.Equal(t, int(fingerprint.Murmur3{}.Sum64([]byte("k"))>>58), got)
}

func TestSerializedStrategy(t *testing.T) {
	s := Serialized[compositeKey]{Codec: codec.Msgpack{}}
	k := compositeKey{Host: "a.example", Path: "/x"}
	data := codec.MustMarshal(codec.Msgpack{}, k)

	got, err := s.Bucket(k, 10)
	require.NoError(t, err)
	assert.Equal(t, int(fingerprint.Sum64(data)>>54), got)
}

func TestFor_SelectsFamily(t *testing.T) {
	assert.IsType(t, Uint64[uint64]{}, For[uint64](nil, nil))
	assert.IsType(t, Uint32[uint32]{}, For[uint32](nil, nil))
	assert.IsType(t, Uint128{}, For[fingerprint.Uint128](nil, nil))
	assert.IsType(t, String[string]{}, For[string](nil, nil))
	assert.IsType(t, Serialized[url]{}, For[url](nil, nil))
	assert.IsType(t, Serialized[compositeKey]{}, For[compositeKey](nil, nil))
}

func TestBucketing_DeterministicAndInRange(t *testing.T) {
	strategies := map[string]Strategy[string]{
		"string":     For[string](nil, nil),
		"serialized": Serialized[string]{Codec: codec.JSON{}},
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			for _, bits := range []uint{0, 1, 4, 9} {
				for i := range 500 {
					key := fmt.Sprintf("http://host-%d.example/%d", i%17, i)
					a, err := s.Bucket(key, bits)
					require.NoError(t, err)
					b, err := s.Bucket(key, bits)
					require.NoError(t, err)
					assert.Equal(t, a, b)
					assert.GreaterOrEqual(t, a, 0)
					assert.Less(t, a, 1<<bits)
				}
			}
		})
	}
}

func TestStrategyFunc(t *testing.T) {
	f := StrategyFunc[int](func(k int, bits uint) (int, error) { return k % (1 << bits), nil })
	got, err := f.Bucket(13, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
