package codec

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	URL   string   `json:"url" msgpack:"url"`
	Depth int      `json:"depth" msgpack:"depth"`
	Tags  []string `json:"tags" msgpack:"tags"`
}

type pageID uint64

type fixed struct{ a, b byte }

func (f fixed) MarshalBinary() ([]byte, error) { return []byte{f.a, f.b}, nil }

func (f *fixed) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return ErrInvalidLength
	}
	f.a, f.b = data[0], data[1]
	return nil
}

func roundTrip[T any](t *testing.T, c Codec, v T) T {
	t.Helper()
	data, err := Encode(c, v)
	require.NoError(t, err)
	got, err := Decode[T](c, data)
	require.NoError(t, err)
	return got
}

func TestBinary_FixedWidth(t *testing.T) {
	c := Binary{}

	data, err := c.Marshal(uint64(0x0102030405060708))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data)

	data, err = c.Marshal(uint32(7))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7}, data)

	data, err = c.Marshal("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	assert.Equal(t, int64(-42), roundTrip(t, c, int64(-42)))
	assert.Equal(t, -7, roundTrip(t, c, -7))
	assert.Equal(t, uint16(65000), roundTrip(t, c, uint16(65000)))
	assert.Equal(t, int8(-3), roundTrip(t, c, int8(-3)))
	assert.Equal(t, 3.25, roundTrip(t, c, 3.25))
	assert.Equal(t, float32(1.5), roundTrip(t, c, float32(1.5)))
	assert.True(t, roundTrip(t, c, true))
	assert.Equal(t, "hello", roundTrip(t, c, "hello"))
	assert.Equal(t, []byte{9, 8}, roundTrip(t, c, []byte{9, 8}))
}

func TestBinary_InvalidLength(t *testing.T) {
	var v uint64
	err := Binary{}.Unmarshal([]byte{1, 2}, &v)
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestBinary_BinaryMarshaler(t *testing.T) {
	c := Binary{}
	assert.Equal(t, fixed{1, 2}, roundTrip(t, c, fixed{1, 2}))

	bm := roaring.BitmapOf(1, 5, 900)
	got := roundTrip(t, c, bm)
	require.NotNil(t, got)
	assert.True(t, bm.Equals(got))

	data, err := c.Marshal((*roaring.Bitmap)(nil))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestBinary_Fallback(t *testing.T) {
	p := payload{URL: "http://a", Depth: 2, Tags: []string{"x"}}

	assert.Equal(t, p, roundTrip(t, Binary{}, p))
	assert.Equal(t, pageID(12), roundTrip(t, Binary{}, pageID(12)))
	assert.Equal(t, p, roundTrip(t, Binary{Fallback: JSON{}}, p))

	viaMsgpack, err := Binary{}.Marshal(p)
	require.NoError(t, err)
	direct, err := Msgpack{}.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, direct, viaMsgpack)
}

func TestCodecs_RoundTrip(t *testing.T) {
	p := payload{URL: "http://b", Depth: 1, Tags: []string{"a", "b"}}
	for _, c := range []Codec{Binary{}, Msgpack{}, JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			assert.Equal(t, p, roundTrip(t, c, p))
			assert.Equal(t, "text", roundTrip(t, c, "text"))
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"binary", "msgpack", "json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("gob")
	assert.False(t, ok)
}

func TestEncodeDecode_NilCodecUsesDefault(t *testing.T) {
	data, err := Encode[string](nil, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), data)
	got, err := Decode[string](nil, data)
	require.NoError(t, err)
	assert.Equal(t, "k", got)
	assert.Equal(t, []byte("z"), MustMarshal(nil, "z"))
}
