package bucketfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/drum/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	op         byte
	key, value string
	aux        string
}

func writeAll(t *testing.T, p *Pair, entries []entry) {
	t.Helper()
	require.NoError(t, p.Append(func(w *Writer) error {
		for _, e := range entries {
			if err := w.WriteRecord(e.op, []byte(e.key), []byte(e.value)); err != nil {
				return err
			}
			if err := w.WriteAux([]byte(e.aux)); err != nil {
				return err
			}
		}
		return nil
	}))
}

func readAll(t *testing.T, p *Pair) []entry {
	t.Helper()
	var out []entry
	require.NoError(t, p.LoadRecords(func(e Entry) error {
		out = append(out, entry{op: e.Op, key: string(e.Key), value: string(e.Value)})
		return nil
	}))
	i := 0
	require.NoError(t, p.LoadAux(func(aux []byte) error {
		require.Less(t, i, len(out))
		out[i].aux = string(aux)
		i++
		return nil
	}))
	assert.Equal(t, len(out), i)
	return out
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("urls", "bucket7.kv"), RecordPath("urls", 7))
	assert.Equal(t, filepath.Join("urls", "bucket7.aux"), AuxPath("urls", 7))
}

func TestPair_ExactLayout(t *testing.T) {
	dir := t.TempDir()
	p := NewPair(nil, dir, 0)
	require.NoError(t, p.Create())

	writeAll(t, p, []entry{{op: 2, key: "ab", value: "xyz", aux: "q"}})

	var want bytes.Buffer
	want.WriteByte(2)
	_ = binary.Write(&want, binary.LittleEndian, uint64(2))
	want.WriteString("ab")
	_ = binary.Write(&want, binary.LittleEndian, uint64(3))
	want.WriteString("xyz")

	got, err := os.ReadFile(RecordPath(dir, 0))
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)

	aux, err := os.ReadFile(AuxPath(dir, 0))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 'q'}, aux)

	kv, ax := p.Offsets()
	assert.Equal(t, int64(len(want.Bytes())), kv)
	assert.Equal(t, int64(9), ax)
}

func TestPair_RoundTripAcrossFeeds(t *testing.T) {
	dir := t.TempDir()
	p := NewPair(fs.Default, dir, 3)
	require.NoError(t, p.Create())

	var all []entry
	for feed := range 3 {
		var batch []entry
		for i := range 50 {
			batch = append(batch, entry{
				op:    byte((feed + i) % 7),
				key:   fmt.Sprintf("key-%d-%d", feed, i),
				value: string(bytes.Repeat([]byte{byte(i)}, i*7)),
				aux:   fmt.Sprint(i % 3),
			})
		}
		batch = append(batch, entry{op: 0, key: "", value: "", aux: ""})
		writeAll(t, p, batch)
		all = append(all, batch...)
	}

	assert.Equal(t, all, readAll(t, p))
}

func TestPair_ResetOverwritesAndIgnoresStaleTail(t *testing.T) {
	dir := t.TempDir()
	p := NewPair(nil, dir, 1)
	require.NoError(t, p.Create())

	writeAll(t, p, []entry{{op: 1, key: "long-key-1", value: "v1"}, {op: 1, key: "long-key-2", value: "v2"}})
	p.Reset()
	assert.Empty(t, readAll(t, p))

	writeAll(t, p, []entry{{op: 3, key: "k", aux: "a"}})
	assert.Equal(t, []entry{{op: 3, key: "k", aux: "a"}}, readAll(t, p))

	require.NoError(t, p.Truncate())
	info, err := os.Stat(RecordPath(dir, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
	kv, aux := p.Offsets()
	assert.Zero(t, kv)
	assert.Zero(t, aux)
}

func TestPair_CreateKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(RecordPath(dir, 0), []byte("old"), 0o644))
	p := NewPair(nil, dir, 0)
	require.NoError(t, p.Create())

	data, err := os.ReadFile(RecordPath(dir, 0))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	_, err = os.Stat(AuxPath(dir, 0))
	assert.NoError(t, err)
}

func TestPair_DetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	p := NewPair(nil, dir, 0)
	require.NoError(t, p.Create())
	writeAll(t, p, []entry{{op: 0, key: "abc", value: "def"}})

	// Truncate the file behind the pair's back.
	require.NoError(t, os.Truncate(RecordPath(dir, 0), 5))
	err := p.LoadRecords(func(Entry) error { return nil })
	assert.ErrorIs(t, err, ErrCorrupt)

	// A length field pointing past the region.
	var buf bytes.Buffer
	buf.WriteByte(0)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(1000))
	require.NoError(t, os.WriteFile(RecordPath(dir, 0), buf.Bytes(), 0o644))
	p.kvOffset = int64(buf.Len())
	err = p.LoadRecords(func(Entry) error { return nil })
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPair_CloseErrorKeepsOffsets(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	p := NewPair(ffs, dir, 2)
	require.NoError(t, p.Create())

	write := func(w *Writer) error {
		if err := w.WriteRecord(1, []byte("k"), []byte("v")); err != nil {
			return err
		}
		return w.WriteAux(nil)
	}

	ffs.AddRule("bucket2.aux", fs.Fault{FailAfterBytes: -1, FailOnClose: true})
	err := p.Append(write)
	require.ErrorIs(t, err, fs.ErrInjected)
	assert.Contains(t, err.Error(), "close")

	kv, aux := p.Offsets()
	assert.Zero(t, kv)
	assert.Zero(t, aux)

	// The retry writes over the same region.
	ffs.ClearRules()
	require.NoError(t, p.Append(write))
	kv, aux = p.Offsets()
	assert.Equal(t, int64(1+8+1+8+1), kv)
	assert.Equal(t, int64(8), aux)

	var n int
	require.NoError(t, p.LoadRecords(func(e Entry) error {
		n++
		assert.Equal(t, []byte("k"), e.Key)
		return nil
	}))
	assert.Equal(t, 1, n)
}

func TestPair_WriteErrorKeepsOffsets(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	p := NewPair(ffs, dir, 4)
	require.NoError(t, p.Create())
	writeAll(t, p, []entry{{op: 1, key: "a", value: "b"}})
	kv, aux := p.Offsets()

	ffs.AddRule("bucket4.kv", fs.Fault{FailAfterBytes: 0})
	err := p.Append(func(w *Writer) error {
		return w.WriteRecord(1, []byte("c"), []byte("d"))
	})
	require.ErrorIs(t, err, fs.ErrInjected)

	kv2, aux2 := p.Offsets()
	assert.Equal(t, kv, kv2)
	assert.Equal(t, aux, aux2)
}
