package memstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/btree"
	"github.com/hupe1980/drum/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the snapshot payload codec.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionZSTD compresses with zstd (better ratio).
	CompressionZSTD Compression = 1
	// CompressionLZ4 compresses with an lz4 frame (faster).
	CompressionLZ4 Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

const (
	snapshotMagic   = "DRUMSNAP"
	snapshotVersion = 1
	headerSize      = len(snapshotMagic) + 2
	footerSize      = 4
)

// ErrCorruptSnapshot is returned when a snapshot fails validation.
var ErrCorruptSnapshot = errors.New("memstore: corrupt snapshot")

func encodeSnapshot(tree *btree.BTreeG[item], c Compression) ([]byte, error) {
	var payload bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	put := func(b []byte) {
		n := binary.PutUvarint(tmp[:], uint64(len(b)))
		payload.Write(tmp[:n])
		payload.Write(b)
	}

	n := binary.PutUvarint(tmp[:], uint64(tree.Len()))
	payload.Write(tmp[:n])
	tree.Ascend(func(it item) bool {
		put(it.key)
		put(it.value)
		return true
	})

	body, err := compress(payload.Bytes(), c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(body)+footerSize)
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion, byte(c))
	out = append(out, body...)
	out = binary.LittleEndian.AppendUint32(out, hash.CRC32C(out))
	return out, nil
}

func decodeSnapshot(data []byte, tree *btree.BTreeG[item]) error {
	if len(data) < headerSize+footerSize || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return fmt.Errorf("%w: bad header", ErrCorruptSnapshot)
	}
	sumAt := len(data) - footerSize
	if hash.CRC32C(data[:sumAt]) != binary.LittleEndian.Uint32(data[sumAt:]) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	if v := data[len(snapshotMagic)]; v != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, v)
	}

	payload, err := decompress(data[headerSize:sumAt], Compression(data[len(snapshotMagic)+1]))
	if err != nil {
		return err
	}

	r := bytes.NewReader(payload)
	next := func() ([]byte, error) {
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		if n > uint64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		b := make([]byte, n)
		_, err = io.ReadFull(r, b)
		return b, err
	}

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	for i := uint64(0); i < count; i++ {
		k, err := next()
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrCorruptSnapshot, i, err)
		}
		v, err := next()
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrCorruptSnapshot, i, err)
		}
		tree.ReplaceOrInsert(item{key: k, value: v})
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, r.Len())
	}
	return nil
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("memstore: unknown compression %s", c)
	}
}

func decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptSnapshot, err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptSnapshot, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptSnapshot, uint8(c))
	}
}
