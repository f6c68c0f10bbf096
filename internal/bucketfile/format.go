package bucketfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// LenSize is the width of every length field.
const LenSize = 8

// ErrCorrupt is returned when a bucket file does not parse.
var ErrCorrupt = errors.New("bucketfile: corrupt bucket file")

// Entry is one record of a record file. Key and Value alias a read buffer
// and are only valid until the callback that received them returns.
type Entry struct {
	Op    byte
	Key   []byte
	Value []byte
}

// Writer appends records and auxiliary entries to a bucket's file pair.
type Writer struct {
	kv      *bufio.Writer
	aux     *bufio.Writer
	kvN     int64
	auxN    int64
	scratch [LenSize]byte
}

// WriteRecord appends [op][len(key)][key][len(value)][value].
func (w *Writer) WriteRecord(op byte, key, value []byte) error {
	if err := w.kv.WriteByte(op); err != nil {
		return err
	}
	if err := w.writeBlock(w.kv, key); err != nil {
		return err
	}
	if err := w.writeBlock(w.kv, value); err != nil {
		return err
	}
	w.kvN += 1 + 2*LenSize + int64(len(key)) + int64(len(value))
	return nil
}

// WriteAux appends [len(aux)][aux].
func (w *Writer) WriteAux(aux []byte) error {
	if err := w.writeBlock(w.aux, aux); err != nil {
		return err
	}
	w.auxN += LenSize + int64(len(aux))
	return nil
}

// Written returns the bytes appended to each file so far.
func (w *Writer) Written() (kv, aux int64) { return w.kvN, w.auxN }

func (w *Writer) writeBlock(bw *bufio.Writer, data []byte) error {
	binary.LittleEndian.PutUint64(w.scratch[:], uint64(len(data)))
	if _, err := bw.Write(w.scratch[:]); err != nil {
		return err
	}
	_, err := bw.Write(data)
	return err
}

// reader decodes entries from a bounded region of a bucket file.
type reader struct {
	r         *bufio.Reader
	remaining int64
	buf       []byte
	scratch   [LenSize]byte
}

func newReader(r io.Reader, size int64) *reader {
	return &reader{r: bufio.NewReader(r), remaining: size}
}

func (r *reader) done() bool { return r.remaining == 0 }

func (r *reader) readFull(p []byte) error {
	if int64(len(p)) > r.remaining {
		return fmt.Errorf("%w: entry overruns region by %d bytes", ErrCorrupt, int64(len(p))-r.remaining)
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		return err
	}
	r.remaining -= int64(len(p))
	return nil
}

func (r *reader) readLen() (int, error) {
	if err := r.readFull(r.scratch[:]); err != nil {
		return 0, err
	}
	n := binary.LittleEndian.Uint64(r.scratch[:])
	if n > uint64(r.remaining) || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: length %d exceeds remaining %d bytes", ErrCorrupt, n, r.remaining)
	}
	return int(n), nil
}

// readBlock reads one length-prefixed block into dst[off:].
func (r *reader) readBlock(off int) (int, error) {
	n, err := r.readLen()
	if err != nil {
		return 0, err
	}
	if need := off + n; cap(r.buf) < need {
		grown := make([]byte, need, 2*need)
		copy(grown, r.buf[:off])
		r.buf = grown
	}
	r.buf = r.buf[:off+n]
	if err := r.readFull(r.buf[off : off+n]); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *reader) readEntry() (Entry, error) {
	if err := r.readFull(r.scratch[:1]); err != nil {
		return Entry{}, err
	}
	op := r.scratch[0]
	r.buf = r.buf[:0]
	kn, err := r.readBlock(0)
	if err != nil {
		return Entry{}, err
	}
	vn, err := r.readBlock(kn)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Op: op, Key: r.buf[:kn:kn], Value: r.buf[kn : kn+vn : kn+vn]}, nil
}

func (r *reader) readAux() ([]byte, error) {
	r.buf = r.buf[:0]
	n, err := r.readBlock(0)
	if err != nil {
		return nil, err
	}
	return r.buf[:n:n], nil
}
