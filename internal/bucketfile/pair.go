package bucketfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/drum/internal/fs"
)

const writeBufferSize = 64 << 10

// RecordPath returns the record file of bucket in dir.
func RecordPath(dir string, bucket int) string {
	return filepath.Join(dir, fmt.Sprintf("bucket%d.kv", bucket))
}

// AuxPath returns the auxiliary file of bucket in dir.
func AuxPath(dir string, bucket int) string {
	return filepath.Join(dir, fmt.Sprintf("bucket%d.aux", bucket))
}

// Pair is the record/auxiliary file pair of one bucket.
// It is not safe for concurrent use.
type Pair struct {
	fs        fs.FileSystem
	kvPath    string
	auxPath   string
	kvOffset  int64
	auxOffset int64
}

// NewPair returns the file pair of bucket in dir. Nothing is touched on disk.
func NewPair(fsys fs.FileSystem, dir string, bucket int) *Pair {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Pair{
		fs:      fsys,
		kvPath:  RecordPath(dir, bucket),
		auxPath: AuxPath(dir, bucket),
	}
}

// Create creates both files empty if they do not exist yet.
func (p *Pair) Create() error {
	if err := fs.Touch(p.fs, p.kvPath); err != nil {
		return err
	}
	return fs.Touch(p.fs, p.auxPath)
}

// Paths returns the record and auxiliary file names.
func (p *Pair) Paths() (kv, aux string) { return p.kvPath, p.auxPath }

// Offsets returns the current write offsets.
func (p *Pair) Offsets() (kv, aux int64) { return p.kvOffset, p.auxOffset }

// Append opens both files at their write offsets, lets fn write through w,
// flushes, closes, and advances the offsets. Both files are closed on every
// path. Offsets only advance once writes and closes all succeeded, so a
// failed append is retried over the same region.
func (p *Pair) Append(fn func(w *Writer) error) (err error) {
	var kvN, auxN int64
	// Registered first so it runs after both closes.
	defer func() {
		if err == nil {
			p.kvOffset += kvN
			p.auxOffset += auxN
		}
	}()

	kvf, err := p.openAt(p.kvPath, p.kvOffset)
	if err != nil {
		return err
	}
	defer closeInto(kvf, p.kvPath, &err)

	auxf, err := p.openAt(p.auxPath, p.auxOffset)
	if err != nil {
		return err
	}
	defer closeInto(auxf, p.auxPath, &err)

	w := &Writer{
		kv:  bufio.NewWriterSize(kvf, writeBufferSize),
		aux: bufio.NewWriterSize(auxf, writeBufferSize),
	}
	if err := fn(w); err != nil {
		return err
	}
	if err := w.kv.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", p.kvPath, err)
	}
	if err := w.aux.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", p.auxPath, err)
	}
	kvN, auxN = w.Written()
	return nil
}

// LoadRecords reads every record up to the record write offset, in file
// (arrival) order.
func (p *Pair) LoadRecords(fn func(Entry) error) error {
	return p.scan(p.kvPath, p.kvOffset, func(r *reader) error {
		e, err := r.readEntry()
		if err != nil {
			return err
		}
		return fn(e)
	})
}

// LoadAux reads every auxiliary entry up to the aux write offset, in file
// (arrival) order. The slice passed to fn is only valid during the call.
func (p *Pair) LoadAux(fn func([]byte) error) error {
	return p.scan(p.auxPath, p.auxOffset, func(r *reader) error {
		aux, err := r.readAux()
		if err != nil {
			return err
		}
		return fn(aux)
	})
}

// Reset rewinds both write offsets. The next Append overwrites from the start.
func (p *Pair) Reset() {
	p.kvOffset = 0
	p.auxOffset = 0
}

// Truncate empties both files and rewinds the offsets.
func (p *Pair) Truncate() error {
	p.Reset()
	if err := p.fs.Truncate(p.kvPath, 0); err != nil {
		return err
	}
	return p.fs.Truncate(p.auxPath, 0)
}

func (p *Pair) openAt(path string, offset int64) (fs.File, error) {
	f, err := p.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("seek %s to %d: %w", path, offset, err)
	}
	return f, nil
}

func (p *Pair) scan(path string, size int64, next func(*reader) error) (err error) {
	if size == 0 {
		return nil
	}
	f, err := p.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer closeInto(f, path, &err)
	fs.AdviseSequential(f)
	defer fs.AdviseDontNeed(f)

	r := newReader(io.NewSectionReader(f, 0, size), size)
	for !r.done() {
		if err := next(r); err != nil {
			if errors.Is(err, ErrCorrupt) {
				return fmt.Errorf("%s at byte %d: %w", path, size-r.remaining, err)
			}
			return err
		}
	}
	return nil
}

func closeInto(f fs.File, path string, err *error) {
	if cerr := f.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("close %s: %w", path, cerr))
	}
}
