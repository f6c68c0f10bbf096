package drum

import (
	"errors"
	"fmt"

	"github.com/hupe1980/drum/internal/bucketfile"
)

var (
	// ErrDisposed is returned by every operation after Dispose.
	ErrDisposed = errors.New("drum: disposed")

	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = errors.New("drum: invalid configuration")

	// ErrCorrupt is returned when a bucket file does not parse or its record
	// and auxiliary files disagree.
	ErrCorrupt = bucketfile.ErrCorrupt
)

// Code classifies an Error.
type Code uint8

const (
	// CodeSetup: the store or a bucket file could not be opened or created.
	CodeSetup Code = iota + 1
	// CodeIO: reading, writing or closing a bucket file failed.
	CodeIO
	// CodeMerge: a required store read, upsert or delete failed during merge.
	CodeMerge
	// CodePersist: flushing the store after a merge failed.
	CodePersist
	// CodeCorrupt: a bucket file is malformed.
	CodeCorrupt
	// CodeDisposed: the structure was already disposed.
	CodeDisposed
	// CodeConfig: invalid configuration.
	CodeConfig
)

func (c Code) String() string {
	switch c {
	case CodeSetup:
		return "setup"
	case CodeIO:
		return "io"
	case CodeMerge:
		return "merge"
	case CodePersist:
		return "persist"
	case CodeCorrupt:
		return "corrupt"
	case CodeDisposed:
		return "disposed"
	case CodeConfig:
		return "config"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Error is the error kind returned by DRUM.
//
// The underlying error can be accessed via errors.Unwrap. Bucket is -1 when
// the failure is not tied to a bucket.
type Error struct {
	Op     string
	Code   Code
	Bucket int
	Err    error
}

func (e *Error) Error() string {
	msg := "drum: " + e.Op
	if e.Bucket >= 0 {
		msg += fmt.Sprintf(" bucket %d", e.Bucket)
	}
	msg += " (" + e.Code.String() + ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDisposed:
		return e.Code == CodeDisposed
	case ErrInvalidConfig:
		return e.Code == CodeConfig
	case ErrCorrupt:
		return e.Code == CodeCorrupt
	}
	return false
}

func newError(op string, code Code, bucket int, err error) *Error {
	return &Error{Op: op, Code: code, Bucket: bucket, Err: err}
}

func errDisposed(op string) error {
	return newError(op, CodeDisposed, -1, nil)
}

func errConfig(format string, args ...any) error {
	return newError("new", CodeConfig, -1, fmt.Errorf(format, args...))
}

// ioCode picks CodeCorrupt for parse failures and CodeIO otherwise.
func ioCode(err error) Code {
	if errors.Is(err, bucketfile.ErrCorrupt) {
		return CodeCorrupt
	}
	return CodeIO
}
