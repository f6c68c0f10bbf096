package drum

import "fmt"

// OpCode identifies a buffered operation. The values are the on-disk bytes.
type OpCode uint8

const (
	OpCheck       OpCode = 0
	OpUpdate      OpCode = 1
	OpCheckUpdate OpCode = 2
	OpDelete      OpCode = 3
	OpCheckDelete OpCode = 4
	OpAppend      OpCode = 5
	OpExpel       OpCode = 6
)

func (op OpCode) String() string {
	switch op {
	case OpCheck:
		return "check"
	case OpUpdate:
		return "update"
	case OpCheckUpdate:
		return "check_update"
	case OpDelete:
		return "delete"
	case OpCheckDelete:
		return "check_delete"
	case OpAppend:
		return "append"
	case OpExpel:
		return "expel"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Valid reports whether op is a known operation.
func (op OpCode) Valid() bool { return op <= OpExpel }

func (op OpCode) checks() bool {
	return op == OpCheck || op == OpCheckUpdate || op == OpCheckDelete
}

func (op OpCode) grouped() bool { return op == OpAppend || op == OpExpel }

// hasValue reports whether op carries a value into the bucket file.
func (op OpCode) hasValue() bool {
	switch op {
	case OpUpdate, OpCheckUpdate, OpAppend, OpExpel:
		return true
	}
	return false
}

// Result is the outcome of resolving a record against the store.
// The zero value means unresolved.
type Result uint8

const (
	// Unique: the key was absent, or for Append/Expel the value changed.
	Unique Result = iota + 1
	// Duplicate: the key was present, or for Append/Expel nothing changed.
	Duplicate
)

func (r Result) String() string {
	switch r {
	case Unique:
		return "unique"
	case Duplicate:
		return "duplicate"
	default:
		return "unresolved"
	}
}

// record is one pending operation during merge.
type record[K, V any] struct {
	key     K
	value   V
	op      OpCode
	arrival int
	result  Result
	// found is set when a check saw the key in the store.
	found bool
}
