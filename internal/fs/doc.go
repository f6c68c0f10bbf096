// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/seek/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, rename, truncate, ...)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects errors per file name pattern
//
// Bucket files are always accessed through a FileSystem so that feed and
// merge error paths can be exercised in tests:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("bucket3.kv", fs.Fault{FailOnClose: true})
//
// Like the os package, nothing here takes a context.Context: local file
// operations are not interruptible at the syscall level.
package fs
