// Package drum implements DRUM (Disk Repository with Update Management), a
// structure for set-style operations on key spaces far larger than memory.
//
// Operations are buffered in RAM, partitioned into disk-resident buckets by a
// fingerprint of their key, and periodically resolved bucket by bucket
// against an ordered key/value store through a sort-merge pass. Results are
// delivered through a Dispatcher, one callback per operation, in the order
// the operations were issued. It is the classic building block behind
// URL-seen sets and link-graph updates in large crawlers.
//
// # Quick Start
//
//	d, _ := drum.New[string, string, string]("./seen", drum.Config[string, string, string]{
//	    Dispatcher: drum.DispatcherFuncs[string, string, string]{
//	        OnUniqueKeyCheck: func(url, _ string) { fmt.Println("new:", url) },
//	    },
//	})
//	defer d.Close()
//
//	d.Check("http://example.com/")
//	d.Update("http://example.com/", "<html>")
//	d.Synchronize() // drain: every pending operation is dispatched
//
// # Operations
//
// Check and its variants report Unique when the key is absent from the store
// and Duplicate when it is present. Update upserts, Delete removes, Append
// and Expel combine values through a Merger:
//
//	Check        → UniqueKeyCheck / DuplicateKeyCheck (with the stored value)
//	Update       → Update
//	CheckUpdate  → UniqueKeyUpdate / DuplicateKeyUpdate
//	Delete       → Delete
//	CheckDelete  → UniqueKeyDelete / DuplicateKeyDelete
//	Append       → UniqueKeyAppend / DuplicateKeyAppend
//	Expel        → UniqueKeyExpel / DuplicateKeyExpel
//
// Every operation has a WithAux variant that carries an opaque payload back
// to the callback. Nothing is resolved until a merge runs: either because a
// bucket file crossed the configured byte size, or because Synchronize was
// called.
//
// # Storage
//
// Each bucket owns two append-only files, <name>/bucket<N>.kv and
// <name>/bucket<N>.aux. The backing store defaults to bbolt at
// <name>/store; any store.Store can be plugged in through Config, for
// example an in-memory B-tree from store/memstore with snapshots on S3.
//
// # Concurrency
//
// The operation API is not safe for concurrent use. Access to the backing
// store is serialized, so GetValue may be called from other goroutines while
// one goroutine drives operations and merges.
package drum
