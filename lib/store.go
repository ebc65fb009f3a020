package lib

/* This file contains the persistence interfaces shared between the trie engine and its backing store */

// StoreI defines the interface the prover-side trie assumes of its backing key-value store.
// It intentionally stops at get/put/delete/batch/iterate: disk format, compaction, and
// versioning policy are the backing store's business, not the trie's.
type StoreI interface {
	RWStoreI                           // reading and writing
	NewBatch() BatchI                  // open a discardable, atomic batch of writes
	Close() ErrorI                     // gracefully stop the database
}

// RWStoreI defines the Read/Write interface for basic db CRUD operations
type RWStoreI interface {
	RStoreI
	WStoreI
}

// WStoreI defines an interface for basic write operations
type WStoreI interface {
	Set(key, value []byte) ErrorI // set value bytes referenced by key bytes
	Delete(key []byte) ErrorI     // remove the entry referenced by key bytes
}

// RStoreI defines an interface for basic read operations
type RStoreI interface {
	Get(key []byte) ([]byte, ErrorI)               // access value bytes using key bytes
	Iterator(prefix []byte) (IteratorI, ErrorI)    // iterate through the data one KV pair at a time in lexicographical order
	RevIterator(prefix []byte) (IteratorI, ErrorI) // iterate through the data one KV pair at a time in reverse lexicographical order
}

// BatchI defines a transactional group of writes that either all land or none do.
// mpf.Trie.Commit opens exactly one per call; Trie.Insert and Trie.Delete change only the
// in-memory trie and write nothing to the store until Commit.
type BatchI interface {
	RWStoreI
	NewBatch() BatchI // open a nested batch over this batch
	Commit() ErrorI   // flush every queued operation atomically
	Discard()         // abandon every queued operation
}

// IteratorI defines an interface for iterating over key-value pairs in a data store
type IteratorI interface {
	Valid() bool           // if the item the iterator is pointing at is valid
	Next()                 // move to next item
	Key() (key []byte)     // retrieve key
	Value() (value []byte) // retrieve value
	Close()                // close the iterator when done, ensuring proper resource management
}
