package store

import (
	"bytes"
	"path/filepath"

	"github.com/canopy-network/canopy-forestry/lib"
	"github.com/dgraph-io/badger/v4"
)

/*
The Store is a thin, content-addressed key-value layer backing the trie: every node is written
under its own hash as key, plus one reserved key ("__root__") holding the current root hash.

This is deliberately small. Disk format, compaction, and versioning policy belong to the backing
engine, not to the trie - so this package does not attempt to be a general versioned state store.
It exists to give the trie something real to talk to in tests and in a standalone binary.
*/

var _ lib.StoreI = &Store{}

// Store wraps a single Badger instance
type Store struct {
	db     *badger.DB
	log    lib.LoggerI
	config lib.StoreConfig
}

// New() opens (or creates) the backing database under the configured data directory
func New(config lib.StoreConfig, log lib.LoggerI) (*Store, lib.ErrorI) {
	opts := badger.DefaultOptions(filepath.Join(config.DataDirPath, config.DBName)).WithLogger(nil)
	if config.InMemory {
		// badger rejects a data directory in disk-less mode
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	if config.CacheSizeKB > 0 {
		opts = opts.WithBlockCacheSize(int64(config.CacheSizeKB) * 1024)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrOpenDB(err)
	}
	return &Store{db: db, log: log, config: config}, nil
}

// Get() retrieves the value bytes referenced by key bytes
func (s *Store) Get(key []byte) (value []byte, err lib.ErrorI) {
	e := s.db.View(func(txn *badger.Txn) error {
		item, getErr := txn.Get(key)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})
	if e != nil {
		return nil, ErrStoreGet(e)
	}
	return
}

// Set() writes value bytes referenced by key bytes
func (s *Store) Set(key, value []byte) lib.ErrorI {
	if string(key) == reservedRootKey {
		return s.setRoot(value)
	}
	if e := s.db.Update(func(txn *badger.Txn) error { return txn.Set(key, value) }); e != nil {
		return ErrStoreSet(e)
	}
	return nil
}

// setRoot() is the only write path allowed to touch the reserved root key
func (s *Store) setRoot(value []byte) lib.ErrorI {
	if e := s.db.Update(func(txn *badger.Txn) error { return txn.Set([]byte(reservedRootKey), value) }); e != nil {
		return ErrStoreSet(e)
	}
	return nil
}

// Delete() removes the entry referenced by key bytes
func (s *Store) Delete(key []byte) lib.ErrorI {
	if string(key) == reservedRootKey {
		return ErrReserveKeyWrite(reservedRootKey)
	}
	if e := s.db.Update(func(txn *badger.Txn) error { return txn.Delete(key) }); e != nil {
		return ErrStoreDelete(e)
	}
	return nil
}

// Iterator() iterates through the data one KV pair at a time in lexicographical order
func (s *Store) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.newIterator(prefix, false)
}

// RevIterator() iterates through the data one KV pair at a time in reverse lexicographical order
func (s *Store) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return s.newIterator(prefix, true)
}

func (s *Store) newIterator(prefix []byte, reverse bool) (lib.IteratorI, lib.ErrorI) {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	bIt := &badgerIterator{txn: txn, it: it, prefix: prefix, reverse: reverse}
	bIt.rewind()
	return bIt, nil
}

// NewBatch() opens a discardable, atomic batch of writes over this store
func (s *Store) NewBatch() lib.BatchI {
	return newBatch(s)
}

// Close() gracefully stops the database
func (s *Store) Close() lib.ErrorI {
	if err := s.db.Close(); err != nil {
		return ErrCloseDB(err)
	}
	return nil
}

// Root() retrieves the raw value stored under the reserved root key, nil when unset
func (s *Store) Root() (root []byte, err lib.ErrorI) {
	root, err = s.Get([]byte(reservedRootKey))
	if err != nil {
		return nil, err
	}
	return
}

// badgerIterator adapts a badger.Iterator to lib.IteratorI
type badgerIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	prefix  []byte
	reverse bool
}

func (b *badgerIterator) rewind() {
	if !b.reverse {
		b.it.Seek(b.prefix)
		return
	}
	// reverse iteration starts from the key immediately after the prefix range
	upper := PrefixEndBytes(b.prefix)
	if upper == nil {
		b.it.Rewind()
		return
	}
	b.it.Seek(upper)
	// skip past any key that is >= upper (badger's reverse seek lands on the first key <= target)
	for b.it.Valid() && bytes.Compare(b.it.Item().Key(), upper) >= 0 {
		b.it.Next()
	}
}

func (b *badgerIterator) Valid() bool {
	return b.it.ValidForPrefix(b.prefix)
}

func (b *badgerIterator) Next() {
	b.it.Next()
}

func (b *badgerIterator) Key() []byte {
	if !b.it.Valid() {
		return nil
	}
	return append([]byte{}, b.it.Item().Key()...)
}

func (b *badgerIterator) Value() []byte {
	if !b.it.Valid() {
		return nil
	}
	var value []byte
	_ = b.it.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	return value
}

func (b *badgerIterator) Close() {
	b.it.Close()
	b.txn.Discard()
}
