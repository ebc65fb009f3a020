package store

import (
	"bytes"
	"sort"

	"github.com/canopy-network/canopy-forestry/lib"
	"github.com/dgraph-io/badger/v4"
)

// Op represents the kind of write a batch entry holds
type Op int64

const (
	Delete Op = iota
	Set
)

// CacheObject is one pending write held by a batch before it is flushed to the parent store
type CacheObject struct {
	key       []byte
	value     []byte
	operation Op
}

// batch buffers a group of writes in memory and flushes them to the parent Store atomically on
// Commit(), or throws them away on Discard(). mpf.Trie.Commit opens one per call; Trie.Insert and
// Trie.Delete change only the in-memory trie and open no batch. After a failed Commit the trie is
// reloaded from the parent, which never observed the discarded writes.
type batch struct {
	unsortedCache map[string]CacheObject // used for maintaining operations
	sortedCache   [][]byte               // used for iterating (slice of keys to unsorted cache)
	parent        *Store                 // the store this batch is staged against
}

var _ lib.BatchI = &batch{}

// newBatch() opens a new in-memory batch staged against the parent store
func newBatch(parent *Store) *batch {
	return &batch{
		unsortedCache: make(map[string]CacheObject),
		sortedCache:   make([][]byte, 0),
		parent:        parent,
	}
}

// Get() reads from the batch's pending writes, falling back to the parent store
func (b *batch) Get(key []byte) ([]byte, lib.ErrorI) {
	if co, ok := b.unsortedCache[string(key)]; ok {
		if co.operation == Delete {
			return nil, nil
		}
		return co.value, nil
	}
	return b.parent.Get(key)
}

// Set() stages a write, to be flushed on Commit(). The reserved root key is writable through
// this same path: the trie package is the only caller expected to touch it, by convention rather
// than enforcement, matching how the Store itself treats it (store.Store.setRoot is just Set
// routed to the same key).
func (b *batch) Set(key, value []byte) lib.ErrorI {
	b.stage(key, value, Set)
	return nil
}

// Delete() stages a delete, to be flushed on Commit()
func (b *batch) Delete(key []byte) lib.ErrorI {
	if string(key) == reservedRootKey {
		return ErrReserveKeyWrite(reservedRootKey)
	}
	b.stage(key, nil, Delete)
	return nil
}

func (b *batch) stage(key, value []byte, op Op) {
	_, found := b.unsortedCache[string(key)]
	b.unsortedCache[string(key)] = CacheObject{key: key, value: value, operation: op}
	if !found {
		// any write (including delete) must override the parent value
		b.addToSortedCache(key)
	}
}

func (b *batch) addToSortedCache(key []byte) {
	b.sortedCache = append(b.sortedCache, key)
	sort.Slice(b.sortedCache, func(x, y int) bool {
		return bytes.Compare(b.sortedCache[x], b.sortedCache[y]) < 0
	})
}

// Iterator() merges the batch's pending writes with the parent store's committed data
func (b *batch) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := b.parent.Iterator(prefix)
	if err != nil {
		return nil, err
	}
	return newCacheMergeIterator(parent, b.sortedCache, b.unsortedCache, false), nil
}

// RevIterator() merges the batch's pending writes with the parent store's committed data, in reverse
func (b *batch) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	parent, err := b.parent.RevIterator(prefix)
	if err != nil {
		return nil, err
	}
	return newCacheMergeIterator(parent, b.sortedCache, b.unsortedCache, true), nil
}

// NewBatch() stacks a nested batch over this one; its writes land in this batch when it commits.
// Store.NewBatch does not track open batches, so a second top-level batch on the same Store is
// not refused.
func (b *batch) NewBatch() lib.BatchI {
	return &nestedBatch{parent: b, batch: newBatch(b.parent)}
}

// Commit() flushes every staged operation to the parent store in a single database transaction
func (b *batch) Commit() lib.ErrorI {
	if e := b.parent.db.Update(func(txn *badger.Txn) error {
		for _, co := range b.unsortedCache {
			switch co.operation {
			case Set:
				if err := txn.Set(co.key, co.value); err != nil {
					return err
				}
			case Delete:
				if err := txn.Delete(co.key); err != nil {
					return err
				}
			}
		}
		return nil
	}); e != nil {
		return ErrCommitDB(e)
	}
	b.Discard()
	return nil
}

// Discard() abandons every staged operation without touching the parent store
func (b *batch) Discard() {
	b.unsortedCache = make(map[string]CacheObject)
	b.sortedCache = make([][]byte, 0)
}

// nestedBatch wraps a batch-over-a-batch so NewBatch() composes without breaking the BatchI contract
type nestedBatch struct {
	parent *batch
	batch  *batch
}

var _ lib.BatchI = &nestedBatch{}

func (n *nestedBatch) Get(key []byte) ([]byte, lib.ErrorI) {
	if co, ok := n.batch.unsortedCache[string(key)]; ok {
		if co.operation == Delete {
			return nil, nil
		}
		return co.value, nil
	}
	return n.parent.Get(key)
}
func (n *nestedBatch) Set(key, value []byte) lib.ErrorI { return n.batch.Set(key, value) }
func (n *nestedBatch) Delete(key []byte) lib.ErrorI     { return n.batch.Delete(key) }
func (n *nestedBatch) Iterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return n.batch.parent.Iterator(prefix)
}
func (n *nestedBatch) RevIterator(prefix []byte) (lib.IteratorI, lib.ErrorI) {
	return n.batch.parent.RevIterator(prefix)
}
func (n *nestedBatch) Commit() lib.ErrorI {
	for _, co := range n.batch.unsortedCache {
		switch co.operation {
		case Set:
			if err := n.parent.Set(co.key, co.value); err != nil {
				return err
			}
		case Delete:
			if err := n.parent.Delete(co.key); err != nil {
				return err
			}
		}
	}
	n.batch.Discard()
	return nil
}
func (n *nestedBatch) Discard() { n.batch.Discard() }

// NewBatch() stacks a further nested batch over this one
func (n *nestedBatch) NewBatch() lib.BatchI {
	return n.batch.NewBatch()
}

// cacheMergeIterator merges an in-memory write set with an underlying committed iterator,
// preferring the in-memory value whenever both define the same key
type cacheMergeIterator struct {
	parent        lib.IteratorI
	sortedCache   [][]byte
	unsortedCache map[string]CacheObject
	cacheLen      int
	cacheIndex    int
	reverse       bool
}

func newCacheMergeIterator(parent lib.IteratorI, sortedCache [][]byte, unsortedCache map[string]CacheObject, reverse bool) lib.IteratorI {
	l := len(sortedCache)
	cacheIndex := 0
	if reverse {
		cacheIndex = l - 1
	}
	sc := make([][]byte, len(sortedCache))
	uc := make(map[string]CacheObject, len(unsortedCache))
	copy(sc, sortedCache)
	for k, v := range unsortedCache {
		uc[k] = v
	}
	m := &cacheMergeIterator{
		parent:        parent,
		sortedCache:   sc,
		unsortedCache: uc,
		cacheLen:      l,
		cacheIndex:    cacheIndex,
		reverse:       reverse,
	}
	m.skipDeleted()
	return m
}

func (c *cacheMergeIterator) Next() {
	switch c.state() {
	case stateCache:
		// the cache shadows the parent on equal keys, so step the parent past the key the cache
		// just surfaced or it would re-surface as a duplicate
		if c.parent.Valid() && bytes.Equal(c.parent.Key(), c.sortedCache[c.cacheIndex]) {
			c.parent.Next()
		}
		c.cacheNext()
	case stateParent:
		c.parent.Next()
	}
	c.skipDeleted()
}

func (c *cacheMergeIterator) Key() []byte {
	switch c.state() {
	case stateCache:
		return c.sortedCache[c.cacheIndex]
	case stateParent:
		return c.parent.Key()
	default:
		return nil
	}
}

func (c *cacheMergeIterator) Value() []byte {
	switch c.state() {
	case stateCache:
		return c.unsortedCache[string(c.sortedCache[c.cacheIndex])].value
	case stateParent:
		return c.parent.Value()
	default:
		return nil
	}
}

func (c *cacheMergeIterator) Valid() bool {
	return c.parent.Valid() || c.cacheValid()
}

func (c *cacheMergeIterator) Close() { c.parent.Close() }

// state reports which of parent/cache the cursor should currently read from
type mergeState int

const (
	stateNeither mergeState = iota
	stateCache
	stateParent
)

func (c *cacheMergeIterator) state() mergeState {
	pValid, cValid := c.parent.Valid(), c.cacheValid()
	switch {
	case !pValid && !cValid:
		return stateNeither
	case !pValid:
		return stateCache
	case !cValid:
		return stateParent
	}
	// both valid: prefer the cache on a tie so in-flight writes shadow committed data
	cmp := c.compare(c.parent.Key(), c.sortedCache[c.cacheIndex])
	if cmp >= 0 {
		return stateCache
	}
	return stateParent
}

func (c *cacheMergeIterator) compare(a, b []byte) int {
	if c.reverse {
		return bytes.Compare(a, b) * -1
	}
	return bytes.Compare(a, b)
}

func (c *cacheMergeIterator) cacheValid() bool {
	if !c.reverse {
		return c.cacheIndex < c.cacheLen
	}
	return c.cacheIndex > -1
}

func (c *cacheMergeIterator) cacheNext() {
	if !c.reverse {
		c.cacheIndex++
	} else {
		c.cacheIndex--
	}
}

// skipDeleted advances past any cache entry recording a delete so it never surfaces as a value,
// stepping the parent past the same key when the delete shadows a committed entry
func (c *cacheMergeIterator) skipDeleted() {
	for c.cacheValid() && c.state() == stateCache &&
		c.unsortedCache[string(c.sortedCache[c.cacheIndex])].operation == Delete {
		if c.parent.Valid() && bytes.Equal(c.parent.Key(), c.sortedCache[c.cacheIndex]) {
			c.parent.Next()
		}
		c.cacheNext()
	}
}
