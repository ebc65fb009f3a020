package store

import (
	"github.com/cenkalti/backoff/v4"

	"github.com/canopy-network/canopy-forestry/lib"
	"github.com/canopy-network/canopy-forestry/mpf"
)

// Reload re-opens a fresh, consistent mpf.Trie handle against this store. The transactional
// mutation model leaves an in-memory trie unusable after a failed Commit: the caller's only
// recourse is to reload from the last good, persisted root. The first read right after such a
// failure is the one most likely to race a concurrent writer settling its own transaction, so the
// reload itself is retried with a bounded exponential backoff rather than failing on the first
// transient error.
func (s *Store) Reload() (*mpf.Trie, lib.ErrorI) {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	var trie *mpf.Trie
	var loadErr lib.ErrorI
	_ = backoff.Retry(func() error {
		trie, loadErr = mpf.Load(s, s.log)
		if loadErr != nil {
			return loadErr
		}
		return nil
	}, policy)
	return trie, loadErr
}
