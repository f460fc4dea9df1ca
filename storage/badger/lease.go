package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// LeaseStore implements storage.LeaseStore on BadgerDB.
//
// All mutations run through managed transactions so that concurrent workers
// racing for the same key resolve through conflict retries rather than both
// winning.
type LeaseStore struct {
	backend *Backend
	now     func() time.Time
}

var _ storage.LeaseStore = (*LeaseStore)(nil)

// NewLeaseStore creates a new LeaseStore.
func NewLeaseStore(backend *Backend) storage.LeaseStore {
	return &LeaseStore{
		backend: backend,
		now:     time.Now,
	}
}

// TryAcquire atomically sets key -> owner with the given TTL if the key is
// absent or its current lease has expired.
func (s *LeaseStore) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if err := core.ValidateLease(key, owner); err != nil {
		return false, err
	}

	acquired := false
	err := s.backend.Update(func(tx *badger.Txn) error {
		acquired = false
		current, err := readLease(tx, makeLeaseKey(key))
		if err != nil {
			return err
		}
		if current != nil && !current.Expired(s.now().UTC()) {
			return nil
		}

		lease := &core.Lease{
			Key:       key,
			Owner:     owner,
			ExpiresAt: s.now().UTC().Add(ttl),
		}
		if err := tx.Set(makeLeaseKey(key), storage.MarshalLease(lease)); err != nil {
			return err
		}
		acquired = true
		return nil
	})
	return acquired, err
}

// Renew extends the expiry of the lease only if it is still held by owner.
func (s *LeaseStore) Renew(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if err := core.ValidateLease(key, owner); err != nil {
		return false, err
	}

	renewed := false
	err := s.backend.Update(func(tx *badger.Txn) error {
		renewed = false
		current, err := readLease(tx, makeLeaseKey(key))
		if err != nil {
			return err
		}
		if current == nil || current.Owner != owner || current.Expired(s.now().UTC()) {
			return nil
		}

		current.ExpiresAt = s.now().UTC().Add(ttl)
		if err := tx.Set(makeLeaseKey(key), storage.MarshalLease(current)); err != nil {
			return err
		}
		renewed = true
		return nil
	})
	return renewed, err
}

// Release deletes the lease only if it is held by owner (compare-and-delete).
func (s *LeaseStore) Release(ctx context.Context, key, owner string) (bool, error) {
	if err := core.ValidateLease(key, owner); err != nil {
		return false, err
	}

	released := false
	err := s.backend.Update(func(tx *badger.Txn) error {
		released = false
		current, err := readLease(tx, makeLeaseKey(key))
		if err != nil {
			return err
		}
		if current == nil || current.Owner != owner {
			return nil
		}

		if err := tx.Delete(makeLeaseKey(key)); err != nil {
			return err
		}
		released = true
		return nil
	})
	return released, err
}

// Get returns the current lease for key, expired or not.
func (s *LeaseStore) Get(ctx context.Context, key string) (*core.Lease, error) {
	var result *core.Lease
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readLease(tx, makeLeaseKey(key))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// readLease reads a lease record from the transaction.
func readLease(tx *badger.Txn, key []byte) (*core.Lease, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var lease *core.Lease
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		lease, unmarshalErr = storage.UnmarshalLease(val)
		return unmarshalErr
	})
	return lease, err
}
