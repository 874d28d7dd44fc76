// Package bolt provides a bbolt-backed Store for durable single-node
// deployments.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/xraph/accessledger"
	"github.com/xraph/accessledger/key"
	"github.com/xraph/accessledger/store"
	"github.com/xraph/accessledger/tier"
	"github.com/xraph/accessledger/types"
)

var (
	bucketTiers      = []byte("tiers")
	bucketKeys       = []byte("keys")
	bucketKeyOrder   = []byte("key_order")
	bucketOwnerIndex = []byte("owner_index")
	bucketMeta       = []byte("meta")
)

var (
	metaRealizedProfit = []byte("realized_profit")
	metaNumTiers       = []byte("num_tiers")
	metaNumKeys        = []byte("num_keys")
)

// Store persists all ledger state in a single bbolt database.
type Store struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Open opens or creates the bbolt database at dbPath. The parent directory is
// created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("bolt: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTiers, bucketKeys, bucketKeyOrder, bucketOwnerIndex, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// u64Key encodes an integer as an 8-byte big-endian key for sorted storage.
func u64Key(v uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, v)
	return k
}

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// counter reads an 8-byte big-endian counter from the meta bucket, zero if
// absent.
func counter(tx *bbolt.Tx, name []byte) uint64 {
	data := tx.Bucket(bucketMeta).Get(name)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// ownerIndexKey is owner bytes followed by the 32-byte hash. Scans filter on
// remainder length == KeyHashSize, so one owner being a prefix of another
// cannot alias.
func ownerIndexKey(owner types.Address, hash types.KeyHash) []byte {
	k := make([]byte, 0, len(owner)+types.KeyHashSize)
	k = append(k, owner...)
	k = append(k, hash[:]...)
	return k
}

// Tier registry implementation

func (s *Store) AppendTier(_ context.Context, t *tier.Tier) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		id = counter(tx, metaNumTiers)

		c := t.Clone()
		c.ID = id
		data, err := encodeGob(c)
		if err != nil {
			return fmt.Errorf("encode tier: %w", err)
		}
		if err := tx.Bucket(bucketTiers).Put(u64Key(id), data); err != nil {
			return fmt.Errorf("put tier: %w", err)
		}
		return tx.Bucket(bucketMeta).Put(metaNumTiers, u64Key(id+1))
	})
	if err != nil {
		return 0, fmt.Errorf("bolt: append tier: %w", err)
	}
	return id, nil
}

func (s *Store) GetTier(_ context.Context, tierID uint64) (*tier.Tier, error) {
	var t tier.Tier
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTiers).Get(u64Key(tierID))
		if data == nil {
			return accessledger.ErrTierNotFound
		}
		if err := decodeGob(data, &t); err != nil {
			return fmt.Errorf("bolt: decode tier: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SetTierActive(_ context.Context, tierID uint64, active bool) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTiers)
		data := b.Get(u64Key(tierID))
		if data == nil {
			return accessledger.ErrTierNotFound
		}

		var t tier.Tier
		if err := decodeGob(data, &t); err != nil {
			return fmt.Errorf("bolt: decode tier: %w", err)
		}
		t.Active = active
		t.Touch()

		updated, err := encodeGob(&t)
		if err != nil {
			return fmt.Errorf("bolt: encode tier: %w", err)
		}
		return b.Put(u64Key(tierID), updated)
	})
}

func (s *Store) NumTiers(_ context.Context) (uint64, error) {
	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = counter(tx, metaNumTiers)
		return nil
	})
	return n, err
}

// Key ledger implementation

func (s *Store) CreateKey(_ context.Context, k *key.Key) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		kb := tx.Bucket(bucketKeys)
		if kb.Get(k.Hash.Bytes()) != nil {
			return accessledger.ErrKeyAlreadyExists
		}

		data, err := encodeGob(k)
		if err != nil {
			return fmt.Errorf("bolt: encode key: %w", err)
		}
		if err := kb.Put(k.Hash.Bytes(), data); err != nil {
			return fmt.Errorf("bolt: put key: %w", err)
		}

		index := counter(tx, metaNumKeys)
		if err := tx.Bucket(bucketKeyOrder).Put(u64Key(index), k.Hash.Bytes()); err != nil {
			return fmt.Errorf("bolt: put key order: %w", err)
		}
		if err := tx.Bucket(bucketOwnerIndex).Put(ownerIndexKey(k.Owner, k.Hash), []byte{}); err != nil {
			return fmt.Errorf("bolt: put owner index: %w", err)
		}
		return tx.Bucket(bucketMeta).Put(metaNumKeys, u64Key(index+1))
	})
}

func (s *Store) GetKey(_ context.Context, hash types.KeyHash) (*key.Key, error) {
	var k key.Key
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketKeys).Get(hash.Bytes())
		if data == nil {
			return accessledger.ErrKeyNotFound
		}
		if err := decodeGob(data, &k); err != nil {
			return fmt.Errorf("bolt: decode key: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Store) UpdateKey(_ context.Context, k *key.Key) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeys)
		if b.Get(k.Hash.Bytes()) == nil {
			return accessledger.ErrKeyNotFound
		}
		data, err := encodeGob(k)
		if err != nil {
			return fmt.Errorf("bolt: encode key: %w", err)
		}
		return b.Put(k.Hash.Bytes(), data)
	})
}

func (s *Store) NumKeys(_ context.Context) (uint64, error) {
	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = counter(tx, metaNumKeys)
		return nil
	})
	return n, err
}

func (s *Store) KeyHashAt(_ context.Context, index uint64) (types.KeyHash, error) {
	var hash types.KeyHash
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketKeyOrder).Get(u64Key(index))
		if data == nil {
			return accessledger.ErrKeyIndexNotFound
		}
		copy(hash[:], data)
		return nil
	})
	if err != nil {
		return types.KeyHash{}, err
	}
	return hash, nil
}

func (s *Store) KeyHashesByOwner(_ context.Context, owner types.Address) ([]types.KeyHash, error) {
	prefix := []byte(owner)
	var hashes []types.KeyHash

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketOwnerIndex).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			rest := k[len(prefix):]
			if len(rest) != types.KeyHashSize {
				continue // entry for a longer owner sharing this prefix
			}
			var hash types.KeyHash
			copy(hash[:], rest)
			hashes = append(hashes, hash)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: key hashes by owner: %w", err)
	}
	return hashes, nil
}

func (s *Store) ForEachKey(_ context.Context, fn func(*key.Key) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		keys := tx.Bucket(bucketKeys)
		return tx.Bucket(bucketKeyOrder).ForEach(func(_, hash []byte) error {
			data := keys.Get(hash)
			if data == nil {
				return accessledger.ErrKeyNotFound
			}
			var k key.Key
			if err := decodeGob(data, &k); err != nil {
				return fmt.Errorf("bolt: decode key in scan: %w", err)
			}
			return fn(&k)
		})
	})
}

// Revenue accumulator implementation

func (s *Store) RealizedProfit(_ context.Context) (types.Amount, error) {
	var amount types.Amount
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(metaRealizedProfit)
		if data == nil {
			return nil
		}
		return amount.UnmarshalBinary(data)
	})
	if err != nil {
		return types.Amount{}, fmt.Errorf("bolt: realized profit: %w", err)
	}
	return amount, nil
}

func (s *Store) SetRealizedProfit(_ context.Context, amount types.Amount) error {
	data, err := amount.MarshalBinary()
	if err != nil {
		return fmt.Errorf("bolt: encode realized profit: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(metaRealizedProfit, data)
	})
}

// Store management

func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(*bbolt.Tx) error { return nil })
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
