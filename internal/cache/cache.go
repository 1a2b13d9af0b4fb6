package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache memoizes expensive external calls in an embedded badger store.
// It is a performance layer, not a correctness dependency: every failure
// on the read path reports a miss, every failure on the write path is
// logged and dropped.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open cache at %s: %w", path, err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// OpenInMemory opens a cache with no disk persistence. Used by tests.
func OpenInMemory(ttl time.Duration) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			log.Printf("cache get %s: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (c *Cache) Set(key string, value []byte) {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives a deterministic cache key in the form "{prefix}:{hex-digest}".
// The input is canonicalized through encoding/json, which emits struct fields
// in declaration order and map keys sorted, so identical inputs always hash
// to the same key across runs.
func Key(prefix string, data any) string {
	raw, err := json.Marshal(data)
	if err != nil {
		// Non-serializable inputs cannot be memoized; make the key unique
		// so callers fall through to the live call.
		raw = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	}
	digest := md5.Sum(raw)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(digest[:]))
}
