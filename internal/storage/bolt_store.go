package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	tableBucket = "recreated_tables"
	expiryBytes = 8
)

var errBucketMissing = errors.New("table bucket missing")

// boltJournal implements a Journal backed by BoltDB. Each value is the
// big-endian unix expiry followed by the fingerprint bytes.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

type journalEntry struct {
	expiry      time.Time
	fingerprint string
}

func openBolt(path string, opts Options) (Journal, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(tableBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	j.lastCleanup.Store(time.Now().Unix())
	return j, nil
}

func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Seen reports whether key holds an unexpired entry for fingerprint. An
// expired or unreadable entry is removed; an entry for another fingerprint
// is left for Mark to replace.
func (b *boltJournal) Seen(key, fingerprint string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var match bool
	err := b.update(func(bucket *bolt.Bucket) error {
		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}
		entry, ok := decodeEntry(value)
		if !ok || !entry.expiry.After(now) {
			return bucket.Delete(k)
		}
		match = entry.fingerprint == fingerprint
		return nil
	})
	return match, err
}

// Mark replaces whatever key held with fingerprint and a fresh expiry.
func (b *boltJournal) Mark(key, fingerprint string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Put([]byte(key), encodeEntry(journalEntry{
			expiry:      now.Add(b.entryTTL),
			fingerprint: fingerprint,
		}))
	})
}

func (b *boltJournal) Forget(key string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.update(func(bucket *bolt.Bucket) error {
		return bucket.Delete([]byte(key))
	})
}

func (b *boltJournal) update(fn func(*bolt.Bucket) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(tableBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return fn(bucket)
	})
}

// maybeCleanupExpired sweeps expired keys at most once per cleanup interval.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.update(func(bucket *bolt.Bucket) error {
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			entry, ok := decodeEntry(v)
			if !ok || !entry.expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeEntry(e journalEntry) []byte {
	buf := make([]byte, expiryBytes+len(e.fingerprint))
	binary.BigEndian.PutUint64(buf, uint64(e.expiry.Unix()))
	copy(buf[expiryBytes:], e.fingerprint)
	return buf
}

func decodeEntry(value []byte) (journalEntry, bool) {
	if len(value) <= expiryBytes {
		return journalEntry{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryBytes]))
	if unix <= 0 {
		return journalEntry{}, false
	}
	return journalEntry{
		expiry:      time.Unix(unix, 0),
		fingerprint: string(value[expiryBytes:]),
	}, true
}
