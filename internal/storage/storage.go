// Package storage keeps a local journal of table definitions already pushed to FDP.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Journal records, per table key, the fingerprint of the definition last
// pushed to FDP so unchanged definitions can be skipped on the next run.
type Journal interface {
	Close() error
	// Seen reports whether key was last recorded with fingerprint.
	Seen(key, fingerprint string) (bool, error)
	// Mark records fingerprint as the current definition of key.
	Mark(key, fingerprint string) error
	// Forget drops key, e.g. once its remote definition has been deleted.
	Forget(key string) error
}

// Options controls retention for concrete journal implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewJournal creates the configured journal backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                      { return nil }
func (noopJournal) Seen(string, string) (bool, error) { return false, nil }
func (noopJournal) Mark(string, string) error         { return nil }
func (noopJournal) Forget(string) error               { return nil }
