// Package cache stores completed batches in BadgerDB, keyed on the
// parameters that fully determine them, so that repeated runs and sweeps
// reuse earlier datasets instead of re-simulating.
//
// Only batches with an explicit (non-zero) seed are deterministic; callers
// should not cache wall-clock seeded runs.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/repair-sim/sim"
)

// Config holds configuration for a dataset store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// SyncWrites flushes every write to disk.
	SyncWrites bool
}

// Store is a BadgerDB-backed dataset cache. Safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logrus.WithField("component", "cache")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenPath opens a persistent store at path with synchronous writes.
func OpenPath(path string) (*Store, error) {
	return Open(Config{Path: path, SyncWrites: true})
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the cache key of a batch: its dataset file name plus the cap,
// which the file name omits.
func Key(trialCount int64, cfg sim.Config) []byte {
	return []byte(sim.ResultFileName(trialCount, cfg) + "|max_cycles=" + strconv.FormatInt(cfg.MaxCycles, 10))
}

// Get returns the cached batch for the parameters, if present.
func (s *Store) Get(trialCount int64, cfg sim.Config) (*sim.Results, bool, error) {
	var res *sim.Results
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(Key(trialCount, cfg))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			r, err := sim.DecodeResults(bytes.NewReader(val))
			if err != nil {
				return err
			}
			res = r
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached results: %w", err)
	}
	return res, true, nil
}

// Put stores a batch under the parameters echoed in its record.
func (s *Store) Put(r *sim.Results) error {
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf, false); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(Key(r.TrialCount, r.Configs), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("writing cached results: %w", err)
	}
	return nil
}

// badgerLogger routes BadgerDB's internal logging through logrus, demoting
// its chatty info output to debug.
type badgerLogger struct {
	entry *logrus.Entry
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.entry.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.entry.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.entry.Tracef(format, args...) }
