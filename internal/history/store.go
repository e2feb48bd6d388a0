// Package history persists analysis results in a local BadgerDB.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/RyanBlaney/barksync-analyzer/internal/analysis"
	"github.com/RyanBlaney/barksync-analyzer/pkg/audio/extractors"
	"github.com/RyanBlaney/barksync-analyzer/pkg/vocalization"
)

const keyPrefix = "analysis/"

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("history: record not found")

// Record is one stored analysis
type Record struct {
	ID        string               `json:"id" yaml:"id"`
	Source    string               `json:"source" yaml:"source"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	Result    *vocalization.Result `json:"result" yaml:"result"`
	Features  *extractors.Features `json:"features,omitempty" yaml:"features,omitempty"`
}

// Options configures the store
type Options struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string

	// InMemory keeps everything in memory; used by tests.
	InMemory bool

	Logger logging.Logger
}

// Store is a BadgerDB backed history of analyses
type Store struct {
	db     *badger.DB
	logger logging.Logger
	now    func() time.Time
}

// Open opens or creates the history store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("history: Options.Dir is required for on-disk mode")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "history_store",
		})
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{logger: logger})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Save stores report and returns the new record. IDs sort by creation time.
func (s *Store) Save(_ context.Context, report *analysis.Report) (*Record, error) {
	if report == nil || report.Result == nil {
		return nil, errors.New("history: nothing to save")
	}

	createdAt := s.now().UTC()
	rec := &Record{
		ID:        fmt.Sprintf("%019d-%s", createdAt.UnixNano(), uuid.NewString()),
		Source:    report.Source,
		CreatedAt: createdAt,
		Result:    report.Result,
		Features:  report.Features,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save record: %w", err)
	}

	s.logger.Debug("Saved analysis record", logging.Fields{
		"id":     rec.ID,
		"source": rec.Source,
	})
	return rec, nil
}

// Get loads a record by id. An unambiguous id prefix is accepted.
func (s *Store) Get(_ context.Context, id string) (*Record, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			val, err = findByPrefix(txn, keyPrefix+id)
			return err
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, fmt.Errorf("corrupt record %s: %w", id, err)
	}
	return rec, nil
}

func findByPrefix(txn *badger.Txn, prefix string) ([]byte, error) {
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = []byte(prefix)
	it := txn.NewIterator(iterOpts)
	defer it.Close()

	var found []byte
	for it.Seek(iterOpts.Prefix); it.ValidForPrefix(iterOpts.Prefix); it.Next() {
		if found != nil {
			return nil, fmt.Errorf("history: id prefix %q is ambiguous", strings.TrimPrefix(prefix, keyPrefix))
		}
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		found = val
	}
	if found == nil {
		return nil, badger.ErrKeyNotFound
	}
	return found, nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(_ context.Context, limit int) ([]*Record, error) {
	var records []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte(keyPrefix)
		iterOpts.Reverse = true
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		// reverse iteration seeks from just past the prefix range
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(iterOpts.Prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec := &Record{}
			if err := json.Unmarshal(val, rec); err != nil {
				return fmt.Errorf("corrupt record %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int, error) {
	records, err := s.List(ctx, 0)
	return len(records), err
}

// Sources returns the distinct source paths in the store, sorted.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	records, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		out = append(out, r.Source)
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger warnings and errors into the structured logger
type badgerLogger struct {
	logger logging.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Error(fmt.Errorf(strings.TrimSpace(f), v...), "badger error")
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(strings.TrimSpace(f), v...), logging.Fields{"source": "badger"})
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
