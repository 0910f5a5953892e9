// Package store is the prefix-addressable document store every handler
// reads and writes. It treats documents as opaque bytes except for the
// key prefix; callers that need a deterministic order over a scan sort
// by a timestamp field themselves (message and notification keys are the
// exception: their keys embed the timestamp and iterate in order).
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"burrow/pkg/apperr"
	"burrow/pkg/logger"

	"github.com/cockroachdb/pebble"
)

var db *pebble.DB

var dbPath string

// seq breaks key collisions when multiple records share the same
// nanosecond timestamp.
var seq uint64

// Open opens (or creates) a Pebble database under path and keeps a
// package-level handle.
func Open(path string) error {
	if err := os.MkdirAll(filepath.Dir(filepath.Join(path, "x")), 0o700); err != nil {
		return fmt.Errorf("cannot create db path %s: %w", path, err)
	}
	var err error
	logger.Log.Info("opening_pebble_db", zap.String("path", path))
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return err
	}
	dbPath = path
	logger.Log.Info("pebble_opened", zap.String("path", path))
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	dbPath = ""
	logger.Log.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool { return db != nil }

// NextSeq returns a process-monotonic sequence for timestamp tiebreaks.
func NextSeq() uint64 { return atomic.AddUint64(&seq, 1) }

var errNotOpen = fmt.Errorf("pebble not opened; call store.Open first")

// Get returns the document stored under key. A missing key yields an
// apperr NotFound so callers can distinguish absence from I/O failure.
func Get(key string) ([]byte, error) {
	if db == nil {
		return nil, errNotOpen
	}
	v, closer, err := db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, apperr.NotFound("key not found: " + key)
	}
	if err != nil {
		opErrors.WithLabelValues("get").Inc()
		logger.Log.Error("get_failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	ops.WithLabelValues("get").Inc()
	return out, nil
}

// Set fully overwrites the document under key. There is no partial-field
// update primitive; every mutation is read whole, modify, write whole.
func Set(key string, value []byte) error {
	if db == nil {
		return errNotOpen
	}
	if err := db.Set([]byte(key), value, pebble.Sync); err != nil {
		opErrors.WithLabelValues("set").Inc()
		logger.Log.Error("set_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	ops.WithLabelValues("set").Inc()
	logger.Log.Debug("set_ok", zap.String("key", key), zap.Int("len", len(value)))
	return nil
}

// Delete removes the record; deleting an absent key is not an error.
func Delete(key string) error {
	if db == nil {
		return errNotOpen
	}
	if err := db.Delete([]byte(key), pebble.Sync); err != nil {
		opErrors.WithLabelValues("delete").Inc()
		logger.Log.Error("delete_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	ops.WithLabelValues("delete").Inc()
	return nil
}

// Record pairs a key with its stored document.
type Record struct {
	Key   string
	Value []byte
}

// ScanPrefix returns all records whose key starts with prefix, in key
// order. The scan is not a consistent snapshot with respect to
// concurrent writers to the same prefix.
func ScanPrefix(prefix string) ([]Record, error) {
	if db == nil {
		return nil, errNotOpen
	}
	pfx := []byte(prefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []Record
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, Record{
			Key:   string(iter.Key()),
			Value: append([]byte(nil), iter.Value()...),
		})
	}
	ops.WithLabelValues("scan").Inc()
	return out, iter.Error()
}

// ScanKeys returns all keys starting with prefix.
func ScanKeys(prefix string) ([]string, error) {
	recs, err := ScanPrefix(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Key)
	}
	return out, nil
}

// Has reports whether key exists (edge-presence checks).
func Has(key string) (bool, error) {
	_, err := Get(key)
	if err == nil {
		return true, nil
	}
	if apperr.Is(err, apperr.CodeNotFound) {
		return false, nil
	}
	return false, err
}

// Update runs a serialized read-modify-write on one key. fn receives the
// current document (nil, found=false when absent) and returns the
// replacement; returning nil bytes with a nil error deletes the key.
// Errors from fn abort without writing.
func Update(key string, fn func(cur []byte, found bool) ([]byte, error)) error {
	return WithKeyLock(key, func() error {
		cur, err := Get(key)
		found := true
		if err != nil {
			if !apperr.Is(err, apperr.CodeNotFound) {
				return err
			}
			cur, found = nil, false
		}
		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		if next == nil {
			if !found {
				return nil
			}
			return Delete(key)
		}
		return Set(key, next)
	})
}

// NewBatch returns an empty write batch. Compound operations that must
// appear atomic (membership change + audit message, feature rotation
// touching many posts) collect their writes here and apply them once.
func NewBatch() *pebble.Batch { return new(pebble.Batch) }

// ApplyBatch applies wb atomically.
func ApplyBatch(wb *pebble.Batch) error {
	if db == nil {
		return errNotOpen
	}
	if err := db.Apply(wb, pebble.Sync); err != nil {
		opErrors.WithLabelValues("batch").Inc()
		logger.Log.Error("apply_batch_failed", zap.Error(err))
		return err
	}
	ops.WithLabelValues("batch").Inc()
	return nil
}

// DeletePrefix removes every record under prefix in one atomic batch and
// returns the number of keys deleted.
func DeletePrefix(prefix string) (int, error) {
	keys, err := ScanKeys(prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	wb := NewBatch()
	for _, k := range keys {
		_ = wb.Delete([]byte(k), nil)
	}
	if err := ApplyBatch(wb); err != nil {
		return 0, err
	}
	logger.Log.Info("prefix_deleted", zap.String("prefix", prefix), zap.Int("keys", len(keys)))
	return len(keys), nil
}
