// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mvcc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	mvccpb "go.etcd.io/etcd/api/v3/mvccpb"

	"metakv/internal/store"
	"metakv/pkg/config"
	"metakv/pkg/log"
)

// storeState is the store's lifecycle state.
type storeState int32

const (
	stateUninitialized storeState = iota
	stateOpen
	stateClosed
)

// EngineOpener opens the underlying ordered key-value engine at dir.
// Injected at construction so the MVCC engine itself never depends on
// a specific engine implementation (grocksdb vs in-memory).
type EngineOpener func(dir string) (store.Engine, error)

// Store is the MVCC key-value store: single-writer/single-reader-per-
// operation, serialized by a single mutex, with exactly one live
// MVCCRecord per key.
type Store struct {
	mu sync.Mutex

	state  storeState
	opener EngineOpener
	eng    store.Engine
	spec   config.StoreSpec

	logger  *log.Logger
	metrics *Metrics

	iterators map[*RangeIterator]struct{}

	// liveKeys is the number of distinct keys currently holding a
	// record, kept in sync with every put/delete under s.mu and
	// reported to Metrics.SetKeysTotal rather than recomputed by
	// scanning the engine on every observation.
	liveKeys int64
}

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger attaches a logger; the store logs at Debug for each put it
// stages and at Warn whenever an operation returns an error.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore constructs a Store in the UNINITIALIZED state. opener is
// used by Init to open the backing engine.
func NewStore(opener EngineOpener, opts ...Option) *Store {
	s := &Store{
		opener:    opener,
		iterators: make(map[*RangeIterator]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init transitions the store from UNINITIALIZED to OPEN: validates
// spec, creates the state directory's parent if absent, and opens the
// backing engine.
func (s *Store) Init(spec config.StoreSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateUninitialized {
		return ErrAlreadyInitialized
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	if parent := filepath.Dir(spec.LocalStateStoreDir); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("mvcc: create state dir parent: %w", err)
		}
	}

	eng, err := s.opener(spec.LocalStateStoreDir)
	if err != nil {
		return fmt.Errorf("mvcc: open engine: %w", err)
	}

	s.eng = eng
	s.spec = spec
	s.state = stateOpen

	s.liveKeys = countKeys(eng)
	if s.metrics != nil {
		s.metrics.SetKeysTotal(float64(s.liveKeys))
	}
	return nil
}

// countKeys scans eng's full key space once, used to seed Store.liveKeys
// when Init opens a directory that already holds records.
func countKeys(eng store.Engine) int64 {
	it := eng.NewIterator()
	defer it.Close()

	var n int64
	for it.SeekToFirst(); it.Valid(); it.Next() {
		n++
	}
	return n
}

// Close transitions the store to CLOSED: every live RangeIterator is
// invalidated, then the backing engine is closed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return nil
	}
	for it := range s.iterators {
		it.invalidate()
	}
	s.iterators = make(map[*RangeIterator]struct{})
	s.state = stateClosed

	if s.eng != nil {
		return s.eng.Close()
	}
	return nil
}

func (s *Store) requireOpen() error {
	if s.state != stateOpen {
		return ErrClosed
	}
	return nil
}

func (s *Store) unregisterIterator(it *RangeIterator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.iterators, it)
}

func (s *Store) getRecord(key []byte) (*MVCCRecord, bool, error) {
	data, ok, err := s.eng.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.RecordStorageOperation(op, start)
		if err != nil {
			s.metrics.RecordStorageError(op)
		}
	}
	if s.logger != nil && err != nil {
		s.logger.Warnf("mvcc: %s failed: %v", op, err)
	}
}

// Put upserts a single key per the monotonic-revision invariant: a put
// at a revision not greater than the existing mod_rev is rejected with
// Code=SmallerRevision, no mutation.
func (s *Store) Put(op PutOp) (*PutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(op)
}

// putLocked commits a single put in its own write batch.
func (s *Store) putLocked(op PutOp) (*PutResult, error) {
	start := time.Now()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	batch := s.eng.NewWriteBatch()
	result, err := s.putIntoBatch(batch, op)
	if err != nil {
		s.observe("put", start, err)
		return nil, err
	}
	if result.Code == OK {
		if err := s.eng.Write(batch); err != nil {
			result.Recycle()
			s.observe("put", start, err)
			return nil, err
		}
		s.applyKeyDelta(result.isNewKey, 0)
	}
	s.observe("put", start, nil)
	return result, nil
}

// applyKeyDelta adjusts the store's live key count by the net of a
// newly-created key and keys removed, then reports the new total to
// Metrics. Called only once an engine write has actually committed, so
// the reported count never reflects a staged-but-uncommitted batch.
func (s *Store) applyKeyDelta(created bool, removed int64) {
	if created {
		s.liveKeys++
	}
	s.liveKeys -= removed
	if s.metrics != nil {
		s.metrics.SetKeysTotal(float64(s.liveKeys))
	}
}

// putIntoBatch stages a put's mutation into batch without committing
// it, so a transaction branch can accumulate several ops into one
// batch and commit them atomically. The returned result's Code is
// SmallerRevision (no mutation staged) or OK (staged, not yet
// committed) — callers are responsible for calling Engine.Write.
func (s *Store) putIntoBatch(batch store.WriteBatch, op PutOp) (*PutResult, error) {
	existing, ok, err := s.getRecord(op.Key)
	if err != nil {
		return nil, err
	}

	result := acquirePutResult()
	result.Revision = op.Revision

	var createRev, version int64
	if ok {
		if existing.ModRevision >= int64(op.Revision) {
			result.Code = SmallerRevision
			return result, nil
		}
		createRev = existing.CreateRevision
		version = existing.Version + 1
		if op.PrevKV {
			result.PrevKV = recordToKV(op.Key, existing)
		}
	} else {
		createRev = int64(op.Revision)
		version = 0
		result.isNewKey = true
	}

	rec := &MVCCRecord{
		CreateRevision: createRev,
		ModRevision:    int64(op.Revision),
		Version:        version,
		Value:          op.Value,
	}

	batch.Put(op.Key, encodeRecord(rec))
	result.Code = OK
	if s.logger != nil {
		s.logger.Debugf("mvcc: put key=%q rev=%d version=%d", op.Key, op.Revision, version)
	}
	return result, nil
}

// Delete removes a single key or every key in a range. NumDeleted is
// always accurate; PrevKVs is populated only when requested. The
// resolved byte bounds are computed once and reused for both the scan
// that counts/collects prior values and the batched delete, so the
// enumerated set and the deleted set cannot diverge.
func (s *Store) Delete(op DeleteOp) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(op)
}

// deleteLocked commits a single delete (point or range) in its own
// write batch.
func (s *Store) deleteLocked(op DeleteOp) (*DeleteResult, error) {
	start := time.Now()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	batch := s.eng.NewWriteBatch()
	result, err := s.deleteIntoBatch(batch, op)
	if err != nil {
		s.observe("delete", start, err)
		return nil, err
	}
	if err := s.eng.Write(batch); err != nil {
		result.Recycle()
		s.observe("delete", start, err)
		return nil, err
	}
	s.applyKeyDelta(false, result.NumDeleted)
	s.observe("delete", start, nil)
	return result, nil
}

// deleteIntoBatch stages a delete's mutation(s) into batch without
// committing, mirroring putIntoBatch so a transaction branch can
// accumulate several ops into one atomically-committed batch.
func (s *Store) deleteIntoBatch(batch store.WriteBatch, op DeleteOp) (*DeleteResult, error) {
	result := acquireDeleteResult()
	result.Revision = op.Revision
	result.Code = OK

	if !op.IsRange {
		existing, ok, err := s.getRecord(op.Key)
		if err != nil {
			result.Recycle()
			return nil, err
		}
		if !ok {
			return result, nil
		}
		if op.PrevKV {
			result.PrevKVs = append(getKVSlice(), recordToKV(op.Key, existing))
		}
		batch.Delete(op.Key)
		result.NumDeleted = 1
		return result, nil
	}

	rr := resolveRange(s.eng, op.Key, op.EndKey)
	if rr.empty {
		return result, nil
	}

	it := s.eng.NewIterator()
	defer it.Close()

	var prevKvs []*mvccpb.KeyValue
	if op.PrevKV {
		prevKvs = getKVSlice()
	}

	var count int64
	for it.Seek(rr.start); it.Valid() && bytes.Compare(it.Key(), rr.end) < 0; it.Next() {
		rec, err := decodeRecord(it.Value())
		if err != nil {
			if prevKvs != nil {
				putKVSlice(prevKvs)
			}
			result.Recycle()
			return nil, err
		}
		count++
		if op.PrevKV {
			prevKvs = append(prevKvs, recordToKV(it.Key(), rec))
		}
	}

	batch.DeleteRange(rr.start, rr.end)
	result.NumDeleted = count
	result.PrevKVs = prevKvs
	return result, nil
}

func recordPassesFilter(op RangeOp, rec *MVCCRecord) bool {
	return rec.ModRevision >= op.MinModRev && rec.ModRevision <= op.MaxModRev &&
		rec.CreateRevision >= op.MinCreateRev && rec.CreateRevision <= op.MaxCreateRev
}

// Range serves a point lookup or a bounded/unbounded forward scan.
func (s *Store) Range(op RangeOp) (*RangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeLocked(op)
}

func (s *Store) rangeLocked(op RangeOp) (*RangeResult, error) {
	start := time.Now()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	result := acquireRangeResult()
	result.Revision = op.Revision
	result.Code = OK

	if !op.IsRange {
		existing, ok, err := s.getRecord(op.Key)
		if err != nil {
			result.Recycle()
			s.observe("range", start, err)
			return nil, err
		}
		if ok && recordPassesFilter(op, existing) {
			result.Kvs = append(getKVSlice(), recordToKV(op.Key, existing))
			result.Count = 1
		}
		s.observe("range", start, nil)
		return result, nil
	}

	rr := resolveRange(s.eng, op.Key, op.EndKey)
	if rr.empty {
		s.observe("range", start, nil)
		return result, nil
	}

	it := s.eng.NewIterator()
	defer it.Close()

	kvs := getKVSlice()
	var count int64
	it.Seek(rr.start)
	for it.Valid() && bytes.Compare(it.Key(), rr.end) < 0 {
		if op.Limit > 0 && count >= op.Limit {
			result.HasMore = true
			break
		}
		rec, err := decodeRecord(it.Value())
		if err != nil {
			putKVSlice(kvs)
			result.Recycle()
			s.observe("range", start, err)
			return nil, err
		}
		if recordPassesFilter(op, rec) {
			kvs = append(kvs, recordToKV(it.Key(), rec))
			count++
		}
		it.Next()
	}

	result.Kvs = kvs
	result.Count = count
	s.observe("range", start, nil)
	return result, nil
}

// PutRaw, DeleteRaw and Multi are the deprecated non-MVCC mutators of
// the parent store. Callers must use the op-based API instead.
func (s *Store) PutRaw(key, value []byte) Code { return UnsupportedOp }
func (s *Store) DeleteRaw(key []byte) Code      { return UnsupportedOp }
func (s *Store) Multi(ops ...Op) Code           { return UnsupportedOp }
