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
	"sync"
	"sync/atomic"

	mvccpb "go.etcd.io/etcd/api/v3/mvccpb"
)

// rangeIteratorPageSize bounds how many records a single fetchPage scans
// from the engine before yielding control back to the caller.
const rangeIteratorPageSize = 32

// RangeIterator provides paged, cursor-resumable iteration over a range
// too large to want as a single RangeResult. Each page is fetched under
// the store's lock for one bounded window; the cursor carried between
// pages is the byte-immediate successor of the last key scanned (the
// key with a 0x00 byte appended), so consecutive pages neither skip nor
// repeat a record across the seam.
//
// Unlike RangeResult, the KeyValues a RangeIterator yields are not
// pooled: callers hold a reference across the iterator's lifetime
// rather than a single call, which defeats the purpose of returning
// pooled buffers promptly.
type RangeIterator struct {
	store *Store

	mu     sync.Mutex
	op     RangeOp
	cursor []byte
	end    []byte
	done   bool
	closed atomic.Bool

	page []*mvccpb.KeyValue
	pos  int
}

// NewRangeIterator begins a paged scan over op, which must be a range
// op (IsRange true). The iterator is live until Next reports no more
// records, Close is called, or the store closes.
func (s *Store) NewRangeIterator(op RangeOp) (*RangeIterator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}
	if !op.IsRange {
		return nil, ErrMissingField
	}

	rr := resolveRange(s.eng, op.Key, op.EndKey)
	it := &RangeIterator{store: s, op: op, cursor: rr.start, end: rr.end, done: rr.empty}
	if !rr.empty {
		s.iterators[it] = struct{}{}
	}
	return it, nil
}

// Next returns the next matching record, or ok=false once the range is
// exhausted. It transparently fetches a new page when the current one
// has been fully consumed.
func (it *RangeIterator) Next() (kv *mvccpb.KeyValue, ok bool, err error) {
	if it.closed.Load() {
		return nil, false, ErrIteratorClosed
	}

	it.mu.Lock()
	defer it.mu.Unlock()

	if it.closed.Load() {
		return nil, false, ErrIteratorClosed
	}

	for it.pos >= len(it.page) {
		if it.done {
			return nil, false, nil
		}
		if err := it.fetchPage(); err != nil {
			return nil, false, err
		}
	}

	kv = it.page[it.pos]
	it.pos++
	return kv, true, nil
}

// fetchPage scans up to rangeIteratorPageSize records from the current
// cursor, keeping only those that pass the op's revision filters, and
// advances the cursor past the last record scanned (not just the last
// one kept, so a page of entirely filtered-out records still makes
// forward progress). The iterator is marked done once a page scans
// fewer than a full page's worth of records, meaning the end of the
// range was reached.
func (it *RangeIterator) fetchPage() error {
	it.store.mu.Lock()
	defer it.store.mu.Unlock()

	if err := it.store.requireOpen(); err != nil {
		it.closed.Store(true)
		return err
	}

	scanIt := it.store.eng.NewIterator()
	defer scanIt.Close()

	page := make([]*mvccpb.KeyValue, 0, rangeIteratorPageSize)
	var lastScanned []byte
	scanned := 0

	scanIt.Seek(it.cursor)
	for scanIt.Valid() && bytes.Compare(scanIt.Key(), it.end) < 0 && scanned < rangeIteratorPageSize {
		rec, err := decodeRecord(scanIt.Value())
		if err != nil {
			return err
		}
		if recordPassesFilter(it.op, rec) {
			page = append(page, recordToKVCopy(scanIt.Key(), rec))
		}
		lastScanned = append([]byte(nil), scanIt.Key()...)
		scanned++
		scanIt.Next()
	}

	it.page = page
	it.pos = 0

	if scanned < rangeIteratorPageSize {
		it.done = true
		return nil
	}
	it.cursor = append(lastScanned, 0x00)
	return nil
}

// recordToKVCopy builds an unpooled KeyValue snapshot, independent of
// the sync.Pool RangeResult draws from.
func recordToKVCopy(key []byte, r *MVCCRecord) *mvccpb.KeyValue {
	return &mvccpb.KeyValue{
		Key:            append([]byte(nil), key...),
		Value:          r.Value,
		CreateRevision: r.CreateRevision,
		ModRevision:    r.ModRevision,
		Version:        r.Version,
	}
}

// Close releases the iterator early and unregisters it from the store.
// Safe to call more than once.
func (it *RangeIterator) Close() {
	if it.closed.Swap(true) {
		return
	}
	it.store.unregisterIterator(it)
}

// invalidate marks the iterator closed without touching the store's
// iterator set. Called by Store.Close, which already holds the store
// lock and owns clearing that set itself.
func (it *RangeIterator) invalidate() {
	it.closed.Store(true)
}
