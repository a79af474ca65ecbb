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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"metakv/internal/store"
	"metakv/pkg/config"
)

func testSpec(dir string) config.StoreSpec {
	return config.StoreSpec{
		Name:               "test-store",
		LocalStateStoreDir: dir,
		KeyCoder:           RawBytes(),
		ValCoder:           RawBytes(),
	}
}

func newOpenStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(store.OpenMemEngineAsEngine)
	if err := s.Init(testSpec(t.TempDir())); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPut(t *testing.T, s *Store, key, value string, rev int64) *PutResult {
	t.Helper()
	op, err := NewPutOp([]byte(key)).Value([]byte(value)).Revision(Revision(rev)).Build()
	if err != nil {
		t.Fatalf("build put: %v", err)
	}
	r, err := s.Put(op)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	return r
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(store.OpenMemEngineAsEngine)

	op, _ := NewPutOp([]byte("k")).Revision(1).Build()
	if _, err := s.Put(op); err != ErrClosed {
		t.Fatalf("expected ErrClosed before Init, got %v", err)
	}

	dir := t.TempDir()
	if err := s.Init(testSpec(dir)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Init(testSpec(dir)); err != ErrAlreadyInitialized {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	if _, err := s.Put(op); err != nil {
		t.Fatalf("put after init: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close should be idempotent, got %v", err)
	}
	if _, err := s.Put(op); err != ErrClosed {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestPutCreateThenUpdate(t *testing.T) {
	s := newOpenStore(t)

	r1 := mustPut(t, s, "k", "v1", 10)
	if r1.Code != OK {
		t.Fatalf("first put code = %v", r1.Code)
	}

	rng, _ := NewRangeOp().SingleKey([]byte("k")).Build()
	rr, err := s.Range(rng)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if rr.Count != 1 || rr.Kvs[0].CreateRevision != 10 || rr.Kvs[0].ModRevision != 10 || rr.Kvs[0].Version != 0 {
		t.Fatalf("unexpected kv after create: %+v", rr.Kvs[0])
	}
	rr.Recycle()

	r2 := mustPut(t, s, "k", "v2", 20)
	if r2.Code != OK {
		t.Fatalf("second put code = %v", r2.Code)
	}

	rr2, err := s.Range(rng)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	kv := rr2.Kvs[0]
	if kv.CreateRevision != 10 || kv.ModRevision != 20 || kv.Version != 1 || string(kv.Value) != "v2" {
		t.Fatalf("unexpected kv after update: %+v", kv)
	}
	rr2.Recycle()
}

func TestPutRejectsSmallerRevision(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "k", "v1", 10)

	op, _ := NewPutOp([]byte("k")).Value([]byte("v2")).Revision(5).Build()
	r, err := s.Put(op)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if r.Code != SmallerRevision {
		t.Fatalf("expected SmallerRevision, got %v", r.Code)
	}

	opEq, _ := NewPutOp([]byte("k")).Value([]byte("v2")).Revision(10).Build()
	rEq, err := s.Put(opEq)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if rEq.Code != SmallerRevision {
		t.Fatalf("expected SmallerRevision for equal mod_rev, got %v", rEq.Code)
	}
}

func TestPutPrevKV(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "k", "v1", 1)

	op, _ := NewPutOp([]byte("k")).Value([]byte("v2")).Revision(2).WithPrevKV(true).Build()
	r, err := s.Put(op)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if r.PrevKV == nil || string(r.PrevKV.Value) != "v1" {
		t.Fatalf("expected prev kv v1, got %+v", r.PrevKV)
	}
	r.Recycle()
}

func TestDeleteSingleKeyAccurateCount(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "k", "v", 1)

	del, _ := NewDeleteOp().SingleKey([]byte("k")).Revision(2).WithPrevKV(true).Build()
	r, err := s.Delete(del)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if r.NumDeleted != 1 || len(r.PrevKVs) != 1 || string(r.PrevKVs[0].Value) != "v" {
		t.Fatalf("unexpected delete result: %+v", r)
	}
	r.Recycle()

	delMissing, _ := NewDeleteOp().SingleKey([]byte("k")).Revision(3).Build()
	r2, err := s.Delete(delMissing)
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if r2.NumDeleted != 0 {
		t.Fatalf("expected NumDeleted=0 for missing key, got %d", r2.NumDeleted)
	}
	r2.Recycle()
}

func TestDeleteRangeAccurateCountWithoutPrevKV(t *testing.T) {
	s := newOpenStore(t)
	for i, k := range []string{"a", "b", "c", "d", "e"} {
		mustPut(t, s, k, "v", int64(i+1))
	}

	del, _ := NewDeleteOp().Range([]byte("b"), []byte("e")).Revision(10).Build()
	r, err := s.Delete(del)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if r.NumDeleted != 4 {
		t.Fatalf("expected 4 deleted (b,c,d,e), got %d", r.NumDeleted)
	}
	if len(r.PrevKVs) != 0 {
		t.Fatalf("expected no PrevKVs when not requested, got %d", len(r.PrevKVs))
	}
	r.Recycle()

	rng, _ := NewRangeOp().Range(nil, nil).Build()
	rr, err := s.Range(rng)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if rr.Count != 1 {
		t.Fatalf("expected only a remaining, got %d", rr.Count)
	}
	rr.Recycle()
}

func TestRangeLimitReportsHasMore(t *testing.T) {
	s := newOpenStore(t)
	for i, k := range []string{"a", "b", "c"} {
		mustPut(t, s, k, "v", int64(i+1))
	}

	rng, _ := NewRangeOp().Range(nil, nil).Limit(2).Build()
	rr, err := s.Range(rng)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if rr.Count != 2 || !rr.HasMore {
		t.Fatalf("expected count=2 has_more=true, got count=%d has_more=%v", rr.Count, rr.HasMore)
	}
	rr.Recycle()
}

func TestKeysTotalMetricTracksLiveKeys(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	s := NewStore(store.OpenMemEngineAsEngine, WithMetrics(m))
	if err := s.Init(testSpec(t.TempDir())); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Close()

	gauge := func() float64 { return testutil.ToFloat64(m.store.KeysTotal) }

	if got := gauge(); got != 0 {
		t.Fatalf("expected keys_total=0 on an empty store, got %v", got)
	}

	mustPut(t, s, "a", "v", 1)
	mustPut(t, s, "b", "v", 1)
	if got := gauge(); got != 2 {
		t.Fatalf("expected keys_total=2 after two new-key puts, got %v", got)
	}

	mustPut(t, s, "a", "v2", 2)
	if got := gauge(); got != 2 {
		t.Fatalf("expected keys_total=2 after an update put, got %v", got)
	}

	del, _ := NewDeleteOp().SingleKey([]byte("a")).Revision(3).Build()
	if _, err := s.Delete(del); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := gauge(); got != 1 {
		t.Fatalf("expected keys_total=1 after deleting a, got %v", got)
	}

	putC, _ := NewPutOp([]byte("c")).Value([]byte("v")).Revision(4).Build()
	putD, _ := NewPutOp([]byte("d")).Value([]byte("v")).Revision(4).Build()
	txn, _ := NewTxnOp().Revision(4).Then(putC, putD).Build()
	tr, err := s.Txn(txn)
	if err != nil {
		t.Fatalf("txn: %v", err)
	}
	tr.Recycle()
	if got := gauge(); got != 3 {
		t.Fatalf("expected keys_total=3 after a two-put txn branch (b, c, d), got %v", got)
	}
}

func TestKeysTotalMetricSeededFromExistingEngine(t *testing.T) {
	// Seed an engine with two records directly (bypassing Store
	// entirely), then Init a fresh Store on top of it, simulating
	// reopening a directory that already holds data. MemEngine has no
	// on-disk footprint of its own, so the shared instance below stands
	// in for "already populated" rather than an actual close/reopen.
	eng := store.NewMemEngine()
	batch := eng.NewWriteBatch()
	batch.Put([]byte("a"), encodeRecord(&MVCCRecord{CreateRevision: 1, ModRevision: 1, Value: []byte("v")}))
	batch.Put([]byte("b"), encodeRecord(&MVCCRecord{CreateRevision: 1, ModRevision: 1, Value: []byte("v")}))
	if err := eng.Write(batch); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	s := NewStore(func(dir string) (store.Engine, error) { return eng, nil }, WithMetrics(m))
	if err := s.Init(testSpec(t.TempDir())); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Close()

	if got := testutil.ToFloat64(m.store.KeysTotal); got != 2 {
		t.Fatalf("expected keys_total=2 seeded from a pre-populated engine, got %v", got)
	}
}

func TestRangeModRevisionFilter(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "a", "v", 1)
	mustPut(t, s, "b", "v", 2)
	mustPut(t, s, "c", "v", 3)

	rng, _ := NewRangeOp().Range(nil, nil).MinModRevision(2).Build()
	rr, err := s.Range(rng)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if rr.Count != 2 {
		t.Fatalf("expected 2 keys with mod_rev>=2, got %d", rr.Count)
	}
	rr.Recycle()
}
