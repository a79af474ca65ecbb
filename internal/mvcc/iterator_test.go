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
	"fmt"
	"testing"
)

func TestRangeIteratorYieldsAllRecordsAcrossPages(t *testing.T) {
	s := newOpenStore(t)
	const n = 100 // more than one page (rangeIteratorPageSize=32)
	for i := 0; i < n; i++ {
		mustPut(t, s, fmt.Sprintf("k%03d", i), "v", int64(i+1))
	}

	op, _ := NewRangeOp().Range(nil, nil).Build()
	it, err := s.NewRangeIterator(op)
	if err != nil {
		t.Fatalf("NewRangeIterator: %v", err)
	}
	defer it.Close()

	seen := make(map[string]bool)
	for {
		kv, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		seen[string(kv.Key)] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct keys, saw %d", n, len(seen))
	}
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("k%03d", i)
		if !seen[k] {
			t.Errorf("missing key %q", k)
		}
	}
}

func TestRangeIteratorEmptyRange(t *testing.T) {
	s := newOpenStore(t)
	op, _ := NewRangeOp().Range(nil, nil).Build()
	it, err := s.NewRangeIterator(op)
	if err != nil {
		t.Fatalf("NewRangeIterator: %v", err)
	}
	_, ok, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Fatalf("expected no records on empty store")
	}
}

func TestRangeIteratorClosedReturnsError(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "k", "v", 1)

	op, _ := NewRangeOp().Range(nil, nil).Build()
	it, err := s.NewRangeIterator(op)
	if err != nil {
		t.Fatalf("NewRangeIterator: %v", err)
	}
	it.Close()
	it.Close() // idempotent

	if _, _, err := it.Next(); err != ErrIteratorClosed {
		t.Fatalf("expected ErrIteratorClosed, got %v", err)
	}
}

func TestRangeIteratorInvalidatedByStoreClose(t *testing.T) {
	s := newOpenStore(t)
	mustPut(t, s, "k", "v", 1)

	op, _ := NewRangeOp().Range(nil, nil).Build()
	it, err := s.NewRangeIterator(op)
	if err != nil {
		t.Fatalf("NewRangeIterator: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, _, err := it.Next(); err != ErrIteratorClosed {
		t.Fatalf("expected ErrIteratorClosed after store Close, got %v", err)
	}
}

func TestRangeIteratorRejectsNonRangeOp(t *testing.T) {
	s := newOpenStore(t)
	op, _ := NewRangeOp().SingleKey([]byte("k")).Build()
	if _, err := s.NewRangeIterator(op); err != ErrMissingField {
		t.Fatalf("expected ErrMissingField for non-range op, got %v", err)
	}
}
