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
	"testing"

	"metakv/internal/store"
)

func seedEngine(t *testing.T, keys ...string) store.Engine {
	t.Helper()
	eng := store.NewMemEngine()
	b := eng.NewWriteBatch()
	for _, k := range keys {
		b.Put([]byte(k), []byte("v"))
	}
	if err := eng.Write(b); err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestResolveRangeBothOpen(t *testing.T) {
	eng := seedEngine(t, "a", "m", "z")
	rr := resolveRange(eng, nil, nil)
	if rr.empty {
		t.Fatal("expected non-empty range")
	}
	if !bytes.Equal(rr.start, []byte("a")) {
		t.Errorf("start = %q, want %q", rr.start, "a")
	}
	if !bytes.Equal(rr.end, []byte("{")) { // 'z'+1
		t.Errorf("end = %q, want %q", rr.end, "{")
	}
}

func TestResolveRangeEmptyEngine(t *testing.T) {
	eng := store.NewMemEngine()
	rr := resolveRange(eng, nil, nil)
	if !rr.empty {
		t.Fatal("expected empty range on empty engine")
	}
}

func TestResolveRangeExplicitBounds(t *testing.T) {
	eng := seedEngine(t, "a", "m", "z")
	rr := resolveRange(eng, []byte("b"), []byte("y"))
	if rr.empty {
		t.Fatal("expected non-empty range")
	}
	if !bytes.Equal(rr.start, []byte("b")) {
		t.Errorf("start = %q, want %q", rr.start, "b")
	}
	if !bytes.Equal(rr.end, []byte("z")) {
		t.Errorf("end = %q, want %q", rr.end, "z")
	}
}

func TestIncrementLastByteWraps(t *testing.T) {
	// Documented limitation: no carry. 0xFF wraps to 0x00 in place.
	got := incrementLastByte([]byte{0x01, 0xFF})
	want := []byte{0x01, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("incrementLastByte = %v, want %v", got, want)
	}
}

func TestIncrementLastByteEmpty(t *testing.T) {
	if got := incrementLastByte(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
