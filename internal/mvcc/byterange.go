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

import "metakv/internal/store"

// resolvedRange is the concrete half-open byte range to hand to the
// underlying engine, or empty=true if there is nothing to operate on.
type resolvedRange struct {
	start []byte
	end   []byte
	empty bool
}

// resolveRange turns (rawStart, rawEnd) — either of which may be nil
// to mean "open-ended" — into a concrete half-open [start, end') range
// against the engine's current live key set.
//
// A nil rawStart resolves against the engine's first live key; a nil
// rawEnd resolves against its last live key. If the engine has no keys
// at all, the range is empty and the caller should treat the operation
// as a no-op.
func resolveRange(eng store.Engine, rawStart, rawEnd []byte) resolvedRange {
	start := rawStart
	if start == nil {
		it := eng.NewIterator()
		defer it.Close()
		it.SeekToFirst()
		if !it.Valid() {
			return resolvedRange{empty: true}
		}
		start = append([]byte(nil), it.Key()...)
	}

	end := rawEnd
	if end == nil {
		it := eng.NewIterator()
		defer it.Close()
		it.SeekToLast()
		if !it.Valid() {
			return resolvedRange{empty: true}
		}
		end = append([]byte(nil), it.Key()...)
	}

	return resolvedRange{start: start, end: incrementLastByte(end)}
}

// incrementLastByte converts an inclusive end key into the exclusive
// bound of a half-open range by incrementing its final byte.
//
// This does not carry: a key ending in 0xFF wraps that byte to 0x00
// without touching the byte before it, which is not a correct
// successor in byte-lexicographic order. This mirrors a known
// limitation of the source this was ported from and is preserved
// deliberately rather than guessed at (see SPEC_FULL.md) — callers must
// not pass end keys terminating in 0xFF if they need an exact
// successor.
func incrementLastByte(key []byte) []byte {
	out := append([]byte(nil), key...)
	if len(out) == 0 {
		return out
	}
	out[len(out)-1]++
	return out
}
