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

import "encoding/binary"

// RevisionSize is the byte size of an encoded revision.
const RevisionSize = 8

// Revision is a caller-supplied monotonically-increasing tag on a store
// mutation. Unlike a revision generator that mints its own numbers, the
// store never produces a Revision itself: every Op that mutates state
// carries one from its caller, and the monotonic-revision invariant is
// enforced against the record already on disk.
type Revision int64

// EncodeTo writes the revision into buf, which must be at least
// RevisionSize bytes. Used by the record codec to lay create_rev and
// mod_rev into a record's fixed header without an intermediate
// allocation.
func (r Revision) EncodeTo(buf []byte) {
	binary.BigEndian.PutUint64(buf, uint64(r))
}

// ParseRevision decodes a revision from its big-endian encoding. Returns
// 0 if b is too short.
func ParseRevision(b []byte) Revision {
	if len(b) < RevisionSize {
		return 0
	}
	return Revision(int64(binary.BigEndian.Uint64(b)))
}
