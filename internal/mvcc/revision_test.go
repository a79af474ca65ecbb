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

import "testing"

func TestRevisionEncodeToRoundTrip(t *testing.T) {
	tests := []Revision{0, 1, 2, 1234567890, 1<<62 - 1}

	for _, rev := range tests {
		buf := make([]byte, RevisionSize)
		rev.EncodeTo(buf)
		if got := ParseRevision(buf); got != rev {
			t.Errorf("ParseRevision(EncodeTo()) = %v, want %v", got, rev)
		}
	}
}

func TestRevisionOrdering(t *testing.T) {
	// Big-endian encoding of Revision must preserve numeric ordering
	// byte-lexicographically, since it is stored as a record's
	// create_rev/mod_rev header field.
	a, b := Revision(5), Revision(6)
	ab, bb := make([]byte, RevisionSize), make([]byte, RevisionSize)
	a.EncodeTo(ab)
	b.EncodeTo(bb)

	less := false
	for i := range ab {
		if ab[i] != bb[i] {
			less = ab[i] < bb[i]
			break
		}
	}
	if !less {
		t.Errorf("expected EncodeTo(%d) < EncodeTo(%d) lexicographically", a, b)
	}
}

func TestParseRevisionShort(t *testing.T) {
	short := []byte{1, 2, 3}
	if ParseRevision(short) != 0 {
		t.Error("ParseRevision with short data should return 0")
	}
}
