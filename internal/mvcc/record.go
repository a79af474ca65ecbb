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

// recordHeaderSize is the fixed-width portion of an encoded MVCCRecord:
// create_rev(8) + mod_rev(8) + version(8) + value_len(4).
const recordHeaderSize = 8 + 8 + 8 + 4

// MVCCRecord is the one live record a key ever has. There is no
// historical trail: a put overwrites the prior incarnation in place
// (advancing mod_rev and version), and a delete removes the record
// outright rather than tombstoning it.
type MVCCRecord struct {
	// CreateRevision is the revision at which the current incarnation
	// of the key was created.
	CreateRevision int64

	// ModRevision is the revision of the most recent modification.
	ModRevision int64

	// Version counts modifications since creation; 0 on first put.
	Version int64

	// Value is the encoded value bytes.
	Value []byte
}

// encodeRecord serializes r as create_rev, mod_rev (both via
// Revision.EncodeTo), version (big-endian i64), value_len (big-endian
// i32), then the value bytes.
func encodeRecord(r *MVCCRecord) []byte {
	buf := make([]byte, recordHeaderSize+len(r.Value))
	Revision(r.CreateRevision).EncodeTo(buf[0:8])
	Revision(r.ModRevision).EncodeTo(buf[8:16])
	binary.BigEndian.PutUint64(buf[16:24], uint64(r.Version))
	binary.BigEndian.PutUint32(buf[24:28], uint32(len(r.Value)))
	copy(buf[recordHeaderSize:], r.Value)
	return buf
}

// decodeRecord parses the fixed header format produced by encodeRecord.
// It validates that the declared value_len does not run past the end
// of data before trusting it.
func decodeRecord(data []byte) (*MVCCRecord, error) {
	if len(data) < recordHeaderSize {
		return nil, ErrInvalidData
	}

	r := &MVCCRecord{
		CreateRevision: int64(ParseRevision(data[0:8])),
		ModRevision:    int64(ParseRevision(data[8:16])),
		Version:        int64(binary.BigEndian.Uint64(data[16:24])),
	}

	valueLen := int(int32(binary.BigEndian.Uint32(data[24:28])))
	remaining := len(data) - recordHeaderSize
	if valueLen < 0 || valueLen > remaining {
		return nil, ErrInvalidData
	}

	if valueLen > 0 {
		r.Value = make([]byte, valueLen)
		copy(r.Value, data[recordHeaderSize:recordHeaderSize+valueLen])
	}

	return r, nil
}
