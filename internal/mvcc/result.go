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
	"sync"

	mvccpb "go.etcd.io/etcd/api/v3/mvccpb"
)

// Results carry their payload as *mvccpb.KeyValue: its field set
// (Key, Value, CreateRevision, ModRevision, Version) lines up with
// MVCCRecord exactly, and reusing it means callers get the same shape
// etcd clients already know.

var kvPool = sync.Pool{New: func() any { return &mvccpb.KeyValue{} }}

func getKV() *mvccpb.KeyValue {
	kv := kvPool.Get().(*mvccpb.KeyValue)
	kv.Key, kv.Value = nil, nil
	kv.CreateRevision, kv.ModRevision, kv.Version, kv.Lease = 0, 0, 0, 0
	return kv
}

func putKV(kv *mvccpb.KeyValue) {
	if kv == nil {
		return
	}
	kv.Key, kv.Value = nil, nil
	kvPool.Put(kv)
}

// recordToKV builds a pooled KeyValue snapshot of a record under a
// given key. The returned value owns a copy of key so it stays valid
// after the storage key it was read under is reused.
func recordToKV(key []byte, r *MVCCRecord) *mvccpb.KeyValue {
	kv := getKV()
	kv.Key = append([]byte(nil), key...)
	kv.Value = r.Value
	kv.CreateRevision = r.CreateRevision
	kv.ModRevision = r.ModRevision
	kv.Version = r.Version
	return kv
}

var kvSlicePool = sync.Pool{New: func() any {
	s := make([]*mvccpb.KeyValue, 0, 32)
	return &s
}}

func getKVSlice() []*mvccpb.KeyValue {
	p := kvSlicePool.Get().(*[]*mvccpb.KeyValue)
	return (*p)[:0]
}

func putKVSlice(s []*mvccpb.KeyValue) {
	for i := range s {
		putKV(s[i])
		s[i] = nil
	}
	s = s[:0]
	kvSlicePool.Put(&s)
}

// PutResult is returned by Store.Put.
type PutResult struct {
	Code     Code
	Revision Revision
	PrevKV   *mvccpb.KeyValue // present iff requested and the key previously existed

	// isNewKey records whether this put created a key that didn't
	// previously exist, so a successful commit can adjust Store.liveKeys
	// without re-deriving it from PrevKV/Code.
	isNewKey bool
}

var putResultPool = sync.Pool{New: func() any { return &PutResult{} }}

func acquirePutResult() *PutResult {
	r := putResultPool.Get().(*PutResult)
	*r = PutResult{}
	return r
}

// Recycle returns the result's internal buffers to their pools. The
// engine must not touch r again afterward.
func (r *PutResult) Recycle() {
	if r == nil {
		return
	}
	putKV(r.PrevKV)
	r.PrevKV = nil
	putResultPool.Put(r)
}

// DeleteResult is returned by Store.Delete.
type DeleteResult struct {
	Code       Code
	Revision   Revision
	NumDeleted int64                // accurate even when PrevKVs is empty
	PrevKVs    []*mvccpb.KeyValue   // empty unless requested
}

var deleteResultPool = sync.Pool{New: func() any { return &DeleteResult{} }}

func acquireDeleteResult() *DeleteResult {
	r := deleteResultPool.Get().(*DeleteResult)
	*r = DeleteResult{}
	return r
}

func (r *DeleteResult) Recycle() {
	if r == nil {
		return
	}
	if r.PrevKVs != nil {
		putKVSlice(r.PrevKVs)
	}
	r.PrevKVs = nil
	deleteResultPool.Put(r)
}

// RangeResult is returned by Store.Range.
type RangeResult struct {
	Code     Code
	Revision Revision
	Kvs      []*mvccpb.KeyValue // ascending by byte-lex key
	Count    int64
	HasMore  bool
}

var rangeResultPool = sync.Pool{New: func() any { return &RangeResult{} }}

func acquireRangeResult() *RangeResult {
	r := rangeResultPool.Get().(*RangeResult)
	*r = RangeResult{}
	return r
}

func (r *RangeResult) Recycle() {
	if r == nil {
		return
	}
	if r.Kvs != nil {
		putKVSlice(r.Kvs)
	}
	r.Kvs = nil
	rangeResultPool.Put(r)
}

// TxnResult is returned by Store.Txn. Results mirrors the executed op
// list positionally; each element is one of *PutResult, *DeleteResult
// or *RangeResult.
type TxnResult struct {
	Code     Code
	Revision Revision
	Success  bool
	Results  []any
}

var txnResultPool = sync.Pool{New: func() any { return &TxnResult{} }}

func acquireTxnResult() *TxnResult {
	r := txnResultPool.Get().(*TxnResult)
	*r = TxnResult{}
	return r
}

// Recycle recycles every sub-result before returning the TxnResult
// itself to its pool.
func (r *TxnResult) Recycle() {
	if r == nil {
		return
	}
	for _, sub := range r.Results {
		switch v := sub.(type) {
		case *PutResult:
			v.Recycle()
		case *DeleteResult:
			v.Recycle()
		case *RangeResult:
			v.Recycle()
		}
	}
	r.Results = nil
	txnResultPool.Put(r)
}
