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

	mvccpb "go.etcd.io/etcd/api/v3/mvccpb"

	"metakv/pkg/config"
)

// TypedKeyValue is a decoded view of one stored record. The engine
// and Store manipulate encoded bytes exclusively; this is where those
// bytes turn back into application types K and V for a caller of
// TypedStore.
type TypedKeyValue[K, V any] struct {
	Key            K
	Value          V
	CreateRevision int64
	ModRevision    int64
	Version        int64
}

// TypedStore layers application key/value types over a byte-level
// Store using an injected ByteCodec pair, exactly the "encode at the
// boundary, engine manipulates bytes exclusively" shape the store's
// data model calls for. Store itself stays non-generic (Go doesn't
// allow a generic field to hide behind Store's concrete type), so
// this is the concrete generic facade callers are expected to use.
type TypedStore[K, V any] struct {
	store    *Store
	keyCoder ByteCodec[K]
	valCoder ByteCodec[V]
}

// NewTypedStore wraps an already-initialized Store with the given
// codecs.
func NewTypedStore[K, V any](s *Store, keyCoder ByteCodec[K], valCoder ByteCodec[V]) *TypedStore[K, V] {
	return &TypedStore[K, V]{store: s, keyCoder: keyCoder, valCoder: valCoder}
}

// NewTypedStoreFromSpec recovers the codecs a Store was configured
// with (config.StoreSpec.KeyCoder/ValCoder, carried as `any` because a
// StoreSpec must be constructible without knowing K and V) and builds
// a TypedStore around them. Returns an error if the spec's codecs
// aren't actually ByteCodec[K]/ByteCodec[V].
func NewTypedStoreFromSpec[K, V any](s *Store, spec config.StoreSpec) (*TypedStore[K, V], error) {
	keyCoder, ok := spec.KeyCoder.(ByteCodec[K])
	if !ok {
		var zero K
		return nil, fmt.Errorf("mvcc: spec key coder is %T, not mvcc.ByteCodec[%T]", spec.KeyCoder, zero)
	}
	valCoder, ok := spec.ValCoder.(ByteCodec[V])
	if !ok {
		var zero V
		return nil, fmt.Errorf("mvcc: spec val coder is %T, not mvcc.ByteCodec[%T]", spec.ValCoder, zero)
	}
	return NewTypedStore(s, keyCoder, valCoder), nil
}

// Put encodes key and value and upserts them.
func (t *TypedStore[K, V]) Put(key K, value V, rev Revision, prevKV bool) (*PutResult, error) {
	op, err := NewPutOp(t.keyCoder.Encode(key)).Value(t.valCoder.Encode(value)).Revision(rev).WithPrevKV(prevKV).Build()
	if err != nil {
		return nil, err
	}
	return t.store.Put(op)
}

// Delete encodes key and removes it.
func (t *TypedStore[K, V]) Delete(key K, rev Revision, prevKV bool) (*DeleteResult, error) {
	op, err := NewDeleteOp().SingleKey(t.keyCoder.Encode(key)).Revision(rev).WithPrevKV(prevKV).Build()
	if err != nil {
		return nil, err
	}
	return t.store.Delete(op)
}

// Get looks up a single key, decoding the result if present.
func (t *TypedStore[K, V]) Get(key K) (kv TypedKeyValue[K, V], ok bool, err error) {
	op, err := NewRangeOp().SingleKey(t.keyCoder.Encode(key)).Build()
	if err != nil {
		return TypedKeyValue[K, V]{}, false, err
	}
	rr, err := t.store.Range(op)
	if err != nil {
		return TypedKeyValue[K, V]{}, false, err
	}
	defer rr.Recycle()
	if rr.Count == 0 {
		return TypedKeyValue[K, V]{}, false, nil
	}
	kv, err = t.decode(rr.Kvs[0])
	return kv, err == nil, err
}

// Range decodes every record in [start, end] (end inclusive), capped at
// limit (0 means unbounded).
func (t *TypedStore[K, V]) Range(start, end K, limit int64) (kvs []TypedKeyValue[K, V], hasMore bool, err error) {
	op, err := NewRangeOp().Range(t.keyCoder.Encode(start), t.keyCoder.Encode(end)).Limit(limit).Build()
	if err != nil {
		return nil, false, err
	}
	rr, err := t.store.Range(op)
	if err != nil {
		return nil, false, err
	}
	defer rr.Recycle()

	out := make([]TypedKeyValue[K, V], 0, len(rr.Kvs))
	for _, raw := range rr.Kvs {
		decoded, err := t.decode(raw)
		if err != nil {
			return nil, false, err
		}
		out = append(out, decoded)
	}
	return out, rr.HasMore, nil
}

func (t *TypedStore[K, V]) decode(raw *mvccpb.KeyValue) (TypedKeyValue[K, V], error) {
	key, err := t.keyCoder.Decode(raw.Key)
	if err != nil {
		return TypedKeyValue[K, V]{}, err
	}
	value, err := t.valCoder.Decode(raw.Value)
	if err != nil {
		return TypedKeyValue[K, V]{}, err
	}
	return TypedKeyValue[K, V]{
		Key:            key,
		Value:          value,
		CreateRevision: raw.CreateRevision,
		ModRevision:    raw.ModRevision,
		Version:        raw.Version,
	}, nil
}
