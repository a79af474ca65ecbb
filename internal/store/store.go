// Copyright 2025 The axfor Authors
// Licensed under the Apache License, Version 2.0

// Package store defines the ordered key-value engine that the MVCC
// layer (internal/mvcc) is built on top of. It is intentionally the
// thinnest possible contract: byte-lexicographic get/iterate plus an
// atomic write batch. Everything above it (versioning, revisions,
// ranges, transactions) is the MVCC engine's concern, not this one's.
package store

// Iterator is a forward cursor over an Engine's key space in
// byte-lexicographic order.
type Iterator interface {
	// Seek positions the iterator at the first key >= key.
	Seek(key []byte)

	// SeekToFirst positions the iterator at the smallest key in the
	// engine.
	SeekToFirst()

	// SeekToLast positions the iterator at the largest key in the
	// engine.
	SeekToLast()

	// Valid reports whether the iterator is positioned at an entry.
	Valid() bool

	// Key returns the key at the current position. Only valid to call
	// while Valid() is true; the returned slice must not be retained
	// past the next iterator call.
	Key() []byte

	// Value returns the value at the current position, with the same
	// retention rule as Key.
	Value() []byte

	// Next advances the iterator to the next key in ascending order.
	Next()

	// Close releases resources held by the iterator.
	Close()
}

// WriteBatch stages a set of mutations for atomic application via
// Engine.Write. A batch that is never passed to Write has no effect.
type WriteBatch interface {
	// Put stages an upsert of key to value.
	Put(key, value []byte)

	// Delete stages removal of a single key.
	Delete(key []byte)

	// DeleteRange stages removal of every key in [start, end).
	DeleteRange(start, end []byte)
}

// Engine is the ordered key-value engine assumed by the MVCC layer: a
// single logical column family offering point get, forward iteration,
// and atomic write-batch commit over byte-lexicographically ordered
// keys.
type Engine interface {
	// Get returns the value stored at key, or ok=false if absent.
	Get(key []byte) (value []byte, ok bool, err error)

	// NewIterator returns a fresh forward iterator. The caller must
	// Close it.
	NewIterator() Iterator

	// NewWriteBatch returns an empty batch ready to accumulate
	// mutations for this engine.
	NewWriteBatch() WriteBatch

	// Write atomically applies every mutation staged in b. Either all
	// of b's mutations become visible or none do.
	Write(b WriteBatch) error

	// Close releases the engine's resources. Subsequent calls on the
	// engine are not valid.
	Close() error
}
