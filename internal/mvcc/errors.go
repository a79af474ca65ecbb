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

import "errors"

// Raised-failure sentinels: the fatal channel of the error model. Code
// (see code.go) covers the caller-recoverable channel; these are
// returned instead when the engine must abort the current operation,
// roll back any uncommitted batch and recycle partial results.
var (
	// ErrClosed is returned when operating on a store that is not OPEN.
	ErrClosed = errors.New("mvcc: store is not open")

	// ErrAlreadyInitialized is returned by Init on a store that has
	// already left the UNINITIALIZED state.
	ErrAlreadyInitialized = errors.New("mvcc: store already initialized")

	// ErrEmptyKey is returned when an empty key is supplied to an op
	// that requires one.
	ErrEmptyKey = errors.New("mvcc: empty key is not allowed")

	// ErrInvalidData is returned when a stored record fails to decode.
	ErrInvalidData = errors.New("mvcc: invalid record data")

	// ErrKeyNotFound is returned when a CompareOp names a key with no
	// live record. Unlike Range, a compare has no way to express
	// "absent" as a result value, so a missing key aborts the
	// transaction instead of silently evaluating one way or the other.
	ErrKeyNotFound = errors.New("mvcc: key not found")

	// ErrIteratorClosed is returned when Next is called on a closed
	// RangeIterator, or on one invalidated by the store's Close.
	ErrIteratorClosed = errors.New("mvcc: iterator is closed")

	// ErrMissingField is returned by an Op builder's Build when a
	// required field was never set.
	ErrMissingField = errors.New("mvcc: required field not set")
)
