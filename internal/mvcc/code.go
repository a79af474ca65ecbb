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

// Code is the operation-level status carried on every result. It is the
// caller-recoverable half of the error model; fatal conditions are
// returned as a Go error instead (see errors.go).
type Code int

const (
	// OK means the operation completed as requested.
	OK Code = iota

	// SmallerRevision means a put targeted an existing key whose
	// mod_rev is already >= the put's revision. No mutation occurred.
	SmallerRevision

	// KeyNotFound names a key that has no live record. Store does not
	// set it on any result: a compare against a missing key fails the
	// Txn with ErrKeyNotFound, and a point lookup of a missing key
	// returns OK with Count 0.
	KeyNotFound

	// IllegalOp means the requested op shape is not well-formed for
	// the operation being performed.
	IllegalOp

	// InvalidState means the store (or an iterator derived from it)
	// was not in the state required to service the call.
	InvalidState

	// InternalError means the underlying engine or codec failed in a
	// way that does not reflect the caller's request.
	InternalError

	// UnsupportedOp means the deprecated non-MVCC mutators were
	// invoked; callers must use the op-based API.
	UnsupportedOp
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case SmallerRevision:
		return "SMALLER_REVISION"
	case KeyNotFound:
		return "KEY_NOT_FOUND"
	case IllegalOp:
		return "ILLEGAL_OP"
	case InvalidState:
		return "INVALID_STATE"
	case InternalError:
		return "INTERNAL_ERROR"
	case UnsupportedOp:
		return "UNSUPPORTED_OP"
	default:
		return "UNKNOWN"
	}
}
