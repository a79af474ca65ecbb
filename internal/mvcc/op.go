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

import "math"

// OpKind tags which concrete Op variant a value holds. The source this
// was ported from dispatches on op kind via inheritance and runtime
// type tests; here each variant is a distinct value type and dispatch
// is a type switch in the engine executor (see engine.go, txn.go).
type OpKind int

const (
	OpPut OpKind = iota
	OpDelete
	OpRange
	OpTxn
	OpCompare
)

// Op is the tagged-variant interface every operation descriptor
// satisfies. Only this package's own types may implement it.
type Op interface {
	Kind() OpKind
	isOp()
}

// CompareTarget names which field of a record a CompareOp inspects.
type CompareTarget int

const (
	TargetMod CompareTarget = iota
	TargetCreate
	TargetVersion
	TargetValue
)

// CompareResult names the predicate a CompareOp evaluates.
type CompareResult int

const (
	ResultLess CompareResult = iota
	ResultEqual
	ResultGreater
	ResultNotEqual
)

// PutOp upserts a single key.
type PutOp struct {
	Key      []byte
	Value    []byte
	Revision Revision
	PrevKV   bool
}

func (PutOp) Kind() OpKind { return OpPut }
func (PutOp) isOp()        {}

// PutOpBuilder builds a PutOp. Key and Revision are required.
type PutOpBuilder struct {
	op PutOp
	rs bool // revision set
}

// NewPutOp starts building a put of key.
func NewPutOp(key []byte) *PutOpBuilder {
	return &PutOpBuilder{op: PutOp{Key: key}}
}

func (b *PutOpBuilder) Value(v []byte) *PutOpBuilder { b.op.Value = v; return b }

func (b *PutOpBuilder) Revision(r Revision) *PutOpBuilder {
	b.op.Revision = r
	b.rs = true
	return b
}

func (b *PutOpBuilder) WithPrevKV(v bool) *PutOpBuilder { b.op.PrevKV = v; return b }

// Build validates required fields and returns the immutable PutOp.
func (b *PutOpBuilder) Build() (PutOp, error) {
	if len(b.op.Key) == 0 {
		return PutOp{}, ErrEmptyKey
	}
	if !b.rs {
		return PutOp{}, ErrMissingField
	}
	return b.op, nil
}

// DeleteOp removes a key or a range of keys.
type DeleteOp struct {
	Key      []byte // nullable start of range when IsRange
	EndKey   []byte // nullable end of range when IsRange
	IsRange  bool
	Revision Revision
	PrevKV   bool
}

func (DeleteOp) Kind() OpKind { return OpDelete }
func (DeleteOp) isOp()        {}

// DeleteOpBuilder builds a DeleteOp. Revision is required; exactly one
// of SingleKey or Range must be called.
type DeleteOpBuilder struct {
	op       DeleteOp
	rs, keyed bool
}

func NewDeleteOp() *DeleteOpBuilder {
	return &DeleteOpBuilder{}
}

// SingleKey marks this as a point delete of key.
func (b *DeleteOpBuilder) SingleKey(key []byte) *DeleteOpBuilder {
	b.op.Key = key
	b.op.IsRange = false
	b.keyed = true
	return b
}

// Range marks this as a range delete over [start, end], either bound
// nullable to mean open-ended.
func (b *DeleteOpBuilder) Range(start, end []byte) *DeleteOpBuilder {
	b.op.Key = start
	b.op.EndKey = end
	b.op.IsRange = true
	b.keyed = true
	return b
}

func (b *DeleteOpBuilder) Revision(r Revision) *DeleteOpBuilder {
	b.op.Revision = r
	b.rs = true
	return b
}

func (b *DeleteOpBuilder) WithPrevKV(v bool) *DeleteOpBuilder { b.op.PrevKV = v; return b }

func (b *DeleteOpBuilder) Build() (DeleteOp, error) {
	if !b.keyed {
		return DeleteOp{}, ErrMissingField
	}
	if !b.op.IsRange && len(b.op.Key) == 0 {
		return DeleteOp{}, ErrEmptyKey
	}
	if !b.rs {
		return DeleteOp{}, ErrMissingField
	}
	return b.op, nil
}

// RangeOp reads a single key or a range of keys, with optional
// revision-range filters.
type RangeOp struct {
	Key, EndKey                          []byte
	IsRange                              bool
	Limit                                int64
	Revision                             Revision
	MinModRev, MaxModRev                 int64
	MinCreateRev, MaxCreateRev           int64
}

func (RangeOp) Kind() OpKind { return OpRange }
func (RangeOp) isOp()        {}

// RangeOpBuilder builds a RangeOp. Filter fields default to "no
// constraint" (zero for min, max int64 for max) unless overridden.
type RangeOpBuilder struct {
	op    RangeOp
	keyed bool
}

func NewRangeOp() *RangeOpBuilder {
	return &RangeOpBuilder{op: RangeOp{
		MaxModRev:    math.MaxInt64,
		MaxCreateRev: math.MaxInt64,
	}}
}

// SingleKey marks this as a point lookup of key.
func (b *RangeOpBuilder) SingleKey(key []byte) *RangeOpBuilder {
	b.op.Key = key
	b.op.IsRange = false
	b.keyed = true
	return b
}

// Range marks this as a range scan over [start, end], either bound
// nullable to mean open-ended.
func (b *RangeOpBuilder) Range(start, end []byte) *RangeOpBuilder {
	b.op.Key = start
	b.op.EndKey = end
	b.op.IsRange = true
	b.keyed = true
	return b
}

func (b *RangeOpBuilder) Limit(n int64) *RangeOpBuilder       { b.op.Limit = n; return b }
func (b *RangeOpBuilder) Revision(r Revision) *RangeOpBuilder { b.op.Revision = r; return b }
func (b *RangeOpBuilder) MinModRevision(r int64) *RangeOpBuilder {
	b.op.MinModRev = r
	return b
}
func (b *RangeOpBuilder) MaxModRevision(r int64) *RangeOpBuilder {
	b.op.MaxModRev = r
	return b
}
func (b *RangeOpBuilder) MinCreateRevision(r int64) *RangeOpBuilder {
	b.op.MinCreateRev = r
	return b
}
func (b *RangeOpBuilder) MaxCreateRevision(r int64) *RangeOpBuilder {
	b.op.MaxCreateRev = r
	return b
}

func (b *RangeOpBuilder) Build() (RangeOp, error) {
	if !b.keyed {
		return RangeOp{}, ErrMissingField
	}
	if !b.op.IsRange && len(b.op.Key) == 0 {
		return RangeOp{}, ErrEmptyKey
	}
	return b.op, nil
}

// CompareOp is one predicate of a transaction's guard.
type CompareOp struct {
	Key      []byte
	Target   CompareTarget
	Result   CompareResult
	Revision int64  // compared against MOD/CREATE/VERSION
	Value    []byte // compared against VALUE
}

func (CompareOp) Kind() OpKind { return OpCompare }
func (CompareOp) isOp()        {}

// CompareOpBuilder builds a CompareOp. Key is required.
type CompareOpBuilder struct {
	op CompareOp
}

func NewCompareOp(key []byte) *CompareOpBuilder {
	return &CompareOpBuilder{op: CompareOp{Key: key}}
}

func (b *CompareOpBuilder) Target(t CompareTarget) *CompareOpBuilder { b.op.Target = t; return b }
func (b *CompareOpBuilder) Result(r CompareResult) *CompareOpBuilder { b.op.Result = r; return b }
func (b *CompareOpBuilder) Revision(r int64) *CompareOpBuilder       { b.op.Revision = r; return b }
func (b *CompareOpBuilder) Value(v []byte) *CompareOpBuilder         { b.op.Value = v; return b }

func (b *CompareOpBuilder) Build() (CompareOp, error) {
	if len(b.op.Key) == 0 {
		return CompareOp{}, ErrEmptyKey
	}
	return b.op, nil
}

// TxnOp is an atomic compare-then-branch-then-commit batch.
type TxnOp struct {
	Revision   Revision
	Compares   []CompareOp
	SuccessOps []Op
	FailureOps []Op
}

func (TxnOp) Kind() OpKind { return OpTxn }
func (TxnOp) isOp()        {}

// TxnOpBuilder builds a TxnOp. Revision is required.
type TxnOpBuilder struct {
	op TxnOp
	rs bool
}

func NewTxnOp() *TxnOpBuilder {
	return &TxnOpBuilder{}
}

func (b *TxnOpBuilder) Revision(r Revision) *TxnOpBuilder {
	b.op.Revision = r
	b.rs = true
	return b
}

func (b *TxnOpBuilder) If(cmps ...CompareOp) *TxnOpBuilder {
	b.op.Compares = append(b.op.Compares, cmps...)
	return b
}

func (b *TxnOpBuilder) Then(ops ...Op) *TxnOpBuilder {
	b.op.SuccessOps = append(b.op.SuccessOps, ops...)
	return b
}

func (b *TxnOpBuilder) Else(ops ...Op) *TxnOpBuilder {
	b.op.FailureOps = append(b.op.FailureOps, ops...)
	return b
}

func (b *TxnOpBuilder) Build() (TxnOp, error) {
	if !b.rs {
		return TxnOp{}, ErrMissingField
	}
	return b.op, nil
}
