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
	"bytes"
	"fmt"
	"time"
)

// Txn evaluates op's compares against the current state and then runs
// exactly one of SuccessOps or FailureOps, all under the single store
// lock so the whole transaction is atomic with respect to every other
// operation. A compare naming a key with no live record aborts the
// transaction with ErrKeyNotFound rather than resolving to some
// default truth value: VALUE/MOD/CREATE/VERSION comparisons have no
// sensible answer against an absent record, and silently treating one
// as false would hide a caller bug behind an ordinary failed-guard
// outcome.
func (s *Store) Txn(op TxnOp) (*TxnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	result := acquireTxnResult()
	result.Revision = op.Revision
	result.Code = OK

	succeeded := true
	for _, cmp := range op.Compares {
		ok, err := s.evalCompare(cmp)
		if err != nil {
			result.Recycle()
			s.observe("txn", start, err)
			return nil, err
		}
		if !ok {
			succeeded = false
			break
		}
	}
	result.Success = succeeded

	branch := op.SuccessOps
	if !succeeded {
		branch = op.FailureOps
	}

	results, err := s.execBranchLocked(branch)
	if err != nil {
		result.Recycle()
		s.observe("txn", start, err)
		return nil, err
	}

	result.Results = results
	s.observe("txn", start, nil)
	return result, nil
}

// execBranchLocked runs ops in order against the already-locked store,
// collecting one sub-result per op. Every Put/Delete in the branch
// stages its mutation into a single write batch instead of committing
// individually, and that batch is committed exactly once after every
// op has staged successfully — mirroring the teacher's
// rocksdb_store.go Commit(), which builds one grocksdb.WriteBatch for
// the whole chosen branch and calls db.Write a single time. That way a
// branch with several mutating ops is genuinely atomic: a failure
// staging or committing leaves every prior op's mutation uncommitted,
// never partially applied. Each op already carries its own revision
// from its builder (Build rejects an unset one), so no inheritance
// from the enclosing TxnOp is needed here.
func (s *Store) execBranchLocked(ops []Op) ([]any, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	batch := s.eng.NewWriteBatch()
	results := make([]any, 0, len(ops))
	for _, raw := range ops {
		switch o := raw.(type) {
		case PutOp:
			r, err := s.putIntoBatch(batch, o)
			if err != nil {
				recycleAll(results)
				return nil, err
			}
			results = append(results, r)
		case DeleteOp:
			r, err := s.deleteIntoBatch(batch, o)
			if err != nil {
				recycleAll(results)
				return nil, err
			}
			results = append(results, r)
		case RangeOp:
			r, err := s.rangeLocked(o)
			if err != nil {
				recycleAll(results)
				return nil, err
			}
			results = append(results, r)
		default:
			recycleAll(results)
			return nil, fmt.Errorf("mvcc: op kind %T not valid inside a transaction branch", raw)
		}
	}

	if err := s.eng.Write(batch); err != nil {
		recycleAll(results)
		return nil, err
	}
	for _, r := range results {
		switch v := r.(type) {
		case *PutResult:
			if v.Code == OK {
				s.applyKeyDelta(v.isNewKey, 0)
			}
		case *DeleteResult:
			s.applyKeyDelta(false, v.NumDeleted)
		}
	}
	return results, nil
}

func recycleAll(results []any) {
	for _, r := range results {
		switch v := r.(type) {
		case *PutResult:
			v.Recycle()
		case *DeleteResult:
			v.Recycle()
		case *RangeResult:
			v.Recycle()
		}
	}
}

// evalCompare resolves one CompareOp against the record currently
// stored under cmp.Key.
func (s *Store) evalCompare(cmp CompareOp) (bool, error) {
	rec, ok, err := s.getRecord(cmp.Key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrKeyNotFound, cmp.Key)
	}

	if cmp.Target == TargetValue {
		return compareBytes(rec.Value, cmp.Value, cmp.Result), nil
	}

	var actual int64
	switch cmp.Target {
	case TargetMod:
		actual = rec.ModRevision
	case TargetCreate:
		actual = rec.CreateRevision
	case TargetVersion:
		actual = rec.Version
	}
	return compareInt(actual, cmp.Revision, cmp.Result), nil
}

func compareInt(actual, want int64, result CompareResult) bool {
	switch result {
	case ResultLess:
		return actual < want
	case ResultEqual:
		return actual == want
	case ResultGreater:
		return actual > want
	case ResultNotEqual:
		return actual != want
	default:
		return false
	}
}

func compareBytes(actual, want []byte, result CompareResult) bool {
	c := bytes.Compare(actual, want)
	switch result {
	case ResultLess:
		return c < 0
	case ResultEqual:
		return c == 0
	case ResultGreater:
		return c > 0
	case ResultNotEqual:
		return c != 0
	default:
		return false
	}
}
