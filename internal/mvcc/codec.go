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

// ByteCodec is the small capability set a caller injects for one of
// the store's key or value types: encode to bytes, decode back. The
// engine only ever manipulates the encoded byte forms; it never
// constructs or inspects T itself.
type ByteCodec[T any] struct {
	Encode func(T) []byte
	Decode func([]byte) (T, error)
}

// RawBytes is the identity codec: useful when the caller already deals
// in []byte and has no framing of their own.
func RawBytes() ByteCodec[[]byte] {
	return ByteCodec[[]byte]{
		Encode: func(b []byte) []byte { return b },
		Decode: func(b []byte) ([]byte, error) { return b, nil },
	}
}
