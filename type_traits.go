// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package columnar

import (
	"unsafe"

	"github.com/JohnCGriffin/overflow"
	"golang.org/x/exp/constraints"
)

const (
	Int8SizeBytes    = int(unsafe.Sizeof(int8(0)))
	Int16SizeBytes   = int(unsafe.Sizeof(int16(0)))
	Int32SizeBytes   = int(unsafe.Sizeof(int32(0)))
	Int64SizeBytes   = int(unsafe.Sizeof(int64(0)))
	Uint8SizeBytes   = int(unsafe.Sizeof(uint8(0)))
	Uint16SizeBytes  = int(unsafe.Sizeof(uint16(0)))
	Uint32SizeBytes  = int(unsafe.Sizeof(uint32(0)))
	Uint64SizeBytes  = int(unsafe.Sizeof(uint64(0)))
	Float32SizeBytes = int(unsafe.Sizeof(float32(0)))
	Float64SizeBytes = int(unsafe.Sizeof(float64(0)))
)

// FixedWidthType is the constraint of Go value types that back the
// fixed-width data types of this package.
type FixedWidthType interface {
	constraints.Integer | constraints.Float
}

// BytesRequired returns the number of bytes required to store n elements
// backed by Go type T, panicking if the computation would overflow.
func BytesRequired[T FixedWidthType](n int) int {
	var zero T
	sz, ok := overflow.Mul(n, int(unsafe.Sizeof(zero)))
	if !ok {
		panic("columnar: buffer size overflows int")
	}
	return sz
}

// CastFromBytes reinterprets the slice b to a slice of type T.
//
// NOTE: len(b) must be a multiple of T's size.
func CastFromBytes[T FixedWidthType](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	ptr := (*T)(unsafe.Pointer(&b[0]))
	size := int(unsafe.Sizeof(*ptr))
	return unsafe.Slice(ptr, cap(b)/size)[: len(b)/size : cap(b)/size]
}

// CastToBytes reinterprets the slice s to a slice of bytes.
func CastToBytes[T FixedWidthType](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(s[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), cap(s)*size)[: len(s)*size : cap(s)*size]
}
