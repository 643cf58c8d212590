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

package array

import (
	"fmt"
	"sync/atomic"

	"github.com/columnar-go/columnar"
	"github.com/columnar-go/columnar/bitutil"
	"github.com/columnar-go/columnar/internal/debug"
)

// Interface represents an immutable sequence of values.
type Interface interface {
	fmt.Stringer

	// DataType returns the type metadata for this instance.
	DataType() columnar.DataType

	// NullN returns the number of null values in the array.
	NullN() int

	// NullBitmapBytes returns a byte slice of the validity bitmap.
	NullBitmapBytes() []byte

	// IsNull returns true if value at index is null.
	// NOTE: IsNull will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsNull(i int) bool

	// IsValid returns true if value at index is not null.
	// NOTE: IsValid will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
	IsValid(i int) bool

	Data() *Data

	// Len returns the number of elements in the array.
	Len() int

	// Retain increases the reference count by 1.
	// Retain may be called simultaneously from multiple goroutines.
	Retain()

	// Release decreases the reference count by 1.
	// Release may be called simultaneously from multiple goroutines.
	// When the reference count goes to zero, the memory is freed.
	Release()
}

// arrayMarshaler is implemented by all arrays of the package to marshal a
// single element to its JSON representation.
type arrayMarshaler interface {
	getOneForMarshal(i int) interface{}
}

type array struct {
	refCount        int64
	data            *Data
	nullBitmapBytes []byte
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (a *array) Retain() {
	atomic.AddInt64(&a.refCount, 1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (a *array) Release() {
	debug.Assert(atomic.LoadInt64(&a.refCount) > 0, "too many releases")

	if atomic.AddInt64(&a.refCount, -1) == 0 {
		a.data.Release()
		a.data, a.nullBitmapBytes = nil, nil
	}
}

// DataType returns the type metadata for this instance.
func (a *array) DataType() columnar.DataType { return a.data.dtype }

// NullN returns the number of null values in the array.
func (a *array) NullN() int {
	if a.data.nulls < 0 {
		a.data.nulls = a.data.length - bitutil.CountSetBits(a.nullBitmapBytes, a.data.offset, a.data.length)
	}
	return a.data.nulls
}

// NullBitmapBytes returns a byte slice of the validity bitmap.
func (a *array) NullBitmapBytes() []byte { return a.nullBitmapBytes }

func (a *array) Data() *Data { return a.data }

// Len returns the number of elements in the array.
func (a *array) Len() int { return a.data.length }

// IsNull returns true if value at index is null.
// NOTE: IsNull will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
func (a *array) IsNull(i int) bool {
	return len(a.nullBitmapBytes) != 0 && bitutil.BitIsNotSet(a.nullBitmapBytes, a.data.offset+i)
}

// IsValid returns true if value at index is not null.
// NOTE: IsValid will panic if NullBitmapBytes is not empty and 0 > i ≥ Len.
func (a *array) IsValid(i int) bool {
	return len(a.nullBitmapBytes) == 0 || bitutil.BitIsSet(a.nullBitmapBytes, a.data.offset+i)
}

func (a *array) setData(data *Data) {
	// Retain before releasing in case a.data is the same as data.
	data.Retain()

	if a.data != nil {
		a.data.Release()
	}

	if len(data.buffers) > 0 && data.buffers[0] != nil {
		a.nullBitmapBytes = data.buffers[0].Bytes()
	} else {
		a.nullBitmapBytes = nil
	}
	a.data = data
}

func (a *array) Offset() int { return a.data.Offset() }

// MakeFromData constructs an array from the passed in data.
func MakeFromData(data *Data) Interface {
	switch data.dtype.ID() {
	case columnar.INT8:
		return NewInt8Data(data)
	case columnar.INT16:
		return NewInt16Data(data)
	case columnar.INT32:
		return NewInt32Data(data)
	case columnar.INT64:
		return NewInt64Data(data)
	case columnar.UINT8:
		return NewUint8Data(data)
	case columnar.UINT16:
		return NewUint16Data(data)
	case columnar.UINT32:
		return NewUint32Data(data)
	case columnar.UINT64:
		return NewUint64Data(data)
	case columnar.FLOAT32:
		return NewFloat32Data(data)
	case columnar.FLOAT64:
		return NewFloat64Data(data)
	case columnar.STRING:
		return NewStringData(data)
	case columnar.DICTIONARY:
		return NewDictionaryData(data)
	default:
		panic(fmt.Errorf("columnar/array: unsupported data type %v", data.dtype.ID()))
	}
}

// NewSlice constructs a zero-copy slice of the array with the indicated
// indices i and j, only the selected portion is visible in the result.
//
// The returned array must be released by the caller.
func NewSlice(arr Interface, i, j int64) Interface {
	data := NewSliceData(arr.Data(), i, j)
	slice := MakeFromData(data)
	data.Release()
	return slice
}
