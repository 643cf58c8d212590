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
	"sync/atomic"

	"github.com/columnar-go/columnar"
	"github.com/columnar-go/columnar/bitutil"
	"github.com/columnar-go/columnar/internal/debug"
	"github.com/columnar-go/columnar/memory"
)

// NumericBuilder builds an array of fixed-width numeric values using the
// Append methods.
type NumericBuilder[T columnar.FixedWidthType] struct {
	builder

	dtype   columnar.DataType
	data    *memory.Buffer
	rawData []T
}

func newNumericBuilder[T columnar.FixedWidthType](mem memory.Allocator, dtype columnar.DataType) *NumericBuilder[T] {
	return &NumericBuilder[T]{builder: builder{refCount: 1, mem: mem}, dtype: dtype}
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (b *NumericBuilder[T]) Release() {
	debug.Assert(atomic.LoadInt64(&b.refCount) > 0, "too many releases")

	if atomic.AddInt64(&b.refCount, -1) == 0 {
		if b.nullBitmap != nil {
			b.nullBitmap.Release()
			b.nullBitmap = nil
		}
		if b.data != nil {
			b.data.Release()
			b.data = nil
			b.rawData = nil
		}
	}
}

// Append appends v to the builder.
func (b *NumericBuilder[T]) Append(v T) {
	b.Reserve(1)
	b.UnsafeAppend(v)
}

// AppendNull appends a null value to the builder.
func (b *NumericBuilder[T]) AppendNull() {
	b.Reserve(1)
	b.UnsafeAppendBoolToBitmap(false)
}

// UnsafeAppend appends v without checking capacity; Reserve must have been
// called beforehand.
func (b *NumericBuilder[T]) UnsafeAppend(v T) {
	bitutil.SetBit(b.nullBitmap.Bytes(), b.length)
	b.rawData[b.length] = v
	b.length++
}

// AppendValues will append the values in the v slice. The valid slice determines which values
// in v are valid (not null). The valid slice must either be empty or be equal in length to v. If empty,
// all values in v are appended and considered valid.
func (b *NumericBuilder[T]) AppendValues(v []T, valid []bool) {
	if len(v) != len(valid) && len(valid) != 0 {
		panic("len(v) != len(valid) && len(valid) != 0")
	}

	if len(v) == 0 {
		return
	}

	b.Reserve(len(v))
	copy(b.rawData[b.length:], v)
	b.builder.unsafeAppendBoolsToBitmap(valid, len(v))
}

// Value returns the i-th value appended so far.
func (b *NumericBuilder[T]) Value(i int) T { return b.rawData[i] }

func (b *NumericBuilder[T]) init(capacity int) {
	b.builder.init(capacity)

	b.data = memory.NewResizableBuffer(b.mem)
	bytesN := columnar.BytesRequired[T](capacity)
	b.data.Resize(bytesN)
	b.rawData = columnar.CastFromBytes[T](b.data.Bytes())
}

// Reserve ensures there is enough space for appending n elements
// by checking the capacity and calling Resize if necessary.
func (b *NumericBuilder[T]) Reserve(n int) {
	b.builder.reserve(n, b.Resize)
}

// Resize adjusts the space allocated by b to n elements. If n is greater than b.Cap(),
// additional memory will be allocated. If n is smaller, the allocated memory may reduced.
func (b *NumericBuilder[T]) Resize(n int) {
	nBuilder := n
	if n < minBuilderCapacity {
		n = minBuilderCapacity
	}

	if b.capacity == 0 {
		b.init(n)
	} else {
		b.builder.resize(nBuilder, b.init)
		b.data.Resize(columnar.BytesRequired[T](n))
		b.rawData = columnar.CastFromBytes[T](b.data.Bytes())
	}
}

// NewArray creates an array from the memory buffers used by the builder and
// resets the builder so it can be used to build a new array.
func (b *NumericBuilder[T]) NewArray() Interface {
	return b.NewNumericArray()
}

// NewNumericArray creates an array from the memory buffers used by the
// builder and resets the builder so it can be used to build a new array.
func (b *NumericBuilder[T]) NewNumericArray() (a *Numeric[T]) {
	data := b.newData()
	a = newNumericData[T](data)
	data.Release()
	return
}

func (b *NumericBuilder[T]) newData() (data *Data) {
	bytesRequired := columnar.BytesRequired[T](b.length)
	if bytesRequired > 0 && bytesRequired < b.data.Len() {
		// trim buffers
		b.data.Resize(bytesRequired)
	}
	data = NewData(b.dtype, b.length, []*memory.Buffer{b.nullBitmap, b.data}, nil, b.nulls, 0)
	b.reset()

	if b.data != nil {
		b.data.Release()
		b.data = nil
		b.rawData = nil
	}

	return
}

type (
	Int8Builder    = NumericBuilder[int8]
	Int16Builder   = NumericBuilder[int16]
	Int32Builder   = NumericBuilder[int32]
	Int64Builder   = NumericBuilder[int64]
	Uint8Builder   = NumericBuilder[uint8]
	Uint16Builder  = NumericBuilder[uint16]
	Uint32Builder  = NumericBuilder[uint32]
	Uint64Builder  = NumericBuilder[uint64]
	Float32Builder = NumericBuilder[float32]
	Float64Builder = NumericBuilder[float64]
)

// NewInt8Builder creates a builder of int8 values.
func NewInt8Builder(mem memory.Allocator) *Int8Builder {
	return newNumericBuilder[int8](mem, columnar.PrimitiveTypes.Int8)
}

// NewInt16Builder creates a builder of int16 values.
func NewInt16Builder(mem memory.Allocator) *Int16Builder {
	return newNumericBuilder[int16](mem, columnar.PrimitiveTypes.Int16)
}

// NewInt32Builder creates a builder of int32 values.
func NewInt32Builder(mem memory.Allocator) *Int32Builder {
	return newNumericBuilder[int32](mem, columnar.PrimitiveTypes.Int32)
}

// NewInt64Builder creates a builder of int64 values.
func NewInt64Builder(mem memory.Allocator) *Int64Builder {
	return newNumericBuilder[int64](mem, columnar.PrimitiveTypes.Int64)
}

// NewUint8Builder creates a builder of uint8 values.
func NewUint8Builder(mem memory.Allocator) *Uint8Builder {
	return newNumericBuilder[uint8](mem, columnar.PrimitiveTypes.Uint8)
}

// NewUint16Builder creates a builder of uint16 values.
func NewUint16Builder(mem memory.Allocator) *Uint16Builder {
	return newNumericBuilder[uint16](mem, columnar.PrimitiveTypes.Uint16)
}

// NewUint32Builder creates a builder of uint32 values.
func NewUint32Builder(mem memory.Allocator) *Uint32Builder {
	return newNumericBuilder[uint32](mem, columnar.PrimitiveTypes.Uint32)
}

// NewUint64Builder creates a builder of uint64 values.
func NewUint64Builder(mem memory.Allocator) *Uint64Builder {
	return newNumericBuilder[uint64](mem, columnar.PrimitiveTypes.Uint64)
}

// NewFloat32Builder creates a builder of float32 values.
func NewFloat32Builder(mem memory.Allocator) *Float32Builder {
	return newNumericBuilder[float32](mem, columnar.PrimitiveTypes.Float32)
}

// NewFloat64Builder creates a builder of float64 values.
func NewFloat64Builder(mem memory.Allocator) *Float64Builder {
	return newNumericBuilder[float64](mem, columnar.PrimitiveTypes.Float64)
}

var (
	_ Builder = (*Int8Builder)(nil)
	_ Builder = (*Int64Builder)(nil)
	_ Builder = (*Float64Builder)(nil)
)
