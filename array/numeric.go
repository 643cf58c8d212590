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
	"strings"

	"github.com/columnar-go/columnar"
	"github.com/goccy/go-json"
)

// Numeric is an array of fixed-width numeric values, immutable once
// constructed.
type Numeric[T columnar.FixedWidthType] struct {
	array
	values []T
}

func newNumericData[T columnar.FixedWidthType](data *Data) *Numeric[T] {
	a := &Numeric[T]{}
	a.refCount = 1
	a.setData(data)
	return a
}

// Value returns the value at index i. Value will panic if i is negative or
// ≥ Len.
func (a *Numeric[T]) Value(i int) T { return a.values[i] }

// Values returns the slice of values of the array. The slice must not be
// mutated.
func (a *Numeric[T]) Values() []T { return a.values }

func (a *Numeric[T]) String() string {
	o := new(strings.Builder)
	o.WriteString("[")
	for i, v := range a.values {
		if i > 0 {
			o.WriteString(" ")
		}
		switch {
		case a.IsNull(i):
			o.WriteString("(null)")
		default:
			fmt.Fprintf(o, "%v", v)
		}
	}
	o.WriteString("]")
	return o.String()
}

func (a *Numeric[T]) setData(data *Data) {
	a.array.setData(data)
	vals := data.buffers[1]
	if vals != nil {
		a.values = columnar.CastFromBytes[T](vals.Bytes())
		beg := a.data.offset
		end := beg + a.data.length
		a.values = a.values[beg:end]
	}
}

func (a *Numeric[T]) getOneForMarshal(i int) interface{} {
	if a.IsNull(i) {
		return nil
	}
	return a.values[i]
}

func (a *Numeric[T]) MarshalJSON() ([]byte, error) {
	vals := make([]interface{}, a.Len())
	for i := range a.values {
		vals[i] = a.getOneForMarshal(i)
	}
	return json.Marshal(vals)
}

type (
	Int8    = Numeric[int8]
	Int16   = Numeric[int16]
	Int32   = Numeric[int32]
	Int64   = Numeric[int64]
	Uint8   = Numeric[uint8]
	Uint16  = Numeric[uint16]
	Uint32  = Numeric[uint32]
	Uint64  = Numeric[uint64]
	Float32 = Numeric[float32]
	Float64 = Numeric[float64]
)

// NewInt8Data creates a new Int8 from Data.
func NewInt8Data(data *Data) *Int8 { return newNumericData[int8](data) }

// NewInt16Data creates a new Int16 from Data.
func NewInt16Data(data *Data) *Int16 { return newNumericData[int16](data) }

// NewInt32Data creates a new Int32 from Data.
func NewInt32Data(data *Data) *Int32 { return newNumericData[int32](data) }

// NewInt64Data creates a new Int64 from Data.
func NewInt64Data(data *Data) *Int64 { return newNumericData[int64](data) }

// NewUint8Data creates a new Uint8 from Data.
func NewUint8Data(data *Data) *Uint8 { return newNumericData[uint8](data) }

// NewUint16Data creates a new Uint16 from Data.
func NewUint16Data(data *Data) *Uint16 { return newNumericData[uint16](data) }

// NewUint32Data creates a new Uint32 from Data.
func NewUint32Data(data *Data) *Uint32 { return newNumericData[uint32](data) }

// NewUint64Data creates a new Uint64 from Data.
func NewUint64Data(data *Data) *Uint64 { return newNumericData[uint64](data) }

// NewFloat32Data creates a new Float32 from Data.
func NewFloat32Data(data *Data) *Float32 { return newNumericData[float32](data) }

// NewFloat64Data creates a new Float64 from Data.
func NewFloat64Data(data *Data) *Float64 { return newNumericData[float64](data) }

var (
	_ Interface = (*Int8)(nil)
	_ Interface = (*Int64)(nil)
	_ Interface = (*Float64)(nil)
)
