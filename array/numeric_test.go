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

package array_test

import (
	"testing"

	"github.com/columnar-go/columnar/array"
	"github.com/columnar-go/columnar/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt32Builder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	b := array.NewInt32Builder(mem)
	defer b.Release()

	b.Append(1)
	b.AppendNull()
	b.Append(3)
	b.AppendValues([]int32{4, 5, 6}, []bool{true, false, true})

	require.Equal(t, 6, b.Len())
	require.Equal(t, 2, b.NullN())

	arr := b.NewNumericArray()
	defer arr.Release()

	// the builder is reusable after NewNumericArray.
	assert.Zero(t, b.Len())
	assert.Zero(t, b.NullN())

	assert.Equal(t, 6, arr.Len())
	assert.Equal(t, 2, arr.NullN())
	assert.Equal(t, int32(1), arr.Value(0))
	assert.True(t, arr.IsNull(1))
	assert.Equal(t, int32(3), arr.Value(2))
	assert.Equal(t, int32(4), arr.Value(3))
	assert.True(t, arr.IsNull(4))
	assert.Equal(t, int32(6), arr.Value(5))
}

func TestNumericSlice(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues([]float64{1, 2, 3, 4, 5}, []bool{true, true, false, true, true})

	arr := b.NewNumericArray()
	defer arr.Release()

	sl := array.NewSlice(arr, 1, 4).(*array.Float64)
	defer sl.Release()

	require.Equal(t, 3, sl.Len())
	assert.Equal(t, 1, sl.NullN())
	assert.Equal(t, float64(2), sl.Value(0))
	assert.True(t, sl.IsNull(1))
	assert.Equal(t, float64(4), sl.Value(2))
	assert.Equal(t, []float64{2, 3, 4}, sl.Values())
}

func TestNumericMarshalJSON(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	b := array.NewUint16Builder(mem)
	defer b.Release()
	b.AppendValues([]uint16{7, 8, 9}, []bool{true, false, true})

	arr := b.NewNumericArray()
	defer arr.Release()

	got, err := arr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[7,null,9]`, string(got))
}

func TestNumericBuilderResize(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	b := array.NewInt8Builder(mem)
	defer b.Release()

	b.Reserve(256)
	for i := 0; i < 256; i++ {
		b.UnsafeAppend(int8(i))
	}
	require.Equal(t, 256, b.Len())

	arr := b.NewNumericArray()
	defer arr.Release()

	assert.Equal(t, 256, arr.Len())
	assert.Equal(t, int8(-128), arr.Value(128))
}
