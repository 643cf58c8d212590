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
	"errors"
	"sync"
	"testing"

	"github.com/columnar-go/columnar"
	"github.com/columnar-go/columnar/array"
	"github.com/columnar-go/columnar/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStringDict(t *testing.T, mem memory.Allocator, vals ...string) *array.String {
	t.Helper()
	bldr := array.NewStringBuilder(mem)
	defer bldr.Release()
	bldr.AppendValues(vals, nil)
	return bldr.NewStringArray()
}

func buildIndices(t *testing.T, mem memory.Allocator, vals []int8, valid []bool) *array.Int8 {
	t.Helper()
	bldr := array.NewInt8Builder(mem)
	defer bldr.Release()
	bldr.AppendValues(vals, valid)
	return bldr.NewNumericArray()
}

func TestNewValidatedDictionaryArray(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{1, 0, 1, 0, 1, 0}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	assert.EqualValues(t, 6, arr.Len())
	assert.Zero(t, arr.NullN())

	for i, want := range []int64{1, 0, 1, 0, 1, 0} {
		assert.Equal(t, want, arr.GetValueIndex(i))
	}

	got := arr.Dictionary()
	defer got.Release()
	decoded := make([]string, arr.Len())
	for i := range decoded {
		decoded[i] = got.(*array.String).Value(int(arr.GetValueIndex(i)))
	}
	assert.Equal(t, []string{"foo", "bar", "foo", "bar", "foo", "bar"}, decoded)
}

func TestNewValidatedDictionaryArrayErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}

	t.Run("negative index", func(t *testing.T) {
		indices := buildIndices(t, mem, []int8{-1}, nil)
		defer indices.Release()

		_, err := array.NewValidatedDictionaryArray(dt, indices, dict)
		assert.ErrorIs(t, err, array.ErrIndexOutOfRange)
	})

	t.Run("index too large", func(t *testing.T) {
		indices := buildIndices(t, mem, []int8{0, 2}, nil)
		defer indices.Release()

		_, err := array.NewValidatedDictionaryArray(dt, indices, dict)
		assert.ErrorIs(t, err, array.ErrIndexOutOfRange)
	})

	t.Run("null slot exempt from bounds", func(t *testing.T) {
		indices := buildIndices(t, mem, []int8{0, 0, 1}, []bool{true, false, true})
		defer indices.Release()

		arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
		require.NoError(t, err)
		arr.Release()
	})

	t.Run("not a dictionary type", func(t *testing.T) {
		indices := buildIndices(t, mem, []int8{0}, nil)
		defer indices.Release()

		_, err := array.NewValidatedDictionaryArray(columnar.PrimitiveTypes.Int8, indices, dict)
		assert.ErrorIs(t, err, array.ErrTypeMismatch)
	})

	t.Run("non integer indices", func(t *testing.T) {
		fb := array.NewFloat32Builder(mem)
		defer fb.Release()
		fb.AppendValues([]float32{0, 1}, nil)
		indices := fb.NewNumericArray()
		defer indices.Release()

		fdt := &columnar.DictionaryType{IndexType: &columnar.Float32Type{}, ValueType: columnar.BinaryTypes.String}
		_, err := array.NewValidatedDictionaryArray(fdt, indices, dict)
		assert.ErrorIs(t, err, array.ErrTypeMismatch)
	})

	t.Run("index type mismatch", func(t *testing.T) {
		ib := array.NewInt16Builder(mem)
		defer ib.Release()
		ib.AppendValues([]int16{0, 1}, nil)
		indices := ib.NewNumericArray()
		defer indices.Release()

		_, err := array.NewValidatedDictionaryArray(dt, indices, dict)
		assert.ErrorIs(t, err, array.ErrTypeMismatch)
	})
}

func TestEmptyDictionaryArray(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	bldr := array.NewInt8Builder(mem)
	defer bldr.Release()
	indices := bldr.NewNumericArray()
	defer indices.Release()
	require.Zero(t, indices.Len())

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	assert.Zero(t, arr.Len())
	assert.Zero(t, arr.NullN())

	got := arr.Indices()
	defer got.Release()
	assert.Zero(t, got.Len())

	out, err := arr.Transpose(mem, dt, dict, []int32{0, 1})
	require.NoError(t, err)
	defer out.Release()
	assert.Zero(t, out.Len())
}

func TestDictionaryGetValueIndexNullSlot(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{1, 0, 1}, []bool{true, false, true})
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	assert.True(t, arr.IsNull(1))
	// a null slot reads the raw storage value, which the builder left as zero.
	assert.EqualValues(t, 0, arr.GetValueIndex(1))
}

func TestDictionaryLazyMaterialization(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "a", "b", "c")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{2, 1, 0}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr := array.NewDictionaryArray(dt, indices, dict)
	defer arr.Release()

	const goroutines = 8
	var (
		wg  sync.WaitGroup
		got [goroutines]array.Interface
	)
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			got[g] = arr.Dictionary()
		}(g)
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		assert.Same(t, got[0], got[g])
	}
	for g := 0; g < goroutines; g++ {
		got[g].Release()
	}
}

func TestDictionaryTransposeIdentity(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{1, 0, 1, 0, 1, 0}, []bool{true, true, false, true, true, true})
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	out, err := arr.Transpose(mem, dt, dict, []int32{0, 1})
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, arr.Len(), out.Len())
	for i := 0; i < arr.Len(); i++ {
		assert.Equal(t, arr.IsNull(i), out.IsNull(i), "null mismatch at %d", i)
		if arr.IsValid(i) {
			assert.Equal(t, arr.GetValueIndex(i), out.GetValueIndex(i), "index mismatch at %d", i)
		}
	}

	// transposed siblings share dictionary storage.
	assert.True(t, arr.CanCompareIndices(out))
}

func TestDictionaryTransposeWiden(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	target := buildStringDict(t, mem, "a", "b", "bar", "c", "d", "foo")
	defer target.Release()

	indices := buildIndices(t, mem, []int8{0, 1}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	wide := &columnar.DictionaryType{IndexType: &columnar.Int32Type{}, ValueType: columnar.BinaryTypes.String}
	out, err := arr.Transpose(mem, wide, target, []int32{2, 5})
	require.NoError(t, err)
	defer out.Release()

	outIndices := out.Indices()
	defer outIndices.Release()

	i32, ok := outIndices.(*array.Int32)
	require.True(t, ok, "expected 32-bit indices, got %T", outIndices)
	assert.Equal(t, []int32{2, 5}, i32.Values())

	assert.EqualValues(t, 2, out.GetValueIndex(0))
	assert.EqualValues(t, 5, out.GetValueIndex(1))

	outDict := out.Dictionary()
	defer outDict.Release()
	assert.Equal(t, "bar", outDict.(*array.String).Value(int(out.GetValueIndex(0))))
	assert.Equal(t, "foo", outDict.(*array.String).Value(int(out.GetValueIndex(1))))
}

func TestDictionaryTransposeSliced(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{1, 0, 1, 0}, []bool{true, true, false, true})
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	sliced := array.NewSlice(arr, 1, 4).(*array.Dictionary)
	defer sliced.Release()
	require.Equal(t, 3, sliced.Len())

	out, err := sliced.Transpose(mem, dt, dict, []int32{0, 1})
	require.NoError(t, err)
	defer out.Release()

	assert.False(t, out.IsNull(0))
	assert.True(t, out.IsNull(1))
	assert.False(t, out.IsNull(2))
	assert.EqualValues(t, 0, out.GetValueIndex(0))
	assert.EqualValues(t, 0, out.GetValueIndex(2))
}

func TestDictionaryTransposeErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{0, 1}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	require.NoError(t, err)
	defer arr.Release()

	_, err = arr.Transpose(mem, columnar.PrimitiveTypes.Int32, dict, []int32{0, 1})
	assert.ErrorIs(t, err, array.ErrIncompatibleTranspose)
}

func TestDictionaryCanCompareIndices(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	// a second dictionary that is equal in value but a distinct instance.
	other := buildStringDict(t, mem, "bar", "foo")
	defer other.Release()
	require.True(t, array.ArrayEqual(dict, other))

	indices := buildIndices(t, mem, []int8{0, 1}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}

	a := array.NewDictionaryArray(dt, indices, dict)
	defer a.Release()
	b := array.NewDictionaryArray(dt, indices, dict)
	defer b.Release()
	c := array.NewDictionaryArray(dt, indices, other)
	defer c.Release()

	assert.True(t, a.CanCompareIndices(b))
	assert.False(t, a.CanCompareIndices(c))

	sliced := array.NewSlice(a, 0, 1).(*array.Dictionary)
	defer sliced.Release()
	assert.True(t, a.CanCompareIndices(sliced))
}

func TestDictionaryMarshalJSON(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "bar", "foo")
	defer dict.Release()

	indices := buildIndices(t, mem, []int8{1, 0, 1}, []bool{true, true, false})
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr := array.NewDictionaryArray(dt, indices, dict)
	defer arr.Release()

	got, err := arr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["foo","bar",null]`, string(got))
}

func TestDictionaryUncheckedConstruction(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	dict := buildStringDict(t, mem, "only")
	defer dict.Release()

	// the unchecked constructor performs no validation at all, even for
	// indices a validated construction would reject.
	indices := buildIndices(t, mem, []int8{5}, nil)
	defer indices.Release()

	dt := &columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String}
	arr := array.NewDictionaryArray(dt, indices, dict)
	defer arr.Release()

	assert.EqualValues(t, 5, arr.GetValueIndex(0))

	_, err := array.NewValidatedDictionaryArray(dt, indices, dict)
	assert.True(t, errors.Is(err, array.ErrIndexOutOfRange))
}
