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

package columnar_test

import (
	"testing"

	"github.com/columnar-go/columnar"
	"github.com/stretchr/testify/assert"
)

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		left, right columnar.DataType
		want        bool
	}{
		{nil, nil, true},
		{columnar.PrimitiveTypes.Int32, nil, false},
		{columnar.PrimitiveTypes.Int32, columnar.PrimitiveTypes.Int32, true},
		{columnar.PrimitiveTypes.Int32, columnar.PrimitiveTypes.Int64, false},
		{columnar.BinaryTypes.String, columnar.BinaryTypes.String, true},
		{columnar.BinaryTypes.String, columnar.BinaryTypes.Binary, false},
		{
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String},
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String},
			true,
		},
		{
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String},
			&columnar.DictionaryType{IndexType: &columnar.Int32Type{}, ValueType: columnar.BinaryTypes.String},
			false,
		},
		{
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String},
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.PrimitiveTypes.Float64},
			false,
		},
		{
			&columnar.DictionaryType{IndexType: &columnar.Int8Type{}, ValueType: columnar.BinaryTypes.String},
			columnar.PrimitiveTypes.Int8,
			false,
		},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, columnar.TypeEqual(tc.left, tc.right), "TypeEqual(%v, %v)", tc.left, tc.right)
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, columnar.IsInteger(columnar.INT8))
	assert.True(t, columnar.IsInteger(columnar.UINT64))
	assert.False(t, columnar.IsInteger(columnar.FLOAT32))

	assert.True(t, columnar.IsSignedInteger(columnar.INT16))
	assert.False(t, columnar.IsSignedInteger(columnar.UINT16))

	assert.True(t, columnar.IsUnsignedInteger(columnar.UINT32))
	assert.False(t, columnar.IsUnsignedInteger(columnar.INT32))
}

func TestHashType(t *testing.T) {
	const seed = 42

	h1 := columnar.HashType(seed, columnar.PrimitiveTypes.Int32)
	h2 := columnar.HashType(seed, columnar.PrimitiveTypes.Int32)
	assert.Equal(t, h1, h2)

	h3 := columnar.HashType(seed, columnar.PrimitiveTypes.Int64)
	assert.NotEqual(t, h1, h3)

	h4 := columnar.HashType(seed+1, columnar.PrimitiveTypes.Int32)
	assert.NotEqual(t, h1, h4)
}

func TestDictionaryTypeBitWidth(t *testing.T) {
	dt := &columnar.DictionaryType{
		IndexType: &columnar.Int16Type{},
		ValueType: columnar.BinaryTypes.String,
	}
	assert.Equal(t, 16, dt.BitWidth())
	assert.Equal(t, columnar.DICTIONARY, dt.ID())
}

func TestCastRoundTrip(t *testing.T) {
	vals := []int32{1, -2, 3, -4}
	b := columnar.CastToBytes(vals)
	assert.Len(t, b, 4*columnar.Int32SizeBytes)

	back := columnar.CastFromBytes[int32](b)
	assert.Equal(t, vals, back)
}

func TestBytesRequired(t *testing.T) {
	assert.Equal(t, 40, columnar.BytesRequired[int64](5))
	assert.Equal(t, 5, columnar.BytesRequired[int8](5))
	assert.Zero(t, columnar.BytesRequired[float64](0))

	assert.Panics(t, func() {
		columnar.BytesRequired[int64](1 << 62)
	})
}
