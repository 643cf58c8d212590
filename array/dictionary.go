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
	"sync"
	"sync/atomic"

	"github.com/columnar-go/columnar"
	"github.com/columnar-go/columnar/bitutil"
	"github.com/columnar-go/columnar/internal/debug"
	"github.com/columnar-go/columnar/memory"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

var (
	// ErrTypeMismatch is returned when a type descriptor is not a dictionary
	// type, or the indices array is not of an integer type.
	ErrTypeMismatch = errors.New("columnar/array: type mismatch")

	// ErrIndexOutOfRange is returned when a non-null dictionary index is
	// negative or not smaller than the dictionary length.
	ErrIndexOutOfRange = errors.New("columnar/array: dictionary index out of range")

	// ErrIncompatibleTranspose is returned when the target type of a
	// transpose is not a dictionary type.
	ErrIncompatibleTranspose = errors.New("columnar/array: incompatible transpose target")
)

// indexReader reads the logical index value at position i widened to int64,
// erasing the physical width of the index type. The width dispatch happens
// once, when the reader is built.
type indexReader func(i int) int64

func newIndexReader(data *Data) (indexReader, error) {
	// a zero-length array may carry no values buffer at all.
	var buf []byte
	if b := data.buffers[1]; b != nil {
		buf = b.Bytes()
	}
	offset := data.offset
	switch data.dtype.ID() {
	case columnar.INT8:
		vals := columnar.CastFromBytes[int8](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.INT16:
		vals := columnar.CastFromBytes[int16](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.INT32:
		vals := columnar.CastFromBytes[int32](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.INT64:
		vals := columnar.CastFromBytes[int64](buf)
		return func(i int) int64 { return vals[offset+i] }, nil
	case columnar.UINT8:
		vals := columnar.CastFromBytes[uint8](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.UINT16:
		vals := columnar.CastFromBytes[uint16](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.UINT32:
		vals := columnar.CastFromBytes[uint32](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	case columnar.UINT64:
		vals := columnar.CastFromBytes[uint64](buf)
		return func(i int) int64 { return int64(vals[offset+i]) }, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "dictionary indices must be an integer type, got %s", data.dtype.Name())
}

// indexWriter writes a widened index value back at the physical width of the
// target index type.
type indexWriter func(i int, v int64)

func newIndexWriter(typ columnar.FixedWidthDataType, out []byte) (indexWriter, error) {
	switch typ.ID() {
	case columnar.INT8:
		vals := columnar.CastFromBytes[int8](out)
		return func(i int, v int64) { vals[i] = int8(v) }, nil
	case columnar.INT16:
		vals := columnar.CastFromBytes[int16](out)
		return func(i int, v int64) { vals[i] = int16(v) }, nil
	case columnar.INT32:
		vals := columnar.CastFromBytes[int32](out)
		return func(i int, v int64) { vals[i] = int32(v) }, nil
	case columnar.INT64:
		vals := columnar.CastFromBytes[int64](out)
		return func(i int, v int64) { vals[i] = v }, nil
	case columnar.UINT8:
		vals := columnar.CastFromBytes[uint8](out)
		return func(i int, v int64) { vals[i] = uint8(v) }, nil
	case columnar.UINT16:
		vals := columnar.CastFromBytes[uint16](out)
		return func(i int, v int64) { vals[i] = uint16(v) }, nil
	case columnar.UINT32:
		vals := columnar.CastFromBytes[uint32](out)
		return func(i int, v int64) { vals[i] = uint32(v) }, nil
	case columnar.UINT64:
		vals := columnar.CastFromBytes[uint64](out)
		return func(i int, v int64) { vals[i] = uint64(v) }, nil
	}
	return nil, errors.Wrapf(ErrTypeMismatch, "dictionary indices must be an integer type, got %s", typ.Name())
}

// validateDictionaryIndices checks that every non-null value of indices is
// within [0, dictLen). Positions are scanned in index order and the first
// violation determines the reported error.
func validateDictionaryIndices(indices Interface, dictLen int) error {
	read, err := newIndexReader(indices.Data())
	if err != nil {
		return err
	}

	upper := int64(dictLen)
	for i := 0; i < indices.Len(); i++ {
		if indices.IsNull(i) {
			continue
		}
		if v := read(i); v < 0 || v >= upper {
			return errors.Wrapf(ErrIndexOutOfRange,
				"index %d at position %d out of bounds for dictionary of length %d", v, i, dictLen)
		}
	}
	return nil
}

// Dictionary represents dictionary-encoded data with a data dependent
// dictionary.
//
// A dictionary array contains an array of non-negative integers (the
// "dictionary indices") along with a data type containing a "dictionary"
// corresponding to the distinct values represented in the data.
//
// For example, the array:
//
//	["foo", "bar", "foo", "bar", "foo", "bar"]
//
// with dictionary ["bar", "foo"], would have the representation of:
//
//	indices: [1, 0, 1, 0, 1, 0]
//	dictionary: ["bar", "foo"]
//
// The indices in principle may be any integer type.
type Dictionary struct {
	array

	dictType  *columnar.DictionaryType
	indices   Interface
	readIndex indexReader

	// materialized exactly once on the first call to Dictionary, so
	// concurrent callers observe a single cached value.
	materializeDict sync.Once
	dict            Interface
}

// NewDictionaryData creates a dictionary array from already constructed and
// trusted array data. No validation is performed: the caller guarantees that
// every non-null index is within the bounds of the dictionary, e.g. because
// the data was produced by a path that already validated it. Misuse is a
// programming error, not a reported one.
func NewDictionaryData(data *Data) *Dictionary {
	a := &Dictionary{}
	a.refCount = 1
	a.setData(data)
	return a
}

// NewDictionaryArray constructs a dictionary array from an array of indices
// and an array of dictionary values, without validating the indices. The
// dictionary storage is shared by reference, not copied.
func NewDictionaryArray(typ *columnar.DictionaryType, indices, dict Interface) *Dictionary {
	data := NewDataWithDictionary(typ, indices.Len(), indices.Data().buffers,
		indices.Data().nulls, indices.Data().offset, dict.Data())
	defer data.Release()
	return NewDictionaryData(data)
}

// NewValidatedDictionaryArray constructs a dictionary array from an array of
// indices and an array of dictionary values, after validating that typ is a
// dictionary type matching the supplied arrays and that every non-null index
// is non-negative and smaller than the length of dict.
func NewValidatedDictionaryArray(typ columnar.DataType, indices, dict Interface) (*Dictionary, error) {
	dictType, ok := typ.(*columnar.DictionaryType)
	if !ok {
		return nil, errors.Wrapf(ErrTypeMismatch, "expected a dictionary type, got %s", typ.Name())
	}

	if !columnar.TypeEqual(dictType.IndexType, indices.DataType()) {
		return nil, errors.Wrapf(ErrTypeMismatch, "dictionary type index type %s does not match indices type %s",
			dictType.IndexType.Name(), indices.DataType().Name())
	}

	if !columnar.TypeEqual(dictType.ValueType, dict.DataType()) {
		return nil, errors.Wrapf(ErrTypeMismatch, "dictionary type value type %s does not match dictionary type %s",
			dictType.ValueType.Name(), dict.DataType().Name())
	}

	if err := validateDictionaryIndices(indices, dict.Len()); err != nil {
		return nil, err
	}

	return NewDictionaryArray(dictType, indices, dict), nil
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (d *Dictionary) Release() {
	debug.Assert(atomic.LoadInt64(&d.refCount) > 0, "too many releases")

	if atomic.AddInt64(&d.refCount, -1) == 0 {
		d.data.Release()
		d.data, d.nullBitmapBytes = nil, nil
		d.indices.Release()
		d.indices = nil
		if d.dict != nil {
			d.dict.Release()
			d.dict = nil
		}
	}
}

func (d *Dictionary) setData(data *Data) {
	d.array.setData(data)

	if data.dictionary == nil {
		panic("columnar/array: no dictionary set in Data for Dictionary array")
	}

	dictType, ok := data.dtype.(*columnar.DictionaryType)
	if !ok {
		panic(fmt.Sprintf("columnar/array: Dictionary array data should have a dictionary type, got %T", data.dtype))
	}
	d.dictType = dictType

	debug.Assert(columnar.TypeEqual(dictType.ValueType, data.dictionary.DataType()), "mismatched dictionary value types")

	indexData := NewData(dictType.IndexType, data.length, data.buffers, data.childData, data.nulls, data.offset)
	defer indexData.Release()
	d.indices = MakeFromData(indexData)

	read, err := newIndexReader(indexData)
	if err == nil {
		d.readIndex = read
	}
}

// DictType returns the dictionary type of this array.
func (d *Dictionary) DictType() *columnar.DictionaryType { return d.dictType }

// Dictionary returns the values array that makes up the dictionary for this
// array. It is resolved from the underlying storage on the first call and
// cached; concurrent first calls observe the same cached value. The returned
// array needs to be explicitly released by calling Release.
func (d *Dictionary) Dictionary() Interface {
	d.materializeDict.Do(func() {
		d.dict = MakeFromData(d.data.dictionary)
	})
	d.dict.Retain()
	return d.dict
}

// Indices returns a reference to the underlying array of indices as its own
// array, which needs to be released accordingly by calling Release on it.
func (d *Dictionary) Indices() Interface {
	d.indices.Retain()
	return d.indices
}

// GetValueIndex returns the index value at position i widened to int64.
//
// The raw storage value is read regardless of the validity of position i: a
// null slot has no dictionary lookup obligation and the value read for it is
// meaningless. Callers that care must check IsNull first.
func (d *Dictionary) GetValueIndex(i int) int64 {
	if d.readIndex == nil {
		debug.Assert(false, "unreachable dictionary index type")
		return -1
	}
	return d.readIndex(i)
}

// CanCompareIndices returns true if the dictionaries of both arrays are the
// same underlying storage, in which case the index values of the two arrays
// may be compared directly without unifying the dictionaries first. Arrays
// derived from one another by Transpose or slicing share their dictionary
// storage and therefore qualify; dictionaries that are merely equal in value
// but distinct instances do not, since establishing that equality is not
// cheap.
func (d *Dictionary) CanCompareIndices(other *Dictionary) bool {
	return d.data.dictionary == other.data.dictionary
}

// Transpose constructs a new dictionary array of type typ with dict as its
// dictionary, remapping this array's indices into the index space of dict
// through transposeMap: position i of the result holds
// transposeMap[d.GetValueIndex(i)], written at the index width of typ, and
// nulls are propagated without lookup. The type and the transpose map are
// typically computed by a dictionary unifier.
//
// transposeMap must have an entry for every distinct index value of this
// array's dictionary. Its entries are trusted and are not bounds checked
// against dict: an out-of-range mapped value produces an array whose
// invariant is silently violated.
//
// The validity bitmap and the new dictionary are shared by reference, not
// copied. The returned array must be released by the caller.
func (d *Dictionary) Transpose(mem memory.Allocator, typ columnar.DataType, dict Interface, transposeMap []int32) (*Dictionary, error) {
	dictType, ok := typ.(*columnar.DictionaryType)
	if !ok {
		return nil, errors.Wrapf(ErrIncompatibleTranspose, "expected a dictionary type, got %s", typ.Name())
	}

	if d.readIndex == nil {
		return nil, errors.Wrapf(ErrTypeMismatch, "dictionary indices must be an integer type, got %s", d.dictType.IndexType.Name())
	}

	debug.Assert(len(transposeMap) >= d.data.dictionary.length, "transpose map smaller than dictionary")

	outBuf := memory.NewResizableBuffer(mem)
	outBuf.Resize(d.data.length * (dictType.IndexType.BitWidth() / 8))
	defer outBuf.Release()

	write, err := newIndexWriter(dictType.IndexType, outBuf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(ErrIncompatibleTranspose, "%s", err)
	}

	for i := 0; i < d.data.length; i++ {
		if d.IsNull(i) {
			continue
		}
		write(i, int64(transposeMap[d.readIndex(i)]))
	}

	var nullBitmap *memory.Buffer
	if d.data.buffers[0] != nil {
		if d.data.offset == 0 {
			nullBitmap = d.data.buffers[0]
		} else {
			// the shared bitmap does not start on position 0 of the new
			// buffer, so shift a copy into place.
			nullBitmap = memory.NewResizableBuffer(mem)
			nullBitmap.Resize(int(bitutil.BytesForBits(int64(d.data.length))))
			bitutil.CopyBitmap(d.data.buffers[0].Bytes(), d.data.offset, d.data.length, nullBitmap.Bytes(), 0)
			defer nullBitmap.Release()
		}
	}

	outData := NewDataWithDictionary(dictType, d.data.length,
		[]*memory.Buffer{nullBitmap, outBuf}, d.NullN(), 0, dict.Data())
	defer outData.Release()
	return NewDictionaryData(outData), nil
}

func (d *Dictionary) String() string {
	dict := d.Dictionary()
	defer dict.Release()
	return fmt.Sprintf("{ dictionary: %v\n  indices: %v }", dict, d.indices)
}

func (d *Dictionary) getOneForMarshal(i int) interface{} {
	if d.IsNull(i) {
		return nil
	}
	dict := d.Dictionary()
	defer dict.Release()
	return dict.(arrayMarshaler).getOneForMarshal(int(d.GetValueIndex(i)))
}

func (d *Dictionary) MarshalJSON() ([]byte, error) {
	vals := make([]interface{}, d.Len())
	for i := 0; i < d.Len(); i++ {
		vals[i] = d.getOneForMarshal(i)
	}
	return json.Marshal(vals)
}

var (
	_ Interface = (*Dictionary)(nil)
)
