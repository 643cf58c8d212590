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
	"github.com/columnar-go/columnar/internal/debug"
	"github.com/columnar-go/columnar/memory"
)

// UnknownNullCount is a sentinel for a null count that has not been
// computed yet; it is resolved lazily from the validity bitmap.
const UnknownNullCount = -1

// A type which represents the memory and metadata of a columnar array.
type Data struct {
	refCount  int64
	dtype     columnar.DataType
	nulls     int
	offset    int
	length    int
	buffers   []*memory.Buffer
	childData []*Data

	// dictionary is the storage of the dictionary values referenced by
	// the indices in buffers. It is only populated for data whose type
	// is *columnar.DictionaryType and is shared, not copied, between
	// arrays derived from one another.
	dictionary *Data
}

// NewData creates a new Data.
func NewData(dtype columnar.DataType, length int, buffers []*memory.Buffer, childData []*Data, nulls, offset int) *Data {
	for _, b := range buffers {
		if b != nil {
			b.Retain()
		}
	}

	for _, child := range childData {
		if child != nil {
			child.Retain()
		}
	}

	return &Data{
		refCount:  1,
		dtype:     dtype,
		nulls:     nulls,
		length:    length,
		offset:    offset,
		buffers:   buffers,
		childData: childData,
	}
}

// NewDataWithDictionary creates a new data object, but takes in a dictionary
// to set on it as the dictionary storage.
func NewDataWithDictionary(dtype columnar.DataType, length int, buffers []*memory.Buffer, nulls, offset int, dict *Data) *Data {
	data := NewData(dtype, length, buffers, nil, nulls, offset)
	data.SetDictionary(dict)
	return data
}

// Retain increases the reference count by 1.
// Retain may be called simultaneously from multiple goroutines.
func (d *Data) Retain() {
	atomic.AddInt64(&d.refCount, 1)
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
// Release may be called simultaneously from multiple goroutines.
func (d *Data) Release() {
	debug.Assert(atomic.LoadInt64(&d.refCount) > 0, "too many releases")

	if atomic.AddInt64(&d.refCount, -1) == 0 {
		memory.ReleaseBuffers(d.buffers)

		for _, b := range d.childData {
			b.Release()
		}

		if d.dictionary != nil {
			d.dictionary.Release()
		}
		d.dictionary, d.buffers, d.childData = nil, nil, nil
	}
}

// DataType returns the DataType of the data.
func (d *Data) DataType() columnar.DataType { return d.dtype }

// NullN returns the number of nulls, which may be UnknownNullCount if it has
// not been computed from the validity bitmap yet.
func (d *Data) NullN() int { return d.nulls }

// Len returns the length.
func (d *Data) Len() int { return d.length }

// Offset returns the offset into the buffers at which this data begins.
func (d *Data) Offset() int { return d.offset }

// Buffers returns the buffers.
func (d *Data) Buffers() []*memory.Buffer { return d.buffers }

// Dictionary returns the dictionary storage, which is nil unless this data
// is dictionary-encoded.
func (d *Data) Dictionary() *Data { return d.dictionary }

// SetDictionary stores the passed in dictionary array data as the dictionary
// storage for this data, releasing any dictionary previously set.
func (d *Data) SetDictionary(dict *Data) {
	if d.dictionary != nil {
		d.dictionary.Release()
		d.dictionary = nil
	}
	if dict != nil {
		dict.Retain()
		d.dictionary = dict
	}
}

// NewSliceData returns a new slice that shares backing data with the input.
// The returned Data slice starts at i and extends j-i elements, such as
//
//	slice := data[i:j]
//
// The returned value must be released by the caller.
func NewSliceData(data *Data, i, j int64) *Data {
	if j > int64(data.length) || i > j || data.offset+int(i) > data.offset+data.length {
		panic("columnar/array: index out of range")
	}

	for _, b := range data.buffers {
		if b != nil {
			b.Retain()
		}
	}

	for _, child := range data.childData {
		if child != nil {
			child.Retain()
		}
	}

	if data.dictionary != nil {
		data.dictionary.Retain()
	}

	o := &Data{
		refCount:   1,
		dtype:      data.dtype,
		nulls:      UnknownNullCount,
		length:     int(j - i),
		offset:     data.offset + int(i),
		buffers:    data.buffers,
		childData:  data.childData,
		dictionary: data.dictionary,
	}

	if data.nulls == 0 {
		o.nulls = 0
	}

	return o
}
