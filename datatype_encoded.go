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

import "fmt"

// DictionaryType represents categorical or dictionary-encoded data with a
// data-dependent dictionary. The indices are an integer type with the values
// being of ValueType. Indices may in principle be any integer width; note
// that IPC interchange formats conventionally restrict indices to signed
// 32-bit integers, which is not enforced here.
type DictionaryType struct {
	IndexType FixedWidthDataType
	ValueType DataType
	Ordered   bool
}

func (*DictionaryType) ID() Type     { return DICTIONARY }
func (*DictionaryType) Name() string { return "dictionary" }

func (d *DictionaryType) String() string {
	return fmt.Sprintf("%s<values=%v, indices=%v, ordered=%v>",
		d.Name(), d.ValueType, d.IndexType, d.Ordered)
}

// BitWidth returns the bit width of the index type, the physical storage of
// a dictionary-encoded element.
func (d *DictionaryType) BitWidth() int { return d.IndexType.BitWidth() }

func (d *DictionaryType) Fingerprint() string {
	indexFingerprint := d.IndexType.Fingerprint()
	valueFingerprint := d.ValueType.Fingerprint()
	ordered := "1"
	if !d.Ordered {
		ordered = "0"
	}

	if len(valueFingerprint) > 0 {
		return typeFingerprint(d) + indexFingerprint + valueFingerprint + ordered
	}
	return ordered
}

var (
	_ FixedWidthDataType = (*DictionaryType)(nil)
)
