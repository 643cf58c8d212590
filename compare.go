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

// TypeEqual checks if two DataType are the same, recursing into the index
// and value types of dictionaries.
func TypeEqual(left, right DataType) bool {
	switch {
	case left == nil || right == nil:
		return left == nil && right == nil
	case left.ID() != right.ID():
		return false
	}

	switch l := left.(type) {
	case *DictionaryType:
		r := right.(*DictionaryType)
		return l.Ordered == r.Ordered &&
			TypeEqual(l.IndexType, r.IndexType) &&
			TypeEqual(l.ValueType, r.ValueType)
	default:
		// the remaining types carry no parameters, the ID comparison
		// above is sufficient.
		return true
	}
}
