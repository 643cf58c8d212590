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

/*
Package array provides the implementation of columnar in-memory arrays,
centered on dictionary-encoded data.

Arrays are immutable once constructed and share their underlying buffers by
reference counting. Dictionary arrays bind an integer index array to a
dictionary of distinct values; they can be built unchecked from trusted data,
built with validation from standalone arrays, and transposed into the index
space of another dictionary through an externally computed remap table.
*/
package array
