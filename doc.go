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
Package columnar describes the logical types of dictionary-encoded columnar
data.

Dictionary encoding represents repeated or categorical values as an array of
small integer indices into a single shared array of distinct values, the
dictionary. This package provides the data type descriptors; package array
provides the in-memory arrays, including validated construction of dictionary
arrays and transposition of their indices into another dictionary's index
space.
*/
package columnar
