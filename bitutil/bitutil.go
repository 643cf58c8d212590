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

package bitutil

import (
	"math/bits"
	"unsafe"
)

var (
	BitMask        = [8]byte{1, 2, 4, 8, 16, 32, 64, 128}
	FlippedBitMask = [8]byte{254, 253, 251, 247, 239, 223, 191, 127}
)

// IsMultipleOf8 returns whether v is a multiple of 8.
func IsMultipleOf8(v int64) bool { return v&7 == 0 }

// CeilByte rounds size to the next multiple of 8.
func CeilByte(size int) int { return (size + 7) &^ 7 }

// BytesForBits returns the number of bytes required to store the given number
// of bits.
func BytesForBits(bits int64) int64 { return (bits + 7) >> 3 }

// BitIsSet returns true if the bit at index i in buf is set (1).
func BitIsSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) != 0 }

// BitIsNotSet returns true if the bit at index i in buf is not set (0).
func BitIsNotSet(buf []byte, i int) bool { return (buf[uint(i)/8] & BitMask[byte(i)%8]) == 0 }

// SetBit sets the bit at index i in buf to 1.
func SetBit(buf []byte, i int) { buf[uint(i)/8] |= BitMask[byte(i)%8] }

// ClearBit sets the bit at index i in buf to 0.
func ClearBit(buf []byte, i int) { buf[uint(i)/8] &= FlippedBitMask[byte(i)%8] }

// SetBitTo sets the bit at index i in buf to val.
func SetBitTo(buf []byte, i int, val bool) {
	if val {
		SetBit(buf, i)
	} else {
		ClearBit(buf, i)
	}
}

// NextPowerOf2 rounds x to the next power of two.
func NextPowerOf2(x int) int { return 1 << uint(64-bits.LeadingZeros64(uint64(x))) }

// CountSetBits counts the number of 1's in buf up to n bits, starting
// from offset.
func CountSetBits(buf []byte, offset, n int) int {
	if offset > 0 {
		return countSetBitsWithOffset(buf, offset, n)
	}

	count := 0

	uint64Bytes := n / 64 * 8
	for _, v := range bytesToUint64(buf[:uint64Bytes]) {
		count += bits.OnesCount64(v)
	}

	for _, v := range buf[uint64Bytes : n/8] {
		count += bits.OnesCount8(v)
	}

	// tail bits
	for i := n &^ 7; i < n; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}

	return count
}

func countSetBitsWithOffset(buf []byte, offset, n int) int {
	count := 0

	beg := offset
	end := offset + n

	begU64 := ceilUint64(beg)

	init := min(n, begU64-beg)
	for i := beg; i < beg+init; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}

	nU64 := (n - init) / 64
	begU64Idx := begU64 / 64
	endU64Idx := begU64Idx + nU64
	bufU64 := bytesToUint64(buf)
	if begU64Idx < len(bufU64) {
		for _, v := range bufU64[begU64Idx:endU64Idx] {
			count += bits.OnesCount64(v)
		}
	}

	// FIXME: count the trailing bytes between the last whole uint64 and end
	// a byte at a time instead of bit by bit.

	for i := begU64 + nU64*64; i < end; i++ {
		if BitIsSet(buf, i) {
			count++
		}
	}

	return count
}

// CopyBitmap copies length bits from src starting at bit srcOffset to dst
// starting at bit dstOffset. The ranges must not overlap.
func CopyBitmap(src []byte, srcOffset, length int, dst []byte, dstOffset int) {
	if length == 0 {
		return
	}

	if IsMultipleOf8(int64(srcOffset)) && IsMultipleOf8(int64(dstOffset)) {
		nbytes := length / 8
		copy(dst[dstOffset/8:], src[srcOffset/8:srcOffset/8+nbytes])
		for i := length &^ 7; i < length; i++ {
			SetBitTo(dst, dstOffset+i, BitIsSet(src, srcOffset+i))
		}
		return
	}

	for i := 0; i < length; i++ {
		SetBitTo(dst, dstOffset+i, BitIsSet(src, srcOffset+i))
	}
}

func bytesToUint64(b []byte) []uint64 {
	if len(b) < 8 {
		return nil
	}
	ptr := unsafe.Pointer(&b[0])
	return unsafe.Slice((*uint64)(ptr), len(b)/8)
}

func ceilUint64(v int) int { return (v + 63) &^ 63 }

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
