package util

import (
	"math"
	"math/bits"
	"strings"
)

// Bitfield tracks a set of indices (peers holding a file, verified pieces).
// Bit 'i' lives in byte i/8 at bit i%8
type Bitfield struct {
	Bytes     []byte
	NumOfBits int
}

func NewBitfield(numOfBits int) Bitfield {
	return Bitfield{
		NumOfBits: numOfBits,
		Bytes:     make([]byte, int(math.Ceil(float64(numOfBits)/8.0))),
	}
}

func (self Bitfield) Set(i int) {
	byteIdx := i / 8
	bitIdx := i % 8
	self.Bytes[byteIdx] |= (1 << bitIdx)
}

func (self Bitfield) Has(i int) bool {
	byteIdx := i / 8
	bitIdx := i % 8
	return (self.Bytes[byteIdx] & (1 << bitIdx)) != 0
}

// Count returns how many bits are set
func (self Bitfield) Count() int {
	count := 0
	for _, b := range self.Bytes {
		count += bits.OnesCount8(b)
	}
	return count
}

func (self Bitfield) IsFull() bool {
	return self.Count() == self.NumOfBits
}

// DumpAsBitstring prints index 0 first
func (self Bitfield) DumpAsBitstring() string {
	var sb strings.Builder
	for i := 0; i < self.NumOfBits; i++ {
		if self.Has(i) {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
	}
	return sb.String()
}
