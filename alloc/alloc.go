package alloc

import (
	"github.com/mit-pdos/go-simplefs/util"
)

// Alloc uses an in-memory bit map to allocate and free numbers in [0, max).
// Bit n corresponds to number n. Number 0 is always in use, so AllocNum can
// return 0 to mean the map is full.
//
// Nothing is persisted: the owner rebuilds the map with Reset and MarkUsed.
type Alloc struct {
	bitmap []byte
	max    uint64
}

func MkMaxAlloc(max uint64) *Alloc {
	a := &Alloc{
		bitmap: make([]byte, util.RoundUp(max, 8)),
		max:    max,
	}
	a.Reset(0)
	return a
}

// Reset frees everything except numbers [0, nreserved].
func (a *Alloc) Reset(nreserved uint64) {
	for i := range a.bitmap {
		a.bitmap[i] = 0
	}
	for n := uint64(0); n <= nreserved && n < a.max; n++ {
		a.setBit(n)
	}
}

func (a *Alloc) valid(n uint64) bool {
	return n >= 1 && n < a.max
}

func (a *Alloc) setBit(n uint64) {
	a.bitmap[n/8] = a.bitmap[n/8] | (1 << (n % 8))
}

func (a *Alloc) clearBit(n uint64) {
	a.bitmap[n/8] = a.bitmap[n/8] & ^(1 << (n % 8))
}

func (a *Alloc) IsUsed(n uint64) bool {
	if n >= a.max {
		return false
	}
	return a.bitmap[n/8]&(1<<(n%8)) != 0
}

// MarkUsed marks n in use. Out of range numbers are ignored.
func (a *Alloc) MarkUsed(n uint64) {
	if a.valid(n) {
		a.setBit(n)
	}
}

// FreeNum marks n free. Out of range numbers are ignored.
func (a *Alloc) FreeNum(n uint64) {
	if a.valid(n) {
		a.clearBit(n)
	}
}

// AllocNum returns the lowest free number and marks it used, or 0 if nothing
// is free.
func (a *Alloc) AllocNum() uint64 {
	for i, b := range a.bitmap {
		if b == 0xff {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			n := uint64(i)*8 + bit
			if n >= a.max {
				break
			}
			if b&(1<<bit) == 0 {
				a.setBit(n)
				util.DPrintf(10, "AllocNum: %d\n", n)
				return n
			}
		}
	}
	util.DPrintf(5, "AllocNum: full\n")
	return 0
}

func (a *Alloc) IsFull() bool {
	return a.NumFree() == 0
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

func (a *Alloc) NumFree() uint64 {
	var used uint64
	for _, b := range a.bitmap {
		used += popCnt(b)
	}
	return a.max - used
}
