// Copyright 2024 Matthew J. Miller.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package bestfit implements a best-fit free-block pool on top of a
// multi-key collection. Free blocks are indexed both by address and by
// (size, address): allocation finds the smallest sufficient block in
// O(log n) via a greater-or-equal lookup on the size key, and freeing
// coalesces with adjacent blocks via neighbor lookups on the address key.
package bestfit

import "github.com/mjmiller/multikey"

// Block is a contiguous run of the managed range.
type Block struct {
	Addr uint64
	Size uint64
}

const (
	keyAddr = iota
	keySizeAddr
)

func cmpAddr(a, b *Block, _ any) int {
	switch {
	case a.Addr < b.Addr:
		return -1
	case a.Addr > b.Addr:
		return 1
	default:
		return 0
	}
}

func cmpSizeAddr(a, b *Block, ctx any) int {
	switch {
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	default:
		return cmpAddr(a, b, ctx)
	}
}

// Pool manages a contiguous address range with best-fit allocation.
// It is not safe for concurrent use.
type Pool struct {
	free  *multikey.Collection[*Block]
	taken *multikey.Collection[*Block]
}

// New returns a pool managing size bytes starting at base.
func New(base, size uint64) (*Pool, error) {
	if size == 0 {
		return nil, multikey.ErrInvalidArgument
	}
	free, err := multikey.New[*Block](
		[]multikey.Compare[*Block]{cmpAddr, cmpSizeAddr}, nil, nil)
	if err != nil {
		return nil, err
	}
	taken, err := multikey.New[*Block](
		[]multikey.Compare[*Block]{cmpAddr}, nil, nil)
	if err != nil {
		return nil, err
	}
	p := &Pool{free: free, taken: taken}
	_, err = p.free.Add(&Block{Addr: base, Size: size})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// must is for operations on the pool's own collections, whose comparators
// are consistent with each other. A failure there is a bug, not an input
// condition.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Alloc carves size bytes out of the smallest free block that can hold
// them, preferring the lowest address among ties. It reports the carved
// range's address, or false when no free block is large enough.
func (p *Pool) Alloc(size uint64) (uint64, bool) {
	if size == 0 {
		return 0, false
	}
	blk, err := p.free.Find(multikey.FindGreaterOrEqual, keySizeAddr, &Block{Size: size})
	must(err)
	if blk == nil {
		return 0, false
	}

	var got *Block
	if blk.Size > size {
		// Carve from the tail. The block's address is unchanged, so only
		// the size key needs re-keying.
		_, err = p.free.RemoveKeyIdx(keySizeAddr, blk)
		must(err)
		blk.Size -= size
		_, err = p.free.AddKeyIdx(keySizeAddr, blk)
		must(err)
		got = &Block{Addr: blk.Addr + blk.Size, Size: size}
	} else {
		_, err = p.free.Remove(blk)
		must(err)
		got = blk
	}
	_, err = p.taken.Add(got)
	must(err)
	return got.Addr, true
}

// Free returns the block allocated at addr to the pool, merging it with
// any adjacent free blocks. It reports false when addr is not the address
// of a live allocation.
func (p *Pool) Free(addr uint64) bool {
	blk, err := p.taken.Remove(&Block{Addr: addr})
	must(err)
	if blk == nil {
		return false
	}

	prev, err := p.free.Find(multikey.FindLess, keyAddr, blk)
	must(err)
	if prev != nil && prev.Addr+prev.Size == blk.Addr {
		_, err = p.free.Remove(prev)
		must(err)
		blk.Addr = prev.Addr
		blk.Size += prev.Size
	}

	next, err := p.free.Find(multikey.FindGreater, keyAddr, blk)
	must(err)
	if next != nil && blk.Addr+blk.Size == next.Addr {
		_, err = p.free.Remove(next)
		must(err)
		blk.Size += next.Size
	}

	_, err = p.free.Add(blk)
	must(err)
	return true
}

// FreeBlocks returns the number of free blocks.
func (p *Pool) FreeBlocks() int { return p.free.Len() }

// TakenBlocks returns the number of live allocations.
func (p *Pool) TakenBlocks() int { return p.taken.Len() }

// FreeBytes returns the total free space.
func (p *Pool) FreeBytes() uint64 {
	var total uint64
	err := p.free.Walk(func(blk *Block, _, _ any) (bool, error) {
		total += blk.Size
		return false, nil
	}, nil)
	must(err)
	return total
}

// LargestFree returns the size of the largest free block, 0 when the pool
// is exhausted.
func (p *Pool) LargestFree() uint64 {
	it, err := p.free.Iter(keySizeAddr)
	must(err)
	defer it.Close()
	if blk, ok := it.Last(); ok {
		return blk.Size
	}
	return 0
}

// Close releases the pool's bookkeeping.
func (p *Pool) Close() error {
	if err := p.free.Close(nil, nil); err != nil {
		return err
	}
	return p.taken.Close(nil, nil)
}
