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

package multikey

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Iterator traverses one key index of a collection in that index's order.
// It captures the index's item sequence when created, so later mutations
// of the collection are not observed; create a new Iterator to see them.
//
// A fresh Iterator holds no position: Next steps onto the first item and
// Prev onto the last. Running off either end returns the iterator to the
// no-position state.
type Iterator[T comparable] struct {
	items []T
	cmp   func(a, b T) int
	pos   int // -1 when holding no position
}

// Iter returns an iterator over the index at keyIdx.
func (c *Collection[T]) Iter(keyIdx int) (*Iterator[T], error) {
	if c == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "iter")
	}
	c.check()
	if keyIdx < 0 || keyIdx >= len(c.indexes) {
		return nil, errors.Wrapf(ErrInvalidArgument, "key index %d of %d", keyIdx, len(c.indexes))
	}
	cmp := c.cmps[keyIdx]
	return &Iterator[T]{
		items: c.indexes[keyIdx].Items(),
		cmp:   func(a, b T) int { return cmp(a, b, c.ctx) },
		pos:   -1,
	}, nil
}

// First positions the iterator on the first item.
func (it *Iterator[T]) First() (T, bool) {
	if len(it.items) == 0 {
		it.pos = -1
		var zero T
		return zero, false
	}
	it.pos = 0
	return it.items[0], true
}

// Last positions the iterator on the last item.
func (it *Iterator[T]) Last() (T, bool) {
	if len(it.items) == 0 {
		it.pos = -1
		var zero T
		return zero, false
	}
	it.pos = len(it.items) - 1
	return it.items[it.pos], true
}

// Find positions the iterator on the item equal to key, or clears the
// position when no item matches.
func (it *Iterator[T]) Find(key T) (T, bool) {
	i := sort.Search(len(it.items), func(i int) bool {
		return it.cmp(it.items[i], key) >= 0
	})
	if i < len(it.items) && it.cmp(it.items[i], key) == 0 {
		it.pos = i
		return it.items[i], true
	}
	it.pos = -1
	var zero T
	return zero, false
}

// Next steps to the following item. From the no-position state it steps
// onto the first item.
func (it *Iterator[T]) Next() (T, bool) {
	if it.pos == -1 {
		return it.First()
	}
	it.pos++
	if it.pos >= len(it.items) {
		it.pos = -1
		var zero T
		return zero, false
	}
	return it.items[it.pos], true
}

// Prev steps to the preceding item. From the no-position state it steps
// onto the last item.
func (it *Iterator[T]) Prev() (T, bool) {
	if it.pos == -1 {
		return it.Last()
	}
	it.pos--
	if it.pos < 0 {
		it.pos = -1
		var zero T
		return zero, false
	}
	return it.items[it.pos], true
}

// Cur returns the item at the current position without moving.
func (it *Iterator[T]) Cur() (T, bool) {
	if it.pos < 0 || it.pos >= len(it.items) {
		var zero T
		return zero, false
	}
	return it.items[it.pos], true
}

// Close releases the iterator's snapshot. Every call after Close behaves
// as if the iterator were empty.
func (it *Iterator[T]) Close() {
	it.items = nil
	it.pos = -1
}
