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

package index

import "github.com/google/btree"

// DefaultDegree is the branching factor used when the caller does not
// choose one.
const DefaultDegree = 32

// bTree implements Index on top of github.com/google/btree.
type bTree[T any] struct {
	tree *btree.BTreeG[T]
}

// NewBTree returns an Index ordered by less. Nodes are drawn from free when
// it is non-nil, which lets several indexes share one free list.
func NewBTree[T any](less LessFunc[T], degree int, free *btree.FreeListG[T]) Index[T] {
	if degree <= 1 {
		degree = DefaultDegree
	}
	if free == nil {
		return &bTree[T]{tree: btree.NewG[T](degree, btree.LessFunc[T](less))}
	}
	return &bTree[T]{tree: btree.NewWithFreeListG[T](degree, btree.LessFunc[T](less), free)}
}

// NewFreeList returns a node free list of the library's default size.
func NewFreeList[T any]() *btree.FreeListG[T] {
	return btree.NewFreeListG[T](btree.DefaultFreeListSize)
}

func (b *bTree[T]) Insert(item T) (existing T, found bool) {
	if existing, found = b.tree.Get(item); found {
		return existing, true
	}
	b.tree.ReplaceOrInsert(item)
	return existing, false
}

func (b *bTree[T]) Delete(key T) (removed T, found bool) {
	return b.tree.Delete(key)
}

func (b *bTree[T]) Get(key T) (item T, found bool) {
	return b.tree.Get(key)
}

func (b *bTree[T]) Min() (item T, found bool) {
	return b.tree.Min()
}

func (b *bTree[T]) Max() (item T, found bool) {
	return b.tree.Max()
}

func (b *bTree[T]) Len() int {
	return b.tree.Len()
}

func (b *bTree[T]) AscendGreaterOrEqual(pivot T, fn func(item T) bool) {
	b.tree.AscendGreaterOrEqual(pivot, btree.ItemIteratorG[T](fn))
}

func (b *bTree[T]) DescendLessOrEqual(pivot T, fn func(item T) bool) {
	b.tree.DescendLessOrEqual(pivot, btree.ItemIteratorG[T](fn))
}

func (b *bTree[T]) Ascend(fn func(item T) bool) {
	b.tree.Ascend(btree.ItemIteratorG[T](fn))
}

func (b *bTree[T]) Descend(fn func(item T) bool) {
	b.tree.Descend(btree.ItemIteratorG[T](fn))
}

func (b *bTree[T]) Items() []T {
	items := make([]T, 0, b.tree.Len())
	b.tree.Ascend(func(item T) bool {
		items = append(items, item)
		return true
	})
	return items
}
