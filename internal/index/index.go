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

// Package index provides the single-key ordered index underlying each
// keying of a multi-key collection. The collection layer above fans items
// out across several of these, one per comparator; this package only knows
// about one ordering at a time.
package index

// LessFunc reports whether a sorts before b.
type LessFunc[T any] func(a, b T) bool

// Index is one ordered view over a set of items. Implementations store
// items by reference and never copy or inspect them beyond calling the
// ordering function they were constructed with.
//
// An Index holds at most one item per equivalence class of its ordering:
// Insert of an item equal to a resident item is a no-op that reports the
// resident.
type Index[T any] interface {

	// Insert adds item unless an equal item is already present, in which
	// case the resident item is returned with found set and the index is
	// left unchanged.
	Insert(item T) (existing T, found bool)

	// Delete removes and returns the item equal to key, if any.
	Delete(key T) (removed T, found bool)

	// Get returns the item equal to key, if any.
	Get(key T) (item T, found bool)

	// Min and Max return the extreme items of the ordering.
	Min() (item T, found bool)
	Max() (item T, found bool)

	// Len returns the number of items in this index.
	Len() int

	// AscendGreaterOrEqual visits items >= pivot in ascending order until
	// fn returns false.
	AscendGreaterOrEqual(pivot T, fn func(item T) bool)

	// DescendLessOrEqual visits items <= pivot in descending order until
	// fn returns false.
	DescendLessOrEqual(pivot T, fn func(item T) bool)

	// Ascend and Descend visit every item, in order and in reverse order
	// respectively, until fn returns false.
	Ascend(fn func(item T) bool)
	Descend(fn func(item T) bool)

	// Items returns the items in ascending order as a fresh slice.
	Items() []T
}
