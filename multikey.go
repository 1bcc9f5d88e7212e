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

// Package multikey provides a collection of items indexed simultaneously
// by several independent orderings.
//
// A Collection is built from M comparator functions. Every item added is
// inserted into M parallel ordered indexes, each node referring to the
// same item, so the item can be looked up in O(log n) by any of its keys.
// Beyond exact match, lookups support greater/less and their inclusive
// variants for keys that are not present. Single-index Add/Remove variants
// exist so a caller can re-key an item in place without disturbing the
// orderings that do not involve the mutated field.
//
// A Collection is not safe for concurrent use; callers sharing one across
// goroutines must serialize access themselves.
package multikey

import (
	"github.com/cockroachdb/errors"
	"github.com/google/btree"

	"github.com/mjmiller/multikey/internal/index"
)

// Compare orders two items for one key index. It returns a negative number
// when a sorts before b, zero when the two are equal under this key, and a
// positive number otherwise. ctx is the collection context supplied at
// construction.
type Compare[T any] func(a, b T, ctx any) int

// ItemFunc is applied to items handed back to the caller during teardown
// and failed copies. A non-nil return is recorded but does not stop the
// enclosing drain.
type ItemFunc[T any] func(item T, ctx any) error

// TransformFunc produces the destination item for a source item during
// Copy. It runs exactly once per logical item.
type TransformFunc[T any] func(item T, ctx any) T

// ContextFunc is applied to the collection context during teardown.
type ContextFunc func(ctx any) error

// WalkFunc is applied to every item during Walk. Returning stop true halts
// the walk; a non-nil error is recorded without halting.
type WalkFunc[T any] func(item T, ctx, walkCtx any) (stop bool, err error)

// Allocator controls how index nodes are allocated. The degree is the
// branching factor of each index and the free list is shared by every
// index of the collection, so nodes released by one keying are reused by
// the others. A single Allocator may also be shared across collections
// holding the same item type.
//
// The zero value is not useful; use NewAllocator, or pass nil where an
// Allocator is accepted to get the defaults.
type Allocator[T any] struct {
	degree int
	free   *btree.FreeListG[T]
}

// NewAllocator returns an Allocator with the given index branching factor.
// A degree below 2 selects the default.
func NewAllocator[T any](degree int) *Allocator[T] {
	return &Allocator[T]{degree: degree, free: index.NewFreeList[T]()}
}

func defaultAllocator[T any]() Allocator[T] {
	return Allocator[T]{degree: index.DefaultDegree, free: index.NewFreeList[T]()}
}

// Collection is a set of items indexed by M independent orderings.
//
// Items are held by reference: the same item value appears in every index,
// and the collection never copies, inspects, or frees item payloads except
// through caller-supplied callbacks. The zero value of T is reserved to
// mean "no item" and may not be stored.
type Collection[T comparable] struct {
	ctx     any
	cmps    []Compare[T]
	indexes []index.Index[T]
	count   int
	alloc   Allocator[T]
	closed  bool
}

// New builds a collection with one index per comparator. cmps must be
// non-empty and contain no nil entries. ctx is an opaque value passed to
// every comparator and callback invocation. alloc may be nil for the
// default allocator.
func New[T comparable](cmps []Compare[T], ctx any, alloc *Allocator[T]) (*Collection[T], error) {
	if len(cmps) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "no comparators")
	}
	for i, cmp := range cmps {
		if cmp == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "nil comparator at key index %d", i)
		}
	}
	c := &Collection[T]{
		ctx:  ctx,
		cmps: append([]Compare[T](nil), cmps...),
	}
	if alloc != nil {
		c.alloc = *alloc
	} else {
		c.alloc = defaultAllocator[T]()
	}
	c.indexes = make([]index.Index[T], len(c.cmps))
	for i := range c.cmps {
		pos := i
		// The less function closes over the collection and a position
		// rather than a comparator value so that a context swapped in by
		// Copy is seen by every subsequent comparison.
		less := func(a, b T) bool { return c.cmps[pos](a, b, c.ctx) < 0 }
		c.indexes[i] = index.NewBTree[T](less, c.alloc.degree, c.alloc.free)
	}
	return c, nil
}

// Context returns the opaque context supplied at construction (or chosen
// during Copy).
func (c *Collection[T]) Context() any {
	if c == nil {
		return nil
	}
	return c.ctx
}

// Len returns the number of logical items in the collection. It returns 0
// for a nil or closed collection.
func (c *Collection[T]) Len() int {
	if c == nil || c.closed {
		return 0
	}
	return c.count
}

// Keys returns the number of key indexes.
func (c *Collection[T]) Keys() int {
	if c == nil || c.closed {
		return 0
	}
	return len(c.indexes)
}

// check panics if the collection has already been closed. Continuing to
// operate on a torn-down collection would read freed index state, so this
// is treated as a caller bug rather than a recoverable error.
func (c *Collection[T]) check() {
	if c.closed {
		panic(errors.AssertionFailedf("multikey: use of closed collection"))
	}
	if len(c.indexes) == 0 || len(c.indexes) != len(c.cmps) {
		panic(errors.AssertionFailedf("multikey: collection state corrupted"))
	}
}

// representative returns the index used to drive whole-collection drains.
func (c *Collection[T]) representative() index.Index[T] {
	for _, ix := range c.indexes {
		if ix != nil {
			return ix
		}
	}
	panic(errors.AssertionFailedf("multikey: collection has no usable index"))
}

// Add inserts item into every key index. If an item equal to it (under the
// first index's comparator) is already present, the collection is left
// unchanged and the resident item is returned; otherwise the zero value is
// returned and the item count grows by one.
//
// If the indexes disagree about whether an equal item exists, the partial
// insertion is rolled back and ErrOutOfSync is returned.
func (c *Collection[T]) Add(item T) (existing T, _ error) {
	var zero T
	if c == nil || item == zero {
		return zero, errors.Wrap(ErrInvalidArgument, "add")
	}
	c.check()

	// The first index decides whether the item is logically present; every
	// other index must agree, by reference, or the orderings have diverged.
	var present bool
	for i := range c.indexes {
		got, found := c.indexes[i].Insert(item)
		if i == 0 {
			existing, present = got, found
			continue
		}
		if found != present || got != existing {
			c.rollbackAdd(item, i, !present, !found)
			return zero, errors.Wrapf(ErrOutOfSync, "add diverged at key index %d", i)
		}
	}
	if !present {
		c.count++
	}
	return existing, nil
}

// rollbackAdd undoes the fan-out of a failed Add. Only indexes that
// actually accepted a fresh insert are touched: indexes before the
// divergence point were fresh iff the first index was, and the diverging
// index is handled by its own flag.
func (c *Collection[T]) rollbackAdd(item T, diverged int, freshBefore, freshAt bool) {
	if freshBefore {
		for i := 0; i < diverged; i++ {
			if removed, ok := c.indexes[i].Delete(item); !ok || removed != item {
				panic(errors.AssertionFailedf(
					"multikey: rollback lost item in key index %d", i))
			}
		}
	}
	if freshAt {
		if removed, ok := c.indexes[diverged].Delete(item); !ok || removed != item {
			panic(errors.AssertionFailedf(
				"multikey: rollback lost item in key index %d", diverged))
		}
	}
}

// Remove deletes the item matching key (under the first index's
// comparator) from every key index and returns it. The zero value is
// returned without error when no index holds a match.
//
// Divergence between indexes re-inserts whatever was already deleted and
// returns ErrOutOfSync.
func (c *Collection[T]) Remove(key T) (removed T, _ error) {
	var zero T
	if c == nil || key == zero {
		return zero, errors.Wrap(ErrInvalidArgument, "remove")
	}
	c.check()

	var found bool
	for i := range c.indexes {
		got, ok := c.indexes[i].Delete(key)
		if i == 0 {
			removed, found = got, ok
			continue
		}
		if ok != found || got != removed {
			c.rollbackRemove(i, removed, found, got, ok)
			return zero, errors.Wrapf(ErrOutOfSync, "remove diverged at key index %d", i)
		}
	}
	if found {
		if c.count == 0 {
			// Every index held the item while the logical count said the
			// collection was empty. Restore the indexes and report the
			// inconsistency instead of underflowing.
			for i := range c.indexes {
				c.indexes[i].Insert(removed)
			}
			return zero, errors.Wrap(ErrOutOfSync, "removal from logically empty collection")
		}
		c.count--
	}
	return removed, nil
}

// rollbackRemove re-inserts items deleted by a failed Remove fan-out.
func (c *Collection[T]) rollbackRemove(diverged int, at0 T, found0 bool, atD T, foundD bool) {
	if found0 {
		for i := 0; i < diverged; i++ {
			if _, resident := c.indexes[i].Insert(at0); resident {
				panic(errors.AssertionFailedf(
					"multikey: rollback collided in key index %d", i))
			}
		}
	}
	if foundD {
		if _, resident := c.indexes[diverged].Insert(atD); resident {
			panic(errors.AssertionFailedf(
				"multikey: rollback collided in key index %d", diverged))
		}
	}
}

// AddKeyIdx inserts item into the single index at keyIdx, leaving every
// other index and the logical item count alone. It is one half of the
// re-keying protocol: remove the item from the indexes whose key fields
// are about to change, mutate the item, then re-add it here. The caller
// must restore the item to every removed index before the next whole-item
// operation.
func (c *Collection[T]) AddKeyIdx(keyIdx int, item T) (existing T, _ error) {
	var zero T
	if c == nil || item == zero {
		return zero, errors.Wrap(ErrInvalidArgument, "add key idx")
	}
	c.check()
	if keyIdx < 0 || keyIdx >= len(c.indexes) {
		return zero, errors.Wrapf(ErrInvalidArgument, "key index %d of %d", keyIdx, len(c.indexes))
	}
	existing, _ = c.indexes[keyIdx].Insert(item)
	return existing, nil
}

// RemoveKeyIdx deletes the item matching key from the single index at
// keyIdx. See AddKeyIdx for the intended protocol.
func (c *Collection[T]) RemoveKeyIdx(keyIdx int, key T) (removed T, _ error) {
	var zero T
	if c == nil || key == zero {
		return zero, errors.Wrap(ErrInvalidArgument, "remove key idx")
	}
	c.check()
	if keyIdx < 0 || keyIdx >= len(c.indexes) {
		return zero, errors.Wrapf(ErrInvalidArgument, "key index %d of %d", keyIdx, len(c.indexes))
	}
	removed, _ = c.indexes[keyIdx].Delete(key)
	return removed, nil
}

// Walk applies fn to every item in the order of the first key index. A
// callback may halt the walk by returning stop. Callback errors do not
// halt the walk; the first one observed becomes Walk's return value.
func (c *Collection[T]) Walk(fn WalkFunc[T], walkCtx any) error {
	if c == nil || fn == nil {
		return errors.Wrap(ErrInvalidArgument, "walk")
	}
	c.check()

	var firstErr error
	c.representative().Ascend(func(item T) bool {
		stop, err := fn(item, c.ctx, walkCtx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return !stop
	})
	return firstErr
}
