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

import "github.com/cockroachdb/errors"

// CopyOptions configures Collection.Copy. The zero value copies items by
// reference into a collection that shares the source's context and
// allocator.
type CopyOptions[T comparable] struct {

	// Transform produces the destination item for each source item. It is
	// applied exactly once per logical item, regardless of how many key
	// indexes exist. When nil, the destination shares the source's items.
	Transform TransformFunc[T]

	// OnItem is the cleanup hook applied to already-copied items if the
	// copy fails partway through.
	OnItem ItemFunc[T]

	// ReplaceContext selects NewContext as the destination's context.
	// Otherwise the destination inherits the source's context.
	ReplaceContext bool

	// NewContext is the destination context when ReplaceContext is set.
	NewContext any

	// OnContext is the cleanup hook applied to NewContext if the copy
	// fails. It is never applied to an inherited source context.
	OnContext ContextFunc

	// Allocator for the destination's indexes. When nil the destination
	// shares the source's node free list.
	Allocator *Allocator[T]
}

// Copy builds a new collection with the same comparators and logical item
// set as c. Items are visited in first-index order; each is transformed
// once (when a Transform is given) and then inserted into every
// destination index.
//
// If the copy fails partway — which can only happen when transformed items
// collapse to equal under some comparator — the partially built
// destination is torn down, applying OnItem to every item already copied
// and OnContext to a replaced context, and the error is returned. The
// source is never mutated.
func (c *Collection[T]) Copy(opts CopyOptions[T]) (*Collection[T], error) {
	if c == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "copy")
	}
	c.check()

	alloc := opts.Allocator
	if alloc == nil {
		shared := c.alloc
		alloc = &shared
	}
	ctx := c.ctx
	if opts.ReplaceContext {
		ctx = opts.NewContext
	}
	dst, err := New(c.cmps, ctx, alloc)
	if err != nil {
		return nil, err
	}

	var copyErr error
	c.representative().Ascend(func(item T) bool {
		copied := item
		if opts.Transform != nil {
			copied = opts.Transform(item, dst.ctx)
		}
		existing, err := dst.Add(copied)
		if err != nil {
			copyErr = err
		} else {
			var zero T
			if existing != zero {
				copyErr = errors.Wrap(ErrOutOfSync, "copy collapsed two items into one")
			}
		}
		if copyErr != nil {
			// The failing item never made it into the destination. It was
			// produced by the transform, so it gets the same cleanup as
			// the items that did.
			if opts.Transform != nil && opts.OnItem != nil {
				_ = opts.OnItem(copied, dst.ctx)
			}
			return false
		}
		return true
	})
	if copyErr != nil {
		var ctxFn ContextFunc
		if opts.ReplaceContext {
			ctxFn = opts.OnContext
		}
		_ = dst.Close(opts.OnItem, ctxFn)
		return nil, copyErr
	}
	return dst, nil
}
