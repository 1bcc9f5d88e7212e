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

// Close tears the collection down. Items are drained in ascending order of
// the first key index; itemFn, when non-nil, runs exactly once per logical
// item no matter how many indexes exist. After the drain, ctxFn (when
// non-nil) runs once on the collection context, even a nil one.
//
// Teardown always runs to completion: callback errors are recorded, the
// last one observed becomes the return value, and the collection is
// unusable afterwards either way.
func (c *Collection[T]) Close(itemFn ItemFunc[T], ctxFn ContextFunc) error {
	if c == nil {
		return errors.Wrap(ErrInvalidArgument, "close")
	}
	c.check()

	var lastErr error
	rep := c.representative()

	// If an index's delete claims success without shrinking the index, the
	// drain below would spin on the same minimum forever. The
	// representative index can only surrender as many minimums as it has
	// nodes, so anything past that is a broken internal invariant.
	limit := rep.Len() + 1
	for n := 0; ; n++ {
		if n >= limit {
			panic(errors.AssertionFailedf("multikey: teardown drain did not terminate"))
		}
		item, ok := rep.Min()
		if !ok {
			break
		}
		for i := range c.indexes {
			if removed, found := c.indexes[i].Delete(item); !found || removed != item {
				// Keep draining; a leak here is worse than a late error.
				lastErr = errors.Wrapf(ErrOutOfSync, "teardown: item missing from key index %d", i)
			}
		}
		if itemFn != nil {
			if err := itemFn(item, c.ctx); err != nil {
				lastErr = err
			}
		}
	}

	if ctxFn != nil {
		if err := ctxFn(c.ctx); err != nil {
			lastErr = err
		}
	}

	c.closed = true
	c.indexes = nil
	c.count = 0
	c.ctx = nil
	return lastErr
}
