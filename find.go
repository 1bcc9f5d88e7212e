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

// FindType selects how Find matches the lookup key against an index. The
// directional types locate the nearest item in the requested direction
// whether or not the key itself is present.
type FindType int

const (
	findInvalid FindType = iota

	// FindEqual matches only an item equal to the lookup key.
	FindEqual

	// FindGreater matches the closest item strictly greater than the key.
	FindGreater

	// FindLess matches the closest item strictly less than the key.
	FindLess

	// FindGreaterOrEqual matches the key itself when present, otherwise the
	// closest greater item.
	FindGreaterOrEqual

	// FindLessOrEqual matches the key itself when present, otherwise the
	// closest lesser item.
	FindLessOrEqual
)

// Valid reports whether t is one of the defined find types.
func (t FindType) Valid() bool {
	return t >= FindEqual && t <= FindLessOrEqual
}

func (t FindType) String() string {
	switch t {
	case FindEqual:
		return "equal"
	case FindGreater:
		return "greater than"
	case FindLess:
		return "less than"
	case FindGreaterOrEqual:
		return "greater than or equal"
	case FindLessOrEqual:
		return "less than or equal"
	default:
		return "invalid"
	}
}

// Find looks up key in the index at keyIdx. "Greater" and "less" are
// relative to that index's comparator, so on a descending index FindGreater
// walks toward numerically smaller items. The zero value is returned, with
// a nil error, when no item satisfies the find type.
//
// Exact matches delegate to the index's native lookup; the directional
// types seek to the nearest neighbor in O(log n).
func (c *Collection[T]) Find(typ FindType, keyIdx int, key T) (T, error) {
	var zero T
	if c == nil || key == zero {
		return zero, errors.Wrap(ErrInvalidArgument, "find")
	}
	c.check()
	if !typ.Valid() {
		return zero, errors.Wrapf(ErrInvalidArgument, "find type %d", int(typ))
	}
	if keyIdx < 0 || keyIdx >= len(c.indexes) {
		return zero, errors.Wrapf(ErrInvalidArgument, "key index %d of %d", keyIdx, len(c.indexes))
	}

	ix := c.indexes[keyIdx]
	cmp := c.cmps[keyIdx]
	var out T
	switch typ {
	case FindEqual:
		out, _ = ix.Get(key)
	case FindGreaterOrEqual:
		ix.AscendGreaterOrEqual(key, func(item T) bool {
			out = item
			return false
		})
	case FindGreater:
		ix.AscendGreaterOrEqual(key, func(item T) bool {
			if cmp(item, key, c.ctx) == 0 {
				return true // skip the key itself
			}
			out = item
			return false
		})
	case FindLessOrEqual:
		ix.DescendLessOrEqual(key, func(item T) bool {
			out = item
			return false
		})
	case FindLess:
		ix.DescendLessOrEqual(key, func(item T) bool {
			if cmp(item, key, c.ctx) == 0 {
				return true
			}
			out = item
			return false
		})
	}
	return out, nil
}
