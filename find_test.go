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
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindTypeStrings(t *testing.T) {
	require.False(t, FindType(0).Valid())
	require.False(t, FindType(99).Valid())
	require.Equal(t, "invalid", FindType(0).String())
	for typ, want := range map[FindType]string{
		FindEqual:          "equal",
		FindGreater:        "greater than",
		FindLess:           "less than",
		FindGreaterOrEqual: "greater than or equal",
		FindLessOrEqual:    "less than or equal",
	} {
		require.True(t, typ.Valid())
		require.Equal(t, want, typ.String())
	}
}

func TestFindValidation(t *testing.T) {
	c := newAscDesc(t)
	_, err := c.Find(FindEqual, 0, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Find(findInvalid, 0, mk(1))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Find(FindType(99), 0, mk(1))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Find(FindEqual, 2, mk(1))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Find(FindEqual, -1, mk(1))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestFindScenario is the worked example: two indexes (ascending and
// descending) over the keys 5, 3, 5, 8.
func TestFindScenario(t *testing.T) {
	c := newAscDesc(t)
	for _, k := range []uint32{5, 3, 5, 8} {
		_, err := c.Add(mk(k))
		require.NoError(t, err)
	}
	require.Equal(t, 3, c.Len())

	got, err := c.Find(FindEqual, 0, mk(3))
	require.NoError(t, err)
	require.Equal(t, uint32(3), got.key)

	got, err = c.Find(FindGreater, 0, mk(5))
	require.NoError(t, err)
	require.Equal(t, uint32(8), got.key)

	// On the descending index "less than 3" means the nearest
	// numerically-greater key.
	got, err = c.Find(FindLess, 1, mk(3))
	require.NoError(t, err)
	require.Equal(t, uint32(5), got.key)

	it, err := c.Iter(0)
	require.NoError(t, err)
	defer it.Close()
	var keys []uint32
	for item, ok := it.First(); ok; item, ok = it.Next() {
		keys = append(keys, item.key)
	}
	require.Equal(t, []uint32{3, 5, 8}, keys)
}

func TestFindPresentKey(t *testing.T) {
	c := newAscDesc(t)
	items := map[uint32]*rec{}
	for _, k := range []uint32{10, 20, 30, 40} {
		item := mk(k)
		items[k] = item
		_, err := c.Add(item)
		require.NoError(t, err)
	}

	// For a present key, GE and LE return the key itself; GT and LT its
	// strict neighbors.
	got, err := c.Find(FindGreaterOrEqual, 0, mk(20))
	require.NoError(t, err)
	require.Same(t, items[20], got)
	got, err = c.Find(FindLessOrEqual, 0, mk(20))
	require.NoError(t, err)
	require.Same(t, items[20], got)
	got, err = c.Find(FindGreater, 0, mk(20))
	require.NoError(t, err)
	require.Same(t, items[30], got)
	got, err = c.Find(FindLess, 0, mk(20))
	require.NoError(t, err)
	require.Same(t, items[10], got)

	// Strict lookups at the boundaries run off the end.
	got, err = c.Find(FindGreater, 0, mk(40))
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = c.Find(FindLess, 0, mk(10))
	require.NoError(t, err)
	require.Nil(t, got)
}

// modelFind answers a directional lookup over a sorted key slice, the
// reference the tree answers are compared against.
func modelFind(sorted []uint32, typ FindType, key uint32) (uint32, bool) {
	ge := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= key })
	switch typ {
	case FindEqual:
		if ge < len(sorted) && sorted[ge] == key {
			return key, true
		}
	case FindGreaterOrEqual:
		if ge < len(sorted) {
			return sorted[ge], true
		}
	case FindGreater:
		i := ge
		if i < len(sorted) && sorted[i] == key {
			i++
		}
		if i < len(sorted) {
			return sorted[i], true
		}
	case FindLessOrEqual:
		i := ge
		if i < len(sorted) && sorted[i] == key {
			return key, true
		}
		if i > 0 {
			return sorted[i-1], true
		}
	case FindLess:
		if ge > 0 {
			return sorted[ge-1], true
		}
	}
	return 0, false
}

func TestFindDirectionalRandomized(t *testing.T) {
	const (
		numKeys  = 400
		keyRange = 1000
		probes   = 2000
	)
	rng := rand.New(rand.NewSource(7))
	c := newAscDesc(t)

	present := map[uint32]bool{}
	for i := 0; i < numKeys; i++ {
		k := uint32(rng.Intn(keyRange))
		_, err := c.Add(mk(k))
		require.NoError(t, err)
		present[k] = true
	}
	sorted := make([]uint32, 0, len(present))
	for k := range present {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	types := []FindType{FindEqual, FindGreater, FindLess, FindGreaterOrEqual, FindLessOrEqual}
	for i := 0; i < probes; i++ {
		k := uint32(rng.Intn(keyRange + 20))
		for _, typ := range types {
			want, wantOK := modelFind(sorted, typ, k)
			got, err := c.Find(typ, 0, mk(k))
			require.NoError(t, err)
			if !wantOK {
				require.Nil(t, got, "%v %d", typ, k)
			} else {
				require.NotNil(t, got, "%v %d", typ, k)
				require.Equal(t, want, got.key, "%v %d", typ, k)
			}

			// The descending index must answer the mirrored question.
			mirror := map[FindType]FindType{
				FindEqual:          FindEqual,
				FindGreater:        FindLess,
				FindLess:           FindGreater,
				FindGreaterOrEqual: FindLessOrEqual,
				FindLessOrEqual:    FindGreaterOrEqual,
			}[typ]
			gotDesc, err := c.Find(mirror, 1, mk(k))
			require.NoError(t, err)
			if !wantOK {
				require.Nil(t, gotDesc, "desc %v %d", mirror, k)
			} else {
				require.NotNil(t, gotDesc, "desc %v %d", mirror, k)
				require.Equal(t, want, gotDesc.key, "desc %v %d", mirror, k)
			}
		}
	}
}

func TestFindEmptyCollection(t *testing.T) {
	c := newAscDesc(t)
	for _, typ := range []FindType{FindEqual, FindGreater, FindLess, FindGreaterOrEqual, FindLessOrEqual} {
		got, err := c.Find(typ, 0, mk(1))
		require.NoError(t, err)
		require.Nil(t, got)
	}
}
