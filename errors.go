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

var (
	// ErrInvalidArgument is returned when a required argument is missing or
	// out of range. The operation is a no-op.
	ErrInvalidArgument = errors.New("multikey: invalid argument")

	// ErrOutOfSync is returned when the key indexes disagree about an item's
	// membership. This indicates comparators that are inconsistent about
	// equality across indexes, or single-index re-keying that was never
	// completed. The failing operation rolls its partial work back before
	// returning.
	ErrOutOfSync = errors.New("multikey: key indexes out of sync")
)
