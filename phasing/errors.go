// elphase: read-backed phasing of adjacent heterozygous variant calls.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package phasing

import (
	"errors"
	"fmt"
)

var (
	// ErrPhaseSetTooSmall reports a phase set with fewer than two
	// members. Correct phase set construction never produces one.
	ErrPhaseSetTooSmall = errors.New("phase set has fewer than 2 members")

	// ErrMalformedPhaseSet reports a phase set whose members are out of
	// range, out of order, or lack a phase group.
	ErrMalformedPhaseSet = errors.New("malformed phase set")

	// ErrUnsortedCalls reports a batch of calls that is not sorted by position.
	ErrUnsortedCalls = errors.New("calls are not sorted by position")
)

// An InconsistencyError aborts phasing of a whole window. It wraps
// ErrPhaseSetTooSmall or ErrMalformedPhaseSet.
type InconsistencyError struct {
	Set PhaseSet
	Err error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency in phase set %d (members %v): %v", e.Set.ID, e.Set.Members, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}
