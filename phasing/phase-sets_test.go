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
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supportSets(haplotypes uint, sets ...[]uint) []*bitset.BitSet {
	result := make([]*bitset.BitSet, len(sets))
	for i, set := range sets {
		result[i] = bitset.New(haplotypes)
		for _, h := range set {
			result[i].Set(h)
		}
	}
	return result
}

func TestPhaseGroup(t *testing.T) {
	assert.Equal(t, "0|1", Phase01.String())
	assert.Equal(t, "1|0", Phase10.String())
	assert.Equal(t, Phase10, Phase01.flip())
	assert.Equal(t, Phase01, Phase10.flip())
	assert.Panics(t, func() { _ = PhaseGroup(7).String() })
}

func TestBuildPhaseSets(t *testing.T) {
	tests := []struct {
		name     string
		support  []*bitset.BitSet
		expected []PhaseSet
	}{
		{
			"opposite phase",
			supportSets(2, []uint{0}, []uint{1}),
			[]PhaseSet{{ID: 0, Number: 1, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase10}}},
		},
		{
			"identical support",
			supportSets(1, []uint{0}, []uint{0}),
			[]PhaseSet{{ID: 0, Number: 1, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase01}}},
		},
		{
			"identical support of a larger population",
			supportSets(3, []uint{0}, []uint{0}, []uint{1, 2}),
			[]PhaseSet{{ID: 0, Number: 1, Members: []int{0, 1, 2}, Groups: []PhaseGroup{Phase01, Phase01, Phase10}}},
		},
		{
			"homozygous bridge",
			supportSets(2, []uint{0}, []uint{0, 1}, []uint{1}),
			[]PhaseSet{{ID: 0, Number: 1, Members: []int{0, 2}, Groups: []PhaseGroup{Phase01, Phase10}}},
		},
		{
			"alternating",
			supportSets(2, []uint{0}, []uint{1}, []uint{0}, []uint{1}),
			[]PhaseSet{{ID: 0, Number: 1, Members: []int{0, 1, 2, 3}, Groups: []PhaseGroup{Phase01, Phase10, Phase01, Phase10}}},
		},
		{
			"no phase evidence",
			supportSets(3, []uint{0, 1}, []uint{1, 2}, []uint{0, 2}),
			nil,
		},
		{
			"two blocks split by an unsupported call",
			supportSets(3, []uint{0, 1}, []uint{0, 1}, nil, []uint{2, 1}, []uint{2, 1}),
			[]PhaseSet{
				{ID: 0, Number: 1, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase01}},
				{ID: 3, Number: 2, Members: []int{3, 4}, Groups: []PhaseGroup{Phase01, Phase01}},
			},
		},
		{
			"disjoint but not covering",
			supportSets(3, []uint{0}, []uint{1}, []uint{2}),
			nil,
		},
		{
			"late start",
			supportSets(2, nil, []uint{0}, []uint{0, 1}, []uint{1}, nil),
			[]PhaseSet{{ID: 1, Number: 1, Members: []int{1, 3}, Groups: []PhaseGroup{Phase01, Phase10}}},
		},
		{
			"single call",
			supportSets(1, []uint{0}),
			nil,
		},
		{
			"no calls",
			nil,
			nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sets, err := BuildPhaseSets(test.support)
			require.NoError(t, err)
			assert.Equal(t, test.expected, sets)
			for _, set := range sets {
				assert.GreaterOrEqual(t, set.Len(), 2)
			}
		})
	}
}

func TestBuildPhaseSetsNilSupport(t *testing.T) {
	support := supportSets(2, []uint{0}, nil, []uint{1})
	support[1] = nil
	sets, err := BuildPhaseSets(support)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, []int{0, 2}, sets[0].Members)
}

func TestPhaseSetValidate(t *testing.T) {
	var inconsistency *InconsistencyError

	err := PhaseSet{ID: 0, Members: []int{0}, Groups: []PhaseGroup{Phase01}}.validate(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPhaseSetTooSmall))
	require.True(t, errors.As(err, &inconsistency))
	assert.Equal(t, []int{0}, inconsistency.Set.Members)

	err = PhaseSet{ID: 0, Members: []int{0, 3}, Groups: []PhaseGroup{Phase01, Phase10}}.validate(3)
	assert.True(t, errors.Is(err, ErrMalformedPhaseSet))

	err = PhaseSet{ID: 1, Members: []int{1, 0}, Groups: []PhaseGroup{Phase01, Phase10}}.validate(3)
	assert.True(t, errors.Is(err, ErrMalformedPhaseSet))

	err = PhaseSet{ID: 0, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01}}.validate(3)
	assert.True(t, errors.Is(err, ErrMalformedPhaseSet))

	err = PhaseSet{ID: 1, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase01}}.validate(3)
	assert.True(t, errors.Is(err, ErrMalformedPhaseSet))

	assert.NoError(t, PhaseSet{ID: 0, Members: []int{0, 2}, Groups: []PhaseGroup{Phase01, Phase10}}.validate(3))
}
