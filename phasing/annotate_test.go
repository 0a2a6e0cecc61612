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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elphase/utils"
	"github.com/exascience/elphase/vcf"
)

func genotypeEntry(t *testing.T, v *vcf.Variant, key utils.Symbol) interface{} {
	t.Helper()
	require.Len(t, v.GenotypeData, 1)
	value, ok := v.GenotypeData[0].Data.Get(key)
	require.True(t, ok, "missing %v", *key)
	return value
}

func TestAnnotate(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C"), newCall(3, "A", "C")}
	sets := []PhaseSet{{ID: 0, Number: 1, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase10}}}

	phased, err := Annotate(calls, sets)
	require.NoError(t, err)
	require.Len(t, phased, 3)

	assert.Equal(t, []int32{0, 1}, phased[0].GenotypeData[0].GT)
	assert.True(t, phased[0].GenotypeData[0].Phased)
	assert.Equal(t, "0|1", genotypeEntry(t, phased[0], PGT))
	assert.Equal(t, "1_A_C", genotypeEntry(t, phased[0], PID))
	assert.Equal(t, 1, genotypeEntry(t, phased[0], PS))

	assert.Equal(t, []int32{1, 0}, phased[1].GenotypeData[0].GT)
	assert.True(t, phased[1].GenotypeData[0].Phased)
	assert.Equal(t, "1|0", genotypeEntry(t, phased[1], PGT))
	assert.Equal(t, "1_A_C", genotypeEntry(t, phased[1], PID))
	assert.Equal(t, 1, genotypeEntry(t, phased[1], PS))

	assert.Same(t, calls[2], phased[2])
	assert.False(t, phased[2].GenotypeData[0].Phased)

	for i, v := range phased {
		assert.Equal(t, calls[i].Pos, v.Pos)
	}
	assert.Equal(t, []utils.Symbol{vcf.GT, PGT, PID, PS}, phased[0].GenotypeFormat)
}

func TestAnnotateDoesNotModifyCalls(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C")}
	sets := []PhaseSet{{ID: 0, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase10}}}

	_, err := Annotate(calls, sets)
	require.NoError(t, err)
	for _, call := range calls {
		assert.Equal(t, []int32{0, 1}, call.GenotypeData[0].GT)
		assert.False(t, call.GenotypeData[0].Phased)
		assert.Empty(t, call.GenotypeData[0].Data)
		assert.Equal(t, []utils.Symbol{vcf.GT}, call.GenotypeFormat)
	}
}

func TestAnnotateAllPhased(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C"), newCall(3, "A", "C")}
	sets := []PhaseSet{{ID: 0, Members: []int{0, 1, 2}, Groups: []PhaseGroup{Phase01, Phase10, Phase01}}}

	phased, err := Annotate(calls, sets)
	require.NoError(t, err)
	ids := make(map[interface{}]bool)
	for _, v := range phased {
		assert.True(t, v.GenotypeData[0].Phased)
		ids[genotypeEntry(t, v, PID)] = true
	}
	assert.Len(t, ids, 1)
	assert.Equal(t, []int32{1, 0}, phased[1].GenotypeData[0].GT)
	assert.Equal(t, []int32{0, 1}, phased[2].GenotypeData[0].GT)
}

func TestAnnotateSpanningDeletion(t *testing.T) {
	snp := newCall(1, "A", "C")
	deletion := newCall(3, "AA", "A")
	spanned := newCall(4, "A", "*", "C")
	spanned.GenotypeData[0].GT = []int32{1, 2}
	calls := []*vcf.Variant{snp, deletion, spanned}
	sets := []PhaseSet{{ID: 1, Number: 7, Members: []int{1, 2}, Groups: []PhaseGroup{Phase01, Phase10}}}

	phased, err := Annotate(calls, sets)
	require.NoError(t, err)
	assert.Same(t, snp, phased[0])
	assert.Equal(t, []int32{0, 1}, phased[1].GenotypeData[0].GT)
	assert.Equal(t, []int32{2, 1}, phased[2].GenotypeData[0].GT)
	assert.Equal(t, "3_AA_A", genotypeEntry(t, phased[2], PID))
	assert.Equal(t, 7, genotypeEntry(t, phased[2], PS))
}

func TestAnnotateHomozygousGenotype(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C")}
	calls[1].GenotypeData[0].GT = []int32{1, 1}
	sets := []PhaseSet{{ID: 0, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase10}}}

	phased, err := Annotate(calls, sets)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1}, phased[1].GenotypeData[0].GT)
	assert.True(t, phased[1].GenotypeData[0].Phased)
	assert.Equal(t, "1|0", genotypeEntry(t, phased[1], PGT))
}

func TestAnnotateRejectsSmallPhaseSets(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C"), newCall(3, "A", "C")}
	sets := []PhaseSet{
		{ID: 0, Members: []int{0, 1}, Groups: []PhaseGroup{Phase01, Phase01}},
		{ID: 2, Members: []int{2}, Groups: []PhaseGroup{Phase01}},
	}

	phased, err := Annotate(calls, sets)
	assert.Nil(t, phased)
	assert.True(t, errors.Is(err, ErrPhaseSetTooSmall))
	var inconsistency *InconsistencyError
	require.True(t, errors.As(err, &inconsistency))
	assert.Equal(t, 2, inconsistency.Set.ID)
	assert.False(t, calls[0].GenotypeData[0].Phased)
}

func TestAnnotateWithoutPhaseSets(t *testing.T) {
	calls := []*vcf.Variant{newCall(1, "A", "C"), newCall(2, "A", "C")}
	calls[0].GenotypeData[0].Phased = true
	phased, err := Annotate(calls, nil)
	require.NoError(t, err)
	require.Len(t, phased, 2)
	assert.Same(t, calls[0], phased[0])
	assert.Same(t, calls[1], phased[1])
	assert.True(t, phased[0].GenotypeData[0].Phased)
}

func TestPhasingID(t *testing.T) {
	assert.Equal(t, "100_AC_A", PhasingID(newCall(100, "AC", "A", "<NON_REF>")))
	assert.Equal(t, "100_A_.", PhasingID(newCall(100, "A")))
}
