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
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elphase/vcf"
)

func members(s *bitset.BitSet) (result []uint) {
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		result = append(result, i)
	}
	return result
}

func TestMapCalls(t *testing.T) {
	atoC1 := NewHaplotype("AtoC1", ev(3, "A", "C"))
	atoC2 := NewHaplotype("AtoC2", ev(4, "A", "T"))
	spanDelHaplotype := NewHaplotype("spanDel", ev(3, "AA", "A"))
	pool := []*Haplotype{atoC1, atoC2, spanDelHaplotype}

	tests := []struct {
		name     string
		call     *vcf.Variant
		expected []uint
	}{
		{"first snp", newCall(3, "A", "C"), []uint{0}},
		{"second snp", newCall(4, "A", "T"), []uint{1}},
		{"no haplotype", newCall(1, "A", "T"), nil},
		{"spanned snp", newCall(4, "A", "T", "*"), []uint{1}},
		{"spanning deletion only", newCall(4, "A", "*"), []uint{2}},
		{"spanning deletion and non-ref", newCall(4, "A", "*", "<NON_REF>"), []uint{2}},
		{"non-ref", newCall(3, "A", "C", "<NON_REF>"), []uint{0}},
		{"multi-allelic", newCall(3, "A", "C", "T"), nil},
		{"deletion", newCall(3, "AA", "A"), []uint{2}},
		{"padded snp", newCall(3, "AA", "CA"), []uint{0}},
		{"wrong padding", newCall(3, "AA", "CT"), nil},
		{"non-ref only", newCall(3, "A", "<NON_REF>"), nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := MapCalls([]*vcf.Variant{test.call}, pool)
			require.Len(t, m.Support, 1)
			assert.Equal(t, test.expected, members(m.Support[0]))
		})
	}
}

func TestMapCallsIsIdempotent(t *testing.T) {
	pool := []*Haplotype{
		NewHaplotype("h1", ev(2, "A", "C"), ev(4, "A", "T")),
		NewHaplotype("h2", ev(3, "A", "C"), ev(5, "A", "T")),
		NewHaplotype("h3", ev(2, "AAA", "A")),
	}
	calls := []*vcf.Variant{newCall(2, "A", "C"), newCall(3, "A", "C", "*"), newCall(4, "A", "T"), newCall(5, "A", "T")}

	m1 := MapCalls(calls, pool)
	m2 := MapCalls(calls, pool)
	require.Len(t, m1.Support, len(calls))
	for i := range calls {
		assert.True(t, m1.Support[i].Equal(m2.Support[i]), "support of call %d", i)
	}
	assert.Equal(t, []uint{0}, members(m1.Support[0]))
	assert.Equal(t, []uint{1}, members(m1.Support[1]))
	assert.Equal(t, uint(2), m1.Population())
}

func TestPopulation(t *testing.T) {
	assert.Equal(t, uint(0), population(nil))
	assert.Equal(t, uint(0), population([]*bitset.BitSet{bitset.New(3), nil}))
	assert.Equal(t, uint(3), population([]*bitset.BitSet{
		bitset.New(4).Set(0).Set(1),
		bitset.New(4),
		bitset.New(4).Set(1).Set(3),
	}))
}
