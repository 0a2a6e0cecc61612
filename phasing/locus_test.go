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

	"github.com/stretchr/testify/assert"
)

var (
	refAllele = Allele{Kind: Reference}
	snpG      = ExplicitAllele("A", "G")
	snpC      = ExplicitAllele("A", "C")
	snpT      = ExplicitAllele("A", "T")
)

func TestResolve(t *testing.T) {
	snpHaplotype := NewHaplotype("snp", ev(1000, "A", "G"))
	snpHaplotype2 := NewHaplotype("snp2", ev(1000, "A", "G"), ev(1020, "T", "A"))
	refHaplotype := NewHaplotype("ref")
	deletionHaplotype := NewHaplotype("deletion", ev(995, "ACTGGTCAACT", "A"))
	deletionHaplotype2 := NewHaplotype("deletion2", ev(998, "ACTGGTCAACT", "A"))
	haplotypes := []*Haplotype{snpHaplotype, refHaplotype, deletionHaplotype, snpHaplotype2, deletionHaplotype2}

	var r AlleleResolver
	assert.Equal(t, []Allele{refAllele, snpG, SpanDel}, r.Resolve("20", 1000, haplotypes))
	assert.Equal(t, []Allele{snpG}, r.Resolve("20", 1000, []*Haplotype{snpHaplotype, snpHaplotype2}))
	assert.Equal(t, []Allele{SpanDel}, r.Resolve("20", 1000, []*Haplotype{deletionHaplotype}))
	assert.Equal(t, []Allele{ExplicitAllele("ACTGGTCAACT", "A")}, r.Resolve("20", 995, []*Haplotype{deletionHaplotype}))
	assert.Empty(t, r.Resolve("20", 1000, nil))

	r.IgnoreSpanningEvents = true
	assert.Equal(t, []Allele{refAllele, snpG}, r.Resolve("20", 1000, haplotypes))
}

func TestResolveGivenAlleles(t *testing.T) {
	snpHaplotype := NewHaplotype("snp", ev(1000, "A", "G"))
	refHaplotype := NewHaplotype("ref")
	haplotypes := []*Haplotype{snpHaplotype, refHaplotype}

	r := AlleleResolver{
		GivenAlleles: []Event{ev(1000, "A", "T"), ev(1000, "A", "G"), ev(1001, "C", "G")},
	}
	assert.Equal(t, []Allele{refAllele, snpG}, r.Resolve("20", 1000, haplotypes))

	r.MergeGivenAlleles = true
	assert.Equal(t, []Allele{refAllele, snpG, snpT}, r.Resolve("20", 1000, haplotypes))
	assert.Equal(t, []Allele{snpT, snpG}, r.Resolve("20", 1000, nil))

	r.GivenAlleles = []Event{ev(995, "ACTGGTCAACT", "A")}
	assert.Equal(t, []Allele{refAllele, snpG, SpanDel}, r.Resolve("20", 1000, haplotypes))

	r.IgnoreSpanningEvents = true
	assert.Equal(t, []Allele{refAllele, snpG}, r.Resolve("20", 1000, haplotypes))
}

func TestResolveMinHaplotypeSupport(t *testing.T) {
	haplotypes := []*Haplotype{
		NewHaplotype("g1", ev(1000, "A", "G")),
		NewHaplotype("c", ev(1000, "A", "C")),
		NewHaplotype("g2", ev(1000, "A", "G")),
	}
	r := AlleleResolver{MinHaplotypeSupport: 2}
	assert.Equal(t, []Allele{snpG}, r.Resolve("20", 1000, haplotypes))

	r.GivenAlleles = []Event{ev(1000, "A", "C")}
	r.MergeGivenAlleles = true
	assert.Equal(t, []Allele{snpG, snpC}, r.Resolve("20", 1000, haplotypes))
}

func TestMergeAlleles(t *testing.T) {
	deletionRef := "ACTGGTCAACTCT"
	locus := MergeAlleles("20", 1000, []Allele{refAllele, snpG, ExplicitAllele(deletionRef, "A"), SpanDel})
	assert.Equal(t, "20", locus.Contig)
	assert.Equal(t, int32(1000), locus.Pos)
	assert.Equal(t, deletionRef, locus.Ref)
	assert.Equal(t, []Allele{
		RefAllele(deletionRef),
		ExplicitAllele(deletionRef, "GCTGGTCAACTCT"),
		ExplicitAllele(deletionRef, "A"),
		SpanDel,
	}, locus.Alleles)

	v := locus.Variant()
	assert.Equal(t, deletionRef, v.Ref)
	assert.Equal(t, []string{"GCTGGTCAACTCT", "A", "*"}, v.Alt)

	spanOnly := MergeAlleles("20", 1000, []Allele{refAllele, SpanDel})
	assert.Equal(t, "", spanOnly.Ref)
	assert.Equal(t, []Allele{refAllele, SpanDel}, spanOnly.Alleles)

	duplicates := MergeAlleles("20", 1000, []Allele{ExplicitAllele("AC", "A"), ExplicitAllele("A", "AC"), ExplicitAllele("ACC", "AC")})
	assert.Equal(t, "ACC", duplicates.Ref)
	assert.Equal(t, []Allele{RefAllele("ACC"), ExplicitAllele("ACC", "AC"), ExplicitAllele("ACC", "ACCC")}, duplicates.Alleles)
}
