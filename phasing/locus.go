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
	"log"

	"github.com/exascience/elphase/vcf"
)

// EventsAt returns the distinct events of the haplotypes that overlap
// loc, in order of first occurrence. Events that start before loc are
// only included if includeSpanning is set. Deletions with the same
// alleles but different start positions are different events.
func EventsAt(contig string, loc int32, haplotypes []*Haplotype, includeSpanning bool) (result []Event) {
	seen := make(map[Event]bool)
	for _, h := range haplotypes {
		for _, e := range h.Events.Overlapping(contig, loc) {
			if e.Pos != loc && !includeSpanning {
				continue
			}
			if !seen[e] {
				seen[e] = true
				result = append(result, e)
			}
		}
	}
	return result
}

// An AlleleResolver determines the distinct alleles that a list of
// haplotypes implies at a position.
type AlleleResolver struct {
	// GivenAlleles are alleles supplied by the caller that must be
	// genotyped even with little or no haplotype evidence.
	GivenAlleles []Event

	// MergeGivenAlleles adds the given alleles at the position to the
	// alleles evidenced by the haplotypes.
	MergeGivenAlleles bool

	// IgnoreSpanningEvents treats haplotypes whose only event at the
	// position starts upstream as reference haplotypes.
	IgnoreSpanningEvents bool

	// MinHaplotypeSupport is the number of haplotypes needed to report
	// an allele that is not a merged given allele. Values below 2 keep
	// every evidenced allele.
	MinHaplotypeSupport int
}

// haplotypeAllele returns the allele a haplotype carries at loc.
func (r AlleleResolver) haplotypeAllele(h *Haplotype, contig string, loc int32) Allele {
	spanned := false
	for _, e := range h.Events.Overlapping(contig, loc) {
		if e.Pos == loc {
			return ExplicitAllele(e.Ref, e.Alt)
		}
		spanned = true
	}
	if spanned && !r.IgnoreSpanningEvents {
		return SpanDel
	}
	return Allele{Kind: Reference}
}

func (r AlleleResolver) givenAllelesAt(contig string, loc int32) (result []Allele) {
	for _, e := range r.GivenAlleles {
		switch {
		case e.Contig != contig:
		case e.Pos == loc:
			result = addAllele(result, ExplicitAllele(e.Ref, e.Alt))
		case e.spans(contig, loc) && !r.IgnoreSpanningEvents:
			result = addAllele(result, SpanDel)
		}
	}
	return result
}

// Resolve returns the alleles at loc: the Reference allele first if
// any haplotype carries it, then the other alleles in order of first
// occurrence, and finally the merged given alleles not seen before.
// Every allele occurs once. Haplotypes with an upstream event covering
// loc contribute SpanDel rather than the alleles of that event.
func (r AlleleResolver) Resolve(contig string, loc int32, haplotypes []*Haplotype) []Allele {
	var alleles []Allele
	var counts []int
	hasRef := false
	for _, h := range haplotypes {
		a := r.haplotypeAllele(h, contig, loc)
		if a.Kind == Reference {
			hasRef = true
			continue
		}
		if i := indexOfAllele(alleles, a); i >= 0 {
			counts[i]++
		} else {
			alleles = append(alleles, a)
			counts = append(counts, 1)
		}
	}

	var given []Allele
	if r.MergeGivenAlleles {
		given = r.givenAllelesAt(contig, loc)
	}

	result := make([]Allele, 0, len(alleles)+len(given)+1)
	if hasRef {
		result = append(result, Allele{Kind: Reference})
	}
	for i, a := range alleles {
		if counts[i] >= r.MinHaplotypeSupport || indexOfAllele(given, a) >= 0 {
			result = append(result, a)
		}
	}
	for _, a := range given {
		result = addAllele(result, a)
	}
	return result
}

// A MergedLocus is the set of alleles at one position, expressed
// against a single reference allele.
type MergedLocus struct {
	Contig string
	Pos    int32

	// Ref is the longest reference allele of the explicit alleles, or
	// empty if there are none.
	Ref string

	// Alleles[0] is RefAllele(Ref), the others are explicit alleles
	// with Ref as reference, or SpanDel.
	Alleles []Allele
}

// MergeAlleles rewrites resolved alleles against a common reference
// allele. Explicit alleles with a shorter reference get the missing
// reference bases appended to their alternate bases, so that a SNP
// and a deletion at the same position become two alternates of one
// locus.
func MergeAlleles(contig string, loc int32, alleles []Allele) MergedLocus {
	var refAllele string
	for _, a := range alleles {
		if a.Kind == Explicit && len(a.Ref) > len(refAllele) {
			refAllele = a.Ref
		}
	}
	merged := []Allele{RefAllele(refAllele)}
	for _, a := range alleles {
		switch a.Kind {
		case Reference:
		case Explicit:
			merged = addAllele(merged, ExplicitAllele(refAllele, a.Alt+refAllele[len(a.Ref):]))
		case SpanningDeletion:
			merged = addAllele(merged, SpanDel)
		default:
			log.Panicf("unknown allele kind %v", a.Kind)
		}
	}
	return MergedLocus{
		Contig:  contig,
		Pos:     loc,
		Ref:     refAllele,
		Alleles: merged,
	}
}

// Variant returns the locus as a VCF record without genotypes.
func (l MergedLocus) Variant() *vcf.Variant {
	alts := make([]string, 0, len(l.Alleles)-1)
	for _, a := range l.Alleles[1:] {
		alts = append(alts, a.Bases())
	}
	return &vcf.Variant{
		Chrom: l.Contig,
		Pos:   l.Pos,
		ID:    []string{"."},
		Ref:   l.Ref,
		Alt:   alts,
	}
}
