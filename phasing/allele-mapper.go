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

import "strings"

// An AlleleMapping lists for each allele of a locus the haplotypes
// that support it. Alleles[0] is the reference allele, and
// Haplotypes[i] belongs to Alleles[i].
type AlleleMapping struct {
	Alleles    []Allele
	Haplotypes [][]*Haplotype
}

func newAlleleMapping(alleles []Allele) *AlleleMapping {
	return &AlleleMapping{
		Alleles:    append([]Allele(nil), alleles...),
		Haplotypes: make([][]*Haplotype, len(alleles)),
	}
}

// Get returns the haplotypes supporting the allele, or nil if the
// allele is not part of the mapping.
func (m *AlleleMapping) Get(a Allele) []*Haplotype {
	if i := indexOfAllele(m.Alleles, a); i >= 0 {
		return m.Haplotypes[i]
	}
	return nil
}

// maybeAdd records h for an allele that is already part of the mapping.
func (m *AlleleMapping) maybeAdd(a Allele, h *Haplotype) {
	if i := indexOfAllele(m.Alleles, a); i >= 0 {
		m.Haplotypes[i] = append(m.Haplotypes[i], h)
	}
}

// add records h, appending the allele if necessary.
func (m *AlleleMapping) add(a Allele, h *Haplotype) {
	if i := indexOfAllele(m.Alleles, a); i >= 0 {
		m.Haplotypes[i] = append(m.Haplotypes[i], h)
		return
	}
	m.Alleles = append(m.Alleles, a)
	m.Haplotypes = append(m.Haplotypes, []*Haplotype{h})
}

// MapAlleles assigns each haplotype to the allele of the locus it
// carries. A haplotype without an event covering the locus supports
// the reference allele. An event that starts at the locus supports the
// explicit allele with its alternate padded to the reference of the
// locus, if that allele is listed. A haplotype whose event starts
// upstream and spans the locus supports the spanning deletion when
// mergeSpanningDeletion is set, and otherwise the reference allele
// unless it also has an event at the locus.
func MapAlleles(locus MergedLocus, haplotypes []*Haplotype, mergeSpanningDeletion bool) *AlleleMapping {
	mapping := newAlleleMapping(locus.Alleles)
	ref := locus.Alleles[0]
	for _, h := range haplotypes {
		overlaps := h.Events.Overlapping(locus.Contig, locus.Pos)
		if len(overlaps) == 0 {
			mapping.add(ref, h)
			continue
		}
		atLocus := false
		for _, e := range overlaps {
			if e.Pos == locus.Pos {
				atLocus = true
				if len(e.Ref) <= len(locus.Ref) && strings.HasPrefix(locus.Ref, e.Ref) {
					mapping.maybeAdd(ExplicitAllele(locus.Ref, e.Alt+locus.Ref[len(e.Ref):]), h)
				}
				continue
			}
			if mergeSpanningDeletion {
				mapping.add(SpanDel, h)
				atLocus = true
				break
			}
		}
		if !atLocus {
			mapping.add(ref, h)
		}
	}
	return mapping
}
