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
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elphase/vcf"
)

// A SupportMap records for each call the haplotypes that carry its
// alternate allele. Support[i] belongs to the i-th call and holds
// indices into Haplotypes. All sets have length len(Haplotypes).
type SupportMap struct {
	Haplotypes []*Haplotype
	Support    []*bitset.BitSet
}

// Population returns the number of distinct haplotypes that support
// at least one call.
func (m *SupportMap) Population() uint {
	return population(m.Support)
}

func population(support []*bitset.BitSet) uint {
	var union *bitset.BitSet
	for _, s := range support {
		if s == nil {
			continue
		}
		if union == nil {
			union = s.Clone()
		} else {
			union.InPlaceUnion(s)
		}
	}
	if union == nil {
		return 0
	}
	return union.Count()
}

// siteSpecificAlt returns the only alternate allele of a call that is
// neither symbolic nor a spanning deletion. If the call has no such
// allele but a spanning deletion, spanning is true. ok is false for
// calls with any other shape.
func siteSpecificAlt(call *vcf.Variant) (alt string, spanning, ok bool) {
	n := 0
	for _, a := range call.Alt {
		switch a {
		case vcf.NonRef:
		case vcf.SpanDel:
			spanning = true
		default:
			alt = a
			n++
		}
	}
	switch n {
	case 0:
		return "", spanning, spanning
	case 1:
		return alt, false, true
	default:
		return "", false, false
	}
}

// explains is true for an event equal to the call's allele, or whose
// alternate padded with the extra reference bases of the call is.
func explains(e Event, call *vcf.Variant, alt string) bool {
	if e.Contig != call.Chrom || e.Pos != call.Pos {
		return false
	}
	if e.Ref == call.Ref {
		return e.Alt == alt
	}
	return len(e.Ref) < len(call.Ref) &&
		strings.HasPrefix(call.Ref, e.Ref) &&
		e.Alt+call.Ref[len(e.Ref):] == alt
}

// MapCalls determines for each call which haplotypes of the pool carry
// its site-specific alternate allele. A call whose only alternate is
// the spanning deletion is supported by the haplotypes with an
// upstream event covering its position. Multi-allelic calls are
// supported by no haplotype. The result does not depend on anything
// but the calls and the pool.
func MapCalls(calls []*vcf.Variant, pool []*Haplotype) *SupportMap {
	m := &SupportMap{
		Haplotypes: pool,
		Support:    make([]*bitset.BitSet, len(calls)),
	}
	for i, call := range calls {
		support := bitset.New(uint(len(pool)))
		m.Support[i] = support
		alt, spanning, ok := siteSpecificAlt(call)
		if !ok {
			continue
		}
		for j, h := range pool {
			for _, e := range h.Events.Overlapping(call.Chrom, call.Pos) {
				if spanning {
					if e.spans(call.Chrom, call.Pos) {
						support.Set(uint(j))
						break
					}
				} else if explains(e, call, alt) {
					support.Set(uint(j))
					break
				}
			}
		}
	}
	return m
}
