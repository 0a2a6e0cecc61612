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

// AlleleKind distinguishes the three kinds of alleles observed at a position.
type AlleleKind uint8

const (
	// Reference is the allele of haplotypes without an event covering the position.
	Reference AlleleKind = iota
	// Explicit is an allele given by its reference and alternate bases.
	Explicit
	// SpanningDeletion stands for any event that starts upstream and
	// covers the position. All such events share one symbol.
	SpanningDeletion
)

// An Allele at a position. Alleles are values: two alleles are equal
// iff kind and bases are equal. Ref is empty for a Reference allele
// whose bases are not known, and both Ref and Alt are empty for
// SpanningDeletion.
type Allele struct {
	Kind AlleleKind
	Ref  string
	Alt  string
}

// SpanDel is the spanning deletion allele.
var SpanDel = Allele{Kind: SpanningDeletion}

// RefAllele returns a Reference allele with the given bases.
func RefAllele(ref string) Allele {
	return Allele{Kind: Reference, Ref: ref}
}

// ExplicitAllele returns the allele that replaces ref by alt.
func ExplicitAllele(ref, alt string) Allele {
	return Allele{Kind: Explicit, Ref: ref, Alt: alt}
}

// Bases returns the VCF notation of the allele: the reference bases
// for Reference, the alternate bases for Explicit, and * for
// SpanningDeletion.
func (a Allele) Bases() string {
	switch a.Kind {
	case Reference:
		return a.Ref
	case Explicit:
		return a.Alt
	case SpanningDeletion:
		return vcf.SpanDel
	default:
		log.Panicf("unknown allele kind %v", a.Kind)
		return ""
	}
}

func (a Allele) String() string {
	switch a.Kind {
	case Reference:
		if a.Ref == "" {
			return "REF"
		}
		return a.Ref + "*"
	case Explicit:
		return a.Ref + ">" + a.Alt
	case SpanningDeletion:
		return vcf.SpanDel
	default:
		log.Panicf("unknown allele kind %v", a.Kind)
		return ""
	}
}

func indexOfAllele(alleles []Allele, a Allele) int {
	for i, allele := range alleles {
		if allele == a {
			return i
		}
	}
	return -1
}

func addAllele(alleles []Allele, a Allele) []Allele {
	if indexOfAllele(alleles, a) >= 0 {
		return alleles
	}
	return append(alleles, a)
}
