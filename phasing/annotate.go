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
	"fmt"

	"github.com/exascience/elphase/utils"
	"github.com/exascience/elphase/vcf"
)

var (
	// PID is the physical phasing ID.
	PID = utils.Intern("PID")
	// PGT is the physical phasing genotype.
	PGT = utils.Intern("PGT")
	// PS is the phase set ID.
	PS = utils.Intern("PS")
)

// PhasingID returns the PID value for a phase set that starts with the given call.
func PhasingID(first *vcf.Variant) string {
	alt := "."
	if len(first.Alt) > 0 {
		alt = first.Alt[0]
	}
	return fmt.Sprintf("%d_%s_%s", first.Pos, first.Ref, alt)
}

func withFormat(format []utils.Symbol, keys ...utils.Symbol) []utils.Symbol {
	result := format
	copied := false
	for _, key := range keys {
		found := false
		for _, f := range result {
			if f == key {
				found = true
				break
			}
		}
		if !found {
			if !copied {
				result = append([]utils.Symbol(nil), result...)
				copied = true
			}
			result = append(result, key)
		}
	}
	return result
}

func phaseVariant(v *vcf.Variant, id string, group PhaseGroup, phaseSetID int) {
	v.GenotypeFormat = withFormat(v.GenotypeFormat, vcf.GT, PGT, PID, PS)
	for i := range v.GenotypeData {
		g := &v.GenotypeData[i]
		if group == Phase10 && g.IsHet() {
			g.GT[0], g.GT[1] = g.GT[1], g.GT[0]
		}
		g.Phased = true
		g.Data.Set(PGT, group.String())
		g.Data.Set(PID, id)
		g.Data.Set(PS, phaseSetID)
	}
}

// Annotate returns a copy of the calls in which the members of the
// phase sets carry phased genotypes, oriented by their phase group,
// with PGT, PID and PS entries. PS is the number of the set, and PID
// is derived from its first member. Calls outside any phase set are passed through
// unchanged, and the original calls are never modified.
//
// Every phase set is checked before anything is annotated; an
// *InconsistencyError is returned for the first invalid set.
func Annotate(calls []*vcf.Variant, sets []PhaseSet) ([]*vcf.Variant, error) {
	for _, set := range sets {
		if err := set.validate(len(calls)); err != nil {
			return nil, err
		}
	}
	result := make([]*vcf.Variant, len(calls))
	copy(result, calls)
	for _, set := range sets {
		id := PhasingID(calls[set.ID])
		for i, member := range set.Members {
			v := result[member].Copy()
			phaseVariant(v, id, set.Groups[i], set.Number)
			result[member] = v
		}
	}
	return result, nil
}
