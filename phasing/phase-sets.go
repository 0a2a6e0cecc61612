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

	"github.com/bits-and-blooms/bitset"
)

// A PhaseGroup is the orientation of a call relative to the first
// member of its phase set.
type PhaseGroup uint8

const (
	// Phase01 calls carry their alternate allele on the same haplotype
	// as the first member.
	Phase01 PhaseGroup = iota
	// Phase10 calls carry their alternate allele on the other haplotype.
	Phase10
)

func (g PhaseGroup) String() string {
	switch g {
	case Phase01:
		return "0|1"
	case Phase10:
		return "1|0"
	default:
		log.Panicf("unknown phase group %d", g)
		return ""
	}
}

func (g PhaseGroup) flip() PhaseGroup {
	if g == Phase01 {
		return Phase10
	}
	return Phase01
}

// A PhaseSet is a maximal run of adjacent informative calls whose
// alternate alleles are consistently on the same or on opposite
// haplotypes.
type PhaseSet struct {
	// ID is the index of the first member.
	ID int

	// Number identifies the set in the output as its PS value.
	// BuildPhaseSets numbers the sets of one window from 1, and
	// PhaseWindows renumbers them across all windows of a run.
	Number int

	// Members are call indices in increasing order, and Groups[i] is
	// the orientation of Members[i].
	Members []int
	Groups  []PhaseGroup
}

// Len returns the number of members of the set.
func (s PhaseSet) Len() int {
	return len(s.Members)
}

// validate checks the structure of a phase set against a batch of n calls.
func (s PhaseSet) validate(n int) error {
	if len(s.Members) < 2 {
		return &InconsistencyError{Set: s, Err: ErrPhaseSetTooSmall}
	}
	if len(s.Groups) != len(s.Members) || s.ID != s.Members[0] {
		return &InconsistencyError{Set: s, Err: ErrMalformedPhaseSet}
	}
	prev := -1
	for _, m := range s.Members {
		if m <= prev || m >= n {
			return &InconsistencyError{Set: s, Err: ErrMalformedPhaseSet}
		}
		prev = m
	}
	return nil
}

func sameSupport(a, b *bitset.BitSet) bool {
	n := a.Count()
	return n == b.Count() && a.IntersectionCardinality(b) == n
}

func oppositeSupport(a, b *bitset.BitSet, population uint) bool {
	return a.IntersectionCardinality(b) == 0 && a.UnionCardinality(b) == population
}

// BuildPhaseSets groups calls into phase sets from their support sets,
// scanning from left to right. Calls with an empty support set, or one
// that contains every haplotype supporting any call, say nothing about
// phase and are skipped. Each remaining call is compared with the
// previous one: equal support continues the phase set in the same
// orientation, and disjoint support that together covers all
// haplotypes continues it in the opposite orientation. Any other
// overlap ends the phase set. Sets with a single member are dropped.
func BuildPhaseSets(support []*bitset.BitSet) ([]PhaseSet, error) {
	pop := population(support)
	informative := func(s *bitset.BitSet) bool {
		n := s.Count()
		return n > 0 && (pop <= 1 || n < pop)
	}

	var (
		sets    []PhaseSet
		current PhaseSet
		prev    *bitset.BitSet
	)
	closeSet := func() {
		if len(current.Members) > 1 {
			current.Number = len(sets) + 1
			sets = append(sets, current)
		}
		current = PhaseSet{}
	}
	startSet := func(index int) {
		current = PhaseSet{ID: index, Members: []int{index}, Groups: []PhaseGroup{Phase01}}
	}

	for i, s := range support {
		if s == nil || !informative(s) {
			continue
		}
		switch {
		case prev == nil:
			startSet(i)
		case sameSupport(prev, s):
			current.Members = append(current.Members, i)
			current.Groups = append(current.Groups, current.Groups[len(current.Groups)-1])
		case oppositeSupport(prev, s, pop):
			current.Members = append(current.Members, i)
			current.Groups = append(current.Groups, current.Groups[len(current.Groups)-1].flip())
		default:
			closeSet()
			startSet(i)
		}
		prev = s
	}
	closeSet()

	for _, set := range sets {
		if err := set.validate(len(support)); err != nil {
			return nil, err
		}
	}
	return sets, nil
}
