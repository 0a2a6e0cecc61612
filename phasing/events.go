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
	"sort"
)

// An Event is a single edit of the reference carried by a haplotype.
//
// Events are plain values: two events are equal iff contig, position,
// reference and alternate bases are equal, so they can be compared
// with == and used as map keys.
type Event struct {
	Contig string
	Pos    int32 // 1-based position of the first reference base
	Ref    string
	Alt    string
}

// End returns the position of the last reference base covered by the event.
func (e Event) End() int32 {
	return e.Pos - 1 + int32(len(e.Ref))
}

func (e Event) overlaps(contig string, loc int32) bool {
	return e.Contig == contig && e.Pos <= loc && e.End() >= loc
}

// spans is true for an event that starts before loc and whose
// reference bases extend to or past loc.
func (e Event) spans(contig string, loc int32) bool {
	return e.Contig == contig && e.Pos < loc && e.End() >= loc
}

func (e Event) isSNP() bool {
	return len(e.Ref) == 1 && len(e.Alt) == 1
}

func (e Event) isInsertion() bool {
	return len(e.Ref) == 1 && len(e.Alt) > 1 && e.Ref[0] == e.Alt[0]
}

func (e Event) String() string {
	return fmt.Sprintf("%s:%d %s>%s", e.Contig, e.Pos, e.Ref, e.Alt)
}

// makeBlock combines two events that start at the same position into
// one: a SNP followed by an indel, or an insertion and a deletion.
func makeBlock(e1, e2 Event) Event {
	if e2.isSNP() && !e1.isSNP() {
		e1, e2 = e2, e1
	}
	if e1.isSNP() {
		if e1.Ref == e2.Ref {
			e1.Alt += e2.Alt[1:]
		} else {
			e1.Ref = e2.Ref
		}
		return e1
	}
	insertion, deletion := e1, e2
	if !insertion.isInsertion() {
		insertion, deletion = e2, e1
	}
	return Event{
		Contig: e1.Contig,
		Pos:    e1.Pos,
		Ref:    deletion.Ref,
		Alt:    insertion.Alt,
	}
}

// An EventMap holds the events of a haplotype, sorted by position,
// with at most one event per position.
type EventMap []Event

// Add inserts an event at its position. An event at a position that
// is already occupied is combined with the existing event into a
// block event; adding an event that is already present has no effect.
func (m EventMap) Add(e Event) EventMap {
	index := sort.Search(len(m), func(i int) bool {
		return m[i].Pos >= e.Pos
	})
	if index < len(m) && m[index].Pos == e.Pos {
		if m[index] != e {
			m[index] = makeBlock(m[index], e)
		}
		return m
	}
	m = append(m, Event{})
	copy(m[index+1:], m[index:])
	m[index] = e
	return m
}

// Contains reports whether the map holds an event value-equal to e.
func (m EventMap) Contains(e Event) bool {
	for _, event := range m {
		if event == e {
			return true
		}
	}
	return false
}

// Overlapping returns the events that cover loc on the given contig.
func (m EventMap) Overlapping(contig string, loc int32) (result []Event) {
	for _, e := range m {
		if e.Pos > loc {
			break
		}
		if e.overlaps(contig, loc) {
			result = append(result, e)
		}
	}
	return result
}

// A Haplotype is a candidate sequence produced by assembly, reduced
// to the events that distinguish it from the reference. Haplotypes
// are identified by their index in the list of a window; the name is
// only used for reporting.
type Haplotype struct {
	Name   string
	Events EventMap
}

// NewHaplotype creates a haplotype carrying the given events.
func NewHaplotype(name string, events ...Event) *Haplotype {
	h := &Haplotype{Name: name}
	for _, e := range events {
		h.Events = h.Events.Add(e)
	}
	return h
}

func (h *Haplotype) String() string {
	return h.Name
}
