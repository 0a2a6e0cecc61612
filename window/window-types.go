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

// Package window reads and writes the windows to be phased, as
// produced by an assembler and genotyper, in YAML or MessagePack form.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/exascience/elphase/phasing"
	"github.com/exascience/elphase/utils"
	"github.com/exascience/elphase/vcf"
)

type (
	// File is the top-level document of a window file.
	File struct {
		Windows []Window `yaml:"windows" msgpack:"windows"`
	}

	// Window is one region with its haplotypes and calls.
	Window struct {
		Contig       string        `yaml:"contig" msgpack:"contig"`
		Haplotypes   []Haplotype   `yaml:"haplotypes" msgpack:"haplotypes"`
		Calls        []Call        `yaml:"calls" msgpack:"calls"`
		GivenAlleles []GivenAllele `yaml:"givenAlleles,omitempty" msgpack:"givenAlleles,omitempty"`
	}

	// Haplotype is an assembled haplotype with the events that
	// distinguish it from the reference.
	Haplotype struct {
		Name   string  `yaml:"name" msgpack:"name"`
		Events []Event `yaml:"events" msgpack:"events"`
	}

	// Event is a single edit of the reference.
	Event struct {
		Pos int32  `yaml:"pos" msgpack:"pos"`
		Ref string `yaml:"ref" msgpack:"ref"`
		Alt string `yaml:"alt" msgpack:"alt"`
	}

	// Call is a genotyped variant with its sample genotype in VCF
	// notation, for example 0/1. Qual, Filters and End are copied to
	// the QUAL, FILTER and INFO END columns of the output.
	Call struct {
		Pos     int32    `yaml:"pos" msgpack:"pos"`
		ID      string   `yaml:"id,omitempty" msgpack:"id,omitempty"`
		Ref     string   `yaml:"ref" msgpack:"ref"`
		Alts    []string `yaml:"alts" msgpack:"alts"`
		GT      string   `yaml:"gt" msgpack:"gt"`
		Qual    *float64 `yaml:"qual,omitempty" msgpack:"qual,omitempty"`
		Filters []string `yaml:"filters,omitempty" msgpack:"filters,omitempty"`
		End     int32    `yaml:"end,omitempty" msgpack:"end,omitempty"`
	}

	// GivenAllele is a candidate allele that must be genotyped.
	GivenAllele struct {
		Pos  int32    `yaml:"pos" msgpack:"pos"`
		Ref  string   `yaml:"ref" msgpack:"ref"`
		Alts []string `yaml:"alts" msgpack:"alts"`
	}
)

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid window")

func validBases(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}

func validFilter(s string) bool {
	return s != "" && s != "." && !strings.ContainsAny(s, " \t;")
}

func validAlt(s string) bool {
	return s == vcf.SpanDel || s == vcf.NonRef || validBases(s)
}

// ParseGT parses a genotype in VCF notation. Missing alleles are
// returned as -1.
func ParseGT(s string) (gt []int32, phased bool, err error) {
	if s == "" {
		return nil, false, fmt.Errorf("%w: empty genotype", ErrInvalid)
	}
	separator := "/"
	if strings.Contains(s, "|") {
		if strings.Contains(s, "/") {
			return nil, false, fmt.Errorf("%w: mixed separators in genotype %q", ErrInvalid, s)
		}
		separator, phased = "|", true
	}
	for _, field := range strings.Split(s, separator) {
		if field == "." {
			gt = append(gt, -1)
			continue
		}
		index, err := strconv.ParseInt(field, 10, 32)
		if err != nil || index < 0 {
			return nil, false, fmt.Errorf("%w: genotype %q", ErrInvalid, s)
		}
		gt = append(gt, int32(index))
	}
	return gt, phased, nil
}

func (e Event) toEvent(contig string) (phasing.Event, error) {
	if e.Pos < 1 {
		return phasing.Event{}, fmt.Errorf("%w: event position %d", ErrInvalid, e.Pos)
	}
	if !validBases(e.Ref) || !validBases(e.Alt) {
		return phasing.Event{}, fmt.Errorf("%w: event %d %s>%s", ErrInvalid, e.Pos, e.Ref, e.Alt)
	}
	return phasing.Event{Contig: contig, Pos: e.Pos, Ref: e.Ref, Alt: e.Alt}, nil
}

func (c Call) toVariant(contig string) (*vcf.Variant, error) {
	if c.Pos < 1 {
		return nil, fmt.Errorf("%w: call position %d", ErrInvalid, c.Pos)
	}
	if !validBases(c.Ref) {
		return nil, fmt.Errorf("%w: call %d reference %q", ErrInvalid, c.Pos, c.Ref)
	}
	for _, alt := range c.Alts {
		if !validAlt(alt) {
			return nil, fmt.Errorf("%w: call %d alternate %q", ErrInvalid, c.Pos, alt)
		}
	}
	gt, phased, err := ParseGT(c.GT)
	if err != nil {
		return nil, fmt.Errorf("call %d: %w", c.Pos, err)
	}
	for _, index := range gt {
		if int(index) > len(c.Alts) {
			return nil, fmt.Errorf("%w: call %d genotype %q refers to a missing allele", ErrInvalid, c.Pos, c.GT)
		}
	}
	id := []string{"."}
	if c.ID != "" {
		id = []string{c.ID}
	}
	v := &vcf.Variant{
		Chrom:          contig,
		Pos:            c.Pos,
		ID:             id,
		Ref:            c.Ref,
		Alt:            append([]string(nil), c.Alts...),
		GenotypeFormat: []utils.Symbol{vcf.GT},
		GenotypeData:   []vcf.Genotype{{Phased: phased, GT: gt}},
	}
	if c.Qual != nil {
		if *c.Qual < 0 {
			return nil, fmt.Errorf("%w: call %d quality %v", ErrInvalid, c.Pos, *c.Qual)
		}
		v.Qual = *c.Qual
	}
	for _, filter := range c.Filters {
		if !validFilter(filter) {
			return nil, fmt.Errorf("%w: call %d filter %q", ErrInvalid, c.Pos, filter)
		}
		v.Filter = append(v.Filter, utils.Intern(filter))
	}
	if c.End != 0 {
		if c.End < c.Pos {
			return nil, fmt.Errorf("%w: call %d ends at %d", ErrInvalid, c.Pos, c.End)
		}
		v.SetEnd(c.End)
	}
	return v, nil
}

// ToPhasing converts and validates a window.
func (w *Window) ToPhasing() (*phasing.Window, error) {
	if w.Contig == "" {
		return nil, fmt.Errorf("%w: missing contig", ErrInvalid)
	}
	result := &phasing.Window{Contig: w.Contig}
	for _, h := range w.Haplotypes {
		haplotype := &phasing.Haplotype{Name: h.Name}
		for _, e := range h.Events {
			event, err := e.toEvent(w.Contig)
			if err != nil {
				return nil, fmt.Errorf("haplotype %s: %w", h.Name, err)
			}
			haplotype.Events = haplotype.Events.Add(event)
		}
		result.Haplotypes = append(result.Haplotypes, haplotype)
	}
	for _, c := range w.Calls {
		call, err := c.toVariant(w.Contig)
		if err != nil {
			return nil, err
		}
		result.Calls = append(result.Calls, call)
	}
	for _, g := range w.GivenAlleles {
		for _, alt := range g.Alts {
			event, err := Event{Pos: g.Pos, Ref: g.Ref, Alt: alt}.toEvent(w.Contig)
			if err != nil {
				return nil, fmt.Errorf("given allele: %w", err)
			}
			result.GivenAlleles = append(result.GivenAlleles, event)
		}
	}
	return result, nil
}

// ToPhasing converts and validates all windows of the file.
func (f *File) ToPhasing() ([]*phasing.Window, error) {
	windows := make([]*phasing.Window, 0, len(f.Windows))
	for i := range f.Windows {
		w, err := f.Windows[i].ToPhasing()
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}
