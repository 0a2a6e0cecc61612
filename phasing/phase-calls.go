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
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elphase/vcf"
)

// Options control how haplotypes are matched to the alleles of a call.
type Options struct {
	MergeGivenAlleles    bool
	IgnoreSpanningEvents bool
	MinHaplotypeSupport  int
}

func (opts Options) resolver(w *Window) AlleleResolver {
	return AlleleResolver{
		GivenAlleles:         w.GivenAlleles,
		MergeGivenAlleles:    opts.MergeGivenAlleles,
		IgnoreSpanningEvents: opts.IgnoreSpanningEvents,
		MinHaplotypeSupport:  opts.MinHaplotypeSupport,
	}
}

// A Window holds the assembled haplotypes and the calls of one region.
// Windows never share haplotypes or calls.
type Window struct {
	Contig       string
	Haplotypes   []*Haplotype
	Calls        []*vcf.Variant
	GivenAlleles []Event
}

// Result is the outcome of phasing one window. Calls has the same
// length and order as the calls of the window.
type Result struct {
	Calls     []*vcf.Variant
	PhaseSets []PhaseSet
	Support   *SupportMap
}

// callAlleles returns the alleles of a call rewritten against the
// reference of the locus.
func callAlleles(call *vcf.Variant, locus MergedLocus) []Allele {
	result := []Allele{locus.Alleles[0]}
	for _, alt := range call.Alt {
		switch alt {
		case vcf.NonRef:
		case vcf.SpanDel:
			result = addAllele(result, SpanDel)
		default:
			if len(call.Ref) <= len(locus.Ref) && strings.HasPrefix(locus.Ref, call.Ref) {
				result = addAllele(result, ExplicitAllele(locus.Ref, alt+locus.Ref[len(call.Ref):]))
			}
		}
	}
	return result
}

// CalledHaplotypes returns the haplotypes of the window that support
// an allele of at least one call, in window order.
func CalledHaplotypes(w *Window, opts Options) []*Haplotype {
	index := make(map[*Haplotype]int, len(w.Haplotypes))
	for i, h := range w.Haplotypes {
		index[h] = i
	}
	called := make([]bool, len(w.Haplotypes))
	resolver := opts.resolver(w)
	for _, call := range w.Calls {
		alleles := resolver.Resolve(w.Contig, call.Pos, w.Haplotypes)
		if len(alleles) == 0 {
			continue
		}
		locus := MergeAlleles(w.Contig, call.Pos, alleles)
		mapping := MapAlleles(locus, w.Haplotypes, !opts.IgnoreSpanningEvents)
		for _, a := range callAlleles(call, locus) {
			for _, h := range mapping.Get(a) {
				called[index[h]] = true
			}
		}
	}
	var pool []*Haplotype
	for i, h := range w.Haplotypes {
		if called[i] {
			pool = append(pool, h)
		}
	}
	return pool
}

func findPhaseSets(calls []*vcf.Variant, pool []*Haplotype) (*Result, error) {
	support := MapCalls(calls, pool)
	sets, err := BuildPhaseSets(support.Support)
	if err != nil {
		return nil, err
	}
	return &Result{PhaseSets: sets, Support: support}, nil
}

func (r *Result) annotate(calls []*vcf.Variant) (err error) {
	r.Calls, err = Annotate(calls, r.PhaseSets)
	return err
}

// PhaseCalls phases calls, sorted by position, against a pool of
// called haplotypes.
func PhaseCalls(calls []*vcf.Variant, pool []*Haplotype) (*Result, error) {
	r, err := findPhaseSets(calls, pool)
	if err != nil {
		return nil, err
	}
	if err := r.annotate(calls); err != nil {
		return nil, err
	}
	return r, nil
}

func checkSorted(calls []*vcf.Variant) error {
	for i := 1; i < len(calls); i++ {
		if calls[i].Pos < calls[i-1].Pos {
			return fmt.Errorf("%w: %s:%d follows %s:%d", ErrUnsortedCalls,
				calls[i].Chrom, calls[i].Pos, calls[i-1].Chrom, calls[i-1].Pos)
		}
	}
	return nil
}

func findWindowPhaseSets(w *Window, opts Options) (*Result, error) {
	if err := checkSorted(w.Calls); err != nil {
		return nil, err
	}
	return findPhaseSets(w.Calls, CalledHaplotypes(w, opts))
}

// PhaseWindow phases the calls of one window against its called haplotypes.
func PhaseWindow(w *Window, opts Options) (*Result, error) {
	r, err := findWindowPhaseSets(w, opts)
	if err != nil {
		return nil, err
	}
	if err := r.annotate(w.Calls); err != nil {
		return nil, err
	}
	return r, nil
}

func firstError(windows []*Window, errs []error) error {
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("window %d (%s): %w", i, windows[i].Contig, err)
		}
	}
	return nil
}

// PhaseWindows phases independent windows in parallel. If any window
// fails, the error of the first failing window in input order is
// returned and no results. Phase sets are numbered from 1 across all
// windows in window order before the calls are annotated, so every
// phase set of a run has its own PS value.
func PhaseWindows(windows []*Window, opts Options) ([]*Result, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	results := make([]*Result, len(windows))
	errs := make([]error, len(windows))
	parallel.Range(0, len(windows), 0, func(low, high int) {
		for i := low; i < high; i++ {
			results[i], errs[i] = findWindowPhaseSets(windows[i], opts)
		}
	})
	if err := firstError(windows, errs); err != nil {
		return nil, err
	}
	number := 0
	for _, r := range results {
		for i := range r.PhaseSets {
			number++
			r.PhaseSets[i].Number = number
		}
	}
	parallel.Range(0, len(windows), 0, func(low, high int) {
		for i := low; i < high; i++ {
			errs[i] = results[i].annotate(windows[i].Calls)
		}
	})
	if err := firstError(windows, errs); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts the outcome of phasing a number of windows.
type Summary struct {
	Windows          int
	Calls            int
	PhasedCalls      int
	PhaseSets        int
	Phase01          int
	Phase10          int
	UnsupportedCalls int
}

// Add accumulates the counts of one window.
func (s *Summary) Add(r *Result) {
	s.Windows++
	s.Calls += len(r.Calls)
	s.PhaseSets += len(r.PhaseSets)
	for _, set := range r.PhaseSets {
		s.PhasedCalls += set.Len()
		for _, g := range set.Groups {
			if g == Phase01 {
				s.Phase01++
			} else {
				s.Phase10++
			}
		}
	}
	if r.Support != nil {
		for _, support := range r.Support.Support {
			if support.None() {
				s.UnsupportedCalls++
			}
		}
	}
}

// Summarize adds up the counts of all results.
func Summarize(results []*Result) (s Summary) {
	for _, r := range results {
		s.Add(r)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d windows, %d calls, %d phased calls in %d phase sets (%d 0|1, %d 1|0), %d unsupported calls",
		s.Windows, s.Calls, s.PhasedCalls, s.PhaseSets, s.Phase01, s.Phase10, s.UnsupportedCalls)
}
