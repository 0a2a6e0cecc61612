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

/*
Package phasing assigns physical phase to adjacent heterozygous calls
of one genomic window, based on which assembled haplotypes carry their
alternate alleles.

The steps are, in order:

	AlleleResolver.Resolve   distinct alleles at a position
	MergeAlleles             common reference for those alleles
	MapAlleles               haplotypes supporting each allele
	MapCalls                 haplotypes supporting each call
	BuildPhaseSets           oriented phase sets of adjacent calls
	Annotate                 phased genotypes with PID, PGT and PS

PhaseWindow runs all steps for one window, and PhaseWindows runs
independent windows in parallel. Nothing in this package retains state
between invocations.
*/
package phasing
