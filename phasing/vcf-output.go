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
	"github.com/exascience/elphase/utils"
	"github.com/exascience/elphase/vcf"
)

func formatInformation(id utils.Symbol, number int32, typ vcf.Type, description string) *vcf.FormatInformation {
	info := vcf.NewFormatInformation()
	info.ID = id
	info.Number = number
	info.Type = typ
	info.Description = description
	return info
}

// AddFormatInformation declares the FORMAT entries written by
// Annotate, unless the header already declares them.
func AddFormatInformation(header *vcf.Header) {
	for _, info := range []*vcf.FormatInformation{
		formatInformation(vcf.GT, 1, vcf.String, "Genotype"),
		formatInformation(PGT, 1, vcf.String, "Physical phasing haplotype information, describing how the alternate alleles are phased in relation to one another"),
		formatInformation(PID, 1, vcf.String, "Physical phasing ID information, where each unique ID within a given sample (but not across samples) connects records within a phasing group"),
		formatInformation(PS, 1, vcf.Integer, "Phasing set, numbered sequentially within a run"),
	} {
		found := false
		for _, format := range header.Formats {
			if format.ID == info.ID {
				found = true
				break
			}
		}
		if !found {
			header.Formats = append(header.Formats, info)
		}
	}
}

func addCallInformation(header *vcf.Header, windows []*Window) {
	hasEnd := false
	filters := make(map[utils.Symbol]bool)
	for _, w := range windows {
		for _, call := range w.Calls {
			if _, ok := call.Info.Get(vcf.END); ok {
				hasEnd = true
			}
			for _, filter := range call.Filter {
				if filter == vcf.PASS || filters[filter] {
					continue
				}
				filters[filter] = true
				meta := vcf.NewMetaInformation()
				meta.ID = filter
				meta.Description = "Filter " + *filter + " applied by the variant caller"
				header.AddMeta("FILTER", meta)
			}
		}
	}
	if hasEnd {
		header.Infos = append(header.Infos, formatInformation(vcf.END, 1, vcf.Integer, "Stop position of the interval"))
	}
}

// NewHeader returns a VCF header for phased calls of one sample on the
// contigs of the given windows, in order of first occurrence. It
// declares the FILTER values and the INFO END entry used by the calls.
func NewHeader(sample string, windows []*Window) *vcf.Header {
	header := vcf.NewHeader()
	header.AddMeta("source", utils.ProgramName)
	seen := make(map[string]bool)
	for _, w := range windows {
		if !seen[w.Contig] {
			seen[w.Contig] = true
			contig := vcf.NewMetaInformation()
			contig.ID = utils.Intern(w.Contig)
			header.AddMeta("contig", contig)
		}
	}
	addCallInformation(header, windows)
	AddFormatInformation(header)
	header.Columns = append(append([]string(nil), vcf.DefaultHeaderColumns...), "FORMAT", sample)
	return header
}

// Output collects the phased calls of all results in order.
func Output(header *vcf.Header, results []*Result) *vcf.Vcf {
	n := 0
	for _, r := range results {
		n += len(r.Calls)
	}
	variants := make([]*vcf.Variant, 0, n)
	for _, r := range results {
		variants = append(variants, r.Calls...)
	}
	return &vcf.Vcf{Header: header, Variants: variants}
}
