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

package vcf

import "github.com/exascience/elphase/utils"

// The supported VCF file format version.
const (
	FileFormatVersion     = "VCFv4.3"
	FileFormatVersionLine = "##fileformat=VCFv4.3"
)

// DefaultHeaderColumns for VCF files.
var DefaultHeaderColumns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// Type is an enumeration type for different VCF field types
type Type uint

// The different VCF field types
const (
	InvalidType Type = iota
	Integer          // represented as int (not int32, since that's the same as rune in Go)
	Float            // represented as float64
	Flag             // represented as bool with fixed value true
	Character        // represented as rune
	String           // represented as string
)

// Constants for format information Number entries.
const (
	NumberA int32 = -1 * (1 + iota)
	NumberR
	NumberG
	NumberDot
	InvalidNumber
)

// Symbolic alleles with a fixed meaning.
const (
	// SpanDel is the allele of a call covered by a deletion that starts upstream.
	SpanDel = "*"
	// NonRef is the reference-confidence allele of GVCF records.
	NonRef = "<NON_REF>"
)

// Commonly used VCF entries.
var (
	END  = utils.Intern("END")
	GT   = utils.Intern("GT")
	PASS = utils.Intern("PASS")
)

type (
	// MetaInformation in VCF files.
	MetaInformation struct {
		ID          utils.Symbol
		Description string // "" if not present
		Fields      utils.StringMap
	}

	// FormatInformation in VCF files.
	FormatInformation struct {
		ID          utils.Symbol
		Description string // "" if not present
		Number      int32  // > InvalidNumber
		Type        Type
		Fields      utils.StringMap
	}

	// Header section of a VCF files.
	Header struct {
		FileFormat string
		Infos      []*FormatInformation
		Formats    []*FormatInformation
		Meta       map[string][]interface{} // string or *MetaInformation
		Columns    []string
	}

	// Genotype is a structured representation of the GT entry in a VCF file.
	Genotype struct {
		Phased bool
		GT     []int32        // < 0 for unknown entries
		Data   utils.SmallMap // values are nil (for missing entry), int, float64, rune, string, or []interface{}
	}

	// Variant line in a VCF file.
	Variant struct {
		Chrom          string
		Pos            int32    // < 0 if unknown
		ID             []string // nil/empty if missing
		Ref            string
		Alt            []string       // nil/empty if missing
		Qual           interface{}    // float64, or nil if missing
		Filter         []utils.Symbol // nil/empty if missing
		Info           utils.SmallMap // values are int, float64, bool, rune, string, or []interface{}
		GenotypeFormat []utils.Symbol
		GenotypeData   []Genotype
	}

	// Vcf represents the full contents of a VCF file.
	Vcf struct {
		Header   *Header
		Variants []*Variant
	}
)

// NewMetaInformation creates an empty instance.
func NewMetaInformation() *MetaInformation {
	return &MetaInformation{Fields: make(utils.StringMap)}
}

// NewFormatInformation creates an empty instance.
func NewFormatInformation() *FormatInformation {
	return &FormatInformation{Number: InvalidNumber, Fields: make(utils.StringMap)}
}

// NewHeader creates an empty instance.
func NewHeader() *Header {
	return &Header{
		FileFormat: FileFormatVersionLine,
		Meta:       make(map[string][]interface{}),
		Columns:    DefaultHeaderColumns,
	}
}

// AddMeta appends a meta information line ##key=value to the header.
func (header *Header) AddMeta(key string, value interface{}) {
	header.Meta[key] = append(header.Meta[key], value)
}

// SetEnd sets the end position of a VCF line in the reference by setting the END field.
// If the end position can be calculated from the start position and the length of Ref,
// delete the END field.
func (v *Variant) SetEnd(value int32) {
	if value == v.Pos-1+int32(len(v.Ref)) {
		v.Info, _ = v.Info.Delete(END)
	} else {
		v.Info.Set(END, int(value))
	}
}

// Copy returns a copy of the variant whose genotypes can be modified
// without affecting the original. Allele and annotation slices are
// shared.
func (v *Variant) Copy() *Variant {
	result := *v
	if v.GenotypeData != nil {
		result.GenotypeData = make([]Genotype, len(v.GenotypeData))
		for i, g := range v.GenotypeData {
			result.GenotypeData[i] = g.Copy()
		}
	}
	return &result
}

// Copy returns a deep copy of the genotype's allele indices and data entries.
func (g Genotype) Copy() Genotype {
	return Genotype{
		Phased: g.Phased,
		GT:     append([]int32(nil), g.GT...),
		Data:   append(utils.SmallMap(nil), g.Data...),
	}
}

// IsHet determines whether a diploid genotype carries two different
// known alleles.
func (g Genotype) IsHet() bool {
	return len(g.GT) == 2 && g.GT[0] >= 0 && g.GT[1] >= 0 && g.GT[0] != g.GT[1]
}
