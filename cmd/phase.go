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

package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/exascience/elphase/phasing"
	"github.com/exascience/elphase/utils"
	"github.com/exascience/elphase/vcf"
	"github.com/exascience/elphase/window"
)

// PhaseHelp is the help string for this command.
const PhaseHelp = "phase parameters:\n" +
	"elphase phase windows-file-or-directory\n" +
	"[--output vcf-file]\n" +
	"[--sample name]\n" +
	"[--input-format auto|yaml|msgpack]\n" +
	"[--merge-given-alleles]\n" +
	"[--no-spanning-events]\n" +
	"[--min-haplotype-support nr]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Phase implements the elphase phase command.
func Phase() error {
	var (
		output, sample, inputFormat, profile, logPath string
		mergeGivenAlleles, noSpanningEvents, timed    bool
		minHaplotypeSupport, nrOfThreads              int
	)

	var flags flag.FlagSet
	flags.StringVar(&output, "output", "-", "write the phased calls to the specified VCF file")
	flags.StringVar(&sample, "sample", "SAMPLE", "sample name in the VCF header")
	flags.StringVar(&inputFormat, "input-format", "auto", "format of the window files (auto, yaml, or msgpack)")
	flags.BoolVar(&mergeGivenAlleles, "merge-given-alleles", false, "keep given alleles in the allele list at each call")
	flags.BoolVar(&noSpanningEvents, "no-spanning-events", false, "let haplotypes with a spanning deletion support the reference")
	flags.IntVar(&minHaplotypeSupport, "min-haplotype-support", 0, "minimum number of haplotypes for an allele to be considered")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a CPU profile to the specified file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 3, PhaseHelp)

	input := getFilename(os.Args[2], PhaseHelp)

	setLogOutput(logPath)

	format, err := window.ParseFormat(inputFormat)
	if err != nil {
		log.Println("Error:", err)
		fmt.Fprint(os.Stderr, PhaseHelp)
		os.Exit(1)
	}

	sanityChecksFailed := false
	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("--output", output) {
		sanityChecksFailed = true
	}
	if minHaplotypeSupport < 0 {
		log.Printf("Error: Invalid min-haplotype-support %v.\n", minHaplotypeSupport)
		sanityChecksFailed = true
	}
	if !checkNrOfThreads(nrOfThreads) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, PhaseHelp)
		os.Exit(1)
	}

	runID := uuid.New().String()
	log.Println("Run id:", runID)

	opts := phasing.Options{
		MergeGivenAlleles:    mergeGivenAlleles,
		IgnoreSpanningEvents: noSpanningEvents,
		MinHaplotypeSupport:  minHaplotypeSupport,
	}

	var windows []*phasing.Window
	if err := timedRun(timed, profile, "Loading windows.", 1, func() (err error) {
		windows, err = window.LoadAll(input, format)
		return
	}); err != nil {
		return err
	}
	if len(windows) == 0 {
		log.Println("Warning: No windows found in", input)
	}

	var results []*phasing.Result
	if err := timedRun(timed, profile, "Phasing calls.", 2, func() (err error) {
		results, err = phasing.PhaseWindows(windows, opts)
		return
	}); err != nil {
		var inconsistency *phasing.InconsistencyError
		if errors.As(err, &inconsistency) {
			log.Println("Error: Internal inconsistency in phase set", inconsistency.Set.ID)
		}
		return err
	}

	if err := timedRun(timed, profile, "Writing VCF output.", 3, func() error {
		header := phasing.NewHeader(sample, windows)
		header.AddMeta(utils.ProgramName+"RunId", runID)
		header.AddMeta(utils.ProgramName+"Command", strings.Join(os.Args, " "))
		out, err := vcf.Create(output)
		if err != nil {
			return err
		}
		if err := phasing.Output(header, results).Format(out.Writer); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	}); err != nil {
		return err
	}

	log.Println("Phasing summary:", phasing.Summarize(results))
	return nil
}
