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
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/elphase/window"
)

// ConvertHelp is the help string for this command.
const ConvertHelp = "\nconvert parameters:\n" +
	"elphase convert input-windows-file output-windows-file\n" +
	"[--input-format auto|yaml|msgpack]\n" +
	"[--output-format auto|yaml|msgpack]\n" +
	"[--log-path path]\n"

// Convert implements the elphase convert command, which converts
// window files between YAML and MessagePack after validating them.
func Convert() error {
	var inputFormat, outputFormat, logPath string

	var flags flag.FlagSet
	flags.StringVar(&inputFormat, "input-format", "auto", "format of the input window file")
	flags.StringVar(&outputFormat, "output-format", "auto", "format of the output window file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 4, ConvertHelp)

	input := getFilename(os.Args[2], ConvertHelp)
	output := getFilename(os.Args[3], ConvertHelp)

	setLogOutput(logPath)

	in, err := window.ParseFormat(inputFormat)
	if err != nil {
		log.Println("Error:", err)
		fmt.Fprint(os.Stderr, ConvertHelp)
		os.Exit(1)
	}
	out, err := window.ParseFormat(outputFormat)
	if err != nil {
		log.Println("Error:", err)
		fmt.Fprint(os.Stderr, ConvertHelp)
		os.Exit(1)
	}
	if !checkExist("", input) || !checkCreate("", output) {
		fmt.Fprint(os.Stderr, ConvertHelp)
		os.Exit(1)
	}

	f, err := window.ReadFile(input, in)
	if err != nil {
		return err
	}
	if _, err := f.ToPhasing(); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := window.WriteFile(output, out, f); err != nil {
		return err
	}
	log.Printf("Converted %v windows from %v to %v.\n", len(f.Windows), input, output)
	return nil
}
