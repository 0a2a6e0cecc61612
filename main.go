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

// elphase phases adjacent heterozygous variant calls using the
// haplotypes assembled in the active windows of a variant caller.
//
// Please see https://github.com/exascience/elphase for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/elphase/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: phase, convert")
	fmt.Fprint(os.Stderr, "\n", cmd.PhaseHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ConvertHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "phase":
		err = cmd.Phase()
	case "convert":
		err = cmd.Convert()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
