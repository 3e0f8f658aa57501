// elPrep: a high-performance tool for analyzing SAM/BAM files.
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
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/kmers"
)

// KmersHelp is the help string for this command.
const KmersHelp = "Kmers parameters:\n" +
	"strgraph kmers\n" +
	"--locus expression\n" +
	"[--kmer-len nr]\n" +
	"[--min-covering]\n" +
	"[--min-unique-kmers-per-node nr]\n" +
	"[--min-unique-kmers-per-edge nr]\n" +
	"[--log-path path]\n"

// Kmers implements the strgraph kmers command.
func Kmers() error {
	var (
		locus, logPath               string
		kmerLength, perNode, perEdge int
		minCovering                  bool
	)

	var flags flag.FlagSet

	flags.StringVar(&locus, "locus", "", "region expression of the locus, for example TAAT(CAG)*CCTT")
	flags.IntVar(&kmerLength, "kmer-len", DefaultKmerLength, "length of the k-mers")
	flags.BoolVar(&minCovering, "min-covering", false, "compute the minimal k-mer length that covers the graph")
	flags.IntVar(&perNode, "min-unique-kmers-per-node", 1, "unique k-mers required on each node for --min-covering")
	flags.IntVar(&perEdge, "min-unique-kmers-per-edge", 1, "unique k-mers required on each edge for --min-covering")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 2, KmersHelp)

	setLogOutput(logPath)

	// sanity checks

	sanityChecksFailed := false

	g, ok := checkLocus(locus)
	if !ok {
		sanityChecksFailed = true
	}

	if !checkKmerLength(kmerLength) {
		sanityChecksFailed = true
	}

	if perNode < 0 || perEdge < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid minimum number of unique k-mers: ", perNode, perEdge)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, KmersHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " kmers --locus ", locus, " --kmer-len ", kmerLength)
	if minCovering {
		fmt.Fprint(&command, " --min-covering")
		fmt.Fprint(&command, " --min-unique-kmers-per-node ", perNode)
		fmt.Fprint(&command, " --min-unique-kmers-per-edge ", perEdge)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	index := kmers.New(g, kmerLength)
	covered := index.NodesCoveredByUniqueKmers(g.NumNodes())

	w := bufio.NewWriter(os.Stdout)
	fmt.Fprintf(w, "#run\t%v\n#locus\t%v\n#kmers\t%v\n", RunID, locus, len(index.Kmers()))
	for id := graph.NodeID(0); int(id) < g.NumNodes(); id++ {
		fmt.Fprintf(w, "node\t%v\t%v\t%v\t%v\n", id, g.NodeSeq(id), index.NumUniqueKmersOverlappingNode(id), covered.Test(uint(id)))
		for _, succ := range g.Successors(id) {
			fmt.Fprintf(w, "edge\t%v\t%v\t%v\n", id, succ, index.NumUniqueKmersOverlappingEdge(id, succ))
		}
	}
	if minCovering {
		fmt.Fprintf(w, "#min-covering-kmer-len\t%v\n", kmers.FindMinCoveringKmerLength(g, perEdge, perNode))
	}
	return w.Flush()
}
