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
	"io"
	"log"
	"os"
	"runtime"

	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/aligner"
	"github.com/exascience/strgraph/fasta"
	"github.com/exascience/strgraph/internal"
	"github.com/exascience/strgraph/kmers"
)

// AlignHelp is the help string for this command.
const AlignHelp = "Align parameters:\n" +
	"strgraph align reads-file\n" +
	"--locus expression\n" +
	"[--kmer-len nr]\n" +
	"[--padding-len nr]\n" +
	"[--seed-affix-trim-len nr]\n" +
	"[--match score]\n" +
	"[--mismatch score]\n" +
	"[--gap score]\n" +
	"[--output file]\n" +
	"[--canonical]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Default alignment parameters.
const (
	DefaultKmerLength          = 12
	DefaultPaddingLength       = 10
	DefaultSeedAffixTrimLength = 0
	DefaultMatchScore          = 5
	DefaultMismatchScore       = -4
	DefaultGapScore            = -8
)

// Align implements the strgraph align command.
func Align() error {
	var (
		locus, output, profile, logPath                  string
		kmerLength, paddingLength, seedAffixTrimLength   int
		matchScore, mismatchScore, gapScore, nrOfThreads int
		canonical, timed                                 bool
	)

	var flags flag.FlagSet

	flags.StringVar(&locus, "locus", "", "region expression of the locus, for example TAAT(CAG)*CCTT")
	flags.IntVar(&kmerLength, "kmer-len", DefaultKmerLength, "length of the k-mers used for seeding")
	flags.IntVar(&paddingLength, "padding-len", DefaultPaddingLength, "extra bases considered when aligning read flanks")
	flags.IntVar(&seedAffixTrimLength, "seed-affix-trim-len", DefaultSeedAffixTrimLength, "bases trimmed off seeds near node boundaries")
	flags.IntVar(&matchScore, "match", DefaultMatchScore, "match score")
	flags.IntVar(&mismatchScore, "mismatch", DefaultMismatchScore, "mismatch score")
	flags.IntVar(&gapScore, "gap", DefaultGapScore, "gap score")
	flags.StringVar(&output, "output", "", "output file, standard output by default")
	flags.BoolVar(&canonical, "canonical", false, "also output the canonical alignment of all reads")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a cpu profile")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, AlignHelp)
		os.Exit(1)
	}

	input := getFilename(os.Args[2], AlignHelp)
	parseFlags(flags, 3, AlignHelp)

	setLogOutput(logPath)

	// sanity checks

	sanityChecksFailed := false

	if !checkExist("", input) {
		sanityChecksFailed = true
	}

	g, ok := checkLocus(locus)
	if !ok {
		sanityChecksFailed = true
	}

	if !checkKmerLength(kmerLength) {
		sanityChecksFailed = true
	}

	if paddingLength < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid padding-len: ", paddingLength)
	}

	if seedAffixTrimLength < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid seed-affix-trim-len: ", seedAffixTrimLength)
	}

	if output != "" && !checkCreate("--output", output) {
		sanityChecksFailed = true
	}

	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, AlignHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " align ", input)
	fmt.Fprint(&command, " --locus ", locus)
	fmt.Fprint(&command, " --kmer-len ", kmerLength)
	fmt.Fprint(&command, " --padding-len ", paddingLength)
	fmt.Fprint(&command, " --seed-affix-trim-len ", seedAffixTrimLength)
	fmt.Fprint(&command, " --match ", matchScore)
	fmt.Fprint(&command, " --mismatch ", mismatchScore)
	fmt.Fprint(&command, " --gap ", gapScore)
	if output != "" {
		fmt.Fprint(&command, " --output ", output)
	}
	if canonical {
		fmt.Fprint(&command, " --canonical")
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	fullInput, err := internal.FullPathname(input)
	if err != nil {
		return err
	}

	var index *kmers.KmerIndex
	timedRun(timed, profile, "Building k-mer index.", 1, func() {
		index = kmers.New(g, kmerLength)
	})
	gappedAligner := aligner.NewWithKmerIndex(g, index, paddingLength, seedAffixTrimLength,
		align.NewPathAligner(matchScore, mismatchScore, gapScore))
	classifier := aligner.NewLocusClassifier(g, matchScore, mismatchScore, gapScore)

	var reads []fasta.Read
	timedRun(timed, profile, "Reading reads from "+fullInput+".", 2, func() {
		reads = fasta.ParseReadFile(fullInput)
	})
	log.Println("Number of reads: ", len(reads))

	histogram := aligner.NewRepeatHistogram()
	var aligned []aligner.AlignedRead
	timedRun(timed, profile, "Aligning reads.", 3, func() {
		aligned = gappedAligner.AlignReads(reads, classifier, histogram)
	})

	var out io.Writer = os.Stdout
	if output != "" {
		f := internal.FileCreate(output)
		defer internal.Close(f)
		out = f
	}
	timedRun(timed, profile, "Writing output.", 4, func() {
		err = writeAlignedReads(out, locus, aligned, histogram, canonical)
	})
	return err
}

func writeAlignedReads(out io.Writer, locus string, aligned []aligner.AlignedRead, histogram *aligner.RepeatHistogram, canonical bool) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "#run\t%v\n#locus\t%v\n", RunID, locus)
	var firstAlignments []align.GraphAlignment
	numFailed, numUnaligned, numSpanning := 0, 0, 0
	for _, read := range aligned {
		if read.Err != nil {
			log.Printf("Warning: read %v excluded: %v\n", read.Read.Name, read.Err)
			numFailed++
			continue
		}
		if len(read.Alignments) == 0 {
			numUnaligned++
			continue
		}
		strand := '+'
		if read.ReverseComplemented {
			strand = '-'
		}
		for i, ga := range read.Alignments {
			classes := read.Classes[i]
			fmt.Fprintf(w, "%v\t%c\t%v\t%v\t%v\t%v\n", read.Read.Name, strand, ga.Path().Start(), ga.Cigar(),
				aligner.EncodeReadClasses(classes), aligner.EncodeRepeatUnitCounts(aligner.RepeatUnitCounts(classes)))
		}
		if read.Allele != nil {
			numSpanning++
		}
		firstAlignments = append(firstAlignments, read.Alignments[0])
	}
	if canonical && len(firstAlignments) > 0 {
		ga := align.ComputeCanonicalAlignment(firstAlignments)
		fmt.Fprintf(w, "#canonical\t%v\t%v\n", ga.Path().Start(), ga.Cigar())
	}
	for _, entry := range histogram.Entries() {
		fmt.Fprintf(w, "#allele\t%v\t%v\n", entry.Allele, entry.NumReads)
	}
	log.Println("Number of spanning reads: ", numSpanning)
	log.Println("Number of unaligned reads: ", numUnaligned)
	log.Println("Number of excluded reads: ", numFailed)
	return w.Flush()
}
