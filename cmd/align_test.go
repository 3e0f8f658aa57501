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
	"bytes"
	"errors"
	"testing"

	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/aligner"
	"github.com/exascience/strgraph/fasta"
	"github.com/exascience/strgraph/graph"
)

func classifyRead(read aligner.AlignedRead, classifier *aligner.LocusClassifier, histogram *aligner.RepeatHistogram) aligner.AlignedRead {
	for _, ga := range read.Alignments {
		read.Classes = append(read.Classes, classifier.ClassifyAlignment(read.Query(), ga))
	}
	read.Allele = aligner.SupportedAllele(read.Classes)
	if read.Allele != nil {
		histogram.Add(read.Allele)
	}
	return read
}

func TestWriteAlignedReads(t *testing.T) {
	const locus = "TAAT(CAG)*CAACAG(CCG)*CCTT"
	g, err := graph.MakeRegionGraph(locus)
	if err != nil {
		t.Fatal(err)
	}
	classifier := aligner.NewLocusClassifier(g, 5, -4, -8)
	histogram := aligner.NewRepeatHistogram()
	aligned := []aligner.AlignedRead{
		classifyRead(aligner.AlignedRead{
			Read:       fasta.Read{Name: "r1", Seq: "ATCAGCAGCAACAGCCGCC"},
			Alignments: []align.GraphAlignment{align.MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[6M]3[3M]4[2M]", g)},
		}, classifier, histogram),
		classifyRead(aligner.AlignedRead{
			Read:                fasta.Read{Name: "r2", Seq: "GCTGCT"},
			ReverseComplemented: true,
			Alignments:          []align.GraphAlignment{align.MustDecodeGraphAlignment(1, "1[2M]1[3M]2[1M]", g)},
		}, classifier, histogram),
		{Read: fasta.Read{Name: "r3"}, Err: errors.New("unable to align")},
		{Read: fasta.Read{Name: "r4"}},
	}
	var out bytes.Buffer
	if err := writeAlignedReads(&out, locus, aligned, histogram, true); err != nil {
		t.Fatal(err)
	}
	expected := "#run\t" + RunID.String() + "\n" +
		"#locus\t" + locus + "\n" +
		"r1\t+\t2\t0[2M]1[3M]1[3M]2[6M]3[3M]4[2M]\tother/other\t2/1\n" +
		"r2\t-\t1\t1[2M]1[3M]2[1M]\tother/other\t1/0\n" +
		"#canonical\t1\t1[3S2M]1[3M]2[1M10S]\n"
	if out.String() != expected {
		t.Errorf("expected\n%v\ngot\n%v", expected, out.String())
	}
}

func TestWriteClassifiedReads(t *testing.T) {
	const locus = "ATTCGATGCA(CAG)*GTACCTGAAT"
	g, err := graph.MakeRegionGraph(locus)
	if err != nil {
		t.Fatal(err)
	}
	classifier := aligner.NewLocusClassifier(g, 5, -4, -8)
	histogram := aligner.NewRepeatHistogram()
	var aligned []aligner.AlignedRead
	for _, read := range []struct {
		name, seq string
		start     int
		cigar     string
	}{
		{"spanning", "ATTCGATGCACAGCAGGTACCTGAAT", 0, "0[10M]1[3M]1[3M]2[10M]"},
		{"flanking", "TCGATGCACAGCAGCAGCA", 2, "0[8M]1[3M]1[3M]1[3M]1[2M]"},
		{"inrepeat", "CAGCAGCAGCAG", 0, "1[3M]1[3M]1[3M]1[3M]"},
		{"short", "TGCACAGGTAC", 6, "0[4M]1[3M]2[4M]"},
	} {
		aligned = append(aligned, classifyRead(aligner.AlignedRead{
			Read:       fasta.Read{Name: read.name, Seq: read.seq},
			Alignments: []align.GraphAlignment{align.MustDecodeGraphAlignment(read.start, read.cigar, g)},
		}, classifier, histogram))
	}
	var out bytes.Buffer
	if err := writeAlignedReads(&out, locus, aligned, histogram, false); err != nil {
		t.Fatal(err)
	}
	expected := "#run\t" + RunID.String() + "\n" +
		"#locus\t" + locus + "\n" +
		"spanning\t+\t0\t0[10M]1[3M]1[3M]2[10M]\tspanning\t2\n" +
		"flanking\t+\t2\t0[8M]1[3M]1[3M]1[3M]1[2M]\tflanking\t3\n" +
		"inrepeat\t+\t0\t1[3M]1[3M]1[3M]1[3M]\tinrepeat\t4\n" +
		"short\t+\t6\t0[4M]1[3M]2[4M]\tother\t1\n" +
		"#allele\t2\t1\n"
	if out.String() != expected {
		t.Errorf("expected\n%v\ngot\n%v", expected, out.String())
	}
}

func TestCheckKmerLength(t *testing.T) {
	for _, tc := range []struct {
		kmerLength int
		valid      bool
	}{
		{-1, false},
		{0, false},
		{1, false},
		{aligner.MinSeedLength, true},
		{DefaultKmerLength, true},
	} {
		if valid := checkKmerLength(tc.kmerLength); valid != tc.valid {
			t.Errorf("kmer length %v: expected %v, got %v", tc.kmerLength, tc.valid, valid)
		}
	}
}

func TestCheckLocus(t *testing.T) {
	if _, ok := checkLocus(""); ok {
		t.Error("missing locus accepted")
	}
	if _, ok := checkLocus("AC(G"); ok {
		t.Error("invalid locus accepted")
	}
	g, ok := checkLocus("AAG(CGG)*CTT")
	if !ok || g.NumNodes() != 3 {
		t.Error("valid locus rejected")
	}
}
