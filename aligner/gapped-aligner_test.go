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

package aligner

import (
	"reflect"
	"testing"

	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/fasta"
	"github.com/exascience/strgraph/graph"
)

func alignmentStrings(alns []align.GraphAlignment) (result []string) {
	for _, aln := range alns {
		result = append(result, aln.String())
	}
	return result
}

func testAlignments(t *testing.T, aligner *GappedAligner, query string, expected []string) {
	alns, err := aligner.Align(query)
	if err != nil {
		t.Errorf("aligning %v: %v", query, err)
		return
	}
	if result := alignmentStrings(alns); !reflect.DeepEqual(result, expected) {
		t.Errorf("aligning %v: expected %v, got %v", query, expected, result)
	}
	for _, aln := range alns {
		if !align.CheckGraphAlignmentConsistency(aln, query) {
			t.Errorf("aligning %v: inconsistent alignment %v", query, aln)
		}
	}
}

func TestAlignStrReads(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "CGG", "CTT")
	aligner := New(g, 3, 0, 0, align.NewPathAligner(5, -4, -8))
	for _, tc := range []struct {
		query    string
		expected []string
	}{
		{"CGGCT", []string{"0: 1[3M]2[2M]"}},
		{"AATCGG", []string{"0: 0[2M1X]1[3M]"}},
		{"CTT", []string{"0: 2[3M]"}},
		{"CGGAA", []string{"0: 1[3M2S]"}},
		{"TTCGG", []string{"0: 1[2S3M]"}},
		{"TCGGA", []string{"0: 1[1S3M1S]"}},
		{"GCGGC", []string{
			"2: 0[1M]1[3M]1[1M]",
			"2: 0[1M]1[3M]2[1M]",
			"2: 1[1M]1[3M]1[1M]",
			"2: 1[1M]1[3M]2[1M]",
		}},
		{"TTTTTT", nil},
	} {
		testAlignments(t, aligner, tc.query, tc.expected)
	}
}

func TestAlignLowerCaseRead(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "CGG", "CTT")
	aligner := New(g, 4, 0, 0, align.NewPathAligner(5, -4, -8))
	testAlignments(t, aligner, "aagcggctt", []string{"0: 0[3M]1[3M]2[3M]"})
}

func TestAlignToDegenerateRepeat(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "GCN", "ATT")
	aligner := New(g, 4, 0, 0, align.NewPathAligner(5, -4, -8))
	testAlignments(t, aligner, "AGGCCGTGGCAATT", []string{"1: 0[2M]1[3M]1[1M1X1M]1[3M]2[3M]"})
}

func TestTrimSeedNearNodeEdge(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "CGG", "CTT")
	path := graph.MustNewPath(g, 2, []graph.NodeID{0, 1, 2}, 1)
	if trimmed := trimPrefixNearNodeEdge(1, MinSeedLength, &path); trimmed != 1 || path.Encode() != "(1@0)-(2@1)" {
		t.Errorf("unexpected prefix trim %v, %v", trimmed, path.Encode())
	}
	if trimmed := trimSuffixNearNodeEdge(1, MinSeedLength, &path); trimmed != 1 || path.Encode() != "(1@0)-(1@3)" {
		t.Errorf("unexpected suffix trim %v, %v", trimmed, path.Encode())
	}
	if trimmed := trimSuffixNearNodeEdge(1, MinSeedLength, &path); trimmed != 0 || path.Encode() != "(1@0)-(1@3)" {
		t.Errorf("single-node path trimmed by %v to %v", trimmed, path.Encode())
	}
	path = graph.MustNewPath(g, 0, []graph.NodeID{1, 2}, 2)
	if trimmed := trimSuffixNearNodeEdge(1, MinSeedLength, &path); trimmed != 0 || path.Encode() != "(1@0)-(2@2)" {
		t.Errorf("unexpected suffix trim %v, %v", trimmed, path.Encode())
	}
	path = graph.MustNewPath(g, 2, []graph.NodeID{0, 1}, 1)
	if trimmed := trimSuffixNearNodeEdge(5, MinSeedLength, &path); trimmed != 0 || path.Encode() != "(0@2)-(1@1)" {
		t.Errorf("path at minimal length trimmed by %v to %v", trimmed, path.Encode())
	}
}

func TestAlignShortFlanksWithPadding(t *testing.T) {
	g, err := graph.MakeRegionGraph("AAGTCCA(CGG)*CTTGAGC")
	if err != nil {
		t.Fatal(err)
	}
	for _, paddingLength := range []int{0, 10} {
		aligner := New(g, 3, paddingLength, 0, align.NewPathAligner(5, -4, -8))
		testAlignments(t, aligner, "CTCCACGGCGGCTTGA", []string{"3: 0[1S4M]1[3M]1[3M]2[5M]"})
		testAlignments(t, aligner, "GTCCACGGCGGCTTGT", []string{"2: 0[5M]1[3M]1[3M]2[4M1S]"})
	}
}

func TestAlignWithSingleBaseKmers(t *testing.T) {
	g, err := graph.MakeRegionGraph("AAGTCCA(CGG)*CTTGAGC")
	if err != nil {
		t.Fatal(err)
	}
	aligner := New(g, 1, 10, 0, align.NewPathAligner(5, -4, -8))
	testAlignments(t, aligner, "T", nil)
	aligned := aligner.AlignReads([]fasta.Read{{Name: "single", Seq: "T"}}, nil, nil)
	if len(aligned) != 1 || aligned[0].Err != nil || aligned[0].Alignments != nil {
		t.Errorf("unexpected result %+v", aligned)
	}
	seed := graph.MustNewPath(g, 3, []graph.NodeID{0}, 4)
	if alns, err := aligner.extendSeedToFullAlignments(seed, "T", 0); err != nil || alns != nil {
		t.Errorf("single-base seed extended to %v, %v", alignmentStrings(alns), err)
	}
}
