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
package align

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/exascience/strgraph/graph"
)

func makeRepeatRegionGraph(t *testing.T) *graph.Graph {
	g, err := graph.MakeRegionGraph("TAAT(CAG)*CAACAG(CCG)*CCTT")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestDecodeGraphAlignment(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga, err := DecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
	if err != nil {
		t.Fatal(err)
	}
	if ga.String() != "2: 0[2M]1[3M]1[3M]2[2M]" || ga.Cigar() != "0[2M]1[3M]1[3M]2[2M]" {
		t.Errorf("unexpected encoding %v", ga)
	}
	if ga.Path().Encode() != "(0@2)-(1)-(1)-(2@2)" {
		t.Errorf("unexpected path %v", ga.Path())
	}
	if ga.Size() != 4 || ga.QueryLength() != 10 || ga.ReferenceLength() != 10 || ga.NumMatches() != 10 {
		t.Errorf("unexpected lengths for %v", ga)
	}
	if !ga.Alignment(1).Equal(MustParseLinearAlignment(0, "3M")) || ga.NodeID(3) != 2 {
		t.Errorf("unexpected node alignments for %v", ga)
	}
	if !ga.OverlapsNode(1) || ga.OverlapsNode(3) {
		t.Error("OverlapsNode failed")
	}
}

func TestDecodeGraphAlignmentErrors(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	var malformed *MalformedCigarError
	for _, cigar := range []string{"", "0[2M]1[3M", "x[2M]", "[2M]", "0[2Q]", "0(2M)"} {
		if _, err := DecodeGraphAlignment(2, cigar, g); !errors.As(err, &malformed) {
			t.Errorf("malformed graph CIGAR %q accepted", cigar)
		}
	}
	var invalidPath *graph.InvalidPathError
	if _, err := DecodeGraphAlignment(2, "0[2M]2[7M]", g); !errors.As(err, &invalidPath) {
		t.Error("alignment beyond the end of a node accepted")
	}
	var inconsistent *AlignmentInconsistencyError
	if _, err := DecodeGraphAlignment(2, "0[3M]1[3M]", g); !errors.As(err, &inconsistent) {
		t.Error("alignment inconsistent with its path accepted")
	}
}

func TestNewGraphAlignment(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	path := graph.MustNewPath(g, 2, []graph.NodeID{0, 1}, 3)
	alignments := []LinearAlignment{MustParseLinearAlignment(2, "2M"), MustParseLinearAlignment(0, "1M1X1M")}
	ga, err := NewGraphAlignment(path, alignments)
	if err != nil {
		t.Fatal(err)
	}
	if ga.String() != "2: 0[2M]1[1M1X1M]" {
		t.Errorf("unexpected alignment %v", ga)
	}
	var inconsistent *AlignmentInconsistencyError
	if _, err := NewGraphAlignment(path, alignments[:1]); !errors.As(err, &inconsistent) {
		t.Error("alignment with a missing node accepted")
	}
}

func TestIndexesOfNode(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[6M]3[3M]4[2M]", g)
	if indexes := ga.IndexesOfNode(1); !reflect.DeepEqual(indexes, []int{1, 2}) {
		t.Errorf("unexpected indexes %v", indexes)
	}
	if indexes := ga.IndexesOfNode(3); !reflect.DeepEqual(indexes, []int{4}) {
		t.Errorf("unexpected indexes %v", indexes)
	}
	if indexes := MustDecodeGraphAlignment(0, "2[6M]", g).IndexesOfNode(1); len(indexes) != 0 {
		t.Errorf("unexpected indexes %v", indexes)
	}
}

func TestCheckGraphAlignmentConsistency(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
	if !CheckGraphAlignmentConsistency(ga, "ATCAGCAGCA") {
		t.Error("consistent alignment rejected")
	}
	if CheckGraphAlignmentConsistency(ga, "ATCAGCAGCT") {
		t.Error("inconsistent alignment accepted")
	}
	if CheckGraphAlignmentConsistency(MustDecodeGraphAlignment(2, "0[2M]1[3D]2[2M]", g), "ATCA") {
		t.Error("node without query bases accepted")
	}
	pieces := QuerySequencesForEachNode(ga, "ATCAGCAGCA")
	if !reflect.DeepEqual(pieces, []string{"AT", "CAG", "CAG", "CA"}) {
		t.Errorf("unexpected query pieces %v", pieces)
	}
}

func TestPrettyPrintGraphAlignment(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga := MustDecodeGraphAlignment(2, "0[2M]1[1M1X1M]", g)
	expected := "AT:CAG\n||:| |\nAT:CTG"
	if s := PrettyPrintGraphAlignment(ga, "ATCTG"); s != expected {
		t.Errorf("unexpected rendering\n%v", s)
	}
}

func TestShrinkStart(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	for _, tc := range []struct {
		length   int
		expected string
	}{
		{2, "0: 1[2S3M]1[3M]2[2M]"},
		{3, "1: 1[3S2M]1[3M]2[2M]"},
		{8, "0: 2[8S2M]"},
	} {
		ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
		if err := ga.ShrinkStart(tc.length); err != nil {
			t.Error(err)
			continue
		}
		if ga.String() != tc.expected {
			t.Errorf("expected %v, got %v", tc.expected, ga)
		}
	}
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
	var invalidShrink *InvalidShrinkError
	if err := ga.ShrinkStart(10); !errors.As(err, &invalidShrink) {
		t.Error("shrinking the whole alignment accepted")
	}
	if ga.String() != "2: 0[2M]1[3M]1[3M]2[2M]" {
		t.Errorf("failed shrink modified the alignment to %v", ga)
	}
}

func TestShrinkEnd(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	for _, tc := range []struct {
		length   int
		expected string
	}{
		{2, "2: 0[2M]1[3M]1[3M2S]"},
		{3, "2: 0[2M]1[3M]1[2M3S]"},
		{8, "2: 0[2M8S]"},
	} {
		ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
		if err := ga.ShrinkEnd(tc.length); err != nil {
			t.Error(err)
			continue
		}
		if ga.String() != tc.expected {
			t.Errorf("expected %v, got %v", tc.expected, ga)
		}
	}
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
	var invalidShrink *InvalidShrinkError
	if err := ga.ShrinkEnd(12); !errors.As(err, &invalidShrink) {
		t.Error("shrinking the whole alignment accepted")
	}
}

func TestShrinkThroughLoop(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	for _, numVisits := range []int{300, 100000} {
		cigar := "0[2M]" + strings.Repeat("1[3M]", numVisits) + "2[4M]"
		for _, tc := range []struct {
			fromStart bool
			length    int
			expected  string
		}{
			{true, 3 * numVisits, fmt.Sprintf("1: 1[%vS2M]2[4M]", 3*numVisits)},
			{true, 3*numVisits + 2, fmt.Sprintf("0: 2[%vS4M]", 3*numVisits+2)},
			{false, 3*numVisits + 3, fmt.Sprintf("2: 0[2M]1[1M%vS]", 3*numVisits+3)},
			{false, 3*numVisits + 4, fmt.Sprintf("2: 0[2M%vS]", 3*numVisits+4)},
		} {
			ga := MustDecodeGraphAlignment(2, cigar, g)
			var err error
			if tc.fromStart {
				err = ga.ShrinkStart(tc.length)
			} else {
				err = ga.ShrinkEnd(tc.length)
			}
			if err != nil {
				t.Error(err)
				continue
			}
			if ga.String() != tc.expected {
				t.Errorf("%v visits, shrinking by %v: expected %v, got %v", numVisits, tc.length, tc.expected, ga)
			}
		}
	}
}

func TestDecodeEncodedAlignments(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	for length := 4; length <= 16; length++ {
		for _, path := range graph.ExtendPathEnd(graph.MustNewPath(g, 0, []graph.NodeID{0}, 0), length) {
			for _, linearCigar := range []string{
				fmt.Sprintf("%vM", length),
				fmt.Sprintf("1X%vM1S", length-1),
				fmt.Sprintf("2S%vM", length),
				fmt.Sprintf("1M1I%vM", length-1),
			} {
				ga, err := ProjectAlignmentOntoGraph(MustParseLinearAlignment(0, linearCigar), path)
				if err != nil {
					t.Errorf("projecting %v onto %v: %v", linearCigar, path, err)
					continue
				}
				decoded, err := DecodeGraphAlignment(ga.Path().Start(), ga.Cigar(), g)
				if err != nil {
					t.Errorf("decoding %v: %v", ga, err)
					continue
				}
				if !decoded.Equal(ga) || decoded.Cigar() != ga.Cigar() {
					t.Errorf("expected %v, got %v", ga, decoded)
				}
			}
		}
	}
}

func TestIsLocalAlignment(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	for _, tc := range []struct {
		start int
		cigar string
		local bool
	}{
		{2, "0[2M]1[3M]1[3M]2[2M]", true},
		{1, "1[3S2M]1[3M]2[1M1S]", true},
		{2, "0[1X1M]1[3M]", false},
		{2, "0[1S1X1M]1[3M]", false},
		{2, "0[2M]1[2M1X]", false},
		{2, "0[2M]1[2M1I]", false},
	} {
		ga := MustDecodeGraphAlignment(tc.start, tc.cigar, g)
		if IsLocalAlignment(ga) != tc.local {
			t.Errorf("unexpected locality of %v", ga)
		}
	}
}

func TestProjectAlignmentOntoGraph(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	path := graph.MustNewPath(g, 2, []graph.NodeID{0, 1, 1, 2}, 2)
	ga, err := ProjectAlignmentOntoGraph(MustParseLinearAlignment(1, "3S8M"), path)
	if err != nil {
		t.Fatal(err)
	}
	if ga.String() != "3: 0[3S1M]1[3M]1[3M]2[1M]" {
		t.Errorf("unexpected projection %v", ga)
	}
	if path.Encode() != "(0@2)-(1)-(1)-(2@2)" {
		t.Errorf("projection modified the path to %v", path)
	}
	ga, err = ProjectAlignmentOntoGraph(MustParseLinearAlignment(0, "2M1I8M"), path)
	if err != nil {
		t.Fatal(err)
	}
	if ga.String() != "2: 0[2M1I]1[3M]1[3M]2[2M]" {
		t.Errorf("unexpected projection %v", ga)
	}
}

func TestExtendWithSoftclip(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]", g)
	extended, err := ExtendWithSoftclip(ga, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if extended.String() != "2: 0[1S2M]1[3M2S]" {
		t.Errorf("unexpected extension %v", extended)
	}
	if ga.String() != "2: 0[2M]1[3M]" {
		t.Errorf("extension modified the alignment to %v", ga)
	}
}

func TestRepeatStatistics(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	ga := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[1M1X1M]2[2M]", g)
	if n := NumNonrepeatMatchesUpstream(1, ga); n != 2 {
		t.Errorf("expected 2 upstream matches, got %v", n)
	}
	if n := NumNonrepeatMatchesDownstream(1, ga); n != 2 {
		t.Errorf("expected 2 downstream matches, got %v", n)
	}
	if n := NumNonrepeatMatchesUpstream(3, ga); n != 0 {
		t.Errorf("expected no upstream matches, got %v", n)
	}
	if n := CountFullOverlaps(1, ga); n != 2 {
		t.Errorf("expected 2 full overlaps, got %v", n)
	}
	if score := ScoreAlignmentToNonloopNodes(ga, 5, -4, -8); score != 20 {
		t.Errorf("expected score 20, got %v", score)
	}
}

func TestSortAndDeduplicate(t *testing.T) {
	g := makeRepeatRegionGraph(t)
	a := MustDecodeGraphAlignment(1, "1[2M]1[3M]2[1M]", g)
	b := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[2M]", g)
	c := MustDecodeGraphAlignment(2, "0[2M]1[3M]1[3M]2[1M1X]", g)
	sorted := SortAndDeduplicate([]GraphAlignment{c, b, a, b, c})
	var result []string
	for _, ga := range sorted {
		result = append(result, ga.String())
	}
	expected := []string{a.String(), c.String(), b.String()}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}
