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
	"testing"

	"github.com/exascience/strgraph/graph"
)

func TestPinnedAligner(t *testing.T) {
	aligner := NewPinnedAligner(5, -4, -8)
	for _, tc := range []struct {
		suffix           bool
		reference, query string
		start            int
		cigar            string
	}{
		{false, "ACGT", "ACGT", 0, "4M"},
		{false, "AAAA", "AAGG", 0, "2M2S"},
		{false, "AAAACCCC", "AAAAGCCCC", 0, "4M1I4M"},
		{false, "CG", "CT", 0, "1M1S"},
		{true, "AAAA", "GGAA", 2, "2S2M"},
		{true, "ACGT", "ACGT", 0, "4M"},
	} {
		var aln LinearAlignment
		if tc.suffix {
			aln = aligner.SuffixAlign(tc.reference, tc.query)
		} else {
			aln = aligner.PrefixAlign(tc.reference, tc.query)
		}
		if expected := MustParseLinearAlignment(tc.start, tc.cigar); !aln.Equal(expected) {
			t.Errorf("aligning %v to %v: expected %v, got %v", tc.query, tc.reference, expected, aln)
		}
		if !CheckConsistency(aln, tc.reference, tc.query) {
			t.Errorf("inconsistent alignment %v of %v to %v", aln, tc.query, tc.reference)
		}
	}
}

func TestPathAligner(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "CGG", "CTT")
	aligner := NewPathAligner(5, -4, -8)

	prefixes := aligner.PrefixAlign(graph.MustNewPath(g, 3, []graph.NodeID{1}, 3), "CT", 2)
	if len(prefixes) != 1 {
		t.Fatalf("expected 1 prefix alignment, got %v", len(prefixes))
	}
	if prefixes[0].Path.Encode() != "(1@3)-(2@2)" || !prefixes[0].Alignment.Equal(MustParseLinearAlignment(0, "2M")) {
		t.Errorf("unexpected prefix alignment %v %v", prefixes[0].Path, prefixes[0].Alignment)
	}

	suffixes := aligner.SuffixAlign(graph.MustNewPath(g, 0, []graph.NodeID{1}, 0), "AG", 2)
	if len(suffixes) != 1 {
		t.Fatalf("expected 1 suffix alignment, got %v", len(suffixes))
	}
	if suffixes[0].Path.Encode() != "(0@1)-(1@0)" || !suffixes[0].Alignment.Equal(MustParseLinearAlignment(0, "2M")) {
		t.Errorf("unexpected suffix alignment %v %v", suffixes[0].Path, suffixes[0].Alignment)
	}

	clamped := aligner.PrefixAlign(graph.MustNewPath(g, 1, []graph.NodeID{2}, 1), "TTGA", 10)
	if len(clamped) != 1 {
		t.Fatalf("expected 1 prefix alignment at the graph end, got %v", len(clamped))
	}
	if clamped[0].Path.Encode() != "(2@1)-(2@3)" || !clamped[0].Alignment.Equal(MustParseLinearAlignment(0, "2M2S")) {
		t.Errorf("unexpected prefix alignment %v %v", clamped[0].Path, clamped[0].Alignment)
	}

	ties := aligner.PrefixAlign(graph.MustNewPath(g, 3, []graph.NodeID{1}, 3), "AA", 2)
	if len(ties) != 2 {
		t.Fatalf("expected 2 prefix alignments, got %v", len(ties))
	}
	for i, encoding := range []string{"(1@3)-(1@2)", "(1@3)-(2@2)"} {
		if ties[i].Path.Encode() != encoding || !ties[i].Alignment.Equal(MustParseLinearAlignment(0, "2S")) {
			t.Errorf("unexpected prefix alignment %v %v", ties[i].Path, ties[i].Alignment)
		}
	}
}
