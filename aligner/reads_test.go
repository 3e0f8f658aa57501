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

func TestAlignReads(t *testing.T) {
	g := graph.MakeStrGraph("AAG", "CGG", "CTT")
	aligner := New(g, 3, 0, 0, align.NewPathAligner(5, -4, -8))
	reads := []fasta.Read{
		{Name: "forward", Seq: "CGGCT"},
		{Name: "reverse", Seq: "AAGCCGCTT"},
		{Name: "unaligned", Seq: "TTTTTT"},
	}
	aligned := aligner.AlignReads(reads, nil, nil)
	if len(aligned) != len(reads) {
		t.Fatalf("expected %v results, got %v", len(reads), len(aligned))
	}
	for i, tc := range []struct {
		reverse  bool
		query    string
		expected []string
	}{
		{false, "CGGCT", []string{"0: 1[3M]2[2M]"}},
		{true, "AAGCGGCTT", []string{"0: 0[3M]1[3M]2[3M]"}},
		{false, "TTTTTT", nil},
	} {
		result := aligned[i]
		if result.Err != nil {
			t.Errorf("%v: %v", result.Read.Name, result.Err)
			continue
		}
		if result.Read != reads[i] || result.ReverseComplemented != tc.reverse || result.Query() != tc.query {
			t.Errorf("%v: unexpected orientation %v for query %v", result.Read.Name, result.ReverseComplemented, result.Query())
		}
		if alns := alignmentStrings(result.Alignments); !reflect.DeepEqual(alns, tc.expected) {
			t.Errorf("%v: expected %v, got %v", result.Read.Name, tc.expected, alns)
		}
		if result.Classes != nil || result.Allele != nil {
			t.Errorf("%v: classified without a classifier", result.Read.Name)
		}
	}
}

func TestAlignAndClassifyReads(t *testing.T) {
	g := makeStrLocusGraph(t)
	aligner := New(g, 6, 10, 0, align.NewPathAligner(5, -4, -8))
	reads := []fasta.Read{
		{Name: "spanning", Seq: "ATTCGATGCACAGCAGCAGGTACCTGAAT"},
		{Name: "reverse", Seq: "ATTCAGGTACCTGCTGCTGTGCATCGAAT"},
		{Name: "inrepeat", Seq: "CAGCAGCAGCAGCAG"},
	}
	histogram := NewRepeatHistogram()
	aligned := aligner.AlignReads(reads, NewLocusClassifier(g, 5, -4, -8), histogram)
	for i, tc := range []struct {
		alignment string
		classes   string
		allele    []int
	}{
		{"0: 0[10M]1[3M]1[3M]1[3M]2[10M]", "spanning", []int{3}},
		{"0: 0[10M]1[3M]1[3M]1[3M]2[10M]", "spanning", []int{3}},
		{"0: 1[3M]1[3M]1[3M]1[3M]1[3M]", "inrepeat", nil},
	} {
		result := aligned[i]
		if alns := alignmentStrings(result.Alignments); !reflect.DeepEqual(alns, []string{tc.alignment}) {
			t.Errorf("%v: expected %v, got %v", result.Read.Name, tc.alignment, alns)
			continue
		}
		if classes := EncodeReadClasses(result.Classes[0]); classes != tc.classes {
			t.Errorf("%v: expected class %v, got %v", result.Read.Name, tc.classes, classes)
		}
		if !reflect.DeepEqual(result.Allele, tc.allele) {
			t.Errorf("%v: expected allele %v, got %v", result.Read.Name, tc.allele, result.Allele)
		}
	}
	expected := []HistogramEntry{{"3", 2}}
	if entries := histogram.Entries(); !reflect.DeepEqual(entries, expected) {
		t.Errorf("expected histogram %v, got %v", expected, entries)
	}
}

func TestRepeatHistogram(t *testing.T) {
	h := NewRepeatHistogram()
	for _, counts := range [][]int{{2}, {10}, {2}, {2, 3}} {
		h.Add(counts)
	}
	expected := []HistogramEntry{{"2", 2}, {"2/3", 1}, {"10", 1}}
	if entries := h.Entries(); !reflect.DeepEqual(entries, expected) {
		t.Errorf("expected %v, got %v", expected, entries)
	}
}
