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
	"github.com/exascience/strgraph/graph"
)

const strLocus = "ATTCGATGCA(CAG)*GTACCTGAAT"

func makeStrLocusGraph(t *testing.T) *graph.Graph {
	g, err := graph.MakeRegionGraph(strLocus)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStrClassifier(t *testing.T) {
	g := makeStrLocusGraph(t)
	classifier := NewStrClassifier(g, 1, 5, -4, -8)
	if classifier.RepeatNode() != 1 {
		t.Fatalf("unexpected repeat node %v", classifier.RepeatNode())
	}
	for _, tc := range []struct {
		query    string
		start    int
		cigar    string
		expected StrAlignment
	}{
		{"ATTCGATGCACAGCAGGTACCTGAAT", 0, "0[10M]1[3M]1[3M]2[10M]", StrAlignment{Spanning, 2, 100}},
		{"TCGATGCACAGCAGCAGCA", 2, "0[8M]1[3M]1[3M]1[3M]1[2M]", StrAlignment{Flanking, 3, 40}},
		{"GCAGGTACCTGAAT", 2, "1[1M]1[3M]2[10M]", StrAlignment{Flanking, 1, 50}},
		{"CAGCAGCAGCAG", 0, "1[3M]1[3M]1[3M]1[3M]", StrAlignment{InRepeat, 4, 0}},
		{"CAGTAGCATCAG", 0, "1[3M]1[1X2M]1[2M1X]1[3M]", StrAlignment{Other, 4, 0}},
		{"TGCACAGGTAC", 6, "0[4M]1[3M]2[4M]", StrAlignment{Other, 1, 40}},
		{"ATTCGATGCAGTACCTGAAT", 0, "0[10M]2[10M]", StrAlignment{Other, 0, 100}},
		{"ATTCGATGCATTTTTTGTACCTGAAT", 0, "0[10M]1[3X]1[3X]2[10M]", StrAlignment{Other, 2, 100}},
		{"ATTCGATGCA", 0, "0[10M]", StrAlignment{Other, 0, 50}},
	} {
		ga := align.MustDecodeGraphAlignment(tc.start, tc.cigar, g)
		if result := classifier.ClassifyAlignment(tc.query, ga); result != tc.expected {
			t.Errorf("classifying %v: expected %+v, got %+v", ga, tc.expected, result)
		}
	}
}

func TestStrClassifierStructuralClasses(t *testing.T) {
	g := makeStrLocusGraph(t)
	classifier := NewStrClassifier(g, 1, 5, -4, -8)
	for _, tc := range []struct {
		start    int
		cigar    string
		expected ReadClass
	}{
		{6, "0[4M]1[3M]2[4M]", Spanning},
		{0, "0[10M]2[10M]", Spanning},
		{2, "0[8M]1[3M]", Flanking},
		{0, "1[3M]1[1X2M]", InRepeat},
		{0, "2[10M]", Other},
	} {
		ga := align.MustDecodeGraphAlignment(tc.start, tc.cigar, g)
		if result := classifier.Classify(ga); result.Class != tc.expected {
			t.Errorf("classifying %v: expected %v, got %v", ga, tc.expected, result.Class)
		}
	}
}

func TestWeightedPurity(t *testing.T) {
	for _, tc := range []struct {
		unit, query string
		expected    float64
	}{
		{"CAG", "CAGCAG", 1},
		{"CAG", "AGCAGC", 1},
		{"CAG", "CTGCTG", 1},
		{"CAG", "cagcaa", 5.5 / 6},
		{"CAG", "CAGCAA", 4.0 / 6},
		{"CAG", "", 0},
	} {
		if purity := WeightedPurity(tc.unit, tc.query); purity != tc.expected {
			t.Errorf("purity of %v for unit %v: expected %v, got %v", tc.query, tc.unit, tc.expected, purity)
		}
	}
}

func TestLocusClassifier(t *testing.T) {
	g, err := graph.MakeRegionGraph("TAAT(CAG)*CAACAG(CCG)*CCTT")
	if err != nil {
		t.Fatal(err)
	}
	loops := LoopNodes(g)
	if !reflect.DeepEqual(loops, []graph.NodeID{1, 3}) {
		t.Fatalf("unexpected loop nodes %v", loops)
	}
	classifier := NewLocusClassifier(g, 5, -4, -8)
	if classifier.NumRepeats() != 2 {
		t.Fatalf("expected 2 repeats, got %v", classifier.NumRepeats())
	}
	for _, tc := range []struct {
		start          int
		cigar, classes string
		counts         []int
	}{
		{2, "0[2M]1[3M]1[3M]2[6M]3[3M]4[2M]", "other/other", []int{2, 1}},
		{1, "1[2M]1[3M]2[1M]", "other/other", []int{1, 0}},
		{0, "3[3M]3[3M]3[3M]", "other/inrepeat", []int{0, 3}},
	} {
		ga := align.MustDecodeGraphAlignment(tc.start, tc.cigar, g)
		strAlignments := classifier.ClassifyAlignment(ga.Path().Seq(), ga)
		if classes := EncodeReadClasses(strAlignments); classes != tc.classes {
			t.Errorf("%v: expected classes %v, got %v", ga, tc.classes, classes)
		}
		if counts := RepeatUnitCounts(strAlignments); !reflect.DeepEqual(counts, tc.counts) {
			t.Errorf("%v: expected repeat-unit counts %v, got %v", ga, tc.counts, counts)
		}
	}
	if encoded := EncodeRepeatUnitCounts([]int{2, 1}); encoded != "2/1" {
		t.Errorf("unexpected encoding %v", encoded)
	}
}

func TestSupportedAllele(t *testing.T) {
	classes := [][]StrAlignment{
		{{Flanking, 3, 40}},
		{{Spanning, 2, 60}},
		{{Spanning, 4, 90}},
		{{Spanning, 5, 90}},
	}
	if allele := SupportedAllele(classes); !reflect.DeepEqual(allele, []int{4}) {
		t.Errorf("expected allele [4], got %v", allele)
	}
	classes = [][]StrAlignment{
		{{Spanning, 2, 100}, {Flanking, 1, 100}},
		{{InRepeat, 5, 0}, {Spanning, 0, 0}},
	}
	if allele := SupportedAllele(classes); allele != nil {
		t.Errorf("reads that do not span every repeat support allele %v", allele)
	}
	if IsSpanning(nil) {
		t.Error("an alignment without repeats is spanning")
	}
	if SupportedAllele(nil) != nil {
		t.Error("a read without alignments supports an allele")
	}
}
