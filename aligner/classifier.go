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
	"strings"

	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/utils"
	"github.com/willf/bitset"
)

// ReadClass is the class of an alignment relative to a repeat.
type ReadClass int

const (
	// Other alignments do not overlap the repeat, or fail the quality
	// checks of their class.
	Other ReadClass = iota

	// Spanning alignments overlap the flanks on both sides of the
	// repeat.
	Spanning

	// Flanking alignments overlap the repeat and the flank on one side
	// of it.
	Flanking

	// InRepeat alignments lie entirely within the repeat.
	InRepeat
)

var readClassNames = [...]string{
	Other:    "other",
	Spanning: "spanning",
	Flanking: "flanking",
	InRepeat: "inrepeat",
}

func (class ReadClass) String() string {
	return readClassNames[class]
}

// MinInRepeatPurity is the minimal weighted purity of an in-repeat
// read.
const MinInRepeatPurity = 0.8

// StrAlignment summarizes an alignment relative to one repeat.
type StrAlignment struct {
	Class ReadClass

	// NumUnits is the number of repeat units the alignment covers
	// completely.
	NumUnits int

	// FlankScore is the score of the alignment on the nodes without a
	// self-loop.
	FlankScore int
}

/*
StrClassifier classifies alignments relative to the repeat of a node
with a self-loop. The left flank of the repeat consists of its
predecessors, and the right flank of its successors, the repeat node
itself excluded.
*/
type StrClassifier struct {
	repeatNode                          graph.NodeID
	repeatUnit                          string
	leftFlank, rightFlank               *bitset.BitSet
	matchScore, mismatchScore, gapScore int
}

// NewStrClassifier creates a classifier for the repeat at the given
// node, with the scores used by the alignment filters.
func NewStrClassifier(g *graph.Graph, repeatNode graph.NodeID, matchScore, mismatchScore, gapScore int) *StrClassifier {
	classifier := &StrClassifier{
		repeatNode:    repeatNode,
		repeatUnit:    g.NodeSeq(repeatNode),
		leftFlank:     bitset.New(uint(g.NumNodes())),
		rightFlank:    bitset.New(uint(g.NumNodes())),
		matchScore:    matchScore,
		mismatchScore: mismatchScore,
		gapScore:      gapScore,
	}
	for _, pred := range g.Predecessors(repeatNode) {
		if pred != repeatNode {
			classifier.leftFlank.Set(uint(pred))
		}
	}
	for _, succ := range g.Successors(repeatNode) {
		if succ != repeatNode {
			classifier.rightFlank.Set(uint(succ))
		}
	}
	return classifier
}

// RepeatNode returns the node of the repeat.
func (classifier *StrClassifier) RepeatNode() graph.NodeID {
	return classifier.repeatNode
}

// Classify determines the class of the alignment by the nodes it
// visits only.
func (classifier *StrClassifier) Classify(ga align.GraphAlignment) StrAlignment {
	overlapsLeftFlank, overlapsRightFlank := false, false
	for _, id := range ga.Path().NodeIDs() {
		if classifier.leftFlank.Test(uint(id)) {
			overlapsLeftFlank = true
		}
		if classifier.rightFlank.Test(uint(id)) {
			overlapsRightFlank = true
		}
	}
	result := StrAlignment{
		NumUnits:   align.CountFullOverlaps(classifier.repeatNode, ga),
		FlankScore: align.ScoreAlignmentToNonloopNodes(ga, classifier.matchScore, classifier.mismatchScore, classifier.gapScore),
	}
	overlapsRepeat := ga.OverlapsNode(classifier.repeatNode)
	switch {
	case overlapsLeftFlank && overlapsRightFlank:
		result.Class = Spanning
	case overlapsRepeat && (overlapsLeftFlank || overlapsRightFlank):
		result.Class = Flanking
	case overlapsRepeat:
		result.Class = InRepeat
	}
	return result
}

/*
CheckQuality reports whether a classified alignment of the query is
good enough for its class.

Every alignment must pass the alignment filters. A spanning alignment
must align well on both sides of the repeat, and a flanking alignment
on at least one side. The query of an in-repeat alignment must have a
weighted purity of at least MinInRepeatPurity.
*/
func (classifier *StrClassifier) CheckQuality(query string, ga align.GraphAlignment, strAlignment StrAlignment) bool {
	if !align.CheckIfPassesAlignmentFilters(ga) {
		return false
	}
	upstreamIsGood := align.CheckIfUpstreamAlignmentIsGood(classifier.repeatNode, ga, classifier.matchScore, classifier.mismatchScore, classifier.gapScore)
	downstreamIsGood := align.CheckIfDownstreamAlignmentIsGood(classifier.repeatNode, ga, classifier.matchScore, classifier.mismatchScore, classifier.gapScore)
	switch strAlignment.Class {
	case Spanning:
		return upstreamIsGood && downstreamIsGood
	case Flanking:
		return upstreamIsGood || downstreamIsGood
	case InRepeat:
		return WeightedPurity(classifier.repeatUnit, query) >= MinInRepeatPurity
	}
	return false
}

// ClassifyAlignment classifies the alignment of the query, and
// reclassifies it as Other if it fails the quality checks.
func (classifier *StrClassifier) ClassifyAlignment(query string, ga align.GraphAlignment) StrAlignment {
	strAlignment := classifier.Classify(ga)
	if strAlignment.Class != Other && !classifier.CheckQuality(query, ga, strAlignment) {
		strAlignment.Class = Other
	}
	return strAlignment
}

func circularPermutations(seq string) []string {
	permutations := make([]string, len(seq))
	for i := range seq {
		permutations[i] = seq[i:] + seq[:i]
	}
	return permutations
}

func scorePurityBases(reference, query byte) float64 {
	if utils.CheckIfReferenceBaseMatchesQueryBase(reference, query) {
		return 1
	}
	switch query {
	case 'a', 'c', 'g', 't':
		return 0.5
	}
	return -1
}

/*
WeightedPurity scores how closely the query resembles a perfect repeat
of the given unit, in either orientation and starting at any offset
into the unit. Matching bases score 1, and mismatching bases -1, or
0.5 for lower-case query bases. The result is the best total score
divided by the length of the query.
*/
func WeightedPurity(repeatUnit, query string) float64 {
	if repeatUnit == "" || query == "" {
		return 0
	}
	units := append(circularPermutations(repeatUnit), circularPermutations(utils.ReverseComplement(repeatUnit))...)
	var best float64
	for i, unit := range units {
		var score float64
		for pos := 0; pos < len(query); pos++ {
			score += scorePurityBases(unit[pos%len(unit)], query[pos])
		}
		if i == 0 || score > best {
			best = score
		}
	}
	return best / float64(len(query))
}

// LocusClassifier classifies alignments relative to every repeat of a
// graph, in the order of LoopNodes.
type LocusClassifier struct {
	classifiers []*StrClassifier
}

// NewLocusClassifier creates a classifier for all repeats of the graph.
func NewLocusClassifier(g *graph.Graph, matchScore, mismatchScore, gapScore int) *LocusClassifier {
	lc := &LocusClassifier{}
	for _, id := range LoopNodes(g) {
		lc.classifiers = append(lc.classifiers, NewStrClassifier(g, id, matchScore, mismatchScore, gapScore))
	}
	return lc
}

// NumRepeats returns the number of repeats of the locus.
func (lc *LocusClassifier) NumRepeats() int {
	return len(lc.classifiers)
}

// ClassifyAlignment classifies the alignment of the query relative to
// each repeat.
func (lc *LocusClassifier) ClassifyAlignment(query string, ga align.GraphAlignment) []StrAlignment {
	result := make([]StrAlignment, len(lc.classifiers))
	for i, classifier := range lc.classifiers {
		result[i] = classifier.ClassifyAlignment(query, ga)
	}
	return result
}

// EncodeReadClasses encodes the classes of the summaries as a
// slash-separated string, for example spanning/flanking.
func EncodeReadClasses(strAlignments []StrAlignment) string {
	names := make([]string, len(strAlignments))
	for i, strAlignment := range strAlignments {
		names[i] = strAlignment.Class.String()
	}
	return strings.Join(names, "/")
}

// RepeatUnitCounts returns the number of full repeat units of each
// summary.
func RepeatUnitCounts(strAlignments []StrAlignment) []int {
	counts := make([]int, len(strAlignments))
	for i, strAlignment := range strAlignments {
		counts[i] = strAlignment.NumUnits
	}
	return counts
}

// IsSpanning reports whether there is at least one summary, and every
// summary is of class Spanning.
func IsSpanning(strAlignments []StrAlignment) bool {
	if len(strAlignments) == 0 {
		return false
	}
	for _, strAlignment := range strAlignments {
		if strAlignment.Class != Spanning {
			return false
		}
	}
	return true
}

func flankScore(strAlignments []StrAlignment) (score int) {
	for _, strAlignment := range strAlignments {
		score += strAlignment.FlankScore
	}
	return score
}

// SupportedAllele returns the repeat-unit counts of the alignment that
// spans every repeat with the highest flank score, preferring earlier
// alignments on ties. The result is nil if no alignment spans every
// repeat.
func SupportedAllele(classes [][]StrAlignment) (allele []int) {
	bestScore := 0
	for _, strAlignments := range classes {
		if !IsSpanning(strAlignments) {
			continue
		}
		if score := flankScore(strAlignments); allele == nil || score > bestScore {
			allele, bestScore = RepeatUnitCounts(strAlignments), score
		}
	}
	return allele
}
