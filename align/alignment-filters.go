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

import "github.com/exascience/strgraph/graph"

// Thresholds of the alignment filters.
const (
	// MinPercentMatches is the minimal percentage of matched bases,
	// relative to both the clipped query length and the reference
	// length, for an alignment to pass the filters.
	MinPercentMatches = 80

	// MinFlankMatches is the minimal number of matches a flank needs,
	// and the number of match scores its alignment must reach, to be
	// considered well aligned.
	MinFlankMatches = 8
)

// CheckIfPassesAlignmentFilters reports whether enough of the clipped
// query and of the reference are covered by matches.
func CheckIfPassesAlignmentFilters(ga GraphAlignment) bool {
	frontSoftclipLength, backSoftclipLength := 0, 0
	if first := ga.alignments[0].Operations; len(first) > 0 && first[0].Type == Softclip {
		frontSoftclipLength = first[0].Length
	}
	if last := ga.alignments[len(ga.alignments)-1].Operations; len(last) > 0 && last[len(last)-1].Type == Softclip {
		backSoftclipLength = last[len(last)-1].Length
	}
	clippedQueryLength := ga.QueryLength() - frontSoftclipLength - backSoftclipLength
	referenceLength := ga.ReferenceLength()
	if clippedQueryLength <= 0 || referenceLength <= 0 {
		return false
	}
	numMatches := ga.NumMatches()
	return 100*numMatches/clippedQueryLength >= MinPercentMatches &&
		100*numMatches/referenceLength >= MinPercentMatches
}

func scoreNodeRange(ga GraphAlignment, from, to, matchScore, mismatchScore, gapScore int) (score int) {
	for index := from; index < to; index++ {
		score += ScoreAlignment(ga.alignments[index], matchScore, mismatchScore, gapScore)
	}
	return score
}

// CheckIfUpstreamAlignmentIsGood reports whether the part of the
// alignment before the first visit of the given repeat node has at
// least MinFlankMatches matches and scores at least MinFlankMatches
// times the match score.
func CheckIfUpstreamAlignmentIsGood(id graph.NodeID, ga GraphAlignment, matchScore, mismatchScore, gapScore int) bool {
	indexes := ga.IndexesOfNode(id)
	if len(indexes) == 0 || NumNonrepeatMatchesUpstream(id, ga) < MinFlankMatches {
		return false
	}
	return scoreNodeRange(ga, 0, indexes[0], matchScore, mismatchScore, gapScore) >= MinFlankMatches*matchScore
}

// CheckIfDownstreamAlignmentIsGood is the mirror image of
// CheckIfUpstreamAlignmentIsGood, for the part of the alignment after
// the last visit of the given repeat node.
func CheckIfDownstreamAlignmentIsGood(id graph.NodeID, ga GraphAlignment, matchScore, mismatchScore, gapScore int) bool {
	indexes := ga.IndexesOfNode(id)
	if len(indexes) == 0 || NumNonrepeatMatchesDownstream(id, ga) < MinFlankMatches {
		return false
	}
	return scoreNodeRange(ga, indexes[len(indexes)-1]+1, len(ga.alignments), matchScore, mismatchScore, gapScore) >= MinFlankMatches*matchScore
}

// ScoreGraphAlignment scores the alignment over all its nodes.
func ScoreGraphAlignment(ga GraphAlignment, matchScore, mismatchScore, gapScore int) int {
	return scoreNodeRange(ga, 0, len(ga.alignments), matchScore, mismatchScore, gapScore)
}
