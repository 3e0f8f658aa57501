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

// PathAndAlignment pairs a path with a linear alignment against the
// path's sequence.
type PathAndAlignment struct {
	Path      graph.Path
	Alignment LinearAlignment
}

/*
PathAligner aligns query pieces against every path that extends a
seed path by a given number of bases, and keeps all top-scoring
alignments in the order the paths are enumerated.
*/
type PathAligner struct {
	aligner PinnedAligner
}

// NewPathAligner creates a path aligner with the given scores.
func NewPathAligner(matchScore, mismatchScore, gapScore int) *PathAligner {
	return &PathAligner{aligner: NewPinnedAligner(matchScore, mismatchScore, gapScore)}
}

func (pa *PathAligner) keepTopScoring(paths []graph.Path, query string, pinnedAlign func(reference, query string) LinearAlignment) (result []PathAndAlignment) {
	var topScore int
	for _, path := range paths {
		aln := pinnedAlign(path.Seq(), query)
		score := ScoreAlignment(aln, pa.aligner.MatchScore, pa.aligner.MismatchScore, pa.aligner.GapScore)
		switch {
		case len(result) == 0 || score > topScore:
			topScore = score
			result = append(result[:0], PathAndAlignment{path, aln})
		case score == topScore:
			result = append(result, PathAndAlignment{path, aln})
		}
	}
	return result
}

// PrefixAlign aligns the query to all paths extending the end of the
// seed path by extensionLength bases, or up to the end of the graph.
// The alignments start at the end of the seed path.
func (pa *PathAligner) PrefixAlign(seed graph.Path, query string, extensionLength int) []PathAndAlignment {
	return pa.keepTopScoring(graph.ExtendPathEndUpTo(seed, extensionLength), query, pa.aligner.PrefixAlign)
}

// SuffixAlign aligns the query to all paths extending the start of the
// seed path by extensionLength bases, or up to the start of the graph.
// The alignments end at the start of the seed path.
func (pa *PathAligner) SuffixAlign(seed graph.Path, query string, extensionLength int) []PathAndAlignment {
	return pa.keepTopScoring(graph.ExtendPathStartUpTo(seed, extensionLength), query, pa.aligner.SuffixAlign)
}
