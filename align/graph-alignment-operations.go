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
	"log"
	"strconv"
	"strings"

	"github.com/exascience/strgraph/graph"
)

// CheckGraphAlignmentConsistency checks whether the alignment
// correctly describes how the query aligns to the node sequences. In
// an alignment that spans multiple nodes, every node must consume both
// query and reference bases.
func CheckGraphAlignmentConsistency(ga GraphAlignment, query string) bool {
	g := ga.path.Graph()
	queryPos := 0
	for index, aln := range ga.alignments {
		queryLength := aln.QueryLength()
		if len(query) < queryPos+queryLength {
			return false
		}
		queryPiece := query[queryPos : queryPos+queryLength]
		queryPos += queryLength
		if !CheckConsistency(aln, g.NodeSeq(ga.path.NodeID(index)), queryPiece) {
			return false
		}
		if ga.path.NumNodes() != 1 && (aln.ReferenceLength() == 0 || queryLength == 0) {
			return false
		}
	}
	return true
}

func startsWithMatch(aln LinearAlignment) bool {
	for _, op := range aln.Operations {
		if op.Type != Softclip {
			return op.Type == Match
		}
	}
	return false
}

func endsWithMatch(aln LinearAlignment) bool {
	for i := len(aln.Operations) - 1; i >= 0; i-- {
		if op := aln.Operations[i]; op.Type != Softclip {
			return op.Type == Match
		}
	}
	return false
}

// IsLocalAlignment checks whether the first and the last operations
// that are not softclips are matches.
func IsLocalAlignment(ga GraphAlignment) bool {
	if len(ga.alignments) == 0 {
		return false
	}
	return startsWithMatch(ga.alignments[0]) && endsWithMatch(ga.alignments[len(ga.alignments)-1])
}

func splitGraphCigar(graphCigar string) (nodeCigars []string, err error) {
	start := 0
	for i := 0; i < len(graphCigar); i++ {
		if graphCigar[i] == ']' {
			nodeCigars = append(nodeCigars, graphCigar[start:i+1])
			start = i + 1
		}
	}
	if start != len(graphCigar) {
		return nil, &MalformedCigarError{Cigar: graphCigar, Reason: "unterminated node CIGAR"}
	}
	if len(nodeCigars) == 0 {
		return nil, &MalformedCigarError{Cigar: graphCigar, Reason: "no node CIGAR"}
	}
	return nodeCigars, nil
}

func splitNodeCigar(nodeCigar string) (id graph.NodeID, cigar string, err error) {
	for i := 0; i < len(nodeCigar); i++ {
		if nodeCigar[i] == '[' {
			if i == 0 {
				return 0, "", &MalformedCigarError{Cigar: nodeCigar, Reason: "missing node identifier"}
			}
			n, nerr := strconv.Atoi(nodeCigar[:i])
			if nerr != nil {
				return 0, "", &MalformedCigarError{Cigar: nodeCigar, Reason: nerr.Error()}
			}
			return graph.NodeID(n), nodeCigar[i+1 : len(nodeCigar)-1], nil
		}
		if !isDigit(nodeCigar[i]) {
			return 0, "", &MalformedCigarError{Cigar: nodeCigar, Reason: "malformed node identifier"}
		}
	}
	return 0, "", &MalformedCigarError{Cigar: nodeCigar, Reason: "missing ["}
}

// DecodeGraphAlignment creates a graph alignment from its start
// position on the first node and its graph CIGAR string, for example
// 0[2M]1[3M]1[3M]2[2M].
func DecodeGraphAlignment(firstNodeStart int, graphCigar string, g *graph.Graph) (GraphAlignment, error) {
	nodeCigars, err := splitGraphCigar(graphCigar)
	if err != nil {
		return GraphAlignment{}, err
	}
	nodes := make([]graph.NodeID, 0, len(nodeCigars))
	alignments := make([]LinearAlignment, 0, len(nodeCigars))
	for _, nodeCigar := range nodeCigars {
		referenceStart := 0
		if len(alignments) == 0 {
			referenceStart = firstNodeStart
		}
		id, cigar, err := splitNodeCigar(nodeCigar)
		if err != nil {
			return GraphAlignment{}, err
		}
		aln, err := ParseLinearAlignment(referenceStart, cigar)
		if err != nil {
			return GraphAlignment{}, err
		}
		nodes = append(nodes, id)
		alignments = append(alignments, aln)
	}
	path, err := graph.NewPath(g, firstNodeStart, nodes, alignments[len(alignments)-1].ReferenceEnd())
	if err != nil {
		return GraphAlignment{}, err
	}
	ga := GraphAlignment{path: path, alignments: alignments}
	if err := ga.checkValidity(); err != nil {
		return GraphAlignment{}, err
	}
	return ga, nil
}

// MustDecodeGraphAlignment is like DecodeGraphAlignment, but panics
// if the alignment cannot be decoded.
func MustDecodeGraphAlignment(firstNodeStart int, graphCigar string, g *graph.Graph) GraphAlignment {
	ga, err := DecodeGraphAlignment(firstNodeStart, graphCigar, g)
	if err != nil {
		log.Panic(err)
	}
	return ga
}

/*
ProjectAlignmentOntoGraph turns a linear alignment against the
sequence of a path into a graph alignment. The path is first shrunk
to the part of the reference that the alignment covers, and the
alignment is then split at the node boundaries of the path.
*/
func ProjectAlignmentOntoGraph(aln LinearAlignment, path graph.Path) (GraphAlignment, error) {
	if err := path.ShrinkBy(aln.ReferenceStart, path.Length()-aln.ReferenceEnd()); err != nil {
		return GraphAlignment{}, err
	}
	aln = aln.clone()
	aln.ReferenceStart = 0
	alignments := make([]LinearAlignment, 0, path.NumNodes())
	for index := 0; index < path.NumNodes(); index++ {
		overlap := path.NodeOverlapLength(index)
		if aln.ReferenceEnd() <= overlap {
			alignments = append(alignments, aln)
			break
		}
		suffix, err := aln.SplitAtReferencePosition(overlap)
		if err != nil {
			return GraphAlignment{}, err
		}
		alignments = append(alignments, aln)
		aln = suffix
		aln.ReferenceStart = 0
	}
	alignments[0].ReferenceStart = path.Start()
	ga := GraphAlignment{path: path, alignments: alignments}
	if err := ga.checkValidity(); err != nil {
		return GraphAlignment{}, err
	}
	return ga, nil
}

// QuerySequencesForEachNode splits the query into the pieces aligned
// to each node.
func QuerySequencesForEachNode(ga GraphAlignment, query string) []string {
	pieces := make([]string, 0, len(ga.alignments))
	queryPos := 0
	for _, aln := range ga.alignments {
		pieces = append(pieces, query[queryPos:queryPos+aln.QueryLength()])
		queryPos += aln.QueryLength()
	}
	return pieces
}

// PrettyPrintGraphAlignment renders the alignment like PrettyPrint,
// with the pieces for consecutive nodes separated by colons.
func PrettyPrintGraphAlignment(ga GraphAlignment, query string) string {
	var lines [3][]string
	g := ga.path.Graph()
	for index, nodeQuery := range QuerySequencesForEachNode(ga, query) {
		encoding := PrettyPrint(ga.alignments[index], g.NodeSeq(ga.path.NodeID(index)), nodeQuery)
		for i, line := range strings.SplitN(encoding, "\n", 3) {
			lines[i] = append(lines[i], line)
		}
	}
	return strings.Join(lines[0], ":") + "\n" + strings.Join(lines[1], ":") + "\n" + strings.Join(lines[2], ":")
}

// ExtendWithSoftclip adds softclips of the given lengths to the start
// and the end of the alignment.
func ExtendWithSoftclip(ga GraphAlignment, leftSoftclipLength, rightSoftclipLength int) (GraphAlignment, error) {
	alignments := append([]LinearAlignment(nil), ga.alignments...)
	if leftSoftclipLength != 0 {
		first := alignments[0]
		merged, err := MergeAlignments(softclip(first.ReferenceStart, leftSoftclipLength), first)
		if err != nil {
			return GraphAlignment{}, err
		}
		alignments[0] = merged
	}
	if rightSoftclipLength != 0 {
		last := alignments[len(alignments)-1]
		merged, err := MergeAlignments(last, softclip(last.ReferenceEnd(), rightSoftclipLength))
		if err != nil {
			return GraphAlignment{}, err
		}
		alignments[len(alignments)-1] = merged
	}
	return GraphAlignment{path: ga.path, alignments: alignments}, nil
}

// NumNonrepeatMatchesUpstream counts the matches before the first
// visit of the given repeat node.
func NumNonrepeatMatchesUpstream(id graph.NodeID, ga GraphAlignment) (numMatches int) {
	indexes := ga.IndexesOfNode(id)
	if len(indexes) == 0 {
		return 0
	}
	for index := 0; index < indexes[0]; index++ {
		numMatches += ga.alignments[index].NumMatched()
	}
	return numMatches
}

// NumNonrepeatMatchesDownstream counts the matches after the last
// visit of the given repeat node.
func NumNonrepeatMatchesDownstream(id graph.NodeID, ga GraphAlignment) (numMatches int) {
	indexes := ga.IndexesOfNode(id)
	if len(indexes) == 0 {
		return 0
	}
	for index := indexes[len(indexes)-1] + 1; index < len(ga.alignments); index++ {
		numMatches += ga.alignments[index].NumMatched()
	}
	return numMatches
}

// ScoreAlignmentToNonloopNodes scores the parts of the alignment on
// nodes without a self-loop.
func ScoreAlignmentToNonloopNodes(ga GraphAlignment, matchScore, mismatchScore, gapScore int) (score int) {
	g := ga.path.Graph()
	for index, aln := range ga.alignments {
		if !g.IsLoop(ga.path.NodeID(index)) {
			score += ScoreAlignment(aln, matchScore, mismatchScore, gapScore)
		}
	}
	return score
}

// CountFullOverlaps counts the visits of the given node that cover the
// whole node sequence.
func CountFullOverlaps(id graph.NodeID, ga GraphAlignment) (count int) {
	nodeLength := ga.path.Graph().NodeLength(id)
	for _, index := range ga.IndexesOfNode(id) {
		if ga.alignments[index].ReferenceLength() == nodeLength {
			count++
		}
	}
	return count
}
