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

import "log"

/*
GreedyAlignmentIntersector computes the common part of two graph
alignments that may have traversed a repeat loop a different number of
times.

Walking both paths in parallel relies on node identifiers being
assigned in topological order, which graph.Graph.AddEdge enforces.
*/
type GreedyAlignmentIntersector struct {
	first, second GraphAlignment

	startIndexOnFirst, startIndexOnSecond int
	endIndexOnFirst, endIndexOnSecond     int

	intersectionStart, intersectionEnd int
}

// NewGreedyAlignmentIntersector creates an intersector for the given
// alignments. The result of an intersection is expressed in terms of
// the first alignment.
func NewGreedyAlignmentIntersector(first, second GraphAlignment) *GreedyAlignmentIntersector {
	return &GreedyAlignmentIntersector{first: first, second: second}
}

// Intersect returns the first alignment softclipped to the part that
// it shares with the second alignment. It returns false if the
// alignments do not intersect, or if the softclipped alignment would no
// longer start and end with a match.
func (gi *GreedyAlignmentIntersector) Intersect() (GraphAlignment, bool) {
	gi.startIndexOnFirst, gi.startIndexOnSecond = 0, 0
	if !gi.advanceIndexesToCommonNode() {
		return GraphAlignment{}, false
	}
	if gi.commonNodeIsLoop() {
		gi.advanceIndexesToMatchRemainingIterations()
		if gi.endReached(gi.startIndexOnFirst, gi.startIndexOnSecond) {
			return GraphAlignment{}, false
		}
	}
	gi.advanceIndexesToLastCommonNode()
	gi.computeIntersectionEnds()
	if !gi.intersectionIsConsistent() {
		return GraphAlignment{}, false
	}
	return gi.softclipFirstAlignmentToIntersection()
}

func (gi *GreedyAlignmentIntersector) endReached(firstIndex, secondIndex int) bool {
	return firstIndex >= gi.first.Size() || secondIndex >= gi.second.Size()
}

func (gi *GreedyAlignmentIntersector) advanceIndexesToCommonNode() bool {
	for !gi.endReached(gi.startIndexOnFirst, gi.startIndexOnSecond) {
		firstNode := gi.first.NodeID(gi.startIndexOnFirst)
		secondNode := gi.second.NodeID(gi.startIndexOnSecond)
		switch {
		case firstNode < secondNode:
			gi.startIndexOnFirst++
		case secondNode < firstNode:
			gi.startIndexOnSecond++
		default:
			return true
		}
	}
	return false
}

func (gi *GreedyAlignmentIntersector) commonNodeIsLoop() bool {
	return gi.first.Path().Graph().IsLoop(gi.first.NodeID(gi.startIndexOnFirst))
}

// The path with more iterations of the loop skips its extra iterations,
// so that both paths leave the loop at the same index.
func (gi *GreedyAlignmentIntersector) advanceIndexesToMatchRemainingIterations() {
	loopNode := gi.first.NodeID(gi.startIndexOnFirst)
	firstIterations := len(gi.first.IndexesOfNode(loopNode))
	secondIterations := len(gi.second.IndexesOfNode(loopNode))
	switch {
	case firstIterations < secondIterations:
		gi.startIndexOnSecond += secondIterations - firstIterations
	case secondIterations < firstIterations:
		gi.startIndexOnFirst += firstIterations - secondIterations
	}
}

func (gi *GreedyAlignmentIntersector) advanceIndexesToLastCommonNode() {
	gi.endIndexOnFirst, gi.endIndexOnSecond = gi.startIndexOnFirst, gi.startIndexOnSecond
	for !gi.endReached(gi.endIndexOnFirst+1, gi.endIndexOnSecond+1) &&
		gi.first.NodeID(gi.endIndexOnFirst+1) == gi.second.NodeID(gi.endIndexOnSecond+1) {
		gi.endIndexOnFirst++
		gi.endIndexOnSecond++
	}
}

func (gi *GreedyAlignmentIntersector) computeIntersectionEnds() {
	firstPath, secondPath := gi.first.Path(), gi.second.Path()
	gi.intersectionStart = max(
		firstPath.StartPositionOnNode(gi.startIndexOnFirst),
		secondPath.StartPositionOnNode(gi.startIndexOnSecond))
	gi.intersectionEnd = min(
		firstPath.EndPositionOnNode(gi.endIndexOnFirst),
		secondPath.EndPositionOnNode(gi.endIndexOnSecond))
}

func (gi *GreedyAlignmentIntersector) intersectionIsConsistent() bool {
	if gi.startIndexOnFirst == gi.endIndexOnFirst {
		return gi.intersectionStart < gi.intersectionEnd
	}
	return true
}

func (gi *GreedyAlignmentIntersector) softclipFirstAlignmentToIntersection() (GraphAlignment, bool) {
	shrunk := gi.first
	path := gi.first.Path()

	prefixLength := 0
	for index := 0; index < gi.startIndexOnFirst; index++ {
		prefixLength += path.NodeOverlapLength(index)
	}
	prefixLength += gi.intersectionStart - path.StartPositionOnNode(gi.startIndexOnFirst)
	if prefixLength != 0 {
		if err := shrunk.ShrinkStart(prefixLength); err != nil {
			return GraphAlignment{}, false
		}
	}

	suffixLength := 0
	for index := gi.endIndexOnFirst + 1; index < path.NumNodes(); index++ {
		suffixLength += path.NodeOverlapLength(index)
	}
	suffixLength += path.EndPositionOnNode(gi.endIndexOnFirst) - gi.intersectionEnd
	if suffixLength != 0 {
		if err := shrunk.ShrinkEnd(suffixLength); err != nil {
			return GraphAlignment{}, false
		}
	}

	if !IsLocalAlignment(shrunk) {
		return GraphAlignment{}, false
	}
	return shrunk, true
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

/*
ComputeCanonicalAlignment folds a non-empty list of alignments into a
single alignment, by intersecting a running result with each alignment
of the list in turn, starting with the first alignment itself.

If any of the intersections fails, the first alignment of the list is
returned unchanged, and the intersections computed so far are
discarded.
*/
func ComputeCanonicalAlignment(alignments []GraphAlignment) GraphAlignment {
	if len(alignments) == 0 {
		log.Panic("cannot compute the canonical alignment of an empty list of alignments")
	}
	if len(alignments) == 1 {
		return alignments[0]
	}
	canonical := alignments[0]
	for _, aln := range alignments {
		intersection, ok := NewGreedyAlignmentIntersector(canonical, aln).Intersect()
		if !ok {
			// TODO: return the best partial intersection instead.
			return alignments[0]
		}
		canonical = intersection
	}
	return canonical
}
