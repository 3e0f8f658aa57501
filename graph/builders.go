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

package graph

import (
	"log"
	"math"
)

func mustBuild(err error) {
	if err != nil {
		log.Panic(err)
	}
}

func setNodeSeqs(g *Graph, seqs ...string) {
	for i, seq := range seqs {
		mustBuild(g.SetNodeSeq(NodeID(i), seq))
	}
}

func addEdges(g *Graph, edges ...Edge) {
	for _, edge := range edges {
		mustBuild(g.AddEdge(edge.Source, edge.Sink))
	}
}

// MakeDeletionGraph builds a graph for a deletion between two flanks.
func MakeDeletionGraph(leftFlank, deletion, rightFlank string) *Graph {
	g := New(3, "deletion")
	setNodeSeqs(g, leftFlank, deletion, rightFlank)
	addEdges(g, Edge{0, 1}, Edge{0, 2}, Edge{1, 2})
	return g
}

// MakeSwapGraph builds a graph where the deletion and insertion
// sequences are alternatives between two flanks.
func MakeSwapGraph(leftFlank, deletion, insertion, rightFlank string) *Graph {
	g := New(4, "swap")
	setNodeSeqs(g, leftFlank, deletion, insertion, rightFlank)
	addEdges(g, Edge{0, 1}, Edge{0, 2}, Edge{1, 3}, Edge{2, 3})
	return g
}

// MakeDoubleSwapGraph builds a graph with two consecutive swaps
// separated by a middle sequence.
func MakeDoubleSwapGraph(leftFlank, deletion1, insertion1, middle, deletion2, insertion2, rightFlank string) *Graph {
	g := New(7, "double-swap")
	setNodeSeqs(g, leftFlank, deletion1, insertion1, middle, deletion2, insertion2, rightFlank)
	addEdges(g,
		Edge{0, 1}, Edge{0, 2}, Edge{1, 3}, Edge{2, 3},
		Edge{3, 4}, Edge{3, 5}, Edge{4, 6}, Edge{5, 6})
	return g
}

// MakeLooplessStrGraph builds a repeat graph without a self-loop, by
// unrolling the repeat unit often enough to cover a read of the given
// length.
func MakeLooplessStrGraph(readLength int, leftFlank, repeatUnit, rightFlank string) *Graph {
	numRepeatUnitNodes := int(math.Ceil(float64(readLength) / float64(len(repeatUnit))))
	numNodes := numRepeatUnitNodes + 2
	rightFlankNode := NodeID(numNodes - 1)
	g := New(numNodes, "loopless-str")
	mustBuild(g.SetNodeSeq(0, leftFlank))
	mustBuild(g.SetNodeSeq(rightFlankNode, rightFlank))
	mustBuild(g.AddEdge(0, rightFlankNode))
	for id := NodeID(0); int(id) != numRepeatUnitNodes; id++ {
		mustBuild(g.SetNodeSeq(id+1, repeatUnit))
		mustBuild(g.AddEdge(id, id+1))
		mustBuild(g.AddEdge(id+1, rightFlankNode))
	}
	return g
}

// MakeStrGraph builds the canonical repeat graph: a left flank, a
// repeat unit with a self-loop, and a right flank.
func MakeStrGraph(leftFlank, repeatUnit, rightFlank string) *Graph {
	g := New(3, "str")
	setNodeSeqs(g, leftFlank, repeatUnit, rightFlank)
	addEdges(g, Edge{0, 1}, Edge{0, 2}, Edge{1, 1}, Edge{1, 2})
	return g
}
