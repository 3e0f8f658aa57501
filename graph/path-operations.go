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
	"fmt"
	"log"

	"github.com/exascience/strgraph/utils"
)

func mustModify(err error) {
	if err != nil {
		log.Panic(err)
	}
}

func extendPathStart(path Path, extensionLen int, clamp bool) (extended []Path) {
	if extensionLen <= path.start {
		mustModify(path.ShiftStartAlongNode(extensionLen))
		return []Path{path}
	}
	preds := path.graph.Predecessors(path.FirstNodeID())
	if clamp && len(preds) == 0 {
		mustModify(path.ShiftStartAlongNode(path.start))
		return []Path{path}
	}
	leftover := extensionLen - path.start
	for _, pred := range preds {
		withPred := path
		mustModify(withPred.ExtendStartToNode(pred))
		extended = append(extended, extendPathStart(withPred, leftover, clamp)...)
	}
	return extended
}

func extendPathEnd(path Path, extensionLen int, clamp bool) (extended []Path) {
	lastNode := path.LastNodeID()
	maxExtensionAtEndNode := path.graph.NodeLength(lastNode) - path.end
	if extensionLen <= maxExtensionAtEndNode {
		mustModify(path.ShiftEndAlongNode(extensionLen))
		return []Path{path}
	}
	succs := path.graph.Successors(lastNode)
	if clamp && len(succs) == 0 {
		mustModify(path.ShiftEndAlongNode(maxExtensionAtEndNode))
		return []Path{path}
	}
	leftover := extensionLen - maxExtensionAtEndNode
	for _, succ := range succs {
		withSucc := path
		mustModify(withSucc.ExtendEndToNode(succ))
		extended = append(extended, extendPathEnd(withSucc, leftover, clamp)...)
	}
	return extended
}

// ExtendPathStart returns all paths obtained by extending the start of
// the given path by exactly extensionLen bases. Branches that reach a
// node without predecessors are dropped.
func ExtendPathStart(path Path, extensionLen int) []Path {
	return extendPathStart(path, extensionLen, false)
}

// ExtendPathEnd returns all paths obtained by extending the end of the
// given path by exactly extensionLen bases. Branches that reach a node
// without successors are dropped.
func ExtendPathEnd(path Path, extensionLen int) []Path {
	return extendPathEnd(path, extensionLen, false)
}

// ExtendPathStartUpTo is like ExtendPathStart, except that a branch
// that reaches a node without predecessors is kept, extended to the
// start of that node.
func ExtendPathStartUpTo(path Path, extensionLen int) []Path {
	return extendPathStart(path, extensionLen, true)
}

// ExtendPathEndUpTo is like ExtendPathEnd, except that a branch that
// reaches a node without successors is kept, extended to the end of
// that node.
func ExtendPathEndUpTo(path Path, extensionLen int) []Path {
	return extendPathEnd(path, extensionLen, true)
}

// ExtendPath extends both ends of the given path in all possible ways.
func ExtendPath(path Path, startExtensionLen, endExtensionLen int) (extended []Path) {
	for _, withStart := range ExtendPathStart(path, startExtensionLen) {
		extended = append(extended, ExtendPathEnd(withStart, endExtensionLen)...)
	}
	return extended
}

/*
ExtendPathEndMatching extends the end of the path for as long as it
matches the query, where queryPos is the position of the start of the
path on the query.

At the end of a node, the walk continues on the successor that
matches the longest stretch of the query, comparing at most as many
bases as the shortest successor has. The walk stops when no successor
matches or when the longest match is not unique.
*/
func ExtendPathEndMatching(path Path, query string, queryPos int) Path {
	g := path.graph
	posInQuery := queryPos + path.Length()
	nodeInGraph := path.LastNodeID()
	posInNode := path.end
	nodes := append([]NodeID(nil), path.nodes...)

	for moved := true; moved; {
		moved = false
		nodeSeq := g.NodeSeq(nodeInGraph)
		for posInQuery < len(query) && posInNode < len(nodeSeq) &&
			utils.CheckIfReferenceBaseMatchesQueryBase(nodeSeq[posInNode], query[posInQuery]) {
			moved = true
			posInNode++
			posInQuery++
		}
		if posInNode < len(nodeSeq) {
			continue
		}
		successors := g.Successors(nodeInGraph)
		minSize := -1
		for _, succ := range successors {
			if l := g.NodeLength(succ); minSize < 0 || l < minSize {
				minSize = l
			}
		}
		numLongest, longest := 0, 0
		var best NodeID
		for _, succ := range successors {
			succSeq := g.NodeSeq(succ)
			pos := 0
			for pos < minSize && posInQuery+pos < len(query) &&
				utils.CheckIfReferenceBaseMatchesQueryBase(succSeq[pos], query[posInQuery+pos]) {
				pos++
			}
			if pos > longest {
				longest, best, numLongest = pos, succ, 1
			} else if pos == longest {
				numLongest++
			}
		}
		if longest == 0 || numLongest != 1 {
			break
		}
		nodes = append(nodes, best)
		posInQuery += longest
		posInNode = longest
		nodeInGraph = best
		moved = true
	}
	return Path{graph: g, start: path.start, nodes: nodes, end: posInNode}
}

// ExtendPathStartMatching is the mirror image of ExtendPathEndMatching.
// It returns the extended path and its new start position on the query.
func ExtendPathStartMatching(path Path, query string, queryPos int) (Path, int) {
	g := path.graph
	posInQuery := queryPos
	nodeInGraph := path.FirstNodeID()
	posInNode := path.start
	nodes := append([]NodeID(nil), path.nodes...)

	for moved := true; moved; {
		moved = false
		nodeSeq := g.NodeSeq(nodeInGraph)
		for posInQuery > 0 && posInNode > 0 &&
			utils.CheckIfReferenceBaseMatchesQueryBase(nodeSeq[posInNode-1], query[posInQuery-1]) {
			moved = true
			posInNode--
			posInQuery--
		}
		if posInNode != 0 {
			continue
		}
		predecessors := g.Predecessors(nodeInGraph)
		minSize := -1
		for _, pred := range predecessors {
			if l := g.NodeLength(pred); minSize < 0 || l < minSize {
				minSize = l
			}
		}
		numLongest, longest := 0, 0
		var best NodeID
		for _, pred := range predecessors {
			predSeq := g.NodeSeq(pred)
			matchLen := 0
			for matchLen < minSize && posInQuery-matchLen > 0 &&
				utils.CheckIfReferenceBaseMatchesQueryBase(predSeq[len(predSeq)-matchLen-1], query[posInQuery-matchLen-1]) {
				matchLen++
			}
			if matchLen > longest {
				longest, best, numLongest = matchLen, pred, 1
			} else if matchLen == longest {
				numLongest++
			}
		}
		if longest == 0 || numLongest != 1 {
			break
		}
		nodes = prependNode(best, nodes)
		posInQuery -= longest
		nodeInGraph = best
		posInNode = g.NodeLength(best) - longest
		moved = true
	}
	return Path{graph: g, start: posInNode, nodes: nodes, end: path.end}, posInQuery
}

// ExtendPathMatching extends the path in both directions for as long as
// it matches the query. It returns the extended path and its new start
// position on the query.
func ExtendPathMatching(path Path, query string, queryPos int) (Path, int) {
	return ExtendPathStartMatching(ExtendPathEndMatching(path, query, queryPos), query, queryPos)
}

// CheckIfBookended checks whether the second path starts exactly where
// the first path ends, either on the same node or at the beginning of
// a successor of the first path's last node.
func CheckIfBookended(first, second Path) bool {
	firstEnd, secondStart := first.LastNodeID(), second.FirstNodeID()
	if firstEnd == secondStart && first.end == second.start {
		return true
	}
	return first.graph.HasEdge(firstEnd, secondStart) &&
		first.end == first.graph.NodeLength(firstEnd) &&
		second.start == 0
}

// ConcatenatePaths joins two bookended paths.
func ConcatenatePaths(first, second Path) (Path, error) {
	if !CheckIfBookended(first, second) {
		return Path{}, &InvalidPathError{
			Path:   first.Encode(),
			Reason: fmt.Sprintf("not bookended with %v", second.Encode()),
		}
	}
	nodes := make([]NodeID, 0, len(first.nodes)+len(second.nodes))
	nodes = append(nodes, first.nodes...)
	if first.LastNodeID() == second.FirstNodeID() && first.end == second.start {
		nodes = append(nodes, second.nodes[1:]...)
	} else {
		nodes = append(nodes, second.nodes...)
	}
	return NewPath(first.graph, first.start, nodes, second.end)
}

// SplitSequenceByPath splits a sequence of the same length as the path
// into the pieces that fall on each node of the path.
func SplitSequenceByPath(path Path, seq string) ([]string, error) {
	if path.Length() != len(seq) {
		return nil, fmt.Errorf("path %v and sequence %v do not have the same length", path.Encode(), seq)
	}
	pieces := make([]string, 0, len(path.nodes))
	pos := 0
	for index := range path.nodes {
		length := path.NodeOverlapLength(index)
		pieces = append(pieces, seq[pos:pos+length])
		pos += length
	}
	return pieces, nil
}

// GenerateSubpathForEachNode returns one single-node path for each node
// visited by the given path.
func GenerateSubpathForEachNode(path Path) []Path {
	subpaths := make([]Path, 0, len(path.nodes))
	for index, id := range path.nodes {
		subpaths = append(subpaths, Path{
			graph: path.graph,
			start: path.StartPositionOnNode(index),
			nodes: []NodeID{id},
			end:   path.EndPositionOnNode(index),
		})
	}
	return subpaths
}
