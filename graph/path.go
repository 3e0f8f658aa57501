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
	"strconv"
	"strings"
)

/*
Path is a walk through a graph. It starts at a position on its first
node and ends at a position on its last node; positions are offsets
into the node sequences, and an end position is exclusive.

A Path refers to its graph but does not own it: the graph must
outlive all paths created for it, and must not be modified while such
paths exist. Paths are values. Modifiers either succeed or leave the
path unchanged and return an *InvalidPathError.
*/
type Path struct {
	graph *Graph
	start int
	nodes []NodeID
	end   int
}

func encodePath(start int, nodes []NodeID, end int) string {
	var b strings.Builder
	for i, id := range nodes {
		name := strconv.Itoa(int(id))
		if i == 0 {
			b.WriteString("(" + name + "@" + strconv.Itoa(start) + ")")
		}
		if i == len(nodes)-1 {
			b.WriteString("-(" + name + "@" + strconv.Itoa(end) + ")")
		}
		if i != 0 && i != len(nodes)-1 {
			b.WriteString("-(" + name + ")")
		}
	}
	return b.String()
}

func validatePath(g *Graph, start int, nodes []NodeID, end int) string {
	if len(nodes) == 0 {
		return "path is empty"
	}
	for _, id := range nodes {
		if id < 0 || int(id) >= g.NumNodes() {
			return fmt.Sprintf("node %v does not exist", id)
		}
	}
	if start < 0 || start > g.NodeLength(nodes[0]) {
		return "position of first node is invalid"
	}
	if end < 0 || end > g.NodeLength(nodes[len(nodes)-1]) {
		return "position of last node is invalid"
	}
	if len(nodes) == 1 && start > end {
		return "positions are not ordered"
	}
	for i := 1; i < len(nodes); i++ {
		if !g.HasEdge(nodes[i-1], nodes[i]) {
			return "path is not connected"
		}
	}
	return ""
}

// NewPath creates a path, and checks that it is valid.
func NewPath(g *Graph, start int, nodes []NodeID, end int) (Path, error) {
	if reason := validatePath(g, start, nodes, end); reason != "" {
		return Path{}, &InvalidPathError{Path: encodePath(start, nodes, end), Reason: reason}
	}
	return Path{
		graph: g,
		start: start,
		nodes: append([]NodeID(nil), nodes...),
		end:   end,
	}, nil
}

// MustNewPath is like NewPath, but panics if the path is invalid.
func MustNewPath(g *Graph, start int, nodes []NodeID, end int) Path {
	path, err := NewPath(g, start, nodes, end)
	if err != nil {
		log.Panic(err)
	}
	return path
}

func (p *Path) set(start int, nodes []NodeID, end int, action string) error {
	if reason := validatePath(p.graph, start, nodes, end); reason != "" {
		return &InvalidPathError{Path: p.Encode(), Reason: action + ": " + reason}
	}
	p.start, p.nodes, p.end = start, nodes, end
	return nil
}

// Graph returns the graph the path belongs to.
func (p Path) Graph() *Graph {
	return p.graph
}

// Start returns the start position on the first node.
func (p Path) Start() int {
	return p.start
}

// End returns the end position on the last node.
func (p Path) End() int {
	return p.end
}

// NodeIDs returns the nodes of the path. The result must not be modified.
func (p Path) NodeIDs() []NodeID {
	return p.nodes
}

// NumNodes returns the number of nodes in the path, counting
// repeated visits.
func (p Path) NumNodes() int {
	return len(p.nodes)
}

// NodeID returns the node at the given index.
func (p Path) NodeID(index int) NodeID {
	return p.nodes[index]
}

// FirstNodeID returns the first node of the path.
func (p Path) FirstNodeID() NodeID {
	return p.nodes[0]
}

// LastNodeID returns the last node of the path.
func (p Path) LastNodeID() NodeID {
	return p.nodes[len(p.nodes)-1]
}

// Encode returns a textual representation of the form (1@2)-(3)-(4@5).
func (p Path) Encode() string {
	return encodePath(p.start, p.nodes, p.end)
}

func (p Path) String() string {
	return p.Encode()
}

// CheckOverlapWithNode checks whether the path visits the given node.
func (p Path) CheckOverlapWithNode(id NodeID) bool {
	for _, n := range p.nodes {
		if n == id {
			return true
		}
	}
	return false
}

func (p Path) checkIndex(index int) {
	if index < 0 || index >= len(p.nodes) {
		log.Panicf("node index %v is out of bounds for path %v", index, p.Encode())
	}
}

// StartPositionOnNode returns where the path starts on the node at
// the given index.
func (p Path) StartPositionOnNode(index int) int {
	p.checkIndex(index)
	if index == 0 {
		return p.start
	}
	return 0
}

// EndPositionOnNode returns where the path ends on the node at the
// given index.
func (p Path) EndPositionOnNode(index int) int {
	p.checkIndex(index)
	if index == len(p.nodes)-1 {
		return p.end
	}
	return p.graph.NodeLength(p.nodes[index])
}

// NodeOverlapLength returns the number of bases the path covers on
// the node at the given index.
func (p Path) NodeOverlapLength(index int) int {
	p.checkIndex(index)
	isFirst, isLast := index == 0, index == len(p.nodes)-1
	switch {
	case isFirst && isLast:
		return p.end - p.start
	case isFirst:
		return p.graph.NodeLength(p.nodes[index]) - p.start
	case isLast:
		return p.end
	default:
		return p.graph.NodeLength(p.nodes[index])
	}
}

// Length returns the number of bases covered by the path.
func (p Path) Length() (length int) {
	for index := range p.nodes {
		length += p.NodeOverlapLength(index)
	}
	return length
}

// NodeSeq returns the part of the sequence of the node at the given
// index that the path covers.
func (p Path) NodeSeq(index int) string {
	seq := p.graph.NodeSeq(p.nodes[index])
	start := p.StartPositionOnNode(index)
	return seq[start : start+p.NodeOverlapLength(index)]
}

// Seq returns the sequence spelled by the path.
func (p Path) Seq() string {
	var b strings.Builder
	for index := range p.nodes {
		b.WriteString(p.NodeSeq(index))
	}
	return b.String()
}

// DistanceFromPathStart converts a position on a node into a
// position relative to the start of the path.
func (p Path) DistanceFromPathStart(id NodeID, offset int) (int, error) {
	distance := 0
	for index, n := range p.nodes {
		nodeStart := p.StartPositionOnNode(index)
		var nodeEnd int
		if index == len(p.nodes)-1 {
			nodeEnd = p.end
		} else {
			nodeEnd = p.graph.NodeLength(n) - 1
		}
		if n == id && offset >= nodeStart && offset <= nodeEnd {
			return distance + offset - nodeStart, nil
		}
		distance += nodeEnd - nodeStart + 1
	}
	return 0, &NotOnPathError{Node: id, Offset: offset, Path: p.Encode()}
}

func appendNode(nodes []NodeID, id NodeID) []NodeID {
	result := make([]NodeID, len(nodes)+1)
	copy(result, nodes)
	result[len(nodes)] = id
	return result
}

func prependNode(id NodeID, nodes []NodeID) []NodeID {
	result := make([]NodeID, len(nodes)+1)
	result[0] = id
	copy(result[1:], nodes)
	return result
}

// ShiftStartAlongNode moves the start position towards the beginning
// of the first node by the given number of bases. Negative values move
// it towards the end.
func (p *Path) ShiftStartAlongNode(shift int) error {
	return p.set(p.start-shift, p.nodes, p.end, fmt.Sprintf("unable to shift start by %v", shift))
}

// ShiftEndAlongNode moves the end position towards the end of the
// last node by the given number of bases. Negative values move it
// towards the beginning.
func (p *Path) ShiftEndAlongNode(shift int) error {
	return p.set(p.start, p.nodes, p.end+shift, fmt.Sprintf("unable to shift end by %v", shift))
}

// ExtendStartToNode prepends a node, starting at its end.
func (p *Path) ExtendStartToNode(id NodeID) error {
	if id < 0 || int(id) >= p.graph.NumNodes() {
		return &InvalidPathError{Path: p.Encode(), Reason: fmt.Sprintf("node %v does not exist", id)}
	}
	return p.set(p.graph.NodeLength(id), prependNode(id, p.nodes), p.end, fmt.Sprintf("unable to extend start to node %v", id))
}

// ExtendStartToIncludeNode prepends a node, starting at its beginning.
func (p *Path) ExtendStartToIncludeNode(id NodeID) error {
	return p.set(0, prependNode(id, p.nodes), p.end, fmt.Sprintf("unable to extend start to include node %v", id))
}

// ExtendEndToNode appends a node, ending at its beginning.
func (p *Path) ExtendEndToNode(id NodeID) error {
	return p.set(p.start, appendNode(p.nodes, id), 0, fmt.Sprintf("unable to extend end to node %v", id))
}

// ExtendEndToIncludeNode appends a node, ending at its end.
func (p *Path) ExtendEndToIncludeNode(id NodeID) error {
	if id < 0 || int(id) >= p.graph.NumNodes() {
		return &InvalidPathError{Path: p.Encode(), Reason: fmt.Sprintf("node %v does not exist", id)}
	}
	return p.set(p.start, appendNode(p.nodes, id), p.graph.NodeLength(id), fmt.Sprintf("unable to extend end to include node %v", id))
}

// RemoveStartNode removes the first node; the path then starts at the
// beginning of its new first node.
func (p *Path) RemoveStartNode() error {
	if len(p.nodes) < 2 {
		return &InvalidPathError{Path: p.Encode(), Reason: "unable to remove start node: path is empty"}
	}
	return p.set(0, p.nodes[1:], p.end, "unable to remove start node")
}

// RemoveEndNode removes the last node; the path then ends at the end
// of its new last node.
func (p *Path) RemoveEndNode() error {
	if len(p.nodes) < 2 {
		return &InvalidPathError{Path: p.Encode(), Reason: "unable to remove end node: path is empty"}
	}
	nodes := p.nodes[:len(p.nodes)-1]
	return p.set(p.start, nodes, p.graph.NodeLength(nodes[len(nodes)-1]), "unable to remove end node")
}

// RemoveZeroLengthStart removes the first node if the path does not
// cover any of its bases, unless it is the only node.
func (p *Path) RemoveZeroLengthStart() error {
	if len(p.nodes) > 1 && p.NodeOverlapLength(0) == 0 {
		return p.RemoveStartNode()
	}
	return nil
}

// RemoveZeroLengthEnd removes the last node if the path does not
// cover any of its bases, unless it is the only node.
func (p *Path) RemoveZeroLengthEnd() error {
	if len(p.nodes) > 1 && p.NodeOverlapLength(len(p.nodes)-1) == 0 {
		return p.RemoveEndNode()
	}
	return nil
}

// ShrinkStartBy removes the given number of bases from the start of
// the path, dropping nodes that are no longer covered.
func (p *Path) ShrinkStartBy(shrinkLen int) error {
	action := fmt.Sprintf("unable to shrink start by %v", shrinkLen)
	start, nodes := p.start, p.nodes
	for {
		var nodeLenLeft int
		if len(nodes) == 1 {
			nodeLenLeft = p.end - start
		} else {
			nodeLenLeft = p.graph.NodeLength(nodes[0]) - start
		}
		if shrinkLen <= nodeLenLeft {
			start += shrinkLen
			break
		}
		if len(nodes) == 1 {
			return &InvalidPathError{Path: p.Encode(), Reason: action + ": path is empty"}
		}
		shrinkLen -= nodeLenLeft
		start, nodes = 0, nodes[1:]
	}
	if len(nodes) > 1 && start == p.graph.NodeLength(nodes[0]) {
		start, nodes = 0, nodes[1:]
	}
	return p.set(start, nodes, p.end, action)
}

// ShrinkEndBy removes the given number of bases from the end of the
// path, dropping nodes that are no longer covered.
func (p *Path) ShrinkEndBy(shrinkLen int) error {
	action := fmt.Sprintf("unable to shrink end by %v", shrinkLen)
	nodes, end := p.nodes, p.end
	for shrinkLen > end {
		if len(nodes) == 1 {
			return &InvalidPathError{Path: p.Encode(), Reason: action + ": path is empty"}
		}
		shrinkLen -= end
		nodes = nodes[:len(nodes)-1]
		end = p.graph.NodeLength(nodes[len(nodes)-1])
	}
	end -= shrinkLen
	if len(nodes) > 1 && end == 0 {
		nodes = nodes[:len(nodes)-1]
		end = p.graph.NodeLength(nodes[len(nodes)-1])
	}
	return p.set(p.start, nodes, end, action)
}

// ShrinkBy shrinks the start and then the end of the path.
func (p *Path) ShrinkBy(startShrinkLen, endShrinkLen int) error {
	q := *p
	if err := q.ShrinkStartBy(startShrinkLen); err != nil {
		return err
	}
	if err := q.ShrinkEndBy(endShrinkLen); err != nil {
		return err
	}
	*p = q
	return nil
}

// Compare orders paths by start position, then by their nodes, and
// then by end position. The graphs of the paths are not compared.
func (p Path) Compare(q Path) int {
	switch {
	case p.start < q.start:
		return -1
	case p.start > q.start:
		return 1
	}
	for i := 0; i < len(p.nodes) && i < len(q.nodes); i++ {
		switch {
		case p.nodes[i] < q.nodes[i]:
			return -1
		case p.nodes[i] > q.nodes[i]:
			return 1
		}
	}
	switch {
	case len(p.nodes) < len(q.nodes):
		return -1
	case len(p.nodes) > len(q.nodes):
		return 1
	case p.end < q.end:
		return -1
	case p.end > q.end:
		return 1
	}
	return 0
}

// Less reports whether p orders before q.
func (p Path) Less(q Path) bool {
	return p.Compare(q) < 0
}

// Equal reports whether both paths belong to the same graph and have
// the same positions and nodes.
func (p Path) Equal(q Path) bool {
	return p.graph == q.graph && p.Compare(q) == 0
}
