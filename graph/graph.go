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

/*
Package graph implements sequence graphs for short tandem repeat loci,
and paths through such graphs.

Node identifiers are assigned in topological order: every edge goes
from a node to itself or to a node with a larger identifier. AddEdge
enforces this, and code that walks two paths in parallel relies on it.
*/
package graph

import (
	"fmt"
	"sort"

	"github.com/willf/bitset"
)

// NodeID identifies a node in a Graph.
type NodeID int

// Edge is a directed edge between two nodes.
type Edge struct {
	Source, Sink NodeID
}

type node struct {
	name string
	seq  string
}

// Graph is a sequence graph with a fixed number of nodes. A Graph is
// not safe for concurrent modification, but once fully constructed it
// can be shared by any number of goroutines.
type Graph struct {
	Name         string
	nodes        []node
	adjacency    []*bitset.BitSet
	successors   [][]NodeID
	predecessors [][]NodeID
	labels       map[Edge][]string
}

// New allocates a graph with the given number of nodes and no edges.
func New(numNodes int, name string) *Graph {
	g := &Graph{
		Name:         name,
		nodes:        make([]node, numNodes),
		adjacency:    make([]*bitset.BitSet, numNodes),
		successors:   make([][]NodeID, numNodes),
		predecessors: make([][]NodeID, numNodes),
		labels:       make(map[Edge][]string),
	}
	for i := range g.adjacency {
		g.adjacency[i] = bitset.New(uint(numNodes))
	}
	return g
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() (count int) {
	for _, succs := range g.successors {
		count += len(succs)
	}
	return count
}

func (g *Graph) checkNode(id NodeID) error {
	if id < 0 || int(id) >= len(g.nodes) {
		return fmt.Errorf("node %v does not exist in graph %v with %v nodes", id, g.Name, len(g.nodes))
	}
	return nil
}

// NodeSeq returns the sequence of the given node.
func (g *Graph) NodeSeq(id NodeID) string {
	return g.nodes[id].seq
}

// NodeLength returns the length of the sequence of the given node.
func (g *Graph) NodeLength(id NodeID) int {
	return len(g.nodes[id].seq)
}

// SetNodeSeq sets the sequence of the given node. Node sequences
// must not be empty.
func (g *Graph) SetNodeSeq(id NodeID, seq string) error {
	if err := g.checkNode(id); err != nil {
		return err
	}
	if seq == "" {
		return fmt.Errorf("empty sequence for node %v of graph %v", id, g.Name)
	}
	g.nodes[id].seq = seq
	return nil
}

// NodeName returns the name of the given node.
func (g *Graph) NodeName(id NodeID) string {
	return g.nodes[id].name
}

// SetNodeName sets the name of the given node.
func (g *Graph) SetNodeName(id NodeID, name string) error {
	if err := g.checkNode(id); err != nil {
		return err
	}
	g.nodes[id].name = name
	return nil
}

func insertSorted(ids []NodeID, id NodeID) []NodeID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// AddEdge adds an edge from source to sink. Self-loops are allowed,
// but an edge must never go back to a node with a smaller identifier.
func (g *Graph) AddEdge(source, sink NodeID) error {
	if err := g.checkNode(source); err != nil {
		return err
	}
	if err := g.checkNode(sink); err != nil {
		return err
	}
	if source > sink {
		return fmt.Errorf("edge %v->%v of graph %v breaks topological order", source, sink, g.Name)
	}
	if g.HasEdge(source, sink) {
		return fmt.Errorf("edge %v->%v already exists in graph %v", source, sink, g.Name)
	}
	g.adjacency[source].Set(uint(sink))
	g.successors[source] = insertSorted(g.successors[source], sink)
	g.predecessors[sink] = insertSorted(g.predecessors[sink], source)
	return nil
}

// HasEdge checks whether there is an edge from source to sink.
func (g *Graph) HasEdge(source, sink NodeID) bool {
	if source < 0 || int(source) >= len(g.nodes) || sink < 0 {
		return false
	}
	return g.adjacency[source].Test(uint(sink))
}

// IsLoop checks whether the given node has a self-loop.
func (g *Graph) IsLoop(id NodeID) bool {
	return g.HasEdge(id, id)
}

// Successors returns the successors of the given node in ascending
// order. The result must not be modified.
func (g *Graph) Successors(id NodeID) []NodeID {
	return g.successors[id]
}

// Predecessors returns the predecessors of the given node in
// ascending order. The result must not be modified.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	return g.predecessors[id]
}

// AddLabelToEdge attaches a label to an existing edge.
func (g *Graph) AddLabelToEdge(source, sink NodeID, label string) error {
	if !g.HasEdge(source, sink) {
		return fmt.Errorf("cannot label non-existent edge %v->%v of graph %v", source, sink, g.Name)
	}
	edge := Edge{source, sink}
	labels := g.labels[edge]
	i := sort.SearchStrings(labels, label)
	if i < len(labels) && labels[i] == label {
		return nil
	}
	labels = append(labels, "")
	copy(labels[i+1:], labels[i:])
	labels[i] = label
	g.labels[edge] = labels
	return nil
}

// EdgeLabels returns the labels of the given edge in ascending order.
func (g *Graph) EdgeLabels(source, sink NodeID) []string {
	return g.labels[Edge{source, sink}]
}

// AllLabels returns all labels used in the graph in ascending order.
func (g *Graph) AllLabels() []string {
	set := make(map[string]struct{})
	for _, labels := range g.labels {
		for _, label := range labels {
			set[label] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for label := range set {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

func edgeLess(e1, e2 Edge) bool {
	if e1.Source != e2.Source {
		return e1.Source < e2.Source
	}
	return e1.Sink < e2.Sink
}

// EdgesWithLabel returns all edges carrying the given label, ordered
// by source and then sink.
func (g *Graph) EdgesWithLabel(label string) (edges []Edge) {
	for edge, labels := range g.labels {
		i := sort.SearchStrings(labels, label)
		if i < len(labels) && labels[i] == label {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j]) })
	return edges
}

// EraseLabel removes the given label from all edges.
func (g *Graph) EraseLabel(label string) {
	for edge, labels := range g.labels {
		i := sort.SearchStrings(labels, label)
		if i < len(labels) && labels[i] == label {
			labels = append(labels[:i], labels[i+1:]...)
			if len(labels) == 0 {
				delete(g.labels, edge)
			} else {
				g.labels[edge] = labels
			}
		}
	}
}
