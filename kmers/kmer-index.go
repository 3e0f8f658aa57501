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
Package kmers implements k-mer indexes of sequence graphs. A k-mer
index maps every k-mer spelled by a path through a graph to the paths
that spell it, and is used to find seeds for aligning reads.
*/
package kmers

import (
	"sort"
	"strings"

	"github.com/exascience/pargo/parallel"
	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/utils"
	"github.com/willf/bitset"
)

/*
KmerIndex maps k-mers to the graph paths that spell them.

Degenerate reference bases are expanded, so a path through a node
with an ambiguity code is listed under every k-mer it can spell. A
KmerIndex is immutable after construction and can be shared by any
number of goroutines.
*/
type KmerIndex struct {
	kmerLength     int
	kmerToPaths    map[string][]graph.Path
	nodeKmerCounts map[graph.NodeID]int
	edgeKmerCounts map[graph.Edge]int
}

type kmerPath struct {
	kmer string
	path graph.Path
}

func kmerPathsStartingAtNode(g *graph.Graph, id graph.NodeID, kmerLength int) (result []kmerPath) {
	for pos := 0; pos < g.NodeLength(id); pos++ {
		start := graph.MustNewPath(g, pos, []graph.NodeID{id}, pos)
		for _, path := range graph.ExtendPathEnd(start, kmerLength) {
			for _, kmer := range utils.ExpandReferenceSequence(path.Seq()) {
				result = append(result, kmerPath{kmer, path})
			}
		}
	}
	return result
}

// New creates the k-mer index of a graph. Nodes are processed in
// parallel; the paths for each k-mer are listed in node order.
func New(g *graph.Graph, kmerLength int) *KmerIndex {
	perNode := make([][]kmerPath, g.NumNodes())
	parallel.Range(0, g.NumNodes(), 0, func(low, high int) {
		for id := low; id < high; id++ {
			perNode[id] = kmerPathsStartingAtNode(g, graph.NodeID(id), kmerLength)
		}
	})
	index := &KmerIndex{
		kmerLength:  kmerLength,
		kmerToPaths: make(map[string][]graph.Path),
	}
	for _, entries := range perNode {
		for _, entry := range entries {
			index.kmerToPaths[entry.kmer] = append(index.kmerToPaths[entry.kmer], entry.path)
		}
	}
	index.updateKmerCounts()
	return index
}

// NewFromMap creates a k-mer index from an explicit mapping of k-mers
// to paths. The k-mer length is taken from an arbitrary entry.
func NewFromMap(kmerToPaths map[string][]graph.Path) *KmerIndex {
	index := &KmerIndex{kmerToPaths: make(map[string][]graph.Path, len(kmerToPaths))}
	for kmer, paths := range kmerToPaths {
		index.kmerLength = len(kmer)
		index.kmerToPaths[kmer] = append([]graph.Path(nil), paths...)
	}
	index.updateKmerCounts()
	return index
}

// Only unique k-mers are counted. A path that visits a node or an
// edge more than once counts once per visit.
func (index *KmerIndex) updateKmerCounts() {
	index.nodeKmerCounts = make(map[graph.NodeID]int)
	index.edgeKmerCounts = make(map[graph.Edge]int)
	for _, paths := range index.kmerToPaths {
		if len(paths) != 1 {
			continue
		}
		ids := paths[0].NodeIDs()
		for i, id := range ids {
			index.nodeKmerCounts[id]++
			if i > 0 {
				index.edgeKmerCounts[graph.Edge{Source: ids[i-1], Sink: id}]++
			}
		}
	}
}

// KmerLength returns the length of the k-mers in the index.
func (index *KmerIndex) KmerLength() int {
	return index.kmerLength
}

// Contains reports whether the k-mer occurs in the index.
func (index *KmerIndex) Contains(kmer string) bool {
	_, ok := index.kmerToPaths[kmer]
	return ok
}

// NumPaths returns the number of paths that spell the k-mer, which is
// 0 for unknown k-mers.
func (index *KmerIndex) NumPaths(kmer string) int {
	return len(index.kmerToPaths[kmer])
}

// GetPaths returns the paths that spell the k-mer. The result must not
// be modified.
func (index *KmerIndex) GetPaths(kmer string) ([]graph.Path, error) {
	paths, ok := index.kmerToPaths[kmer]
	if !ok {
		return nil, &UnknownKmerError{Kmer: kmer}
	}
	return paths, nil
}

// Kmers returns all k-mers in the index in sorted order.
func (index *KmerIndex) Kmers() []string {
	kmers := make([]string, 0, len(index.kmerToPaths))
	for kmer := range index.kmerToPaths {
		kmers = append(kmers, kmer)
	}
	sort.Strings(kmers)
	return kmers
}

// NumUniqueKmersOverlappingNode returns the number of unique k-mers
// whose path visits the node.
func (index *KmerIndex) NumUniqueKmersOverlappingNode(id graph.NodeID) int {
	return index.nodeKmerCounts[id]
}

// NumUniqueKmersOverlappingEdge returns the number of unique k-mers
// whose path crosses the edge.
func (index *KmerIndex) NumUniqueKmersOverlappingEdge(source, sink graph.NodeID) int {
	return index.edgeKmerCounts[graph.Edge{Source: source, Sink: sink}]
}

// NodesCoveredByUniqueKmers returns the set of nodes visited by at
// least one unique k-mer.
func (index *KmerIndex) NodesCoveredByUniqueKmers(numNodes int) *bitset.BitSet {
	covered := bitset.New(uint(numNodes))
	for id, count := range index.nodeKmerCounts {
		if count > 0 {
			covered.Set(uint(id))
		}
	}
	return covered
}

// Encode returns a textual representation of the index, in the form
// {KMER->path,path},{KMER->path} with k-mers in sorted order.
func (index *KmerIndex) Encode() string {
	var b strings.Builder
	for i, kmer := range index.Kmers() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("{" + kmer + "->")
		for j, path := range index.kmerToPaths[kmer] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(path.Encode())
		}
		b.WriteByte('}')
	}
	return b.String()
}

func (index *KmerIndex) String() string {
	return index.Encode()
}
