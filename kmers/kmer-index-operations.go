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

package kmers

import (
	"strings"

	"github.com/exascience/pargo/parallel"
	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/utils"
)

// Bounds for FindMinCoveringKmerLength.
const (
	MinCoveringKmerLength = 10
	MaxCoveringKmerLength = 63
)

// ExtractKmersFromAllPositions returns the upper-case k-mers starting
// at each position of the sequence.
func ExtractKmersFromAllPositions(seq string, kmerLength int) (kmers []string) {
	for pos := 0; pos+kmerLength <= len(seq); pos++ {
		kmers = append(kmers, strings.ToUpper(seq[pos:pos+kmerLength]))
	}
	return kmers
}

// CountKmerMatches returns the number of k-mers of the sequence that
// occur in the index.
func CountKmerMatches(index *KmerIndex, seq string) (count int) {
	for _, kmer := range ExtractKmersFromAllPositions(seq, index.KmerLength()) {
		if index.NumPaths(kmer) != 0 {
			count++
		}
	}
	return count
}

// CheckIfForwardOriented reports whether the sequence shares at least
// as many k-mers with the index as its reverse complement does.
func CheckIfForwardOriented(index *KmerIndex, seq string) bool {
	return CountKmerMatches(index, seq) >= CountKmerMatches(index, utils.ReverseComplement(seq))
}

func coversGraph(index *KmerIndex, g *graph.Graph, minUniqueKmersPerEdge, minUniqueKmersPerNode int) bool {
	for id := graph.NodeID(0); int(id) < g.NumNodes(); id++ {
		if index.NumUniqueKmersOverlappingNode(id) < minUniqueKmersPerNode {
			return false
		}
		for _, succ := range g.Successors(id) {
			if index.NumUniqueKmersOverlappingEdge(id, succ) < minUniqueKmersPerEdge {
				return false
			}
		}
	}
	return true
}

// FindMinCoveringKmerLength returns the smallest k-mer length between
// MinCoveringKmerLength and MaxCoveringKmerLength for which every node
// and every edge of the graph is visited by the given minimum number
// of unique k-mers. It returns -1 if there is no such length.
//
// The candidate lengths are divided into batches that are checked in
// parallel.
func FindMinCoveringKmerLength(g *graph.Graph, minUniqueKmersPerEdge, minUniqueKmersPerNode int) int {
	return parallel.RangeReduceInt(MinCoveringKmerLength, MaxCoveringKmerLength+1, 0,
		func(low, high int) int {
			for k := low; k < high; k++ {
				if coversGraph(New(g, k), g, minUniqueKmersPerEdge, minUniqueKmersPerNode) {
					return k
				}
			}
			return -1
		},
		func(x, y int) int {
			if x < 0 || (y >= 0 && y < x) {
				return y
			}
			return x
		})
}
