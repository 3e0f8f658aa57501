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
Package aligner implements a seed-and-extend aligner of reads to
sequence graphs.

A seed is found by looking up the k-mers of a read in a k-mer index of
the graph and extending the matching paths along the read. The parts
of the read before and after the seed are then aligned to the paths
that extend the seed by a FlankAligner, and the pieces are stitched
together into graph alignments.
*/
package aligner

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/kmers"
)

// FlankAligner aligns query pieces to the paths that extend a seed
// path. PrefixAlign extends the seed's end, and its alignments start at
// the seed's end. SuffixAlign extends the seed's start, and its
// alignments end at the seed's start. Both return all top-scoring
// alignments.
type FlankAligner interface {
	PrefixAlign(seed graph.Path, query string, extensionLength int) []align.PathAndAlignment
	SuffixAlign(seed graph.Path, query string, extensionLength int) []align.PathAndAlignment
}

// Seed search parameters.
const (
	// MaxSeedPaths is the maximum number of paths of a k-mer that are
	// tried when a read contains no unique k-mer.
	MaxSeedPaths = 10

	// MinSeedLength is the minimal length of a seed that is extended
	// to full alignments, and the length a seed keeps when its ends are
	// trimmed.
	MinSeedLength = 2
)

// GappedAligner aligns reads to a graph. A GappedAligner is read-only
// after construction and can be used by any number of goroutines,
// provided its FlankAligner can.
type GappedAligner struct {
	graph               *graph.Graph
	kmerIndex           *kmers.KmerIndex
	paddingLength       int
	seedAffixTrimLength int
	flankAligner        FlankAligner
}

// New creates an aligner for the given graph, and builds the k-mer
// index it uses for finding seeds.
func New(g *graph.Graph, kmerLength, paddingLength, seedAffixTrimLength int, flankAligner FlankAligner) *GappedAligner {
	return NewWithKmerIndex(g, kmers.New(g, kmerLength), paddingLength, seedAffixTrimLength, flankAligner)
}

// NewWithKmerIndex creates an aligner with a prebuilt k-mer index.
func NewWithKmerIndex(g *graph.Graph, kmerIndex *kmers.KmerIndex, paddingLength, seedAffixTrimLength int, flankAligner FlankAligner) *GappedAligner {
	return &GappedAligner{
		graph:               g,
		kmerIndex:           kmerIndex,
		paddingLength:       paddingLength,
		seedAffixTrimLength: seedAffixTrimLength,
		flankAligner:        flankAligner,
	}
}

// Graph returns the graph of the aligner.
func (aligner *GappedAligner) Graph() *graph.Graph {
	return aligner.graph
}

// KmerIndex returns the k-mer index of the aligner.
func (aligner *GappedAligner) KmerIndex() *kmers.KmerIndex {
	return aligner.kmerIndex
}

type alignmentSeed struct {
	path         graph.Path
	startOnQuery int
}

/*
Align returns the best alignments of the query to the graph, sorted
and without duplicates. The result is empty if no seed for the query
can be found.
*/
func (aligner *GappedAligner) Align(query string) ([]align.GraphAlignment, error) {
	seed, found := aligner.searchForAlignmentSeed(query)
	if !found {
		return nil, nil
	}
	trimSuffixNearNodeEdge(aligner.seedAffixTrimLength, MinSeedLength, &seed.path)
	trimmedPrefix := trimPrefixNearNodeEdge(aligner.seedAffixTrimLength, MinSeedLength, &seed.path)
	alignments, err := aligner.extendSeedToFullAlignments(seed.path, query, seed.startOnQuery+trimmedPrefix)
	if err != nil {
		return nil, fmt.Errorf("unable to align %v: %w", query, err)
	}
	return alignments, nil
}

func (aligner *GappedAligner) searchForAlignmentSeed(query string) (seed alignmentSeed, found bool) {
	upperQuery := strings.ToUpper(query)
	kmerLength := aligner.kmerIndex.KmerLength()
	bestLength := 0
	foundMultipath := false

	for pos := 0; pos+kmerLength <= len(upperQuery); {
		kmer := upperQuery[pos : pos+kmerLength]
		numPaths := aligner.kmerIndex.NumPaths(kmer)
		if numPaths != 1 {
			if numPaths > 1 {
				foundMultipath = true
			}
			pos++
			continue
		}
		paths, _ := aligner.kmerIndex.GetPaths(kmer)
		extended, start := graph.ExtendPathMatching(paths[0], upperQuery, pos)
		if length := extended.Length(); length > bestLength {
			seed, bestLength, found = alignmentSeed{extended, start}, length, true
		}
		pos = start + extended.Length()
	}
	if found || !foundMultipath {
		return seed, found
	}

	for pos := 0; pos+kmerLength <= len(upperQuery); {
		kmer := upperQuery[pos : pos+kmerLength]
		numPaths := aligner.kmerIndex.NumPaths(kmer)
		if numPaths == 0 || numPaths > MaxSeedPaths {
			pos++
			continue
		}
		paths, _ := aligner.kmerIndex.GetPaths(kmer)
		longest, startForLongest := 0, 0
		for _, path := range paths {
			extended, start := graph.ExtendPathMatching(path, upperQuery, pos)
			if length := extended.Length(); length > longest {
				longest, startForLongest = length, start
				if length > bestLength {
					seed, bestLength, found = alignmentSeed{extended, start}, length, true
				}
			}
		}
		pos = startForLongest + longest
	}
	return seed, found
}

func mustShrink(err error) {
	if err != nil {
		log.Panic(err)
	}
}

// trimPrefixNearNodeEdge removes up to requestedLength bases from the
// start of a multi-node path whose first node overlap is at most
// requestedLength, keeping at least minLength bases. It returns the
// number of bases removed.
func trimPrefixNearNodeEdge(requestedLength, minLength int, path *graph.Path) int {
	length := path.Length()
	if path.NumNodes() == 1 || length <= minLength || path.NodeOverlapLength(0) > requestedLength {
		return 0
	}
	trimLength := requestedLength
	if length < requestedLength+minLength {
		trimLength = length - minLength
	}
	mustShrink(path.ShrinkStartBy(trimLength))
	return trimLength
}

// trimSuffixNearNodeEdge is the mirror image of trimPrefixNearNodeEdge.
func trimSuffixNearNodeEdge(requestedLength, minLength int, path *graph.Path) int {
	length := path.Length()
	if path.NumNodes() == 1 || length <= minLength || path.NodeOverlapLength(path.NumNodes()-1) > requestedLength {
		return 0
	}
	trimLength := requestedLength
	if length < requestedLength+minLength {
		trimLength = length - minLength
	}
	mustShrink(path.ShrinkEndBy(trimLength))
	return trimLength
}

func (aligner *GappedAligner) extendAlignmentPrefix(seed graph.Path, queryPiece string, extensionLength int) ([]align.PathAndAlignment, error) {
	extensions := aligner.flankAligner.SuffixAlign(seed, queryPiece, extensionLength)
	for i := range extensions {
		extension := &extensions[i]
		extension.Alignment.ReferenceStart = 0
		overhang := extension.Path.Length() - extension.Alignment.ReferenceLength()
		if err := extension.Path.ShrinkStartBy(overhang); err != nil {
			return nil, err
		}
		if !align.CheckConsistency(extension.Alignment, extension.Path.Seq(), queryPiece) {
			return nil, &align.AlignmentInconsistencyError{
				Alignment: extension.Alignment.String(),
				Reason:    "inconsistent prefix on path " + extension.Path.Encode(),
			}
		}
	}
	return extensions, nil
}

func (aligner *GappedAligner) extendAlignmentSuffix(seed graph.Path, queryPiece string, extensionLength int) ([]align.PathAndAlignment, error) {
	extensions := aligner.flankAligner.PrefixAlign(seed, queryPiece, extensionLength)
	for i := range extensions {
		extension := &extensions[i]
		if !align.CheckConsistency(extension.Alignment, extension.Path.Seq(), queryPiece) {
			return nil, &align.AlignmentInconsistencyError{
				Alignment: extension.Alignment.String(),
				Reason:    "inconsistent suffix on path " + extension.Path.Encode(),
			}
		}
		overhang := extension.Path.Length() - extension.Alignment.ReferenceLength()
		if err := extension.Path.ShrinkEndBy(overhang); err != nil {
			return nil, err
		}
	}
	return extensions, nil
}

// extendSeedToFullAlignments returns no alignments for seeds shorter
// than MinSeedLength.
func (aligner *GappedAligner) extendSeedToFullAlignments(seed graph.Path, query string, seedStartOnQuery int) ([]align.GraphAlignment, error) {
	if seed.Length() < MinSeedLength {
		return nil, nil
	}
	var prefixExtensions []align.PathAndAlignment
	queryPrefixLength := seedStartOnQuery
	if queryPrefixLength != 0 {
		prefixSeed := seed
		mustShrink(prefixSeed.ShrinkEndBy(seed.Length()))
		extensions, err := aligner.extendAlignmentPrefix(prefixSeed, query[:queryPrefixLength], queryPrefixLength+aligner.paddingLength)
		if err != nil {
			return nil, err
		}
		prefixExtensions = extensions
	} else {
		// Empty flanks are represented by one base of the seed.
		queryPrefixLength = 1
		prefixPath := seed
		mustShrink(prefixPath.ShrinkEndBy(seed.Length() - 1))
		prefixExtensions = []align.PathAndAlignment{{Path: prefixPath, Alignment: align.MustParseLinearAlignment(0, "1M")}}
		mustShrink(seed.ShrinkStartBy(1))
	}

	var suffixExtensions []align.PathAndAlignment
	querySuffixLength := len(query) - seed.Length() - queryPrefixLength
	if querySuffixLength != 0 {
		suffixSeed := seed
		mustShrink(suffixSeed.ShrinkStartBy(seed.Length()))
		suffixStart := queryPrefixLength + seed.Length()
		extensions, err := aligner.extendAlignmentSuffix(suffixSeed, query[suffixStart:suffixStart+querySuffixLength], querySuffixLength+aligner.paddingLength)
		if err != nil {
			return nil, err
		}
		suffixExtensions = extensions
	} else {
		suffixPath := seed
		mustShrink(suffixPath.ShrinkStartBy(seed.Length() - 1))
		suffixExtensions = []align.PathAndAlignment{{Path: suffixPath, Alignment: align.MustParseLinearAlignment(0, "1M")}}
		mustShrink(seed.ShrinkEndBy(1))
	}

	var alignments []align.GraphAlignment
	for _, prefix := range prefixExtensions {
		prefixPlusSeedPath, err := graph.ConcatenatePaths(prefix.Path, seed)
		if err != nil {
			return nil, err
		}
		seedAlignment := align.MustParseLinearAlignment(prefix.Alignment.ReferenceLength(), strconv.Itoa(seed.Length())+"M")
		prefixPlusSeedAlignment, err := align.MergeAlignments(prefix.Alignment, seedAlignment)
		if err != nil {
			return nil, err
		}
		for _, suffix := range suffixExtensions {
			fullPath, err := graph.ConcatenatePaths(prefixPlusSeedPath, suffix.Path)
			if err != nil {
				return nil, err
			}
			suffixAlignment := align.NewLinearAlignment(prefixPlusSeedPath.Length(), suffix.Alignment.Operations)
			fullAlignment, err := align.MergeAlignments(prefixPlusSeedAlignment, suffixAlignment)
			if err != nil {
				return nil, err
			}
			ga, err := align.ProjectAlignmentOntoGraph(fullAlignment, fullPath)
			if err != nil {
				return nil, err
			}
			alignments = append(alignments, ga)
		}
	}
	return align.SortAndDeduplicate(alignments), nil
}
