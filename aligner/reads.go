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

package aligner

import (
	"github.com/exascience/pargo/pipeline"
	"github.com/exascience/strgraph/align"
	"github.com/exascience/strgraph/fasta"
	"github.com/exascience/strgraph/graph"
	"github.com/exascience/strgraph/internal"
	"github.com/exascience/strgraph/kmers"
	"github.com/exascience/strgraph/utils"
)

// AlignedRead is the result of aligning one read. If the read shares
// fewer k-mers with the graph than its reverse complement, the reverse
// complement is aligned instead.
//
// Classes holds, for each alignment, its summary relative to each
// repeat of the graph. Allele holds the repeat-unit counts the read
// supports, and is nil unless the read spans every repeat.
type AlignedRead struct {
	Read                fasta.Read
	ReverseComplemented bool
	Alignments          []align.GraphAlignment
	Classes             [][]StrAlignment
	Allele              []int
	Err                 error
}

// Query returns the sequence that was aligned.
func (read AlignedRead) Query() string {
	if read.ReverseComplemented {
		return utils.ReverseComplement(read.Read.Seq)
	}
	return read.Read.Seq
}

func (aligner *GappedAligner) alignRead(read fasta.Read, classifier *LocusClassifier) (result AlignedRead) {
	result.Read = read
	query := read.Seq
	if !kmers.CheckIfForwardOriented(aligner.kmerIndex, query) {
		query = utils.ReverseComplement(query)
		result.ReverseComplemented = true
	}
	result.Alignments, result.Err = aligner.Align(query)
	if result.Err != nil || classifier == nil {
		return result
	}
	result.Classes = make([][]StrAlignment, len(result.Alignments))
	for i, ga := range result.Alignments {
		result.Classes[i] = classifier.ClassifyAlignment(query, ga)
	}
	result.Allele = SupportedAllele(result.Classes)
	return result
}

/*
AlignReads aligns the reads in parallel, and returns the results in
the order of the reads.

If classifier is not nil, each alignment is classified relative to
the repeats of the graph. If histogram is not nil as well, the allele
of each read that spans every repeat is added to it.
*/
func (aligner *GappedAligner) AlignReads(reads []fasta.Read, classifier *LocusClassifier, histogram *RepeatHistogram) (result []AlignedRead) {
	var p pipeline.Pipeline
	p.Source(reads)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.([]fasta.Read)
			aligned := make([]AlignedRead, len(batch))
			for i, read := range batch {
				aligned[i] = aligner.alignRead(read, classifier)
				if histogram != nil && aligned[i].Allele != nil {
					histogram.Add(aligned[i].Allele)
				}
			}
			return aligned
		})),
		pipeline.StrictOrd(pipeline.Slice(&result)),
	)
	internal.RunPipeline(&p)
	return result
}

// LoopNodes returns the nodes of the graph that have a self-loop, in
// ascending order.
func LoopNodes(g *graph.Graph) (loops []graph.NodeID) {
	for id := graph.NodeID(0); int(id) < g.NumNodes(); id++ {
		if g.IsLoop(id) {
			loops = append(loops, id)
		}
	}
	return loops
}
