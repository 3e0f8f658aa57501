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
	"fmt"
	"strconv"
	"strings"

	"github.com/exascience/strgraph/graph"
)

/*
GraphAlignment aligns a query to a path through a graph. It consists
of the path and one linear alignment per node of the path, where the
reference of each linear alignment is the sequence of its node.

The linear alignment of each node starts and ends exactly where the
path starts and ends on that node.
*/
type GraphAlignment struct {
	path       graph.Path
	alignments []LinearAlignment
}

// NewGraphAlignment creates a graph alignment from a path and copies
// of the given linear alignments.
func NewGraphAlignment(path graph.Path, alignments []LinearAlignment) (GraphAlignment, error) {
	ga := GraphAlignment{path: path, alignments: make([]LinearAlignment, len(alignments))}
	for i, aln := range alignments {
		ga.alignments[i] = aln.clone()
	}
	if err := ga.checkValidity(); err != nil {
		return GraphAlignment{}, err
	}
	return ga, nil
}

func (ga GraphAlignment) checkValidity() error {
	if len(ga.alignments) != ga.path.NumNodes() {
		return &AlignmentInconsistencyError{
			Alignment: ga.encodeAlignments(),
			Reason:    fmt.Sprintf("%v alignments for path %v", len(ga.alignments), ga.path.Encode()),
		}
	}
	for index, aln := range ga.alignments {
		if ga.path.StartPositionOnNode(index) != aln.ReferenceStart ||
			ga.path.EndPositionOnNode(index) != aln.ReferenceEnd() {
			return &AlignmentInconsistencyError{
				Alignment: ga.encodeAlignments(),
				Reason:    "not compatible with path " + ga.path.Encode(),
			}
		}
	}
	return nil
}

func (ga GraphAlignment) encodeAlignments() string {
	var b strings.Builder
	for index, aln := range ga.alignments {
		if index < ga.path.NumNodes() {
			b.WriteString(strconv.Itoa(int(ga.path.NodeID(index))))
		}
		b.WriteString("[" + aln.String() + "]")
	}
	return b.String()
}

// Path returns the path of the alignment.
func (ga GraphAlignment) Path() graph.Path {
	return ga.path
}

// Alignments returns the linear alignments of the nodes. The result
// must not be modified.
func (ga GraphAlignment) Alignments() []LinearAlignment {
	return ga.alignments
}

// Size returns the number of nodes of the alignment.
func (ga GraphAlignment) Size() int {
	return len(ga.alignments)
}

// Alignment returns the linear alignment to the node at the given index.
func (ga GraphAlignment) Alignment(index int) LinearAlignment {
	return ga.alignments[index]
}

// NodeID returns the node at the given index.
func (ga GraphAlignment) NodeID(index int) graph.NodeID {
	return ga.path.NodeID(index)
}

func (ga GraphAlignment) QueryLength() (length int) {
	for _, aln := range ga.alignments {
		length += aln.QueryLength()
	}
	return length
}

func (ga GraphAlignment) ReferenceLength() (length int) {
	for _, aln := range ga.alignments {
		length += aln.ReferenceLength()
	}
	return length
}

func (ga GraphAlignment) NumMatches() (n int) {
	for _, aln := range ga.alignments {
		n += aln.NumMatched()
	}
	return n
}

// OverlapsNode checks whether the alignment visits the given node.
func (ga GraphAlignment) OverlapsNode(id graph.NodeID) bool {
	return ga.path.CheckOverlapWithNode(id)
}

// IndexesOfNode returns, in path order, the indexes at which the
// alignment visits the given node. For a node with a self-loop, this
// is one index per traversal of the loop.
func (ga GraphAlignment) IndexesOfNode(id graph.NodeID) (indexes []int) {
	for index := range ga.alignments {
		if ga.path.NodeID(index) == id {
			indexes = append(indexes, index)
		}
	}
	return indexes
}

// Cigar returns the graph CIGAR string of the alignment, for example
// 0[2M]1[3M]1[3M]2[2M].
func (ga GraphAlignment) Cigar() string {
	var b strings.Builder
	for index, aln := range ga.alignments {
		b.WriteString(strconv.Itoa(int(ga.path.NodeID(index))))
		b.WriteByte('[')
		b.WriteString(aln.Cigar())
		b.WriteByte(']')
	}
	return b.String()
}

// String returns the start position of the alignment on its first
// node, followed by its graph CIGAR string.
func (ga GraphAlignment) String() string {
	return strconv.Itoa(ga.path.Start()) + ": " + ga.Cigar()
}

// Compare orders graph alignments by path, then by their linear
// alignments.
func (ga GraphAlignment) Compare(other GraphAlignment) int {
	if c := ga.path.Compare(other.path); c != 0 {
		return c
	}
	for i := 0; i < len(ga.alignments) && i < len(other.alignments); i++ {
		if c := ga.alignments[i].Compare(other.alignments[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ga.alignments) < len(other.alignments):
		return -1
	case len(ga.alignments) > len(other.alignments):
		return 1
	}
	return 0
}

func (ga GraphAlignment) Less(other GraphAlignment) bool {
	return ga.Compare(other) < 0
}

// Equal reports whether both alignments have equal paths and equal
// linear alignments.
func (ga GraphAlignment) Equal(other GraphAlignment) bool {
	return ga.path.Equal(other.path) && ga.Compare(other) == 0
}

func softclip(referenceStart, queryLength int) LinearAlignment {
	return LinearAlignment{
		ReferenceStart: referenceStart,
		Operations:     []Operation{{Softclip, queryLength}},
	}
}

/*
ShrinkStart removes the given number of reference bases from the
start of the alignment. The query bases aligned to the removed part
are softclipped on the new first node.

It returns an *InvalidShrinkError if the whole alignment would be
removed.
*/
func (ga *GraphAlignment) ShrinkStart(referenceLength int) error {
	if referenceLength >= ga.ReferenceLength() {
		return &InvalidShrinkError{Alignment: ga.String(), Side: "start", Length: referenceLength}
	}
	path := ga.path
	if err := path.ShrinkStartBy(referenceLength); err != nil {
		return err
	}
	alignments := append([]LinearAlignment(nil), ga.alignments...)
	prefixQueryLength := 0
	leftover := referenceLength
	index := 0
	for leftover >= alignments[index].ReferenceLength() {
		leftover -= alignments[index].ReferenceLength()
		prefixQueryLength += alignments[index].QueryLength()
		index++
	}
	first := alignments[index].clone()
	if leftover != 0 {
		suffix, err := first.SplitAtReferencePosition(first.ReferenceStart + leftover)
		if err != nil {
			return err
		}
		prefixQueryLength += first.QueryLength()
		first = suffix
	}
	if prefixQueryLength != 0 {
		merged, err := MergeAlignments(softclip(first.ReferenceStart, prefixQueryLength), first)
		if err != nil {
			return err
		}
		first = merged
	}
	alignments[index] = first
	shrunk := GraphAlignment{path: path, alignments: alignments[index:]}
	if err := shrunk.checkValidity(); err != nil {
		return err
	}
	*ga = shrunk
	return nil
}

/*
ShrinkEnd removes the given number of reference bases from the end of
the alignment. The query bases aligned to the removed part are
softclipped on the new last node.

It returns an *InvalidShrinkError if the whole alignment would be
removed.
*/
func (ga *GraphAlignment) ShrinkEnd(referenceLength int) error {
	if referenceLength >= ga.ReferenceLength() {
		return &InvalidShrinkError{Alignment: ga.String(), Side: "end", Length: referenceLength}
	}
	path := ga.path
	if err := path.ShrinkEndBy(referenceLength); err != nil {
		return err
	}
	alignments := append([]LinearAlignment(nil), ga.alignments...)
	suffixQueryLength := 0
	leftover := referenceLength
	index := len(alignments) - 1
	for leftover >= alignments[index].ReferenceLength() {
		leftover -= alignments[index].ReferenceLength()
		suffixQueryLength += alignments[index].QueryLength()
		index--
	}
	last := alignments[index].clone()
	if leftover != 0 {
		suffix, err := last.SplitAtReferencePosition(last.ReferenceEnd() - leftover)
		if err != nil {
			return err
		}
		suffixQueryLength += suffix.QueryLength()
	}
	if suffixQueryLength != 0 {
		merged, err := MergeAlignments(last, softclip(last.ReferenceEnd(), suffixQueryLength))
		if err != nil {
			return err
		}
		last = merged
	}
	alignments[index] = last
	shrunk := GraphAlignment{path: path, alignments: alignments[:index+1]}
	if err := shrunk.checkValidity(); err != nil {
		return err
	}
	*ga = shrunk
	return nil
}
