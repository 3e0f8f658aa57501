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
	"log"
	"strings"
)

// LinearAlignment aligns a query sequence to a reference sequence,
// starting at a given position on the reference.
type LinearAlignment struct {
	ReferenceStart int
	Operations     []Operation
}

// NewLinearAlignment creates an alignment from a copy of the given
// operations.
func NewLinearAlignment(referenceStart int, operations []Operation) LinearAlignment {
	return LinearAlignment{
		ReferenceStart: referenceStart,
		Operations:     append([]Operation(nil), operations...),
	}
}

// ParseLinearAlignment creates an alignment from a CIGAR string.
func ParseLinearAlignment(referenceStart int, cigar string) (LinearAlignment, error) {
	operations, err := ScanCigarString(cigar)
	if err != nil {
		return LinearAlignment{}, err
	}
	return NewLinearAlignment(referenceStart, operations), nil
}

// MustParseLinearAlignment is like ParseLinearAlignment, but panics
// if the CIGAR string is malformed.
func MustParseLinearAlignment(referenceStart int, cigar string) LinearAlignment {
	aln, err := ParseLinearAlignment(referenceStart, cigar)
	if err != nil {
		log.Panic(err)
	}
	return aln
}

func (aln LinearAlignment) clone() LinearAlignment {
	return NewLinearAlignment(aln.ReferenceStart, aln.Operations)
}

// QueryLength returns the number of query bases the alignment spans.
func (aln LinearAlignment) QueryLength() (length int) {
	for _, op := range aln.Operations {
		length += op.QueryLength()
	}
	return length
}

// ReferenceLength returns the number of reference bases the alignment
// spans.
func (aln LinearAlignment) ReferenceLength() (length int) {
	for _, op := range aln.Operations {
		length += op.ReferenceLength()
	}
	return length
}

// ReferenceEnd returns the reference position right after the
// alignment.
func (aln LinearAlignment) ReferenceEnd() int {
	return aln.ReferenceStart + aln.ReferenceLength()
}

func (aln LinearAlignment) count(t OperationType) (n int) {
	for _, op := range aln.Operations {
		if op.Type == t {
			n += op.Length
		}
	}
	return n
}

func (aln LinearAlignment) NumMatched() int    { return aln.count(Match) }
func (aln LinearAlignment) NumMismatched() int { return aln.count(Mismatch) }
func (aln LinearAlignment) NumClipped() int    { return aln.count(Softclip) }
func (aln LinearAlignment) NumInserted() int   { return aln.count(Insertion) }
func (aln LinearAlignment) NumDeleted() int    { return aln.count(Deletion) }
func (aln LinearAlignment) NumMissing() int    { return aln.count(MissingBases) }

// Cigar returns the CIGAR string of the alignment.
func (aln LinearAlignment) Cigar() string {
	var b strings.Builder
	for _, op := range aln.Operations {
		b.WriteString(op.String())
	}
	return b.String()
}

func (aln LinearAlignment) String() string {
	return fmt.Sprintf("Ref start: %v, %v", aln.ReferenceStart, aln.Cigar())
}

/*
SplitAtReferencePosition splits the alignment at the given reference
position. The receiver keeps the part before the position, and the
part starting at the position is returned.

Operations that do not consume reference bases and occur right at the
split position stay with the first part.
*/
func (aln *LinearAlignment) SplitAtReferencePosition(position int) (suffix LinearAlignment, err error) {
	if position <= 0 || aln.ReferenceEnd() <= position {
		return suffix, fmt.Errorf("cannot split %v at reference position %v", aln, position)
	}
	firstUnusedPosition := aln.ReferenceStart
	index := 0
	for ; index < len(aln.Operations); index++ {
		next := firstUnusedPosition + aln.Operations[index].ReferenceLength()
		if next > position {
			break
		}
		firstUnusedPosition = next
	}
	if firstUnusedPosition == position {
		suffix = NewLinearAlignment(position, aln.Operations[index:])
		aln.Operations = append([]Operation(nil), aln.Operations[:index]...)
		return suffix, nil
	}
	prefixOp, suffixOp, err := aln.Operations[index].SplitByReferenceLength(position - firstUnusedPosition)
	if err != nil {
		return suffix, err
	}
	suffixOps := make([]Operation, 0, len(aln.Operations)-index)
	suffixOps = append(suffixOps, suffixOp)
	suffixOps = append(suffixOps, aln.Operations[index+1:]...)
	prefixOps := make([]Operation, 0, index+1)
	prefixOps = append(prefixOps, aln.Operations[:index]...)
	prefixOps = append(prefixOps, prefixOp)
	aln.Operations = prefixOps
	return LinearAlignment{ReferenceStart: position, Operations: suffixOps}, nil
}

// Reverse turns the alignment into the alignment of the reversed query
// against the reversed reference of the given length.
func (aln *LinearAlignment) Reverse(referenceLength int) {
	aln.ReferenceStart = referenceLength - aln.ReferenceStart - aln.ReferenceLength()
	operations := make([]Operation, len(aln.Operations))
	for i, op := range aln.Operations {
		operations[len(operations)-1-i] = op
	}
	aln.Operations = operations
}

// Compare orders alignments by reference start, then by their
// operations.
func (aln LinearAlignment) Compare(other LinearAlignment) int {
	switch {
	case aln.ReferenceStart < other.ReferenceStart:
		return -1
	case aln.ReferenceStart > other.ReferenceStart:
		return 1
	}
	for i := 0; i < len(aln.Operations) && i < len(other.Operations); i++ {
		if c := aln.Operations[i].Compare(other.Operations[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(aln.Operations) < len(other.Operations):
		return -1
	case len(aln.Operations) > len(other.Operations):
		return 1
	}
	return 0
}

func (aln LinearAlignment) Less(other LinearAlignment) bool {
	return aln.Compare(other) < 0
}

func (aln LinearAlignment) Equal(other LinearAlignment) bool {
	return aln.Compare(other) == 0
}
