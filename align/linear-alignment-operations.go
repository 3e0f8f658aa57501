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
	"strings"
)

// CheckConsistency checks whether the alignment correctly describes
// how the whole query aligns to the given reference.
func CheckConsistency(aln LinearAlignment, reference, query string) bool {
	if aln.QueryLength() != len(query) || aln.ReferenceEnd() > len(reference) {
		return false
	}
	queryPos, referencePos := 0, aln.ReferenceStart
	for _, op := range aln.Operations {
		queryPiece := query[queryPos : queryPos+op.QueryLength()]
		referencePiece := reference[referencePos : referencePos+op.ReferenceLength()]
		if !op.CheckConsistency(referencePiece, queryPiece) {
			return false
		}
		queryPos += op.QueryLength()
		referencePos += op.ReferenceLength()
	}
	return true
}

type sequencePieces struct {
	reference, query string
}

func sequencesForEachOperation(aln LinearAlignment, reference, query string) []sequencePieces {
	pieces := make([]sequencePieces, 0, len(aln.Operations))
	queryPos, referencePos := 0, aln.ReferenceStart
	for _, op := range aln.Operations {
		pieces = append(pieces, sequencePieces{
			reference: reference[referencePos : referencePos+op.ReferenceLength()],
			query:     query[queryPos : queryPos+op.QueryLength()],
		})
		queryPos += op.QueryLength()
		referencePos += op.ReferenceLength()
	}
	return pieces
}

/*
CheckIfBookended checks whether the second alignment starts right
where the first one ends on the reference.

An alignment that ends with a softclip can only be followed by an
alignment consisting of a single softclip, and an alignment that
starts with a softclip can only follow such an alignment, unless the
other one is itself a single softclip.
*/
func CheckIfBookended(first, second LinearAlignment) bool {
	if len(first.Operations) == 0 || len(second.Operations) == 0 {
		return false
	}
	if first.ReferenceEnd() != second.ReferenceStart {
		return false
	}
	firstEndsWithSoftclip := first.Operations[len(first.Operations)-1].Type == Softclip
	secondStartsWithSoftclip := second.Operations[0].Type == Softclip
	if firstEndsWithSoftclip || secondStartsWithSoftclip {
		firstFullyClipped := len(first.Operations) == 1 && firstEndsWithSoftclip
		secondFullyClipped := len(second.Operations) == 1 && secondStartsWithSoftclip
		return firstFullyClipped || secondFullyClipped
	}
	return true
}

// MergeAlignments joins two bookended alignments, fusing the
// operations at the junction if they have the same type.
func MergeAlignments(first, second LinearAlignment) (LinearAlignment, error) {
	if !CheckIfBookended(first, second) {
		return LinearAlignment{}, fmt.Errorf("alignments %v and %v are not bookended", first, second)
	}
	operations := make([]Operation, 0, len(first.Operations)+len(second.Operations))
	operations = append(operations, first.Operations...)
	secondOperations := second.Operations
	if last := operations[len(operations)-1]; last.Type == secondOperations[0].Type {
		operations[len(operations)-1] = Operation{last.Type, last.Length + secondOperations[0].Length}
		secondOperations = secondOperations[1:]
	}
	operations = append(operations, secondOperations...)
	return LinearAlignment{ReferenceStart: first.ReferenceStart, Operations: operations}, nil
}

// ScoreAlignment scores an alignment with a linear gap model.
// Softclips and missing bases do not contribute to the score.
func ScoreAlignment(aln LinearAlignment, matchScore, mismatchScore, gapScore int) (score int) {
	for _, op := range aln.Operations {
		switch op.Type {
		case Match:
			score += matchScore * op.ReferenceLength()
		case Mismatch:
			score += mismatchScore * op.ReferenceLength()
		case Insertion:
			score += gapScore * op.QueryLength()
		case Deletion:
			score += gapScore * op.ReferenceLength()
		}
	}
	return score
}

// PrettyPrint renders the alignment on three lines: the reference, a
// match pattern, and the query.
func PrettyPrint(aln LinearAlignment, reference, query string) string {
	var referenceEncoding, matchPattern, queryEncoding strings.Builder
	pieces := sequencesForEachOperation(aln, reference, query)
	for i, op := range aln.Operations {
		piece := pieces[i]
		switch op.Type {
		case Deletion:
			referenceEncoding.WriteString(piece.reference)
			matchPattern.WriteString(strings.Repeat(" ", op.ReferenceLength()))
			queryEncoding.WriteString(strings.Repeat("-", op.ReferenceLength()))
		case Insertion, Softclip:
			referenceEncoding.WriteString(strings.Repeat("-", op.QueryLength()))
			matchPattern.WriteString(strings.Repeat(" ", op.QueryLength()))
			queryEncoding.WriteString(piece.query)
		case Match:
			referenceEncoding.WriteString(piece.reference)
			matchPattern.WriteString(strings.Repeat("|", op.QueryLength()))
			queryEncoding.WriteString(piece.query)
		case Mismatch, MissingBases:
			referenceEncoding.WriteString(piece.reference)
			matchPattern.WriteString(strings.Repeat(" ", op.QueryLength()))
			queryEncoding.WriteString(piece.query)
		}
	}
	return referenceEncoding.String() + "\n" + matchPattern.String() + "\n" + queryEncoding.String()
}
