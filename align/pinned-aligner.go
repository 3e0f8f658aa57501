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

import "github.com/exascience/strgraph/utils"

type tracebackStep byte

const (
	stepStop tracebackStep = iota
	stepDiagonalMatch
	stepDiagonalMismatch
	stepLeft
	stepTop
)

type tracebackMatrix struct {
	numRows, numCols int
	scores           []int
	steps            []tracebackStep
}

func newTracebackMatrix(numRows, numCols int) *tracebackMatrix {
	return &tracebackMatrix{
		numRows: numRows,
		numCols: numCols,
		scores:  make([]int, numRows*numCols),
		steps:   make([]tracebackStep, numRows*numCols),
	}
}

func (m *tracebackMatrix) score(row, col int) int {
	return m.scores[row*m.numCols+col]
}

func (m *tracebackMatrix) step(row, col int) tracebackStep {
	return m.steps[row*m.numCols+col]
}

func (m *tracebackMatrix) set(row, col, score int, step tracebackStep) {
	m.scores[row*m.numCols+col] = score
	m.steps[row*m.numCols+col] = step
}

// The last cell with the top score in row-major order wins.
func (m *tracebackMatrix) locateTopScoringCell() (topRow, topCol int) {
	topScore := 0
	for row := 0; row < m.numRows; row++ {
		for col := 0; col < m.numCols; col++ {
			if score := m.score(row, col); (row == 0 && col == 0) || topScore <= score {
				topScore, topRow, topCol = score, row, col
			}
		}
	}
	return topRow, topCol
}

func (m *tracebackMatrix) tracebackPosition(row, col int) (int, int) {
	switch m.step(row, col) {
	case stepDiagonalMatch, stepDiagonalMismatch:
		return row - 1, col - 1
	case stepLeft:
		return row, col - 1
	case stepTop:
		return row - 1, col
	}
	return row, col
}

var stepOperationTypes = [...]OperationType{
	stepDiagonalMatch:    Match,
	stepDiagonalMismatch: Mismatch,
	stepLeft:             Deletion,
	stepTop:              Insertion,
}

func (m *tracebackMatrix) runTraceback(row, col int) LinearAlignment {
	var operations []Operation
	if row != m.numRows-1 {
		operations = append(operations, Operation{Softclip, m.numRows - row - 1})
	}
	for m.step(row, col) != stepStop {
		step := m.step(row, col)
		length := 0
		for m.step(row, col) == step {
			length++
			row, col = m.tracebackPosition(row, col)
		}
		operations = append(operations, Operation{stepOperationTypes[step], length})
	}
	if row != 0 {
		operations = append(operations, Operation{Softclip, row})
	}
	for i, j := 0, len(operations)-1; i < j; i, j = i+1, j-1 {
		operations[i], operations[j] = operations[j], operations[i]
	}
	return LinearAlignment{ReferenceStart: col, Operations: operations}
}

/*
PinnedAligner aligns a query to a reference with a linear gap
penalty, where the alignment is pinned to the start of both sequences
(PrefixAlign) or to the end of both sequences (SuffixAlign). Query
bases beyond the top-scoring cell are softclipped.
*/
type PinnedAligner struct {
	MatchScore, MismatchScore, GapScore int
}

// NewPinnedAligner creates a pinned aligner with the given scores.
func NewPinnedAligner(matchScore, mismatchScore, gapScore int) PinnedAligner {
	return PinnedAligner{MatchScore: matchScore, MismatchScore: mismatchScore, GapScore: gapScore}
}

func (pa PinnedAligner) populateTracebackMatrix(reference, query string) *tracebackMatrix {
	m := newTracebackMatrix(len(query)+1, len(reference)+1)
	m.set(0, 0, 0, stepStop)
	for col := 1; col < m.numCols; col++ {
		m.set(0, col, col*pa.GapScore, stepLeft)
	}
	for row := 1; row < m.numRows; row++ {
		m.set(row, 0, row*pa.GapScore, stepTop)
	}
	for row := 1; row < m.numRows; row++ {
		for col := 1; col < m.numCols; col++ {
			score, step := pa.MismatchScore, stepDiagonalMismatch
			if utils.CheckIfReferenceBaseMatchesQueryBase(reference[col-1], query[row-1]) {
				score, step = pa.MatchScore, stepDiagonalMatch
			}
			score += m.score(row-1, col-1)
			if left := m.score(row, col-1) + pa.GapScore; left > score {
				score, step = left, stepLeft
			}
			if top := m.score(row-1, col) + pa.GapScore; top > score {
				score, step = top, stepTop
			}
			m.set(row, col, score, step)
		}
	}
	return m
}

// PrefixAlign aligns the query to the reference, starting at the start
// of both.
func (pa PinnedAligner) PrefixAlign(reference, query string) LinearAlignment {
	m := pa.populateTracebackMatrix(reference, query)
	return m.runTraceback(m.locateTopScoringCell())
}

func reverseString(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[len(s)-1-i] = s[i]
	}
	return string(b)
}

// SuffixAlign aligns the query to the reference, ending at the end of
// both.
func (pa PinnedAligner) SuffixAlign(reference, query string) LinearAlignment {
	aln := pa.PrefixAlign(reverseString(reference), reverseString(query))
	aln.Reverse(len(reference))
	return aln
}
