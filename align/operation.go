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
	"sync"

	"github.com/exascience/strgraph/utils"
)

// OperationType is the kind of a CIGAR-like alignment operation.
type OperationType byte

// The operation types, in the order in which operations are sorted.
const (
	Match OperationType = iota
	Mismatch
	Insertion
	Deletion
	Softclip
	MissingBases
)

// OperationLetters lists the CIGAR letters of the operation types, in
// the order of their declaration.
const OperationLetters = "MXIDSN"

var operationTypeTable [256]int8

func init() {
	for i := range operationTypeTable {
		operationTypeTable[i] = -1
	}
	for t, letter := range []byte(OperationLetters) {
		operationTypeTable[letter] = int8(t)
	}
}

func (t OperationType) String() string {
	return OperationLetters[t : t+1]
}

// Operation is a run of operations of the same type.
type Operation struct {
	Type   OperationType
	Length int
}

func (op Operation) String() string {
	return strconv.Itoa(op.Length) + op.Type.String()
}

// ReferenceLength returns the number of reference bases the operation
// consumes.
func (op Operation) ReferenceLength() int {
	switch op.Type {
	case Match, Mismatch, MissingBases, Deletion:
		return op.Length
	default:
		return 0
	}
}

// QueryLength returns the number of query bases the operation consumes.
func (op Operation) QueryLength() int {
	switch op.Type {
	case Match, Mismatch, MissingBases, Insertion, Softclip:
		return op.Length
	default:
		return 0
	}
}

// Compare orders operations by type, then by length.
func (op Operation) Compare(other Operation) int {
	switch {
	case op.Type < other.Type:
		return -1
	case op.Type > other.Type:
		return 1
	case op.Length < other.Length:
		return -1
	case op.Length > other.Length:
		return 1
	}
	return 0
}

/*
CheckConsistency checks whether the operation correctly describes
how the given query piece aligns to the given reference piece.

A match requires all bases to match, a mismatch requires no base to
match, and missing bases require the query to consist of Ns only.
Insertions and softclips consume query bases only, deletions consume
reference bases only.
*/
func (op Operation) CheckConsistency(reference, query string) bool {
	isQueryFullLength := len(query) == op.Length
	isReferenceFullLength := len(reference) == op.Length

	switch op.Type {
	case Match:
		return isQueryFullLength && utils.CheckIfReferenceAndQuerySequencesMatch(reference, query)
	case Mismatch:
		if !isQueryFullLength || len(query) != len(reference) {
			return false
		}
		for i := 0; i < len(query); i++ {
			if utils.CheckIfReferenceBaseMatchesQueryBase(reference[i], query[i]) {
				return false
			}
		}
		return true
	case MissingBases:
		if !isQueryFullLength || len(query) != len(reference) {
			return false
		}
		for i := 0; i < len(query); i++ {
			if query[i] != 'N' {
				return false
			}
		}
		return true
	case Deletion:
		return query == "" && reference != "" && isReferenceFullLength
	case Insertion, Softclip:
		return query != "" && reference == "" && isQueryFullLength
	}
	return false
}

// SplitByReferenceLength splits the operation into a prefix that
// consumes the given number of reference bases, and a suffix that
// consumes the rest.
func (op Operation) SplitByReferenceLength(prefixReferenceLength int) (prefix, suffix Operation, err error) {
	if prefixReferenceLength <= 0 || op.ReferenceLength() <= prefixReferenceLength {
		return prefix, suffix, fmt.Errorf("%v cannot be split by reference length %v", op, prefixReferenceLength)
	}
	prefix = Operation{op.Type, prefixReferenceLength}
	suffix = Operation{op.Type, op.ReferenceLength() - prefixReferenceLength}
	return prefix, suffix, nil
}

func isDigit(char byte) bool { return ('0' <= char) && (char <= '9') }

func isLetter(char byte) bool {
	return ('A' <= char && char <= 'Z') || ('a' <= char && char <= 'z')
}

func newOperation(cigar string, i int) (op Operation, j int, err error) {
	for j = i; j < len(cigar); j++ {
		char := cigar[j]
		if isDigit(char) {
			continue
		}
		if !isLetter(char) {
			return op, j, &MalformedCigarError{Cigar: cigar, Reason: fmt.Sprintf("unexpected character %q", char)}
		}
		if j == i {
			return op, j, &MalformedCigarError{Cigar: cigar, Reason: fmt.Sprintf("operation %q without length", char)}
		}
		t := operationTypeTable[char]
		if t < 0 {
			return op, j, &MalformedCigarError{Cigar: cigar, Reason: fmt.Sprintf("unknown operation %q", char)}
		}
		length, nerr := strconv.Atoi(cigar[i:j])
		if nerr != nil {
			return op, j, &MalformedCigarError{Cigar: cigar, Reason: nerr.Error()}
		}
		return Operation{OperationType(t), length}, j + 1, nil
	}
	return op, j, &MalformedCigarError{Cigar: cigar, Reason: "length without operation"}
}

var (
	cigarSliceCache      = map[string][]Operation{}
	cigarSliceCacheMutex = sync.RWMutex{}
)

func slowScanCigarString(cigar string) (slice []Operation, err error) {
	for i := 0; i < len(cigar); {
		op, j, err := newOperation(cigar, i)
		if err != nil {
			return nil, err
		}
		slice = append(slice, op)
		i = j
	}
	cigarSliceCacheMutex.Lock()
	if value, found := cigarSliceCache[cigar]; found {
		slice = value
	} else {
		cigarSliceCache[cigar] = slice
	}
	cigarSliceCacheMutex.Unlock()
	return slice, nil
}

// ScanCigarString parses a CIGAR string such as 3S2M1X into its
// operations. Results are cached and shared, so the returned slice
// must not be modified.
func ScanCigarString(cigar string) ([]Operation, error) {
	cigarSliceCacheMutex.RLock()
	value, found := cigarSliceCache[cigar]
	cigarSliceCacheMutex.RUnlock()
	if found {
		return value, nil
	}
	return slowScanCigarString(cigar)
}
