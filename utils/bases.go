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

package utils

import "strings"

// Bit masks for the four nucleotides. A reference code matches a query
// base if their masks intersect.
const (
	baseA = 1 << iota
	baseC
	baseG
	baseT
)

var (
	referenceBaseMasks [256]uint8
	queryBaseMasks     [256]uint8
	complementTable    [256]byte
)

func init() {
	for base, mask := range map[byte]uint8{
		'A': baseA, 'C': baseC, 'G': baseG, 'T': baseT,
		'a': baseA, 'c': baseC, 'g': baseG, 't': baseT,
		'R': baseA | baseG,
		'Y': baseC | baseT,
		'K': baseG | baseT,
		'M': baseA | baseC,
		'S': baseC | baseG,
		'W': baseA | baseT,
		'B': baseC | baseG | baseT,
		'D': baseA | baseG | baseT,
		'H': baseA | baseC | baseT,
		'V': baseA | baseC | baseG,
		'N': baseA | baseC | baseG | baseT,
	} {
		referenceBaseMasks[base] = mask
	}
	for base, mask := range map[byte]uint8{
		'A': baseA, 'C': baseC, 'G': baseG, 'T': baseT,
		'a': baseA, 'c': baseC, 'g': baseG, 't': baseT,
	} {
		queryBaseMasks[base] = mask
	}
	for i := range complementTable {
		complementTable[i] = byte(i)
	}
	for _, pair := range []string{"AT", "CG", "RY", "KM", "BV", "DH", "at", "cg", "ry", "km", "bv", "dh"} {
		complementTable[pair[0]] = pair[1]
		complementTable[pair[1]] = pair[0]
	}
}

// CheckIfReferenceBaseMatchesQueryBase reports whether the given
// query base is compatible with the given reference base.
//
// Reference bases may be IUPAC ambiguity codes in upper case;
// lower-case ambiguity codes match nothing. Query bases must be one
// of A, C, G, T in either case, anything else (including N) is a
// mismatch.
func CheckIfReferenceBaseMatchesQueryBase(reference, query byte) bool {
	return referenceBaseMasks[reference]&queryBaseMasks[query] != 0
}

// IsNucleotideCode reports whether c is a nucleotide or an IUPAC
// ambiguity code, in either case.
func IsNucleotideCode(c byte) bool {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return referenceBaseMasks[c] != 0
}

// CheckIfReferenceAndQuerySequencesMatch reports whether both
// sequences have the same length and match base by base.
func CheckIfReferenceAndQuerySequencesMatch(reference, query string) bool {
	if len(reference) != len(query) {
		return false
	}
	for i := 0; i < len(reference); i++ {
		if !CheckIfReferenceBaseMatchesQueryBase(reference[i], query[i]) {
			return false
		}
	}
	return true
}

// ExpandReferenceSequence returns all upper-case nucleotide sequences
// that the given reference sequence with ambiguity codes stands for.
// Characters that are not IUPAC codes are kept as they are.
func ExpandReferenceSequence(seq string) []string {
	expansions := []string{""}
	for i := 0; i < len(seq); i++ {
		mask := referenceBaseMasks[seq[i]]
		if mask == 0 {
			for j := range expansions {
				expansions[j] += seq[i : i+1]
			}
			continue
		}
		var next []string
		for _, prefix := range expansions {
			for b, base := range "ACGT" {
				if mask&(1<<uint(b)) != 0 {
					next = append(next, prefix+string(base))
				}
			}
		}
		expansions = next
	}
	return expansions
}

// ReverseComplement returns the reverse complement of the given
// sequence. Ambiguity codes are complemented, unknown characters are
// kept.
func ReverseComplement(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		b.WriteByte(complementTable[seq[i]])
	}
	return b.String()
}
