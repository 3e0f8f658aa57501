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

import (
	"reflect"
	"testing"
)

func TestBaseMatching(t *testing.T) {
	for _, c := range []struct {
		reference, query byte
		match            bool
	}{
		{'A', 'A', true},
		{'A', 'a', true},
		{'a', 'A', true},
		{'A', 'C', false},
		{'N', 'G', true},
		{'N', 'N', false},
		{'R', 'A', true},
		{'R', 'G', true},
		{'R', 'C', false},
		{'Y', 'T', true},
		{'B', 'A', false},
		{'V', 'T', false},
		{'r', 'A', false},
		{'A', 'X', false},
	} {
		if result := CheckIfReferenceBaseMatchesQueryBase(c.reference, c.query); result != c.match {
			t.Errorf("matching %c against %c: got %v, expected %v", c.reference, c.query, result, c.match)
		}
	}
	if !CheckIfReferenceAndQuerySequencesMatch("ACGN", "acgt") {
		t.Error("ACGN should match acgt")
	}
	if CheckIfReferenceAndQuerySequencesMatch("ACG", "ACGT") {
		t.Error("sequences of different length should not match")
	}
}

func TestIsNucleotideCode(t *testing.T) {
	for _, c := range []byte("ACGTacgtRYKMSWBDHVNrykmswbdhvn") {
		if !IsNucleotideCode(c) {
			t.Errorf("%c rejected", c)
		}
	}
	for _, c := range []byte("EFIJLOPQUXZeuxz-*(0 ") {
		if IsNucleotideCode(c) {
			t.Errorf("%c accepted", c)
		}
	}
}

func TestExpandReferenceSequence(t *testing.T) {
	if result := ExpandReferenceSequence("ACG"); !reflect.DeepEqual(result, []string{"ACG"}) {
		t.Error("ExpandReferenceSequence 1 failed", result)
	}
	if result := ExpandReferenceSequence("ARY"); !reflect.DeepEqual(result, []string{"AAC", "AAT", "AGC", "AGT"}) {
		t.Error("ExpandReferenceSequence 2 failed", result)
	}
	if result := ExpandReferenceSequence("aN"); len(result) != 4 || result[0] != "AA" {
		t.Error("ExpandReferenceSequence 3 failed", result)
	}
}

func TestReverseComplement(t *testing.T) {
	for seq, expected := range map[string]string{
		"":       "",
		"A":      "T",
		"ACGT":   "ACGT",
		"AACCGT": "ACGGTT",
		"cagR":   "Yctg",
		"ANT":    "ANT",
	} {
		if result := ReverseComplement(seq); result != expected {
			t.Errorf("ReverseComplement(%q) = %q, expected %q", seq, result, expected)
		}
	}
}
