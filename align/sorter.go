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
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// GraphAlignmentSorter sorts graph alignments with the parallel stable
// sort of pargo.
type GraphAlignmentSorter []GraphAlignment

func (s GraphAlignmentSorter) SequentialSort(i, j int) {
	alns := s[i:j]
	sort.SliceStable(alns, func(i, j int) bool {
		return alns[i].Less(alns[j])
	})
}

func (s GraphAlignmentSorter) NewTemp() psort.StableSorter {
	return make(GraphAlignmentSorter, len(s))
}

func (s GraphAlignmentSorter) Len() int {
	return len(s)
}

func (s GraphAlignmentSorter) Less(i, j int) bool {
	return s[i].Less(s[j])
}

func (s GraphAlignmentSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s, p.(GraphAlignmentSorter)
	return func(i, j, len int) {
		for k := 0; k < len; k++ {
			dst[i+k] = src[j+k]
		}
	}
}

// SortAndDeduplicate sorts the alignments in place and returns the
// prefix of the slice that holds each distinct alignment once.
func SortAndDeduplicate(alns []GraphAlignment) []GraphAlignment {
	if len(alns) < 2 {
		return alns
	}
	psort.StableSort(GraphAlignmentSorter(alns))
	unique := alns[:1]
	for _, aln := range alns[1:] {
		if !aln.Equal(unique[len(unique)-1]) {
			unique = append(unique, aln)
		}
	}
	return unique
}
