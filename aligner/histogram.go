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
	"log"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	psync "github.com/exascience/pargo/sync"
	"github.com/exascience/strgraph/internal"
)

type alleleKey string

func (key alleleKey) Hash() uint64 {
	return internal.StringHash(string(key))
}

// EncodeRepeatUnitCounts encodes repeat-unit counts as a
// slash-separated string, for example 5/12.
func EncodeRepeatUnitCounts(counts []int) string {
	var b strings.Builder
	for i, count := range counts {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(count))
	}
	return b.String()
}

// RepeatHistogram counts how many reads support each combination of
// repeat-unit counts. It is safe for concurrent use.
type RepeatHistogram struct {
	counts *psync.Map
}

// NewRepeatHistogram creates an empty histogram.
func NewRepeatHistogram() *RepeatHistogram {
	return &RepeatHistogram{counts: psync.NewMap(0)}
}

// Add counts one read with the given repeat-unit counts.
func (h *RepeatHistogram) Add(counts []int) {
	entry, _ := h.counts.LoadOrStore(alleleKey(EncodeRepeatUnitCounts(counts)), new(int64))
	atomic.AddInt64(entry.(*int64), 1)
}

// HistogramEntry is the number of reads that support a combination of
// repeat-unit counts.
type HistogramEntry struct {
	Allele   string
	NumReads int
}

// Entries returns the entries of the histogram, sorted numerically by
// allele.
func (h *RepeatHistogram) Entries() []HistogramEntry {
	result := h.counts.ParallelReduce(
		func(counts map[interface{}]interface{}) interface{} {
			var entries []HistogramEntry
			for key, value := range counts {
				entries = append(entries, HistogramEntry{string(key.(alleleKey)), int(atomic.LoadInt64(value.(*int64)))})
			}
			return entries
		}, func(x, y interface{}) interface{} {
			xt, ok := x.([]HistogramEntry)
			if !ok {
				log.Fatal("invalid type during RepeatHistogram.Entries")
			}
			yt, ok := y.([]HistogramEntry)
			if !ok {
				log.Fatal("invalid type during RepeatHistogram.Entries")
			}
			return append(xt, yt...)
		})
	entries, _ := result.([]HistogramEntry)
	sort.Slice(entries, func(i, j int) bool {
		return alleleLess(entries[i].Allele, entries[j].Allele)
	})
	return entries
}

// alleleLess compares encoded repeat-unit counts numerically.
func alleleLess(allele1, allele2 string) bool {
	counts1, counts2 := strings.Split(allele1, "/"), strings.Split(allele2, "/")
	for i := 0; i < len(counts1) && i < len(counts2); i++ {
		count1, _ := strconv.Atoi(counts1[i])
		count2, _ := strconv.Atoi(counts2[i])
		if count1 != count2 {
			return count1 < count2
		}
	}
	return len(counts1) < len(counts2)
}
