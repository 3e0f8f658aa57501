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

package graph

import (
	"fmt"
	"strings"

	"github.com/exascience/strgraph/utils"
)

type regionFeature struct {
	seqs     []string
	loop     bool
	optional bool
}

type regionScanner struct {
	index int
	data  string
	err   error
}

func isBase(c byte) bool {
	return utils.IsNucleotideCode(c)
}

func (sc *regionScanner) fail(format string, v ...interface{}) {
	if sc.err == nil {
		sc.err = fmt.Errorf("invalid region expression %q at position %v: %v", sc.data, sc.index, fmt.Sprintf(format, v...))
	}
}

func (sc *regionScanner) readSeq() string {
	start := sc.index
	for sc.index < len(sc.data) && isBase(sc.data[sc.index]) {
		sc.index++
	}
	return sc.data[start:sc.index]
}

func (sc *regionScanner) readGroup() (feature regionFeature) {
	sc.index++ // '('
	for {
		seq := sc.readSeq()
		if seq == "" {
			sc.fail("empty sequence in group")
			return
		}
		feature.seqs = append(feature.seqs, seq)
		if sc.index >= len(sc.data) {
			sc.fail("unterminated group")
			return
		}
		c := sc.data[sc.index]
		sc.index++
		if c == ')' {
			break
		}
		if c != '|' {
			sc.fail("unexpected character %q in group", c)
			return
		}
	}
	if sc.index < len(sc.data) {
		switch sc.data[sc.index] {
		case '*':
			feature.loop, feature.optional = true, true
			sc.index++
		case '+':
			feature.loop = true
			sc.index++
		case '?':
			feature.optional = true
			sc.index++
		}
	}
	if feature.loop && len(feature.seqs) > 1 {
		sc.fail("repeated alternatives are not supported")
	}
	return feature
}

func (sc *regionScanner) readFeatures() (features []regionFeature) {
	for sc.err == nil && sc.index < len(sc.data) {
		switch c := sc.data[sc.index]; {
		case c == '(':
			features = append(features, sc.readGroup())
		case isBase(c):
			features = append(features, regionFeature{seqs: []string{sc.readSeq()}})
		default:
			sc.fail("unexpected character %q", c)
		}
	}
	if sc.err == nil && len(features) == 0 {
		sc.fail("no sequence")
	}
	return features
}

/*
MakeRegionGraph builds a graph from a region expression such as
TAAT(CAG)*CAACAG(CCG)*CCTT.

Each run of bases outside parentheses becomes one node. A group (U)*
becomes a node with a self-loop that may be skipped, (U)+ a node with
a self-loop that must be visited, and (U)? a node that may be skipped.
A group (A|B) becomes one node per alternative. Nodes are numbered
from left to right, so edges always respect the topological order of
node identifiers.
*/
func MakeRegionGraph(expression string) (*Graph, error) {
	sc := regionScanner{data: expression}
	features := sc.readFeatures()
	if sc.err != nil {
		return nil, sc.err
	}
	var featureNodes [][]NodeID
	numNodes := 0
	for _, feature := range features {
		var ids []NodeID
		for range feature.seqs {
			ids = append(ids, NodeID(numNodes))
			numNodes++
		}
		featureNodes = append(featureNodes, ids)
	}
	g := New(numNodes, expression)
	for i, feature := range features {
		for j, seq := range feature.seqs {
			id := featureNodes[i][j]
			if err := g.SetNodeSeq(id, strings.ToUpper(seq)); err != nil {
				return nil, err
			}
			if feature.loop {
				if err := g.AddEdge(id, id); err != nil {
					return nil, err
				}
			}
		}
		for k := i + 1; k < len(features); k++ {
			for _, source := range featureNodes[i] {
				for _, sink := range featureNodes[k] {
					if err := g.AddEdge(source, sink); err != nil {
						return nil, err
					}
				}
			}
			if !features[k].optional {
				break
			}
		}
	}
	return g, nil
}
