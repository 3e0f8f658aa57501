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

import "fmt"

// InvalidPathError is returned when a path would violate one of its
// invariants: it must be non-empty, its positions must lie on their
// nodes, a single-node path must not end before it starts, and
// consecutive nodes must be connected.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (err *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %v: %v", err.Path, err.Reason)
}

// NotOnPathError is returned when a node position is not covered by a
// path.
type NotOnPathError struct {
	Node   NodeID
	Offset int
	Path   string
}

func (err *NotOnPathError) Error() string {
	return fmt.Sprintf("%v@%v is not on path %v", err.Node, err.Offset, err.Path)
}
