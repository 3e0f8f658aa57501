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

import "fmt"

// AlignmentInconsistencyError is returned when an alignment does not
// match the sequences or the path it claims to align.
type AlignmentInconsistencyError struct {
	Alignment string
	Reason    string
}

func (err *AlignmentInconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent alignment %v: %v", err.Alignment, err.Reason)
}

// MalformedCigarError is returned when a CIGAR string or a graph CIGAR
// string cannot be decoded.
type MalformedCigarError struct {
	Cigar  string
	Reason string
}

func (err *MalformedCigarError) Error() string {
	return fmt.Sprintf("malformed CIGAR %v: %v", err.Cigar, err.Reason)
}

// InvalidShrinkError is returned when shrinking a graph alignment
// would remove all of its reference bases.
type InvalidShrinkError struct {
	Alignment string
	Side      string
	Length    int
}

func (err *InvalidShrinkError) Error() string {
	return fmt.Sprintf("cannot shrink %v of %v by %v", err.Side, err.Alignment, err.Length)
}
