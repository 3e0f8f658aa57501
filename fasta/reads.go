// elPrep: a high-performance tool for analyzing SAM/BAM files.
// Copyright (c) 2017-2020 imec vzw.

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

/*
Package fasta parses the reads to be aligned from FASTA and FASTQ
files. Files compressed with gzip or bgzip are decompressed
transparently.
*/
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"log"

	"github.com/exascience/strgraph/internal"
	"github.com/exascience/strgraph/utils"
)

// Read is a named read sequence.
type Read struct {
	Name string
	Seq  string
}

func nameFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	return string(b[i:j])
}

func nextNonEmptyLine(scanner *bufio.Scanner) ([]byte, bool) {
	for scanner.Scan() {
		if b := scanner.Bytes(); len(b) > 0 {
			return b, true
		}
	}
	return nil, false
}

// ParseReads parses reads in FASTA or FASTQ format. The format is
// determined by the first header. FASTA sequences may span multiple
// lines, FASTQ records must consist of exactly four lines.
func ParseReads(r io.Reader) (reads []Read, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	b, ok := nextNonEmptyLine(scanner)
	if !ok {
		return nil, scanner.Err()
	}
	switch b[0] {
	case '>':
		reads, err = parseFasta(scanner, b)
	case '@':
		reads, err = parseFastq(scanner, b)
	default:
		return nil, fmt.Errorf("invalid read file - unknown header %q", b)
	}
	if err != nil {
		return nil, err
	}
	return reads, scanner.Err()
}

func parseFasta(scanner *bufio.Scanner, header []byte) (reads []Read, err error) {
	read := Read{Name: nameFromHeader(header)}
	var seq []byte
	for scanner.Scan() {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			read.Seq = string(seq)
			reads = append(reads, read)
			read, seq = Read{Name: nameFromHeader(b)}, seq[:0]
			continue
		}
		seq = append(seq, b...)
	}
	read.Seq = string(seq)
	return append(reads, read), nil
}

func parseFastq(scanner *bufio.Scanner, header []byte) (reads []Read, err error) {
	for {
		if header[0] != '@' {
			return nil, fmt.Errorf("invalid fastq file - bad header %q", header)
		}
		read := Read{Name: nameFromHeader(header)}
		if !scanner.Scan() {
			return nil, fmt.Errorf("invalid fastq file - missing sequence for read %v", read.Name)
		}
		read.Seq = scanner.Text()
		if !scanner.Scan() || len(scanner.Bytes()) == 0 || scanner.Bytes()[0] != '+' {
			return nil, fmt.Errorf("invalid fastq file - missing separator for read %v", read.Name)
		}
		if !scanner.Scan() || len(scanner.Bytes()) != len(read.Seq) {
			return nil, fmt.Errorf("invalid fastq file - bad qualities for read %v", read.Name)
		}
		reads = append(reads, read)
		var ok bool
		if header, ok = nextNonEmptyLine(scanner); !ok {
			return reads, nil
		}
	}
}

// ParseReadFile parses the reads in the given file, which may be
// compressed.
func ParseReadFile(filename string) []Read {
	f := internal.FileOpen(filename)
	defer internal.Close(f)

	r := utils.HandleGzip(bufio.NewReader(f))
	if c, ok := r.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Panic(err)
			}
		}()
	}
	reads, err := ParseReads(r)
	if err != nil {
		log.Panicf("%v: %v", filename, err)
	}
	return reads
}
