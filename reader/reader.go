/*
 * reader.go, part of goxtal.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package reader decodes CIF, mmCIF and MMTF files into atom set collections.
//
// The format is found by looking at the start of the input: MMTF files are MessagePack
// maps, and CIF files that use the mmCIF "category.item" data names are read with the
// mmCIF categories enabled. Gzip and zstd compressed files are decompressed transparently
// by OpenFile and ReadFile.
package reader

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	xtal "github.com/rmera/goxtal"
	"github.com/rmera/goxtal/cif"
)

// Format is one of the file formats the package reads.
type Format int

const (
	CIF Format = iota
	MMCIF
	MMTF
)

func (f Format) String() string {
	switch f {
	case MMCIF:
		return "mmCIF"
	case MMTF:
		return "MMTF"
	}
	return "CIF"
}

// bytes looked at to decide the format.
const sniffLen = 64 * 1024

// Sniff returns the format of a file that starts with head.
func Sniff(head []byte) Format {
	if len(head) > 0 {
		switch c := head[0]; {
		case c >= 0x80 && c <= 0x8f, c == 0xde, c == 0xdf:
			return MMTF
		}
	}
	if bytes.Contains(head, []byte("_atom_site.")) || bytes.Contains(head, []byte("_entry.id")) {
		return MMCIF
	}
	//any data name with a category separator
	for _, line := range bytes.Split(head, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) < 2 || line[0] != '_' {
			continue
		}
		if i := bytes.IndexAny(line, " \t"); i > 0 {
			line = line[:i]
		}
		if bytes.IndexByte(line, '.') > 0 {
			return MMCIF
		}
	}
	return CIF
}

// Read decodes a CIF, mmCIF or MMTF file from r.
func Read(r io.Reader, opts xtal.Options) (*xtal.AtomSetCollection, error) {
	coll, err := ReadNamed(r, "", opts)
	return coll, xtal.ErrDecorate(err, "Read")
}

// ReadNamed is like Read, name is used to name the collection and, in notes and logs, the input.
// The collection is returned, with the atom sets completed so far, also when there is an error.
func ReadNamed(r io.Reader, name string, opts xtal.Options) (*xtal.AtomSetCollection, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, xtal.ErrDecorate(err, "ReadNamed")
	}
	var coll *xtal.AtomSetCollection
	switch format := Sniff(head); format {
	case MMTF:
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, xtal.ErrDecorate(err, "ReadNamed")
		}
		coll, err = ReadMMTF(data, name, opts)
		if err != nil {
			return coll, xtal.ErrDecorate(err, "ReadNamed")
		}
	default:
		cr := NewCifReader(name, opts, format == MMCIF)
		coll, err = cr.Read(cif.NewLineSource(br))
		if err != nil {
			return coll, xtal.ErrDecorate(err, "ReadNamed")
		}
	}
	if coll.NAtoms() == 0 {
		return coll, xtal.Errorf("ReadNamed", "%s: %w", name, xtal.ErrNoAtoms).NonCritical()
	}
	return coll, nil
}

// mapped is a memory-mapped file, possibly read through a decompressor.
type mapped struct {
	io.Reader
	m   mmap.MMap
	f   *os.File
	dec io.Closer
}

func (m *mapped) Close() error {
	if m.dec != nil {
		m.dec.Close()
	}
	var err error
	if m.m != nil {
		err = m.m.Unmap()
	}
	if err2 := m.f.Close(); err == nil {
		err = err2
	}
	return err
}

// zstd.Decoder.Close returns nothing, so it is not an io.Closer.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// OpenFile opens the file at path for reading. The file is memory-mapped and, if it is gzip or zstd
// compressed, decompressed while it is read.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xtal.ErrDecorate(err, "OpenFile")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, xtal.ErrDecorate(err, "OpenFile")
	}
	if info.Size() == 0 {
		//empty files can't be mapped
		return f, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, xtal.ErrDecorate(err, "OpenFile")
	}
	ret := &mapped{m: m, f: f}
	switch {
	case bytes.HasPrefix(m, gzipMagic):
		gz, err := gzip.NewReader(bytes.NewReader(m))
		if err != nil {
			ret.Close()
			return nil, xtal.ErrDecorate(err, "OpenFile")
		}
		ret.Reader, ret.dec = gz, gz
	case bytes.HasPrefix(m, zstdMagic):
		zs, err := zstd.NewReader(bytes.NewReader(m))
		if err != nil {
			ret.Close()
			return nil, xtal.ErrDecorate(err, "OpenFile")
		}
		ret.Reader, ret.dec = zs, zstdCloser{zs}
	default:
		ret.Reader = bytes.NewReader(m)
	}
	return ret, nil
}

// ReadFile reads the file at path. The collection is named after the file, without
// its extensions.
func ReadFile(path string, opts xtal.Options) (*xtal.AtomSetCollection, error) {
	rc, err := OpenFile(path)
	if err != nil {
		return nil, xtal.ErrDecorate(err, "ReadFile")
	}
	defer rc.Close()
	name := filepath.Base(path)
	for _, ext := range []string{".gz", ".zst", ".cif", ".mmcif", ".mmtf", ".bcif"} {
		name = strings.TrimSuffix(name, ext)
	}
	coll, err := ReadNamed(rc, name, opts)
	return coll, xtal.ErrDecorate(err, "ReadFile")
}
