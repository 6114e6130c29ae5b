/*
 * doc.go, part of goxtal.
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

/*
Package xtal is the main package of the goXtal library. It provides the atom, bond and
atom set structures that the readers of crystallographic and macromolecular files fill,
and the options that control how those files are read.

	**goXtal Capabilities**

	Reads small-molecule CIF (1.1 and 2.0) and macromolecular mmCIF files, as well
	as binary MMTF files, plain or compressed with gzip or zstd (package reader).

	Applies the symmetry operators of the file to produce the packed unit cell, and
	rebuilds whole molecules across the cell boundaries (package symmetry).

	Builds biological assemblies and the coarse-grained, one-atom-per-chain, representation
	of macromolecules.

	Reads modulated and composite structures, in superspace, and applies displacive,
	occupancy and thermal modulation to the atoms (package modulation).

	Creates bonds from residue templates, connection records, geometric bond lists and
	covalent radii, and assigns atoms to molecules (package chemgraph).

	Reads the secondary structure of proteins.

The CIF tokenizer (package cif) and the MessagePack decoder (package msgpack) can be used
on their own.

The xtalinfo command (cmd/xtalinfo) prints summaries of the files goXtal reads.
*/
package xtal
