/*
 * keys.go, part of goxtal.
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

package reader

import (
	"strconv"
	"strings"

	xtal "github.com/rmera/goxtal"
)

// Field ids of the atom loops. _atom_site, _atom_site_aniso and _chem_comp_atom loops
// share one list, so a loop can mix columns of the three.
const (
	atTypeSymbol = iota
	atLabel
	atAuthAtomID
	atLabelAtomID
	atFractX
	atFractY
	atFractZ
	atCartnX
	atCartnY
	atCartnZ
	atOccupancy
	atBIso
	atUIso
	atAuthCompID
	atLabelCompID
	atAuthAsymID
	atLabelAsymID
	atAuthSeqID
	atLabelSeqID
	atInsCode
	atAltID
	atDisorderGroup
	atGroupPDB
	atModelNum
	atFormalCharge
	atID
	atEntityID
	atSubsystemCode
	atAnisoLabel
	atAnisoID
	atAnisoTypeSymbol
	ccaCompID
	ccaAtomID
	ccaTypeSymbol
	ccaCharge
	ccaX
	ccaY
	ccaZ
	ccaIdealX
	ccaIdealY
	ccaIdealZ
	atNKeys
)

var atomKeys = [atNKeys]string{
	atTypeSymbol:      "_atom_site_type_symbol",
	atLabel:           "_atom_site_label",
	atAuthAtomID:      "_atom_site_auth_atom_id",
	atLabelAtomID:     "_atom_site_label_atom_id",
	atFractX:          "_atom_site_fract_x",
	atFractY:          "_atom_site_fract_y",
	atFractZ:          "_atom_site_fract_z",
	atCartnX:          "_atom_site_cartn_x",
	atCartnY:          "_atom_site_cartn_y",
	atCartnZ:          "_atom_site_cartn_z",
	atOccupancy:       "_atom_site_occupancy",
	atBIso:            "_atom_site_b_iso_or_equiv",
	atUIso:            "_atom_site_u_iso_or_equiv",
	atAuthCompID:      "_atom_site_auth_comp_id",
	atLabelCompID:     "_atom_site_label_comp_id",
	atAuthAsymID:      "_atom_site_auth_asym_id",
	atLabelAsymID:     "_atom_site_label_asym_id",
	atAuthSeqID:       "_atom_site_auth_seq_id",
	atLabelSeqID:      "_atom_site_label_seq_id",
	atInsCode:         "_atom_site_pdbx_pdb_ins_code",
	atAltID:           "_atom_site_label_alt_id",
	atDisorderGroup:   "_atom_site_disorder_group",
	atGroupPDB:        "_atom_site_group_pdb",
	atModelNum:        "_atom_site_pdbx_pdb_model_num",
	atFormalCharge:    "_atom_site_pdbx_formal_charge",
	atID:              "_atom_site_id",
	atEntityID:        "_atom_site_label_entity_id",
	atSubsystemCode:   "_atom_site_subsystem_code",
	atAnisoLabel:      "_atom_site_aniso_label",
	atAnisoID:         "_atom_site_anisotrop_id",
	atAnisoTypeSymbol: "_atom_site_aniso_type_symbol",
	ccaCompID:         "_chem_comp_atom_comp_id",
	ccaAtomID:         "_chem_comp_atom_atom_id",
	ccaTypeSymbol:     "_chem_comp_atom_type_symbol",
	ccaCharge:         "_chem_comp_atom_charge",
	ccaX:              "_chem_comp_atom_model_cartn_x",
	ccaY:              "_chem_comp_atom_model_cartn_y",
	ccaZ:              "_chem_comp_atom_model_cartn_z",
	ccaIdealX:         "_chem_comp_atom_pdbx_model_cartn_x_ideal",
	ccaIdealY:         "_chem_comp_atom_pdbx_model_cartn_y_ideal",
	ccaIdealZ:         "_chem_comp_atom_pdbx_model_cartn_z_ideal",
}

// coordinate representations of an atom loop, in order of priority.
type coordKind int

const (
	coordIdeal coordKind = iota
	coordCartesian
	coordFractional
)

var coordFields = [...][][3]int{
	coordIdeal:      {{ccaIdealX, ccaIdealY, ccaIdealZ}},
	coordCartesian:  {{atCartnX, atCartnY, atCartnZ}, {ccaX, ccaY, ccaZ}},
	coordFractional: {{atFractX, atFractY, atFractZ}},
}

// tensorCol is a loop column holding one component of an anisotropic displacement tensor.
type tensorCol struct {
	col  int
	kind xtal.AnisoKind
	comp int //0..5 for 11, 22, 33, 12, 13, 23
}

var tensorComps = map[string]int{"11": 0, "22": 1, "33": 2, "12": 3, "13": 4, "23": 5, "21": 3, "31": 4, "32": 5}

// parseTensorKey recognizes the data names of tensor components, such as "_atom_site_aniso_u_11",
// "_atom_site_aniso_beta_23" or the mmCIF "_atom_site_anisotrop_u[1][2]". It returns the
// convention and the component.
func parseTensorKey(key string) (kind xtal.AnisoKind, comp int, ok bool) {
	var rest string
	switch {
	case strings.HasPrefix(key, "_atom_site_anisotrop_"):
		rest = key[len("_atom_site_anisotrop_"):]
	case strings.HasPrefix(key, "_atom_site_aniso_"):
		rest = key[len("_atom_site_aniso_"):]
	default:
		return 0, 0, false
	}
	var conv string
	for _, p := range []string{"beta", "u", "b"} {
		if strings.HasPrefix(rest, p) {
			conv = p
			rest = rest[len(p):]
			break
		}
	}
	if conv == "" {
		return 0, 0, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '1' && r <= '3' {
			return r
		}
		if r == '_' || r == '[' || r == ']' {
			return -1
		}
		return 'x'
	}, rest)
	comp, ok = tensorComps[digits]
	if !ok {
		return 0, 0, false
	}
	switch conv {
	case "u":
		kind = xtal.AnisoU
	case "b":
		kind = xtal.AnisoB
	default:
		kind = xtal.AnisoBeta
	}
	return kind, comp, true
}

// matrixIndex parses the indexes of matrix element names, "11", "_1_2" or "[1][2]", which
// follow prefix in key. It returns 1-based indexes.
func matrixIndex(key, prefix string) (i, j int, ok bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, 0, false
	}
	rest := strings.NewReplacer("[", " ", "]", " ", "_", " ").Replace(key[len(prefix):])
	f := strings.Fields(rest)
	if len(f) == 1 && len(f[0]) == 2 {
		f = []string{f[0][:1], f[0][1:]}
	}
	if len(f) != 2 {
		return 0, 0, false
	}
	i, err1 := strconv.Atoi(f[0])
	j, err2 := strconv.Atoi(f[1])
	if err1 != nil || err2 != nil || i < 1 || j < 1 {
		return 0, 0, false
	}
	return i, j, true
}

// vectorIndex is the one-index version of matrixIndex.
func vectorIndex(key, prefix string) (int, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	rest := strings.Trim(key[len(prefix):], "[]_")
	i, err := strconv.Atoi(rest)
	if err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// Fields of the symmetry operator loops. Exactly one of the operator spellings
// can be present in a loop.
const (
	symXYZ = iota
	symOpXYZ
	symSSGXYZ
	symSSGOpXYZ
	symSSGAlgebraic
	symNKeys
)

var symKeys = []string{
	symXYZ:          "_symmetry_equiv_pos_as_xyz",
	symOpXYZ:        "_space_group_symop_operation_xyz",
	symSSGXYZ:       "_symmetry_ssg_equiv_pos_as_xyz",
	symSSGOpXYZ:     "_space_group_symop_ssg_operation_algebraic",
	symSSGAlgebraic: "_space_group_ssg_symop_operation_algebraic",
}

// Fields of _geom_bond loops.
const (
	gbLabel1 = iota
	gbLabel2
	gbDistance
	gbType
)

var geomBondKeys = []string{
	gbLabel1:   "_geom_bond_atom_site_label_1",
	gbLabel2:   "_geom_bond_atom_site_label_2",
	gbDistance: "_geom_bond_distance",
	gbType:     "_ccdc_geom_bond_type",
}

// Fields of _chem_comp_bond loops. The first four are required.
const (
	ccbCompID = iota
	ccbAtom1
	ccbAtom2
	ccbOrder
	ccbAromatic
)

var chemCompBondKeys = []string{
	ccbCompID:   "_chem_comp_bond_comp_id",
	ccbAtom1:    "_chem_comp_bond_atom_id_1",
	ccbAtom2:    "_chem_comp_bond_atom_id_2",
	ccbOrder:    "_chem_comp_bond_value_order",
	ccbAromatic: "_chem_comp_bond_pdbx_aromatic_flag",
}

// Fields of _atom_type loops.
const (
	atyType = iota
	atyOxidation
)

var atomTypeKeys = []string{
	atyType:      "_atom_type_symbol",
	atyOxidation: "_atom_type_oxidation_number",
}

// Fields of _struct_conf and _struct_sheet_range loops.
const (
	scType = iota
	scID
	scHelixClass
	scBegChain
	scBegSeq
	scBegIns
	scEndChain
	scEndSeq
	scEndIns
	ssSheetID
	ssID
	ssBegChain
	ssBegSeq
	ssBegIns
	ssEndChain
	ssEndSeq
	ssEndIns
)

var structKeys = []string{
	scType:       "_struct_conf_conf_type_id",
	scID:         "_struct_conf_id",
	scHelixClass: "_struct_conf_pdbx_pdb_helix_class",
	scBegChain:   "_struct_conf_beg_auth_asym_id",
	scBegSeq:     "_struct_conf_beg_auth_seq_id",
	scBegIns:     "_struct_conf_pdbx_beg_pdb_ins_code",
	scEndChain:   "_struct_conf_end_auth_asym_id",
	scEndSeq:     "_struct_conf_end_auth_seq_id",
	scEndIns:     "_struct_conf_pdbx_end_pdb_ins_code",
	ssSheetID:    "_struct_sheet_range_sheet_id",
	ssID:         "_struct_sheet_range_id",
	ssBegChain:   "_struct_sheet_range_beg_auth_asym_id",
	ssBegSeq:     "_struct_sheet_range_beg_auth_seq_id",
	ssBegIns:     "_struct_sheet_range_pdbx_beg_pdb_ins_code",
	ssEndChain:   "_struct_sheet_range_end_auth_asym_id",
	ssEndSeq:     "_struct_sheet_range_end_auth_seq_id",
	ssEndIns:     "_struct_sheet_range_pdbx_end_pdb_ins_code",
}

// Fields of _struct_site_gen loops.
const (
	sgSiteID = iota
	sgChain
	sgSeq
	sgComp
	sgIns
)

var siteGenKeys = []string{
	sgSiteID: "_struct_site_gen_site_id",
	sgChain:  "_struct_site_gen_auth_asym_id",
	sgSeq:    "_struct_site_gen_auth_seq_id",
	sgComp:   "_struct_site_gen_auth_comp_id",
	sgIns:    "_struct_site_gen_pdbx_auth_ins_code",
}

// Fields of _struct_conn loops.
const (
	cnType = iota
	cnChain1
	cnSeq1
	cnIns1
	cnAtom1
	cnAlt1
	cnChain2
	cnSeq2
	cnIns2
	cnAtom2
	cnAlt2
	cnOrder
)

var structConnKeys = []string{
	cnType:   "_struct_conn_conn_type_id",
	cnChain1: "_struct_conn_ptnr1_auth_asym_id",
	cnSeq1:   "_struct_conn_ptnr1_auth_seq_id",
	cnIns1:   "_struct_conn_pdbx_ptnr1_pdb_ins_code",
	cnAtom1:  "_struct_conn_ptnr1_label_atom_id",
	cnAlt1:   "_struct_conn_pdbx_ptnr1_label_alt_id",
	cnChain2: "_struct_conn_ptnr2_auth_asym_id",
	cnSeq2:   "_struct_conn_ptnr2_auth_seq_id",
	cnIns2:   "_struct_conn_pdbx_ptnr2_pdb_ins_code",
	cnAtom2:  "_struct_conn_ptnr2_label_atom_id",
	cnAlt2:   "_struct_conn_pdbx_ptnr2_label_alt_id",
	cnOrder:  "_struct_conn_pdbx_value_order",
}

// Fields of _pdbx_struct_oper_list and _pdbx_struct_assembly_gen loops. The matrix
// and vector columns are found by name.
const (
	opID = iota
	agAssembly
	agExpression
	agAsymList
)

var assemblyKeys = []string{
	opID:         "_pdbx_struct_oper_list_id",
	agAssembly:   "_pdbx_struct_assembly_gen_assembly_id",
	agExpression: "_pdbx_struct_assembly_gen_oper_expression",
	agAsymList:   "_pdbx_struct_assembly_gen_asym_id_list",
}

// Fields of the loops with residue names: _chem_comp and _pdbx_entity_nonpoly.
const (
	hetCompID = iota
	hetCompName
	hetNonpolyID
	hetNonpolyName
)

var hetKeys = []string{
	hetCompID:      "_chem_comp_id",
	hetCompName:    "_chem_comp_name",
	hetNonpolyID:   "_pdbx_entity_nonpoly_comp_id",
	hetNonpolyName: "_pdbx_entity_nonpoly_name",
}

// Fields of the modulation loops.
const (
	wvSeqID = iota
	wvX
	wvY
	wvZ
	fwSeqID
	fwX
	fwY
	fwZ
	fwQ1
	fwQ2
	fwQ3
	dfID
	dfLabel
	dfAxis
	dfWave
	dfParamID
	dfCos
	dfSin
	dfModulus
	dfPhase
	ofID
	ofLabel
	ofWave
	ofParamID
	ofCos
	ofSin
	ofModulus
	ofPhase
	ufID
	ufLabel
	ufElem
	ufWave
	ufParamID
	ufCos
	ufSin
	ufModulus
	ufPhase
	osLabel
	osCrenelC
	osCrenelW
	dsLabel
	dsSawAx
	dsSawAy
	dsSawAz
	dsSawC
	dsSawW
	subCode
	modNKeys
)

var modKeys = [modNKeys]string{
	wvSeqID:   "_cell_wave_vector_seq_id",
	wvX:       "_cell_wave_vector_x",
	wvY:       "_cell_wave_vector_y",
	wvZ:       "_cell_wave_vector_z",
	fwSeqID:   "_atom_site_fourier_wave_vector_seq_id",
	fwX:       "_atom_site_fourier_wave_vector_x",
	fwY:       "_atom_site_fourier_wave_vector_y",
	fwZ:       "_atom_site_fourier_wave_vector_z",
	fwQ1:      "_atom_site_fourier_wave_vector_q1_coeff",
	fwQ2:      "_atom_site_fourier_wave_vector_q2_coeff",
	fwQ3:      "_atom_site_fourier_wave_vector_q3_coeff",
	dfID:      "_atom_site_displace_fourier_id",
	dfLabel:   "_atom_site_displace_fourier_atom_site_label",
	dfAxis:    "_atom_site_displace_fourier_axis",
	dfWave:    "_atom_site_displace_fourier_wave_vector_seq_id",
	dfParamID: "_atom_site_displace_fourier_param_id",
	dfCos:     "_atom_site_displace_fourier_param_cos",
	dfSin:     "_atom_site_displace_fourier_param_sin",
	dfModulus: "_atom_site_displace_fourier_param_modulus",
	dfPhase:   "_atom_site_displace_fourier_param_phase",
	ofID:      "_atom_site_occ_fourier_id",
	ofLabel:   "_atom_site_occ_fourier_atom_site_label",
	ofWave:    "_atom_site_occ_fourier_wave_vector_seq_id",
	ofParamID: "_atom_site_occ_fourier_param_id",
	ofCos:     "_atom_site_occ_fourier_param_cos",
	ofSin:     "_atom_site_occ_fourier_param_sin",
	ofModulus: "_atom_site_occ_fourier_param_modulus",
	ofPhase:   "_atom_site_occ_fourier_param_phase",
	ufID:      "_atom_site_u_fourier_id",
	ufLabel:   "_atom_site_u_fourier_atom_site_label",
	ufElem:    "_atom_site_u_fourier_tens_elem",
	ufWave:    "_atom_site_u_fourier_wave_vector_seq_id",
	ufParamID: "_atom_site_u_fourier_param_id",
	ufCos:     "_atom_site_u_fourier_param_cos",
	ufSin:     "_atom_site_u_fourier_param_sin",
	ufModulus: "_atom_site_u_fourier_param_modulus",
	ufPhase:   "_atom_site_u_fourier_param_phase",
	osLabel:   "_atom_site_occ_special_func_atom_site_label",
	osCrenelC: "_atom_site_occ_special_func_crenel_c",
	osCrenelW: "_atom_site_occ_special_func_crenel_w",
	dsLabel:   "_atom_site_displace_special_func_atom_site_label",
	dsSawAx:   "_atom_site_displace_special_func_sawtooth_ax",
	dsSawAy:   "_atom_site_displace_special_func_sawtooth_ay",
	dsSawAz:   "_atom_site_displace_special_func_sawtooth_az",
	dsSawC:    "_atom_site_displace_special_func_sawtooth_c",
	dsSawW:    "_atom_site_displace_special_func_sawtooth_w",
	subCode:   "_cell_subsystem_code",
}
