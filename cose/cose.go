// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package cose verifies COSE_Sign1 messages (RFC 8152 section 4.2): a CBOR
// array carrying a protected header byte string, an unprotected header map,
// a payload byte string, and a signature byte string.
//
// The entry point is [Verify]. It decodes the message with the [cbor]
// package's streaming decoder, parses and validates both header maps
// (including the "crit" critical-parameters rule), builds and hashes the
// Sig_structure to-be-signed bytes without ever materializing it whole, and
// dispatches to a [Verifier] to check the signature. A well-known "kid"
// short-circuits verification to a plain hash comparison for testing; see
// shortcircuit.go.
//
// Producing signatures, COSE_Sign, COSE_Mac/Mac0, COSE_Encrypt/Encrypt0, and
// certificate-based key discovery are out of scope for this package.
package cose

/*
COSE Tags relevant to this package

	+-------+---------------+---------------+---------------------------+
	| CBOR  | cose-type     | Data Item     | Semantics                 |
	| Tag   |               |               |                           |
	+-------+---------------+---------------+---------------------------+
	| 18    | cose-sign1    | COSE_Sign1    | COSE Single Signer Data   |
	|       |               |               | Object                    |
	+-------+---------------+---------------+---------------------------+
*/
const sign1TagNum uint64 = 18

// Header labels recognized in a COSE_Sign1 header map (RFC 8152 table 2).
const (
	labelAlg         int64 = 1
	labelCrit        int64 = 2
	labelContentType int64 = 3
	labelKid         int64 = 4
	labelIV          int64 = 5
	labelPartialIV   int64 = 6
)

// headerListMax bounds how many unrecognized header labels, or how many
// entries in a "crit" array, a single header map may carry before
// TooManyHeaders is reported. Integer and byte-string labels are counted
// separately, each against this bound. It mirrors t_cose's T_COSE_HEADER_LIST_MAX.
const headerListMax = 10
