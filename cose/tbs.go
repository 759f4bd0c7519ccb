// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cose

import (
	"encoding/binary"
	"io"
)

// sigStructureContext is the fixed "context" text string for COSE_Sign1's
// Sig_structure (RFC 8152 section 4.4).
const sigStructureContext = "Signature1"

// computeTBSHash hashes the Sig_structure for a COSE_Sign1 message:
//
//	Sig_structure = [
//	    context: "Signature1",
//	    body_protected: bstr .cbor header_map,
//	    external_aad: bstr,
//	    payload: bstr
//	]
//
// protected is the raw protected header byte string exactly as it appeared
// in the message (not re-encoded), external_aad is always empty since this
// package's [Verify] entry point takes none, and the whole structure is fed
// to the hash incrementally rather than built up as one CBOR buffer first.
func computeTBSHash(algID int64, protected, payload []byte) ([]byte, error) {
	newHash, err := hashFunc(algID)
	if err != nil {
		return nil, err
	}
	h := newHash()

	writeArrayHead(h, 4)
	writeTextHead(h, len(sigStructureContext))
	io.WriteString(h, sigStructureContext)
	writeBytesHead(h, len(protected))
	h.Write(protected)
	writeBytesHead(h, 0) // external_aad, always empty
	writeBytesHead(h, len(payload))
	h.Write(payload)

	return h.Sum(nil), nil
}

// writeArrayHead, writeBytesHead, writeTextHead write the CBOR head byte(s)
// for a definite-length array/byte-string/text-string of length n. They
// exist only to feed the TBS hash incrementally; this package does not
// otherwise encode CBOR.
func writeArrayHead(w io.Writer, n int) { writeMajorLen(w, 4, uint64(n)) }
func writeBytesHead(w io.Writer, n int) { writeMajorLen(w, 2, uint64(n)) }
func writeTextHead(w io.Writer, n int)  { writeMajorLen(w, 3, uint64(n)) }

func writeMajorLen(w io.Writer, major byte, n uint64) {
	switch {
	case n < 24:
		w.Write([]byte{major<<5 | byte(n)})
	case n < 1<<8:
		w.Write([]byte{major<<5 | 24, byte(n)})
	case n < 1<<16:
		var b [3]byte
		b[0] = major<<5 | 25
		binary.BigEndian.PutUint16(b[1:], uint16(n))
		w.Write(b[:])
	case n < 1<<32:
		var b [5]byte
		b[0] = major<<5 | 26
		binary.BigEndian.PutUint32(b[1:], uint32(n))
		w.Write(b[:])
	default:
		var b [9]byte
		b[0] = major<<5 | 27
		binary.BigEndian.PutUint64(b[1:], n)
		w.Write(b[:])
	}
}
