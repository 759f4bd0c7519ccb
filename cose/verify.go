// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cose

import (
	"bytes"

	"github.com/coseverify/sign1/cbor"
)

// Options is a bitmask of runtime verification behaviors.
type Options uint32

const (
	// RequireKid rejects a message whose unprotected headers carry no
	// "kid" with [NoKid], even if the Verifier could otherwise identify a
	// key some other way.
	RequireKid Options = 1 << iota

	// AllowShortCircuit permits a message signed with the well-known
	// short-circuit kid (see [ShortCircuitKid]) to verify by direct hash
	// comparison instead of invoking a [Verifier]. Intended only for
	// tests; callers should not set this in production, and builds
	// tagged "nosc" remove the underlying mechanism entirely regardless
	// of this option.
	AllowShortCircuit
)

// Verify decodes message as a COSE_Sign1 structure (RFC 8152 section 4.2),
// validates its headers, and checks its signature using [DefaultVerifier]
// against key. On success it returns the enclosed payload; on any failure
// it returns a nil payload and an error that, via [errors.As], unwraps to a
// *[VerifyError].
func Verify(opts Options, key any, message []byte) ([]byte, error) {
	return VerifyWith(DefaultVerifier, opts, key, message)
}

// VerifyWith behaves like [Verify] but dispatches signature checks to an
// explicit [Verifier] instead of [DefaultVerifier].
func VerifyWith(verifier Verifier, opts Options, key any, message []byte) ([]byte, error) {
	d := cbor.NewDecoder(message)

	envelope, err := d.Next()
	if err != nil {
		return nil, wrapErr(CBORNotWellFormed, "reading envelope", err)
	}
	if envelope.Type != cbor.TypeArray || envelope.Indefinite || envelope.Count != 4 || !envelope.HasTag(sign1TagNum) {
		return nil, newErr(Sign1Format, "input is not a CBOR-tag-18 array of four elements")
	}

	protectedItem, err := d.Next()
	if err != nil {
		return nil, wrapErr(CBORNotWellFormed, "reading protected headers", err)
	}
	if protectedItem.Type != cbor.TypeBytes {
		return nil, newErr(Sign1Format, "protected headers is not a byte string")
	}
	protectedBstr := protectedItem.Bytes

	protectedHeaders, err := parseProtectedHeaders(protectedBstr)
	if err != nil {
		return nil, err
	}

	unprotectedHeaders, err := parseHeaderMap(d)
	if err != nil {
		return nil, err
	}

	if opts&RequireKid != 0 && len(unprotectedHeaders.Kid) == 0 {
		return nil, newErr(NoKid, "RequireKid set but unprotected headers carry no kid")
	}

	payloadItem, err := d.Next()
	if err != nil {
		return nil, wrapErr(CBORNotWellFormed, "reading payload", err)
	}
	if payloadItem.Type != cbor.TypeBytes {
		return nil, newErr(Sign1Format, "payload is not a byte string")
	}
	payload := payloadItem.Bytes

	sigItem, err := d.Next()
	if err != nil {
		return nil, wrapErr(CBORNotWellFormed, "reading signature", err)
	}
	if sigItem.Type != cbor.TypeBytes {
		return nil, newErr(Sign1Format, "signature is not a byte string")
	}
	signature := sigItem.Bytes

	hash, err := computeTBSHash(protectedHeaders.AlgID, protectedBstr, payload)
	if err != nil {
		return nil, err
	}

	scKid := ShortCircuitKid()
	if len(scKid) > 0 && bytes.Equal(unprotectedHeaders.Kid, scKid) {
		if opts&AllowShortCircuit == 0 {
			return nil, newErr(ShortCircuitSig, "short-circuit kid observed but AllowShortCircuit not set")
		}
		if err := verifyShortCircuit(hash, signature); err != nil {
			return nil, err
		}
		return payload, nil
	}

	if err := verifier.Verify(protectedHeaders.AlgID, key, unprotectedHeaders.Kid, hash, signature); err != nil {
		if ve, ok := err.(*VerifyError); ok {
			return nil, ve
		}
		return nil, wrapErr(SigVerify, "Verifier rejected signature", err)
	}
	return payload, nil
}
