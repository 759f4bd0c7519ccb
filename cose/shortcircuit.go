// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

//go:build !nosc

package cose

import "crypto/subtle"

// shortCircuitKid is the well-known unprotected "kid" that identifies a
// short-circuit signature: one whose signature bytes are simply the TBS
// hash itself, with no asymmetric cryptography involved. It exists purely
// for testing pipelines that generate COSE_Sign1 messages without a real
// signing key, and is never produced by this package.
var shortCircuitKid = []byte("cose-verify/short-circuit-kid-v1")

// ShortCircuitKid returns the unprotected "kid" value [Verify] treats as a
// short-circuit signature when [AllowShortCircuit] is set. Building with
// the "nosc" tag removes the short-circuit code path entirely, and this
// function then returns nil.
func ShortCircuitKid() []byte { return shortCircuitKid }

func verifyShortCircuit(hash, signature []byte) error {
	if len(hash) == 0 || len(signature) != len(hash) {
		return newErr(SigVerify, "short-circuit signature length does not match hash length")
	}
	if subtle.ConstantTimeCompare(signature, hash) != 1 {
		return newErr(SigVerify, "short-circuit signature does not match TBS hash")
	}
	return nil
}
