// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cose

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
)

// Verifier checks a COSE_Sign1 signature against a pre-computed
// Sig_structure hash. key is whatever opaque public-key handle the caller
// passed to [Verify]; kid is the unprotected header's key identifier, given
// so a Verifier backed by a key store can pick the right key itself.
//
// Implementations must not treat a nil error as success without actually
// checking the signature: Verify calls a Verifier only on the non-debug
// path, so a Verifier that always returns nil defeats this package's
// purpose.
type Verifier interface {
	Verify(algID int64, key any, kid, hash, signature []byte) error
}

// ECDSAVerifier verifies ECDSA signatures (COSE algorithms ES256, ES384,
// ES512) against an *ecdsa.PublicKey, decoding the signature as the
// concatenated, left-zero-padded R and S values specified by RFC 8152
// section 8.1. It is the [DefaultVerifier].
type ECDSAVerifier struct{}

func (ECDSAVerifier) Verify(algID int64, key any, kid, hash, signature []byte) error {
	if _, err := cryptoHash(algID); err != nil {
		return err
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("cose: key must be *ecdsa.PublicKey for algorithm %d, got %T", algID, key)
	}
	n := (pub.Params().N.BitLen() + 7) / 8
	if len(signature) != 2*n {
		return fmt.Errorf("cose: signature is %d bytes, want %d for curve %s", len(signature), 2*n, pub.Params().Name)
	}
	r := new(big.Int).SetBytes(signature[:n])
	s := new(big.Int).SetBytes(signature[n:])
	if !ecdsa.Verify(pub, hash, r, s) {
		return newErr(SigVerify, "ECDSA signature did not verify")
	}
	return nil
}

// DefaultVerifier is the Verifier used by [Verify]. It is overridable via
// [VerifyWith] for tests or for algorithms this package does not implement
// directly.
var DefaultVerifier Verifier = ECDSAVerifier{}
