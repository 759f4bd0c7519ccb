// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Command cosecheck verifies a COSE_Sign1 message against an EC public key
// and prints the enclosed payload on success.
package main

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/coseverify/sign1/cose"
)

var checkFlags = flag.NewFlagSet("cosecheck", flag.ContinueOnError)

var (
	keyPath           string
	messagePath       string
	outPath           string
	requireKid        bool
	allowShortCircuit bool
	verbose           bool
)

func init() {
	checkFlags.StringVar(&keyPath, "key", "", "path to a PEM-encoded EC public key (PKIX)")
	checkFlags.StringVar(&messagePath, "message", "", "path to the COSE_Sign1 message, or - for stdin")
	checkFlags.StringVar(&outPath, "out", "-", "where to write the verified payload, or - for stdout")
	checkFlags.BoolVar(&requireKid, "require-kid", false, "reject messages with no unprotected kid")
	checkFlags.BoolVar(&allowShortCircuit, "allow-short-circuit", false, "accept the well-known short-circuit debug signature")
	checkFlags.BoolVar(&verbose, "v", false, "enable debug logging")
}

func main() {
	if err := checkFlags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if verbose {
		level.Set(slog.LevelDebug)
	}
	if messagePath == "" {
		fmt.Fprintln(os.Stderr, "cosecheck: -message is required")
		os.Exit(2)
	}

	key, err := loadPublicKey(keyPath)
	if err != nil {
		slog.Error("loading public key", "error", err)
		os.Exit(1)
	}

	message, err := readAll(messagePath)
	if err != nil {
		slog.Error("reading message", "error", err)
		os.Exit(1)
	}

	var opts cose.Options
	if requireKid {
		opts |= cose.RequireKid
	}
	if allowShortCircuit {
		opts |= cose.AllowShortCircuit
	}

	payload, err := cose.Verify(opts, key, message)
	if err != nil {
		slog.Error("verification failed", "error", err)
		os.Exit(1)
	}
	slog.Debug("verification succeeded", "payload_len", len(payload))

	if err := writeAll(outPath, payload); err != nil {
		slog.Error("writing payload", "error", err)
		os.Exit(1)
	}
}

func loadPublicKey(path string) (*ecdsa.PublicKey, error) {
	if path == "" {
		return nil, fmt.Errorf("-key is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s does not contain PEM data", path)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing PKIX public key: %w", err)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s is a %T, not an EC public key", path, pub)
	}
	return ecPub, nil
}

func readAll(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeAll(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
