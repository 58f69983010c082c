// Copyright (c) 2025 The ssfrontend Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security protects the session credential at rest and inspects
// bearer tokens.
//
// # Key Types
//
//   - Sealer: AES-256-GCM sealing of small secrets with an "ENC:" prefix.
//     Keys come from a passphrase (PBKDF2-SHA-256 with a stored salt) or from
//     a random key file.
//
// # Key Functions
//
//   - TokenExpiry / TokenExpired: read the exp claim of a JWT bearer token
//     without verifying it, so an expired session is discarded before use
//
// # Usage
//
//	s, err := security.NewPassphraseSealer(pass, saltPath)
//	sealed, _ := s.Seal(token)   // "ENC:..."
//	plain, _ := s.Open(sealed)
//
//	if security.TokenExpired(token, time.Now()) {
//	    // treat as logged out
//	}
package security
