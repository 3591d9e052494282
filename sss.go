// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sss implements k-of-n Shamir Secret Sharing over GF(2^8) for
// arbitrary-length secrets. A secret is split byte-by-byte: each byte
// becomes the constant term of a fresh random polynomial of degree k-1, and
// share i holds the evaluations of every per-byte polynomial at x=i.
// Any k shares determine the polynomials' constant terms via Lagrange
// interpolation; fewer than k shares determine nothing.
//
// This scheme is secure under the following assumptions:
//   - The scheme requires a trusted dealer to generate the shares.
//     Participants must trust the dealer with access to the secret and to
//     properly generate the shares.
//   - The scheme assumes a passive adversary which can observe (n - k)
//     shares without being able to reconstruct the secret, but which isn't
//     allowed to participate in reconstruction by providing a chosen share.
//
// Combine cannot detect bogus, corrupted, or insufficient shares: it always
// produces output, and wrong inputs produce silently wrong output. Callers
// who need integrity must layer it on separately; see the shares package.
package sss

import (
	"errors"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/sss/internal/poly"
)

// MaxShares is the largest number of shares a secret can be split into,
// bounded by the count of nonzero elements in GF(2^8). Share ID 0 is
// reserved: a polynomial's value at x=0 is the secret byte itself.
const MaxShares = 255

var (
	// ErrNoShares is returned by Combine when the share map is empty.
	ErrNoShares = errors.New("sss: no shares provided")

	// ErrShareLength is returned by Combine when the provided shares are
	// not all the same length.
	ErrShareLength = errors.New("sss: mismatched share lengths")

	// ErrZeroShareID is returned by Combine when a share carries the
	// reserved ID 0.
	ErrZeroShareID = errors.New("sss: share ID 0 is reserved")
)

// Split splits secret into n shares, any k of which are sufficient to
// reconstruct it with Combine. Returns a map of share IDs (1 through n) to
// share values, each the same length as the secret.
//
// rnd must be a cryptographically secure source of random bytes, such as
// crypto/rand.Reader; its failure aborts the split.
func Split(n, k byte, secret []byte, rnd io.Reader) (map[byte][]byte, error) {
	if k < 1 {
		return nil, fmt.Errorf("sss: threshold must be at least 1")
	}
	if k > n {
		return nil, fmt.Errorf("sss: threshold %d larger than share count %d", k, n)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("sss: secret must not be empty")
	}

	// One polynomial per secret byte, with the byte as its constant term.
	polys := make([][]byte, len(secret))
	for i, b := range secret {
		p, err := poly.Generate(int(k)-1, b, rnd)
		if err != nil {
			return nil, fmt.Errorf("sss: generating polynomial: %w", err)
		}
		polys[i] = p
	}

	shares := make(map[byte][]byte, n)
	for id := 1; id <= int(n); id++ {
		share := make([]byte, len(secret))
		for i, p := range polys {
			share[i] = poly.Eval(p, byte(id))
		}
		shares[byte(id)] = share
	}
	return shares, nil
}

// Combine reconstructs a secret from a map of share IDs to share values, as
// produced by Split. The shares must all be the same length and the map
// must be non-empty.
//
// There is no way to know whether reconstruction succeeded: if the shares
// are fewer than the threshold used to split, or any of them has been
// tampered with, Combine returns a wrong secret rather than an error.
func Combine(shares map[byte][]byte) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}

	length := -1
	for id, share := range shares {
		if id == 0 {
			return nil, ErrZeroShareID
		}
		if length == -1 {
			length = len(share)
		} else if len(share) != length {
			return nil, fmt.Errorf("%w: %d and %d", ErrShareLength, length, len(share))
		}
	}

	secret := make([]byte, length)
	points := make([]poly.Point, 0, len(shares))
	for i := range secret {
		points = points[:0]
		for id, share := range shares {
			points = append(points, poly.Point{X: id, Y: share[i]})
		}
		b, err := poly.InterpolateAtZero(points)
		if err != nil {
			return nil, fmt.Errorf("sss: interpolating byte %d: %w", i, err)
		}
		secret[i] = b
	}
	return secret, nil
}
