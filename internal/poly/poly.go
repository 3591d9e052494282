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

// Package poly implements polynomial operations over GF(2^8): generating
// random polynomials with a fixed constant term, evaluating them at field
// points, and recovering the constant term from a set of samples via
// Lagrange interpolation.
//
// The constant term is the polynomial's value at x=0. Some historical
// variants of byte-oriented secret sharing encode the secret at a nonzero
// x instead; this package standardizes on x=0.
package poly

import (
	"errors"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/sss/internal/gf256"
)

// ErrDuplicatePoint is returned by InterpolateAtZero when two input points
// share an x-coordinate.
var ErrDuplicatePoint = errors.New("poly: duplicate x-coordinate")

// Point is a sample (X, f(X)) of a polynomial over GF(2^8).
type Point struct {
	X byte
	Y byte
}

// Eval evaluates the polynomial at the field point x using Horner's method.
// Coefficient i of p corresponds to degree i, so p[0] is the constant term.
//
// Only field multiplication and XOR are involved, so evaluation is constant
// time with respect to the coefficient values.
func Eval(p []byte, x byte) byte {
	var res byte
	for i := len(p) - 1; i >= 0; i-- {
		res = gf256.Mul(res, x) ^ p[i]
	}
	return res
}

// Generate produces a random polynomial of exactly the given degree whose
// value at x=0 is intercept. The leading coefficient is redrawn from rnd
// until it is nonzero; a zero leading coefficient would silently lower the
// effective degree, and with it the secrecy threshold it encodes.
//
// rnd must yield cryptographically secure bytes (crypto/rand.Reader in
// production). A read failure is returned as-is: proceeding with
// predictable coefficients would void the scheme's security, so no
// fallback source is ever substituted.
func Generate(degree int, intercept byte, rnd io.Reader) ([]byte, error) {
	if degree < 0 {
		return nil, fmt.Errorf("poly: degree must be non-negative, got %d", degree)
	}

	p := make([]byte, degree+1)
	p[0] = intercept
	if degree == 0 {
		return p, nil
	}

	if _, err := io.ReadFull(rnd, p[1:degree]); err != nil {
		return nil, fmt.Errorf("poly: reading random coefficients: %w", err)
	}

	// Redraw the leading coefficient until nonzero. The iteration count
	// depends only on the random draws, never on the intercept.
	for {
		if _, err := io.ReadFull(rnd, p[degree:]); err != nil {
			return nil, fmt.Errorf("poly: reading leading coefficient: %w", err)
		}
		if p[degree] != 0 {
			return p, nil
		}
	}
}

// InterpolateAtZero returns the value at x=0 of the unique minimal-degree
// polynomial passing through the given points, computed by Lagrange
// interpolation. The x-coordinates must be pairwise distinct.
//
// Given fewer points than the polynomial's original degree requires, the
// result is still a byte, just not the right one; an insufficient sample
// set is indistinguishable from a correct one by construction.
func InterpolateAtZero(points []Point) (byte, error) {
	var value byte
	for i, a := range points {
		weight := byte(1)
		for j, b := range points {
			if i == j {
				continue
			}
			if a.X == b.X {
				return 0, fmt.Errorf("%w: %d", ErrDuplicatePoint, a.X)
			}
			// Subtraction in GF(2^8) is XOR, and the numerator is
			// 0 XOR b.X since we evaluate at zero.
			factor, err := gf256.Div(b.X, a.X^b.X)
			if err != nil {
				return 0, err
			}
			weight = gf256.Mul(weight, factor)
		}
		value ^= gf256.Mul(weight, a.Y)
	}
	return value, nil
}
