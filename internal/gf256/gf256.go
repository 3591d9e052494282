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

// Package gf256 implements arithmetic over the finite field GF(2^8), with
// bytes as field elements, addition as XOR, and multiplication modulo the
// irreducible polynomial x^8 + x^4 + x^3 + x + 1 (0x11b).
//
// Operands include secret bytes and the random coefficients masking them,
// so both Mul and Div run in constant time with respect to their inputs:
// no data-dependent branches and no table lookups whose addresses depend on
// operand values. The one exception is the divide-by-zero check in Div,
// whose condition is a caller programming error rather than a secret.
package gf256

import "errors"

// irreducible polynomial (x^8 + x^4 + x^3 + x + 1)
// (x^8 + x^4 + x^3 + x + 1) = {0x01 0x1B}
// we deal with uint8 so we only need 0x1B
const irreduciblePolynomial = 0x1B

// ErrDivideByZero is returned by Div when the divisor is zero, which has no
// multiplicative inverse in the field.
var ErrDivideByZero = errors.New("gf256: divide by zero")

// Mul returns the product of a and b in GF(2^8).
//
// This function tries to defend against side-channel attacks
// (timing, cache), hence avoiding pre-computed tables and branches.
func Mul(a, b byte) byte {
	var product byte

	// Similar steps to:
	// https://en.wikipedia.org/wiki/Finite_field_arithmetic#Multiplication
	// This code avoids branching by negating values (ex: `-foo`)
	// negating values produces a mask of either all zeros or ones
	// which allows AND operations without branching.
	//
	// All 8 rounds run regardless of the operand values.
	for i := 7; i >= 0; i-- {

		// if MSB in current product is set, mod is irreduciblePolynomial, else 0
		mod := (-(product >> 7)) & irreduciblePolynomial

		// multiply coefficient a[i] with every coefficient in b
		aiTimesB := -((a >> i) & 1) & b

		// reduce the multiplication by irreduciblePolynomial if MSB in product
		// was set and left shift product
		product = aiTimesB ^ mod ^ (product << 1)
	}
	return product
}

// Div returns a divided by b in GF(2^8), i.e. the product of a and the
// multiplicative inverse of b. Div(0, b) is 0 for any nonzero b.
//
// The inverse is found by scanning every candidate element and accumulating,
// via an equality mask, the one whose product with b is 1. The scan always
// covers all 256 candidates; an early exit would leak the divisor's value
// through timing.
func Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}

	var inv byte
	for i := 0; i < 256; i++ {
		c := byte(i)
		inv |= c & eqMask(Mul(c, b), 1)
	}

	return Mul(inv, a), nil
}

// eqMask returns 0xff if a == b and 0x00 otherwise, without branching.
func eqMask(a, b byte) byte {
	return byte((uint16(a^b) - 1) >> 8)
}
