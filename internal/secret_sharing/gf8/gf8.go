// Copyright 2024 Google LLC
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

// Package gf8 implements arithmetic in the finite field GF(2^8).
//
// Elements are bytes. Addition and subtraction are XOR. Multiplication is reduced by
// the irreducible polynomial x^8 + x^4 + x^3 + x + 1 and is computed through
// precomputed logarithm and antilogarithm tables over the generator 3.
package gf8

import "errors"

// irreducible polynomial (x^8 + x^4 + x^3 + x + 1)
// (x^8 + x^4 + x^3 + x + 1) = {0x01 0x1B}
const irreduciblePolynomial = 0x11B

const generator = 3

// order is the size of the multiplicative group.
const order = 255

// ErrZeroInverse is returned when inverting or dividing by zero.
var ErrZeroInverse = errors.New("inverse of zero is not defined")

var (
	// expTable[i] = generator^i. It covers two full periods so that the sum of two
	// logarithms can index it without a modulo.
	expTable [2 * order]byte
	// logTable[x] = log_generator(x) for x != 0. logTable[0] is unused.
	logTable [256]byte
)

func init() {
	x := 1
	for i := 0; i < order; i++ {
		expTable[i] = byte(x)
		expTable[i+order] = byte(x)
		logTable[x] = byte(i)
		// x * 3 = (x * 2) + x
		x ^= x << 1
		if x&0x100 != 0 {
			x ^= irreduciblePolynomial
		}
	}
}

// Element is an element of GF(2^8).
type Element byte

// Add element `a` and returns a new element in GF(2^8).
func (e Element) Add(a Element) Element {
	return e ^ a
}

// Subtract element `a` and returns a new element in GF(2^8).
func (e Element) Subtract(a Element) Element {
	return e.Add(a)
}

// Multiply by element `a` and returns a new element.
func (e Element) Multiply(a Element) Element {
	if e == 0 || a == 0 {
		return 0
	}
	return Element(expTable[int(logTable[e])+int(logTable[a])])
}

// Inverse returns the multiplicative inverse of the element.
func (e Element) Inverse() (Element, error) {
	if e == 0 {
		return 0, ErrZeroInverse
	}
	return Element(expTable[order-int(logTable[e])]), nil
}

// Divide returns e / a.
func (e Element) Divide(a Element) (Element, error) {
	inv, err := a.Inverse()
	if err != nil {
		return 0, err
	}
	return e.Multiply(inv), nil
}

