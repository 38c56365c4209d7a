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

// Package polynomial evaluates and interpolates polynomials over GF(2^8).
package polynomial

import (
	"errors"
	"fmt"
	"io"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/gf8"
)

var (
	// ErrNoPoints is returned when interpolating without any point.
	ErrNoPoints = errors.New("no points to interpolate")
	// ErrZeroX is returned when a point has x = 0, which would reveal the intercept.
	ErrZeroX = errors.New("x coordinate must not be zero")
	// ErrDuplicateX is returned when two points share an x coordinate.
	ErrDuplicateX = errors.New("all points should be unique")
)

// Polynomial holds coefficients in ascending order of degree:
// f(x) = p[0] + p[1] * x + ... + p[n-1] * x^(n-1)
type Polynomial []gf8.Element

// Random returns a polynomial of the given degree with constant term intercept.
// The other coefficients are read from r and are uniform over the whole field,
// zero included.
func Random(intercept gf8.Element, degree int, r io.Reader) (Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must not be negative, got %d", degree)
	}
	buf := make([]byte, degree)
	defer clear(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read random coefficients: %w", err)
	}
	p := make(Polynomial, degree+1)
	p[0] = intercept
	for i, b := range buf {
		p[i+1] = gf8.Element(b)
	}
	return p, nil
}

// Evaluate returns f(x) using Horner's rule.
func (p Polynomial) Evaluate(x gf8.Element) gf8.Element {
	var sum gf8.Element
	for i := len(p) - 1; i > 0; i-- {
		sum = sum.Add(p[i]).Multiply(x)
	}
	if len(p) == 0 {
		return sum
	}
	return sum.Add(p[0])
}

// Wipe zeroes the coefficients.
func (p Polynomial) Wipe() {
	clear(p)
}

// LagrangeCoefficients returns, for each x[i], the basis value at zero:
// ∏j={1,n,j≠i} ( x[j] / ( x[j] - x[i] ) )
// The coefficients depend only on the x coordinates, so they can be reused for
// every byte position of a share.
func LagrangeCoefficients(x []gf8.Element) ([]gf8.Element, error) {
	if len(x) == 0 {
		return nil, ErrNoPoints
	}
	out := make([]gf8.Element, len(x))
	for i := range x {
		if x[i] == 0 {
			return nil, ErrZeroX
		}
		out[i] = 1
		for j := range x {
			if i == j {
				continue
			}
			if x[i] == x[j] {
				return nil, fmt.Errorf("%w: x = %d", ErrDuplicateX, x[i])
			}
			term, err := x[j].Divide(x[j].Subtract(x[i]))
			if err != nil {
				return nil, err
			}
			out[i] = out[i].Multiply(term)
		}
	}
	return out, nil
}

// Interpolate returns f(0) for the polynomial through the points whose Lagrange
// coefficients are lagCoeff and whose y coordinates are yVals:
// ∑i={1,n} y[i] * lagrange_coefficient[i]
func Interpolate(lagCoeff []gf8.Element, yVals []gf8.Element) (gf8.Element, error) {
	if len(lagCoeff) != len(yVals) {
		return 0, fmt.Errorf("got %d lagrange coefficients for %d points", len(lagCoeff), len(yVals))
	}
	var sum gf8.Element
	for i, y := range yVals {
		sum = sum.Add(y.Multiply(lagCoeff[i]))
	}
	return sum, nil
}
