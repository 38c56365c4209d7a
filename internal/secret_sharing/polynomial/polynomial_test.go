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

package polynomial_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/gf8"
	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/polynomial"
	"github.com/google/go-cmp/cmp"
)

func TestEvaluate(t *testing.T) {
	// f(x) = 7 + 3x + x^2
	p := polynomial.Polynomial{7, 3, 1}
	for _, tc := range []struct {
		x    gf8.Element
		want gf8.Element
	}{
		{x: 0, want: 7},
		// 7 ^ 3 ^ 1
		{x: 1, want: 5},
		// 7 ^ (3*2 = 6) ^ (2*2 = 4)
		{x: 2, want: 5},
	} {
		if got := p.Evaluate(tc.x); got != tc.want {
			t.Errorf("Evaluate(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
	if got := (polynomial.Polynomial{}).Evaluate(9); got != 0 {
		t.Errorf("empty Evaluate() = %d, want 0", got)
	}
}

func TestRandom(t *testing.T) {
	r := bytes.NewReader([]byte{0, 9, 200})
	p, err := polynomial.Random(42, 3, r)
	if err != nil {
		t.Fatalf("Random() err = %v, want nil", err)
	}
	if diff := cmp.Diff(polynomial.Polynomial{42, 0, 9, 200}, p); diff != "" {
		t.Errorf("Random() returned diff (-want +got):\n%s", diff)
	}
}

func TestRandomShortReaderFails(t *testing.T) {
	if _, err := polynomial.Random(1, 4, bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatalf("Random() err = nil, want error")
	}
}

func TestRandomNegativeDegreeFails(t *testing.T) {
	if _, err := polynomial.Random(1, -1, bytes.NewReader(nil)); err == nil {
		t.Fatalf("Random() err = nil, want error")
	}
}

func TestInterpolateRecoversIntercept(t *testing.T) {
	p := polynomial.Polynomial{0xAB, 0x11, 0xFE, 0x03}
	xs := []gf8.Element{1, 7, 0x80, 0xFF}
	ys := make([]gf8.Element, len(xs))
	for i, x := range xs {
		ys[i] = p.Evaluate(x)
	}
	coeff, err := polynomial.LagrangeCoefficients(xs)
	if err != nil {
		t.Fatal(err)
	}
	got, err := polynomial.Interpolate(coeff, ys)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xAB {
		t.Errorf("Interpolate() = %d, want %d", got, 0xAB)
	}
}

func TestLagrangeCoefficientsSinglePoint(t *testing.T) {
	coeff, err := polynomial.LagrangeCoefficients([]gf8.Element{5})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]gf8.Element{1}, coeff); diff != "" {
		t.Errorf("LagrangeCoefficients() returned diff (-want +got):\n%s", diff)
	}
}

func TestLagrangeCoefficientsErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		x    []gf8.Element
		want error
	}{
		{name: "empty", x: nil, want: polynomial.ErrNoPoints},
		{name: "zero", x: []gf8.Element{1, 0}, want: polynomial.ErrZeroX},
		{name: "duplicate", x: []gf8.Element{3, 4, 3}, want: polynomial.ErrDuplicateX},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := polynomial.LagrangeCoefficients(tc.x); !errors.Is(err, tc.want) {
				t.Fatalf("LagrangeCoefficients() err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInterpolateLengthMismatchFails(t *testing.T) {
	if _, err := polynomial.Interpolate([]gf8.Element{1, 2}, []gf8.Element{1}); err == nil {
		t.Fatalf("Interpolate() err = nil, want error")
	}
}
