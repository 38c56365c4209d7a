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

// Package shamir performs t-of-n [Shamir Secret Sharing] (SSS) on byte secrets
// over GF(2^8). Each byte of the secret is shared independently with its own random
// polynomial.
//
// A Share is laid out as one identifier byte (the x coordinate, 1..n) followed by one
// evaluation per secret byte, so shares are exactly one byte longer than the secret.
//
// This scheme is secure under the following assumptions:
//   - The scheme requires a trusted dealer to generate the shares.
//   - The scheme assumes a passive adversary which can observe fewer than t shares.
//     It does not detect a participant supplying a chosen or corrupted share.
//     Examples of this attack: https://crypto.stackexchange.com/q/41994/76875
//
// [Shamir Secret Sharing]: https://web.mit.edu/6.857/OldStuff/Fall03/ref/Shamir-HowToShareAsecrets.pdf
package shamir

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/gf8"
	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/polynomial"
)

// MaxShares is the largest number of shares: x coordinates are non-zero bytes.
const MaxShares = 255

var (
	// ErrThreshold is returned when the share count and threshold do not describe a
	// usable scheme, in particular when numShares <= threshold.
	ErrThreshold = errors.New("number of shares must be greater than the threshold")

	// ErrRecovery is returned when shares cannot be combined.
	ErrRecovery = errors.New("failed to recover secret from shares")

	// ErrInconsistentShares is returned by Verify when different subsets of the shares
	// reconstruct different secrets.
	ErrInconsistentShares = fmt.Errorf("%w: shares are inconsistent", ErrRecovery)
)

// Share is one share of a split secret: [x] ++ [f_0(x), f_1(x), ...].
type Share []byte

// X returns the identifier of the share.
func (s Share) X() byte {
	return s[0]
}

// Value returns the evaluations carried by the share.
func (s Share) Value() []byte {
	return s[1:]
}

type options struct {
	rand io.Reader
}

// Option configures Split.
type Option func(*options)

// WithRandom sets the source for polynomial coefficients. It must be
// cryptographically secure outside of tests. The default is crypto/rand.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.rand = r
	}
}

// Split splits secret into numShares shares, any threshold of which reconstruct it.
// Shares are returned in order of their identifiers 1..numShares.
func Split(secret []byte, numShares, threshold int, opts ...Option) ([]Share, error) {
	if err := validateSplitInput(secret, numShares, threshold); err != nil {
		return nil, err
	}
	o := options{rand: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}

	shares := make([]Share, numShares)
	for i := range shares {
		shares[i] = make(Share, 1, len(secret)+1)
		shares[i][0] = byte(i + 1)
	}

	// For each secret byte we build a polynomial of degree threshold - 1 with the byte
	// as constant term, then evaluate it at every share's x:
	// shares[0] = [ 1, F1(1), F2(1), ..., FN(1) ]
	// shares[1] = [ 2, F1(2), F2(2), ..., FN(2) ]
	for _, b := range secret {
		p, err := polynomial.Random(gf8.Element(b), threshold-1, o.rand)
		if err != nil {
			return nil, fmt.Errorf("failed to build polynomial: %w", err)
		}
		for i := range shares {
			y := p.Evaluate(gf8.Element(shares[i].X()))
			shares[i] = append(shares[i], byte(y))
		}
		p.Wipe()
	}
	return shares, nil
}

// Combine reconstructs a secret from shares by Lagrange interpolation at zero.
//
// The number of shares must meet the threshold used by [Split]. With fewer shares,
// Combine returns a wrong secret without error: the arithmetic cannot tell the
// difference. Combine will not detect bogus or corrupted shares either.
func Combine(shares []Share) ([]byte, error) {
	if err := validateCombineInput(shares); err != nil {
		return nil, err
	}
	xVals := make([]gf8.Element, len(shares))
	for i, s := range shares {
		xVals[i] = gf8.Element(s.X())
	}
	// The Lagrange coefficients only depend on the x values, so they are shared by
	// every byte position.
	coefficients, err := polynomial.LagrangeCoefficients(xVals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecovery, err)
	}

	secretLen := len(shares[0]) - 1
	secret := make([]byte, secretLen)
	yVals := make([]gf8.Element, len(shares))
	for i := 0; i < secretLen; i++ {
		for j, s := range shares {
			yVals[j] = gf8.Element(s.Value()[i])
		}
		v, err := polynomial.Interpolate(coefficients, yVals)
		if err != nil {
			clear(secret)
			return nil, fmt.Errorf("%w: %w", ErrRecovery, err)
		}
		secret[i] = byte(v)
	}
	clear(yVals)
	return secret, nil
}

// Verify combines shares in windows of threshold consecutive shares and checks that
// every window yields the same secret, which it returns. It needs at least threshold
// shares; with exactly threshold shares it is equivalent to Combine.
func Verify(shares []Share, threshold int) ([]byte, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1, got %d", ErrRecovery, threshold)
	}
	if len(shares) < threshold {
		return nil, fmt.Errorf("%w: not enough shares to reconstruct the secret, need at least %d, got %d", ErrRecovery, threshold, len(shares))
	}
	// Check the whole set up front so duplicate identifiers in different windows are
	// reported as such rather than as an inconsistency.
	if err := validateCombineInput(shares); err != nil {
		return nil, err
	}
	secret, err := Combine(shares[:threshold])
	if err != nil {
		return nil, err
	}
	for start := 1; start+threshold <= len(shares); start++ {
		other, err := Combine(shares[start : start+threshold])
		if err != nil {
			clear(secret)
			return nil, err
		}
		equal := bytes.Equal(secret, other)
		clear(other)
		if !equal {
			clear(secret)
			return nil, fmt.Errorf("%w: shares %d..%d disagree with shares 1..%d", ErrInconsistentShares, start+1, start+threshold, threshold)
		}
	}
	return secret, nil
}

func validateSplitInput(secret []byte, numShares, threshold int) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: secret must not be empty", ErrThreshold)
	}
	if threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrThreshold, threshold)
	}
	if numShares <= threshold {
		return fmt.Errorf("%w: got %d shares with threshold %d", ErrThreshold, numShares, threshold)
	}
	if numShares > MaxShares {
		return fmt.Errorf("%w: at most %d shares are supported, got %d", ErrThreshold, MaxShares, numShares)
	}
	return nil
}

func validateCombineInput(shares []Share) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: no shares provided", ErrRecovery)
	}
	size := len(shares[0])
	seen := make(map[byte]bool, len(shares))
	for i, s := range shares {
		if len(s) < 2 {
			return fmt.Errorf("%w: share %d is too short (%d bytes)", ErrRecovery, i+1, len(s))
		}
		if len(s) != size {
			return fmt.Errorf("%w: share %d has length %d, want %d", ErrRecovery, i+1, len(s), size)
		}
		if s.X() == 0 {
			return fmt.Errorf("%w: share %d has invalid identifier 0", ErrRecovery, i+1)
		}
		if seen[s.X()] {
			return fmt.Errorf("%w: duplicate share identifier %d", ErrRecovery, s.X())
		}
		seen[s.X()] = true
	}
	return nil
}
