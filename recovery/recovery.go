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

// Package recovery backs up a passphrase as threshold shares, each itself a
// passphrase, and restores it from those shares.
//
// A 12 or 24 word passphrase encodes a 16 or 32 byte secret. Backup splits that
// secret with Shamir's scheme over GF(2^8); every share is one identifier byte
// longer than the secret and is therefore written as 13 or 25 words. Restore
// reverses the process.
package recovery

import (
	"fmt"
	"io"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/shamir"
	"github.com/codeandplay/passphrase-backup/mnemonic"
	glog "github.com/golang/glog"
)

// DefaultShares and DefaultThreshold are the share count and threshold used by the
// command line tool when none are configured.
const (
	DefaultShares    = 5
	DefaultThreshold = 3
)

type options struct {
	verifyChecksum bool
	threshold      int
	rand           io.Reader
}

// Option configures Backup and Restore.
type Option func(*options)

// WithChecksumVerification makes Backup verify the checksum of the original
// passphrase and Restore verify the checksum of every share.
func WithChecksumVerification(verify bool) Option {
	return func(o *options) {
		o.verifyChecksum = verify
	}
}

// WithThreshold tells Restore the threshold used at backup time. Restore then
// rejects fewer shares and cross-checks any extra ones. A threshold of 0 disables
// the check; a negative one is an error.
func WithThreshold(threshold int) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithRandom overrides the random source used by Backup. Only for tests.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		o.rand = r
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func isOriginalLength(n int) bool { return n == 12 || n == 24 }

func isShareLength(n int) bool { return n == 13 || n == 25 }

// Backup splits the passphrase words into numShares share passphrases, any
// threshold of which restore it. Shares are returned in identifier order 1..n.
func Backup(words []string, numShares, threshold int, opts ...Option) ([][]string, error) {
	if numShares <= threshold {
		return nil, fmt.Errorf("%w: got %d shares with threshold %d", ErrShareCount, numShares, threshold)
	}
	if !isOriginalLength(len(words)) {
		return nil, fmt.Errorf("%w: passphrase should be 12 or 24 words, got %d", mnemonic.ErrInvalidWordCount, len(words))
	}
	o := newOptions(opts)

	p, err := mnemonic.FromWords(words)
	if err != nil {
		return nil, err
	}
	defer p.Wipe()
	if o.verifyChecksum {
		if err := p.Verify(); err != nil {
			return nil, err
		}
	}
	secret, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	var splitOpts []shamir.Option
	if o.rand != nil {
		splitOpts = append(splitOpts, shamir.WithRandom(o.rand))
	}
	shares, err := shamir.Split(secret, numShares, threshold, splitOpts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, s := range shares {
			clear(s)
		}
	}()

	out := make([][]string, len(shares))
	for i, s := range shares {
		sp, err := mnemonic.FromBytes(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode share %d: %w", i+1, err)
		}
		out[i], err = sp.Words()
		sp.Wipe()
		if err != nil {
			return nil, fmt.Errorf("failed to encode share %d: %w", i+1, err)
		}
	}
	glog.V(1).Infof("Split a %d word passphrase into %d shares of %d words with threshold %d", len(words), len(out), len(out[0]), threshold)
	return out, nil
}

// Restore combines share passphrases into the original passphrase words.
//
// Without WithThreshold the caller must supply at least as many shares as the
// threshold used by Backup: fewer shares produce a wrong passphrase, not an error.
func Restore(shareWords [][]string, opts ...Option) ([]string, error) {
	if len(shareWords) == 0 {
		return nil, fmt.Errorf("%w: no shares provided", shamir.ErrRecovery)
	}
	o := newOptions(opts)
	if o.threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative, got %d", ErrInsufficientShares, o.threshold)
	}
	if o.threshold > 0 && len(shareWords) < o.threshold {
		return nil, fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientShares, o.threshold, len(shareWords))
	}

	shares := make([]shamir.Share, 0, len(shareWords))
	defer func() {
		for _, s := range shares {
			clear(s)
		}
	}()
	for i, words := range shareWords {
		if !isShareLength(len(words)) {
			return nil, fmt.Errorf("%w: share %d should be 13 or 25 words, got %d", mnemonic.ErrInvalidWordCount, i+1, len(words))
		}
		s, err := decodeShare(words, o.verifyChecksum)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		shares = append(shares, s)
	}

	var secret []byte
	var err error
	if o.threshold > 0 {
		secret, err = shamir.Verify(shares, o.threshold)
	} else {
		secret, err = shamir.Combine(shares)
	}
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	p, err := mnemonic.FromBytes(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recovered secret: %w", err)
	}
	defer p.Wipe()
	words, err := p.Words()
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("Restored a %d word passphrase from %d shares", len(words), len(shares))
	return words, nil
}

func decodeShare(words []string, verify bool) (shamir.Share, error) {
	p, err := mnemonic.FromWords(words)
	if err != nil {
		return nil, err
	}
	defer p.Wipe()
	if verify {
		if err := p.Verify(); err != nil {
			return nil, err
		}
	}
	b, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	return shamir.Share(b), nil
}
