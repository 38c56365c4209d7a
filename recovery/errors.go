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

package recovery

import (
	"errors"
	"fmt"

	"github.com/codeandplay/passphrase-backup/internal/secret_sharing/shamir"
	"github.com/codeandplay/passphrase-backup/mnemonic"
	"github.com/codeandplay/passphrase-backup/wordlist"
)

var (
	// ErrShareCount is returned by Backup when the number of shares to create is not
	// greater than the threshold. It also matches shamir.ErrThreshold.
	ErrShareCount = fmt.Errorf("%w: number of shares to create must be greater than required minimum number of shares to recover", shamir.ErrThreshold)

	// ErrInsufficientShares is returned by Restore when fewer shares than the
	// configured threshold are supplied. It also matches shamir.ErrRecovery.
	ErrInsufficientShares = fmt.Errorf("%w: not enough shares", shamir.ErrRecovery)
)

// Category groups errors by who has to act on them.
type Category int

const (
	// CategoryUnknown is any error not produced by this module.
	CategoryUnknown Category = iota
	// CategoryInput is a mistake in the supplied words: an unknown word, a wrong word
	// count or a bad checksum.
	CategoryInput
	// CategoryScheme is an unusable share count and threshold combination.
	CategoryScheme
	// CategoryReconstruction is a set of shares that cannot be combined.
	CategoryReconstruction
	// CategoryInternal is a broken invariant, i.e. a bug.
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryInput:
		return "input"
	case CategoryScheme:
		return "scheme"
	case CategoryReconstruction:
		return "reconstruction"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Classify returns the category of err.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, mnemonic.ErrInternal), errors.Is(err, wordlist.ErrIndexOutOfRange):
		return CategoryInternal
	case errors.Is(err, mnemonic.ErrInvalidWordCount),
		errors.Is(err, mnemonic.ErrInvalidWord),
		errors.Is(err, mnemonic.ErrInvalidByteLength),
		errors.Is(err, mnemonic.ErrInvalidChecksum):
		return CategoryInput
	case errors.Is(err, shamir.ErrThreshold):
		return CategoryScheme
	case errors.Is(err, shamir.ErrRecovery):
		return CategoryReconstruction
	default:
		return CategoryUnknown
	}
}
