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

package mnemonic

import "errors"

var (
	// ErrInvalidWordCount is returned when a word sequence is not 12, 13, 24 or 25 words long.
	ErrInvalidWordCount = errors.New("invalid number of words")

	// ErrInvalidWord is returned when a word is not in the dictionary.
	ErrInvalidWord = errors.New("invalid word")

	// ErrInvalidByteLength is returned when a buffer to encode is not 16, 17, 32 or 33 bytes long.
	ErrInvalidByteLength = errors.New("invalid number of bytes")

	// ErrInvalidChecksum is returned by Verify when the trailing checksum bits do not
	// match the payload.
	ErrInvalidChecksum = errors.New("checksum mismatch")

	// ErrInternal signals a broken codec invariant. It indicates a bug, not bad input.
	ErrInternal = errors.New("internal invariant violated")
)
