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

// Package mnemonic converts between word passphrases and the bytes they encode.
//
// Every word carries 11 bits. The concatenated bits of a passphrase are the payload
// bytes, most significant bit first, followed by a short checksum taken from the
// leading bits of SHA-256 over the payload. The supported shapes are:
//
//	words  payload  checksum bits
//	12     16       4
//	13     17       7
//	24     32       8
//	25     33       11
//
// 12 and 24 word passphrases are standard BIP-39 mnemonics. The 13 and 25 word forms
// carry one extra payload byte and are used for secret shares.
package mnemonic

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/codeandplay/passphrase-backup/wordlist"
)

const bitsPerWord = wordlist.BitsPerWord

// checksum bits keyed by word count.
var checksumBitsByWords = map[int]int{
	12: 4,
	13: 7,
	24: 8,
	25: 11,
}

// checksum bits keyed by payload length in bytes.
var checksumBitsByBytes = map[int]int{
	16: 4,
	17: 7,
	32: 8,
	33: 11,
}

// Passphrase is a sequence of dictionary indexes together with the number of
// trailing checksum bits they carry.
type Passphrase struct {
	list         *wordlist.List
	indexes      []wordlist.Index
	checksumBits int
}

// FromWords parses words into a Passphrase. The checksum is not verified; call
// Verify for that.
func FromWords(words []string) (*Passphrase, error) {
	checksumBits, ok := checksumBitsByWords[len(words)]
	if !ok {
		return nil, fmt.Errorf("%w: got %d, want 12, 13, 24 or 25", ErrInvalidWordCount, len(words))
	}
	list := wordlist.Default()
	indexes := make([]wordlist.Index, len(words))
	for i, w := range words {
		idx, ok := list.Index(w)
		if !ok {
			return nil, fmt.Errorf("%w at position %d", ErrInvalidWord, i+1)
		}
		indexes[i] = idx
	}
	return &Passphrase{list: list, indexes: indexes, checksumBits: checksumBits}, nil
}

// FromBytes encodes b, appending its checksum, into a Passphrase.
func FromBytes(b []byte) (*Passphrase, error) {
	checksumBits, ok := checksumBitsByBytes[len(b)]
	if !ok {
		return nil, fmt.Errorf("%w: got %d, want 16, 17, 32 or 33", ErrInvalidByteLength, len(b))
	}
	numWords := (len(b)*8 + checksumBits) / bitsPerWord
	indexes := make([]wordlist.Index, 0, numWords)

	// acc holds the n bits not yet emitted as a word, right aligned.
	var acc uint32
	var n int
	emit := func() {
		for n >= bitsPerWord {
			n -= bitsPerWord
			indexes = append(indexes, wordlist.Index(acc>>n)&(wordlist.Size-1))
			acc &= 1<<n - 1
		}
	}
	for _, c := range b {
		acc = acc<<8 | uint32(c)
		n += 8
		emit()
	}
	acc = acc<<checksumBits | checksum(b, checksumBits)
	n += checksumBits
	emit()

	if n != 0 || len(indexes) != numWords {
		return nil, fmt.Errorf("%w: %d bytes packed into %d words with %d bits left", ErrInternal, len(b), len(indexes), n)
	}
	return &Passphrase{list: wordlist.Default(), indexes: indexes, checksumBits: checksumBits}, nil
}

// checksum returns the leading size bits of SHA-256(b), right aligned.
func checksum(b []byte, size int) uint32 {
	sum := sha256.Sum256(b)
	return (uint32(sum[0])<<8 | uint32(sum[1])) >> (16 - size)
}

// Bytes returns the payload encoded by the passphrase with the checksum bits removed.
func (p *Passphrase) Bytes() ([]byte, error) {
	payloadBits := len(p.indexes)*bitsPerWord - p.checksumBits
	if payloadBits <= 0 || payloadBits%8 != 0 {
		return nil, fmt.Errorf("%w: %d words with %d checksum bits", ErrInternal, len(p.indexes), p.checksumBits)
	}
	size := payloadBits / 8
	out := make([]byte, 0, size)

	var acc uint32
	var n int
	for _, idx := range p.indexes {
		if !idx.Valid() {
			return nil, fmt.Errorf("%w: %w", ErrInternal, wordlist.ErrIndexOutOfRange)
		}
		acc = acc<<bitsPerWord | uint32(idx)
		n += bitsPerWord
		for n >= 8 && len(out) < size {
			n -= 8
			out = append(out, byte(acc>>n))
		}
		acc &= 1<<n - 1
	}
	// What is left in acc is the checksum.
	if n != p.checksumBits {
		return nil, fmt.Errorf("%w: %d trailing bits, want %d", ErrInternal, n, p.checksumBits)
	}
	return out, nil
}

// Verify recomputes the checksum from the payload and compares it with the trailing
// bits of the passphrase.
func (p *Passphrase) Verify() error {
	payload, err := p.Bytes()
	if err != nil {
		return err
	}
	defer clear(payload)
	want, err := FromBytes(payload)
	if err != nil {
		return err
	}
	if len(want.indexes) != len(p.indexes) {
		return fmt.Errorf("%w: re-encoded to %d words, have %d", ErrInternal, len(want.indexes), len(p.indexes))
	}
	// Only the last word carries checksum bits.
	last := len(p.indexes) - 1
	if want.indexes[last] != p.indexes[last] {
		return ErrInvalidChecksum
	}
	return nil
}

// Words returns the dictionary words of the passphrase.
func (p *Passphrase) Words() ([]string, error) {
	words := make([]string, len(p.indexes))
	for i, idx := range p.indexes {
		w, err := p.list.Word(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		words[i] = w
	}
	return words, nil
}

// Len returns the number of words.
func (p *Passphrase) Len() int {
	return len(p.indexes)
}

// ChecksumBits returns the number of trailing checksum bits.
func (p *Passphrase) ChecksumBits() int {
	return p.checksumBits
}

// String joins the words with single spaces. The result is the secret itself and
// must not be logged.
func (p *Passphrase) String() string {
	words, err := p.Words()
	if err != nil {
		return ""
	}
	return strings.Join(words, " ")
}

// Wipe zeroes the indexes held by p. p must not be used afterwards.
func (p *Passphrase) Wipe() {
	clear(p.indexes)
}

// Decode parses words and returns the payload they encode, without verifying the
// checksum.
func Decode(words []string) ([]byte, error) {
	p, err := FromWords(words)
	if err != nil {
		return nil, err
	}
	defer p.Wipe()
	return p.Bytes()
}

// Encode returns the passphrase words for b.
func Encode(b []byte) ([]string, error) {
	p, err := FromBytes(b)
	if err != nil {
		return nil, err
	}
	defer p.Wipe()
	return p.Words()
}
