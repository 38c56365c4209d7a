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

// Package wordlist holds the fixed 2048-word English dictionary used to encode
// passphrases. Word positions are part of the encoding, so the embedded list must
// never be reordered or edited.
package wordlist

import (
	_ "embed"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"sync"
)

// Size is the number of words in the dictionary.
const Size = 2048

// BitsPerWord is the number of bits encoded by a single word.
const BitsPerWord = 11

// englishCRC32 is the IEEE CRC-32 of the upstream BIP-39 english.txt.
const englishCRC32 = 0xc1dbd296

//go:embed english.txt
var english string

// ErrIndexOutOfRange is returned when an index does not address a dictionary entry.
var ErrIndexOutOfRange = errors.New("word index out of range")

// Index is the position of a word in the dictionary. Valid values fit in 11 bits.
type Index uint16

// Valid reports whether i addresses a dictionary entry.
func (i Index) Valid() bool {
	return i < Size
}

// List is an immutable, ordered dictionary.
type List struct {
	words   []string
	indexes map[string]Index
}

var (
	defaultList *List
	once        sync.Once
)

// Default returns the process-wide English dictionary. It is built on first use and
// is safe for concurrent readers.
func Default() *List {
	once.Do(func() {
		l, err := parse(english, englishCRC32)
		if err != nil {
			panic(fmt.Sprintf("embedded word list is corrupt: %v", err))
		}
		defaultList = l
	})
	return defaultList
}

func parse(raw string, wantCRC uint32) (*List, error) {
	if got := crc32.ChecksumIEEE([]byte(raw)); got != wantCRC {
		return nil, fmt.Errorf("checksum mismatch: got %08x, want %08x", got, wantCRC)
	}
	words := strings.Split(strings.TrimSpace(raw), "\n")
	if len(words) != Size {
		return nil, fmt.Errorf("got %d words, want %d", len(words), Size)
	}
	indexes := make(map[string]Index, Size)
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("empty word at line %d", i+1)
		}
		if _, ok := indexes[w]; ok {
			return nil, fmt.Errorf("duplicate word %q at line %d", w, i+1)
		}
		indexes[w] = Index(i)
	}
	return &List{words: words, indexes: indexes}, nil
}

// Len returns the number of words in the list.
func (l *List) Len() int {
	return len(l.words)
}

// Word returns the word at position i.
func (l *List) Word(i Index) (string, error) {
	if !i.Valid() {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return l.words[i], nil
}

// Index returns the position of word. The match is exact: no case folding or
// Unicode normalization is applied.
func (l *List) Index(word string) (Index, bool) {
	i, ok := l.indexes[word]
	return i, ok
}
