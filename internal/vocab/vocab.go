// Package vocab builds the fixed character vocabulary used by the locator.
//
// The vocabulary maps every character of a small alphabet to a positive
// index and reserves two sentinels:
//   - "pad" at index 0
//   - "unk" at the last index (len(alphabet) + 1)
//
// Example:
//
//	v, _ := vocab.Build("abcdefghijk")
//	v.Size()      // 13
//	v.Index("a")  // 1
//	v.Index("?")  // 12 (unk)
package vocab

import (
	"github.com/pkg/errors"
)

// Sentinel tokens.
const (
	Pad     = "pad"
	Unknown = "unk"
)

// DefaultAlphabet is the alphabet of the reference training run.
const DefaultAlphabet = "abcdefghijk"

// Vocab is an immutable token -> index table.
type Vocab struct {
	index  map[string]int
	tokens []string // index -> token
}

// Build creates the vocabulary for alphabet.
//
// Every rune of alphabet becomes one token. Duplicate runes and an empty
// alphabet are rejected.
func Build(alphabet string) (*Vocab, error) {
	runes := []rune(alphabet)
	if len(runes) == 0 {
		return nil, errors.New("vocab: alphabet is empty")
	}

	v := &Vocab{
		index:  make(map[string]int, len(runes)+2),
		tokens: make([]string, 0, len(runes)+2),
	}
	v.add(Pad)
	for _, r := range runes {
		token := string(r)
		if _, dup := v.index[token]; dup {
			return nil, errors.Errorf("vocab: duplicate character %q in alphabet %q", token, alphabet)
		}
		v.add(token)
	}
	v.add(Unknown)

	return v, nil
}

func (v *Vocab) add(token string) {
	v.index[token] = len(v.tokens)
	v.tokens = append(v.tokens, token)
}

// Size returns the number of entries, sentinels included.
func (v *Vocab) Size() int {
	return len(v.tokens)
}

// Index returns the index of token, or the index of Unknown for tokens
// outside the vocabulary.
func (v *Vocab) Index(token string) int {
	if idx, ok := v.index[token]; ok {
		return idx
	}
	return v.index[Unknown]
}

// Contains reports whether token has its own entry.
func (v *Vocab) Contains(token string) bool {
	_, ok := v.index[token]
	return ok
}

// Token returns the token stored at idx.
func (v *Vocab) Token(idx int) (string, error) {
	if idx < 0 || idx >= len(v.tokens) {
		return "", errors.Errorf("vocab: index %d out of range [0, %d)", idx, len(v.tokens))
	}
	return v.tokens[idx], nil
}

// Chars returns the samplable character tokens in index order.
// Sentinels are not included.
func (v *Vocab) Chars() []string {
	chars := make([]string, len(v.tokens)-2)
	copy(chars, v.tokens[1:len(v.tokens)-1])
	return chars
}

// Encode maps tokens to int32 indices, the dtype Born's embedding expects.
func (v *Vocab) Encode(tokens []string) []int32 {
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = int32(v.Index(tok))
	}
	return ids
}
