// Package dataset generates random training and evaluation samples for the
// character locator.
//
// A sample is a sequence of distinct characters drawn without replacement
// from the vocabulary's alphabet. Its label is the position of the target
// character, or the sequence length when the target was not drawn (the
// "absent" class):
//
//	"d a k b ..." (target "a") -> label 1
//	"d c k b ..." (no "a")     -> label Length()
package dataset

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/born-ml/charpos/internal/vocab"
)

// Sample is one encoded sequence and its label.
type Sample struct {
	Tokens []string // drawn characters, in order
	Input  []int32  // vocabulary indices of Tokens
	Label  int32    // position of the target, or the sequence length
}

// Dataset holds samples as two aligned slices.
type Dataset struct {
	Inputs [][]int32 // [num_samples][length]
	Labels []int32   // [num_samples]
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Generator draws samples from a vocabulary using an explicit random source.
type Generator struct {
	vocab  *vocab.Vocab
	chars  []string
	target string
	length int
	rng    *rand.Rand
}

// NewGenerator validates the sampling configuration.
//
// length must be positive and at most the number of alphabet characters,
// since characters are drawn without replacement. target must be one of the
// alphabet characters.
func NewGenerator(v *vocab.Vocab, target string, length int, rng *rand.Rand) (*Generator, error) {
	if v == nil {
		return nil, errors.New("dataset: nil vocabulary")
	}
	if rng == nil {
		return nil, errors.New("dataset: nil random source")
	}
	chars := v.Chars()
	if length <= 0 {
		return nil, errors.Errorf("dataset: sentence length must be positive, got %d", length)
	}
	if length > len(chars) {
		return nil, errors.Errorf("dataset: sentence length %d exceeds the %d distinct characters available",
			length, len(chars))
	}
	if target == vocab.Pad || target == vocab.Unknown || !v.Contains(target) {
		return nil, errors.Errorf("dataset: target %q is not an alphabet character", target)
	}

	return &Generator{
		vocab:  v,
		chars:  chars,
		target: target,
		length: length,
		rng:    rng,
	}, nil
}

// Length returns the sequence length, which is also the "absent" label.
func (g *Generator) Length() int {
	return g.length
}

// NumClasses returns the number of label classes: one per position plus absent.
func (g *Generator) NumClasses() int {
	return g.length + 1
}

// Sample draws one sequence without replacement and labels it.
func (g *Generator) Sample() Sample {
	perm := g.rng.Perm(len(g.chars))
	tokens := make([]string, g.length)
	for i := range tokens {
		tokens[i] = g.chars[perm[i]]
	}

	return Sample{
		Tokens: tokens,
		Input:  g.vocab.Encode(tokens),
		Label:  int32(Label(tokens, g.target)),
	}
}

// Build draws n independent samples.
func (g *Generator) Build(n int) *Dataset {
	d := &Dataset{
		Inputs: make([][]int32, n),
		Labels: make([]int32, n),
	}
	for i := 0; i < n; i++ {
		s := g.Sample()
		d.Inputs[i] = s.Input
		d.Labels[i] = s.Label
	}
	return d
}

// Label returns the index of the first occurrence of target in tokens, or
// len(tokens) when target does not occur.
func Label(tokens []string, target string) int {
	for i, tok := range tokens {
		if tok == target {
			return i
		}
	}
	return len(tokens)
}
