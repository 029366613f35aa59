// Package model implements the character locator network.
//
// Architecture:
//
//	indices [batch, seq] -> Embedding -> RNN (last hidden state) -> Linear -> logits [batch, seq+1]
//
// Class i < seq means "target at position i"; class seq means "absent".
package model

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// Locator classifies where a target character sits in a sequence.
//
// Training and inference are two separate operations:
//   - Loss: cross-entropy between predicted logits and labels (for backprop)
//   - Predict: raw logits (for evaluation)
type Locator[B tensor.Backend] struct {
	embedding *nn.Embedding[B]        // vocab -> dim
	rnn       *RNN[B]                 // dim -> dim
	classify  *nn.Linear[B]           // dim -> seq+1
	criterion *nn.CrossEntropyLoss[B] // mean over batch
	seqLen    int
	backend   B
}

// NewLocator creates a locator for sequences of seqLen tokens drawn from a
// vocabulary of vocabSize entries, with dim-dimensional embeddings and
// hidden state.
func NewLocator[B tensor.Backend](vocabSize, dim, seqLen int, backend B) *Locator[B] {
	return &Locator[B]{
		embedding: nn.NewEmbedding(vocabSize, dim, backend),
		rnn:       NewRNN(dim, dim, backend),
		classify:  nn.NewLinear(dim, seqLen+1, backend),
		criterion: nn.NewCrossEntropyLoss(backend),
		seqLen:    seqLen,
		backend:   backend,
	}
}

// NumClasses returns seqLen + 1.
func (m *Locator[B]) NumClasses() int {
	return m.seqLen + 1
}

// Predict returns class logits [batch, seq+1] for token indices [batch, seq].
func (m *Locator[B]) Predict(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	steps, err := m.embedSteps(indices)
	if err != nil {
		panic(fmt.Sprintf("Locator.Predict: %v", err))
	}
	h := m.rnn.Forward(steps)
	return m.classify.Forward(h)
}

// Loss returns the mean cross-entropy of the predictions for indices
// against labels [batch].
func (m *Locator[B]) Loss(indices, labels *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return m.criterion.Forward(m.Predict(indices), labels)
}

// embedSteps looks up the embeddings of each time step separately, so the
// recurrent unit receives seq tensors of [batch, dim]. Every lookup is
// recorded on the tape and the embedding gradient accumulates across steps.
func (m *Locator[B]) embedSteps(indices *tensor.Tensor[int32, B]) ([]*tensor.Tensor[float32, B], error) {
	shape := indices.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("expected indices [batch, seq], got shape %v", shape)
	}
	batch, seq := shape[0], shape[1]
	if seq != m.seqLen {
		return nil, errors.Errorf("expected sequences of %d tokens, got %d", m.seqLen, seq)
	}

	data := indices.Data()
	steps := make([]*tensor.Tensor[float32, B], seq)
	column := make([]int32, batch)
	for t := 0; t < seq; t++ {
		for b := 0; b < batch; b++ {
			column[b] = data[b*seq+t]
		}
		ids, err := tensor.FromSlice(append([]int32(nil), column...), tensor.Shape{batch}, m.backend)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d indices", t)
		}
		steps[t] = m.embedding.Forward(ids)
	}
	return steps, nil
}

// Forward implements nn.Module so the locator can be written with nn.Save.
// The input holds token indices stored as float32 [batch, seq].
func (m *Locator[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.Predict(input.Int32())
}

// Parameters returns all trainable parameters: embedding, RNN, classifier.
func (m *Locator[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 7)
	params = append(params, m.embedding.Parameters()...)
	params = append(params, m.rnn.Parameters()...)
	params = append(params, m.classify.Parameters()...)
	return params
}

// StateDict returns every parameter under its prefixed name.
func (m *Locator[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{
		"embedding.weight": m.embedding.Weight.Tensor().Raw(),
	}
	for name, raw := range m.rnn.StateDict() {
		stateDict["rnn."+name] = raw
	}
	for name, raw := range m.classify.StateDict() {
		stateDict["classify."+name] = raw
	}
	return stateDict
}

// LoadStateDict copies parameters produced by StateDict into the model.
func (m *Locator[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	embedRaw, ok := stateDict["embedding.weight"]
	if !ok {
		return errors.New("missing embedding.weight in state dict")
	}
	expected := tensor.Shape{m.embedding.NumEmbed, m.embedding.EmbedDim}
	if !embedRaw.Shape().Equal(expected) {
		return errors.Errorf("embedding.weight shape mismatch: expected %v, got %v", expected, embedRaw.Shape())
	}
	if embedRaw.DType() != tensor.Float32 {
		return errors.Errorf("embedding.weight dtype mismatch: expected float32, got %v", embedRaw.DType())
	}
	copy(m.embedding.Weight.Tensor().Data(), embedRaw.AsFloat32())

	if err := m.rnn.LoadStateDict(subDict(stateDict, "rnn.")); err != nil {
		return errors.WithMessage(err, "rnn")
	}
	if err := m.classify.LoadStateDict(subDict(stateDict, "classify.")); err != nil {
		return errors.WithMessage(err, "classify")
	}
	return nil
}

// subDict returns the entries of stateDict under prefix, with prefix removed.
func subDict(stateDict map[string]*tensor.RawTensor, prefix string) map[string]*tensor.RawTensor {
	sub := make(map[string]*tensor.RawTensor)
	for name, raw := range stateDict {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			sub[rest] = raw
		}
	}
	return sub
}

// Compile-time check that Locator can be saved as a Born module.
var _ nn.Module[tensor.Backend] = (*Locator[tensor.Backend])(nil)
