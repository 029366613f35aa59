package model

import (
	"fmt"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// RNN is a single-layer Elman recurrent unit with tanh non-linearity.
//
// For each time step t:
//
//	h_t = tanh(x_t @ W_ih.T + b_ih + h_{t-1} @ W_hh.T + b_hh)
//
// with h_{-1} = 0. Only the final hidden state is returned by Forward,
// which is all the locator's classifier consumes.
//
// Architecture:
//   - W_ih: [hidden, input], b_ih: [hidden]
//   - W_hh: [hidden, hidden], b_hh: [hidden]
//
// Example:
//
//	rnn := model.NewRNN(30, 30, backend)
//	h := rnn.Forward(steps) // steps: seq_len tensors of [batch, 30] -> [batch, 30]
type RNN[B tensor.Backend] struct {
	inputSize  int
	hiddenSize int
	ih         *nn.Linear[B] // input -> hidden
	hh         *nn.Linear[B] // hidden -> hidden
	tanh       *nn.Tanh[B]
	backend    B
}

// NewRNN creates a recurrent unit with Xavier-initialized weights and zero biases.
func NewRNN[B tensor.Backend](inputSize, hiddenSize int, backend B) *RNN[B] {
	return &RNN[B]{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		ih:         nn.NewLinear(inputSize, hiddenSize, backend),
		hh:         nn.NewLinear(hiddenSize, hiddenSize, backend),
		tanh:       nn.NewTanh[B](),
		backend:    backend,
	}
}

// InitialState returns the zero hidden state for a batch.
func (r *RNN[B]) InitialState(batch int) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](tensor.Shape{batch, r.hiddenSize}, r.backend)
}

// Step advances the hidden state by one time step.
//
// x has shape [batch, input], h has shape [batch, hidden].
func (r *RNN[B]) Step(x, h *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return r.tanh.Forward(r.ih.Forward(x).Add(r.hh.Forward(h)))
}

// Forward consumes steps left to right and returns the final hidden state.
//
// Panics if steps is empty.
func (r *RNN[B]) Forward(steps []*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(steps) == 0 {
		panic("RNN.Forward: empty sequence")
	}
	h := r.InitialState(steps[0].Shape()[0])
	for _, x := range steps {
		h = r.Step(x, h)
	}
	return h
}

// Parameters returns [W_ih, b_ih, W_hh, b_hh].
func (r *RNN[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 4)
	params = append(params, r.ih.Parameters()...)
	params = append(params, r.hh.Parameters()...)
	return params
}

// InputSize returns the number of input features.
func (r *RNN[B]) InputSize() int {
	return r.inputSize
}

// HiddenSize returns the size of the hidden state.
func (r *RNN[B]) HiddenSize() int {
	return r.hiddenSize
}

// StateDict uses the conventional single-layer names (weight_ih_l0, ...).
func (r *RNN[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor, 4)
	for suffix, layer := range r.layers() {
		for name, raw := range layer.StateDict() {
			stateDict[fmt.Sprintf("%s_%s_l0", name, suffix)] = raw
		}
	}
	return stateDict
}

// LoadStateDict copies weights saved by StateDict into the unit.
func (r *RNN[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for suffix, layer := range r.layers() {
		sub := make(map[string]*tensor.RawTensor, 2)
		for _, name := range []string{"weight", "bias"} {
			key := fmt.Sprintf("%s_%s_l0", name, suffix)
			raw, ok := stateDict[key]
			if !ok {
				return errors.Errorf("missing %s in state dict", key)
			}
			sub[name] = raw
		}
		if err := layer.LoadStateDict(sub); err != nil {
			return errors.WithMessagef(err, "loading %s weights", suffix)
		}
	}
	return nil
}

func (r *RNN[B]) layers() map[string]*nn.Linear[B] {
	return map[string]*nn.Linear[B]{"ih": r.ih, "hh": r.hh}
}
