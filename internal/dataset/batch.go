package dataset

import (
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// Batch is a dataset packed into backend tensors.
type Batch[B tensor.Backend] struct {
	Inputs *tensor.Tensor[int32, B] // [size, length]
	Labels *tensor.Tensor[int32, B] // [size]
	Size   int
}

// ToTensors packs d into an int32 input tensor and an int32 label tensor.
func ToTensors[B tensor.Backend](d *Dataset, backend B) (*Batch[B], error) {
	size := d.Len()
	if size == 0 {
		return nil, errors.New("dataset: cannot pack an empty dataset")
	}
	if len(d.Inputs) != size {
		return nil, errors.Errorf("dataset: %d inputs but %d labels", len(d.Inputs), size)
	}

	length := len(d.Inputs[0])
	flat := make([]int32, 0, size*length)
	for i, in := range d.Inputs {
		if len(in) != length {
			return nil, errors.Errorf("dataset: sample %d has length %d, want %d", i, len(in), length)
		}
		flat = append(flat, in...)
	}

	inputs, err := tensor.FromSlice(flat, tensor.Shape{size, length}, backend)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: failed to create inputs tensor")
	}
	labels, err := tensor.FromSlice(append([]int32(nil), d.Labels...), tensor.Shape{size}, backend)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: failed to create labels tensor")
	}

	return &Batch[B]{
		Inputs: inputs,
		Labels: labels,
		Size:   size,
	}, nil
}
