package train

import (
	"github.com/pkg/errors"

	"github.com/born-ml/charpos/internal/dataset"
)

// Evaluation counts the outcome of one evaluation pass.
type Evaluation struct {
	Correct int
	Wrong   int
}

// Total returns the evaluation set size.
func (e Evaluation) Total() int {
	return e.Correct + e.Wrong
}

// Accuracy returns Correct / (Correct + Wrong), or 0 for an empty evaluation.
func (e Evaluation) Accuracy() float64 {
	if e.Total() == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Total())
}

// Evaluate scores the model on a freshly drawn evaluation set of
// cfg.EvalSamples samples. Gradient recording is paused for the duration
// and restored afterwards.
func (t *Trainer[I]) Evaluate() (Evaluation, error) {
	tape := t.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	batch, err := dataset.ToTensors(t.gen.Build(t.cfg.EvalSamples), t.backend)
	if err != nil {
		return Evaluation{}, err
	}
	t.console.EvalSize(batch.Size)

	logits := t.model.Predict(batch.Inputs)
	predicted, err := Argmax(logits.Data(), t.model.NumClasses())
	if err != nil {
		return Evaluation{}, err
	}

	var eval Evaluation
	for i, label := range batch.Labels.Data() {
		if predicted[i] == int(label) {
			eval.Correct++
		} else {
			eval.Wrong++
		}
	}
	t.console.EvalResult(eval.Correct, eval.Accuracy())
	return eval, nil
}

// Argmax returns, for each row of a row-major [n, classes] matrix, the
// index of its largest value. Ties go to the lowest index.
func Argmax(logits []float32, classes int) ([]int, error) {
	if classes <= 0 || len(logits)%classes != 0 {
		return nil, errors.Errorf("cannot split %d logits into rows of %d classes", len(logits), classes)
	}

	out := make([]int, len(logits)/classes)
	for row := range out {
		scores := logits[row*classes : (row+1)*classes]
		best := 0
		for c := 1; c < classes; c++ {
			if scores[c] > scores[best] {
				best = c
			}
		}
		out[row] = best
	}
	return out, nil
}
