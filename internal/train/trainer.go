// Package train runs the locator's training loop.
//
// Every epoch draws fresh random batches, takes one Adam step per batch and
// then evaluates on a freshly drawn evaluation set:
//
//	for epoch in 1..Epochs:
//	    tape on   ("train mode")
//	    for batch in 1..TrainSamples/BatchSize:
//	        zero grads -> loss -> backward -> step -> clear tape
//	    tape off  ("eval mode")
//	    evaluate -> append (accuracy, mean loss) to history
package train

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/optim"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"github.com/born-ml/charpos/internal/dataset"
	"github.com/born-ml/charpos/internal/model"
	"github.com/born-ml/charpos/internal/report"
	"github.com/born-ml/charpos/internal/vocab"
)

// Trainer owns the model, its optimizer and the training log.
//
// I is the compute backend wrapped by the autodiff decorator (CPU, WebGPU).
type Trainer[I tensor.Backend] struct {
	cfg       Config
	backend   *autodiff.Backend[I]
	vocab     *vocab.Vocab
	gen       *dataset.Generator
	model     *model.Locator[*autodiff.Backend[I]]
	optimizer optim.Optimizer
	console   *report.Console
	history   report.History
}

// New validates cfg and builds the vocabulary, sample generator, model and
// Adam optimizer. Console lines are written to out.
func New[I tensor.Backend](cfg Config, backend *autodiff.Backend[I], out io.Writer) (*Trainer[I], error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid training config")
	}

	v, err := vocab.Build(cfg.Alphabet)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	gen, err := dataset.NewGenerator(v, cfg.Target, cfg.SentenceLength, rand.New(rand.NewPCG(seed, seed>>1)))
	if err != nil {
		return nil, err
	}

	m := model.NewLocator(v.Size(), cfg.CharDim, cfg.SentenceLength, backend)
	opt := optim.NewAdam(
		m.Parameters(),
		optim.AdamConfig{
			LR:    cfg.LearningRate,
			Betas: [2]float32{0.9, 0.999},
			Eps:   1e-8,
		},
		backend,
	)

	klog.V(1).Infof("vocabulary of %d entries, %d batches of %d per epoch, seed %d",
		v.Size(), cfg.BatchesPerEpoch(), cfg.BatchSize, seed)

	return &Trainer[I]{
		cfg:       cfg,
		backend:   backend,
		vocab:     v,
		gen:       gen,
		model:     m,
		optimizer: opt,
		console:   report.NewConsole(out),
	}, nil
}

// Model returns the model being trained.
func (t *Trainer[I]) Model() *model.Locator[*autodiff.Backend[I]] {
	return t.model
}

// Vocab returns the vocabulary the model was built for.
func (t *Trainer[I]) Vocab() *vocab.Vocab {
	return t.vocab
}

// History returns the training log so far.
func (t *Trainer[I]) History() report.History {
	return t.history
}

// Run trains for cfg.Epochs epochs and returns the training log.
func (t *Trainer[I]) Run() (report.History, error) {
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		meanLoss, err := t.TrainEpoch()
		if err != nil {
			return t.history, errors.WithMessagef(err, "epoch %d", epoch+1)
		}
		t.console.EpochLoss(epoch+1, meanLoss)

		eval, err := t.Evaluate()
		if err != nil {
			return t.history, errors.WithMessagef(err, "evaluating epoch %d", epoch+1)
		}

		t.history = append(t.history, report.Record{
			Epoch:    epoch,
			Accuracy: eval.Accuracy(),
			MeanLoss: meanLoss,
		})
	}
	return t.history, nil
}

// TrainEpoch runs BatchesPerEpoch optimizer steps on fresh random batches
// and returns the mean batch loss.
func (t *Trainer[I]) TrainEpoch() (float64, error) {
	tape := t.backend.Tape()
	tape.StartRecording()

	losses := make([]float64, 0, t.cfg.BatchesPerEpoch())
	for i := 0; i < t.cfg.BatchesPerEpoch(); i++ {
		loss, err := t.step()
		if err != nil {
			return 0, errors.WithMessagef(err, "batch %d", i+1)
		}
		klog.V(3).Infof("batch %d loss %f", i+1, loss)
		losses = append(losses, loss)
	}
	return stat.Mean(losses, nil), nil
}

// step draws one batch and applies a single Adam update.
func (t *Trainer[I]) step() (float64, error) {
	batch, err := dataset.ToTensors(t.gen.Build(t.cfg.BatchSize), t.backend)
	if err != nil {
		return 0, err
	}

	tape := t.backend.Tape()
	defer tape.Clear()

	t.optimizer.ZeroGrad()
	loss := t.model.Loss(batch.Inputs, batch.Labels)
	value := loss.Raw().AsFloat32()[0]

	grads := autodiff.Backward(loss, t.backend)
	t.optimizer.Step(grads)

	return float64(value), nil
}
