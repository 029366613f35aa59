package train

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/born-ml/charpos/internal/vocab"
)

// Config holds the hyperparameters of a training run.
type Config struct {
	Epochs         int     // number of epochs
	BatchSize      int     // samples per optimizer step
	TrainSamples   int     // samples per epoch; TrainSamples/BatchSize batches are drawn
	CharDim        int     // embedding and hidden state size
	SentenceLength int     // characters per sample
	LearningRate   float32 // Adam learning rate
	EvalSamples    int     // size of the evaluation set drawn after every epoch
	Alphabet       string  // samplable characters
	Target         string  // character to locate
	Seed           uint64  // random source seed, 0 picks one from the clock
}

// DefaultConfig returns the reference run: 20 epochs of 25 batches of 40
// ten-character samples over "abcdefghijk", locating "a".
func DefaultConfig() Config {
	return Config{
		Epochs:         20,
		BatchSize:      40,
		TrainSamples:   1000,
		CharDim:        30,
		SentenceLength: 10,
		LearningRate:   0.001,
		EvalSamples:    200,
		Alphabet:       vocab.DefaultAlphabet,
		Target:         "a",
	}
}

// BatchesPerEpoch returns the number of optimizer steps per epoch.
func (c Config) BatchesPerEpoch() int {
	return c.TrainSamples / c.BatchSize
}

// Validate rejects configurations that would fail while sampling or
// produce an empty epoch or evaluation set.
func (c Config) Validate() error {
	switch {
	case c.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.BatchSize <= 0:
		return errors.Errorf("batch size must be positive, got %d", c.BatchSize)
	case c.TrainSamples < c.BatchSize:
		return errors.Errorf("train samples (%d) must be at least one batch (%d)", c.TrainSamples, c.BatchSize)
	case c.CharDim <= 0:
		return errors.Errorf("char dim must be positive, got %d", c.CharDim)
	case c.LearningRate <= 0:
		return errors.Errorf("learning rate must be positive, got %g", c.LearningRate)
	case c.EvalSamples <= 0:
		return errors.Errorf("eval samples must be positive, got %d", c.EvalSamples)
	case utf8.RuneCountInString(c.Target) != 1:
		return errors.Errorf("target must be a single character, got %q", c.Target)
	}

	alphabet := utf8.RuneCountInString(c.Alphabet)
	if c.SentenceLength <= 0 || c.SentenceLength > alphabet {
		return errors.Errorf("sentence length must be in [1, %d] for alphabet %q, got %d",
			alphabet, c.Alphabet, c.SentenceLength)
	}
	return nil
}
