package train_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/charpos/internal/train"
)

func smallConfig() train.Config {
	cfg := train.DefaultConfig()
	cfg.Epochs = 2
	cfg.BatchSize = 4
	cfg.TrainSamples = 8
	cfg.CharDim = 4
	cfg.SentenceLength = 5
	cfg.EvalSamples = 10
	cfg.Seed = 7
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := train.DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 25, cfg.BatchesPerEpoch())
	assert.Equal(t, 200, cfg.EvalSamples)
	assert.Equal(t, "abcdefghijk", cfg.Alphabet)
	assert.Equal(t, "a", cfg.Target)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*train.Config)
	}{
		{name: "sentence longer than alphabet", modify: func(c *train.Config) { c.SentenceLength = 12 }},
		{name: "zero sentence length", modify: func(c *train.Config) { c.SentenceLength = 0 }},
		{name: "no epochs", modify: func(c *train.Config) { c.Epochs = 0 }},
		{name: "empty epoch", modify: func(c *train.Config) { c.TrainSamples = c.BatchSize - 1 }},
		{name: "empty evaluation", modify: func(c *train.Config) { c.EvalSamples = 0 }},
		{name: "zero learning rate", modify: func(c *train.Config) { c.LearningRate = 0 }},
		{name: "multi-character target", modify: func(c *train.Config) { c.Target = "ab" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := train.DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.SentenceLength = 20

	_, err := train.New(cfg, autodiff.New(cpu.New()), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_RejectsTargetOutsideAlphabet(t *testing.T) {
	cfg := smallConfig()
	cfg.Target = "z"

	_, err := train.New(cfg, autodiff.New(cpu.New()), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	var out bytes.Buffer
	tr, err := train.New(smallConfig(), autodiff.New(cpu.New()), &out)
	require.NoError(t, err)

	eval, err := tr.Evaluate()
	require.NoError(t, err)

	assert.Equal(t, 10, eval.Total())
	assert.GreaterOrEqual(t, eval.Accuracy(), 0.0)
	assert.LessOrEqual(t, eval.Accuracy(), 1.0)
	assert.InDelta(t, float64(eval.Correct)/10, eval.Accuracy(), 1e-12)
	assert.Contains(t, out.String(), "本次预测集中共有10个样本\n")
	assert.Contains(t, out.String(), "正确预测个数: ")
}

func TestTrainEpoch_UpdatesParameters(t *testing.T) {
	tr, err := train.New(smallConfig(), autodiff.New(cpu.New()), &bytes.Buffer{})
	require.NoError(t, err)

	before := make([][]float32, 0)
	for _, p := range tr.Model().Parameters() {
		before = append(before, append([]float32(nil), p.Tensor().Data()...))
	}

	loss, err := tr.TrainEpoch()
	require.NoError(t, err)
	assert.Positive(t, loss)

	for i, p := range tr.Model().Parameters() {
		assert.NotEqual(t, before[i], p.Tensor().Data(), "parameter %s was not updated", p.Name())
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	tr, err := train.New(smallConfig(), autodiff.New(cpu.New()), &out)
	require.NoError(t, err)

	history, err := tr.Run()
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, history, tr.History())
	for i, r := range history {
		assert.Equal(t, i, r.Epoch)
		assert.GreaterOrEqual(t, r.Accuracy, 0.0)
		assert.LessOrEqual(t, r.Accuracy, 1.0)
		assert.Positive(t, r.MeanLoss)
	}

	text := out.String()
	assert.Contains(t, text, "=========\n第1轮平均loss:")
	assert.Contains(t, text, "=========\n第2轮平均loss:")
	assert.Equal(t, 2, strings.Count(text, "本次预测集中共有10个样本"))
}

func TestArgmax(t *testing.T) {
	got, err := train.Argmax([]float32{
		0.1, 0.7, 0.2,
		3, -1, 3, // tie: lowest index wins
		-5, -4, -3,
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, got)

	_, err = train.Argmax([]float32{1, 2, 3, 4}, 3)
	assert.Error(t, err)
}

func TestEvaluation_Accuracy(t *testing.T) {
	assert.Equal(t, 0.0, train.Evaluation{}.Accuracy())
	assert.Equal(t, 0.25, train.Evaluation{Correct: 50, Wrong: 150}.Accuracy())
	assert.Equal(t, 200, train.Evaluation{Correct: 50, Wrong: 150}.Total())
}
