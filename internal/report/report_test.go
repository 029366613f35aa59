package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/charpos/internal/report"
)

func sampleHistory() report.History {
	return report.History{
		{Epoch: 0, Accuracy: 0.115, MeanLoss: 2.31},
		{Epoch: 1, Accuracy: 0.42, MeanLoss: 1.67},
		{Epoch: 2, Accuracy: 0.42, MeanLoss: 1.12},
		{Epoch: 3, Accuracy: 0.38, MeanLoss: 0.98},
	}
}

func TestConsole_Format(t *testing.T) {
	var buf bytes.Buffer
	c := report.NewConsole(&buf)

	c.EpochLoss(1, 2.5)
	c.EvalSize(200)
	c.EvalResult(23, 0.115)

	want := "=========\n第1轮平均loss:2.500000\n" +
		"本次预测集中共有200个样本\n" +
		"正确预测个数: 23, 正确率: 0.115000\n"
	assert.Equal(t, want, buf.String())
}

func TestHistory_Stats(t *testing.T) {
	h := sampleHistory()

	assert.Equal(t, []float64{0.115, 0.42, 0.42, 0.38}, h.Accuracies())
	assert.Equal(t, []float64{2.31, 1.67, 1.12, 0.98}, h.Losses())

	best, ok := h.Best()
	require.True(t, ok)
	assert.Equal(t, 1, best.Epoch, "ties go to the earliest epoch")

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 3, last.Epoch)

	assert.InDelta(t, (0.115+0.42+0.42+0.38)/4, h.MeanAccuracy(), 1e-12)
}

func TestHistory_Empty(t *testing.T) {
	var h report.History

	_, ok := h.Best()
	assert.False(t, ok)
	_, ok = h.Last()
	assert.False(t, ok)
	assert.Zero(t, h.MeanAccuracy())
}

func TestWriteReadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	h := sampleHistory()

	require.NoError(t, report.WriteHistory(path, h))

	got, err := report.ReadHistory(path)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestReadHistory_Missing(t *testing.T) {
	_, err := report.ReadHistory(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}

func TestPlotHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training.png")

	require.NoError(t, report.PlotHistory(path, sampleHistory()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, report.PlotHistory(path, nil))
}

func TestSummary_Render(t *testing.T) {
	out := report.Summary{
		RunID:   "1234",
		Backend: "cpu",
		History: sampleHistory(),
		Model:   "model.born",
		Plot:    "training.png",
	}.Render()

	assert.Contains(t, out, "charpos run 1234")
	assert.Contains(t, out, "model.born")
	assert.Contains(t, out, "training.png")
	assert.Contains(t, out, "acc 0.3800")
	assert.Contains(t, out, "(epoch 2)")
	assert.Contains(t, out, "cpu")
	assert.NotContains(t, out, "history")
	assert.NotContains(t, out, "host")
}
