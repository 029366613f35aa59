package checkpoint_test

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/charpos/internal/checkpoint"
	"github.com/born-ml/charpos/internal/model"
)

type backendType = *autodiff.Backend[*cpu.Backend]

func TestSaveLoad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	path := filepath.Join(t.TempDir(), "model.born")

	src := model.NewLocator(13, 6, 10, backend)
	meta := checkpoint.Meta{
		SentenceLength: 10,
		CharDim:        6,
		Alphabet:       "abcdefghijk",
		Target:         "a",
	}

	runID, err := checkpoint.Save[backendType](path, src, meta)
	require.NoError(t, err)
	_, err = uuid.Parse(runID)
	assert.NoError(t, err, "run id must be a uuid")
	assert.FileExists(t, path+".lock")

	dst := model.NewLocator(13, 6, 10, backend)
	got, err := checkpoint.Load(path, backend, dst)
	require.NoError(t, err)

	meta.RunID = runID
	assert.Equal(t, meta, got)

	data := make([]int32, 2*10)
	for i := range data {
		data[i] = int32(1 + i%11)
	}
	x, err := tensor.FromSlice(data, tensor.Shape{2, 10}, backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, src.Predict(x).Data(), dst.Predict(x).Data(), 1e-6)
}

func TestSave_KeepsGivenRunID(t *testing.T) {
	backend := autodiff.New(cpu.New())
	path := filepath.Join(t.TempDir(), "model.born")

	runID, err := checkpoint.Save[backendType](path, model.NewLocator(13, 4, 5, backend), checkpoint.Meta{
		RunID:          "fixed",
		SentenceLength: 5,
		CharDim:        4,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", runID)
}

func TestLoad_Errors(t *testing.T) {
	backend := autodiff.New(cpu.New())
	dir := t.TempDir()

	_, err := checkpoint.Load(filepath.Join(dir, "missing.born"), backend, model.NewLocator(13, 4, 5, backend))
	assert.Error(t, err)

	path := filepath.Join(dir, "model.born")
	_, err = checkpoint.Save[backendType](path, model.NewLocator(13, 4, 5, backend), checkpoint.Meta{SentenceLength: 5, CharDim: 4})
	require.NoError(t, err)

	_, err = checkpoint.Load(path, backend, model.NewLocator(13, 8, 5, backend))
	assert.Error(t, err, "hidden size mismatch")
}
