package report

import (
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Record is one epoch of the training log.
type Record struct {
	Epoch    int     `parquet:"epoch"` // 0-based
	Accuracy float64 `parquet:"accuracy"`
	MeanLoss float64 `parquet:"mean_loss"`
}

// History is the append-only training log, one Record per epoch.
type History []Record

// Accuracies returns the accuracy column.
func (h History) Accuracies() []float64 {
	out := make([]float64, len(h))
	for i, r := range h {
		out[i] = r.Accuracy
	}
	return out
}

// Losses returns the mean-loss column.
func (h History) Losses() []float64 {
	out := make([]float64, len(h))
	for i, r := range h {
		out[i] = r.MeanLoss
	}
	return out
}

// Last returns the most recent record.
func (h History) Last() (Record, bool) {
	if len(h) == 0 {
		return Record{}, false
	}
	return h[len(h)-1], true
}

// Best returns the record with the highest accuracy. Ties go to the
// earliest epoch.
func (h History) Best() (Record, bool) {
	if len(h) == 0 {
		return Record{}, false
	}
	return h[floats.MaxIdx(h.Accuracies())], true
}

// MeanAccuracy averages accuracy over all epochs.
func (h History) MeanAccuracy() float64 {
	if len(h) == 0 {
		return 0
	}
	return stat.Mean(h.Accuracies(), nil)
}

// WriteHistory stores h as a Parquet file with columns epoch, accuracy and
// mean_loss.
func WriteHistory(path string, h History) error {
	if err := parquet.WriteFile(path, []Record(h)); err != nil {
		return errors.Wrapf(err, "failed to write training history to %q", path)
	}
	return nil
}

// ReadHistory loads a training log written by WriteHistory.
func ReadHistory(path string) (History, error) {
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read training history from %q", path)
	}
	return History(rows), nil
}
