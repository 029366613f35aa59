// Package report renders the outcome of a training run: per-epoch console
// lines, the end-of-run summary, the accuracy/loss curves and the training
// log export.
package report

import (
	"fmt"
	"io"
)

// Console writes the fixed-format per-epoch diagnostics.
//
// The wording matches the reference script so runs can be compared line
// by line:
//
//	=========
//	第1轮平均loss:2.312345
//	本次预测集中共有200个样本
//	正确预测个数: 23, 正确率: 0.115000
type Console struct {
	w io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// EpochLoss prints the mean training loss of a 1-based epoch.
func (c *Console) EpochLoss(epoch int, meanLoss float64) {
	fmt.Fprintf(c.w, "=========\n第%d轮平均loss:%f\n", epoch, meanLoss)
}

// EvalSize prints the number of samples in the evaluation set.
func (c *Console) EvalSize(n int) {
	fmt.Fprintf(c.w, "本次预测集中共有%d个样本\n", n)
}

// EvalResult prints the number of correct predictions and the accuracy.
func (c *Console) EvalResult(correct int, accuracy float64) {
	fmt.Fprintf(c.w, "正确预测个数: %d, 正确率: %f\n", correct, accuracy)
}
