package report

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot size on disk.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// PlotHistory draws the accuracy and mean-loss curves over epoch index and
// saves them to path. The image format follows the extension (.png, .svg,
// .pdf, ...).
func PlotHistory(path string, h History) error {
	if len(h) == 0 {
		return errors.New("cannot plot an empty training history")
	}

	acc := make(plotter.XYs, len(h))
	loss := make(plotter.XYs, len(h))
	for i, r := range h {
		acc[i].X, acc[i].Y = float64(i), r.Accuracy
		loss[i].X, loss[i].Y = float64(i), r.MeanLoss
	}

	p := plot.New()
	p.Title.Text = "Target character position"
	p.X.Label.Text = "epoch"
	p.Legend.Top = true

	if err := plotutil.AddLinePoints(p, "acc", acc, "loss", loss); err != nil {
		return errors.Wrap(err, "failed to add curves")
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}
