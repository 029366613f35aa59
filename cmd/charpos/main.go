// Command charpos trains a small recurrent classifier that learns where a
// target character sits in random fixed-length strings.
//
// Usage:
//
//	charpos [flags]
//	charpos version
//
// Each epoch prints its mean loss and the accuracy on a freshly drawn
// evaluation set. The trained parameters are saved to -model, the
// accuracy and loss curves to -plot and the per-epoch log to -history.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/charpos/internal/checkpoint"
	"github.com/born-ml/charpos/internal/device"
	"github.com/born-ml/charpos/internal/report"
	"github.com/born-ml/charpos/internal/train"
)

const version = "v0.1.0"

type options struct {
	cfg         train.Config
	backend     device.Kind
	modelPath   string
	plotPath    string
	historyPath string
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("charpos %s\n", version)
		return
	}

	klog.InitFlags(nil)
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		klog.Exitf("%v", err)
	}
	defer klog.Flush()

	if err := execute(opts); err != nil {
		klog.Exitf("%+v", err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	def := train.DefaultConfig()
	epochs := fs.Int("epochs", def.Epochs, "Number of training epochs")
	batchSize := fs.Int("batch", def.BatchSize, "Samples per optimizer step")
	trainSamples := fs.Int("samples", def.TrainSamples, "Training samples drawn per epoch")
	charDim := fs.Int("dim", def.CharDim, "Embedding and hidden state size")
	sentenceLength := fs.Int("length", def.SentenceLength, "Characters per sample")
	lr := fs.Float64("lr", float64(def.LearningRate), "Learning rate for Adam optimizer")
	evalSamples := fs.Int("eval", def.EvalSamples, "Evaluation samples drawn after every epoch")
	alphabet := fs.String("alphabet", def.Alphabet, "Characters samples are drawn from")
	target := fs.String("target", def.Target, "Character to locate")
	seed := fs.Uint64("seed", 0, "Random seed (0 = seed from the clock)")
	backend := fs.String("backend", string(device.CPU), "Compute backend: cpu or webgpu")
	modelPath := fs.String("model", "model.born", "Where to save the trained model")
	plotPath := fs.String("plot", "training.png", "Where to save the accuracy/loss plot (empty = skip)")
	historyPath := fs.String("history", "history.parquet", "Where to save the per-epoch log (empty = skip)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	kind, err := device.ParseKind(*backend)
	if err != nil {
		return options{}, err
	}
	if *modelPath == "" {
		return options{}, errors.New("-model must not be empty")
	}

	return options{
		cfg: train.Config{
			Epochs:         *epochs,
			BatchSize:      *batchSize,
			TrainSamples:   *trainSamples,
			CharDim:        *charDim,
			SentenceLength: *sentenceLength,
			LearningRate:   float32(*lr),
			EvalSamples:    *evalSamples,
			Alphabet:       *alphabet,
			Target:         *target,
			Seed:           *seed,
		},
		backend:     kind,
		modelPath:   *modelPath,
		plotPath:    *plotPath,
		historyPath: *historyPath,
	}, nil
}

func execute(opts options) error {
	if err := device.Check(opts.backend); err != nil {
		return err
	}
	host := device.DetectHost()
	klog.Infof("training on %s backend, host %s", opts.backend, host)

	switch opts.backend {
	case device.WebGPU:
		return runWebGPU(opts, host)
	default:
		return run(opts, host, autodiff.New(cpu.New()))
	}
}

// run trains on backend, then saves the model, plot and history and
// prints a summary of the run.
func run[I tensor.Backend](opts options, host device.Host, backend *autodiff.Backend[I]) error {
	trainer, err := train.New(opts.cfg, backend, os.Stdout)
	if err != nil {
		return err
	}

	history, err := trainer.Run()
	if err != nil {
		return err
	}

	runID, err := checkpoint.Save[*autodiff.Backend[I]](opts.modelPath, trainer.Model(), checkpoint.Meta{
		SentenceLength: opts.cfg.SentenceLength,
		CharDim:        opts.cfg.CharDim,
		Alphabet:       opts.cfg.Alphabet,
		Target:         opts.cfg.Target,
	})
	if err != nil {
		return err
	}

	summary := report.Summary{
		RunID:   runID,
		Backend: string(opts.backend),
		Host:    host.String(),
		History: history,
		Model:   opts.modelPath,
	}
	if opts.plotPath != "" {
		if err := report.PlotHistory(opts.plotPath, history); err != nil {
			return err
		}
		summary.Plot = opts.plotPath
	}
	if opts.historyPath != "" {
		if err := report.WriteHistory(opts.historyPath, history); err != nil {
			return err
		}
		summary.Log = opts.historyPath
	}

	fmt.Println(summary.Render())
	return nil
}
