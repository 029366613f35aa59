//go:build windows

package main

import (
	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/webgpu"
	"github.com/pkg/errors"

	"github.com/born-ml/charpos/internal/device"
)

func runWebGPU(opts options, host device.Host) error {
	gpu, err := webgpu.New()
	if err != nil {
		return errors.Wrap(err, "failed to create WebGPU backend")
	}
	defer gpu.Release()

	return run(opts, host, autodiff.New(gpu))
}
