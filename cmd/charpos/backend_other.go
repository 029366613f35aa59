//go:build !windows

package main

import (
	"github.com/pkg/errors"

	"github.com/born-ml/charpos/internal/device"
)

func runWebGPU(options, device.Host) error {
	return errors.New("the WebGPU backend is only built for windows")
}
