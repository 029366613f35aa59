//go:build !windows

package device

// The WebGPU backend is only built for windows.
func webgpuAvailable() bool {
	return false
}
