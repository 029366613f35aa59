// Package device reports the host CPU and the compute backends this build
// can train on.
package device

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// Kind names a compute backend.
type Kind string

// Supported backends.
const (
	CPU    Kind = "cpu"
	WebGPU Kind = "webgpu"
)

// ParseKind maps a -backend flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case CPU, WebGPU:
		return k, nil
	default:
		return "", errors.Errorf("unknown backend %q, want %q or %q", s, CPU, WebGPU)
	}
}

// Host describes the machine the process runs on.
type Host struct {
	OS            string
	Arch          string
	Brand         string
	PhysicalCores int
	LogicalCores  int
	AVX2          bool
	FMA3          bool
}

// DetectHost reads the CPU features of the current machine.
func DetectHost() Host {
	return Host{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Brand:         cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		AVX2:          cpuid.CPU.Supports(cpuid.AVX2),
		FMA3:          cpuid.CPU.Supports(cpuid.FMA3),
	}
}

// String renders h on one line, e.g. "linux/amd64 Intel(R) Xeon(R) (8 cores, avx2, fma3)".
func (h Host) String() string {
	var b strings.Builder
	b.WriteString(h.OS + "/" + h.Arch)
	if h.Brand != "" {
		b.WriteString(" " + h.Brand)
	}
	var extras []string
	if h.PhysicalCores > 0 {
		extras = append(extras, pluralCores(h.PhysicalCores))
	}
	if h.AVX2 {
		extras = append(extras, "avx2")
	}
	if h.FMA3 {
		extras = append(extras, "fma3")
	}
	if len(extras) > 0 {
		b.WriteString(" (" + strings.Join(extras, ", ") + ")")
	}
	return b.String()
}

func pluralCores(n int) string {
	if n == 1 {
		return "1 core"
	}
	return strconv.Itoa(n) + " cores"
}

// Available lists the backends usable on this host. CPU is always first.
func Available() []Kind {
	kinds := []Kind{CPU}
	if webgpuAvailable() {
		kinds = append(kinds, WebGPU)
	}
	return kinds
}

// Check returns an error if k cannot be used on this host.
func Check(k Kind) error {
	for _, a := range Available() {
		if a == k {
			return nil
		}
	}
	return errors.Errorf("backend %q is not available on %s/%s", k, runtime.GOOS, runtime.GOARCH)
}
