package dsp

import (
	"log/slog"

	"golang.org/x/sys/cpu"
)

// Backend identifies a kernel implementation family. All backends produce
// bit-identical results.
type Backend int

const (
	// BackendAuto picks a backend from the host CPU features.
	BackendAuto Backend = iota
	// BackendGeneric is the straightforward reference implementation.
	BackendGeneric
	// BackendUnrolled processes whole rows with unrolled, branch-free code.
	BackendUnrolled
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendGeneric:
		return "generic"
	case BackendUnrolled:
		return "unrolled"
	default:
		return "unknown"
	}
}

// ParseBackend maps a backend name back to its value.
func ParseBackend(s string) (Backend, bool) {
	for _, b := range []Backend{BackendAuto, BackendGeneric, BackendUnrolled} {
		if b.String() == s {
			return b, true
		}
	}
	return BackendAuto, false
}

var (
	generic = Metrics{
		Backend:        BackendGeneric,
		SAD16x16:       sad16x16,
		SAD16x16Fast:   sad16x16Fast,
		SAD16x16EA8:    sad16x16EA8,
		SAD16x8:        sad16x8,
		SAD8x8:         sad8x8,
		SAD4x4:         sad4x4,
		SAD4Diamond:    sad4Diamond,
		SubPelSAD16x16: subPelSAD16x16,
		SATQD16x16:     satqd16x16,
		HalfPel:        halfPel16x16,
		Avg:            avgBlock,
	}
	unrolled = Metrics{
		Backend:        BackendUnrolled,
		SAD16x16:       sad16x16Unrolled,
		SAD16x16Fast:   sad16x16FastUnrolled,
		SAD16x16EA8:    sad16x16EA8Unrolled,
		SAD16x8:        sad16x8Unrolled,
		SAD8x8:         sad8x8Unrolled,
		SAD4x4:         sad4x4Unrolled,
		SAD4Diamond:    sad4DiamondUnrolled,
		SubPelSAD16x16: subPelSAD16x16Unrolled,
		SATQD16x16:     satqd16x16Unrolled,
		HalfPel:        halfPel16x16,
		Avg:            avgBlockUnrolled,
	}
)

// Detect reports the preferred backend for the running CPU. Wide out-of-order
// cores (SSE4.2 class x86, ARMv8 with ASIMD) run the unrolled kernels faster.
func Detect() Backend {
	if cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD {
		return BackendUnrolled
	}
	return BackendGeneric
}

// Select returns the kernel table for b and logs the choice to logger, or
// to slog.Default() when logger is nil. The returned table is shared and
// must not be modified.
func Select(b Backend, logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}
	if b == BackendAuto {
		b = Detect()
	}
	var m *Metrics
	switch b {
	case BackendUnrolled:
		m = &unrolled
	default:
		m = &generic
	}
	logger.Debug("distortion kernels selected", "backend", m.Backend.String())
	return m
}
