// Package capability probes the host once at startup and hands the
// result around as an immutable record. Nothing in here is memoized
// behind a first call; Detect is invoked exactly once from main.
package capability

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Record captures the hardware facts the compute layers care about.
type Record struct {
	LogicalCPUs int
	// Vector reports the widest usable SIMD extension, or "scalar".
	Vector string
	// PreferNative is true when the native transform backend is a
	// sensible default for this host.
	PreferNative bool
}

// Detect inspects the host. Set WAVELAB_NO_SIMD=1 to force the
// portable transform backend regardless of hardware.
func Detect() Record {
	rec := Record{
		LogicalCPUs: runtime.NumCPU(),
		Vector:      vectorName(),
	}
	rec.PreferNative = rec.Vector != "scalar" && os.Getenv("WAVELAB_NO_SIMD") == ""
	return rec
}

// DefaultPoolSize derives the execution-unit count: one unit per
// logical CPU minus one reserved for the serving path, floor 1.
func (r Record) DefaultPoolSize() int {
	if r.LogicalCPUs <= 1 {
		return 1
	}
	return r.LogicalCPUs - 1
}

func vectorName() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "avx512"
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.X86.HasSSE42:
		return "sse4.2"
	case cpu.ARM64.HasASIMD:
		return "neon"
	default:
		return "scalar"
	}
}
