package spectral

// Backend names
const (
	BackendNative   = "native"
	BackendPortable = "portable"
)

// Preference selects a transform backend per job.
type Preference string

const (
	PreferAuto     Preference = "auto"
	PreferNative   Preference = "native"
	PreferPortable Preference = "portable"
)

// ParsePreference maps a payload string onto a Preference; the empty
// string means auto.
func ParsePreference(s string) Preference {
	switch s {
	case string(PreferNative):
		return PreferNative
	case string(PreferPortable):
		return PreferPortable
	default:
		return PreferAuto
	}
}

// Backend is a 2D transform implementation operating in place on a
// row-major complex grid. IFFT2D output is normalized by the sample
// count, so FFT2D followed by IFFT2D is the identity up to rounding.
type Backend interface {
	Name() string
	FFT2D(data []complex128, width, height int) error
	IFFT2D(data []complex128, width, height int) error
}
