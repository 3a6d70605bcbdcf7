package model

// LuminanceImage is a single-channel 8-bit image carried in a payload.
// Samples are base64-encoded on the wire (standard JSON []byte encoding).
type LuminanceImage struct {
	SlotID  string `json:"slotId" validate:"required"`
	Width   int    `json:"width" validate:"required,min=1"`
	Height  int    `json:"height" validate:"required,min=1"`
	Samples []byte `json:"samples" validate:"required"`
}

// RegionMaskSpec describes a mask in fractions of the image extent
type RegionMaskSpec struct {
	Shape  string  `json:"shape" validate:"required,oneof=circle rect"`
	Radius float64 `json:"radius,omitempty" validate:"omitempty,gt=0,lte=1"`
	Width  float64 `json:"width,omitempty" validate:"omitempty,gt=0,lte=1"`
	Height float64 `json:"height,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// WeightPair holds the two per-slot channel weights
type WeightPair struct {
	W1 float64 `json:"w1"`
	W2 float64 `json:"w2"`
}

// BrightnessConfig controls post-mix brightness adjustment
type BrightnessConfig struct {
	Target   string  `json:"target" validate:"omitempty,oneof=spatial none"`
	Value    float64 `json:"value"`
	Contrast float64 `json:"contrast"`
}

// MixJobPayload contains the data for a spectral-mix job
type MixJobPayload struct {
	Images       []LuminanceImage      `json:"images" validate:"required,min=1,dive"`
	Mask         RegionMaskSpec        `json:"mask" validate:"required"`
	InnerWeights map[string]WeightPair `json:"innerWeights" validate:"required"`
	OuterWeights map[string]WeightPair `json:"outerWeights" validate:"required"`
	Mode         string                `json:"mode" validate:"required,oneof=real-imag mag-phase"`
	Brightness   BrightnessConfig      `json:"brightness"`
	Backend      string                `json:"backend,omitempty" validate:"omitempty,oneof=auto native portable"`
}

// MixResult is the terminal payload of a spectral-mix job
type MixResult struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Samples []byte `json:"samples"`
	Backend string `json:"backend"`
}

// HistogramJobPayload contains the data for a histogram-analysis job
type HistogramJobPayload struct {
	Width     int    `json:"width" validate:"required,min=1"`
	Height    int    `json:"height" validate:"required,min=1"`
	Samples   []byte `json:"samples" validate:"required"`
	Component string `json:"component" validate:"required,oneof=magnitude phase real imag"`
	Backend   string `json:"backend,omitempty" validate:"omitempty,oneof=auto native portable"`
}

// HistogramResult is the terminal payload of a histogram-analysis job
type HistogramResult struct {
	Bins    []float64 `json:"bins"` // 256 bins, mode normalized to 1.0
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Mean    float64   `json:"mean"`
	StdDev  float64   `json:"stdDev"`
	Visual  []byte    `json:"visual"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Backend string    `json:"backend"`
}

// DecodeJobPayload contains the data for a decode/resize job
type DecodeJobPayload struct {
	Data         []byte `json:"data" validate:"required"`
	Mime         string `json:"mime" validate:"required"`
	TargetWidth  *int   `json:"targetWidth,omitempty" validate:"omitempty,min=1,max=8192"`
	TargetHeight *int   `json:"targetHeight,omitempty" validate:"omitempty,min=1,max=8192"`
	MaxDimension int    `json:"maxDimension,omitempty" validate:"omitempty,min=16,max=8192"`
}

// DecodeResult is the terminal payload of a decode/resize job
type DecodeResult struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Samples  []byte `json:"samples"`
}

// ArrayDescriptor describes one phased array to expand into elements.
// Pitch, positions and curvature radius are meters; angles are radians.
type ArrayDescriptor struct {
	Enabled         *bool     `json:"enabled,omitempty"` // nil means enabled
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	ElementCount    int       `json:"elementCount" validate:"required,min=1,max=1024"`
	Pitch           float64   `json:"pitch" validate:"required,gt=0"`
	Geometry        string    `json:"geometry" validate:"required,oneof=linear curved"`
	CurvatureRadius float64   `json:"curvatureRadius,omitempty" validate:"required_if=Geometry curved,omitempty,gt=0"`
	Frequency       float64   `json:"frequency" validate:"required,gt=0"`
	SteeringAngle   float64   `json:"steeringAngle"`
	Amplitudes      []float64 `json:"amplitudes,omitempty"`
}

// IsEnabled reports whether the descriptor participates in the simulation.
func (d *ArrayDescriptor) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Medium describes the propagation medium
type Medium struct {
	Name  string  `json:"name,omitempty"`
	Speed float64 `json:"speed" validate:"required,gt=0"` // m/s
}

// BeamJobPayload contains the data for a beam-simulate job
type BeamJobPayload struct {
	Descriptors []ArrayDescriptor `json:"descriptors" validate:"required,min=1,dive"`
	Medium      Medium            `json:"medium" validate:"required"`
	GridWidth   int               `json:"gridWidth" validate:"required,min=1,max=4096"`
	GridHeight  int               `json:"gridHeight" validate:"required,min=1,max=4096"`
	FieldSize   float64           `json:"fieldSize" validate:"required,gt=0"` // meters
	Normalize   bool              `json:"normalize"`
}

// BeamResult is the terminal payload of a beam-simulate job
type BeamResult struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Intensity []float32 `json:"intensity"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
}
