// Package worker contains the execution-unit body: it maps an admitted
// task onto the right compute engine and converts engine failures into
// the job's terminal error.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/analyze"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/beam"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/mixer"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/model"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pixel"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/pool"
	"github.com/AhmedShehab1/computational-wave-lab-sub001/internal/spectral"
)

// Options carries server-side defaults applied when a payload leaves
// the matching field unset.
type Options struct {
	MaxImageDimension int    // decode cap per axis; 0 uses the pixel package default
	DefaultBackend    string // transform backend when the payload names none
}

// Worker dispatches tasks to the compute engines. One Worker instance
// serves every execution unit; all job state is local to Run.
type Worker struct {
	engine   *spectral.Engine
	validate *validator.Validate
	opts     Options
}

func New(engine *spectral.Engine, validate *validator.Validate, opts Options) *Worker {
	return &Worker{engine: engine, validate: validate, opts: opts}
}

// Run implements pool.Runner.
func (w *Worker) Run(ctx context.Context, task pool.Task, progress func(float64)) (interface{}, error) {
	switch task.Kind {
	case model.JobKindDecode:
		return w.runDecode(ctx, task.Payload)
	case model.JobKindHistogram:
		return w.runHistogram(ctx, task.Payload, progress)
	case model.JobKindMix:
		return w.runMix(ctx, task.Payload, progress)
	case model.JobKindBeam:
		return w.runBeam(ctx, task.Payload, progress)
	default:
		return nil, fmt.Errorf("unknown job kind %q", task.Kind)
	}
}

func (w *Worker) runDecode(ctx context.Context, raw []byte) (interface{}, error) {
	var p model.DecodeJobPayload
	if err := w.decodePayload(raw, &p); err != nil {
		return nil, err
	}

	opts := pixel.DecodeOptions{MaxDimension: p.MaxDimension}
	if opts.MaxDimension == 0 {
		opts.MaxDimension = w.opts.MaxImageDimension
	}
	if p.TargetWidth != nil {
		opts.TargetWidth = *p.TargetWidth
	}
	if p.TargetHeight != nil {
		opts.TargetHeight = *p.TargetHeight
	}

	buf, err := pixel.Decode(ctx, p.Data, p.Mime, opts)
	if err != nil {
		return nil, err
	}
	return &model.DecodeResult{
		Width:    buf.Width,
		Height:   buf.Height,
		Channels: buf.Channels,
		Samples:  buf.Samples,
	}, nil
}

func (w *Worker) runHistogram(ctx context.Context, raw []byte, progress func(float64)) (interface{}, error) {
	var p model.HistogramJobPayload
	if err := w.decodePayload(raw, &p); err != nil {
		return nil, err
	}

	buf := &pixel.Buffer{
		Width:    p.Width,
		Height:   p.Height,
		Channels: pixel.ChannelsLuminance,
		Samples:  p.Samples,
	}
	field, err := w.engine.Forward(ctx, buf, w.preference(p.Backend))
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(0.5)
	}
	return analyze.Analyze(ctx, field, p.Component)
}

func (w *Worker) runMix(ctx context.Context, raw []byte, progress func(float64)) (interface{}, error) {
	var p model.MixJobPayload
	if err := w.decodePayload(raw, &p); err != nil {
		return nil, err
	}

	req := &mixer.Request{
		SlotIDs:    make([]string, len(p.Images)),
		Images:     make([]*pixel.Buffer, len(p.Images)),
		Mask:       p.Mask,
		Inner:      p.InnerWeights,
		Outer:      p.OuterWeights,
		Mode:       p.Mode,
		Brightness: p.Brightness,
		Preference: w.preference(p.Backend),
	}
	for i, img := range p.Images {
		req.SlotIDs[i] = img.SlotID
		req.Images[i] = &pixel.Buffer{
			Width:    img.Width,
			Height:   img.Height,
			Channels: pixel.ChannelsLuminance,
			Samples:  img.Samples,
		}
	}

	out, backend, err := mixer.Mix(ctx, w.engine, req, progress)
	if err != nil {
		return nil, err
	}
	return &model.MixResult{
		Width:   out.Width,
		Height:  out.Height,
		Samples: out.Samples,
		Backend: backend,
	}, nil
}

func (w *Worker) runBeam(ctx context.Context, raw []byte, progress func(float64)) (interface{}, error) {
	var p model.BeamJobPayload
	if err := w.decodePayload(raw, &p); err != nil {
		return nil, err
	}

	result, err := beam.Simulate(ctx, &p, progress)
	if err != nil {
		return nil, err
	}
	// A cancelled simulation hands back an empty field; report the
	// cancellation instead of completing with no result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (w *Worker) preference(backend string) spectral.Preference {
	if backend == "" {
		backend = w.opts.DefaultBackend
	}
	return spectral.ParsePreference(backend)
}

func (w *Worker) decodePayload(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := w.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
