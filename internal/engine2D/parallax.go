package engine2D

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/engine2D/frame"
	"parallax-banner/internal/engine2D/particle"
	"parallax-banner/internal/input"
	"parallax-banner/internal/utils"
)

// DefaultHomingDuration is how long the return-to-rest animation takes.
const DefaultHomingDuration = 200 * time.Millisecond

// EngineState is the engine's only mutable animation state.
type EngineState struct {
	// PointerOffset is the signed distance from the pointer-enter X.
	PointerOffset float64
	// HomingStart is the timestamp of the first homing frame, 0 when idle.
	HomingStart time.Duration
	// ActiveFrame is the single pending frame request, 0 when none.
	ActiveFrame frame.Handle
}

type Options struct {
	// Container is nil when the mount point could not be found; the engine
	// then does nothing.
	Container Container
	Media     MediaFactory
	Window    *input.Dispatcher

	Frames         *frame.Scheduler
	ParticleFrames *frame.Scheduler
	Decode         particle.Decoder
	Rand           func() float64

	BaseWidth      float64
	HomingDuration time.Duration
}

type mountedLayer struct {
	state LayerState
	el    Element
}

// Engine drives a parallax banner: it builds the layer stack for a
// descriptor, maps pointer movement onto per-layer transforms, eases the
// layers home when the pointer leaves, and supervises the particle overlay.
type Engine struct {
	container      Container
	media          MediaFactory
	window         *input.Dispatcher
	frames         *frame.Scheduler
	particleFrames *frame.Scheduler
	decode         particle.Decoder
	rand           func() float64
	baseWidth      float64
	homingDuration time.Duration

	state         EngineState
	homingClock   bool
	originX       float64
	mode          banner.Mode
	viewportWidth float64
	compensation  float64

	layers          []mountedLayer
	videos          []VideoElement
	particles       *particle.Simulation
	cancelParticles context.CancelFunc

	removers []func()
}

func NewEngine(opts Options) *Engine {
	if opts.BaseWidth <= 0 {
		opts.BaseWidth = BaseWidth
	}
	if opts.HomingDuration <= 0 {
		opts.HomingDuration = DefaultHomingDuration
	}
	if opts.Frames == nil {
		opts.Frames = frame.NewScheduler()
	}
	if opts.ParticleFrames == nil {
		opts.ParticleFrames = frame.NewScheduler()
	}

	if opts.Container == nil {
		utils.Debug("Banner container not found, parallax engine disabled")
	}

	return &Engine{
		container:      opts.Container,
		media:          opts.Media,
		window:         opts.Window,
		frames:         opts.Frames,
		particleFrames: opts.ParticleFrames,
		decode:         opts.Decode,
		rand:           opts.Rand,
		baseWidth:      opts.BaseWidth,
		homingDuration: opts.HomingDuration,
		compensation:   1,
	}
}

// Start attaches the pointer and window listeners. Calling it again while
// attached does nothing.
func (e *Engine) Start() {
	if e.container == nil || len(e.removers) > 0 {
		return
	}

	events := e.container.Events()
	e.removers = append(e.removers,
		events.On(input.PointerEnter, e.onPointerEnter),
		events.On(input.PointerMove, e.onPointerMove),
		events.On(input.PointerLeave, e.onPointerLeave),
	)
	if e.window != nil {
		e.removers = append(e.removers,
			e.window.On(input.Resize, e.onResize),
			e.window.On(input.Blur, e.onPointerLeave),
		)
	}
}

// UpdateData replaces whatever is mounted with desc. It never fails: media
// that cannot be created is logged and skipped, and an unknown descriptor
// renders nothing.
func (e *Engine) UpdateData(desc banner.Descriptor) {
	if e.container == nil {
		return
	}

	// originX survives the swap: a pointer already inside the banner gets
	// no new enter event.
	e.teardown()
	e.state = EngineState{}
	e.homingClock = false
	e.mode = desc.Mode
	e.viewportWidth = e.container.ViewportWidth()
	e.compensation = Compensation(e.viewportWidth, e.baseWidth)

	switch desc.Mode {
	case banner.ModeSimpleVideo:
		e.mountFixedVideo(desc.Video)

	case banner.ModeParallax:
		for _, layer := range desc.Layers {
			el, err := e.createElement(layer)
			if err != nil {
				utils.Error("Failed to create %s layer %s: %v", layer.Kind, layer.Src, err)
				continue
			}
			ml := mountedLayer{state: NewLayerState(layer, e.compensation), el: el}
			el.SetSize(ml.state.Width, ml.state.Height)
			e.container.Append(el)
			e.layers = append(e.layers, ml)
		}
		e.apply(0, false, 0)

		if desc.Particles != nil {
			e.startParticles(*desc.Particles)
		}
		utils.Debug("Banner %q mounted: %d layers, compensation %.3f", desc.Name, len(e.layers), e.compensation)

	default:
		utils.Warn("Unknown banner descriptor shape for %q, nothing rendered", desc.Name)
	}
}

// Destroy releases everything the engine created and detaches its
// listeners. It is safe to call repeatedly.
func (e *Engine) Destroy() {
	if e.container == nil {
		return
	}

	e.teardown()
	for _, remove := range e.removers {
		remove()
	}
	e.removers = nil
	e.state = EngineState{}
	e.homingClock = false
	e.mode = banner.ModeUnknown
}

// teardown cancels scheduled work before touching any mounted element so a
// late frame can never write to a released layer.
func (e *Engine) teardown() {
	e.cancelFrame()
	e.disposeParticles()

	for _, v := range e.videos {
		v.Pause()
		v.Detach()
	}
	e.videos = nil
	e.layers = nil
	e.container.Clear()
}

func (e *Engine) createElement(layer banner.Layer) (Element, error) {
	if e.media == nil {
		return nil, errors.New("no media factory")
	}

	switch layer.Kind {
	case banner.KindImage:
		return e.media.NewImage(layer.Src, layer.Blur)
	case banner.KindVideo:
		v, err := e.media.NewVideo(layer.Src, VideoOptions{Loop: true, Muted: true, Autoplay: true})
		if err != nil {
			return nil, err
		}
		e.videos = append(e.videos, v)
		return v, nil
	}
	return nil, fmt.Errorf("unsupported layer kind %v", layer.Kind)
}

func (e *Engine) mountFixedVideo(src string) {
	if e.media == nil {
		utils.Error("No media factory, cannot mount video %s", src)
		return
	}

	v, err := e.media.NewVideo(src, VideoOptions{Loop: true, Muted: true, Autoplay: true})
	if err != nil {
		utils.Error("Failed to create video %s: %v", src, err)
		return
	}

	// Fill the container height, centred.
	w, h := v.NaturalSize()
	_, ch := e.container.Size()
	if h > 0 && ch > 0 {
		scale := ch / h
		w, h = w*scale, h*scale
	}
	v.SetSize(w, h)
	v.SetTransform(Identity())
	e.container.Append(v)
	e.videos = append(e.videos, v)
}

func (e *Engine) startParticles(cfg banner.ParticleConfig) {
	if e.decode == nil {
		utils.Warn("Particle layer present but no image decoder configured")
		return
	}

	sim := particle.New(particle.Options{
		Config: cfg,
		Canvas: e.container.NewCanvas(),
		Frames: e.particleFrames,
		Decode: e.decode,
		Rand:   e.rand,
	})
	ctx, cancel := context.WithCancel(context.Background())
	e.particles = sim
	e.cancelParticles = cancel

	done := sim.Start(ctx)
	go func() {
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				utils.Error("Particle simulation failed to start: %v", err)
			}
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) disposeParticles() {
	if e.particles == nil {
		return
	}
	e.cancelParticles()
	e.particles.Dispose()
	e.particles = nil
	e.cancelParticles = nil
}

func (e *Engine) cancelFrame() {
	e.frames.Cancel(e.state.ActiveFrame)
	e.state.ActiveFrame = 0
}

func (e *Engine) onPointerEnter(ev input.Event) {
	if e.mode != banner.ModeParallax {
		return
	}
	e.originX = ev.X
}

func (e *Engine) onPointerMove(ev input.Event) {
	if e.mode != banner.ModeParallax {
		return
	}
	e.state.PointerOffset = ev.X - e.originX
	e.state.HomingStart = 0
	e.homingClock = false
	e.cancelFrame()
	e.state.ActiveFrame = e.frames.Request(e.trackingFrame)
}

func (e *Engine) onPointerLeave(input.Event) {
	if e.mode != banner.ModeParallax {
		return
	}
	e.cancelFrame()
	e.state.HomingStart = 0
	e.homingClock = false
	e.state.ActiveFrame = e.frames.Request(e.homingFrame)
}

func (e *Engine) onResize(ev input.Event) {
	if e.mode != banner.ModeParallax {
		return
	}

	e.viewportWidth = ev.Width
	if e.viewportWidth <= 0 {
		e.viewportWidth = e.container.ViewportWidth()
	}
	e.compensation = Compensation(e.viewportWidth, e.baseWidth)

	for i := range e.layers {
		ml := &e.layers[i]
		ml.state = NewLayerState(ml.state.Layer, e.compensation)
		ml.el.SetSize(ml.state.Width, ml.state.Height)
	}
	if e.particles != nil {
		e.particles.Resize(e.container.Size())
	}

	// A pending frame will pick up the new bases; otherwise show them now.
	if e.state.ActiveFrame == 0 {
		e.apply(e.state.PointerOffset, false, 0)
	}
}

func (e *Engine) trackingFrame(time.Duration) {
	e.state.ActiveFrame = 0
	e.apply(e.state.PointerOffset, false, 0)
}

func (e *Engine) homingFrame(now time.Duration) {
	// 0 is a valid frame timestamp, so HomingStart alone cannot mark the
	// clock as started.
	if !e.homingClock {
		e.homingClock = true
		e.state.HomingStart = now
	}

	progress := 1.0
	if e.homingDuration > 0 {
		progress = math.Min(float64(now-e.state.HomingStart)/float64(e.homingDuration), 1)
	}
	eased := EaseOutQuart(progress)

	e.apply(Lerp(e.state.PointerOffset, 0, eased), true, eased)

	if progress < 1 {
		e.state.ActiveFrame = e.frames.Request(e.homingFrame)
		return
	}
	e.state.ActiveFrame = 0
	e.state.HomingStart = 0
	e.homingClock = false
	e.state.PointerOffset = 0
}

// apply writes every layer's transform for effective offset m. Opacity is
// driven by the live pointer offset, not by m.
func (e *Engine) apply(m float64, homing bool, progress float64) {
	for i := range e.layers {
		ml := &e.layers[i]
		ml.el.SetTransform(ml.state.Transform(m))
		if o, ok := ml.state.Opacity(e.state.PointerOffset, e.viewportWidth, homing, progress); ok {
			ml.el.SetOpacity(o)
		}
	}
}

func (e *Engine) State() EngineState { return e.state }

func (e *Engine) Mode() banner.Mode { return e.mode }

func (e *Engine) Compensation() float64 { return e.compensation }

// Layers returns a copy of the current derived layer states.
func (e *Engine) Layers() []LayerState {
	out := make([]LayerState, len(e.layers))
	for i, ml := range e.layers {
		out[i] = ml.state
	}
	return out
}

// Particles is the running simulation, or nil.
func (e *Engine) Particles() *particle.Simulation { return e.particles }

// Listening reports whether Start has attached listeners.
func (e *Engine) Listening() bool { return len(e.removers) > 0 }
