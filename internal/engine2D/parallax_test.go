package engine2D

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/engine2D/frame"
	"parallax-banner/internal/engine2D/particle"
	"parallax-banner/internal/input"
)

type fakeElement struct {
	src       string
	width     float64
	height    float64
	transform Matrix
	opacity   float64
	opacities int
	paused    bool
	detached  bool
}

func (e *fakeElement) SetSize(w, h float64)            { e.width, e.height = w, h }
func (e *fakeElement) SetTransform(m Matrix)           { e.transform = m }
func (e *fakeElement) SetOpacity(o float64)            { e.opacity = o; e.opacities++ }
func (e *fakeElement) NaturalSize() (float64, float64) { return 1920, 1080 }
func (e *fakeElement) Pause()                          { e.paused = true }
func (e *fakeElement) Detach()                         { e.detached = true }

type fakeMedia struct {
	fail    map[string]bool
	created []*fakeElement
}

func (m *fakeMedia) NewImage(src string, blur float64) (Element, error) {
	if m.fail[src] {
		return nil, errors.New("decode failed")
	}
	el := &fakeElement{src: src}
	m.created = append(m.created, el)
	return el, nil
}

func (m *fakeMedia) NewVideo(src string, opts VideoOptions) (VideoElement, error) {
	if m.fail[src] {
		return nil, errors.New("no decoder")
	}
	el := &fakeElement{src: src}
	m.created = append(m.created, el)
	return el, nil
}

type fakeSprite struct{}

func (fakeSprite) Width() float64  { return 8 }
func (fakeSprite) Height() float64 { return 8 }

type fakeCanvas struct {
	width, height float64
}

func (c *fakeCanvas) Size() (float64, float64)           { return c.width, c.height }
func (c *fakeCanvas) Resize(w, h float64)                { c.width, c.height = w, h }
func (c *fakeCanvas) Clear()                             {}
func (c *fakeCanvas) Upload(image.Image) particle.Sprite { return fakeSprite{} }
func (c *fakeCanvas) Free(particle.Sprite)               {}
func (c *fakeCanvas) DrawSprite(particle.Sprite, float64, float64, float64, float64, float64, float64) {
}

type fakeContainer struct {
	width, height float64
	viewport      float64
	events        *input.Dispatcher
	mounted       []Element
	canvases      []*fakeCanvas
	clears        int
}

func newFakeContainer(viewport float64) *fakeContainer {
	return &fakeContainer{width: viewport, height: 200, viewport: viewport, events: input.NewDispatcher()}
}

func (c *fakeContainer) Size() (float64, float64)  { return c.width, c.height }
func (c *fakeContainer) ViewportWidth() float64    { return c.viewport }
func (c *fakeContainer) Events() *input.Dispatcher { return c.events }
func (c *fakeContainer) Append(el Element)         { c.mounted = append(c.mounted, el) }
func (c *fakeContainer) NewCanvas() particle.Canvas {
	cv := &fakeCanvas{width: c.width, height: c.height}
	c.canvases = append(c.canvases, cv)
	return cv
}
func (c *fakeContainer) Clear() {
	c.mounted = nil
	c.clears++
}

type harness struct {
	engine    *Engine
	container *fakeContainer
	media     *fakeMedia
	window    *input.Dispatcher
	frames    *frame.Scheduler
	particles *frame.Scheduler
	now       time.Duration
}

func newHarness(viewport float64) *harness {
	h := &harness{
		container: newFakeContainer(viewport),
		media:     &fakeMedia{fail: map[string]bool{}},
		window:    input.NewDispatcher(),
		frames:    frame.NewScheduler(),
		particles: frame.NewScheduler(),
		now:       time.Second,
	}
	h.engine = NewEngine(Options{
		Container:      h.container,
		Media:          h.media,
		Window:         h.window,
		Frames:         h.frames,
		ParticleFrames: h.particles,
		Decode: func(ctx context.Context, src string) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
		},
		Rand: func() float64 { return 0.5 },
	})
	h.engine.Start()
	return h
}

func (h *harness) tick() {
	h.now += 16 * time.Millisecond
	h.frames.Tick(h.now)
}

func (h *harness) pointer(kind input.Kind, x float64) {
	h.container.events.Emit(input.Event{Kind: kind, X: x})
}

// runHoming ticks until no frame is pending.
func (h *harness) runHoming(t *testing.T) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if h.engine.State().ActiveFrame == 0 {
			return
		}
		h.tick()
	}
	t.Fatal("homing never finished")
}

func (h *harness) element(i int) *fakeElement {
	return h.container.mounted[i].(*fakeElement)
}

func scenarioDescriptor() banner.Descriptor {
	return banner.Parallax([]banner.Layer{
		{Src: "bg.png", Kind: banner.KindImage, Width: 3000, Height: 250, Transform: [6]float64{1, 0, 0, 1, 100, 50}, Accel: 0.05},
		{
			Src: "fg.webm", Kind: banner.KindVideo, Width: 600, Height: 250,
			Transform:    [6]float64{0.9, 0.1, -0.05, 1.1, -30, 20},
			Accel:        -0.12,
			Gravity:      0.03,
			ScaleCoef:    f64(0.0004),
			RotationCoef: f64(0.0002),
			OpacityRange: &banner.Range{0.2, 0.8},
		},
	}, nil)
}

func TestEngineTrackingScenario(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())

	if len(h.container.mounted) != 2 {
		t.Fatalf("mounted: got %d, want 2", len(h.container.mounted))
	}
	if got := h.element(0).transform; got.TX != 100 || got.TY != 50 {
		t.Errorf("rest translation: got (%v, %v), want (100, 50)", got.TX, got.TY)
	}

	h.pointer(input.PointerEnter, 300)
	h.pointer(input.PointerMove, 500)
	if h.engine.State().PointerOffset != 200 {
		t.Fatalf("PointerOffset: got %v, want 200", h.engine.State().PointerOffset)
	}
	h.tick()

	if got := h.element(0).transform; got.TX != 110 || got.TY != 50 {
		t.Errorf("tracked translation: got (%v, %v), want (110, 50)", got.TX, got.TY)
	}
	if h.engine.State().ActiveFrame != 0 {
		t.Error("tracking frame should clear ActiveFrame once applied")
	}
}

func TestEngineOpacityScenario(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())

	if got := h.element(1).opacity; !near(got, 0.2) {
		t.Errorf("rest opacity: got %v, want 0.2", got)
	}

	h.pointer(input.PointerEnter, 100)
	h.pointer(input.PointerMove, 350)
	h.tick()

	if got := h.element(1).opacity; !near(got, 0.5) {
		t.Errorf("opacity at offset 250: got %v, want 0.5", got)
	}
	if h.element(0).opacities != 0 {
		t.Error("layer without opacity range had opacity set")
	}
}

func TestEngineMovesCoalesceIntoOneFrame(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())

	h.pointer(input.PointerEnter, 0)
	for x := 10.0; x <= 100; x += 10 {
		h.pointer(input.PointerMove, x)
		if h.frames.Pending() != 1 {
			t.Fatalf("pending frames after move to %v: %d", x, h.frames.Pending())
		}
	}
	h.pointer(input.PointerLeave, 100)
	if h.frames.Pending() != 1 {
		t.Fatalf("pending frames after leave: %d", h.frames.Pending())
	}

	h.tick()
	if h.frames.Pending() != 1 {
		t.Errorf("homing should keep exactly one frame queued, got %d", h.frames.Pending())
	}
}

func TestEngineHomingReturnsToRest(t *testing.T) {
	for _, start := range []float64{-640, -1, 3, 250, 1999} {
		h := newHarness(1000)
		h.engine.UpdateData(scenarioDescriptor())
		rest := make([]Matrix, 2)
		for i := range rest {
			rest[i] = h.engine.Layers()[i].Transform(0)
		}

		h.pointer(input.PointerEnter, 1000)
		h.pointer(input.PointerMove, 1000+start)
		h.tick()
		h.pointer(input.PointerLeave, 0)
		h.runHoming(t)

		st := h.engine.State()
		if st.PointerOffset != 0 || st.HomingStart != 0 || st.ActiveFrame != 0 {
			t.Errorf("start %v: state after homing %+v, want rest", start, st)
		}
		for i := range rest {
			if got := h.element(i).transform; got != rest[i] {
				t.Errorf("start %v: layer %d transform %+v, want %+v", start, i, got, rest[i])
			}
		}
		if got := h.element(1).opacity; !near(got, 0.2) {
			t.Errorf("start %v: final opacity %v, want 0.2", start, got)
		}
	}
}

func TestEngineHomingEases(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 400)
	h.tick()
	h.pointer(input.PointerLeave, 400)

	var xs []float64
	for h.engine.State().ActiveFrame != 0 {
		h.tick()
		xs = append(xs, h.element(0).transform.TX)
	}

	if xs[0] != 100+400*0.05 {
		t.Errorf("first homing frame should be at the current offset, got %v", xs[0])
	}
	if xs[len(xs)-1] != 100 {
		t.Errorf("last homing frame: got %v, want 100", xs[len(xs)-1])
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[i-1] {
			t.Fatalf("homing moved away from rest at frame %d: %v", i, xs)
		}
	}
	// Ease-out: the first step covers more ground than the last.
	first := xs[0] - xs[1]
	last := xs[len(xs)-2] - xs[len(xs)-1]
	if first <= last {
		t.Errorf("homing does not decelerate: first step %v, last step %v", first, last)
	}
}

func TestEngineHomingOpacityAsymmetry(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())

	// Negative excursion: opacity stays pinned at the rest bound.
	h.pointer(input.PointerEnter, 500)
	h.pointer(input.PointerMove, 100)
	h.tick()
	h.pointer(input.PointerLeave, 100)
	for h.engine.State().ActiveFrame != 0 {
		h.tick()
		if got := h.element(1).opacity; !near(got, 0.2) {
			t.Fatalf("negative homing opacity %v, want 0.2", got)
		}
	}

	// Positive excursion: fades from the extreme bound back to rest.
	h.pointer(input.PointerEnter, 100)
	h.pointer(input.PointerMove, 150)
	h.tick()
	h.pointer(input.PointerLeave, 150)
	h.tick()
	if got := h.element(1).opacity; !near(got, 0.8) {
		t.Errorf("first positive homing frame opacity %v, want 0.8", got)
	}
	h.runHoming(t)
	if got := h.element(1).opacity; !near(got, 0.2) {
		t.Errorf("final positive homing opacity %v, want 0.2", got)
	}
}

func TestEngineBlurStartsHoming(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 80)
	h.tick()

	h.window.Emit(input.Event{Kind: input.Blur})
	h.runHoming(t)

	if h.engine.State().PointerOffset != 0 {
		t.Errorf("offset after blur homing: %v", h.engine.State().PointerOffset)
	}
}

func TestEngineResizeRecompensates(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	if h.engine.Compensation() != 1 {
		t.Fatalf("initial compensation %v, want 1", h.engine.Compensation())
	}

	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 40)
	h.tick()

	h.container.viewport = 2 * BaseWidth
	h.window.Emit(input.Event{Kind: input.Resize, Width: 2 * BaseWidth, Height: 1080})

	if h.engine.Compensation() != 2 {
		t.Fatalf("compensation after resize %v, want 2", h.engine.Compensation())
	}
	layers := h.engine.Layers()
	if layers[0].Base.TX != 200 || layers[0].Base.TY != 100 {
		t.Errorf("compensated base: got (%v, %v), want (200, 100)", layers[0].Base.TX, layers[0].Base.TY)
	}
	if h.element(0).width != 6000 || h.element(0).height != 500 {
		t.Errorf("element size: got %vx%v, want 6000x500", h.element(0).width, h.element(0).height)
	}
	if h.engine.State().PointerOffset != 40 {
		t.Errorf("resize reset pointer offset to %v", h.engine.State().PointerOffset)
	}
	if got := h.element(0).transform.TX; got != 200+40*0.05 {
		t.Errorf("transform after resize: TX=%v, want %v", got, 200+40*0.05)
	}
}

func TestEngineDestroyTwice(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 50)

	h.engine.Destroy()
	h.engine.Destroy()

	if h.engine.State().ActiveFrame != 0 || h.frames.Pending() != 0 {
		t.Errorf("frame still scheduled after destroy: %+v", h.engine.State())
	}
	if h.container.events.Len() != 0 || h.window.Len() != 0 {
		t.Errorf("listeners left attached: container %d, window %d", h.container.events.Len(), h.window.Len())
	}
	if len(h.container.mounted) != 0 {
		t.Errorf("container not cleared: %d elements", len(h.container.mounted))
	}
	video := h.media.created[1]
	if !video.paused || !video.detached {
		t.Errorf("video not released: paused=%v detached=%v", video.paused, video.detached)
	}

	h.pointer(input.PointerMove, 90)
	if h.frames.Pending() != 0 {
		t.Error("pointer events still handled after destroy")
	}
}

func TestEngineStartIsIdempotent(t *testing.T) {
	h := newHarness(1000)
	h.engine.Start()
	h.engine.Start()
	if got := h.container.events.Len(); got != 3 {
		t.Errorf("container listeners: got %d, want 3", got)
	}
	if got := h.window.Len(); got != 2 {
		t.Errorf("window listeners: got %d, want 2", got)
	}
}

func TestEngineFixedVideoIgnoresPointer(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(banner.SimpleVideo("hero.webm"))

	if len(h.container.mounted) != 1 {
		t.Fatalf("mounted: got %d, want 1", len(h.container.mounted))
	}
	v := h.element(0)
	if v.height != 200 || !near(v.width, 1920*200.0/1080) {
		t.Errorf("video size: got %vx%v", v.width, v.height)
	}

	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 300)
	h.pointer(input.PointerLeave, 300)
	h.window.Emit(input.Event{Kind: input.Resize, Width: 4000})

	if h.frames.Pending() != 0 || h.engine.State().PointerOffset != 0 {
		t.Errorf("fixed video reacted to input: %+v", h.engine.State())
	}
}

func TestEngineUpdateDataReplaces(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	first := h.media.created[1]

	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 120)

	h.engine.UpdateData(scenarioDescriptor())

	if h.frames.Pending() != 0 {
		t.Errorf("stale frame survived UpdateData: pending %d", h.frames.Pending())
	}
	if st := h.engine.State(); st != (EngineState{}) {
		t.Errorf("state not reset: %+v", st)
	}
	if !first.paused || !first.detached {
		t.Error("previous video not released")
	}
	if len(h.container.mounted) != 2 || h.container.clears != 2 {
		t.Errorf("mounted %d after %d clears, want 2 after 2", len(h.container.mounted), h.container.clears)
	}
}

func TestEngineSkipsFailedMedia(t *testing.T) {
	h := newHarness(1000)
	h.media.fail["bg.png"] = true
	h.engine.UpdateData(scenarioDescriptor())

	if len(h.container.mounted) != 1 || h.element(0).src != "fg.webm" {
		t.Errorf("mounted: %d elements", len(h.container.mounted))
	}
}

func TestEngineUnknownDescriptor(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	h.engine.UpdateData(banner.Descriptor{Mode: banner.ModeUnknown})

	if len(h.container.mounted) != 0 {
		t.Errorf("unknown descriptor mounted %d elements", len(h.container.mounted))
	}
	h.pointer(input.PointerMove, 10)
	if h.frames.Pending() != 0 {
		t.Error("unknown descriptor should not react to pointer")
	}
}

func TestEngineWithoutContainer(t *testing.T) {
	e := NewEngine(Options{})
	e.Start()
	e.UpdateData(scenarioDescriptor())
	e.Destroy()
	e.Destroy()

	if e.Listening() || len(e.Layers()) != 0 {
		t.Error("engine without container should stay inert")
	}
}

func TestEngineParticleLifecycle(t *testing.T) {
	h := newHarness(1000)
	desc := scenarioDescriptor()
	desc.Particles = &banner.ParticleConfig{
		Srcs:         []string{"leaf.png"},
		Count:        5,
		SpeedRange:   banner.Range{1, 2},
		SizeRange:    banner.Range{1, 1},
		OpacityRange: banner.Range{1, 1},
	}
	h.engine.UpdateData(desc)

	sim := h.engine.Particles()
	if sim == nil {
		t.Fatal("particle simulation not created")
	}
	if len(h.container.canvases) != 1 {
		t.Fatalf("canvases: got %d, want 1", len(h.container.canvases))
	}

	deadline := time.Now().Add(2 * time.Second)
	for !sim.Running() && time.Now().Before(deadline) {
		h.particles.Tick(h.now)
		time.Sleep(time.Millisecond)
	}
	if !sim.Running() {
		t.Fatal("particle simulation never started")
	}

	h.container.viewport = 1500
	h.container.width = 1500
	h.window.Emit(input.Event{Kind: input.Resize, Width: 1500})
	if w, _ := h.container.canvases[0].Size(); w != 1500 {
		t.Errorf("particle canvas width after resize: %v", w)
	}

	h.engine.UpdateData(banner.SimpleVideo("hero.webm"))
	if !sim.Disposed() {
		t.Error("UpdateData did not dispose the previous simulation")
	}
	if h.engine.Particles() != nil || h.particles.Pending() != 0 {
		t.Error("particle frames survive UpdateData")
	}
}

func TestEngineUpdateDataKeepsEnterOrigin(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())

	h.pointer(input.PointerEnter, 900)
	h.pointer(input.PointerMove, 910)
	h.tick()
	if got := h.engine.State().PointerOffset; got != 10 {
		t.Fatalf("PointerOffset before swap: got %v, want 10", got)
	}

	// The pointer stays inside, so no new enter event arrives.
	h.engine.UpdateData(scenarioDescriptor())
	if got := h.engine.State().PointerOffset; got != 0 {
		t.Errorf("PointerOffset after swap: got %v, want 0", got)
	}

	h.pointer(input.PointerMove, 912)
	if got := h.engine.State().PointerOffset; got != 12 {
		t.Fatalf("PointerOffset after swap and move: got %v, want 12", got)
	}
	h.tick()
	if got := h.element(0).transform.TX; !near(got, 100+12*0.05) {
		t.Errorf("tracked translation after swap: got %v, want %v", got, 100+12*0.05)
	}
}

func TestEngineHomingStartsAtTimeZero(t *testing.T) {
	h := newHarness(1000)
	h.engine.UpdateData(scenarioDescriptor())
	h.pointer(input.PointerEnter, 0)
	h.pointer(input.PointerMove, 400)
	h.tick()

	h.pointer(input.PointerLeave, 400)
	// The next tick lands exactly on timestamp 0.
	h.now = -16 * time.Millisecond

	frames := 0
	for h.engine.State().ActiveFrame != 0 {
		h.tick()
		frames++
		if frames == 2 && h.engine.State().HomingStart != 0 {
			t.Fatalf("homing clock restarted at %v", h.engine.State().HomingStart)
		}
		if frames > 100 {
			t.Fatal("homing never finished")
		}
	}

	// Frames at 0, 16, ..., 192 are in progress; 208 completes.
	if frames != 14 {
		t.Errorf("homing frames: got %d, want 14", frames)
	}
	if got := h.element(0).transform.TX; got != 100 {
		t.Errorf("rest translation: got %v, want 100", got)
	}
}
